// Основной пакет сервиса Foro. Читает конфигурацию из окружения, настраивает логирование и
// запускает HTTP-сервер.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aisa-it/foro/internal/foro"
	"github.com/aisa-it/foro/internal/foro/config"
)

var version string = "DEV"

// Пример запуска: go run main.go --trace
func main() {
	trace := flag.Bool("trace", false, "Verbose logs with API requests")
	flag.Parse()

	PrintBanner()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		level := slog.LevelInfo
		if *trace {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	}

	cfg := config.ReadConfig()

	slog.Info("Foro start.", "version", version, "api", cfg.APIURL.String())

	foro.Server(cfg, version)
}

func PrintBanner() {
	banner := `
 _____
|  ___|__  _ __ ___
| |_ / _ \| '__/ _ \
|  _| (_) | | | (_) |
|_|  \___/|_|  \___/ %s
Rich text forum front service
----------------------------------------------------
`
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion)
}
