// Управление конфигурацией сервиса из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации по тегам env у полей структуры.
//   - Преобразование значений (string, int, bool, секунды в time.Duration) с ошибкой на неверное значение.
//   - Проверка обязательного адреса внешнего API и значения по умолчанию для остальных параметров.
//   - Маскировка секретов при логировании.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var ErrAPIURLRequired = errors.New("API_URL is required")

type Config struct {
	APIURLRaw string `env:"API_URL"`
	APIURL    *url.URL

	UploadURL  string        `env:"UPLOAD_URL"`
	APITimeout time.Duration `env:"API_TIMEOUT"`

	ServerAddr  string `env:"SERVER_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`

	FrontFilesPath string `env:"FRONT_PATH"`

	AWSEndpoint   string `env:"AWS_S3_ENDPOINT_URL"`
	AWSAccessKey  string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSBucketName string `env:"AWS_S3_BUCKET_NAME"`
	AWSSecure     bool   `env:"AWS_S3_SECURE"`

	PublicFilesURL string `env:"PUBLIC_FILES_URL"`
	UploadMaxMB    int    `env:"UPLOAD_MAX_MB"`
}

// MinioEnabled возвращает true, если заданы параметры объектного хранилища.
func (c *Config) MinioEnabled() bool {
	return c.AWSEndpoint != "" && c.AWSBucketName != ""
}

// UploadMaxBytes - предельный размер загружаемого файла.
func (c *Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

// ReadConfig загружает конфигурацию и завершает процесс, если она некорректна.
func ReadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("Read config", "err", err)
		os.Exit(1)
	}
	return cfg
}

// LoadConfig загружает конфигурацию из окружения и подставляет значения по умолчанию.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := envConfig("env", cfg); err != nil {
		return nil, err
	}

	if cfg.APIURLRaw == "" {
		return nil, ErrAPIURLRequired
	}
	u, err := url.Parse(cfg.APIURLRaw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API_URL incorrect: %q", cfg.APIURLRaw)
	}
	cfg.APIURL = u

	if cfg.UploadURL == "" {
		cfg.UploadURL = u.JoinPath("upload").String()
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = 15 * time.Second
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":2112"
	}
	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}
	if cfg.PublicFilesURL == "" && cfg.MinioEnabled() {
		scheme := "http"
		if cfg.AWSSecure {
			scheme = "https"
		}
		cfg.PublicFilesURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.AWSEndpoint, cfg.AWSBucketName)
	}

	return cfg, nil
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s any) error {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)
		if fEnvTag == "" {
			continue
		}

		raw, ok := os.LookupEnv(fEnvTag)
		if !ok || raw == "" {
			continue
		}

		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue(fName, raw)),
			slog.String("source", "ENVIRONMENT"),
		)

		field := v.Field(i)
		switch field.Interface().(type) {
		case string:
			field.SetString(raw)
		case int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", fEnvTag, err)
			}
			field.SetInt(int64(n))
		case bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", fEnvTag, err)
			}
			field.SetBool(b)
		case time.Duration:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", fEnvTag, err)
			}
			field.SetInt(int64(time.Duration(n) * time.Second))
		}
	}
	return nil
}

// logValue маскирует секреты, оставляя первый и последний символ.
func logValue(field, value string) string {
	name := strings.ToLower(field)
	if !strings.Contains(name, "pass") && !strings.Contains(name, "secret") && !strings.Contains(name, "token") {
		return value
	}
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
