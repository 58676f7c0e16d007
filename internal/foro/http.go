// Пакет foro - HTTP-сервис форума. Отдает браузерному клиенту JSON API поверх внешнего
// GraphQL API, в котором контент постов хранится в формате документа редактора, и
// рендерит этот контент в очищенный HTML.
//
// Основные возможности:
//   - Посты, комментарии, оценки, жалобы, анонсы и уведомления.
//   - API редактора: рендер, нормализация и применение команд редактирования.
//   - Загрузка файлов в Minio или во внешний сервис загрузки.
//   - Серверный рендер страницы поста.
//   - Метрики Prometheus на отдельном порту.
package foro

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aisa-it/foro/internal/foro/backend"
	"github.com/aisa-it/foro/internal/foro/config"
	filestorage "github.com/aisa-it/foro/internal/foro/file-storage"
)

type Services struct {
	cfg          *config.Config
	api          *backend.Client
	storage      filestorage.FileStorage
	postTemplate *template.Template
}

func NewServices(cfg *config.Config, api *backend.Client, storage filestorage.FileStorage) (*Services, error) {
	tmpl, err := loadPostTemplate()
	if err != nil {
		return nil, fmt.Errorf("load post page template: %w", err)
	}
	return &Services{
		cfg:          cfg,
		api:          api,
		storage:      storage,
		postTemplate: tmpl,
	}, nil
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "Foro")
		return next(c)
	}
}

// NewRouter собирает echo со всеми маршрутами. Метрики регистрируются в registerer.
func (s *Services) NewRouter(version string, registerer prometheus.Registerer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = JSONSerializer{}
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		EErrorMsgStatus(c, nil, code)
	}

	if err := registerer.Register(malformedContentCounter); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			slog.Error("Register malformed content counter", "err", err)
		}
	}

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: "2M",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/upload/"
		},
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "foro",
		Registerer: registerer,
	}))
	e.Pre(middleware.AddTrailingSlash())

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/", AuthMiddleware(AuthConfig{Optional: true}))

	s.AddAuthenticationServices(apiGroup)
	s.AddPostServices(apiGroup)
	s.AddUserServices(apiGroup)
	s.AddAdminServices(apiGroup)
	s.AddEditorServices(apiGroup)
	s.AddUploadServices(apiGroup)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": version,
			"minio":   s.cfg.MinioEnabled(),
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Server-rendered post page
	e.GET("/p/:postId/", s.getPostPage)

	// Front handler
	if s.cfg.FrontFilesPath != "" {
		slog.Info("Start front routing")
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  s.cfg.FrontFilesPath,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, "/api/")
			},
		}))
	}

	return e
}

func newStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	if !cfg.MinioEnabled() {
		slog.Info("Minio is not configured, uploads go to the upload service", "url", cfg.UploadURL)
		return filestorage.NewRemoteStorage(cfg.UploadURL, cfg.APITimeout), nil
	}
	return filestorage.NewMinioStorage(ctx,
		cfg.AWSEndpoint,
		cfg.AWSAccessKey,
		cfg.AWSSecretKey,
		cfg.AWSSecure,
		cfg.AWSBucketName,
		cfg.PublicFilesURL,
	)
}

func Server(cfg *config.Config, version string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		slog.Error("Fail init Minio connection", "err", err)
		os.Exit(1)
	}

	s, err := NewServices(cfg, backend.NewClient(cfg.APIURL.String(), cfg.APITimeout), storage)
	if err != nil {
		slog.Error("Init services", "err", err)
		os.Exit(1)
	}

	e := s.NewRouter(version, prometheus.DefaultRegisterer)

	// Prometheus metrics
	go func() {
		bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "foro",
			Name:      "boot_time",
			Help:      "Server startup time",
		})
		bootTimeGauge.Set(float64(time.Now().UnixMilli()))

		if err := prometheus.Register(bootTimeGauge); err != nil {
			slog.Error("Register boot time gauge", "err", err)
			os.Exit(1)
		}

		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down gracefully, press Ctrl+C again to force")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown", "err", err)
		}
	}()

	if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server fail", "err", err)
	}
}
