// Package devserver is the backend stub the GraphQL client talks to in
// development and in integration tests: the GraphQL contract, the refresh
// endpoint and the upload flow, backed by gorm storage.
package devserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/nebulamart/storefront/internal/config"
	"github.com/nebulamart/storefront/internal/logging"
)

type Server struct {
	DB  *gorm.DB
	Log *slog.Logger

	// ES, when set, backs the searchProducts operation; nil falls back to
	// a LIKE query.
	ES      *elasticsearch.Client
	ESIndex string

	// Producer, when set, receives product/user domain events.
	Producer *Producer

	jwtSecret     []byte
	refreshSecret []byte
	publicURL     string
	uploadDir     string
}

func New(cfg *config.Config, db *gorm.DB, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		DB:            db,
		Log:           log,
		ESIndex:       cfg.ES_INDEX,
		jwtSecret:     []byte(cfg.JWT_SECRET),
		refreshSecret: []byte(cfg.REFRESH_SECRET),
		publicURL:     cfg.PUBLIC_URL,
		uploadDir:     cfg.UPLOAD_DIR,
	}
}

func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/graphql", s.handleGraphQL)
	e.POST("/auth/refresh-token", s.handleRefresh)
	e.POST("/uploads", s.handleUploadTarget)
	e.PUT("/uploads/objects/:key", s.handleUploadPut)

	return e
}

// requestLogger logs every request and makes the server logger available
// through the request context.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		ctx := logging.IntoContext(c.Request().Context(), s.Log)
		c.SetRequest(c.Request().WithContext(ctx))
		err := next(c)
		s.Log.Info("http request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start).String(),
		)
		return err
	}
}
