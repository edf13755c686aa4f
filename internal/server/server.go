package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"servermonitor/api"
	"servermonitor/internal/config"
	"servermonitor/internal/logging"
	"servermonitor/internal/monitor"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Monitor is what the HTTP layer needs from the monitor service
type Monitor interface {
	Inventory(ctx context.Context) ([]api.InstanceRecord, error)
	ConsoleLog(ctx context.Context, instanceID string) (string, error)
	Metrics(ctx context.Context, instanceID string) (*monitor.InstanceMetrics, error)
	Control(ctx context.Context, instanceID, action string) (*api.ControlResult, error)
}

// Server exposes the monitor over HTTP
type Server struct {
	cfg     config.ServerConfig
	monitor Monitor
	echo    *echo.Echo
	metrics *serverMetrics
}

// NewServer creates a Server and registers its routes
func NewServer(cfg config.ServerConfig, m Monitor) *Server {
	s := &Server{
		cfg:     cfg,
		monitor: m,
		echo:    echo.New(),
		metrics: newServerMetrics(),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = false
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger())
	e.Use(s.metrics.middleware)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowCredentials: true,
	}))

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"msg": "Ok"})
	})
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.handler()))

	g := s.echo.Group("/api")
	g.GET("/status", s.handleStatus)
	g.GET("/logs/:instance_id", s.handleLogs)
	g.GET("/metrics/:instance_id", s.handleMetrics)
	g.POST("/control/:instance_id/:action", s.handleControl)
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves HTTP until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.echo,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 1 * time.Minute,
	}
	go func() {
		<-ctx.Done()
		logging.Logger().Info("shutting down http server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logging.Logger().Error("http server shutdown failed", zap.Error(err))
		}
	}()

	logging.Logger().Info("Starting HTTP server",
		zap.Int("port", s.cfg.Port),
		zap.Strings("allowed_origins", s.cfg.AllowedOrigins))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// errorHandler renders every non-2xx response as {"detail": "..."}
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = fmt.Sprint(he.Message)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, api.ErrorResponse{Detail: detail})
	}
	if writeErr != nil {
		logging.Logger().Error("failed to write error response", zap.Error(writeErr))
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.String("error", logging.Truncate(v.Error.Error())))
			}
			logging.Logger().Info("request", fields...)
			return nil
		},
	})
}
