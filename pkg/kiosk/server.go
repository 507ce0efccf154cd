package kiosk

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hallday/passview/pkg/infra"
)

type Server struct {
	application *Application
	server      *http.Server
	logger      *zap.SugaredLogger
}

func ProvideServer(application *Application, loggerFactory *infra.LoggerFactory) *Server {
	logger := loggerFactory.Create("Server").Sugar()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogRequestID: true,
		LogStatus:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Infof("%v %v id[%v] status[%v] latency[%vms]", v.Method, v.URI, v.RequestID, v.Status, v.Latency.Milliseconds())
			return nil
		},
	}))

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok\n")
	})

	e.PUT("/debug", func(c echo.Context) error {
		infra.LoggerLevel.SetLevel(zapcore.DebugLevel)
		logger.Info("debug logging enabled")
		return c.NoContent(http.StatusOK)
	})

	e.DELETE("/debug", func(c echo.Context) error {
		infra.LoggerLevel.SetLevel(zapcore.InfoLevel)
		logger.Info("debug logging disabled")
		return c.NoContent(http.StatusOK)
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/ws", application.HandleWs)
	e.GET("/api/status", application.HandleStatus)
	e.POST("/api/scan", application.HandleScan)
	e.POST("/api/override_end", application.HandleOverrideEnd)
	e.POST("/api/ban", application.HandleSetBanned)
	e.POST("/api/import_roster", application.HandleImportRoster)

	return &Server{
		application: application,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%v", os.Getenv("SERVER_PORT")),
			Handler: e,
		},
		logger: logger,
	}
}

func (s *Server) Run() {
	s.logger.Infof("server running application")
	s.application.Run(context.Background())

	s.logger.Infof("server starts listening on port[%v]", os.Getenv("SERVER_PORT"))
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		s.logger.Error(err)
	}
}
