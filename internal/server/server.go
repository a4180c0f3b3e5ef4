package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"

	"riskbot/internal/config"
	"riskbot/internal/ingest"
	"riskbot/internal/rag"
)

const landingPage = `## RiskBot – HRCI / NPPI Analyzer

Upload a file at ` + "`POST /upload`" + ` or open the chatbot UI at
[/static/index.html](/static/index.html).

Ask follow-up questions with ` + "`POST /ask`" + ` (form fields ` + "`doc_id`" + `, ` + "`question`" + `).
`

type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	pipeline  *ingest.Pipeline
	responder *rag.Responder
	landing   []byte
}

func New(cfg *config.Config, pipeline *ingest.Pipeline, responder *rag.Responder) (*Server, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(landingPage), &buf); err != nil {
		return nil, fmt.Errorf("render landing page: %w", err)
	}

	s := &Server{
		echo:      echo.New(),
		cfg:       cfg,
		pipeline:  pipeline,
		responder: responder,
		landing:   buf.Bytes(),
	}
	s.setup()
	return s, nil
}

func (s *Server) setup() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).
				Dur("latency", v.Latency).Str("remote_ip", v.RemoteIP).Msg("request")
			return nil
		},
	}))
	e.Use(middleware.BodyLimit(s.cfg.Server.BodyLimit))

	e.GET("/", s.handleHome)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/upload", s.handleUpload)
	e.POST("/ask", s.handleAsk)

	if dir := s.cfg.Server.StaticDir; dir != "" {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			e.Static("/static", dir)
		} else {
			log.Warn().Str("dir", dir).Msg("Static directory not found, chat UI disabled")
		}
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	log.Info().Str("addr", s.cfg.Server.Addr).Msg("RiskBot is running")
	if err := s.echo.Start(s.cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHome(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, s.landing)
}

func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		req := c.Request()
		log.Error().Err(err).Int("status", code).Str("method", req.Method).Str("path", req.URL.Path).Msg("request failed")
	}
	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}
