// Package server поднимает HTTP API анализатора тендеров: анализ текста
// и файлов, список сохраненных прогонов, чат по готовой карточке.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tenderanalyzer/internal/config"
	"tenderanalyzer/pipeline"
	"tenderanalyzer/storage"
)

// Server HTTP-сервер анализатора.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	store    *storage.RunStore
	logger   *slog.Logger
	engine   *gin.Engine
}

// New создает сервер и регистрирует маршруты. store может быть nil —
// тогда результаты анализа не сохраняются и endpoint'ы прогонов
// возвращают 503.
func New(cfg *config.Config, p *pipeline.Pipeline, store *storage.RunStore) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:      cfg,
		pipeline: p,
		store:    store,
		logger:   slog.Default().With("component", "server"),
		engine:   gin.New(),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(RequestIDMiddleware())
	s.engine.Use(LoggerMiddleware())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api/v1")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/runs", s.handleListRuns)
		api.GET("/runs/:id", s.handleGetRun)
		api.POST("/chat", s.handleChat)
	}
}

// Run запускает сервер и блокируется до его остановки.
func (s *Server) Run() error {
	addr := ":" + s.cfg.Port
	s.logger.Info("Запуск HTTP-сервера", "addr", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Handler возвращает корневой http.Handler (для тестов).
func (s *Server) Handler() http.Handler {
	return s.engine
}
