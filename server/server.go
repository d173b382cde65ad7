// Package server собирает HTTP API панели качества: индексы PPM,
// диагностика периода, обогащение дефектов и история снимков.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sigmaq/catalog"
	"sigmaq/database"
	"sigmaq/enrichment"
	"sigmaq/internal/config"
	"sigmaq/server/middleware"
)

// CatalogSource выдает снимок справочников. Реализуется catalog.Loader.
type CatalogSource interface {
	Load() (*catalog.Bundle, error)
}

// Server связывает источники данных, справочники и HTTP обработчики.
type Server struct {
	config    *config.Config
	catalogs  CatalogSource
	source    DataSource
	cache     *enrichment.Cache
	snapshots *database.SnapshotStore

	httpServer *http.Server
}

// New создает сервер поверх готовых зависимостей. Снимки опциональны:
// при nil store маршруты истории отвечают 503.
func New(cfg *config.Config, catalogs CatalogSource, source DataSource, snapshots *database.SnapshotStore) *Server {
	return &Server{
		config:    cfg,
		catalogs:  catalogs,
		source:    source,
		cache:     enrichment.NewCache(),
		snapshots: snapshots,
	}
}

// Router собирает gin engine со всеми middleware и маршрутами.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Recovery())
	router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		api.GET("/ppm", s.handlePpm)
		api.GET("/ppm/trend", s.handlePpmTrend)

		api.GET("/diagnostics/summary", s.handleDiagnosticsSummary)

		api.GET("/defects/enriched", s.handleEnrichedDefects)
		api.POST("/production/match", s.handleProductionMatch)

		api.GET("/snapshots", s.handleListSnapshots)
		api.GET("/snapshots/:id", s.handleGetSnapshot)
		api.DELETE("/snapshots/:id", s.handleDeleteSnapshot)
	}

	return router
}

// Start запускает HTTP сервер и блокируется до его остановки.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("🚀 Сервер качества запускается на %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Printf("Остановка HTTP сервера...")
	return s.httpServer.Shutdown(ctx)
}
