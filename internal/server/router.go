package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medetbek/docvault/internal/blob"
	"github.com/medetbek/docvault/internal/config"
	"github.com/medetbek/docvault/internal/document"
	"github.com/medetbek/docvault/internal/metrics"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config          config.Config
	DB              *pgxpool.Pool
	Blobs           blob.Store
	DocumentService *document.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.DocumentService != nil {
		document.RegisterRoutes(api, deps.DocumentService)
	}

	return router
}
