package http

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/aquacred-registry/internal/config"
	"github.com/nurpe/aquacred-registry/internal/http/middleware"
)

func NewRouter(handler *Handler, health *HealthHandler, authMiddleware gin.HandlerFunc, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(log))
	router.Use(cors.New(corsConfig(cfg.HTTP.AllowedOrigins)))

	health.RegisterRoutes(router)
	handler.Register(router, authMiddleware)
	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = origins
	corsCfg.AllowCredentials = true
	return corsCfg
}
