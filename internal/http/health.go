package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Network   string    `json:"network"`
	Chain     string    `json:"chain"`
	DB        string    `json:"db,omitempty"`
}

type HealthHandler struct {
	serviceName     string
	version         string
	network         string
	chainConfigured bool
	db              *gorm.DB
}

// NewHealthHandler reports liveness only. The chain is never dialled here;
// chainConfigured just says whether an endpoint and contract are set.
func NewHealthHandler(serviceName, version, network string, chainConfigured bool, db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		serviceName:     serviceName,
		version:         version,
		network:         network,
		chainConfigured: chainConfigured,
		db:              db,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		dbStatus = "up"
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.PingContext(pingCtx) != nil {
			dbStatus = "down"
		}
	}

	chainStatus := "unconfigured"
	if h.chainConfigured {
		chainStatus = "configured"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Network:   h.network,
		Chain:     chainStatus,
		DB:        dbStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
