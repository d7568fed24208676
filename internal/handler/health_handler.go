package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Baaaki/message-board/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping Pinger
}

func NewHealthHandler(ping Pinger) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// GET /api/
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Hello": "World"})
}

// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		logger.Log.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
