package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is implemented by backends the health endpoint can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	redis Pinger
}

var healthHandler *HealthHandler

func NewHealthHandler(redis Pinger) *HealthHandler {
	return &HealthHandler{
		redis: redis,
	}
}

func SetupHealthHandler(redis Pinger) {
	healthHandler = NewHealthHandler(redis)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckRedisHealth(c echo.Context) error {
	if h.redis == nil {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "Redis not configured",
		})
	}

	if err := h.redis.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "Redis connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Redis connected successfully",
	})
}
