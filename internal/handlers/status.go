// Package handlers implements the read API endpoints over the video and
// blob stores.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// VideoCounter reports the running total of indexed videos. Count never
// fails: store outages surface as 0.
type VideoCounter interface {
	Count(ctx context.Context) int64
}

// StatusResponse is the health/status body served at the API root.
type StatusResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	VideosCount int64     `json:"videos_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// StatusHandler serves GET / for liveness and basic stats.
type StatusHandler struct {
	videos VideoCounter
	logger *slog.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(log *slog.Logger, videos VideoCounter) *StatusHandler {
	return &StatusHandler{
		videos: videos,
		logger: log.With(slog.String("handler", "status")),
	}
}

// Register mounts GET / on the Echo instance.
func (h *StatusHandler) Register(e *echo.Echo) {
	e.GET("/", h.Status)
}

// Status returns liveness and the current video count. The count falls
// back to 0 on store errors, so this endpoint never fails on them.
func (h *StatusHandler) Status(c echo.Context) error {
	count := h.videos.Count(c.Request().Context())
	return c.JSON(http.StatusOK, StatusResponse{
		Status:      "healthy",
		Message:     "teleclip video index is running",
		VideosCount: count,
		Timestamp:   time.Now().UTC(),
	})
}
