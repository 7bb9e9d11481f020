package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/teleclip/teleclip/internal/blob"
)

// BlobOpener opens a thumbnail byte stream by blob id.
type BlobOpener interface {
	Open(ctx context.Context, id string) (io.ReadCloser, blob.Info, error)
}

// ThumbnailHandler streams thumbnail JPEGs from the blob store.
type ThumbnailHandler struct {
	blobs  BlobOpener
	logger *slog.Logger
}

// NewThumbnailHandler creates a thumbnail handler.
func NewThumbnailHandler(log *slog.Logger, blobs BlobOpener) *ThumbnailHandler {
	return &ThumbnailHandler{
		blobs:  blobs,
		logger: log.With(slog.String("handler", "thumbnail")),
	}
}

// Register mounts GET /thumbnail/:id on the Echo instance.
func (h *ThumbnailHandler) Register(e *echo.Echo) {
	e.GET("/thumbnail/:id", h.Get)
}

// Get forwards the blob bytes to the client as they arrive. Thumbnails are
// immutable, so the response carries a year-long cache lifetime.
func (h *ThumbnailHandler) Get(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	rc, _, err := h.blobs.Open(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "thumbnail not found")
		}
		h.logger.Error("open thumbnail failed", slog.String("id", id), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch thumbnail")
	}
	defer rc.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=31536000")
	return c.Stream(http.StatusOK, "image/jpeg", rc)
}
