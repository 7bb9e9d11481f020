package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teleclip/teleclip/internal/video"
)

// VideoReader is the query surface of the video store used by the API.
type VideoReader interface {
	List(ctx context.Context, limit, skip int) ([]video.Record, error)
	GetByFileID(ctx context.Context, fileID string) (video.Record, error)
}

// VideoSummary is the API representation of a video record. The raw blob
// reference is replaced by a retrieval URL.
type VideoSummary struct {
	ID           string    `json:"id"`
	FileID       string    `json:"file_id"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Caption      *string   `json:"caption"`
	DateUploaded time.Time `json:"date_uploaded"`
	FileSize     int64     `json:"file_size"`
	Duration     *int      `json:"duration"`
	ChannelTitle *string   `json:"channel_title"`
}

// VideosHandler serves the video listing and lookup endpoints.
type VideosHandler struct {
	videos  VideoReader
	baseURL string
	logger  *slog.Logger
}

// NewVideosHandler creates a videos handler. baseURL is the externally
// visible API base used to compose thumbnail URLs.
func NewVideosHandler(log *slog.Logger, videos VideoReader, baseURL string) *VideosHandler {
	return &VideosHandler{
		videos:  videos,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:  log.With(slog.String("handler", "videos")),
	}
}

// Register mounts GET /videos and GET /video/:file_id on the Echo instance.
func (h *VideosHandler) Register(e *echo.Echo) {
	e.GET("/videos", h.List)
	e.GET("/video/:file_id", h.Get)
}

// List returns indexed videos sorted by upload time descending, paginated
// by limit and skip.
func (h *VideosHandler) List(c echo.Context) error {
	limit := queryInt(c, "limit")
	skip := queryInt(c, "skip")

	records, err := h.videos.List(c.Request().Context(), limit, skip)
	if err != nil {
		h.logger.Error("list videos failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch videos")
	}

	items := make([]VideoSummary, 0, len(records))
	for _, record := range records {
		items = append(items, h.summarize(record))
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one video by its platform file reference.
func (h *VideosHandler) Get(c echo.Context) error {
	fileID := strings.TrimSpace(c.Param("file_id"))
	if fileID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file id is required")
	}
	record, err := h.videos.GetByFileID(c.Request().Context(), fileID)
	if err != nil {
		if errors.Is(err, video.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "video not found")
		}
		h.logger.Error("get video failed", slog.String("file_id", fileID), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch video")
	}
	return c.JSON(http.StatusOK, h.summarize(record))
}

func (h *VideosHandler) summarize(record video.Record) VideoSummary {
	return VideoSummary{
		ID:           record.ID,
		FileID:       record.FileID,
		ThumbnailURL: h.baseURL + "/thumbnail/" + record.ThumbnailID,
		Caption:      record.Caption,
		DateUploaded: record.UploadedAt,
		FileSize:     record.FileSize,
		Duration:     record.Duration,
		ChannelTitle: record.ChannelTitle,
	}
}

// queryInt parses a query parameter as int; missing or malformed values
// yield 0 and the store applies its defaults.
func queryInt(c echo.Context, name string) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
