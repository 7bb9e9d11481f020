// Package ingest turns incoming Telegram video messages into stored
// thumbnails and metadata records.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/teleclip/teleclip/internal/blob"
	"github.com/teleclip/teleclip/internal/thumbnail"
	"github.com/teleclip/teleclip/internal/video"
)

// Resolver produces a local thumbnail for a video reference.
type Resolver interface {
	Resolve(ctx context.Context, fileID, thumbFileID string) (*thumbnail.Result, error)
}

// BlobWriter persists thumbnail bytes and returns the assigned blob id.
type BlobWriter interface {
	Store(ctx context.Context, in blob.StoreInput) (string, error)
}

// VideoStore persists video records and reports the running total.
type VideoStore interface {
	Save(ctx context.Context, record video.Record) (string, error)
	Count(ctx context.Context) int64
}

// Announcer posts an acknowledgment message back to the source channel.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// Handler processes one inbound message at a time. It keeps no state
// across messages; concurrent invocations are independent.
type Handler struct {
	channel   string
	announce  bool
	resolver  Resolver
	blobs     BlobWriter
	videos    VideoStore
	announcer Announcer
	logger    *slog.Logger
}

// NewHandler creates an ingestion handler for the given target channel
// (with or without a leading @). The announcer may be nil when announce is
// off.
func NewHandler(log *slog.Logger, channel string, announce bool, resolver Resolver, blobs BlobWriter, videos VideoStore, announcer Announcer) (*Handler, error) {
	channel = strings.TrimPrefix(strings.TrimSpace(channel), "@")
	if channel == "" {
		return nil, fmt.Errorf("target channel is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		channel:   channel,
		announce:  announce,
		resolver:  resolver,
		blobs:     blobs,
		videos:    videos,
		announcer: announcer,
		logger:    log.With(slog.String("service", "ingest")),
	}, nil
}

// Handle runs the ingestion pipeline for one message: filter, validate,
// resolve thumbnail, store blob, save record, ack. Errors terminate
// processing of this message only; temp files are cleaned up on every exit
// path.
func (h *Handler) Handle(ctx context.Context, msg *tgbotapi.Message) error {
	if msg == nil || msg.Chat == nil {
		return nil
	}
	// Channels are matched by stable username only: titles are mutable and
	// unreliable as identity.
	if !strings.EqualFold(strings.TrimSpace(msg.Chat.UserName), h.channel) {
		return nil
	}
	v := msg.Video
	if v == nil {
		return nil
	}

	thumbFileID := ""
	if v.Thumbnail != nil {
		thumbFileID = v.Thumbnail.FileID
	}
	result, err := h.resolver.Resolve(ctx, v.FileID, thumbFileID)
	if err != nil {
		return fmt.Errorf("resolve thumbnail for %s: %w", v.FileID, err)
	}
	defer result.Cleanup()

	f, err := os.Open(result.Path)
	if err != nil {
		return fmt.Errorf("open thumbnail %s: %w", result.Path, err)
	}
	blobID, err := h.blobs.Store(ctx, blob.StoreInput{
		Filename:    v.FileUniqueID + ".jpg",
		Source:      result.Source,
		VideoFileID: v.FileID,
		Reader:      f,
	})
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("store thumbnail for %s: %w", v.FileID, err)
	}

	// A failure past this point leaves the blob orphaned; thumbnails are
	// cheap and reconciliation is out of scope.
	record := buildRecord(msg, v, blobID)
	id, err := h.videos.Save(ctx, record)
	if err != nil {
		return fmt.Errorf("save video %s: %w", v.FileID, err)
	}

	h.logger.Info("video indexed",
		slog.String("id", id),
		slog.String("file_id", v.FileID),
		slog.String("thumbnail_source", result.Source),
	)

	if h.announce && h.announcer != nil {
		count := h.videos.Count(ctx)
		text := fmt.Sprintf("Indexed. %d videos total.", count)
		if err := h.announcer.Announce(ctx, text); err != nil {
			h.logger.Warn("announce failed", slog.Any("error", err))
		}
	}
	return nil
}

func buildRecord(msg *tgbotapi.Message, v *tgbotapi.Video, blobID string) video.Record {
	mimeType := strings.TrimSpace(v.MimeType)
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	fileSize := int64(v.FileSize)
	if fileSize < 0 {
		fileSize = 0
	}
	record := video.Record{
		FileID:       v.FileID,
		FileUniqueID: v.FileUniqueID,
		ThumbnailID:  blobID,
		MimeType:     mimeType,
		FileSize:     fileSize,
		UploadedAt:   time.Unix(int64(msg.Date), 0).UTC(),
	}
	if caption := strings.TrimSpace(msg.Caption); caption != "" {
		record.Caption = &caption
	}
	if v.Duration > 0 {
		duration := v.Duration
		record.Duration = &duration
	}
	if title := strings.TrimSpace(msg.Chat.Title); title != "" {
		record.ChannelTitle = &title
	}
	return record
}
