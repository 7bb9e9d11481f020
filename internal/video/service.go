// Package video persists and queries video metadata records.
package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teleclip/teleclip/internal/db"
)

// ErrNotFound is returned by lookups when no record matches.
var ErrNotFound = errors.New("video not found")

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Service stores and reads video records.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a video service over the given pool.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "video")),
	}
}

// Save inserts a new record and returns the assigned id.
func (s *Service) Save(ctx context.Context, record Record) (string, error) {
	if strings.TrimSpace(record.FileID) == "" {
		return "", fmt.Errorf("file id is required")
	}
	if strings.TrimSpace(record.ThumbnailID) == "" {
		return "", fmt.Errorf("thumbnail id is required")
	}
	thumbID, err := db.ParseUUID(record.ThumbnailID)
	if err != nil {
		return "", err
	}
	mimeType := record.MimeType
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	var id pgtype.UUID
	row := s.pool.QueryRow(ctx,
		`INSERT INTO videos (file_id, file_unique_id, thumbnail_id, mime_type, file_size, caption, uploaded_at, duration, channel_title)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		record.FileID,
		record.FileUniqueID,
		thumbID,
		mimeType,
		record.FileSize,
		db.TextFromPtr(record.Caption),
		pgtype.Timestamptz{Time: record.UploadedAt.UTC(), Valid: true},
		db.Int4FromPtr(record.Duration),
		db.TextFromPtr(record.ChannelTitle),
	)
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("insert video: %w", err)
	}
	return db.UUIDToString(id), nil
}

// GetByFileID returns the record for the given platform file reference.
func (s *Service) GetByFileID(ctx context.Context, fileID string) (Record, error) {
	row := s.pool.QueryRow(ctx, selectColumns+` WHERE file_id = $1`, fileID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load video: %w", err)
	}
	return record, nil
}

// List returns records sorted by upload time descending. Limit defaults to
// 50 and is capped at 100; negative skip is treated as 0.
func (s *Service) List(ctx context.Context, limit, skip int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := s.pool.Query(ctx,
		selectColumns+` ORDER BY uploaded_at DESC LIMIT $1 OFFSET $2`,
		int32(limit), int32(skip))
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	items := make([]Record, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return items, nil
}

// Count returns the total number of records. Failures are logged and
// reported as 0: the count feeds status output only, never a correctness
// path.
func (s *Service) Count(ctx context.Context) int64 {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM videos`).Scan(&count); err != nil {
		s.logger.Warn("count videos failed", slog.Any("error", err))
		return 0
	}
	return count
}

const selectColumns = `SELECT id, file_id, file_unique_id, thumbnail_id, mime_type, file_size, caption, uploaded_at, duration, channel_title FROM videos`

func scanRecord(row pgx.Row) (Record, error) {
	var (
		id           pgtype.UUID
		thumbnailID  pgtype.UUID
		caption      pgtype.Text
		uploadedAt   pgtype.Timestamptz
		duration     pgtype.Int4
		channelTitle pgtype.Text
		record       Record
	)
	err := row.Scan(
		&id,
		&record.FileID,
		&record.FileUniqueID,
		&thumbnailID,
		&record.MimeType,
		&record.FileSize,
		&caption,
		&uploadedAt,
		&duration,
		&channelTitle,
	)
	if err != nil {
		return Record{}, err
	}
	record.ID = db.UUIDToString(id)
	record.ThumbnailID = db.UUIDToString(thumbnailID)
	record.Caption = db.TextToPtr(caption)
	record.UploadedAt = db.TimeFromPg(uploadedAt)
	record.Duration = db.Int4ToPtr(duration)
	record.ChannelTitle = db.TextToPtr(channelTitle)
	return record, nil
}
