// Package blob persists thumbnail binaries: bytes go to a storage provider,
// bookkeeping rows (filename, provenance, storage key) go to Postgres.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teleclip/teleclip/internal/db"
	"github.com/teleclip/teleclip/internal/storage"
)

// ErrNotFound is returned by Open when the blob id does not resolve.
var ErrNotFound = errors.New("thumbnail not found")

// Source values recorded as blob provenance.
const (
	SourceBuiltIn   = "built_in"
	SourceGenerated = "generated"
)

// Info describes a stored thumbnail blob.
type Info struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Source      string    `json:"source"`
	VideoFileID string    `json:"video_file_id"`
	StorageKey  string    `json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoreInput carries the data needed to persist a new thumbnail.
type StoreInput struct {
	Filename    string
	Source      string
	VideoFileID string
	Reader      io.Reader
}

// Service writes and reads thumbnail blobs.
type Service struct {
	pool     *pgxpool.Pool
	provider storage.Provider
	logger   *slog.Logger
}

// NewService creates a blob service over the given pool and storage provider.
func NewService(log *slog.Logger, pool *pgxpool.Pool, provider storage.Provider) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:     pool,
		provider: provider,
		logger:   log.With(slog.String("service", "blob")),
	}
}

// Store streams the thumbnail bytes into the provider and records the
// bookkeeping row. It returns the assigned blob id, which is immediately
// usable for Open. When the row insert fails the already-written bytes are
// removed best-effort and the store fails as a whole.
func (s *Service) Store(ctx context.Context, in StoreInput) (string, error) {
	if in.Reader == nil {
		return "", fmt.Errorf("reader is required")
	}
	if in.Source != SourceBuiltIn && in.Source != SourceGenerated {
		return "", fmt.Errorf("unknown thumbnail source: %q", in.Source)
	}

	id := uuid.NewString()
	key := path.Join(id[:2], id+".jpg")

	if err := s.provider.Put(ctx, key, in.Reader); err != nil {
		return "", fmt.Errorf("store thumbnail bytes: %w", err)
	}

	pgID, err := db.ParseUUID(id)
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO thumbnails (id, filename, source, video_file_id, storage_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		pgID, in.Filename, in.Source, in.VideoFileID, key,
		pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	)
	if err != nil {
		if delErr := s.provider.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphan blob cleanup failed", slog.String("key", key), slog.Any("error", delErr))
		}
		return "", fmt.Errorf("store thumbnail record: %w", err)
	}

	s.logger.Debug("thumbnail stored",
		slog.String("id", id),
		slog.String("source", in.Source),
		slog.String("path", s.provider.AccessPath(key)),
	)
	return id, nil
}

// Open resolves the blob id and returns a byte stream plus blob info.
// Unknown and malformed ids map to ErrNotFound.
func (s *Service) Open(ctx context.Context, id string) (io.ReadCloser, Info, error) {
	info, err := s.get(ctx, id)
	if err != nil {
		return nil, Info{}, err
	}
	rc, err := s.provider.Open(ctx, info.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, Info{}, ErrNotFound
		}
		return nil, Info{}, fmt.Errorf("open thumbnail bytes: %w", err)
	}
	return rc, info, nil
}

func (s *Service) get(ctx context.Context, id string) (Info, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Info{}, ErrNotFound
	}
	var (
		filename    string
		source      string
		videoFileID string
		storageKey  string
		createdAt   pgtype.Timestamptz
	)
	row := s.pool.QueryRow(ctx,
		`SELECT filename, source, video_file_id, storage_key, created_at
		 FROM thumbnails WHERE id = $1`, pgID)
	if err := row.Scan(&filename, &source, &videoFileID, &storageKey, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Info{}, ErrNotFound
		}
		return Info{}, fmt.Errorf("load thumbnail record: %w", err)
	}
	return Info{
		ID:          id,
		Filename:    filename,
		Source:      source,
		VideoFileID: videoFileID,
		StorageKey:  storageKey,
		CreatedAt:   db.TimeFromPg(createdAt),
	}, nil
}
