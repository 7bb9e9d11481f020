package video_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teleclip/teleclip/internal/video"
)

func setupVideoIntegrationTest(t *testing.T) (*video.Service, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("skip integration test: TEST_POSTGRES_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("skip integration test: cannot connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skip integration test: database ping failed: %v", err)
	}
	t.Cleanup(pool.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return video.NewService(logger, pool), pool
}

func insertThumbnailRow(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO thumbnails (id, filename, source, video_file_id, storage_key, created_at)
		 VALUES ($1, $2, 'built_in', $3, $4, now())`,
		id, id+".jpg", "file-"+id, id[:2]+"/"+id+".jpg")
	if err != nil {
		t.Fatalf("insert thumbnail row: %v", err)
	}
	return id
}

func TestSaveAndGetByFileID(t *testing.T) {
	service, pool := setupVideoIntegrationTest(t)
	ctx := context.Background()

	thumbID := insertThumbnailRow(t, pool)
	fileID := "file-" + uuid.NewString()
	record := video.Record{
		FileID:       fileID,
		FileUniqueID: "uniq-1",
		ThumbnailID:  thumbID,
		FileSize:     2048,
		UploadedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	id, err := service.Save(ctx, record)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatalf("expected assigned id")
	}

	got, err := service.GetByFileID(ctx, fileID)
	if err != nil {
		t.Fatalf("GetByFileID: %v", err)
	}
	if got.ID != id || got.ThumbnailID != thumbID {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.MimeType != "video/mp4" {
		t.Fatalf("mime type must default to video/mp4, got %q", got.MimeType)
	}
	if got.Caption != nil || got.Duration != nil || got.ChannelTitle != nil {
		t.Fatalf("optional fields must round-trip as nil: %+v", got)
	}
}

func TestGetByFileIDMissing(t *testing.T) {
	service, _ := setupVideoIntegrationTest(t)
	_, err := service.GetByFileID(context.Background(), "no-such-file-"+uuid.NewString())
	if !errors.Is(err, video.ErrNotFound) {
		t.Fatalf("GetByFileID = %v, want ErrNotFound", err)
	}
}

func TestListOrderingAndPagination(t *testing.T) {
	service, pool := setupVideoIntegrationTest(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	marker := uuid.NewString()
	var ids []string
	for i := 0; i < 3; i++ {
		thumbID := insertThumbnailRow(t, pool)
		id, err := service.Save(ctx, video.Record{
			FileID:       marker + "-" + uuid.NewString(),
			FileUniqueID: marker,
			ThumbnailID:  thumbID,
			UploadedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, id)
	}

	all, err := service.List(ctx, 100, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ours []video.Record
	for _, r := range all {
		if r.FileUniqueID == marker {
			ours = append(ours, r)
		}
	}
	if len(ours) != 3 {
		t.Fatalf("expected 3 records, got %d", len(ours))
	}
	// Descending by upload time: newest (T3) first.
	if ours[0].ID != ids[2] || ours[1].ID != ids[1] || ours[2].ID != ids[0] {
		t.Fatalf("unexpected order: %v vs inserted %v", ours, ids)
	}
	for i := 1; i < len(ours); i++ {
		if ours[i].UploadedAt.After(ours[i-1].UploadedAt) {
			t.Fatalf("list not sorted descending at %d", i)
		}
	}
}

func TestCountNeverFails(t *testing.T) {
	service, pool := setupVideoIntegrationTest(t)
	if service.Count(context.Background()) < 0 {
		t.Fatalf("count must be non-negative")
	}

	// A closed pool simulates a store outage: Count must fall back to 0.
	pool.Close()
	if got := service.Count(context.Background()); got != 0 {
		t.Fatalf("Count on closed pool = %d, want 0", got)
	}
}
