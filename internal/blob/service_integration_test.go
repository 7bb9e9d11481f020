package blob_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teleclip/teleclip/internal/blob"
	"github.com/teleclip/teleclip/internal/storage"
)

func setupBlobIntegrationTest(t *testing.T) (*blob.Service, func()) {
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

	provider, err := storage.NewLocal(t.TempDir())
	if err != nil {
		pool.Close()
		t.Fatalf("local provider: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	service := blob.NewService(logger, pool, provider)
	return service, func() { pool.Close() }
}

func TestStoreAndOpenRoundTrip(t *testing.T) {
	service, teardown := setupBlobIntegrationTest(t)
	defer teardown()
	ctx := context.Background()

	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0xAA, 0xBB}
	id, err := service.Store(ctx, blob.StoreInput{
		Filename:    "unique123.jpg",
		Source:      blob.SourceGenerated,
		VideoFileID: "file-abc",
		Reader:      bytes.NewReader(payload),
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	rc, info, err := service.Open(ctx, id)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("stream bytes differ from stored bytes")
	}
	if info.Source != blob.SourceGenerated || info.Filename != "unique123.jpg" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestOpenUnknownID(t *testing.T) {
	service, teardown := setupBlobIntegrationTest(t)
	defer teardown()

	_, _, err := service.Open(context.Background(), "1b671a64-40d5-491e-99b0-da01ff1f3341")
	if !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("Open unknown id = %v, want ErrNotFound", err)
	}
	_, _, err = service.Open(context.Background(), "not-a-uuid")
	if !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("Open malformed id = %v, want ErrNotFound", err)
	}
}

func TestStoreRejectsUnknownSource(t *testing.T) {
	service, teardown := setupBlobIntegrationTest(t)
	defer teardown()

	_, err := service.Store(context.Background(), blob.StoreInput{
		Filename: "x.jpg",
		Source:   "guessed",
		Reader:   bytes.NewReader([]byte{1}),
	})
	if err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
