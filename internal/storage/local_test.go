package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocalPutOpenDelete(t *testing.T) {
	t.Parallel()
	provider, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}

	if err := provider.Put(ctx, "ab/abc123.jpg", bytes.NewReader(payload)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rc, err := provider.Open(ctx, "ab/abc123.jpg")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read back %v, want %v", got, payload)
	}

	if err := provider.Delete(ctx, "ab/abc123.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := provider.Open(ctx, "ab/abc123.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Open after delete = %v, want ErrNotFound", err)
	}
}

func TestLocalOpenMissing(t *testing.T) {
	t.Parallel()
	provider, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if _, err := provider.Open(context.Background(), "zz/missing.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Open = %v, want ErrNotFound", err)
	}
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	t.Parallel()
	provider, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	err = provider.Put(context.Background(), "../outside.jpg", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected error for escaping key")
	}
}

func TestLocalAccessPath(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	provider, err := NewLocal(root)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	got := provider.AccessPath("ab/abc123.jpg")
	if !strings.HasPrefix(got, root) || !strings.HasSuffix(got, "abc123.jpg") {
		t.Fatalf("AccessPath = %q, want a path under %q", got, root)
	}
	if got := provider.AccessPath("../outside.jpg"); got != "" {
		t.Fatalf("AccessPath for escaping key = %q, want empty", got)
	}
}

func TestNewLocalRequiresRoot(t *testing.T) {
	t.Parallel()
	if _, err := NewLocal("  "); err == nil {
		t.Fatalf("expected error for empty root")
	}
}
