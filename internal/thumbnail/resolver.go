// Package thumbnail resolves a local JPEG thumbnail for an incoming video:
// either the platform-supplied preview (fast path) or a frame extracted
// from the downloaded video.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// Sentinel errors distinguishing the two failure classes of resolution.
var (
	// ErrTransfer wraps platform file fetch failures.
	ErrTransfer = errors.New("file transfer failed")
	// ErrExtract wraps frame extraction failures (short or undecodable video).
	ErrExtract = errors.New("frame extraction failed")
)

// Source values describing where a thumbnail came from.
const (
	SourceBuiltIn   = "built_in"
	SourceGenerated = "generated"
)

// Fetcher downloads a platform file to a local temporary file and returns
// its path. The caller removes the file when done.
type Fetcher interface {
	Fetch(ctx context.Context, fileID, suffix string) (string, error)
}

// Extractor captures a single still frame from a local video file into a
// new temporary JPEG and returns its path.
type Extractor interface {
	ExtractFrame(ctx context.Context, videoPath string) (string, error)
}

// Result is a resolved thumbnail: a readable JPEG path, its provenance,
// and every temporary file resolution created. Callers must run Cleanup
// once the thumbnail has been consumed, regardless of downstream outcome.
type Result struct {
	Path      string
	Source    string
	TempFiles []string
}

// Cleanup removes all temporary files behind the result.
func (r *Result) Cleanup() {
	if r == nil {
		return
	}
	for _, path := range r.TempFiles {
		_ = os.Remove(path)
	}
}

// Resolver produces thumbnails for video references.
type Resolver struct {
	fetcher   Fetcher
	extractor Extractor
	logger    *slog.Logger
}

// NewResolver creates a resolver from a fetcher and a frame extractor.
func NewResolver(log *slog.Logger, fetcher Fetcher, extractor Extractor) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    log.With(slog.String("service", "thumbnail")),
	}
}

// Resolve produces a thumbnail for the video identified by fileID. When
// thumbFileID is non-empty the platform preview is fetched directly and the
// video itself is never downloaded; otherwise the video is downloaded and a
// frame is extracted. The provenance branch is decided here once, never
// re-checked downstream.
func (r *Resolver) Resolve(ctx context.Context, fileID, thumbFileID string) (*Result, error) {
	if thumbFileID != "" {
		path, err := r.fetcher.Fetch(ctx, thumbFileID, ".jpg")
		if err != nil {
			return nil, fmt.Errorf("%w: fetch preview %s: %v", ErrTransfer, thumbFileID, err)
		}
		r.logger.Debug("using platform thumbnail", slog.String("file_id", fileID))
		return &Result{
			Path:      path,
			Source:    SourceBuiltIn,
			TempFiles: []string{path},
		}, nil
	}

	videoPath, err := r.fetcher.Fetch(ctx, fileID, ".mp4")
	if err != nil {
		return nil, fmt.Errorf("%w: fetch video %s: %v", ErrTransfer, fileID, err)
	}
	framePath, err := r.extractor.ExtractFrame(ctx, videoPath)
	if err != nil {
		_ = os.Remove(videoPath)
		return nil, fmt.Errorf("%w: %v", ErrExtract, err)
	}
	r.logger.Debug("generated thumbnail", slog.String("file_id", fileID))
	return &Result{
		Path:      framePath,
		Source:    SourceGenerated,
		TempFiles: []string{videoPath, framePath},
	}, nil
}
