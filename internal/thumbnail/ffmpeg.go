package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// DefaultSeekSeconds is the playback offset of the captured frame.
const DefaultSeekSeconds = 1

// FFmpeg extracts still frames by shelling out to the ffmpeg binary.
type FFmpeg struct {
	// Binary is the ffmpeg executable name or path ("ffmpeg" by default).
	Binary string
	// SeekSeconds is the capture offset (DefaultSeekSeconds by default).
	SeekSeconds int
}

// NewFFmpeg creates an extractor with default binary and seek offset.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{Binary: "ffmpeg", SeekSeconds: DefaultSeekSeconds}
}

// ExtractFrame captures one JPEG frame from videoPath into a new temporary
// file and returns its path. Videos shorter than the seek offset or not
// decodable fail with the ffmpeg diagnostics attached.
func (f *FFmpeg) ExtractFrame(ctx context.Context, videoPath string) (string, error) {
	tmp, err := os.CreateTemp("", "teleclip-frame-*.jpg")
	if err != nil {
		return "", err
	}
	outPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(outPath)
		return "", err
	}

	cmd := exec.CommandContext(ctx, f.binary(), f.args(videoPath, outPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}

	// ffmpeg exits 0 but writes nothing when the seek lands past the end.
	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg produced no frame for %s", videoPath)
	}
	return outPath, nil
}

func (f *FFmpeg) binary() string {
	if f.Binary != "" {
		return f.Binary
	}
	return "ffmpeg"
}

func (f *FFmpeg) args(videoPath, outPath string) []string {
	seek := f.SeekSeconds
	if seek <= 0 {
		seek = DefaultSeekSeconds
	}
	return []string{
		"-ss", strconv.Itoa(seek),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		outPath,
	}
}
