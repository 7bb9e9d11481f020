package thumbnail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFFmpegArgs(t *testing.T) {
	f := NewFFmpeg()
	args := f.args("/tmp/in.mp4", "/tmp/out.jpg")
	assert.Equal(t, []string{"-ss", "1", "-i", "/tmp/in.mp4", "-frames:v", "1", "-q:v", "2", "-y", "/tmp/out.jpg"}, args)
}

func TestFFmpegArgsCustomSeek(t *testing.T) {
	f := NewFFmpeg()
	f.SeekSeconds = 5
	assert.Equal(t, "5", f.args("in", "out")[1])
}

func TestFFmpegArgsZeroSeekFallsBack(t *testing.T) {
	f := &FFmpeg{}
	assert.Equal(t, "1", f.args("in", "out")[1])
	assert.Equal(t, "ffmpeg", f.binary())
}
