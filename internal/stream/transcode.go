package stream

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

const (
	ffmpegCommand = "ffmpeg"
	audioBitrate  = "192k"
)

// Transcoder normalizes a downloaded audio file into MP3.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string) error
}

// FFmpegTranscoder shells out to ffmpeg. Conversions run as blocking
// subprocesses, so a fixed number of slots bounds how many can run at once;
// callers past the limit wait (or give up with their context).
type FFmpegTranscoder struct {
	binary string
	slots  chan struct{}
}

func NewFFmpegTranscoder(binary string, maxParallel int) *FFmpegTranscoder {
	if binary == "" {
		binary = ffmpegCommand
	}
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &FFmpegTranscoder{
		binary: binary,
		slots:  make(chan struct{}, maxParallel),
	}
}

func (t *FFmpegTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	select {
	case t.slots <- struct{}{}:
		defer func() { <-t.slots }()
	case <-ctx.Done():
		return ctx.Err()
	}

	cmd := exec.CommandContext(ctx, t.binary,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", inputPath,
		"-vn",
		"-b:a", audioBitrate,
		"-f", "mp3",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}
