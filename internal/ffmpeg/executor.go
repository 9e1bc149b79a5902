package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// Executor manages FFmpeg process execution
type Executor struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

// NewExecutor creates a new FFmpeg executor
func NewExecutor(ffmpegPath, ffprobePath string, logger *zap.Logger) *Executor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	return &Executor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
	}
}

// Execute runs FFmpeg with the given arguments
func (e *Executor) Execute(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	e.logger.Info("Executing FFmpeg",
		zap.String("command", cmd.String()),
	)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}

		errorMsg := ParseFFmpegError(stderrBuf.String())
		e.logger.Error("FFmpeg execution failed",
			zap.Error(err),
			zap.String("stderr", errorMsg),
		)

		return fmt.Errorf("ffmpeg failed: %s", errorMsg)
	}

	return nil
}

// CaptureFrame captures a single frame at the given timestamp as a JPEG,
// scaled down by scaleDivisor (4 = quarter width and height). quality is the
// MJPEG q:v value, 2 (best) to 31 (worst).
func (e *Executor) CaptureFrame(ctx context.Context, input, output string, timestamp float64, scaleDivisor, quality int) error {
	if scaleDivisor < 1 {
		scaleDivisor = 1
	}

	// -ss before -i seeks on the input, which is near-instant for a single
	// frame grab.
	args := []string{
		"-hide_banner",
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", input,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=iw/%d:ih/%d", scaleDivisor, scaleDivisor),
		"-q:v", fmt.Sprintf("%d", quality),
		"-y",
		output,
	}

	return e.Execute(ctx, args)
}
