package sampler

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/clipviral/clipviral-server/internal/ffmpeg"
	"github.com/clipviral/clipviral-server/internal/models"
	"github.com/clipviral/clipviral-server/internal/storage"
	"go.uber.org/zap"
)

// FrameCount is fixed by design: every successful run yields exactly this
// many samples regardless of video length.
const FrameCount = 5

// offsets are the fractional capture points through the video's duration,
// in strictly increasing order.
var offsets = [FrameCount]float64{0.1, 0.3, 0.5, 0.7, 0.9}

const (
	// Captured frames are scaled to one-quarter of the native width and
	// height to keep the analysis payload small.
	scaleDivisor = 4

	// MJPEG q:v midpoint, roughly 0.5 on a 0..1 quality scale.
	jpegQuality = 15
)

// Timestamps returns the capture timestamps for a video of the given
// duration: exactly FrameCount values at the fixed fractional offsets, in
// increasing order.
func Timestamps(duration float64) []float64 {
	ts := make([]float64, 0, FrameCount)
	for _, off := range offsets {
		ts = append(ts, off*duration)
	}
	return ts
}

// Surface is the single decode/seek surface the sampler drives. Satisfied by
// *ffmpeg.Executor.
type Surface interface {
	Probe(ctx context.Context, filePath string) (*ffmpeg.ProbeResult, error)
	CaptureFrame(ctx context.Context, input, output string, timestamp float64, scaleDivisor, quality int) error
}

// Sampler extracts representative still frames from an uploaded video.
type Sampler struct {
	surface Surface
	storage *storage.Manager
	logger  *zap.Logger
}

func New(surface Surface, storage *storage.Manager, logger *zap.Logger) *Sampler {
	return &Sampler{
		surface: surface,
		storage: storage,
		logger:  logger,
	}
}

// Sample probes the video for its duration, then captures FrameCount JPEG
// frames at the fixed fractional offsets. Captures run strictly
// sequentially: the one decode surface is reused between seeks and
// concurrent seeks on it race. On success the result is always exactly
// FrameCount samples in offset order, plus the probed duration in seconds.
func (s *Sampler) Sample(ctx context.Context, videoID, videoPath string) ([]models.FrameSample, float64, error) {
	probe, err := s.surface.Probe(ctx, videoPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read video metadata: %w", err)
	}

	duration, err := probe.GetDuration()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read video duration: %w", err)
	}
	if duration <= 0 {
		return nil, 0, fmt.Errorf("cannot sample video with duration %.3f", duration)
	}

	frames := make([]models.FrameSample, 0, FrameCount)

	for i, ts := range Timestamps(duration) {
		framePath := s.storage.GetFramePath(videoID, i)

		if err := s.surface.CaptureFrame(ctx, videoPath, framePath, ts, scaleDivisor, jpegQuality); err != nil {
			return nil, 0, fmt.Errorf("failed to capture frame %d at %.2fs: %w", i, ts, err)
		}

		data, err := os.ReadFile(framePath)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read frame %d: %w", i, err)
		}

		frames = append(frames, models.FrameSample{
			Index:     i,
			Timestamp: ts,
			MimeType:  "image/jpeg",
			Data:      base64.StdEncoding.EncodeToString(data),
			FilePath:  framePath,
		})

		s.logger.Debug("Captured frame",
			zap.String("videoID", videoID),
			zap.Int("index", i),
			zap.Float64("timestamp", ts),
			zap.Int("bytes", len(data)),
		)
	}

	s.logger.Info("Frame sampling completed",
		zap.String("videoID", videoID),
		zap.Int("frames", len(frames)),
		zap.Float64("duration", duration),
	)

	return frames, duration, nil
}
