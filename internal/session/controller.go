package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clipviral/clipviral-server/internal/models"
	"github.com/clipviral/clipviral-server/internal/playback"
	"github.com/clipviral/clipviral-server/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned when an upload is submitted while a previous one
	// is still processing. Only Idle accepts submissions.
	ErrBusy = errors.New("a video is already being processed")

	// ErrInvalidState is returned when an operation is not valid in the
	// session's current state.
	ErrInvalidState = errors.New("operation not valid in current session state")
)

// fallbackErrorMessage is shown when a pipeline failure carries no message.
const fallbackErrorMessage = "An error occurred while processing the video."

// Sampler produces the fixed frame sequence for an upload.
type Sampler interface {
	Sample(ctx context.Context, videoID, videoPath string) ([]models.FrameSample, float64, error)
}

// Analyzer turns sampled frames into suggested clips.
type Analyzer interface {
	Analyze(ctx context.Context, fileName string, frames []models.FrameSample) ([]models.Segment, error)
}

// Controller owns the one processing session: upload in, sampled frames
// through analysis, then an interactive Ready state with a selected clip and
// its playback engine. States move Idle -> Processing -> {Ready|Error};
// Ready and Error return to Idle only via Reset. There is no ambient
// global; everything about the session lives here.
type Controller struct {
	sampler       Sampler
	analyzer      Analyzer
	storage       *storage.Manager
	logger        *zap.Logger
	sampleTimeout time.Duration

	mu         sync.Mutex
	status     models.Status
	errMsg     string
	video      *models.ProcessedVideo
	uploadPath string
	activeClip int
	player     *playback.Engine
}

func NewController(sampler Sampler, analyzer Analyzer, store *storage.Manager, sampleTimeout time.Duration, logger *zap.Logger) *Controller {
	return &Controller{
		sampler:       sampler,
		analyzer:      analyzer,
		storage:       store,
		logger:        logger,
		sampleTimeout: sampleTimeout,
		status:        models.StatusIdle,
	}
}

// SubmitUpload runs the full pipeline for one uploaded file: sample frames,
// analyze, build the ProcessedVideo, enter Ready with clip 0 selected. Only
// valid from Idle; a second submission while Processing is rejected rather
// than started concurrently. Any failure lands in Error with a
// human-readable message and no partial results.
func (c *Controller) SubmitUpload(ctx context.Context, fileName, uploadPath string) (models.SessionSnapshot, error) {
	c.mu.Lock()
	if c.status != models.StatusIdle {
		status := c.status
		c.mu.Unlock()
		if status == models.StatusProcessing {
			return models.SessionSnapshot{}, ErrBusy
		}
		return models.SessionSnapshot{}, fmt.Errorf("%w: submit requires idle, session is %s", ErrInvalidState, status)
	}
	c.status = models.StatusProcessing
	c.errMsg = ""
	c.video = nil
	c.mu.Unlock()

	videoID := uuid.New().String()

	c.logger.Info("Processing upload",
		zap.String("videoID", videoID),
		zap.String("fileName", fileName),
	)

	// Sampling is bounded: a stalled metadata load or seek fails the
	// session instead of hanging it forever.
	sampleCtx, cancel := context.WithTimeout(ctx, c.sampleTimeout)
	frames, duration, err := c.sampler.Sample(sampleCtx, videoID, uploadPath)
	cancel()
	if err != nil {
		return c.fail(videoID, uploadPath, err), nil
	}

	clips, err := c.analyzer.Analyze(ctx, fileName, frames)
	if err != nil {
		return c.fail(videoID, uploadPath, err), nil
	}
	if len(clips) == 0 {
		return c.fail(videoID, uploadPath, errors.New("analysis returned no clips")), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.video = &models.ProcessedVideo{
		ID:       videoID,
		URL:      fmt.Sprintf("/api/videos/%s/stream", videoID),
		Name:     fileName,
		Duration: duration,
		Clips:    clips,
	}
	c.uploadPath = uploadPath
	c.activeClip = 0
	c.player = playback.NewEngine(clips[0])
	c.status = models.StatusReady

	c.logger.Info("Session ready",
		zap.String("videoID", videoID),
		zap.Int("clips", len(clips)),
		zap.Float64("duration", duration),
	)

	return c.snapshotLocked(), nil
}

// fail moves the session to Error and discards everything from the failed
// attempt, including any frames already captured.
func (c *Controller) fail(videoID, uploadPath string, err error) models.SessionSnapshot {
	msg := err.Error()
	if msg == "" {
		msg = fallbackErrorMessage
	}

	c.logger.Error("Processing failed",
		zap.String("videoID", videoID),
		zap.Error(err),
	)

	c.storage.ReleaseVideo(videoID, uploadPath)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = models.StatusError
	c.errMsg = msg
	c.video = nil
	c.uploadPath = ""
	return c.snapshotLocked()
}

// SelectClip changes the active clip. Valid only in Ready; the index is
// clamped to the clip list. The previous clip's engine is detached so its
// ticks can no longer fire, and a fresh engine is seeked to the new clip's
// start.
func (c *Controller) SelectClip(index int) (models.SelectClipResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != models.StatusReady {
		return models.SelectClipResponse{}, fmt.Errorf("%w: select requires ready, session is %s", ErrInvalidState, c.status)
	}

	if index < 0 {
		index = 0
	}
	if index >= len(c.video.Clips) {
		index = len(c.video.Clips) - 1
	}

	if c.player != nil {
		c.player.Detach()
	}

	clip := c.video.Clips[index]
	c.activeClip = index
	c.player = playback.NewEngine(clip)

	c.logger.Info("Selected clip",
		zap.Int("index", index),
		zap.String("clipID", clip.ID),
	)

	return models.SelectClipResponse{
		Index:  index,
		Clip:   clip,
		SeekTo: clip.StartTime,
		Muted:  true,
	}, nil
}

// Tick forwards one play-head update to the active clip's engine.
func (c *Controller) Tick(time float64) (models.TickResponse, error) {
	c.mu.Lock()
	player := c.player
	status := c.status
	c.mu.Unlock()

	if status != models.StatusReady || player == nil {
		return models.TickResponse{}, fmt.Errorf("%w: no active preview", ErrInvalidState)
	}

	return player.Tick(time)
}

// Reset returns the session to Idle from Ready or Error, releasing the
// processed video's files. The stream URL for the discarded video is dead
// afterwards.
func (c *Controller) Reset() (models.SessionSnapshot, error) {
	c.mu.Lock()

	if c.status != models.StatusReady && c.status != models.StatusError {
		defer c.mu.Unlock()
		return models.SessionSnapshot{}, fmt.Errorf("%w: reset requires ready or error, session is %s", ErrInvalidState, c.status)
	}

	video := c.video
	uploadPath := c.uploadPath

	if c.player != nil {
		c.player.Detach()
		c.player = nil
	}
	c.status = models.StatusIdle
	c.errMsg = ""
	c.video = nil
	c.uploadPath = ""
	c.activeClip = 0
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if video != nil {
		c.storage.ReleaseVideo(video.ID, uploadPath)
	}

	c.logger.Info("Session reset to idle")
	return snap, nil
}

// Snapshot returns the session's current read-only view.
func (c *Controller) Snapshot() models.SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() models.SessionSnapshot {
	return models.SessionSnapshot{
		Status:     c.status,
		Error:      c.errMsg,
		Video:      c.video,
		ActiveClip: c.activeClip,
	}
}

// VideoPath resolves a video ID to its playable file path. Only the current
// session's video is streamable.
func (c *Controller) VideoPath(videoID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.video == nil || c.video.ID != videoID {
		return "", fmt.Errorf("video not found: %s", videoID)
	}
	return c.uploadPath, nil
}
