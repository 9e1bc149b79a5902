package playback

import (
	"errors"
	"sync"

	"github.com/clipviral/clipviral-server/internal/models"
)

// ErrDetached is returned by Tick after the engine has been detached from
// its segment. A detached engine never loops or produces captions, so a
// stale player cannot fire against a newly selected clip's timeline.
var ErrDetached = errors.New("playback engine is detached")

// Engine drives a bounded, looping preview window over one segment. The
// preview element reports play-head updates through Tick; the engine answers
// with the active caption and, when the play-head crosses the clip's end,
// the position to loop back to.
//
// Caption times and the play-head both live on the source video's timeline.
// They are compared raw, never rebased to clip-relative time.
type Engine struct {
	mu       sync.Mutex
	segment  models.Segment
	position float64
	detached bool
}

// NewEngine creates an engine for the segment with the play-head seeked to
// the segment's start.
func NewEngine(segment models.Segment) *Engine {
	return &Engine{
		segment:  segment,
		position: segment.StartTime,
	}
}

// Segment returns the segment this engine plays.
func (e *Engine) Segment() models.Segment {
	return e.segment
}

// Position returns the last play-head position the engine recorded.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Tick processes one play-head update. The active caption is evaluated on
// the reported (pre-loop) time; the loop check runs on the same tick, so
// once time reaches the segment's end the returned position is the
// segment's start.
func (e *Engine) Tick(time float64) (models.TickResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.detached {
		return models.TickResponse{}, ErrDetached
	}

	caption := ActiveCaption(e.segment.Captions, time)

	position := time
	looped := false
	if time >= e.segment.EndTime {
		position = e.segment.StartTime
		looped = true
	}
	e.position = position

	return models.TickResponse{
		Position: position,
		Caption:  caption,
		Looped:   looped,
	}, nil
}

// Detach permanently disconnects the engine from its segment. Called when
// the selection changes or the preview is torn down.
func (e *Engine) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached = true
}

// ActiveCaption returns the text of the first caption whose range contains
// the given time, inclusive on both ends. First-match order is load-bearing:
// overlapping captions resolve by list position, not recency.
func ActiveCaption(captions []models.Caption, time float64) string {
	for _, c := range captions {
		if time >= c.Start && time <= c.End {
			return c.Text
		}
	}
	return ""
}
