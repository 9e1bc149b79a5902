package models

// Status is the lifecycle state of the single processing session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

// Caption is one timed caption word. Start and End are seconds on the source
// video's timeline, not relative to the clip that carries the caption.
type Caption struct {
	Text  string  `json:"text" validate:"required"`
	Start float64 `json:"start" validate:"gte=0"`
	End   float64 `json:"end" validate:"gtefield=Start"`
}

// Segment is one suggested viral clip: a time-bounded sub-range of the source
// video annotated by the analysis model.
type Segment struct {
	ID          string    `json:"id" validate:"required"`
	StartTime   float64   `json:"startTime" validate:"gte=0"`
	EndTime     float64   `json:"endTime" validate:"gtfield=StartTime"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	ViralScore  float64   `json:"viralScore" validate:"gte=0,lte=100"`
	Captions    []Caption `json:"captions" validate:"dive"`
}

// Duration returns the clip length in seconds.
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// FrameSample is one still image captured from the uploaded video at a fixed
// fractional offset of its duration. Data is the base64-encoded JPEG payload.
type FrameSample struct {
	Index     int     `json:"index"`
	Timestamp float64 `json:"timestamp"`
	MimeType  string  `json:"mime_type"`
	Data      string  `json:"-"`
	FilePath  string  `json:"-"`
}

// ProcessedVideo aggregates one analyzed upload: its playable stream URL,
// display name, and the ordered clip suggestions. It exists only while the
// session is Ready; Reset discards it and its files.
type ProcessedVideo struct {
	ID       string    `json:"id"`
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Duration float64   `json:"duration"`
	Clips    []Segment `json:"clips"`
}

// SessionSnapshot is the read-only view of the session handed to the API.
type SessionSnapshot struct {
	Status     Status          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Video      *ProcessedVideo `json:"video,omitempty"`
	ActiveClip int             `json:"active_clip"`
}

// SelectClipRequest selects a clip for preview by its index in the clip list.
type SelectClipRequest struct {
	Index int `json:"index"`
}

// TickRequest carries one play-head update from the preview player.
type TickRequest struct {
	Time float64 `json:"time"`
}

// TickResponse tells the player what to show for this tick: the active
// caption (empty when none), and where the play-head now is. Looped is set
// when the tick crossed the clip's end and the position snapped back.
type TickResponse struct {
	Position float64 `json:"position"`
	Caption  string  `json:"caption"`
	Looped   bool    `json:"looped"`
}

// SelectClipResponse returns the selected clip plus playback directives for
// the preview element. Muted is always true so autoplay needs no gesture.
type SelectClipResponse struct {
	Index  int     `json:"index"`
	Clip   Segment `json:"clip"`
	SeekTo float64 `json:"seek_to"`
	Muted  bool    `json:"muted"`
}

// YoutubeRequest is the URL-import form. The endpoint is a deliberate stub.
type YoutubeRequest struct {
	URL string `json:"url" binding:"required"`
}
