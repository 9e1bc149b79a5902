package playback

import (
	"errors"
	"testing"

	"github.com/clipviral/clipviral-server/internal/models"
)

func TestActiveCaption(t *testing.T) {
	captions := []models.Caption{
		{Text: "A", Start: 0, End: 5},
		{Text: "B", Start: 3, End: 8},
		{Text: "C", Start: 10, End: 12},
	}

	tests := []struct {
		name string
		time float64
		want string
	}{
		{"before everything", -1, ""},
		{"inside first", 1, "A"},
		{"overlap resolves to first match", 4, "A"},
		{"inclusive end of first", 5, "A"},
		{"after first, inside second", 6, "B"},
		{"gap between captions", 9, ""},
		{"inclusive start of third", 10, "C"},
		{"past everything", 13, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActiveCaption(captions, tt.time); got != tt.want {
				t.Errorf("ActiveCaption(%v) = %q, want %q", tt.time, got, tt.want)
			}
		})
	}
}

func TestActiveCaption_Empty(t *testing.T) {
	if got := ActiveCaption(nil, 5); got != "" {
		t.Errorf("ActiveCaption(nil) = %q, want empty", got)
	}
}

func testSegment() models.Segment {
	return models.Segment{
		ID:        "c1",
		StartTime: 12,
		EndTime:   40,
		Captions: []models.Caption{
			{Text: "hi", Start: 12, End: 14},
			{Text: "there", Start: 38, End: 41},
		},
	}
}

func TestEngine_SeeksToStart(t *testing.T) {
	e := NewEngine(testSegment())
	if got := e.Position(); got != 12 {
		t.Errorf("new engine position = %f, want 12", got)
	}
}

func TestEngine_Tick(t *testing.T) {
	e := NewEngine(testSegment())

	resp, err := e.Tick(13)
	if err != nil {
		t.Fatalf("Tick() unexpected error: %v", err)
	}
	if resp.Caption != "hi" {
		t.Errorf("Tick(13) caption = %q, want %q", resp.Caption, "hi")
	}
	if resp.Position != 13 || resp.Looped {
		t.Errorf("Tick(13) = %+v, want position 13 without loop", resp)
	}
}

func TestEngine_LoopInvariant(t *testing.T) {
	e := NewEngine(testSegment())

	// Crossing the end snaps the play-head back to the start on the same
	// tick, but the caption for that tick is evaluated on the pre-loop time.
	resp, err := e.Tick(40.5)
	if err != nil {
		t.Fatalf("Tick() unexpected error: %v", err)
	}
	if !resp.Looped {
		t.Error("Tick(40.5) did not loop")
	}
	if resp.Position != 12 {
		t.Errorf("Tick(40.5) position = %f, want 12", resp.Position)
	}
	if resp.Caption != "there" {
		t.Errorf("Tick(40.5) caption = %q, want pre-loop caption %q", resp.Caption, "there")
	}
	if e.Position() != 12 {
		t.Errorf("position after loop = %f, want 12", e.Position())
	}

	// Exactly at the end also loops.
	resp, _ = e.Tick(40)
	if !resp.Looped || resp.Position != 12 {
		t.Errorf("Tick(40) = %+v, want loop back to 12", resp)
	}
}

func TestEngine_Detach(t *testing.T) {
	e := NewEngine(testSegment())
	e.Detach()

	if _, err := e.Tick(13); !errors.Is(err, ErrDetached) {
		t.Errorf("Tick() after Detach error = %v, want ErrDetached", err)
	}
}
