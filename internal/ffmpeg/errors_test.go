package ffmpeg

import (
	"strings"
	"testing"
)

func TestParseFFmpegError(t *testing.T) {
	tests := []struct {
		name     string
		stderr   string
		contains string
	}{
		{
			name:     "file not found",
			stderr:   "ffmpeg version 6.0\nInput #0, mov,mp4,m4a,3gp,3g2,mj2, from 'test.mp4':\ntest.mp4: No such file or directory",
			contains: "No such",
		},
		{
			name:     "decode error",
			stderr:   "ffmpeg version 6.0\nInvalid data found when processing input",
			contains: "Invalid",
		},
		{
			name:     "falls back to last line",
			stderr:   "ffmpeg version 6.0\nsome diagnostic output\n",
			contains: "diagnostic",
		},
		{
			name:     "empty stderr",
			stderr:   "",
			contains: "Unknown FFmpeg error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseFFmpegError(tt.stderr)
			if !strings.Contains(result, tt.contains) {
				t.Errorf("ParseFFmpegError() = %q, want it to contain %q", result, tt.contains)
			}
		})
	}
}
