package ffmpeg

import (
	"strings"
)

// ParseFFmpegError extracts error message from FFmpeg stderr output
func ParseFFmpegError(stderr string) string {
	// Look for common FFmpeg error patterns
	lines := strings.Split(stderr, "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])

		// Look for error indicators
		if strings.Contains(line, "error") ||
			strings.Contains(line, "Error") ||
			strings.Contains(line, "Invalid") ||
			strings.Contains(line, "failed") ||
			strings.Contains(line, "No such") {
			return line
		}
	}

	// If no specific error found, return last non-empty line
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			return line
		}
	}

	return "Unknown FFmpeg error"
}
