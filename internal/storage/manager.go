package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Manager handles file storage operations
type Manager struct {
	basePath string
	logger   *zap.Logger
}

// NewManager creates a new storage manager
func NewManager(basePath string, logger *zap.Logger) *Manager {
	return &Manager{
		basePath: basePath,
		logger:   logger,
	}
}

// Initialize creates the storage directory structure
func (m *Manager) Initialize() error {
	dirs := []string{
		m.UploadsDir(),
		m.FramesDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		m.logger.Info("Created storage directory", zap.String("path", dir))
	}

	return nil
}

// UploadsDir returns the uploads directory path
func (m *Manager) UploadsDir() string {
	return filepath.Join(m.basePath, "uploads")
}

// FramesDir returns the sampled-frames directory path
func (m *Manager) FramesDir() string {
	return filepath.Join(m.basePath, "frames")
}

// GetUploadPath returns the full path for an uploaded video file
func (m *Manager) GetUploadPath(filename string) string {
	return filepath.Join(m.UploadsDir(), filename)
}

// GetFramePath returns the full path for a sampled frame. Frames are keyed by
// the video ID and the sample ordinal so one video's frames list together.
func (m *Manager) GetFramePath(videoID string, index int) string {
	return filepath.Join(m.FramesDir(), fmt.Sprintf("%s_frame_%d.jpg", videoID, index))
}

// DeleteFile removes a file
func (m *Manager) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// FileExists checks if a file exists
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GetFileSize returns the size of a file
func (m *Manager) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ReleaseVideo removes an upload and every frame sampled from it. Called on
// session reset; the stream URL for the video is dead afterwards.
func (m *Manager) ReleaseVideo(videoID, uploadPath string) {
	if uploadPath != "" {
		if err := m.DeleteFile(uploadPath); err != nil {
			m.logger.Warn("Failed to delete upload", zap.String("path", uploadPath), zap.Error(err))
		}
	}

	matches, err := filepath.Glob(filepath.Join(m.FramesDir(), videoID+"_frame_*.jpg"))
	if err != nil {
		return
	}
	for _, path := range matches {
		if err := m.DeleteFile(path); err != nil {
			m.logger.Warn("Failed to delete frame", zap.String("path", path), zap.Error(err))
		}
	}

	m.logger.Info("Released video files",
		zap.String("videoID", videoID),
		zap.Int("frames", len(matches)),
	)
}
