package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/clipviral/clipviral-server/internal/config"
	"github.com/clipviral/clipviral-server/internal/models"
	"github.com/clipviral/clipviral-server/internal/session"
	"github.com/clipviral/clipviral-server/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VideoHandler struct {
	controller *session.Controller
	storage    *storage.Manager
	config     *config.Config
	logger     *zap.Logger
}

func NewVideoHandler(controller *session.Controller, store *storage.Manager, cfg *config.Config, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		controller: controller,
		storage:    store,
		config:     cfg,
		logger:     logger,
	}
}

// Upload receives a video file and runs the full pipeline: frame sampling,
// analysis, Ready (or Error). The response is the resulting session
// snapshot; processing failures surface there, not as HTTP errors.
func (h *VideoHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	if file.Size > h.config.Server.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	ext := filepath.Ext(file.Filename)
	destPath := h.storage.GetUploadPath(uuid.New().String() + ext)

	if err := c.SaveUploadedFile(file, destPath); err != nil {
		h.logger.Error("Failed to save uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	h.logger.Info("Video uploaded",
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
	)

	snapshot, err := h.controller.SubmitUpload(c.Request.Context(), file.Filename, destPath)
	if err != nil {
		if errors.Is(err, session.ErrBusy) || errors.Is(err, session.ErrInvalidState) {
			h.storage.DeleteFile(destPath)
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Youtube is a deliberate stub: fetching a remote video needs a server-side
// proxy this deployment does not ship. It never enters processing.
func (h *VideoHandler) Youtube(c *gin.Context) {
	var req models.YoutubeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusNotImplemented, gin.H{
		"error": "YouTube URL processing is not supported without a server-side proxy. Please upload a local video file instead.",
	})
}

// Stream serves the current session's video with HTTP Range support so the
// preview player can seek.
func (h *VideoHandler) Stream(c *gin.Context) {
	videoID := c.Param("id")

	videoPath, err := h.controller.VideoPath(videoID)
	if err != nil {
		h.logger.Warn("Video not found", zap.String("id", videoID))
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	file, err := os.Open(videoPath)
	if err != nil {
		h.logger.Error("Failed to open video file", zap.String("path", videoPath), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open video"})
		return
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get file info"})
		return
	}

	fileSize := fileInfo.Size()
	contentType := getContentType(videoPath)

	if rangeHeader := c.GetHeader("Range"); rangeHeader != "" {
		h.handleRangeRequest(c, file, fileSize, contentType, rangeHeader)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(fileSize, 10))
	c.Header("Accept-Ranges", "bytes")

	http.ServeContent(c.Writer, c.Request, fileInfo.Name(), fileInfo.ModTime(), file)
}

// handleRangeRequest handles HTTP Range requests for video seeking
func (h *VideoHandler) handleRangeRequest(c *gin.Context, file *os.File, fileSize int64, contentType, rangeHeader string) {
	// Parse range header: "bytes=start-end"
	if !strings.HasPrefix(rangeHeader, "bytes=") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range header"})
		return
	}

	rangeSpec := strings.TrimPrefix(rangeHeader, "bytes=")
	parts := strings.Split(rangeSpec, "-")
	if len(parts) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range format"})
		return
	}

	var start, end int64
	var err error

	if parts[0] != "" {
		start, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range start"})
			return
		}
	}

	if parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range end"})
			return
		}
	} else {
		end = fileSize - 1
	}

	if start > end || start >= fileSize {
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", fileSize))
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}
	if end >= fileSize {
		end = fileSize - 1
	}

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to seek video"})
		return
	}

	length := end - start + 1
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(length, 10))
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fileSize))
	c.Header("Accept-Ranges", "bytes")
	c.Status(http.StatusPartialContent)

	io.CopyN(c.Writer, file, length)
}

func getContentType(path string) string {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "video/mp4"
	}
	return contentType
}
