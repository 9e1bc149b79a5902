package handlers

import (
	"errors"
	"net/http"

	"github.com/clipviral/clipviral-server/internal/models"
	"github.com/clipviral/clipviral-server/internal/playback"
	"github.com/clipviral/clipviral-server/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	controller *session.Controller
	logger     *zap.Logger
}

func NewSessionHandler(controller *session.Controller, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		controller: controller,
		logger:     logger,
	}
}

// Status returns the current session snapshot.
func (h *SessionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// Reset returns the session to idle from ready or error.
func (h *SessionHandler) Reset(c *gin.Context) {
	snapshot, err := h.controller.Reset()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ListClips returns the ready session's clip suggestions.
func (h *SessionHandler) ListClips(c *gin.Context) {
	snapshot := h.controller.Snapshot()
	if snapshot.Status != models.StatusReady || snapshot.Video == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no clips available"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clips":       snapshot.Video.Clips,
		"active_clip": snapshot.ActiveClip,
	})
}

// SelectClip switches the active preview clip.
func (h *SessionHandler) SelectClip(c *gin.Context) {
	var req models.SelectClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.controller.SelectClip(req.Index)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Tick forwards one play-head update from the preview player and returns
// the caption to overlay plus any loop-back seek.
func (h *SessionHandler) Tick(c *gin.Context) {
	var req models.TickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.controller.Tick(req.Time)
	if err != nil {
		if errors.Is(err, playback.ErrDetached) {
			// The clip changed between ticks; the player should resync.
			c.JSON(http.StatusConflict, gin.H{"error": "preview is stale, reselect the clip"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
