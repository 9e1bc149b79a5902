package handlers

import (
	"net/http"

	"github.com/clipviral/clipviral-server/internal/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SystemHandler struct {
	config *config.Config
	logger *zap.Logger
}

func NewSystemHandler(cfg *config.Config, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		config: cfg,
		logger: logger,
	}
}

func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "ClipViral Server",
		"version": "1.0.0",
		"ffmpeg":  h.config.FFmpeg.Path,
		"model":   h.config.Analysis.Model,
	})
}
