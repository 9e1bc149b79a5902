package api

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/clipviral/clipviral-server/internal/api/handlers"
	"github.com/clipviral/clipviral-server/internal/api/middleware"
	"github.com/clipviral/clipviral-server/internal/config"
	"github.com/clipviral/clipviral-server/internal/session"
	"github.com/clipviral/clipviral-server/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(controller *session.Controller, store *storage.Manager, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CorsOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Range"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// System endpoints
		systemHandler := handlers.NewSystemHandler(cfg, logger)
		api.GET("/system/info", systemHandler.Info)

		// Video endpoints
		videos := api.Group("/videos")
		{
			videoHandler := handlers.NewVideoHandler(controller, store, cfg, logger)
			videos.POST("/upload", videoHandler.Upload)
			videos.POST("/youtube", videoHandler.Youtube)
			videos.GET("/:id/stream", videoHandler.Stream)
		}

		// Session endpoints
		sess := api.Group("/session")
		{
			sessionHandler := handlers.NewSessionHandler(controller, logger)
			sess.GET("", sessionHandler.Status)
			sess.POST("/reset", sessionHandler.Reset)
			sess.GET("/clips", sessionHandler.ListClips)
			sess.POST("/clips/select", sessionHandler.SelectClip)
			sess.POST("/player/tick", sessionHandler.Tick)
		}

		// Sampled frame downloads
		api.GET("/frames/:filename", func(c *gin.Context) {
			filename := c.Param("filename")
			path := filepath.Join(store.FramesDir(), filepath.Base(filename))

			if !store.FileExists(path) {
				logger.Warn("Frame not found", zap.String("filename", filename))
				c.JSON(http.StatusNotFound, gin.H{"error": "frame not found"})
				return
			}

			c.Header("Content-Type", "image/jpeg")
			c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", filename))
			c.File(path)
		})
	}

	// Serve frontend static files
	router.Static("/assets", "./web/assets")
	router.StaticFile("/", "./web/index.html")
	router.StaticFile("/index.html", "./web/index.html")

	// Catch-all for SPA routing
	router.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	return router
}
