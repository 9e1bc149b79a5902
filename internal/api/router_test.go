package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clipviral/clipviral-server/internal/config"
	"github.com/clipviral/clipviral-server/internal/models"
	"github.com/clipviral/clipviral-server/internal/session"
	"github.com/clipviral/clipviral-server/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubSampler struct{}

func (stubSampler) Sample(ctx context.Context, videoID, videoPath string) ([]models.FrameSample, float64, error) {
	frames := make([]models.FrameSample, 5)
	for i := range frames {
		frames[i] = models.FrameSample{Index: i, MimeType: "image/jpeg", Data: "ZmFrZQ=="}
	}
	return frames, 100, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, fileName string, frames []models.FrameSample) ([]models.Segment, error) {
	return []models.Segment{
		{
			ID: "c1", StartTime: 12, EndTime: 40, Title: "Hook",
			Description: "high energy", ViralScore: 80,
			Captions: []models.Caption{{Text: "hi", Start: 12, End: 14}},
		},
	}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	cfg := &config.Config{}
	cfg.Server.MaxUploadSize = 1 << 20
	cfg.Server.CorsOrigins = []string{"*"}

	store := storage.NewManager(t.TempDir(), logger)
	if err := store.Initialize(); err != nil {
		t.Fatalf("failed to initialize storage: %v", err)
	}

	controller := session.NewController(stubSampler{}, stubAnalyzer{}, store, 30*time.Second, logger)

	return NewRouter(controller, store, cfg, logger)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func uploadFile(t *testing.T, router *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "talk.mp4")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	fw.Write([]byte("fake video bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/videos/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", w.Code)
	}
}

func TestYoutubeStub(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/videos/youtube", `{"url":"https://youtube.com/watch?v=x"}`)
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("POST /api/videos/youtube = %d, want 501", w.Code)
	}
	if !strings.Contains(w.Body.String(), "server-side proxy") {
		t.Errorf("youtube stub body = %s, want the proxy notice", w.Body.String())
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	// Fresh session is idle.
	w := doJSON(t, router, http.MethodGet, "/api/session", "")
	var snap models.SessionSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Status != models.StatusIdle {
		t.Fatalf("fresh session status = %s, want idle", snap.Status)
	}

	// Ticking with no active preview conflicts.
	if w := doJSON(t, router, http.MethodPost, "/api/session/player/tick", `{"time":5}`); w.Code != http.StatusConflict {
		t.Errorf("tick on idle session = %d, want 409", w.Code)
	}

	// Upload runs the pipeline to ready.
	w = uploadFile(t, router)
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Status != models.StatusReady || snap.Video == nil || len(snap.Video.Clips) != 1 {
		t.Fatalf("post-upload snapshot = %+v", snap)
	}

	// Select the clip and drive the preview.
	w = doJSON(t, router, http.MethodPost, "/api/session/clips/select", `{"index":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("select = %d: %s", w.Code, w.Body.String())
	}
	var sel models.SelectClipResponse
	json.Unmarshal(w.Body.Bytes(), &sel)
	if sel.SeekTo != 12 || !sel.Muted {
		t.Errorf("select response = %+v", sel)
	}

	w = doJSON(t, router, http.MethodPost, "/api/session/player/tick", `{"time":13}`)
	var tick models.TickResponse
	json.Unmarshal(w.Body.Bytes(), &tick)
	if tick.Caption != "hi" {
		t.Errorf("tick(13) caption = %q, want %q", tick.Caption, "hi")
	}

	w = doJSON(t, router, http.MethodPost, "/api/session/player/tick", `{"time":41}`)
	json.Unmarshal(w.Body.Bytes(), &tick)
	if !tick.Looped || tick.Position != 12 {
		t.Errorf("tick(41) = %+v, want loop to 12", tick)
	}

	// Reset lands back in idle.
	w = doJSON(t, router, http.MethodPost, "/api/session/reset", "")
	json.Unmarshal(w.Body.Bytes(), &snap)
	if snap.Status != models.StatusIdle {
		t.Errorf("post-reset status = %s, want idle", snap.Status)
	}
}

func TestUploadRequiresFile(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/videos/upload", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("upload without file = %d, want 400", w.Code)
	}
}
