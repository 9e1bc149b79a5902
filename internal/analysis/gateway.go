package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clipviral/clipviral-server/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrInvalidResponse is returned whenever the model's reply cannot be turned
// into a usable clip list: malformed JSON, wrong shape, failed field
// validation, or an empty result. Callers surface its message verbatim.
var ErrInvalidResponse = errors.New("invalid response from AI model")

// Gateway is a one-shot client for the Gemini generateContent endpoint. It
// performs no retries and no caching; each Analyze call is a fresh request.
type Gateway struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewGateway(baseURL, model, apiKey string, timeout time.Duration, logger *zap.Logger) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		validate: validator.New(),
		logger:   logger,
	}
}

// Analyze sends the sampled frames to the model and returns its suggested
// clips in the order the model ranked them.
func (g *Gateway) Analyze(ctx context.Context, fileName string, frames []models.FrameSample) ([]models.Segment, error) {
	reqBody := g.buildRequest(fileName, frames)

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create analysis request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	g.logger.Info("Sending frames for analysis",
		zap.String("model", g.model),
		zap.String("fileName", fileName),
		zap.Int("frames", len(frames)),
		zap.Int("bodyBytes", len(body)),
	)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read analysis response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Error("Analysis service returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(respBody, 512)),
		)
		return nil, fmt.Errorf("analysis service returned HTTP %d", resp.StatusCode)
	}

	segments, err := g.parseResponse(respBody)
	if err != nil {
		g.logger.Error("Failed to parse analysis response", zap.Error(err))
		return nil, err
	}

	g.logger.Info("Analysis completed",
		zap.Int("segments", len(segments)),
	)

	return segments, nil
}

// parseResponse extracts the JSON clip list from the model reply and runs
// strict field validation over it. Anything unusable maps to
// ErrInvalidResponse.
func (g *Gateway) parseResponse(body []byte) ([]models.Segment, error) {
	var reply generateContentResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: not JSON", ErrInvalidResponse)
	}

	text := reply.firstText()
	if text == "" {
		return nil, fmt.Errorf("%w: empty candidate", ErrInvalidResponse)
	}

	var segments []models.Segment
	if err := json.Unmarshal([]byte(text), &segments); err != nil {
		return nil, fmt.Errorf("%w: payload is not a segment array", ErrInvalidResponse)
	}

	// An empty or degenerate clip list is a failure, never a Ready state
	// with zero clips.
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no segments returned", ErrInvalidResponse)
	}

	for i := range segments {
		if err := g.validate.Struct(&segments[i]); err != nil {
			return nil, fmt.Errorf("%w: segment %d failed validation", ErrInvalidResponse, i)
		}
	}

	return segments, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
