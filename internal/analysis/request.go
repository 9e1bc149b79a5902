package analysis

import (
	"fmt"

	"github.com/clipviral/clipviral-server/internal/models"
)

// Wire types for the generateContent endpoint. Only the fields this gateway
// uses are declared.

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"response_mime_type,omitempty"`
	ResponseSchema   *schema `json:"response_schema,omitempty"`
}

type schema struct {
	Type       string            `json:"type"`
	Properties map[string]schema `json:"properties,omitempty"`
	Items      *schema           `json:"items,omitempty"`
	Required   []string          `json:"required,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r generateContentResponse) firstText() string {
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// buildRequest assembles the inline frame parts followed by the task
// instruction, and declares the segment-array schema the model must return.
func (g *Gateway) buildRequest(fileName string, frames []models.FrameSample) generateContentRequest {
	parts := make([]part, 0, len(frames)+1)
	for _, frame := range frames {
		parts = append(parts, part{
			InlineData: &inlineData{
				MimeType: frame.MimeType,
				Data:     frame.Data,
			},
		})
	}
	parts = append(parts, part{Text: buildPrompt(fileName)})

	return generateContentRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   segmentListSchema(),
		},
	}
}

func buildPrompt(fileName string) string {
	return fmt.Sprintf(`Analyze this long-form video named %q.
1. Identify 3 potential viral segments (between 15-60 seconds each).
2. For each segment, give it a catchy "TikTok style" title and a description explaining why it's viral (e.g., "high energy", "controversial hook", "educational value").
3. Generate a set of word-by-word captions for the first 10 seconds of each segment.
4. Provide a 'viralScore' from 0 to 100 based on engagement potential.

Return the data in a structured JSON format.`, fileName)
}

func segmentListSchema() *schema {
	captionSchema := schema{
		Type: "OBJECT",
		Properties: map[string]schema{
			"text":  {Type: "STRING"},
			"start": {Type: "NUMBER"},
			"end":   {Type: "NUMBER"},
		},
	}

	return &schema{
		Type: "ARRAY",
		Items: &schema{
			Type: "OBJECT",
			Properties: map[string]schema{
				"id":          {Type: "STRING"},
				"startTime":   {Type: "NUMBER"},
				"endTime":     {Type: "NUMBER"},
				"title":       {Type: "STRING"},
				"description": {Type: "STRING"},
				"viralScore":  {Type: "NUMBER"},
				"captions": {
					Type:  "ARRAY",
					Items: &captionSchema,
				},
			},
			Required: []string{"id", "startTime", "endTime", "title", "description", "viralScore", "captions"},
		},
	}
}
