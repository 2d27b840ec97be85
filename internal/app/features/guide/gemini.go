// internal/app/features/guide/gemini.go
package guide

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Turn is one prior exchange in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces an assistant reply for a conversation. The system
// instruction travels separately from the user-supplied turns and is never
// concatenated with them, so user content cannot rewrite the assistant's
// ground rules.
type Generator interface {
	Generate(ctx context.Context, systemInstruction string, history []Turn, message string) (string, error)
}

// GeminiClient calls the Google Generative Language API.
type GeminiClient struct {
	httpClient *resty.Client
	apiKey     string
	model      string
	logger     *zap.Logger
}

func NewGeminiClient(apiKey, model string, logger *zap.Logger) *GeminiClient {
	if model == "" {
		model = defaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL("https://generativelanguage.googleapis.com/v1beta").
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &GeminiClient{
		httpClient: client,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

// SetBaseURL points the client at a different API host. Used by tests.
func (c *GeminiClient) SetBaseURL(url string) { c.httpClient.SetBaseURL(url) }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the conversation to Gemini. History roles are mapped to
// the API's user/model vocabulary; the assistant role becomes model.
func (c *GeminiClient) Generate(ctx context.Context, systemInstruction string, history []Turn, message string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: message}},
	})

	request := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
		Contents:          contents,
	}

	var response geminiResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(request).
		SetResult(&response).
		SetError(&response).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		c.logger.Error("gemini call failed", zap.Error(err))
		return "", fmt.Errorf("failed to call generation backend: %w", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if response.Error != nil {
			msg = response.Error.Message
		}
		c.logger.Error("gemini returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", msg))
		return "", fmt.Errorf("generation backend error: %s", msg)
	}

	if len(response.Candidates) == 0 {
		return "", fmt.Errorf("generation backend returned no candidates")
	}
	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}
