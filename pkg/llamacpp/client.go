// Package llamacpp implements the detection backend on a llama.cpp
// server's OpenAI-compatible chat endpoint. Like the ollama backend it
// serves label, barcode and object detection through a local vision
// model.
package llamacpp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/visionfit/visionfit/pkg/detection"
	"github.com/visionfit/visionfit/pkg/types"
)

const defaultTimeout = 300 * time.Second

// Client talks to a llama.cpp server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Message is an OpenAI-compatible chat message. Content is a string or a
// []ContentPart.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// ContentPart is one element of a multimodal message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an inline data URL.
type ImageURL struct {
	URL string `json:"url"`
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new llama.cpp backend.
func NewClient(serverURL string) (*Client, error) {
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	return &Client{
		baseURL:    strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// Kinds returns the feature kinds the llama.cpp backend serves.
func (c *Client) Kinds() []types.FeatureKind {
	return []types.FeatureKind{types.KindLabel, types.KindBarcode, types.KindObject}
}

// Detect sends the image and prompt to /v1/chat/completions and parses
// the JSON feature list out of the reply.
func (c *Client) Detect(ctx context.Context, req *types.DetectRequest) (*types.DetectResponse, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	content := []ContentPart{{Type: "text", Text: req.Prompt}}
	if len(req.ImageData) > 0 {
		content = append(content, ContentPart{
			Type: "image_url",
			ImageURL: &ImageURL{
				URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(req.ImageData),
			},
		})
	}

	chatReq := chatCompletionRequest{
		Model:       req.Model,
		Messages:    []Message{{Role: "user", Content: content}},
		Temperature: 0.2,
		MaxTokens:   4096,
		Stream:      false,
	}

	respBody, err := c.sendRequest(ctx, "/v1/chat/completions", chatReq)
	if err != nil {
		return nil, fmt.Errorf("llamacpp: request failed: %w", err)
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("llamacpp: failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llamacpp: no choices in response")
	}

	responseText := messageText(resp.Choices[0].Message)
	if responseText == "" {
		return nil, fmt.Errorf("llamacpp: empty response from server")
	}

	features, err := detection.ParseModelFeatures(responseText, req.Kind)
	if err != nil {
		return nil, fmt.Errorf("llamacpp: %w", err)
	}
	return &types.DetectResponse{Features: features}, nil
}

// messageText extracts the text of a reply, handling both the string and
// the content-part array forms.
func messageText(msg Message) string {
	switch content := msg.Content.(type) {
	case string:
		return content
	case []interface{}:
		for _, item := range content {
			if partMap, ok := item.(map[string]interface{}); ok {
				if text, ok := partMap["text"].(string); ok && text != "" {
					return text
				}
			}
		}
	}
	return ""
}

func (c *Client) sendRequest(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
