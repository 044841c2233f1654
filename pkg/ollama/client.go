// Package ollama implements the detection backend on a local Ollama
// server running a vision-capable model. It serves the on-device detector
// variants the cloud backend does not: whole-image labels, barcode
// payloads, and custom object classification.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/visionfit/visionfit/pkg/detection"
	"github.com/visionfit/visionfit/pkg/types"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "llama3.2-vision"

// defaultTimeout bounds a single chat call when the caller's context has
// no deadline. Vision models on CPU can take minutes per image.
const defaultTimeout = 300 * time.Second

// Client wraps the Ollama API client.
type Client struct {
	client *api.Client
}

// NewClient creates a new Ollama backend for the given server URL. Any
// path component (like /api/chat) is stripped.
func NewClient(serverURL string) (*Client, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid URL: %w", err)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Client{client: api.NewClient(base, http.DefaultClient)}, nil
}

// Kinds returns the feature kinds the Ollama backend serves.
func (c *Client) Kinds() []types.FeatureKind {
	return []types.FeatureKind{types.KindLabel, types.KindBarcode, types.KindObject}
}

// Detect sends the image and the request prompt to the model and parses
// the JSON feature list out of the reply.
func (c *Client) Detect(ctx context.Context, req *types.DetectRequest) (*types.DetectResponse, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	streamFalse := false
	chatReq := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: req.Prompt,
				Images:  []api.ImageData{api.ImageData(req.ImageData)},
			},
		},
		Stream: &streamFalse,
	}

	var responseContent string
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: chat error: %w", err)
	}
	if responseContent == "" {
		return nil, fmt.Errorf("ollama: empty response from server")
	}

	features, err := detection.ParseModelFeatures(responseContent, req.Kind)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	return &types.DetectResponse{Features: features}, nil
}
