// Package gcv implements the detection backend on the Google Cloud
// Vision API. It serves the cloud detector variants: face, text, label
// and landmark detection.
package gcv

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"google.golang.org/api/option"
	pb "google.golang.org/genproto/googleapis/cloud/vision/v1"

	"github.com/visionfit/visionfit/pkg/types"
)

// maxResults caps any single annotate call.
const maxResults = 50

// Client wraps the Cloud Vision image annotator.
type Client struct {
	client *vision.ImageAnnotatorClient
}

// NewClient creates a new Cloud Vision backend. Credentials come from the
// environment unless overridden with option.WithCredentialsFile or
// similar.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcv: failed to create annotator client: %w", err)
	}
	return &Client{client: c}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Kinds returns the feature kinds the Cloud Vision backend serves.
func (c *Client) Kinds() []types.FeatureKind {
	return []types.FeatureKind{types.KindFace, types.KindText, types.KindLabel, types.KindLandmark}
}

// Detect performs one annotate call for the requested feature kind.
func (c *Client) Detect(ctx context.Context, req *types.DetectRequest) (*types.DetectResponse, error) {
	img, err := vision.NewImageFromReader(bytes.NewReader(req.ImageData))
	if err != nil {
		return nil, fmt.Errorf("gcv: failed to build request image: %w", err)
	}

	switch req.Kind {
	case types.KindFace:
		return c.detectFaces(ctx, img)
	case types.KindText:
		return c.detectText(ctx, img)
	case types.KindLabel:
		return c.detectLabels(ctx, img)
	case types.KindLandmark:
		return c.detectLandmarks(ctx, img)
	default:
		return nil, fmt.Errorf("gcv: unsupported feature kind %q", req.Kind)
	}
}

func (c *Client) detectFaces(ctx context.Context, img *pb.Image) (*types.DetectResponse, error) {
	faces, err := c.client.DetectFaces(ctx, img, nil, maxResults)
	if err != nil {
		return nil, fmt.Errorf("gcv: face detection: %w", err)
	}

	features := make([]types.Feature, 0, len(faces))
	for _, fa := range faces {
		f := types.Feature{
			Kind:       types.KindFace,
			Bounds:     polyRect(fa.GetBoundingPoly()),
			Confidence: float64(fa.GetDetectionConfidence()),
		}
		for _, lm := range fa.GetLandmarks() {
			pos := lm.GetPosition()
			if pos == nil {
				continue
			}
			f.Landmarks = append(f.Landmarks, types.Point{X: float64(pos.GetX()), Y: float64(pos.GetY())})
		}
		features = append(features, f)
	}
	return &types.DetectResponse{Features: features}, nil
}

// detectText uses the document-text endpoint so that the per-block text
// is fully assembled from its paragraphs, words and symbols rather than
// left to the caller.
func (c *Client) detectText(ctx context.Context, img *pb.Image) (*types.DetectResponse, error) {
	doc, err := c.client.DetectDocumentText(ctx, img, nil)
	if err != nil {
		return nil, fmt.Errorf("gcv: text detection: %w", err)
	}
	if doc == nil {
		return &types.DetectResponse{}, nil
	}

	var features []types.Feature
	for _, page := range doc.GetPages() {
		for _, block := range page.GetBlocks() {
			text := blockText(block)
			if text == "" {
				continue
			}
			features = append(features, types.Feature{
				Kind:       types.KindText,
				Bounds:     polyRect(block.GetBoundingBox()),
				Text:       text,
				Confidence: float64(block.GetConfidence()),
			})
		}
	}
	return &types.DetectResponse{Features: features}, nil
}

func (c *Client) detectLabels(ctx context.Context, img *pb.Image) (*types.DetectResponse, error) {
	anns, err := c.client.DetectLabels(ctx, img, nil, maxResults)
	if err != nil {
		return nil, fmt.Errorf("gcv: label detection: %w", err)
	}
	return &types.DetectResponse{Features: entityFeatures(anns, types.KindLabel)}, nil
}

func (c *Client) detectLandmarks(ctx context.Context, img *pb.Image) (*types.DetectResponse, error) {
	anns, err := c.client.DetectLandmarks(ctx, img, nil, maxResults)
	if err != nil {
		return nil, fmt.Errorf("gcv: landmark detection: %w", err)
	}
	return &types.DetectResponse{Features: entityFeatures(anns, types.KindLandmark)}, nil
}

func entityFeatures(anns []*pb.EntityAnnotation, kind types.FeatureKind) []types.Feature {
	features := make([]types.Feature, 0, len(anns))
	for _, a := range anns {
		features = append(features, types.Feature{
			Kind:       kind,
			Bounds:     polyRect(a.GetBoundingPoly()),
			Label:      a.GetDescription(),
			Confidence: float64(a.GetScore()),
		})
	}
	return features
}

// polyRect reduces a bounding polygon to its axis-aligned bounding
// rectangle in pixel coordinates. Annotations without geometry (labels)
// yield the zero Rect.
func polyRect(poly *pb.BoundingPoly) types.Rect {
	verts := poly.GetVertices()
	if len(verts) == 0 {
		return types.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range verts {
		x, y := float64(v.GetX()), float64(v.GetY())
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	return types.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// blockText assembles the text of a document block: words joined by
// spaces, paragraphs separated by newlines.
func blockText(block *pb.Block) string {
	var paragraphs []string
	for _, para := range block.GetParagraphs() {
		var words []string
		for _, word := range para.GetWords() {
			var sb strings.Builder
			for _, sym := range word.GetSymbols() {
				sb.WriteString(sym.GetText())
			}
			if sb.Len() > 0 {
				words = append(words, sb.String())
			}
		}
		if len(words) > 0 {
			paragraphs = append(paragraphs, strings.Join(words, " "))
		}
	}
	return strings.Join(paragraphs, "\n")
}
