// Package detection sits between callers and detection backends. It
// validates the image, builds the backend request, and normalizes the
// returned features so every downstream consumer sees pixel-space bounds
// that lie inside the image.
package detection

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/visionfit/visionfit/pkg/client"
	"github.com/visionfit/visionfit/pkg/processing"
	"github.com/visionfit/visionfit/pkg/types"
)

// ErrNoFeatures is returned when a detection call succeeds but finds
// nothing. Callers surface it as a status message; there is no retry.
var ErrNoFeatures = errors.New("no features detected")

// maxFeatures caps the number of features returned per call.
const maxFeatures = 50

// SendOptions controls how the image is encoded before being handed to
// the backend.
type SendOptions struct {
	Format  string // "jpg" or "png"
	MaxDim  int    // long-side cap in pixels, 0 = original size
	Quality int    // jpg quality 1-100
}

// DefaultSendOptions returns the encoding defaults used when none are set.
func DefaultSendOptions() SendOptions {
	return SendOptions{Format: "jpg", MaxDim: 0, Quality: 85}
}

// Detector performs single-shot feature detection through a VisionClient.
type Detector struct {
	client client.VisionClient
	proc   *processing.Processor
	send   SendOptions
}

// NewDetector creates a detector around a backend client.
func NewDetector(c client.VisionClient) *Detector {
	return &Detector{
		client: c,
		proc:   processing.NewProcessor(),
		send:   DefaultSendOptions(),
	}
}

// SetSendOptions overrides the image encoding options.
func (d *Detector) SetSendOptions(opts SendOptions) {
	if opts.Format == "" {
		opts.Format = "jpg"
	}
	if opts.Quality <= 0 {
		opts.Quality = 85
	}
	d.send = opts
}

// Detect runs one detection call for the given feature kind. The image
// must be present with positive dimensions; this is the same precondition
// the coordinate mapper relies on, guarded here once for all callers.
//
// A successful call with an empty result set returns an error wrapping
// ErrNoFeatures.
func (d *Detector) Detect(ctx context.Context, img image.Image, kind types.FeatureKind, model string) ([]types.Feature, error) {
	if img == nil {
		return nil, fmt.Errorf("detection: no image provided")
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("detection: image has degenerate dimensions %dx%d", w, h)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("detection: unknown feature kind %q", kind)
	}
	if !client.Supports(d.client, kind) {
		return nil, fmt.Errorf("detection: backend does not support %s detection", kind)
	}

	data, err := d.proc.EncodeForModel(img, d.send.Format, d.send.MaxDim, d.send.Quality)
	if err != nil {
		return nil, fmt.Errorf("detection: failed to encode image: %w", err)
	}

	req := &types.DetectRequest{
		Kind:      kind,
		Model:     model,
		Prompt:    Prompt(kind, w, h),
		ImageData: data,
		Width:     w,
		Height:    h,
	}

	resp, err := d.client.Detect(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("detection: %s detection failed: %w", kind, err)
	}

	features := Normalize(resp.Features, types.Size{Width: float64(w), Height: float64(h)})
	if len(features) == 0 {
		return nil, fmt.Errorf("%s: %w", kind, ErrNoFeatures)
	}
	return features, nil
}

// Normalize clamps feature bounds to the image, discards features whose
// box collapses to nothing (label-only results with no geometry are
// kept), and caps the result count.
func Normalize(features []types.Feature, img types.Size) []types.Feature {
	out := make([]types.Feature, 0, len(features))
	for _, f := range features {
		if len(out) == maxFeatures {
			break
		}
		if f.Bounds.Empty() {
			// Image-wide classification without geometry.
			if f.Label != "" || f.Text != "" {
				f.Bounds = types.Rect{}
				out = append(out, f)
			}
			continue
		}
		clamped := f.Bounds.Clamp(img)
		if clamped.Empty() {
			continue
		}
		f.Bounds = clamped
		out = append(out, f)
	}
	return out
}
