// Package visionfit detects features in images and maps them into the
// coordinate space of a display surface for highlighting.
//
// A detection backend (Google Cloud Vision, a local Ollama or llama.cpp
// vision model, or the built-in saliency heuristic) reports feature
// rectangles in image pixel coordinates. The fitmap package converts each
// rectangle into the coordinates of a view that shows the image
// aspect-fit, and the overlay package draws the resulting highlights.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/visionfit/visionfit"
//		"github.com/visionfit/visionfit/pkg/saliency"
//		"github.com/visionfit/visionfit/pkg/types"
//	)
//
//	func main() {
//		vf := visionfit.New(saliency.NewClient())
//
//		img, err := vf.LoadImage("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		view := types.Size{Width: 390, Height: 844}
//		annotated, features, err := vf.Annotate(context.Background(), img, types.KindObject, "", view)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		log.Printf("found %d features", len(features))
//		if err := vf.SaveImage(annotated, "photo_annotated.png"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of four main components:
//
//  1. Detection backends (pkg/gcv, pkg/ollama, pkg/llamacpp, pkg/saliency):
//     implement the pkg/client contract and report features in image pixels
//  2. Coordinate mapper (pkg/fitmap): converts image-pixel rectangles into
//     aspect-fit view coordinates
//  3. Overlay renderer (pkg/overlay): draws highlight outlines over the
//     composited view image
//  4. Processing (pkg/processing): image loading, validation and encoding
package visionfit

import (
	"context"
	"fmt"
	"image"

	"github.com/visionfit/visionfit/pkg/client"
	"github.com/visionfit/visionfit/pkg/detection"
	"github.com/visionfit/visionfit/pkg/fitmap"
	"github.com/visionfit/visionfit/pkg/overlay"
	"github.com/visionfit/visionfit/pkg/processing"
	"github.com/visionfit/visionfit/pkg/types"
)

// Version of the visionfit library
const Version = "1.0.0"

// Annotator ties the detection, mapping and rendering components
// together behind one interface.
type Annotator struct {
	proc     *processing.Processor
	detector *detection.Detector
	style    overlay.Style
}

// New creates an Annotator using the given detection backend and the
// default overlay style.
func New(c client.VisionClient) *Annotator {
	return NewWithStyle(c, overlay.DefaultStyle())
}

// NewWithStyle creates an Annotator with a custom overlay style.
func NewWithStyle(c client.VisionClient, style overlay.Style) *Annotator {
	return &Annotator{
		proc:     processing.NewProcessor(),
		detector: detection.NewDetector(c),
		style:    style,
	}
}

// SetSendOptions overrides how images are encoded before being sent to
// the detection backend.
func (a *Annotator) SetSendOptions(opts detection.SendOptions) {
	a.detector.SetSendOptions(opts)
}

// LoadImage loads an image from a file path or HTTP(S) URL.
func (a *Annotator) LoadImage(source string) (image.Image, error) {
	return a.proc.LoadImageSmart(source)
}

// SaveImage saves an image, inferring the format from the extension.
func (a *Annotator) SaveImage(img image.Image, path string) error {
	ext := ""
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			ext = path[i+1:]
			break
		}
	}
	return a.proc.SaveImage(img, path, ext, 92, false)
}

// Detect runs one detection call and returns features in image pixel
// coordinates.
func (a *Annotator) Detect(ctx context.Context, img image.Image, kind types.FeatureKind, model string) ([]types.Feature, error) {
	return a.detector.Detect(ctx, img, kind, model)
}

// MapToView maps a feature rectangle from image pixel coordinates into a
// view's aspect-fit coordinate space.
func (a *Annotator) MapToView(feature types.Rect, image, view types.Size) (types.Rect, error) {
	return fitmap.MapToView(feature, image, view)
}

// Annotate detects features of the given kind and renders them over the
// image composited aspect-fit into a view of the given size. It returns
// the rendered image together with the detected features in image pixel
// coordinates.
func (a *Annotator) Annotate(ctx context.Context, img image.Image, kind types.FeatureKind, model string, view types.Size) (image.Image, []types.Feature, error) {
	features, err := a.detector.Detect(ctx, img, kind, model)
	if err != nil {
		return nil, nil, err
	}

	annotated, err := overlay.RenderFeatures(img, view, features, a.style)
	if err != nil {
		return nil, nil, fmt.Errorf("rendering failed: %w", err)
	}
	return annotated, features, nil
}

// GetVersion returns the library version.
func GetVersion() string {
	return Version
}
