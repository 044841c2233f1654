// Package fitmap converts rectangles from image pixel coordinates into the
// coordinate space of a view that displays the image under aspect-fit
// scaling: the image is scaled uniformly to fit entirely within the view,
// centered, with letterbox or pillarbox margins on the non-binding axis.
//
// Every detection path uses the same mapping, so the transform is computed
// once per image/view pair and applied per feature. All operations are pure
// and safe for concurrent use.
package fitmap

import (
	"fmt"

	"github.com/visionfit/visionfit/pkg/types"
)

// Transform is the uniform scale and centering offset that places an image
// inside a view under aspect-fit. The offsets are in view-local
// coordinates; the binding axis has offset zero up to rounding.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Fit computes the aspect-fit transform of an image of the given size
// displayed in a view of the given size. Both sizes must have strictly
// positive dimensions; a non-positive dimension is a contract violation
// and yields an error instead of a degenerate (zero or infinite) scale.
func Fit(image, view types.Size) (Transform, error) {
	if !image.Positive() {
		return Transform{}, fmt.Errorf("fitmap: image size must be positive, got %gx%g", image.Width, image.Height)
	}
	if !view.Positive() {
		return Transform{}, fmt.Errorf("fitmap: view size must be positive, got %gx%g", view.Width, view.Height)
	}

	// The binding dimension is whichever axis would overflow the view:
	// a relatively wider view binds on height, otherwise on width.
	var scale float64
	if view.AspectRatio() > image.AspectRatio() {
		scale = view.Height / image.Height
	} else {
		scale = view.Width / image.Width
	}

	return Transform{
		Scale:   scale,
		OffsetX: (view.Width - image.Width*scale) / 2,
		OffsetY: (view.Height - image.Height*scale) / 2,
	}, nil
}

// Apply maps a rectangle from image pixel coordinates to view coordinates.
func (t Transform) Apply(r types.Rect) types.Rect {
	return types.Rect{
		X: t.OffsetX + r.X*t.Scale,
		Y: t.OffsetY + r.Y*t.Scale,
		W: r.W * t.Scale,
		H: r.H * t.Scale,
	}
}

// ApplyPoint maps a single point from image to view coordinates.
func (t Transform) ApplyPoint(p types.Point) types.Point {
	return types.Point{
		X: t.OffsetX + p.X*t.Scale,
		Y: t.OffsetY + p.Y*t.Scale,
	}
}

// Invert maps a rectangle from view coordinates back to image pixel
// coordinates. It is the exact inverse of Apply for any finite transform
// produced by Fit.
func (t Transform) Invert(r types.Rect) types.Rect {
	return types.Rect{
		X: (r.X - t.OffsetX) / t.Scale,
		Y: (r.Y - t.OffsetY) / t.Scale,
		W: r.W / t.Scale,
		H: r.H / t.Scale,
	}
}

// InvertPoint maps a point from view coordinates back to image pixel
// coordinates.
func (t Transform) InvertPoint(p types.Point) types.Point {
	return types.Point{
		X: (p.X - t.OffsetX) / t.Scale,
		Y: (p.Y - t.OffsetY) / t.Scale,
	}
}

// Footprint returns the rectangle the scaled image occupies within the
// view: the centered area left after letterboxing or pillarboxing.
func (t Transform) Footprint(image types.Size) types.Rect {
	return types.Rect{
		X: t.OffsetX,
		Y: t.OffsetY,
		W: image.Width * t.Scale,
		H: image.Height * t.Scale,
	}
}

// MapToView maps a single feature rectangle from image pixel coordinates
// into the view's coordinate space. For a feature inside the image bounds
// the result lies inside the view bounds up to floating-point error.
func MapToView(feature types.Rect, image, view types.Size) (types.Rect, error) {
	t, err := Fit(image, view)
	if err != nil {
		return types.Rect{}, err
	}
	return t.Apply(feature), nil
}

// MapAll maps the bounds and landmarks of each feature into view
// coordinates. Features are independent; the input slice is not modified.
// Label-only features with empty bounds pass through with their bounds
// untouched so callers can still skip them when drawing.
func MapAll(features []types.Feature, image, view types.Size) ([]types.Feature, error) {
	t, err := Fit(image, view)
	if err != nil {
		return nil, err
	}

	mapped := make([]types.Feature, len(features))
	for i, f := range features {
		m := f
		if !f.Bounds.Empty() {
			m.Bounds = t.Apply(f.Bounds)
		}
		if len(f.Landmarks) > 0 {
			m.Landmarks = make([]types.Point, len(f.Landmarks))
			for j, p := range f.Landmarks {
				m.Landmarks[j] = t.ApplyPoint(p)
			}
		}
		mapped[i] = m
	}
	return mapped, nil
}
