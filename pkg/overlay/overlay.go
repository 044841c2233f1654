// Package overlay renders detection highlights. A Renderer owns the
// ordered collection of overlay rectangles currently on display, all in
// view coordinates; the mapping from image space happens before shapes
// are added, so rendering itself is pure drawing.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/visionfit/visionfit/pkg/fitmap"
	"github.com/visionfit/visionfit/pkg/types"
)

// Style controls how overlays are drawn.
type Style struct {
	Box         color.NRGBA
	Landmark    color.NRGBA
	Background  color.NRGBA
	StrokeRatio float64 // stroke width as a fraction of the view's short side
	CrossRatio  float64 // crosshair half-length as a fraction of the short side
}

// DefaultStyle returns the stock drawing style: green boxes, red
// landmark crosshairs, black letterbox margins.
func DefaultStyle() Style {
	return Style{
		Box:         color.NRGBA{0, 255, 0, 255},
		Landmark:    color.NRGBA{255, 0, 0, 255},
		Background:  color.NRGBA{0, 0, 0, 255},
		StrokeRatio: 0.004,
		CrossRatio:  0.01,
	}
}

// Renderer accumulates overlay shapes in view coordinates and draws them
// over the aspect-fit composited image. Not safe for concurrent use.
type Renderer struct {
	style    Style
	overlays []types.Rect
	marks    []types.Point
}

// New creates a renderer with the default style.
func New() *Renderer {
	return NewWithStyle(DefaultStyle())
}

// NewWithStyle creates a renderer with a custom style.
func NewWithStyle(style Style) *Renderer {
	if style.StrokeRatio <= 0 {
		style.StrokeRatio = 0.004
	}
	if style.CrossRatio <= 0 {
		style.CrossRatio = 0.01
	}
	return &Renderer{style: style}
}

// AddOverlay appends a highlight rectangle, in view coordinates. Empty
// rectangles are ignored.
func (r *Renderer) AddOverlay(rect types.Rect) {
	if rect.Empty() {
		return
	}
	r.overlays = append(r.overlays, rect)
}

// AddLandmarks appends crosshair markers, in view coordinates.
func (r *Renderer) AddLandmarks(pts []types.Point) {
	r.marks = append(r.marks, pts...)
}

// Overlays returns a copy of the current overlay rectangles, in the
// order they were added.
func (r *Renderer) Overlays() []types.Rect {
	out := make([]types.Rect, len(r.overlays))
	copy(out, r.overlays)
	return out
}

// ClearOverlays removes all accumulated shapes.
func (r *Renderer) ClearOverlays() {
	r.overlays = r.overlays[:0]
	r.marks = r.marks[:0]
}

// Render composes the base image aspect-fit into a view-sized canvas and
// draws every accumulated overlay on top. The accumulated shapes are
// left in place; call ClearOverlays between frames.
func (r *Renderer) Render(base image.Image, view types.Size) (image.Image, error) {
	t, err := fitmap.Fit(imageSize(base), view)
	if err != nil {
		return nil, err
	}

	vw, vh := round(view.Width), round(view.Height)
	canvas := imaging.New(vw, vh, r.style.Background)

	foot := t.Footprint(imageSize(base))
	scaled := imaging.Resize(base, round(foot.W), round(foot.H), imaging.Lanczos)
	canvas = imaging.Paste(canvas, scaled, image.Pt(round(foot.X), round(foot.Y)))

	short := vw
	if vh < short {
		short = vh
	}
	stroke := int(math.Max(2, r.style.StrokeRatio*float64(short)))
	cross := int(math.Max(4, r.style.CrossRatio*float64(short)))

	for _, rect := range r.overlays {
		drawBox(canvas, rect, r.style.Box, stroke)
	}
	for _, p := range r.marks {
		px, py := round(p.X), round(p.Y)
		drawHLine(canvas, py, px-cross, px+cross, r.style.Landmark)
		drawVLine(canvas, px, py-cross, py+cross, r.style.Landmark)
	}
	return canvas, nil
}

// RenderFeatures maps the features' image-space geometry into the view
// and renders them over the base image in one call.
func RenderFeatures(base image.Image, view types.Size, features []types.Feature, style Style) (image.Image, error) {
	mapped, err := fitmap.MapAll(features, imageSize(base), view)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}

	r := NewWithStyle(style)
	for _, f := range mapped {
		r.AddOverlay(f.Bounds)
		r.AddLandmarks(f.Landmarks)
	}
	return r.Render(base, view)
}

func imageSize(img image.Image) types.Size {
	b := img.Bounds()
	return types.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func round(v float64) int {
	return int(v + 0.5)
}

func drawBox(img *image.NRGBA, rect types.Rect, c color.NRGBA, stroke int) {
	x0, y0 := round(rect.X), round(rect.Y)
	x1, y1 := round(rect.X+rect.W), round(rect.Y+rect.H)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
