package types

import "math"

// Size holds the pixel dimensions of an image or the dimensions of a
// display surface. Both components must be strictly positive wherever a
// Size is used as a mapping input.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AspectRatio returns width divided by height.
func (s Size) AspectRatio() float64 {
	return s.Width / s.Height
}

// Positive reports whether both dimensions are strictly positive.
func (s Size) Positive() bool {
	return s.Width > 0 && s.Height > 0
}

// Point is a position in either image or view coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle. Depending on context it is expressed
// in image pixel coordinates (feature bounds) or in view coordinates
// (mapped overlay rectangles).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Area returns the area of the rectangle, zero for empty rectangles.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Intersect returns the intersection of two rectangles. The result is the
// zero Rect when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x1 := math.Max(r.X, o.X)
	y1 := math.Max(r.Y, o.Y)
	x2 := math.Min(r.X+r.W, o.X+o.W)
	y2 := math.Min(r.Y+r.H, o.Y+o.H)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// IoU returns the intersection-over-union ratio of two rectangles.
func (r Rect) IoU(o Rect) float64 {
	inter := r.Intersect(o).Area()
	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Clamp constrains the rectangle to the bounds of an image of the given
// size, shrinking it as needed. A rectangle entirely outside the image
// collapses to a zero-area Rect on the nearest edge.
func (r Rect) Clamp(s Size) Rect {
	x1 := clamp(r.X, 0, s.Width)
	y1 := clamp(r.Y, 0, s.Height)
	x2 := clamp(r.X+r.W, 0, s.Width)
	y2 := clamp(r.Y+r.H, 0, s.Height)
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FeatureKind identifies which capability of a detection backend produced
// a feature.
type FeatureKind string

const (
	KindFace     FeatureKind = "face"
	KindText     FeatureKind = "text"
	KindLabel    FeatureKind = "label"
	KindBarcode  FeatureKind = "barcode"
	KindLandmark FeatureKind = "landmark"
	KindObject   FeatureKind = "object"
)

// Kinds returns every feature kind a backend may serve.
func Kinds() []FeatureKind {
	return []FeatureKind{KindFace, KindText, KindLabel, KindBarcode, KindLandmark, KindObject}
}

// Valid reports whether k is a known feature kind.
func (k FeatureKind) Valid() bool {
	switch k {
	case KindFace, KindText, KindLabel, KindBarcode, KindLandmark, KindObject:
		return true
	}
	return false
}

// Feature is a single detection reported by a backend. Bounds and
// Landmarks are in the pixel coordinate space of the submitted image.
// Label-only results (image-wide classifications) carry an empty Bounds.
type Feature struct {
	Kind       FeatureKind `json:"kind"`
	Bounds     Rect        `json:"bounds"`
	Label      string      `json:"label,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Text       string      `json:"text,omitempty"`
	Landmarks  []Point     `json:"landmarks,omitempty"`
}

// DetectRequest is the payload handed to a detection backend. ImageData
// holds the encoded image; Width and Height are its pixel dimensions.
// Prompt is only consulted by model-driven backends.
type DetectRequest struct {
	Kind      FeatureKind
	Model     string
	Prompt    string
	ImageData []byte
	Width     int
	Height    int
}

// DetectResponse is the single-shot result of a detection call. A request
// either yields a response or an error, never both.
type DetectResponse struct {
	Features []Feature `json:"features"`
}
