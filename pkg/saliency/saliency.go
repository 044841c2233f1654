// Package saliency is a self-contained detection backend that proposes
// object regions from edge and contrast statistics alone. It needs no
// server or model and serves as the offline fallback for object
// detection.
package saliency

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/visionfit/visionfit/pkg/processing"
	"github.com/visionfit/visionfit/pkg/types"
)

// Config holds tuning parameters for region proposal.
type Config struct {
	EdgeThreshold   float64
	ContrastWeight  float64
	ColorWeight     float64
	MinRegionRatio  float64
	MaxRegions      int
}

// DefaultConfig returns the detection defaults.
func DefaultConfig() Config {
	return Config{
		EdgeThreshold:  0.01,
		ContrastWeight: 0.3,
		ColorWeight:    0.2,
		MinRegionRatio: 0.05,
		MaxRegions:     10,
	}
}

// Client proposes salient regions and exposes them through the
// VisionClient contract.
type Client struct {
	config Config
	proc   *processing.Processor
}

// NewClient creates a saliency backend with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a saliency backend with custom tuning.
func NewClientWithConfig(config Config) *Client {
	if config.MaxRegions <= 0 {
		config.MaxRegions = 10
	}
	return &Client{config: config, proc: processing.NewProcessor()}
}

// Kinds returns the feature kinds the saliency backend serves.
func (c *Client) Kinds() []types.FeatureKind {
	return []types.FeatureKind{types.KindObject}
}

// Detect decodes the request image and returns the highest-scoring
// salient regions as object features in pixel coordinates.
func (c *Client) Detect(ctx context.Context, req *types.DetectRequest) (*types.DetectResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Kind != types.KindObject {
		return nil, fmt.Errorf("saliency: unsupported feature kind %q", req.Kind)
	}

	img, err := c.proc.DecodeBytes(req.ImageData)
	if err != nil {
		return nil, fmt.Errorf("saliency: %w", err)
	}

	regions := c.DetectRegions(img)

	features := make([]types.Feature, 0, len(regions))
	for _, r := range regions {
		features = append(features, types.Feature{
			Kind:       types.KindObject,
			Label:      "salient region",
			Bounds:     types.Rect{X: float64(r.X), Y: float64(r.Y), W: float64(r.Width), H: float64(r.Height)},
			Confidence: clamp01(r.Score / c.config.EdgeThreshold / 10),
		})
	}
	return &types.DetectResponse{Features: features}, nil
}

// Region is a proposed rectangular region with its saliency score.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
	Score  float64
}

// Area returns the area of the region in pixels.
func (r Region) Area() int {
	return r.Width * r.Height
}

// DetectRegions analyzes an image and returns its most salient regions,
// highest score first.
func (c *Client) DetectRegions(img image.Image) []Region {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	saliencyMap := c.saliencyMap(img)
	regions := c.proposeRegions(saliencyMap, width, height)
	regions = c.filterRegions(regions, width, height)

	if len(regions) > c.config.MaxRegions {
		regions = regions[:c.config.MaxRegions]
	}
	return regions
}

// saliencyMap scores each pixel by local edge strength and brightness.
func (c *Client) saliencyMap(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	m := make([][]float64, height)
	for i := range m {
		m[i] = make([]float64, width)
	}

	neighbors := [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			r1, g1, b1, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()

			var edgeStrength float64
			for _, off := range neighbors {
				r2, g2, b2, _ := img.At(x+off[0]+bounds.Min.X, y+off[1]+bounds.Min.Y).RGBA()
				dr := float64(r1) - float64(r2)
				dg := float64(g1) - float64(g2)
				db := float64(b1) - float64(b2)
				edgeStrength += math.Sqrt(dr*dr + dg*dg + db*db)
			}
			// 8 neighbors, 16-bit color components
			edgeStrength /= 8.0 * 65535.0

			brightness := (float64(r1) + float64(g1) + float64(b1)) / (3.0 * 65535.0)

			m[y][x] = c.config.ContrastWeight*edgeStrength + c.config.ColorWeight*brightness
		}
	}
	return m
}

// proposeRegions slides square windows of several sizes over the
// saliency map and keeps windows scoring above the edge threshold.
func (c *Client) proposeRegions(saliencyMap [][]float64, width, height int) []Region {
	var regions []Region

	windowSizes := []int{width / 20, width / 16, width / 12, width / 8, width / 4}

	for _, windowSize := range windowSizes {
		if windowSize < 10 {
			continue
		}
		step := windowSize / 8
		if step < 1 {
			step = 1
		}
		for y := 0; y+windowSize <= height; y += step {
			for x := 0; x+windowSize <= width; x += step {
				score := regionScore(saliencyMap, x, y, windowSize, windowSize)
				if score > c.config.EdgeThreshold {
					regions = append(regions, Region{X: x, Y: y, Width: windowSize, Height: windowSize, Score: score})
				}
			}
		}
	}
	return regions
}

func regionScore(saliencyMap [][]float64, x, y, width, height int) float64 {
	var total float64
	count := 0
	for ry := y; ry < y+height && ry < len(saliencyMap); ry++ {
		for rx := x; rx < x+width && rx < len(saliencyMap[0]); rx++ {
			total += saliencyMap[ry][rx]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// filterRegions drops regions below the minimum size and sorts the rest
// by score, descending.
func (c *Client) filterRegions(regions []Region, imageWidth, imageHeight int) []Region {
	minArea := int(float64(imageWidth*imageHeight) * c.config.MinRegionRatio)

	var filtered []Region
	for _, region := range regions {
		if region.Area() >= minArea {
			filtered = append(filtered, region)
		}
	}

	for i := 0; i < len(filtered)-1; i++ {
		for j := i + 1; j < len(filtered); j++ {
			if filtered[i].Score < filtered[j].Score {
				filtered[i], filtered[j] = filtered[j], filtered[i]
			}
		}
	}
	return filtered
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
