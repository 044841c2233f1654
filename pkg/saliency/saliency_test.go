package saliency

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/visionfit/visionfit/pkg/types"
)

// createTestImage creates an image with high-contrast regions that the
// saliency heuristic should pick up.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/4 && x < width/2 && y > height/4 && y < 3*height/4 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else if x > 3*width/4 && y > height/4 && y < 3*height/4 {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				r := uint8((x * 128) / width)
				g := uint8((y * 128) / height)
				img.Set(x, y, color.RGBA{r, g, 64, 255})
			}
		}
	}
	return img
}

func TestDetectRegions(t *testing.T) {
	c := NewClient()
	img := createTestImage(400, 300)

	regions := c.DetectRegions(img)
	if len(regions) == 0 {
		t.Fatal("Expected at least one region")
	}
	if len(regions) > DefaultConfig().MaxRegions {
		t.Errorf("Expected at most %d regions, got %d", DefaultConfig().MaxRegions, len(regions))
	}

	for i, region := range regions {
		if region.Width <= 0 || region.Height <= 0 {
			t.Errorf("Region %d has invalid dimensions: %dx%d", i, region.Width, region.Height)
		}
		if region.Score < 0 {
			t.Errorf("Region %d has negative score: %f", i, region.Score)
		}
		if i > 0 && regions[i-1].Score < region.Score {
			t.Errorf("Regions not sorted by score at index %d", i)
		}
	}
}

func TestDetectRegionsRespectsMinArea(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinRegionRatio = 0.05
	c := NewClientWithConfig(cfg)

	img := createTestImage(400, 300)
	minArea := int(float64(400*300) * cfg.MinRegionRatio)

	for i, region := range c.DetectRegions(img) {
		if region.Area() < minArea {
			t.Errorf("Region %d smaller than minimum area: %d < %d", i, region.Area(), minArea)
		}
	}
}

func TestClientDetect(t *testing.T) {
	c := NewClient()

	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(400, 300)); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	resp, err := c.Detect(context.Background(), &types.DetectRequest{
		Kind:      types.KindObject,
		ImageData: buf.Bytes(),
		Width:     400,
		Height:    300,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(resp.Features) == 0 {
		t.Fatal("Expected at least one feature")
	}

	for i, f := range resp.Features {
		if f.Kind != types.KindObject {
			t.Errorf("Feature %d has kind %q, want object", i, f.Kind)
		}
		if f.Bounds.Empty() {
			t.Errorf("Feature %d has empty bounds", i)
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			t.Errorf("Feature %d confidence out of range: %f", i, f.Confidence)
		}
	}
}

func TestClientDetectRejectsOtherKinds(t *testing.T) {
	c := NewClient()
	_, err := c.Detect(context.Background(), &types.DetectRequest{Kind: types.KindFace})
	if err == nil {
		t.Error("Expected error for unsupported kind")
	}
}

func TestClientDetectBadImage(t *testing.T) {
	c := NewClient()
	_, err := c.Detect(context.Background(), &types.DetectRequest{
		Kind:      types.KindObject,
		ImageData: []byte("definitely not an image"),
	})
	if err == nil {
		t.Error("Expected error for undecodable image data")
	}
}

func TestKinds(t *testing.T) {
	kinds := NewClient().Kinds()
	if len(kinds) != 1 || kinds[0] != types.KindObject {
		t.Errorf("Expected [object], got %v", kinds)
	}
}
