package processing

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 100, 255})
		}
	}
	return img
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(64, 48)

	for _, format := range []string{"jpg", "png"} {
		data, err := p.EncodeForModel(img, format, 0, 85)
		if err != nil {
			t.Fatalf("%s: EncodeForModel failed: %v", format, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s: no data produced", format)
		}

		decoded, err := p.DecodeBytes(data)
		if err != nil {
			t.Fatalf("%s: DecodeBytes failed: %v", format, err)
		}
		b := decoded.Bounds()
		if b.Dx() != 64 || b.Dy() != 48 {
			t.Errorf("%s: expected 64x48, got %dx%d", format, b.Dx(), b.Dy())
		}
	}
}

func TestEncodeForModelCapsLongSide(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(200, 100)

	data, err := p.EncodeForModel(img, "png", 50, 85)
	if err != nil {
		t.Fatalf("EncodeForModel failed: %v", err)
	}

	decoded, err := p.DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("Expected 50x25 after cap, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodeBase64(t *testing.T) {
	p := NewProcessor()
	s, err := p.EncodeBase64(createTestImage(10, 10), "jpg", 0, 85)
	if err != nil {
		t.Fatalf("EncodeBase64 failed: %v", err)
	}
	if s == "" {
		t.Error("Expected non-empty base64 string")
	}
}

func TestSaveAndLoadImage(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(32, 32)
	dir := t.TempDir()

	for _, format := range []string{"png", "jpg", "webp"} {
		path := filepath.Join(dir, "test."+format)
		if err := p.SaveImage(img, path, format, 90, false); err != nil {
			t.Fatalf("%s: SaveImage failed: %v", format, err)
		}

		loaded, err := p.LoadImage(path)
		if err != nil {
			t.Fatalf("%s: LoadImage failed: %v", format, err)
		}
		b := loaded.Bounds()
		if b.Dx() != 32 || b.Dy() != 32 {
			t.Errorf("%s: expected 32x32, got %dx%d", format, b.Dx(), b.Dy())
		}
	}
}

func TestGetImageInfo(t *testing.T) {
	p := NewProcessor()
	info := p.GetImageInfo(createTestImage(200, 100))

	if info.Width != 200 || info.Height != 100 {
		t.Errorf("Expected 200x100, got %dx%d", info.Width, info.Height)
	}
	if info.AspectRatio != 2.0 {
		t.Errorf("Expected aspect ratio 2.0, got %f", info.AspectRatio)
	}
	if info.Area != 20000 {
		t.Errorf("Expected area 20000, got %d", info.Area)
	}
}

func TestSizeOf(t *testing.T) {
	s := SizeOf(createTestImage(123, 45))
	if s.Width != 123 || s.Height != 45 {
		t.Errorf("Expected 123x45, got %gx%g", s.Width, s.Height)
	}
}

func TestValidateImage(t *testing.T) {
	p := NewProcessor()

	if err := p.ValidateImage(createTestImage(100, 100), 50); err != nil {
		t.Errorf("100x100 should pass a 50px minimum: %v", err)
	}
	if err := p.ValidateImage(createTestImage(10, 100), 50); err == nil {
		t.Error("10x100 should fail a 50px minimum")
	}
	if err := p.ValidateImage(nil, 1); err == nil {
		t.Error("nil image should fail validation")
	}
}

func TestLoadImageFromURLRejectsBadScheme(t *testing.T) {
	p := NewProcessor()
	if _, err := p.LoadImageFromURL("ftp://example.com/a.jpg"); err == nil {
		t.Error("Expected error for ftp scheme")
	}
}
