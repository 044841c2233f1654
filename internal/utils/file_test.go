package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFileExtension(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"photo.JPG", "jpg"},
		{"photo.jpeg", "jpeg"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
	}
	for _, c := range cases {
		if got := GetFileExtension(c.in); got != c.want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.PNG", "c.webp"} {
		if !IsImageFile(name) {
			t.Errorf("Expected %q to be an image file", name)
		}
	}
	for _, name := range []string{"a.txt", "b.pdf", "noext"} {
		if IsImageFile(name) {
			t.Errorf("Expected %q to not be an image file", name)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "present.png")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Errorf("Expected %q to exist", path)
	}

	if FileExists(filepath.Join(dir, "missing.png")) {
		t.Error("Expected missing file to not exist")
	}
	if FileExists(dir) {
		t.Error("Expected directory to not count as a file")
	}
	// A path under a regular file makes Stat fail with ENOTDIR.
	if FileExists(filepath.Join(path, "below.png")) {
		t.Error("Expected path under a file to not exist")
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	got := GenerateOutputFilename("/tmp/in/photo.jpg", "/tmp/out", "_face", "png")
	want := filepath.Join("/tmp/out", "photo_face.png")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	// Empty format falls back to the input extension.
	got = GenerateOutputFilename("photo.webp", "out", "", "")
	want = filepath.Join("out", "photo.webp")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
