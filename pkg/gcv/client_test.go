package gcv

import (
	"testing"

	pb "google.golang.org/genproto/googleapis/cloud/vision/v1"

	"github.com/visionfit/visionfit/pkg/types"
)

func TestPolyRect(t *testing.T) {
	poly := &pb.BoundingPoly{Vertices: []*pb.Vertex{
		{X: 30, Y: 20},
		{X: 10, Y: 60},
		{X: 50, Y: 40},
	}}

	got := polyRect(poly)
	want := types.Rect{X: 10, Y: 20, W: 40, H: 40}
	if got != want {
		t.Errorf("Expected rect %+v, got %+v", want, got)
	}
}

func TestPolyRectEmpty(t *testing.T) {
	if got := polyRect(&pb.BoundingPoly{}); !got.Empty() {
		t.Errorf("Expected zero rect for empty polygon, got %+v", got)
	}
	if got := polyRect(nil); !got.Empty() {
		t.Errorf("Expected zero rect for nil polygon, got %+v", got)
	}
}

func TestBlockText(t *testing.T) {
	word := func(s string) *pb.Word {
		w := &pb.Word{}
		for _, r := range s {
			w.Symbols = append(w.Symbols, &pb.Symbol{Text: string(r)})
		}
		return w
	}
	block := &pb.Block{Paragraphs: []*pb.Paragraph{
		{Words: []*pb.Word{word("hello"), word("world")}},
		{Words: []*pb.Word{word("bye")}},
	}}

	if got, want := blockText(block), "hello world\nbye"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestEntityFeatures(t *testing.T) {
	anns := []*pb.EntityAnnotation{
		{Description: "Eiffel Tower", Score: 0.9, BoundingPoly: &pb.BoundingPoly{Vertices: []*pb.Vertex{{X: 1, Y: 2}, {X: 5, Y: 6}}}},
		{Description: "cat", Score: 0.7},
	}

	features := entityFeatures(anns, types.KindLandmark)
	if len(features) != 2 {
		t.Fatalf("Expected 2 features, got %d", len(features))
	}
	if features[0].Label != "Eiffel Tower" || features[0].Kind != types.KindLandmark {
		t.Errorf("Unexpected feature: %+v", features[0])
	}
	want := types.Rect{X: 1, Y: 2, W: 4, H: 4}
	if features[0].Bounds != want {
		t.Errorf("Expected bounds %+v, got %+v", want, features[0].Bounds)
	}
	if !features[1].Bounds.Empty() {
		t.Errorf("Expected empty bounds for geometry-less annotation, got %+v", features[1].Bounds)
	}
}

func TestKinds(t *testing.T) {
	c := &Client{}
	kinds := c.Kinds()
	if len(kinds) != 4 {
		t.Fatalf("Expected 4 kinds, got %d", len(kinds))
	}
	for _, k := range kinds {
		if !k.Valid() {
			t.Errorf("Invalid kind %q", k)
		}
	}
}
