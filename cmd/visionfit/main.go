package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"google.golang.org/api/option"

	"github.com/visionfit/visionfit/internal/config"
	"github.com/visionfit/visionfit/internal/utils"
	"github.com/visionfit/visionfit/pkg/client"
	"github.com/visionfit/visionfit/pkg/detection"
	"github.com/visionfit/visionfit/pkg/fitmap"
	"github.com/visionfit/visionfit/pkg/gcv"
	"github.com/visionfit/visionfit/pkg/llamacpp"
	"github.com/visionfit/visionfit/pkg/ollama"
	"github.com/visionfit/visionfit/pkg/overlay"
	"github.com/visionfit/visionfit/pkg/processing"
	"github.com/visionfit/visionfit/pkg/saliency"
	"github.com/visionfit/visionfit/pkg/types"
)

func main() {
	var in, kindFlag, backend, url, model, credentials, viewFlag, outDir, ext string
	var configPath, sendFmt string
	var quality, sendSize, sendQ int
	var lossless, annotate bool

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&kindFlag, "detect", "face", "feature kind: face|text|label|barcode|landmark|object")
	flag.StringVar(&backend, "backend", "saliency", "detection backend: gcv|ollama|llamacpp|saliency")
	flag.StringVar(&url, "url", "", "server URL for ollama/llamacpp backends")
	flag.StringVar(&model, "model", "", "model name for ollama/llamacpp backends")
	flag.StringVar(&credentials, "credentials", "", "service account JSON for the gcv backend (default: environment)")
	flag.StringVar(&viewFlag, "view", "", "display surface size as WxH")
	flag.StringVar(&outDir, "out", "out", "output directory")
	flag.StringVar(&ext, "ext", "png", "annotated image format: png|jpg|webp")
	flag.IntVar(&quality, "quality", 92, "output quality for jpg/webp (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless mode")
	flag.StringVar(&sendFmt, "sendfmt", "jpg", "format sent to the backend: jpg|png")
	flag.IntVar(&sendSize, "sendsize", 1536, "max long side sent to the backend (px), 0=original")
	flag.IntVar(&sendQ, "sendq", 85, "JPEG quality for the image sent to the backend (1-100)")
	flag.BoolVar(&annotate, "annotate", true, "render the annotated view-space image")
	flag.StringVar(&configPath, "config", "", "JSON config file (flags override)")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	// Explicitly set flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = backend
		case "url":
			cfg.URL = url
		case "model":
			cfg.Model = model
		case "out":
			cfg.Output.Dir = outDir
		case "ext":
			cfg.Output.Format = ext
		case "quality":
			cfg.Output.Quality = quality
		case "lossless":
			cfg.Output.Lossless = lossless
		case "sendfmt":
			cfg.Send.Format = sendFmt
		case "sendsize":
			cfg.Send.MaxDim = sendSize
		case "sendq":
			cfg.Send.Quality = sendQ
		}
	})

	if in == "" {
		log.Fatalf("usage: %s -in input.jpg|URL [-detect face|text|label|barcode|landmark|object] [-backend gcv|ollama|llamacpp|saliency] [-view 390x844]", filepath.Base(os.Args[0]))
	}

	kind := types.FeatureKind(kindFlag)
	if !kind.Valid() {
		log.Fatalf("unknown feature kind %q", kindFlag)
	}

	if viewFlag != "" {
		w, h, err := parseView(viewFlag)
		if err != nil {
			log.Fatal(err)
		}
		cfg.View.Width, cfg.View.Height = w, h
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// Create the backend client
	var visionClient client.VisionClient
	switch cfg.Backend {
	case "gcv":
		var opts []option.ClientOption
		if credentials != "" {
			opts = append(opts, option.WithCredentialsFile(credentials))
		}
		c, err := gcv.NewClient(ctx, opts...)
		if err != nil {
			log.Fatalf("Failed to create Cloud Vision client: %v", err)
		}
		defer c.Close()
		visionClient = c
	case "ollama":
		serverURL := cfg.URL
		if serverURL == "" {
			serverURL = "http://localhost:11434"
		}
		c, err := ollama.NewClient(serverURL)
		if err != nil {
			log.Fatalf("Failed to create Ollama client: %v", err)
		}
		visionClient = c
	case "llamacpp":
		c, err := llamacpp.NewClient(cfg.URL)
		if err != nil {
			log.Fatalf("Failed to create llama.cpp client: %v", err)
		}
		visionClient = c
	case "saliency":
		visionClient = saliency.NewClient()
	}

	detector := detection.NewDetector(visionClient)
	detector.SetSendOptions(detection.SendOptions{
		Format:  cfg.Send.Format,
		MaxDim:  cfg.Send.MaxDim,
		Quality: cfg.Send.Quality,
	})

	// Load input image (from file or URL)
	if !strings.HasPrefix(in, "http://") && !strings.HasPrefix(in, "https://") {
		if !utils.FileExists(in) {
			log.Fatalf("input file not found: %s", in)
		}
		if !utils.IsImageFile(in) {
			log.Fatalf("input is not an image file: %s", in)
		}
	}
	processor := processing.NewProcessor()
	img, err := processor.LoadImageSmart(in)
	if err != nil {
		log.Fatal(err)
	}
	if err := processor.ValidateImage(img, 1); err != nil {
		log.Fatal(err)
	}
	imgSize := processing.SizeOf(img)
	log.Printf("image %s: %gx%g", in, imgSize.Width, imgSize.Height)

	features, err := detector.Detect(ctx, img, kind, cfg.Model)
	if errors.Is(err, detection.ErrNoFeatures) {
		log.Printf("%v", err)
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	for i, f := range features {
		logFeature(i, f)
	}

	view := cfg.View.Size()
	mapped, err := fitmap.MapAll(features, imgSize, view)
	if err != nil {
		log.Fatal(err)
	}
	for i, f := range mapped {
		if f.Bounds.Empty() {
			continue
		}
		log.Printf("  [%d] view rect (%.1f, %.1f) %.1fx%.1f", i, f.Bounds.X, f.Bounds.Y, f.Bounds.W, f.Bounds.H)
	}

	if annotate {
		style := overlay.DefaultStyle()
		style.StrokeRatio = cfg.Overlay.StrokeRatio
		style.CrossRatio = cfg.Overlay.CrossRatio

		annotated, err := overlay.RenderFeatures(img, view, features, style)
		if err != nil {
			log.Fatal(err)
		}
		outPath := utils.GenerateOutputFilename(in, cfg.Output.Dir, "_"+string(kind), cfg.Output.Format)
		if err := processor.SaveImage(annotated, outPath, cfg.Output.Format, cfg.Output.Quality, cfg.Output.Lossless); err != nil {
			log.Fatalf("save %s failed: %v", outPath, err)
		}
		log.Printf("wrote %s", outPath)
	}

	// Save detected features alongside the render
	js, _ := json.MarshalIndent(struct {
		Image    types.Size      `json:"image"`
		View     types.Size      `json:"view"`
		Features []types.Feature `json:"features"`
		Mapped   []types.Feature `json:"mapped"`
	}{imgSize, view, features, mapped}, "", "  ")
	jsonPath := utils.GenerateOutputFilename(in, cfg.Output.Dir, "_"+string(kind), "json")
	_ = os.WriteFile(jsonPath, js, 0o644)
}

// logFeature prints the per-kind metadata of one detection.
func logFeature(i int, f types.Feature) {
	b := f.Bounds
	switch f.Kind {
	case types.KindFace:
		log.Printf("[%d] face conf=%.2f box=(%.0f,%.0f %.0fx%.0f) landmarks=%d",
			i, f.Confidence, b.X, b.Y, b.W, b.H, len(f.Landmarks))
	case types.KindText:
		log.Printf("[%d] text box=(%.0f,%.0f %.0fx%.0f): %s", i, b.X, b.Y, b.W, b.H, f.Text)
	case types.KindBarcode:
		log.Printf("[%d] barcode box=(%.0f,%.0f %.0fx%.0f) payload=%q", i, b.X, b.Y, b.W, b.H, f.Text)
	case types.KindLabel:
		log.Printf("[%d] label %q conf=%.2f", i, f.Label, f.Confidence)
	default:
		log.Printf("[%d] %s %q conf=%.2f box=(%.0f,%.0f %.0fx%.0f)",
			i, f.Kind, f.Label, f.Confidence, b.X, b.Y, b.W, b.H)
	}
}

// parseView parses a "WxH" flag value.
func parseView(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid view size %q (want WxH)", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid view width %q", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid view height %q", parts[1])
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("view dimensions must be positive, got %dx%d", w, h)
	}
	return w, h, nil
}
