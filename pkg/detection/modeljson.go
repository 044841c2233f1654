package detection

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/visionfit/visionfit/pkg/types"
)

// Prompt builds the detection prompt sent to model-driven backends. The
// model reports bounding boxes in pixel coordinates of the submitted
// image so that downstream mapping needs no extra conversion.
func Prompt(kind types.FeatureKind, width, height int) string {
	var task string
	switch kind {
	case types.KindLabel:
		task = `Classify the image. Report up to 5 labels for the whole image with confidences. Leave every box as {"x":0,"y":0,"w":0,"h":0}.`
	case types.KindBarcode:
		task = `Locate every barcode or QR code. For each, put the decoded payload in "text" and report its bounding box.`
	case types.KindObject:
		task = `Locate the distinct objects in the image. For each, report its class in "label", a confidence, and its bounding box.`
	default:
		task = fmt.Sprintf(`Locate every %s in the image. For each, report a confidence and its bounding box.`, kind)
	}

	return fmt.Sprintf(`You are a vision feature detector. The image is %d pixels wide and %d pixels tall.

%s

Return JSON only, in this exact shape:
{"features":[{"label":"string","confidence":0.0,"text":"","box":{"x":0.0,"y":0.0,"w":0.0,"h":0.0}}]}

HARD RULES
- Box coordinates are PIXELS of the %dx%d image, x/y is the top-left corner.
- Confidence is in [0,1].
- If nothing is found, return {"features":[]}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`,
		width, height, task, width, height)
}

// modelFeature is the wire shape the prompt asks the model for.
type modelFeature struct {
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	Text       string     `json:"text"`
	Box        types.Rect `json:"box"`
}

type modelResponse struct {
	Features []modelFeature `json:"features"`
}

// ParseModelFeatures parses a model's raw chat response into features of
// the given kind. Responses pass through fence/comment stripping first;
// a response with no recoverable JSON yields an error rather than a
// fabricated result.
func ParseModelFeatures(raw string, kind types.FeatureKind) ([]types.Feature, error) {
	raw = sanitizeModelJSON(raw)

	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return nil, fmt.Errorf("model returned non-JSON response")
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		// Conservative brace-slice fallback.
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no valid JSON in model response")
		}
		if err2 := json.Unmarshal([]byte(raw[start:end+1]), &resp); err2 != nil {
			return nil, fmt.Errorf("failed to parse model response: %w", err2)
		}
	}

	features := make([]types.Feature, 0, len(resp.Features))
	for _, mf := range resp.Features {
		features = append(features, types.Feature{
			Kind:       kind,
			Bounds:     mf.Box,
			Label:      strings.TrimSpace(mf.Label),
			Confidence: clamp01(mf.Confidence),
			Text:       strings.TrimSpace(mf.Text),
		})
	}
	return features, nil
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

// sanitizeModelJSON removes code fences, comments, and trailing commas
// from a model response before unmarshaling.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	// Remove /* ... */ block comments
	reBlock := regexp.MustCompile(`(?s)/\*.*?\*/`)
	raw = reBlock.ReplaceAllString(raw, "")

	// Remove whole-line // comments. Only lines that begin with the
	// marker are stripped: JSON strings cannot hold a raw newline, so a
	// mid-line // may sit inside a string value (a URL payload) and must
	// be left alone.
	reLine := regexp.MustCompile(`(?m)^\s*//.*$`)
	raw = reLine.ReplaceAllString(raw, "")

	// Remove trailing commas before } or ]
	reTrailing := regexp.MustCompile(`,(\s*[}\]])`)
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
