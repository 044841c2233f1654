package client

import (
	"context"

	"github.com/visionfit/visionfit/pkg/types"
)

// VisionClient is the contract every detection backend implements. Detect
// is single-shot: one request yields exactly one response or one error,
// with no retry and no cancellation beyond the context.
type VisionClient interface {
	Detect(ctx context.Context, req *types.DetectRequest) (*types.DetectResponse, error)
	Kinds() []types.FeatureKind
}

// Supports reports whether the backend serves the given feature kind.
func Supports(c VisionClient, kind types.FeatureKind) bool {
	for _, k := range c.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}
