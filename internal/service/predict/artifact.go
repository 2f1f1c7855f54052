package predict

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/notiabet/courtedge/internal/domain/service"
)

// artifact is a versioned trained-classifier file: the exact feature layout
// the model was fitted on, its logistic weights, and optional probability
// calibration. The feature list travels with the weights so a layout drift
// is detected at load or score time, never discovered as silently wrong
// probabilities.
type artifact struct {
	Kind        service.ModelKind `json:"kind"`
	Version     string            `json:"version"`
	Features    []string          `json:"features"`
	Weights     []float64         `json:"weights"`
	Bias        float64           `json:"bias"`
	Calibration *calibration      `json:"calibration,omitempty"`
}

func loadArtifact(path string, kind service.ModelKind) (*artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	if a.Kind != kind {
		return nil, fmt.Errorf("model artifact %s: kind %q, want %q", path, a.Kind, kind)
	}
	if a.Version == "" {
		return nil, fmt.Errorf("model artifact %s: missing version", path)
	}
	if len(a.Features) == 0 || len(a.Weights) != len(a.Features) {
		return nil, fmt.Errorf("model artifact %s: %d weights for %d features",
			path, len(a.Weights), len(a.Features))
	}
	if a.Calibration != nil {
		if err := a.Calibration.validate(); err != nil {
			return nil, fmt.Errorf("model artifact %s: %w", path, err)
		}
	}
	return &a, nil
}
