package predict

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/internal/domain/service"
	"github.com/notiabet/courtedge/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func writeArtifact(t *testing.T, dir, file string, a artifact) {
	t.Helper()
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), b, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
}

func newTestPredictor(t *testing.T, ml, total *artifact) *Predictor {
	t.Helper()
	dir := t.TempDir()
	if ml != nil {
		writeArtifact(t, dir, "ml.json", *ml)
	}
	if total != nil {
		writeArtifact(t, dir, "total.json", *total)
	}
	return NewPredictor(testLogger(t), dir, "ml.json", "total.json")
}

func mlArtifact() *artifact {
	return &artifact{
		Kind:     service.KindMoneyline,
		Version:  "2025.1",
		Features: []string{"A", "B"},
		Weights:  []float64{1.0, -0.5},
		Bias:     0.25,
	}
}

func TestScoreLogistic(t *testing.T) {
	p := newTestPredictor(t, mlArtifact(), nil)
	vec := &models.FeatureVector{Names: []string{"A", "B"}, Values: []float64{2.0, 1.0}}

	dist, err := p.Score(vec, service.KindMoneyline)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// margin = 0.25 + 1.0*2.0 - 0.5*1.0 = 1.75
	want := 1 / (1 + math.Exp(-1.75))
	if math.Abs(dist.P1-want) > 1e-12 {
		t.Fatalf("P1 = %v, want %v", dist.P1, want)
	}
	if math.Abs(dist.P0+dist.P1-1) > 1e-12 {
		t.Fatalf("distribution does not sum to 1: %v", dist.P0+dist.P1)
	}
}

func TestScoreSigmoidCalibration(t *testing.T) {
	a := mlArtifact()
	a.Calibration = &calibration{Method: methodSigmoid, A: -1.2, B: 0.1}
	p := newTestPredictor(t, a, nil)

	vec := &models.FeatureVector{Names: []string{"A", "B"}, Values: []float64{2.0, 1.0}}
	dist, err := p.Score(vec, service.KindMoneyline)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	want := 1 / (1 + math.Exp(-1.2*1.75+0.1))
	if math.Abs(dist.P1-want) > 1e-12 {
		t.Fatalf("calibrated P1 = %v, want %v", dist.P1, want)
	}
}

func TestScoreIsotonicCalibration(t *testing.T) {
	a := mlArtifact()
	a.Calibration = &calibration{
		Method: methodIsotonic,
		X:      []float64{0.0, 0.5, 1.0},
		Y:      []float64{0.1, 0.4, 0.9},
	}
	p := newTestPredictor(t, a, nil)

	// margin 0 -> raw 0.5 -> maps to 0.4 exactly.
	vec := &models.FeatureVector{Names: []string{"A", "B"}, Values: []float64{-0.75, -1.0}}
	dist, err := p.Score(vec, service.KindMoneyline)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(dist.P1-0.4) > 1e-12 {
		t.Fatalf("isotonic P1 = %v, want 0.4", dist.P1)
	}
}

func TestInterpolateClampsOutsideRange(t *testing.T) {
	xs := []float64{0.2, 0.8}
	ys := []float64{0.3, 0.7}
	if got := interpolate(xs, ys, 0.0); got != 0.3 {
		t.Fatalf("below range = %v, want 0.3", got)
	}
	if got := interpolate(xs, ys, 1.0); got != 0.7 {
		t.Fatalf("above range = %v, want 0.7", got)
	}
	if got := interpolate(xs, ys, 0.5); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("midpoint = %v, want 0.5", got)
	}
}

func TestScoreTotalAppendsMarketLine(t *testing.T) {
	total := &artifact{
		Kind:     service.KindTotal,
		Version:  "2025.1",
		Features: []string{"A", "B", "OU"},
		Weights:  []float64{0, 0, 0.01},
		Bias:     -2.2,
	}
	p := newTestPredictor(t, mlArtifact(), total)

	vec := &models.FeatureVector{Names: []string{"A", "B"}, Values: []float64{5, 5}}
	dist, err := p.ScoreTotal(vec, 220)
	if err != nil {
		t.Fatalf("ScoreTotal: %v", err)
	}
	want := 1 / (1 + math.Exp(-(0.01*220 - 2.2)))
	if math.Abs(dist.P1-want) > 1e-12 {
		t.Fatalf("P1 = %v, want %v", dist.P1, want)
	}

	// The caller's vector must not be mutated by the augmentation.
	if vec.Len() != 2 {
		t.Fatalf("input vector mutated: %v", vec.Names)
	}
}

func TestScoreSchemaMismatch(t *testing.T) {
	p := newTestPredictor(t, mlArtifact(), nil)
	vec := &models.FeatureVector{Names: []string{"A", "X"}, Values: []float64{1, 2}}

	_, err := p.Score(vec, service.KindMoneyline)
	if !errors.Is(err, models.ErrSchemaMismatch) {
		t.Fatalf("err = %v, want schema mismatch", err)
	}
}

func TestScoreModelUnavailable(t *testing.T) {
	p := NewPredictor(testLogger(t), t.TempDir(), "missing.json", "missing2.json")
	vec := &models.FeatureVector{Names: []string{"A"}, Values: []float64{1}}

	_, err := p.Score(vec, service.KindMoneyline)
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("err = %v, want model unavailable", err)
	}
	// Second call hits the memoized failure, same classification.
	_, err = p.Score(vec, service.KindMoneyline)
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("repeat err = %v, want model unavailable", err)
	}
	if p.Schema(service.KindMoneyline) != nil {
		t.Fatal("schema must be nil for an unloadable model")
	}
}

func TestExpectsAdvanced(t *testing.T) {
	plain := mlArtifact()
	p := newTestPredictor(t, plain, nil)
	if p.ExpectsAdvanced() {
		t.Fatal("plain schema must not expect advanced stats")
	}

	adv := mlArtifact()
	adv.Features = []string{"OFF_RATING_ADV", "PTS"}
	adv.Weights = []float64{0.1, 0.2}
	p = newTestPredictor(t, adv, nil)
	if !p.ExpectsAdvanced() {
		t.Fatal("schema with _ADV columns must expect advanced stats")
	}
}

func TestLoadArtifactRejectsBadShapes(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]artifact{
		"wrong-kind.json":     {Kind: service.KindTotal, Version: "1", Features: []string{"A"}, Weights: []float64{1}},
		"no-version.json":     {Kind: service.KindMoneyline, Features: []string{"A"}, Weights: []float64{1}},
		"weight-drift.json":   {Kind: service.KindMoneyline, Version: "1", Features: []string{"A", "B"}, Weights: []float64{1}},
		"bad-calibration.json": {Kind: service.KindMoneyline, Version: "1", Features: []string{"A"}, Weights: []float64{1}, Calibration: &calibration{Method: "spline"}},
	}
	for file, a := range cases {
		writeArtifact(t, dir, file, a)
		if _, err := loadArtifact(filepath.Join(dir, file), service.KindMoneyline); err == nil {
			t.Errorf("%s: expected load error", file)
		}
	}
}
