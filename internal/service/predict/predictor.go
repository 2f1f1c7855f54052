package predict

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/internal/domain/service"
	"github.com/notiabet/courtedge/internal/service/features"
	"github.com/notiabet/courtedge/pkg/logger"
)

// ouColumn is the total model's market-line augmentation column. It is
// appended after the sorted base columns, matching the training layout.
const ouColumn = "OU"

// probEpsilon keeps calibrated probabilities away from exactly 0 and 1 so
// downstream edge and Kelly arithmetic stays finite.
const probEpsilon = 1e-9

type loadState struct {
	once sync.Once
	art  *artifact
	err  error
}

// Predictor scores feature vectors with the trained moneyline and total
// classifiers. Artifacts load lazily and exactly once per process; a load
// failure is logged once and then surfaced as a model-unavailable error on
// every score call, leaving the process alive with zero predictions.
type Predictor struct {
	log   *logger.Logger
	paths map[service.ModelKind]string
	state map[service.ModelKind]*loadState
}

func NewPredictor(log *logger.Logger, dir, moneylineFile, totalFile string) *Predictor {
	return &Predictor{
		log: log,
		paths: map[service.ModelKind]string{
			service.KindMoneyline: filepath.Join(dir, moneylineFile),
			service.KindTotal:     filepath.Join(dir, totalFile),
		},
		state: map[service.ModelKind]*loadState{
			service.KindMoneyline: {},
			service.KindTotal:     {},
		},
	}
}

func (p *Predictor) load(kind service.ModelKind) (*artifact, error) {
	st, ok := p.state[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model kind %q", models.ErrModelUnavailable, kind)
	}
	st.once.Do(func() {
		st.art, st.err = loadArtifact(p.paths[kind], kind)
		if st.err != nil {
			p.log.Error("model artifact failed to load",
				logger.String("kind", string(kind)),
				logger.String("path", p.paths[kind]),
				logger.Error(st.err))
			return
		}
		p.log.Info("model artifact loaded",
			logger.String("kind", string(kind)),
			logger.String("version", st.art.Version),
			logger.Int("features", len(st.art.Features)),
			logger.Bool("calibrated", st.art.Calibration != nil))
	})
	if st.err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelUnavailable, st.err)
	}
	return st.art, nil
}

// Score evaluates the moneyline classifier on the base game vector. For the
// total classifier use ScoreTotal, which carries the market line.
func (p *Predictor) Score(vec *models.FeatureVector, kind service.ModelKind) (service.Distribution, error) {
	if kind == service.KindTotal {
		return service.Distribution{}, fmt.Errorf("total model requires a market line, use ScoreTotal")
	}
	return p.score(vec, kind)
}

// ScoreTotal evaluates the total classifier. The base vector is augmented
// with the market total line here; callers never build the OU column.
func (p *Predictor) ScoreTotal(vec *models.FeatureVector, totalLine float64) (service.Distribution, error) {
	return p.score(vec.Append(ouColumn, totalLine), service.KindTotal)
}

func (p *Predictor) score(vec *models.FeatureVector, kind service.ModelKind) (service.Distribution, error) {
	art, err := p.load(kind)
	if err != nil {
		return service.Distribution{}, err
	}
	if err := features.Validate(vec, art.Features, string(kind)); err != nil {
		return service.Distribution{}, err
	}

	margin := art.Bias
	for i, w := range art.Weights {
		margin += w * vec.Values[i]
	}
	if math.IsNaN(margin) || math.IsInf(margin, 0) {
		return service.Distribution{}, fmt.Errorf("non-finite margin for %s model", kind)
	}

	p1 := 1 / (1 + math.Exp(-margin))
	if art.Calibration != nil {
		p1 = art.Calibration.apply(margin, p1)
	}
	p1 = math.Min(math.Max(p1, probEpsilon), 1-probEpsilon)

	return service.Distribution{P0: 1 - p1, P1: p1}, nil
}

// Schema returns the feature layout the model of the given kind was trained
// on, or nil when the artifact cannot be loaded.
func (p *Predictor) Schema(kind service.ModelKind) []string {
	art, err := p.load(kind)
	if err != nil {
		return nil
	}
	return art.Features
}

// ExpectsAdvanced reports whether the moneyline model's training layout
// includes advanced stat columns. Assembly must agree with this, in both
// directions.
func (p *Predictor) ExpectsAdvanced() bool {
	for _, name := range p.Schema(service.KindMoneyline) {
		if strings.Contains(name, "_ADV") {
			return true
		}
	}
	return false
}
