package service

import (
	"context"

	"github.com/notiabet/courtedge/internal/domain/models"
)

// ModelKind selects which trained classifier a score request targets.
type ModelKind string

const (
	KindMoneyline ModelKind = "moneyline"
	KindTotal     ModelKind = "total"
)

// Distribution is a two-class probability distribution. Class one is the
// home win for the moneyline model and the over for the total model.
type Distribution struct {
	P0 float64 `json:"p0"`
	P1 float64 `json:"p1"`
}

// Scorer is the uniform invocation contract over the trained classifiers.
// Callers always hand over the base game vector; the total model's
// market-line augmentation happens inside the scorer, not at the call site.
type Scorer interface {
	Score(vec *models.FeatureVector, kind ModelKind) (Distribution, error)
	ScoreTotal(vec *models.FeatureVector, totalLine float64) (Distribution, error)
	Schema(kind ModelKind) []string
	ExpectsAdvanced() bool
}

// RiskAdvisor produces the narrative risk note attached to a daily bundle.
// Advisory only: failures degrade to a fallback message, never to a failed
// run.
type RiskAdvisor interface {
	AnalyzeRisk(ctx context.Context, proposals []models.BetProposal, bankroll float64) (string, error)
}
