package decision

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/notiabet/courtedge/internal/domain/models"
)

// Config holds the engine's thresholds. Both filter comparisons are strict:
// an edge of exactly MinEdge or odds of exactly MinOdds do not qualify.
type Config struct {
	MinEdge       float64
	MinOdds       float64
	KellyFraction float64
	MaxStakePct   float64
}

// Engine turns calibrated probabilities and market odds into sized bet
// proposals.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Decide computes the value edge of backing an outcome with probability p
// at decimal odds, and whether the bet clears the eligibility filter. Odds
// of 1.0 (an unquoted side) carry implied probability 1, so the edge is
// never positive.
func (e *Engine) Decide(p, oddsDecimal float64) (edge float64, eligible bool) {
	if oddsDecimal <= 0 || !isFinite(p) || !isFinite(oddsDecimal) {
		return 0, false
	}
	edge = p - 1/oddsDecimal
	eligible = edge > e.cfg.MinEdge && oddsDecimal > e.cfg.MinOdds
	return edge, eligible
}

// SizeStake returns the stake for backing probability p at decimal odds
// from the given bankroll: full Kelly, scaled by the configured fraction,
// then capped at the configured share of the bankroll. The fraction and the
// cap are independent safety layers; both always apply.
func (e *Engine) SizeStake(p, oddsDecimal, bankroll float64) float64 {
	b := oddsDecimal - 1
	if b <= 0 || bankroll <= 0 || !isFinite(p) || !isFinite(b) {
		return 0
	}
	q := 1 - p
	f := (p*b - q) / b
	if !isFinite(f) || f <= 0 {
		return 0
	}
	stake := bankroll * f * e.cfg.KellyFraction
	if maxStake := bankroll * e.cfg.MaxStakePct; stake > maxStake {
		stake = maxStake
	}
	return stake
}

// sideCandidate is one evaluated side of a game.
type sideCandidate struct {
	selection string
	p         float64
	odds      float64
	edge      float64
}

// BuildProposal evaluates both sides of a game and returns at most one
// proposal: the eligible side, or when both qualify, the one with the
// higher edge. Returns nil when neither side clears the filter.
func (e *Engine) BuildProposal(predictionID, gameDate, homeTeam, awayTeam string, homeP, homeOdds, awayOdds, bankroll float64) *models.BetProposal {
	candidates := []sideCandidate{
		{selection: homeTeam, p: homeP, odds: homeOdds},
		{selection: awayTeam, p: 1 - homeP, odds: awayOdds},
	}

	var best *sideCandidate
	for i := range candidates {
		c := &candidates[i]
		edge, ok := e.Decide(c.p, c.odds)
		if !ok {
			continue
		}
		c.edge = edge
		if best == nil || c.edge > best.edge {
			best = c
		}
	}
	if best == nil {
		return nil
	}

	stake := e.SizeStake(best.p, best.odds, bankroll)
	if stake <= 0 {
		return nil
	}

	return &models.BetProposal{
		ID:           uuid.NewString(),
		PredictionID: predictionID,
		GameDate:     gameDate,
		Match:        homeTeam + ":" + awayTeam,
		Selection:    best.selection,
		OddsDecimal:  best.odds,
		Edge:         best.edge,
		Stake:        decimal.NewFromFloat(stake).Round(2),
		Status:       models.ProposalPending,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
