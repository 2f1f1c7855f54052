package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PredictionRecord is one game's evaluation output. Created once per
// (game, run) and never mutated; a re-evaluation produces a new record.
type PredictionRecord struct {
	ID              string    `json:"id"`
	GameDate        string    `json:"game_date"`
	HomeTeam        string    `json:"home_team"`
	AwayTeam        string    `json:"away_team"`
	PredictedWinner string    `json:"predicted_winner"`
	HomeWinProb     float64   `json:"home_win_probability"`
	AwayWinProb     float64   `json:"away_win_probability"`
	TotalPick       string    `json:"total_pick"` // OVER or UNDER
	TotalLine       float64   `json:"total_line"`
	TotalProb       float64   `json:"total_probability"`
	HomePrice       int       `json:"home_price"`
	AwayPrice       int       `json:"away_price"`
	HomeEdge        float64   `json:"home_edge"`
	AwayEdge        float64   `json:"away_edge"`
	Recommendation  string    `json:"recommendation"`
	StartTimeUTC    string    `json:"start_time_utc,omitempty"`
	Venue           string    `json:"venue,omitempty"`
	Status          string    `json:"status"`
	HomeScore       int       `json:"home_score,omitempty"`
	AwayScore       int       `json:"away_score,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Proposal statuses.
const (
	ProposalPending = "PENDING"
	ProposalWon     = "WON"
	ProposalLost    = "LOST"
)

// Recommendation verdicts.
const (
	RecommendBetHome = "BET_HOME"
	RecommendBetAway = "BET_AWAY"
	RecommendSkip    = "SKIP"
)

// BetProposal is a sized bet suggestion for one side of one game.
type BetProposal struct {
	ID           string          `json:"id"`
	PredictionID string          `json:"prediction_id"`
	GameDate     string          `json:"game_date"`
	Match        string          `json:"match"`
	Selection    string          `json:"selection"`
	OddsDecimal  float64         `json:"odds_decimal"`
	Edge         float64         `json:"edge"`
	Stake        decimal.Decimal `json:"stake"`
	Status       string          `json:"status"`
}

// DailyBundle is one league day's full evaluation output, computed against
// a reference bankroll. Consumers rescale stakes to their own bankroll
// without recomputation.
type DailyBundle struct {
	Date              string             `json:"date"`
	Generation        uint64             `json:"generation"`
	ReferenceBankroll float64            `json:"reference_bankroll"`
	Predictions       []PredictionRecord `json:"predictions"`
	Proposals         []BetProposal      `json:"proposals"`
	RiskNote          string             `json:"risk_note,omitempty"`
	SkippedGames      []string           `json:"skipped_games,omitempty"`
	Errored           bool               `json:"errored"`
	ErrorMessage      string             `json:"error_message,omitempty"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// Rescale returns a copy of the bundle with every stake multiplied by
// bankroll/ReferenceBankroll. Kelly stakes are linear in bankroll at fixed
// probability and odds, so no recomputation is needed. Ratio 1 is the
// identity.
func (b *DailyBundle) Rescale(bankroll float64) *DailyBundle {
	out := *b
	if b.ReferenceBankroll <= 0 || bankroll == b.ReferenceBankroll {
		return &out
	}
	ratio := decimal.NewFromFloat(bankroll).Div(decimal.NewFromFloat(b.ReferenceBankroll))
	out.Proposals = make([]BetProposal, len(b.Proposals))
	for i, p := range b.Proposals {
		p.Stake = p.Stake.Mul(ratio).Round(2)
		out.Proposals[i] = p
	}
	return &out
}

// TotalStake sums the bundle's proposed stakes.
func (b *DailyBundle) TotalStake() decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.Proposals {
		total = total.Add(p.Stake)
	}
	return total
}

// BundleEvent is the lightweight bundle-ready notification published for
// downstream collaborators.
type BundleEvent struct {
	Date        string    `json:"date"`
	Generation  uint64    `json:"generation"`
	Predictions int       `json:"predictions"`
	Proposals   int       `json:"proposals"`
	Errored     bool      `json:"errored"`
	GeneratedAt time.Time `json:"generated_at"`
}
