package repository

import (
	"context"
	"time"

	"github.com/notiabet/courtedge/internal/domain/models"
)

// StatsSource provides per-team statistical snapshots. Implementations
// cache internally; a failed refresh returns the previous set when one
// exists and an empty set otherwise, never an error that kills the run.
type StatsSource interface {
	Snapshots(ctx context.Context) (*models.SnapshotSet, error)
}

// ScheduleSource answers league-day and rest questions from the season
// schedule. All day bucketing must go through the same league-day rule.
type ScheduleSource interface {
	GamesForDay(day time.Time) []models.ScheduleEntry
	DaysRest(team string, asOf time.Time) int
}

// OddsSource provides market quotes keyed by "Home:Away". A missing game
// or a failed provider is represented by absence, not by an error.
type OddsSource interface {
	Quotes(ctx context.Context) (map[string]models.OddsQuote, error)
}

// LiveScoreSource provides scoreboard state keyed by "Home:Away".
type LiveScoreSource interface {
	Scores(ctx context.Context) (map[string]models.LiveScore, error)
}

// PredictionStore persists evaluation history. Records are insert-only;
// result settlement updates only the outcome fields.
type PredictionStore interface {
	SavePredictions(ctx context.Context, records []models.PredictionRecord) error
	SettleGame(ctx context.Context, gameDate, homeTeam, awayTeam string, homeScore, awayScore int) error
}

// Publisher emits bundle-ready events for downstream collaborators.
type Publisher interface {
	PublishBundle(ctx context.Context, event models.BundleEvent) error
}

// Metrics records pipeline observability signals.
type Metrics interface {
	RecordRun(trigger, result string)
	RecordFetchError(provider string)
	RecordSkippedGame(reason string)
	RecordPredictions(n int)
	RecordProposals(n int)
	RecordProposedStake(total float64)
	RecordStageLatency(stage string, seconds float64)
	RecordCacheLookup(result string)
}
