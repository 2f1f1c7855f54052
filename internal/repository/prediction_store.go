package repository

import (
	"context"
	"fmt"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/pkg/clickhouse"
	"github.com/notiabet/courtedge/pkg/logger"
)

var predictionSchema = []string{
	`CREATE DATABASE IF NOT EXISTS courtedge`,
	`CREATE TABLE IF NOT EXISTS courtedge.predictions (
		id               String,
		game_date        Date,
		home_team        String,
		away_team        String,
		predicted_winner String,
		home_win_prob    Float64,
		away_win_prob    Float64,
		total_pick       String,
		total_line       Float64,
		total_prob       Float64,
		home_price       Int32,
		away_price       Int32,
		home_edge        Float64,
		away_edge        Float64,
		recommendation   String,
		status           String,
		home_score       Int32 DEFAULT 0,
		away_score       Int32 DEFAULT 0,
		created_at       DateTime
	) ENGINE = ReplacingMergeTree(created_at)
	ORDER BY (game_date, home_team, away_team, id)`,
}

// PredictionStore persists evaluation history in ClickHouse. Rows are
// insert-only per run; settlement inserts a superseding row with outcome
// fields filled, and the ReplacingMergeTree keeps the latest per key.
type PredictionStore struct {
	client *clickhouse.Client
	log    *logger.Logger
}

func NewPredictionStore(ctx context.Context, client *clickhouse.Client, log *logger.Logger) (*PredictionStore, error) {
	if err := client.InitSchema(ctx, predictionSchema); err != nil {
		return nil, fmt.Errorf("prediction schema: %w", err)
	}
	return &PredictionStore{client: client, log: log}, nil
}

// SavePredictions inserts one row per prediction record.
func (s *PredictionStore) SavePredictions(ctx context.Context, records []models.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO courtedge.predictions (
		id, game_date, home_team, away_team, predicted_winner,
		home_win_prob, away_win_prob, total_pick, total_line, total_prob,
		home_price, away_price, home_edge, away_edge, recommendation,
		status, home_score, away_score, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.GameDate, r.HomeTeam, r.AwayTeam, r.PredictedWinner,
			r.HomeWinProb, r.AwayWinProb, r.TotalPick, r.TotalLine, r.TotalProb,
			int32(r.HomePrice), int32(r.AwayPrice), r.HomeEdge, r.AwayEdge, r.Recommendation,
			r.Status, int32(r.HomeScore), int32(r.AwayScore), r.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert prediction %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	s.log.Debug("predictions persisted", logger.Int("rows", len(records)))
	return nil
}

// SettleGame writes the final score onto the stored prediction by inserting
// a superseding row. The replacing engine collapses it with the original on
// merge; readers take the newest created_at.
func (s *PredictionStore) SettleGame(ctx context.Context, gameDate, homeTeam, awayTeam string, homeScore, awayScore int) error {
	_, err := s.client.DB().ExecContext(ctx, `INSERT INTO courtedge.predictions (
		id, game_date, home_team, away_team, predicted_winner,
		home_win_prob, away_win_prob, total_pick, total_line, total_prob,
		home_price, away_price, home_edge, away_edge, recommendation,
		status, home_score, away_score, created_at
	)
	SELECT
		id, game_date, home_team, away_team, predicted_winner,
		home_win_prob, away_win_prob, total_pick, total_line, total_prob,
		home_price, away_price, home_edge, away_edge, recommendation,
		?, ?, ?, now()
	FROM courtedge.predictions FINAL
	WHERE game_date = ? AND home_team = ? AND away_team = ?`,
		models.GameStatusFinal, int32(homeScore), int32(awayScore),
		gameDate, homeTeam, awayTeam)
	if err != nil {
		return fmt.Errorf("settle %s vs %s on %s: %w", homeTeam, awayTeam, gameDate, err)
	}
	return nil
}
