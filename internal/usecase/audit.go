package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/internal/domain/repository"
	"github.com/notiabet/courtedge/internal/service/schedule"
	"github.com/notiabet/courtedge/pkg/logger"
)

// Auditor settles stored predictions against final scores. It runs after a
// league day closes and only touches games the scoreboard reports FINAL.
type Auditor struct {
	log      *logger.Logger
	scores   repository.LiveScoreSource
	schedule repository.ScheduleSource
	store    repository.PredictionStore
}

func NewAuditor(log *logger.Logger, scores repository.LiveScoreSource, sched repository.ScheduleSource, store repository.PredictionStore) *Auditor {
	return &Auditor{log: log, scores: scores, schedule: sched, store: store}
}

// SettleDay joins FINAL scoreboard results onto the stored predictions of
// the league day containing t. Games still in progress are left for the
// next pass; settlement is idempotent on the store side.
func (a *Auditor) SettleDay(ctx context.Context, t time.Time) error {
	if a.store == nil {
		return nil
	}
	dateKey := schedule.LeagueDayKey(t)

	board, err := a.scores.Scores(ctx)
	if err != nil {
		return fmt.Errorf("scoreboard: %w", err)
	}

	settled := 0
	for _, game := range a.schedule.GamesForDay(t) {
		score, ok := board[game.Key()]
		if !ok || score.Status != models.GameStatusFinal {
			continue
		}
		if err := a.store.SettleGame(ctx, dateKey, game.HomeTeam, game.AwayTeam, score.HomeScore, score.AwayScore); err != nil {
			a.log.Error("game not settled",
				logger.String("game", game.Key()),
				logger.Error(err))
			continue
		}
		settled++
	}

	a.log.Info("result audit finished",
		logger.String("date", dateKey),
		logger.Int("settled", settled))
	return nil
}
