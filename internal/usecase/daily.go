package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/internal/domain/repository"
	"github.com/notiabet/courtedge/internal/domain/service"
	"github.com/notiabet/courtedge/internal/service/cache"
	"github.com/notiabet/courtedge/internal/service/decision"
	"github.com/notiabet/courtedge/internal/service/features"
	"github.com/notiabet/courtedge/internal/service/odds"
	"github.com/notiabet/courtedge/internal/service/schedule"
	"github.com/notiabet/courtedge/pkg/logger"
)

// Day lifecycle states. A day starts EMPTY (absent from the map), moves to
// COMPUTING while a run is in flight, and settles in CACHED or FAILED.
// Concurrent runs for the same day are allowed; the generation stamp makes
// the last writer identifiable.
const (
	StateEmpty     = "EMPTY"
	StateComputing = "COMPUTING"
	StateCached    = "CACHED"
	StateFailed    = "FAILED"
)

const bundleCacheTTL = 24 * time.Hour

// Skip reasons recorded per game.
const (
	skipMissingSnapshot = "missing_snapshot"
	skipSchemaMismatch  = "schema_mismatch"
)

// Config carries the orchestrator's own knobs; scoring and sizing knobs
// live with their services.
type Config struct {
	ReferenceBankroll float64
	DefaultTotalLine  float64
}

// Orchestrator runs the daily evaluation pipeline and serves its cached
// output. All stakes in a cached bundle are sized against the reference
// bankroll; per-caller bankrolls are served by linear rescaling.
type Orchestrator struct {
	cfg       Config
	log       *logger.Logger
	stats     repository.StatsSource
	schedule  repository.ScheduleSource
	odds      repository.OddsSource
	scorer    service.Scorer
	engine    *decision.Engine
	advisor   service.RiskAdvisor
	cache     cache.BytesCache
	store     repository.PredictionStore // optional
	publisher repository.Publisher       // optional
	metrics   repository.Metrics

	generation atomic.Uint64

	mu     sync.Mutex
	states map[string]string

	// onCached, when set, receives every newly cached bundle.
	onCached func(*models.DailyBundle)
}

func NewOrchestrator(
	cfg Config,
	log *logger.Logger,
	stats repository.StatsSource,
	sched repository.ScheduleSource,
	oddsSource repository.OddsSource,
	scorer service.Scorer,
	engine *decision.Engine,
	advisor service.RiskAdvisor,
	bundleCache cache.BytesCache,
	store repository.PredictionStore,
	publisher repository.Publisher,
	metrics repository.Metrics,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		log:       log,
		stats:     stats,
		schedule:  sched,
		odds:      oddsSource,
		scorer:    scorer,
		engine:    engine,
		advisor:   advisor,
		cache:     bundleCache,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		states:    make(map[string]string),
	}
}

// OnBundleCached registers a callback invoked with each newly cached
// bundle. Set once during wiring, before any run starts.
func (o *Orchestrator) OnBundleCached(fn func(*models.DailyBundle)) {
	o.onCached = fn
}

// DayState reports the lifecycle state for a league-day key.
func (o *Orchestrator) DayState(dateKey string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.states[dateKey]; ok {
		return s
	}
	return StateEmpty
}

func (o *Orchestrator) setState(dateKey, state string) {
	o.mu.Lock()
	o.states[dateKey] = state
	o.mu.Unlock()
}

func bundleKey(dateKey string) string { return "bundle:" + dateKey }

// Refresh runs the pipeline for the current league day. trigger names the
// initiator ("cron", "api") for logs and metrics.
func (o *Orchestrator) Refresh(ctx context.Context, trigger string) (*models.DailyBundle, error) {
	return o.RunForDay(ctx, time.Now().UTC(), trigger)
}

// RunForDay executes the full pipeline for the league day containing t and
// caches the resulting bundle. A run that cannot evaluate anything still
// writes an errored bundle, so "no data" is a queryable outcome rather
// than an absent one.
func (o *Orchestrator) RunForDay(ctx context.Context, t time.Time, trigger string) (*models.DailyBundle, error) {
	day := schedule.LeagueDay(t)
	dateKey := schedule.LeagueDayKey(t)
	started := time.Now()

	o.setState(dateKey, StateComputing)
	o.log.Info("evaluation run started",
		logger.String("date", dateKey),
		logger.String("trigger", trigger))

	bundle, err := o.evaluate(ctx, day, dateKey)
	if err != nil {
		bundle = &models.DailyBundle{
			Date:              dateKey,
			Generation:        o.generation.Add(1),
			ReferenceBankroll: o.cfg.ReferenceBankroll,
			Errored:           true,
			ErrorMessage:      err.Error(),
			GeneratedAt:       time.Now().UTC(),
		}
		if cacheErr := o.persist(ctx, bundle); cacheErr != nil {
			o.log.Error("errored bundle not persisted", logger.Error(cacheErr))
		}
		o.setState(dateKey, StateFailed)
		o.metrics.RecordRun(trigger, "failed")
		o.log.Error("evaluation run failed",
			logger.String("date", dateKey),
			logger.Error(err))
		return bundle, err
	}

	if cacheErr := o.persist(ctx, bundle); cacheErr != nil {
		o.setState(dateKey, StateFailed)
		o.metrics.RecordRun(trigger, "failed")
		return nil, fmt.Errorf("persist bundle: %w", cacheErr)
	}
	o.setState(dateKey, StateCached)
	o.metrics.RecordRun(trigger, "ok")
	o.metrics.RecordPredictions(len(bundle.Predictions))
	o.metrics.RecordProposals(len(bundle.Proposals))
	o.metrics.RecordProposedStake(bundle.TotalStake().InexactFloat64())
	o.metrics.RecordStageLatency("run", time.Since(started).Seconds())

	if o.onCached != nil {
		o.onCached(bundle)
	}

	o.log.Info("evaluation run cached",
		logger.String("date", dateKey),
		logger.Int64("generation", int64(bundle.Generation)),
		logger.Int("predictions", len(bundle.Predictions)),
		logger.Int("proposals", len(bundle.Proposals)),
		logger.Duration("elapsed", time.Since(started)))
	return bundle, nil
}

func (o *Orchestrator) evaluate(ctx context.Context, day time.Time, dateKey string) (*models.DailyBundle, error) {
	bundle := &models.DailyBundle{
		Date:              dateKey,
		Generation:        o.generation.Add(1),
		ReferenceBankroll: o.cfg.ReferenceBankroll,
		GeneratedAt:       time.Now().UTC(),
	}

	games := o.schedule.GamesForDay(day)
	if len(games) == 0 {
		bundle.RiskNote = "No games scheduled for this league day."
		return bundle, nil
	}

	snaps, err := o.stats.Snapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("team stats: %w", err)
	}
	if snaps.Empty() {
		return nil, fmt.Errorf("%w: empty snapshot set", models.ErrDataUnavailable)
	}

	quotes, err := o.odds.Quotes(ctx)
	if err != nil {
		// Odds absence narrows eligibility, it does not cancel evaluation:
		// unquoted sides get implied probability one and cannot qualify.
		o.log.Warn("odds unavailable, evaluating without market lines", logger.Error(err))
		o.metrics.RecordFetchError("odds")
		quotes = map[string]models.OddsQuote{}
	}

	expectsAdvanced := o.scorer.ExpectsAdvanced()

	for _, game := range games {
		rec, proposal, err := o.evaluateGame(game, snaps, quotes, expectsAdvanced, dateKey)
		if err != nil {
			if errors.Is(err, models.ErrModelUnavailable) {
				return nil, err
			}
			reason := skipSchemaMismatch
			if errors.Is(err, models.ErrDataUnavailable) {
				reason = skipMissingSnapshot
			}
			o.metrics.RecordSkippedGame(reason)
			bundle.SkippedGames = append(bundle.SkippedGames, game.Key())
			o.log.Warn("game skipped",
				logger.String("game", game.Key()),
				logger.String("reason", reason),
				logger.Error(err))
			continue
		}
		bundle.Predictions = append(bundle.Predictions, *rec)
		if proposal != nil {
			bundle.Proposals = append(bundle.Proposals, *proposal)
		}
	}

	note, err := o.advisor.AnalyzeRisk(ctx, bundle.Proposals, o.cfg.ReferenceBankroll)
	if err != nil {
		o.log.Warn("risk advisory failed", logger.Error(err))
	} else {
		bundle.RiskNote = note
	}

	return bundle, nil
}

func (o *Orchestrator) evaluateGame(
	game models.ScheduleEntry,
	snaps *models.SnapshotSet,
	quotes map[string]models.OddsQuote,
	expectsAdvanced bool,
	dateKey string,
) (*models.PredictionRecord, *models.BetProposal, error) {
	home, ok := snaps.Lookup(game.HomeTeam)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no snapshot for %s", models.ErrDataUnavailable, game.HomeTeam)
	}
	away, ok := snaps.Lookup(game.AwayTeam)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no snapshot for %s", models.ErrDataUnavailable, game.AwayTeam)
	}

	rest := models.RestDays{
		Home: o.schedule.DaysRest(game.HomeTeam, game.StartUTC),
		Away: o.schedule.DaysRest(game.AwayTeam, game.StartUTC),
	}

	vec, err := o.buildFeatures(home, away, rest, expectsAdvanced)
	if err != nil {
		return nil, nil, err
	}

	quote, ok := quotes[game.Key()]
	if !ok {
		quote = models.OddsQuote{TotalLine: o.cfg.DefaultTotalLine}
	}

	mlDist, err := o.scorer.Score(vec, service.KindMoneyline)
	if err != nil {
		return nil, nil, err
	}
	totalDist, err := o.scorer.ScoreTotal(vec, quote.TotalLine)
	if err != nil {
		return nil, nil, err
	}

	homeOdds := odds.AmericanToDecimal(quote.HomePrice)
	awayOdds := odds.AmericanToDecimal(quote.AwayPrice)

	rec := &models.PredictionRecord{
		ID:           uuid.NewString(),
		GameDate:     dateKey,
		HomeTeam:     game.HomeTeam,
		AwayTeam:     game.AwayTeam,
		HomeWinProb:  mlDist.P1,
		AwayWinProb:  mlDist.P0,
		TotalLine:    quote.TotalLine,
		TotalProb:    totalDist.P1,
		HomePrice:    quote.HomePrice,
		AwayPrice:    quote.AwayPrice,
		StartTimeUTC: game.StartUTC.Format(time.RFC3339),
		Venue:        game.Venue,
		Status:       models.GameStatusScheduled,
		CreatedAt:    time.Now().UTC(),
	}
	if mlDist.P1 >= 0.5 {
		rec.PredictedWinner = game.HomeTeam
	} else {
		rec.PredictedWinner = game.AwayTeam
	}
	if totalDist.P1 >= 0.5 {
		rec.TotalPick = "OVER"
	} else {
		rec.TotalPick = "UNDER"
	}
	rec.HomeEdge, _ = o.engine.Decide(mlDist.P1, homeOdds)
	rec.AwayEdge, _ = o.engine.Decide(mlDist.P0, awayOdds)

	proposal := o.engine.BuildProposal(rec.ID, dateKey, game.HomeTeam, game.AwayTeam,
		mlDist.P1, homeOdds, awayOdds, o.cfg.ReferenceBankroll)
	switch {
	case proposal == nil:
		rec.Recommendation = models.RecommendSkip
	case proposal.Selection == game.HomeTeam:
		rec.Recommendation = models.RecommendBetHome
	default:
		rec.Recommendation = models.RecommendBetAway
	}

	return rec, proposal, nil
}

func (o *Orchestrator) persist(ctx context.Context, bundle *models.DailyBundle) error {
	b, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	if err := o.cache.SetBytes(bundleKey(bundle.Date), b, bundleCacheTTL); err != nil {
		return fmt.Errorf("cache bundle: %w", err)
	}

	if o.store != nil && len(bundle.Predictions) > 0 {
		if err := o.store.SavePredictions(ctx, bundle.Predictions); err != nil {
			o.log.Error("prediction history not persisted", logger.Error(err))
		}
	}
	if o.publisher != nil {
		event := models.BundleEvent{
			Date:        bundle.Date,
			Generation:  bundle.Generation,
			Predictions: len(bundle.Predictions),
			Proposals:   len(bundle.Proposals),
			Errored:     bundle.Errored,
			GeneratedAt: bundle.GeneratedAt,
		}
		if err := o.publisher.PublishBundle(ctx, event); err != nil {
			o.log.Error("bundle event not published", logger.Error(err))
		}
	}
	return nil
}

func (o *Orchestrator) buildFeatures(home, away *models.TeamStatsSnapshot, rest models.RestDays, expectsAdvanced bool) (*models.FeatureVector, error) {
	vec, err := features.Build(home, away, rest, expectsAdvanced)
	if err != nil {
		return nil, err
	}
	if schema := o.scorer.Schema(service.KindMoneyline); schema != nil {
		if err := features.Validate(vec, schema, string(service.KindMoneyline)); err != nil {
			return nil, err
		}
	}
	return vec, nil
}

// BundleForDay returns the cached bundle for the league day containing t,
// rescaled to the requested bankroll. A zero bankroll means the reference
// bankroll.
func (o *Orchestrator) BundleForDay(ctx context.Context, t time.Time, bankroll float64) (*models.DailyBundle, error) {
	dateKey := schedule.LeagueDayKey(t)

	raw, ok, err := o.cache.GetBytes(bundleKey(dateKey))
	if err != nil {
		return nil, fmt.Errorf("read bundle cache: %w", err)
	}
	if !ok {
		o.metrics.RecordCacheLookup("bundle_miss")
		return nil, fmt.Errorf("%w: no bundle for %s", models.ErrDataUnavailable, dateKey)
	}
	o.metrics.RecordCacheLookup("bundle_hit")

	var bundle models.DailyBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("decode cached bundle: %w", err)
	}

	if bankroll <= 0 {
		bankroll = bundle.ReferenceBankroll
	}
	return bundle.Rescale(bankroll), nil
}
