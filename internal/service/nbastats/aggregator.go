package nbastats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/internal/domain/repository"
	"github.com/notiabet/courtedge/pkg/logger"
)

var tableSpecs = []TableSpec{
	{MeasureType: "Base", LastNGames: 0},
	{MeasureType: "Base", LastNGames: 10},
	{MeasureType: "Advanced", LastNGames: 0},
	{MeasureType: "Advanced", LastNGames: 10},
}

// tableFetcher is the slice of Client the aggregator needs; tests swap in a
// canned implementation.
type tableFetcher interface {
	FetchTable(ctx context.Context, spec TableSpec) ([]teamRow, error)
}

// Aggregator merges the four team stats tables into per-team snapshots and
// caches the merged set. A refresh that fails while a previous set exists
// serves the stale set; data older than the TTL beats no data at all.
type Aggregator struct {
	fetcher tableFetcher
	log     *logger.Logger
	metrics repository.Metrics
	ttl     time.Duration
	workers int

	mu  sync.Mutex
	set *models.SnapshotSet
}

func NewAggregator(fetcher tableFetcher, log *logger.Logger, metrics repository.Metrics, ttl time.Duration, workers int) *Aggregator {
	if workers <= 0 {
		workers = 4
	}
	return &Aggregator{
		fetcher: fetcher,
		log:     log,
		metrics: metrics,
		ttl:     ttl,
		workers: workers,
	}
}

// Snapshots returns the current merged snapshot set, refreshing it when the
// cached one has aged past the TTL. Concurrent callers share one refresh.
func (a *Aggregator) Snapshots(ctx context.Context) (*models.SnapshotSet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.set != nil && time.Since(a.set.FetchedAt) < a.ttl {
		a.metrics.RecordCacheLookup("hit")
		return a.set, nil
	}
	a.metrics.RecordCacheLookup("miss")

	set, err := a.refresh(ctx)
	if err != nil {
		a.metrics.RecordFetchError("nbastats")
		if a.set != nil {
			a.log.Warn("stats refresh failed, serving stale snapshot set",
				logger.Error(err),
				logger.Duration("age", time.Since(a.set.FetchedAt)))
			return a.set, nil
		}
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}

	a.set = set
	return a.set, nil
}

type tableResult struct {
	spec TableSpec
	rows []teamRow
	err  error
}

func (a *Aggregator) refresh(ctx context.Context) (*models.SnapshotSet, error) {
	sem := make(chan struct{}, a.workers)
	results := make(chan tableResult, len(tableSpecs))

	var wg sync.WaitGroup
	for _, spec := range tableSpecs {
		wg.Add(1)
		go func(spec TableSpec) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			rows, err := a.fetcher.FetchTable(ctx, spec)
			results <- tableResult{spec: spec, rows: rows, err: err}
		}(spec)
	}
	wg.Wait()
	close(results)

	byTable := make(map[string][]teamRow, len(tableSpecs))
	advErr := false
	for res := range results {
		if res.err != nil {
			// The base tables are load-bearing; the advanced pair only
			// widens the feature set and may be dropped.
			if res.spec.MeasureType == "Base" {
				return nil, res.err
			}
			a.log.Warn("advanced stats table unavailable",
				logger.String("table", res.spec.String()),
				logger.Error(res.err))
			advErr = true
			continue
		}
		byTable[res.spec.String()] = res.rows
	}

	return merge(byTable, !advErr, time.Now().UTC())
}

func merge(byTable map[string][]teamRow, wantAdvanced bool, fetchedAt time.Time) (*models.SnapshotSet, error) {
	season := byTable[TableSpec{MeasureType: "Base", LastNGames: 0}.String()]
	if len(season) == 0 {
		return nil, fmt.Errorf("season base table is empty")
	}

	byID := func(rows []teamRow) map[int64]teamRow {
		m := make(map[int64]teamRow, len(rows))
		for _, r := range rows {
			m[r.TeamID] = r
		}
		return m
	}
	lastTen := byID(byTable[TableSpec{MeasureType: "Base", LastNGames: 10}.String()])
	advSeason := byID(byTable[TableSpec{MeasureType: "Advanced", LastNGames: 0}.String()])
	advLastTen := byID(byTable[TableSpec{MeasureType: "Advanced", LastNGames: 10}.String()])

	set := &models.SnapshotSet{
		Teams:     make(map[string]*models.TeamStatsSnapshot, len(season)),
		FetchedAt: fetchedAt,
		Advanced:  wantAdvanced,
	}

	for _, row := range season {
		l10, ok := lastTen[row.TeamID]
		if !ok {
			return nil, fmt.Errorf("team %s missing from trailing-ten table", row.TeamName)
		}
		snap := &models.TeamStatsSnapshot{
			TeamID:   row.TeamID,
			TeamName: row.TeamName,
			Season:   row.Record,
			LastTen:  l10.Record,
		}
		if as, ok := advSeason[row.TeamID]; ok {
			rec := as.Record
			snap.AdvSeason = &rec
		}
		if al, ok := advLastTen[row.TeamID]; ok {
			rec := al.Record
			snap.AdvLastTen = &rec
		}
		// A single team missing either advanced group poisons the whole
		// set: the feature layout must be uniform across all games of a
		// run, so advanced mode is all-or-nothing.
		if !snap.HasAdvanced() {
			set.Advanced = false
		}
		set.Teams[row.TeamName] = snap
	}

	return set, nil
}
