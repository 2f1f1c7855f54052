package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain/repository.Metrics using Prometheus.
type Recorder struct {
	pipelineRuns  *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	gamesSkipped  *prometheus.CounterVec
	predictions   prometheus.Counter
	proposals     prometheus.Counter
	proposedStake prometheus.Gauge
	stageLatency  *prometheus.HistogramVec
	cacheHits     *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		pipelineRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtedge_pipeline_runs_total",
				Help: "Total daily pipeline runs by outcome",
			},
			[]string{"trigger", "result"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtedge_fetch_errors_total",
				Help: "Total external provider fetch errors",
			},
			[]string{"provider"},
		),
		gamesSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtedge_games_skipped_total",
				Help: "Games skipped during evaluation by reason",
			},
			[]string{"reason"},
		),
		predictions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "courtedge_predictions_total",
				Help: "Total prediction records produced",
			},
		),
		proposals: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "courtedge_bet_proposals_total",
				Help: "Total bet proposals produced",
			},
		),
		proposedStake: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "courtedge_proposed_stake_reference",
				Help: "Total proposed stake of the latest bundle at the reference bankroll",
			},
		),
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "courtedge_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtedge_bundle_cache_total",
				Help: "Daily bundle cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordRun records a pipeline run outcome.
func (r *Recorder) RecordRun(trigger, result string) {
	r.pipelineRuns.WithLabelValues(trigger, result).Inc()
}

// RecordFetchError records an external provider failure.
func (r *Recorder) RecordFetchError(provider string) {
	r.fetchErrors.WithLabelValues(provider).Inc()
}

// RecordSkippedGame records a skipped game by reason.
func (r *Recorder) RecordSkippedGame(reason string) {
	r.gamesSkipped.WithLabelValues(reason).Inc()
}

// RecordPredictions adds to the produced prediction count.
func (r *Recorder) RecordPredictions(n int) {
	r.predictions.Add(float64(n))
}

// RecordProposals adds to the produced proposal count.
func (r *Recorder) RecordProposals(n int) {
	r.proposals.Add(float64(n))
}

// RecordProposedStake sets the latest bundle's total reference stake.
func (r *Recorder) RecordProposedStake(total float64) {
	r.proposedStake.Set(total)
}

// RecordStageLatency records a pipeline stage duration in seconds.
func (r *Recorder) RecordStageLatency(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}

// RecordCacheLookup records a bundle cache lookup result (hit/miss/stale).
func (r *Recorder) RecordCacheLookup(result string) {
	r.cacheHits.WithLabelValues(result).Inc()
}
