// Package orchestrator sequences the scoring pipeline:
// Fetching → Aligning → Predicting → Ranking → Assembling → Writing → Done.
// It owns the retry and partial-failure policy and is the unit with an
// externally observable run outcome.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"time-to-shop/internal/align"
	"time-to-shop/internal/domain"
	"time-to-shop/internal/model"
	"time-to-shop/internal/observability"
	"time-to-shop/internal/pipeline"
	"time-to-shop/internal/rank"
	"time-to-shop/internal/storage"
)

// Orchestrator runs the scoring pipeline end to end.
type Orchestrator struct {
	source  storage.FeatureSource
	sinks   []storage.ScoreSink
	aligner *align.Aligner
	model   *model.Model
	query   string

	retry   RetryConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Options for creating an Orchestrator.
type Options struct {
	// Required collaborators
	Source  storage.FeatureSource
	Sinks   []storage.ScoreSink
	Aligner *align.Aligner
	Model   *model.Model

	// Query overrides the source's default feature query when non-empty.
	// It is passed through unvalidated.
	Query string

	// Options
	Retry   RetryConfig
	Logger  *zap.Logger
	Metrics *observability.Metrics // nil disables metrics
}

// New creates a new Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Source == nil {
		return nil, &pipeline.ConfigurationError{Option: "source", Reason: "feature source is required"}
	}
	if len(opts.Sinks) == 0 {
		return nil, &pipeline.ConfigurationError{Option: "sinks", Reason: "at least one output sink is required"}
	}
	if opts.Aligner == nil {
		return nil, &pipeline.ConfigurationError{Option: "aligner", Reason: "aligner is required"}
	}
	if opts.Model == nil {
		return nil, &pipeline.ConfigurationError{Option: "model", Reason: "loaded model is required"}
	}

	retry := opts.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		source:  opts.Source,
		sinks:   opts.Sinks,
		aligner: opts.Aligner,
		model:   opts.Model,
		query:   opts.Query,
		retry:   retry,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run executes one scoring run. The returned RunResult is always non-nil
// and finalized; err is non-nil exactly when the result status is
// RunFailed.
//
// Re-running against the same feature snapshot produces identical scored
// records: no step depends on randomness or batch-relative ordering.
func (o *Orchestrator) Run(ctx context.Context) (*domain.RunResult, error) {
	result := &domain.RunResult{StartedAt: time.Now()}

	// Fetching
	table, err := o.fetch(ctx)
	if err != nil {
		return o.fail(result, domain.StageFetching, err)
	}
	result.RowsIn = len(table.Rows)
	o.countRowsFetched(result.RowsIn)
	o.logger.Info("fetched feature table",
		zap.Int("rows", result.RowsIn), zap.Int("columns", len(table.Columns)))

	// Aligning
	batch, err := observeStageDuration(o, domain.StageAligning, func() (*domain.AlignedBatch, error) {
		return o.aligner.Align(table)
	})
	if err != nil {
		return o.fail(result, domain.StageAligning, err)
	}
	o.logger.Info("aligned batch", zap.Int("rows", batch.Len()),
		zap.Int("features", batch.Manifest.Len()))

	// An empty snapshot completes trivially: nothing to score, nothing to
	// write.
	if batch.Len() == 0 {
		o.logger.Info("empty feature snapshot, completing with zero scored records")
		return o.finish(result, nil), nil
	}

	// Predicting (retried on transient and inference failures)
	probs, err := o.predict(ctx, batch)
	if err != nil {
		return o.fail(result, domain.StagePredicting, err)
	}

	// Ranking
	deciles, err := observeStageDuration(o, domain.StageRanking, func() ([]int, error) {
		return rank.Rank(probs)
	})
	if err != nil {
		return o.fail(result, domain.StageRanking, err)
	}

	// Assembling
	records, err := observeStageDuration(o, domain.StageAssembling, func() ([]*domain.ScoredRecord, error) {
		return pipeline.Assemble(batch.Keys, probs, deciles)
	})
	if err != nil {
		return o.fail(result, domain.StageAssembling, err)
	}
	result.RowsOut = len(records)
	o.countRowsScored(result.RowsOut)

	// Writing: the only stage permitted to partially succeed. Each sink's
	// outcome is tracked independently.
	outcomes := o.write(ctx, records)
	return o.finish(result, outcomes), o.writeErr(result)
}

// fetch pulls the feature table with bounded retries.
func (o *Orchestrator) fetch(ctx context.Context) (*domain.FeatureTable, error) {
	start := time.Now()
	defer o.observeStage(domain.StageFetching, start)

	var table *domain.FeatureTable
	attempts, err := o.retry.withRetry(ctx, func() error {
		var ferr error
		table, ferr = o.source.Fetch(ctx, o.query)
		return ferr
	})
	o.countRetries(domain.StageFetching, attempts-1)
	if err != nil {
		return nil, fmt.Errorf("fetch features: %w", err)
	}
	return table, nil
}

// predict scores the aligned batch with bounded retries.
func (o *Orchestrator) predict(ctx context.Context, batch *domain.AlignedBatch) ([]float64, error) {
	start := time.Now()
	defer o.observeStage(domain.StagePredicting, start)

	var probs []float64
	attempts, err := o.retry.withRetry(ctx, func() error {
		var perr error
		probs, perr = o.model.Predict(batch)
		return perr
	})
	o.countRetries(domain.StagePredicting, attempts-1)
	if err != nil {
		return nil, err
	}
	return probs, nil
}

// write persists records to every configured sink, retrying transient
// failures per sink. A failed sink never aborts the others.
func (o *Orchestrator) write(ctx context.Context, records []*domain.ScoredRecord) []domain.SinkOutcome {
	start := time.Now()
	defer o.observeStage(domain.StageWriting, start)

	outcomes := make([]domain.SinkOutcome, 0, len(o.sinks))
	for _, sink := range o.sinks {
		attempts, err := o.retry.withRetry(ctx, func() error {
			if werr := sink.Write(ctx, records); werr != nil {
				return &pipeline.SinkError{
					Sink:      sink.Name(),
					Transient: storage.IsTransient(werr),
					Err:       werr,
				}
			}
			return nil
		})

		outcome := domain.SinkOutcome{Sink: sink.Name(), Attempts: attempts}
		if err != nil {
			outcome.Err = err.Error()
			o.logger.Error("sink write failed",
				zap.String("sink", sink.Name()), zap.Int("attempts", attempts), zap.Error(err))
			o.countSinkWrite(sink.Name(), "error")
		} else {
			o.logger.Info("sink write succeeded",
				zap.String("sink", sink.Name()), zap.Int("rows", len(records)))
			o.countSinkWrite(sink.Name(), "ok")
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// fail finalizes the result as Failed at the given stage.
func (o *Orchestrator) fail(result *domain.RunResult, stage domain.Stage, err error) (*domain.RunResult, error) {
	result.FinishedAt = time.Now()
	result.Status = domain.RunFailed
	result.FailedStage = stage
	result.Err = err.Error()

	o.logger.Error("pipeline failed",
		zap.String("stage", string(stage)), zap.Error(err))
	o.countRun(result)
	return result, err
}

// finish finalizes the result from the sink outcomes: Done when every sink
// succeeded, Partial when some did, Failed when none did.
func (o *Orchestrator) finish(result *domain.RunResult, outcomes []domain.SinkOutcome) *domain.RunResult {
	result.FinishedAt = time.Now()
	result.Sinks = outcomes

	switch {
	case len(outcomes) == 0 || result.SinksSucceeded() == len(outcomes):
		result.Status = domain.RunDone
	case result.SinksSucceeded() > 0:
		result.Status = domain.RunPartial
	default:
		result.Status = domain.RunFailed
		result.FailedStage = domain.StageWriting
		result.Err = outcomes[0].Err
	}

	o.logger.Info("pipeline finished",
		zap.String("status", string(result.Status)),
		zap.Int("rows_in", result.RowsIn),
		zap.Int("rows_out", result.RowsOut),
		zap.Int("sinks_ok", result.SinksSucceeded()),
		zap.Int("sinks_total", len(outcomes)))
	o.countRun(result)
	return result
}

// writeErr converts an all-sinks-failed outcome into the run error.
func (o *Orchestrator) writeErr(result *domain.RunResult) error {
	if result.Status != domain.RunFailed {
		return nil
	}
	return fmt.Errorf("writing: every configured sink failed: %s", result.Err)
}

// observeStageDuration runs fn and records its duration under the stage
// label.
func observeStageDuration[T any](o *Orchestrator, stage domain.Stage, fn func() (T, error)) (T, error) {
	start := time.Now()
	defer o.observeStage(stage, start)
	return fn()
}

// Metrics helpers; all are nil-safe so tests can run without a registry.

func (o *Orchestrator) observeStage(stage domain.Stage, start time.Time) {
	if o.metrics == nil {
		return
	}
	o.metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

func (o *Orchestrator) countRetries(stage domain.Stage, retries int) {
	if o.metrics == nil || retries <= 0 {
		return
	}
	o.metrics.StageRetries.WithLabelValues(string(stage)).Add(float64(retries))
}

func (o *Orchestrator) countRowsFetched(n int) {
	if o.metrics == nil {
		return
	}
	o.metrics.RowsFetched.Add(float64(n))
}

func (o *Orchestrator) countRowsScored(n int) {
	if o.metrics == nil {
		return
	}
	o.metrics.RowsScored.Add(float64(n))
}

func (o *Orchestrator) countSinkWrite(sink, status string) {
	if o.metrics == nil {
		return
	}
	o.metrics.SinkWrites.WithLabelValues(sink, status).Inc()
}

func (o *Orchestrator) countRun(result *domain.RunResult) {
	if o.metrics == nil {
		return
	}
	o.metrics.RunsTotal.WithLabelValues(string(result.Status)).Inc()
	o.metrics.RunDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	if result.Status != domain.RunFailed {
		o.metrics.LastSuccessfulRun.SetToCurrentTime()
	}
}
