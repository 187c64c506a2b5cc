package domain

import "time"

// ScoredRecord is the output of prediction + ranking for one customer.
// Corresponds to the purchase_scores table. Immutable after assembly.
type ScoredRecord struct {
	CustomerID       int64
	PreviousPurchase time.Time
	Probability      float64 // P(repeat purchase within 90 days), in [0,1]
	Decile           int     // 1 (highest likelihood) .. 10 (lowest)
}

// RunStatus is the terminal status of one pipeline run.
type RunStatus string

const (
	// RunDone: every configured sink persisted the results.
	RunDone RunStatus = "DONE"
	// RunPartial: at least one sink succeeded and at least one failed.
	RunPartial RunStatus = "PARTIAL"
	// RunFailed: a stage failed terminally, or every sink failed.
	RunFailed RunStatus = "FAILED"
)

// Stage identifies a step of the pipeline state machine.
type Stage string

const (
	StageFetching   Stage = "Fetching"
	StageAligning   Stage = "Aligning"
	StagePredicting Stage = "Predicting"
	StageRanking    Stage = "Ranking"
	StageAssembling Stage = "Assembling"
	StageWriting    Stage = "Writing"
	StageDone       Stage = "Done"
	StageFailed     Stage = "Failed"
)

// SinkOutcome records the result of writing to one output sink.
type SinkOutcome struct {
	Sink     string
	Attempts int
	Err      string // empty on success
}

// OK reports whether the sink persisted the results.
func (s SinkOutcome) OK() bool {
	return s.Err == ""
}

// RunResult summarizes one pipeline execution. Created at run start,
// finalized at run end; an audit/log concern, never persisted as domain
// state.
type RunResult struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	RowsIn      int
	RowsOut     int
	Status      RunStatus
	FailedStage Stage  // set when Status is RunFailed
	Err         string // first error of the failed stage
	Sinks       []SinkOutcome
}

// SinksSucceeded returns the number of sinks that persisted results.
func (r *RunResult) SinksSucceeded() int {
	n := 0
	for _, s := range r.Sinks {
		if s.OK() {
			n++
		}
	}
	return n
}
