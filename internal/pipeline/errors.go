// Package pipeline holds the error taxonomy shared by all pipeline stages
// and the result assembler that zips identifiers, probabilities and deciles
// into scored records.
package pipeline

import "fmt"

// ConfigurationError reports a missing or invalid setting. Fatal at
// startup; the pipeline never starts with one of these.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Option, e.Reason)
}

// SchemaError reports a feature alignment failure. The whole batch is
// rejected; nothing is forwarded downstream.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("schema: column %s: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("schema: required column %s is missing", e.Column)
}

// ModelLoadError reports a missing, corrupt, or manifest-mismatched model
// artifact. Always fatal, never retried.
type ModelLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ModelLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("model load %s: %s", e.Path, e.Reason)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// InferenceError reports a predictor failure during a batch. The whole
// predict call fails; the orchestrator may retry it with bounded backoff.
type InferenceError struct {
	Row    int // offending row index, -1 if not row-specific
	Reason string
}

func (e *InferenceError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("inference: row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("inference: %s", e.Reason)
}

// InvariantError reports an internal length or ordering mismatch. It
// indicates a defect, is always fatal, and is never retried.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Reason)
}

// SinkError reports that a specific output destination failed to persist
// results. Transient sink errors are retried; others fail the sink fast.
type SinkError struct {
	Sink      string
	Transient bool
	Err       error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
