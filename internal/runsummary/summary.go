// Package runsummary renders pipeline run results for operators.
package runsummary

import (
	"fmt"
	"strings"

	"time-to-shop/internal/domain"
)

// Render renders a run result as a human-readable summary. Partial success
// is reported distinctly from total failure so operators can re-run only
// the missing write.
func Render(r *domain.RunResult) string {
	var sb strings.Builder

	sb.WriteString("=== Scoring Run Summary ===\n")
	sb.WriteString(fmt.Sprintf("Status:       %s\n", r.Status))
	sb.WriteString(fmt.Sprintf("Duration:     %s\n", r.FinishedAt.Sub(r.StartedAt).Round(1e6)))
	sb.WriteString(fmt.Sprintf("Rows in:      %d\n", r.RowsIn))
	sb.WriteString(fmt.Sprintf("Rows scored:  %d\n", r.RowsOut))

	if len(r.Sinks) > 0 {
		sb.WriteString("Sinks:\n")
		for _, s := range r.Sinks {
			if s.OK() {
				sb.WriteString(fmt.Sprintf("  - %s: ok (attempts: %d)\n", s.Sink, s.Attempts))
			} else {
				sb.WriteString(fmt.Sprintf("  - %s: FAILED (attempts: %d): %s\n", s.Sink, s.Attempts, s.Err))
			}
		}
	}

	if r.Status == domain.RunFailed {
		sb.WriteString(fmt.Sprintf("Failed stage: %s\n", r.FailedStage))
		sb.WriteString(fmt.Sprintf("Error:        %s\n", r.Err))
	}

	return sb.String()
}
