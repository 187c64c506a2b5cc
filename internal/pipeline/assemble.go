package pipeline

import (
	"fmt"

	"time-to-shop/internal/domain"
)

// Assemble zips identifiers, probabilities and deciles into scored records
// by row index. It relies on the predictor's order-preservation guarantee:
// probability i and decile i belong to key i.
//
// Length disagreement between the three sequences is an internal
// consistency defect: Assemble returns an InvariantError and emits nothing,
// never a truncated or padded sequence.
func Assemble(keys []domain.RecordKey, probabilities []float64, deciles []int) ([]*domain.ScoredRecord, error) {
	if len(probabilities) != len(keys) {
		return nil, &InvariantError{
			Reason: fmt.Sprintf("probability count %d does not match identifier count %d",
				len(probabilities), len(keys)),
		}
	}
	if len(deciles) != len(keys) {
		return nil, &InvariantError{
			Reason: fmt.Sprintf("decile count %d does not match identifier count %d",
				len(deciles), len(keys)),
		}
	}

	records := make([]*domain.ScoredRecord, len(keys))
	for i, k := range keys {
		records[i] = &domain.ScoredRecord{
			CustomerID:       k.CustomerID,
			PreviousPurchase: k.PreviousPurchase,
			Probability:      probabilities[i],
			Decile:           deciles[i],
		}
	}
	return records, nil
}
