package model

import (
	"time"

	"time-to-shop/internal/domain"
)

// SampleArtifact returns a small deterministic ensemble over the production
// manifest. It exists for fixture runs and for bootstrapping a valid
// artifact file (modelcheck -write-sample); it is not the production model.
func SampleArtifact() *Artifact {
	return &Artifact{
		Version:      "sample-1",
		TrainedAt:    time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC),
		FeatureNames: DefaultManifestNames(),
		Trees: []Tree{
			// Split on SALES_6M
			{Nodes: []Node{
				{Feature: 0, Threshold: 100, Left: 1, Right: 2},
				{Feature: -1, Value: 0.04},
				{Feature: 0, Threshold: 500, Left: 3, Right: 4},
				{Feature: -1, Value: 0.52},
				{Feature: -1, Value: 0.90},
			}},
			// Split on FREQUENCY_6M
			{Nodes: []Node{
				{Feature: 1, Threshold: 2, Left: 1, Right: 2},
				{Feature: -1, Value: 0.02},
				{Feature: 1, Threshold: 6, Left: 3, Right: 4},
				{Feature: -1, Value: 0.58},
				{Feature: -1, Value: 0.94},
			}},
		},
	}
}

// DefaultManifestNames returns the production feature list in training
// order.
func DefaultManifestNames() []string {
	return domain.DefaultFeatureManifest().Names()
}
