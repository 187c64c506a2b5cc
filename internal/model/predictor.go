package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"time-to-shop/internal/domain"
	"time-to-shop/internal/pipeline"
)

// Model is a loaded, validated artifact ready for inference.
type Model struct {
	artifact *Artifact
	manifest *domain.FeatureManifest
	logger   *zap.Logger
}

// Load reads and validates a model artifact against the manifest. All
// validation happens here, at pipeline start — never lazily at first
// inference. A missing file, undecodable document, or any disagreement
// between the artifact and the manifest fails with a ModelLoadError.
func Load(path string, manifest *domain.FeatureManifest, logger *zap.Logger) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pipeline.ModelLoadError{Path: path, Reason: "read artifact", Err: err}
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, &pipeline.ModelLoadError{Path: path, Reason: "decode artifact", Err: err}
	}

	if err := Validate(&artifact, manifest); err != nil {
		return nil, &pipeline.ModelLoadError{Path: path, Reason: err.Error()}
	}

	logger.Info("model loaded",
		zap.String("path", path),
		zap.String("version", artifact.Version),
		zap.Int("features", len(artifact.FeatureNames)),
		zap.Int("trees", len(artifact.Trees)))

	return &Model{artifact: &artifact, manifest: manifest, logger: logger}, nil
}

// Validate checks an artifact's internal consistency against the manifest:
// the trained feature list must equal the manifest (names, order, count),
// every node's feature index and child links must be in range, and leaf
// probabilities must be finite values in [0,1].
func Validate(artifact *Artifact, manifest *domain.FeatureManifest) error {
	if len(artifact.FeatureNames) != manifest.Len() {
		return fmt.Errorf("artifact trained on %d features, manifest declares %d",
			len(artifact.FeatureNames), manifest.Len())
	}
	if !manifest.Equal(artifact.FeatureNames) {
		return fmt.Errorf("artifact feature names do not match manifest order")
	}
	if len(artifact.Trees) == 0 {
		return fmt.Errorf("artifact contains no trees")
	}

	for ti, tree := range artifact.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, node := range tree.Nodes {
			if node.IsLeaf() {
				if math.IsNaN(node.Value) || math.IsInf(node.Value, 0) || node.Value < 0 || node.Value > 1 {
					return fmt.Errorf("tree %d node %d: leaf value outside [0,1]", ti, ni)
				}
				continue
			}
			if node.Feature >= manifest.Len() {
				return fmt.Errorf("tree %d node %d: feature index %d exceeds manifest length %d",
					ti, ni, node.Feature, manifest.Len())
			}
			if node.Left <= ni || node.Left >= len(tree.Nodes) ||
				node.Right <= ni || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: child link out of range", ti, ni)
			}
		}
	}
	return nil
}

// FeatureCount returns the number of features the model expects.
func (m *Model) FeatureCount() int {
	return m.manifest.Len()
}

// Version returns the artifact version string.
func (m *Model) Version() string {
	return m.artifact.Version
}

// Predict scores every row of the batch. Guarantees: output length equals
// the batch row count, row i of the output corresponds to row i of the
// batch, and every probability is in [0,1].
//
// Inference is all-or-nothing per call: a degenerate vector (wrong length,
// non-finite value) fails the whole batch with an InferenceError and no
// partial output.
func (m *Model) Predict(batch *domain.AlignedBatch) ([]float64, error) {
	probs := make([]float64, batch.Len())
	for i, vec := range batch.Vectors {
		p, err := m.predictOne(i, vec)
		if err != nil {
			return nil, err
		}
		probs[i] = p
	}
	return probs, nil
}

// predictOne averages the leaf probabilities across all trees.
func (m *Model) predictOne(row int, vec []float64) (float64, error) {
	if len(vec) != m.manifest.Len() {
		return 0, &pipeline.InferenceError{
			Row:    row,
			Reason: fmt.Sprintf("vector length %d, model expects %d", len(vec), m.manifest.Len()),
		}
	}
	for _, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &pipeline.InferenceError{Row: row, Reason: "non-finite feature value"}
		}
	}

	var sum float64
	for _, tree := range m.artifact.Trees {
		node := tree.Nodes[0]
		// Child links are validated strictly increasing, so traversal
		// terminates within len(Nodes) steps.
		for !node.IsLeaf() {
			if vec[node.Feature] < node.Threshold {
				node = tree.Nodes[node.Left]
			} else {
				node = tree.Nodes[node.Right]
			}
		}
		sum += node.Value
	}
	return sum / float64(len(m.artifact.Trees)), nil
}
