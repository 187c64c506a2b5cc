// Package model loads trained tree-ensemble artifacts and runs batch
// inference over aligned feature vectors.
package model

import "time"

// Artifact is the serialized form of a trained extremely-randomized-trees
// classifier: a versioned JSON document holding the feature list the model
// was trained on and the flattened decision trees.
type Artifact struct {
	Version      string    `json:"version"`
	TrainedAt    time.Time `json:"trained_at"`
	FeatureNames []string  `json:"feature_names"`
	Trees        []Tree    `json:"trees"`
}

// Tree is one decision tree, nodes flattened into an array. Node 0 is the
// root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a single tree node. Internal nodes route on
// vector[Feature] < Threshold (left) vs >= Threshold (right). Leaves have
// Feature == -1 and carry the positive-class probability in Value.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// IsLeaf reports whether the node is a leaf.
func (n Node) IsLeaf() bool {
	return n.Feature < 0
}
