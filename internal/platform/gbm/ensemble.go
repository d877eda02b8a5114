package gbm

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Regressor maps a fixed-length feature vector to a scalar prediction.
// The inference backend lives behind this interface so it can be swapped
// without touching the prediction service.
type Regressor interface {
	Predict(features []float64) (float64, error)
	NumFeatures() int
}

// Node is a single node in a regression tree. Leaf nodes carry Value;
// split nodes carry the feature index, threshold and child offsets.
// DefaultLeft routes missing (NaN) feature values.
type Node struct {
	Feature     int     `json:"feature"`
	Threshold   float64 `json:"threshold"`
	Left        int     `json:"left"`
	Right       int     `json:"right"`
	Leaf        bool    `json:"leaf"`
	Value       float64 `json:"value"`
	DefaultLeft bool    `json:"default_left"`
}

// Tree is a regression tree stored as a flat node array rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Ensemble is an additive boosted-tree model: prediction is the base score
// plus the sum of every tree's leaf value for the input.
type Ensemble struct {
	BaseScore   float64 `json:"base_score"`
	FeatureDim  int     `json:"num_features"`
	Trees       []Tree  `json:"trees"`
}

// Load reads a serialized ensemble from disk and validates its structure.
func Load(path string) (*Ensemble, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var e Ensemble
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if err := e.validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &e, nil
}

func (e *Ensemble) validate() error {
	if e.FeatureDim <= 0 {
		return fmt.Errorf("num_features must be positive, got %d", e.FeatureDim)
	}
	if len(e.Trees) == 0 {
		return fmt.Errorf("ensemble has no trees")
	}
	for ti, t := range e.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= e.FeatureDim {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, n.Feature)
			}
			if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
			if n.Left <= ni || n.Right <= ni {
				return fmt.Errorf("tree %d node %d: children must come after their parent", ti, ni)
			}
		}
	}
	return nil
}

// NumFeatures returns the feature dimension the ensemble was trained on.
func (e *Ensemble) NumFeatures() int { return e.FeatureDim }

// Predict evaluates the ensemble on a single feature vector. The vector
// length must match the trained dimension exactly; a mismatch means the
// caller's column alignment is broken and inference must not proceed.
func (e *Ensemble) Predict(features []float64) (float64, error) {
	if len(features) != e.FeatureDim {
		return 0, fmt.Errorf("feature vector length %d does not match model dimension %d", len(features), e.FeatureDim)
	}
	sum := e.BaseScore
	for i := range e.Trees {
		sum += e.Trees[i].eval(features)
	}
	return sum, nil
}

func (t *Tree) eval(features []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		v := features[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.DefaultLeft {
				i = n.Left
			} else {
				i = n.Right
			}
		case v < n.Threshold:
			i = n.Left
		default:
			i = n.Right
		}
	}
}
