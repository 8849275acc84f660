// Package batch defines observation batches: the tabular records a deployed
// model produced predictions for, as delivered by the ingestion pipeline.
package batch

import (
	"math"
	"time"
)

// #region record

// Record is one observation: numeric feature values, the model's prediction,
// and optionally the ground truth and demographic group labels.
type Record struct {
	Features  map[string]float64 `json:"features"`
	Predicted *float64           `json:"predicted,omitempty"`
	Truth     *float64           `json:"truth,omitempty"`
	Groups    map[string]string  `json:"groups,omitempty"`
}

// Feature returns the value of a named feature and whether it is present.
// NaN values count as missing.
func (r Record) Feature(name string) (float64, bool) {
	v, ok := r.Features[name]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Labeled reports whether the record carries both a prediction and a truth.
func (r Record) Labeled() bool {
	return r.Predicted != nil && r.Truth != nil
}

// #endregion record

// #region batch

// Batch is a newly arrived set of records awaiting drift evaluation.
type Batch struct {
	Source      string    `json:"source"`
	CollectedAt time.Time `json:"collected_at"`
	Records     []Record  `json:"records"`
}

// GroupKeys returns the set of group label columns present in the batch.
func (b Batch) GroupKeys() map[string]bool {
	keys := make(map[string]bool)
	for _, rec := range b.Records {
		for k := range rec.Groups {
			keys[k] = true
		}
	}
	return keys
}

// #endregion batch
