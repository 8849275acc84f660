// Package profile defines the reference profile: baseline statistics
// captured when a model version was validated. Profiles are immutable once
// built; every later drift check compares against them read-only.
package profile

// #region imports
import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/alexdbatista/driftwatch/internal/batch"
	"github.com/alexdbatista/driftwatch/internal/stats"
)

// #endregion

// #region constants

// psiBins is the bin count for per-feature reference histograms.
const psiBins = 10

// #endregion constants

// #region feature-baseline

// FeatureBaseline holds the reference distribution summary for one feature.
type FeatureBaseline struct {
	Mean      float64   `json:"mean"`
	Std       float64   `json:"std"`
	BinEdges  []float64 `json:"bin_edges"`
	BinShares []float64 `json:"bin_shares"`

	// Optional declared physical limits; values outside them are flagged
	// as range violations regardless of distributional checks.
	ValidMin *float64 `json:"valid_min,omitempty"`
	ValidMax *float64 `json:"valid_max,omitempty"`
}

// #endregion feature-baseline

// #region profile

// Profile is the baseline captured at validation time for one model version.
type Profile struct {
	ModelVersion string                     `json:"model_version"`
	CreatedAt    time.Time                  `json:"created_at"`
	Features     map[string]FeatureBaseline `json:"features"`

	BaselineRMSE          float64 `json:"baseline_rmse"`
	BaselineMAE           float64 `json:"baseline_mae"`
	BaselineZoneAgreement float64 `json:"baseline_zone_agreement"`

	// SubgroupRMSE maps group column -> group value -> baseline RMSE.
	SubgroupRMSE map[string]map[string]float64 `json:"subgroup_rmse,omitempty"`
}

// FeatureNames returns the profiled feature names in sorted order.
func (p Profile) FeatureNames() []string {
	names := make([]string, 0, len(p.Features))
	for name := range p.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the profile can support an evaluation.
func (p Profile) Validate() error {
	if len(p.Features) == 0 {
		return errors.New("profile has no features")
	}
	for name, fb := range p.Features {
		if len(fb.BinEdges) != len(fb.BinShares)+1 || len(fb.BinShares) == 0 {
			return fmt.Errorf("feature %q: %d edges for %d bin shares", name, len(fb.BinEdges), len(fb.BinShares))
		}
	}
	return nil
}

// #endregion profile

// #region build

// Build computes a profile from validated baseline records. Records must
// cover every feature; labeled records additionally feed the baseline
// error metrics.
func Build(records []batch.Record, modelVersion string) (Profile, error) {
	if len(records) == 0 {
		return Profile{}, errors.New("no baseline records")
	}

	byFeature := make(map[string][]float64)
	for _, rec := range records {
		for name := range rec.Features {
			if v, ok := rec.Feature(name); ok {
				byFeature[name] = append(byFeature[name], v)
			}
		}
	}
	if len(byFeature) == 0 {
		return Profile{}, errors.New("baseline records carry no feature values")
	}

	p := Profile{
		ModelVersion: modelVersion,
		CreatedAt:    time.Now().UTC(),
		Features:     make(map[string]FeatureBaseline, len(byFeature)),
	}

	for name, values := range byFeature {
		mean, err := stats.Mean(values)
		if err != nil {
			return Profile{}, fmt.Errorf("feature %q mean: %w", name, err)
		}
		std, err := stats.StdDev(values)
		if err != nil {
			return Profile{}, fmt.Errorf("feature %q std: %w", name, err)
		}
		edges, err := stats.BinEdges(values, psiBins)
		if err != nil {
			return Profile{}, fmt.Errorf("feature %q bins: %w", name, err)
		}
		shares, err := stats.BinShares(values, edges)
		if err != nil {
			return Profile{}, fmt.Errorf("feature %q shares: %w", name, err)
		}
		p.Features[name] = FeatureBaseline{
			Mean:      mean,
			Std:       std,
			BinEdges:  edges,
			BinShares: shares,
		}
	}

	if err := buildBaselineMetrics(&p, records); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// buildBaselineMetrics fills error metrics from labeled baseline records.
func buildBaselineMetrics(p *Profile, records []batch.Record) error {
	var predicted, truth []float64
	groups := make(map[string]map[string][][2]float64)

	for _, rec := range records {
		if !rec.Labeled() {
			continue
		}
		predicted = append(predicted, *rec.Predicted)
		truth = append(truth, *rec.Truth)
		for col, val := range rec.Groups {
			if groups[col] == nil {
				groups[col] = make(map[string][][2]float64)
			}
			groups[col][val] = append(groups[col][val], [2]float64{*rec.Predicted, *rec.Truth})
		}
	}
	if len(predicted) == 0 {
		return nil // distributional-only baseline
	}

	rmse, err := stats.RMSE(predicted, truth)
	if err != nil {
		return fmt.Errorf("baseline rmse: %w", err)
	}
	mae, err := stats.MAE(predicted, truth)
	if err != nil {
		return fmt.Errorf("baseline mae: %w", err)
	}
	agreement, err := stats.ZoneAgreement(predicted, truth)
	if err != nil {
		return fmt.Errorf("baseline zone agreement: %w", err)
	}
	p.BaselineRMSE = rmse
	p.BaselineMAE = mae
	p.BaselineZoneAgreement = agreement

	for col, byVal := range groups {
		for val, pairs := range byVal {
			preds := make([]float64, len(pairs))
			truths := make([]float64, len(pairs))
			for i, pair := range pairs {
				preds[i], truths[i] = pair[0], pair[1]
			}
			r, err := stats.RMSE(preds, truths)
			if err != nil {
				continue
			}
			if p.SubgroupRMSE == nil {
				p.SubgroupRMSE = make(map[string]map[string]float64)
			}
			if p.SubgroupRMSE[col] == nil {
				p.SubgroupRMSE[col] = make(map[string]float64)
			}
			p.SubgroupRMSE[col][val] = r
		}
	}
	return nil
}

// #endregion build

// #region persistence

// Save writes the profile as indented JSON.
func Save(p Profile, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile %s: %w", path, err)
	}
	return nil
}

// Load reads and validates a profile from a JSON file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// #endregion persistence
