package monitor

// #region imports
import (
	"fmt"
	"math"
)

// #endregion

// #region thresholds

// Thresholds enumerates every recognized alerting threshold. There are no
// hidden knobs: evaluation severity is a pure function of these values and
// the computed drift metrics.
type Thresholds struct {
	// DistributionShift is the PSI value above which a feature counts as
	// drifted (WARNING); 1.5x this value escalates to CRITICAL.
	DistributionShift float64 `json:"distribution_shift" koanf:"distribution_shift"`

	// ErrorRateWarning / ErrorRateCritical bound the batch RMSE.
	ErrorRateWarning  float64 `json:"error_rate_warning" koanf:"error_rate_warning"`
	ErrorRateCritical float64 `json:"error_rate_critical" koanf:"error_rate_critical"`

	// MissingRate is the per-field null/absent fraction ceiling.
	MissingRate float64 `json:"missing_rate" koanf:"missing_rate"`

	// OutlierZScore marks a value as an outlier relative to the reference
	// mean/std; OutlierRate bounds the batch-wide outlier fraction.
	OutlierZScore float64 `json:"outlier_zscore" koanf:"outlier_zscore"`
	OutlierRate   float64 `json:"outlier_rate" koanf:"outlier_rate"`

	// SubgroupDisparity bounds max-minus-min subgroup RMSE (WARNING);
	// double it escalates to CRITICAL.
	SubgroupDisparity float64 `json:"subgroup_disparity" koanf:"subgroup_disparity"`

	// ZoneAgreementMin is the clinical zone A+B percentage floor; dropping
	// below it demands retraining.
	ZoneAgreementMin float64 `json:"zone_agreement_min" koanf:"zone_agreement_min"`
}

// driftCriticalMultiple escalates distribution shift from WARNING to
// CRITICAL at 1.5x the configured threshold.
const driftCriticalMultiple = 1.5

// DefaultThresholds returns the validated baseline configuration. Callers
// opt into these explicitly; nothing substitutes them silently.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DistributionShift: 0.10,
		ErrorRateWarning:  9.0,
		ErrorRateCritical: 12.0,
		MissingRate:       0.05,
		OutlierZScore:     4.0,
		OutlierRate:       0.02,
		SubgroupDisparity: 2.0,
		ZoneAgreementMin:  95.0,
	}
}

// #endregion thresholds

// #region validation

// Validate rejects non-finite or negative thresholds and inconsistent
// warning/critical pairs. It runs before any metric computation.
func (t Thresholds) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"distribution_shift", t.DistributionShift},
		{"error_rate_warning", t.ErrorRateWarning},
		{"error_rate_critical", t.ErrorRateCritical},
		{"missing_rate", t.MissingRate},
		{"outlier_zscore", t.OutlierZScore},
		{"outlier_rate", t.OutlierRate},
		{"subgroup_disparity", t.SubgroupDisparity},
		{"zone_agreement_min", t.ZoneAgreementMin},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ConfigurationError{Field: c.field, Reason: "must be a finite number"}
		}
		if c.value < 0 {
			return &ConfigurationError{Field: c.field, Reason: fmt.Sprintf("must be non-negative, got %v", c.value)}
		}
	}
	if t.OutlierZScore == 0 {
		return &ConfigurationError{Field: "outlier_zscore", Reason: "must be positive"}
	}
	if t.ErrorRateCritical < t.ErrorRateWarning {
		return &ConfigurationError{
			Field:  "error_rate_critical",
			Reason: fmt.Sprintf("%v is below error_rate_warning %v", t.ErrorRateCritical, t.ErrorRateWarning),
		}
	}
	if t.ZoneAgreementMin > 100 {
		return &ConfigurationError{Field: "zone_agreement_min", Reason: "is a percentage, must not exceed 100"}
	}
	return nil
}

// #endregion validation

// #region retrain-policy

// RetrainPolicy configures the retraining decision rule.
type RetrainPolicy struct {
	// CriticalCount is the number of CRITICAL alerts in the window at or
	// above which retraining is required.
	CriticalCount int `json:"critical_count" koanf:"critical_count"`
}

// DefaultRetrainPolicy requires retraining at three critical alerts.
func DefaultRetrainPolicy() RetrainPolicy {
	return RetrainPolicy{CriticalCount: 3}
}

// Validate rejects a non-positive critical count.
func (p RetrainPolicy) Validate() error {
	if p.CriticalCount <= 0 {
		return &ConfigurationError{Field: "critical_count", Reason: "must be positive"}
	}
	return nil
}

// #endregion retrain-policy
