// Package monitor implements the drift/quality alert evaluator: it compares
// an observation batch against a reference profile under configured
// thresholds and produces a severity-ordered alert list.
package monitor

// #region imports
import (
	"fmt"
	"time"
)

// #endregion

// #region severity

// Severity orders alert seriousness. The numeric order is load-bearing:
// INFO < WARNING < CRITICAL < RETRAINING_REQUIRED.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
	SeverityRetrainingRequired
)

var severityNames = map[Severity]string{
	SeverityInfo:               "INFO",
	SeverityWarning:            "WARNING",
	SeverityCritical:           "CRITICAL",
	SeverityRetrainingRequired: "RETRAINING_REQUIRED",
}

// String returns the canonical severity label.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// MarshalText renders the severity label for JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText parses a canonical severity label.
func (s *Severity) UnmarshalText(text []byte) error {
	for sev, name := range severityNames {
		if name == string(text) {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", string(text))
}

// #endregion severity

// #region category

// Category groups alerts by the kind of check that produced them.
type Category string

const (
	CategoryDataQuality      Category = "DATA_QUALITY"
	CategoryStatisticalDrift Category = "STATISTICAL_DRIFT"
	CategoryPerformance      Category = "PERFORMANCE"
	CategoryBiasDrift        Category = "BIAS_DRIFT"
)

// #endregion category

// #region alert

// Alert is a threshold breach detected during one evaluation run. Alerts are
// append-only audit records: ID, RunID, and DetectedAt are assigned when the
// alert is written to the log and never mutated afterwards.
type Alert struct {
	ID     string `json:"id,omitempty"`
	RunID  string `json:"run_id,omitempty"`
	Source string `json:"source,omitempty"`

	// Seq is the detection order within the run; it breaks severity ties.
	Seq int `json:"seq"`

	Severity  Severity `json:"severity"`
	Category  Category `json:"category"`
	Metric    string   `json:"metric"`
	Value     float64  `json:"value"`
	Threshold float64  `json:"threshold"`
	Message   string   `json:"message"`

	DetectedAt time.Time `json:"detected_at,omitempty"`
}

// #endregion alert

// #region diagnostic

// Diagnostic records a metric whose computation failed. Diagnostics never
// become alerts and never abort the remaining checks.
type Diagnostic struct {
	Metric string `json:"metric"`
	Note   string `json:"note"`
}

// #endregion diagnostic

// #region performance-metrics

// PerformanceMetrics carries the error metrics computed over the labeled
// portion of a batch.
type PerformanceMetrics struct {
	RMSE          float64 `json:"rmse"`
	MAE           float64 `json:"mae"`
	ZoneAgreement float64 `json:"zone_agreement"`
	Labeled       int     `json:"labeled"`
}

// #endregion performance-metrics

// #region result

// Result is the complete output of one evaluation run. Alerts are ordered by
// severity descending, ties broken by detection order.
type Result struct {
	RunID       string              `json:"run_id,omitempty"`
	Source      string              `json:"source,omitempty"`
	Samples     int                 `json:"samples"`
	Alerts      []Alert             `json:"alerts"`
	Diagnostics []Diagnostic        `json:"diagnostics,omitempty"`
	Performance *PerformanceMetrics `json:"performance,omitempty"`
}

// MaxSeverity returns the highest severity present, or SeverityInfo when the
// run produced no alerts.
func (r Result) MaxSeverity() Severity {
	max := SeverityInfo
	for _, a := range r.Alerts {
		if a.Severity > max {
			max = a.Severity
		}
	}
	return max
}

// #endregion result
