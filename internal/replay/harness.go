package replay

// #region imports
import (
	"fmt"

	"github.com/alexdbatista/driftwatch/internal/monitor"
)

// #endregion

// #region types

// RunResult captures the outcome of replaying one batch.
type RunResult struct {
	Batch    int
	Pass     bool
	Mismatch string
	Got      []monitor.Alert
	Want     []ExpectedAlert
}

// Summary aggregates a full fixture replay.
type Summary struct {
	Description string
	Total       int
	Passed      int
	Failed      int
	Results     []RunResult

	// Retraining verdict over all produced alerts, and whether it matched
	// the fixture's expectation (always true when none was recorded).
	Retraining   bool
	RetrainingOK bool
}

// #endregion types

// #region run

// Run replays every batch through a pure evaluator and diffs the produced
// alerts against the fixture's expectations.
func Run(f *Fixture, policy monitor.RetrainPolicy) (Summary, error) {
	eval, err := monitor.NewEvaluator(f.Thresholds, nil, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("fixture thresholds: %w", err)
	}

	expected := make(map[int][]ExpectedAlert, len(f.Expected))
	for _, er := range f.Expected {
		expected[er.Batch] = er.Alerts
	}

	s := Summary{Description: f.Description, Total: len(f.Batches)}
	var all []monitor.Alert

	for i, fb := range f.Batches {
		res, err := eval.Run(fb.ToBatch(), f.Profile)
		if err != nil {
			return Summary{}, fmt.Errorf("batch %d: %w", i, err)
		}
		all = append(all, res.Alerts...)

		rr := RunResult{Batch: i, Got: res.Alerts, Want: expected[i]}
		rr.Pass, rr.Mismatch = match(res.Alerts, expected[i])
		if rr.Pass {
			s.Passed++
		} else {
			s.Failed++
		}
		s.Results = append(s.Results, rr)
	}

	s.Retraining = monitor.ShouldRetrain(all, policy)
	s.RetrainingOK = f.ExpectedRetraining == nil || *f.ExpectedRetraining == s.Retraining
	return s, nil
}

// match compares the produced alerts against the expected severity/metric
// sequence, in order.
func match(got []monitor.Alert, want []ExpectedAlert) (bool, string) {
	if len(got) != len(want) {
		return false, fmt.Sprintf("expected %d alerts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Metric != want[i].Metric {
			return false, fmt.Sprintf("alert %d: expected metric %q, got %q", i, want[i].Metric, got[i].Metric)
		}
		if got[i].Severity != want[i].Severity {
			return false, fmt.Sprintf("alert %d (%s): expected %s, got %s",
				i, got[i].Metric, want[i].Severity, got[i].Severity)
		}
	}
	return true, ""
}

// #endregion run
