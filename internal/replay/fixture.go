// Package replay runs recorded evaluation fixtures: a reference profile,
// thresholds, and observation batches bundled with the alerts they are
// expected to raise. Replaying a fixture exercises the evaluator's
// determinism end to end without touching an alert log.
package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexdbatista/driftwatch/internal/batch"
	"github.com/alexdbatista/driftwatch/internal/monitor"
	"github.com/alexdbatista/driftwatch/internal/profile"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string             `json:"description"`
	Profile     profile.Profile    `json:"profile"`
	Thresholds  monitor.Thresholds `json:"thresholds"`
	Batches     []FixtureBatch     `json:"batches"`
	Expected    []ExpectedRun      `json:"expected"`

	// ExpectedRetraining, when present, is checked against the verdict over
	// all alerts produced by all batches.
	ExpectedRetraining *bool `json:"expected_retraining,omitempty"`
}

// FixtureBatch is one recorded observation batch.
type FixtureBatch struct {
	Source  string         `json:"source"`
	Records []batch.Record `json:"records"`
}

// ExpectedRun lists the alerts one batch must raise, in output order.
type ExpectedRun struct {
	Batch  int             `json:"batch"`
	Alerts []ExpectedAlert `json:"alerts"`
}

// ExpectedAlert matches on the severity/metric pair.
type ExpectedAlert struct {
	Severity monitor.Severity `json:"severity"`
	Metric   string           `json:"metric"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToBatch converts a FixtureBatch to a domain Batch.
func (fb *FixtureBatch) ToBatch() batch.Batch {
	return batch.Batch{
		Source:  fb.Source,
		Records: fb.Records,
	}
}

// #endregion fixture-loader
