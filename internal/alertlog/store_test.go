package alertlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alexdbatista/driftwatch/internal/monitor"
)

// #region helpers

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "alerts.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mkAlert(id, runID string, seq int, sev monitor.Severity, metric string, at time.Time) monitor.Alert {
	return monitor.Alert{
		ID:         id,
		RunID:      runID,
		Seq:        seq,
		Severity:   sev,
		Category:   monitor.CategoryPerformance,
		Metric:     metric,
		Value:      13.2,
		Threshold:  12.0,
		Message:    "rmse over threshold",
		Source:     "site-7",
		DetectedAt: at,
	}
}

// #endregion helpers

// #region tests

func TestAppendAndWindow(t *testing.T) {
	store := openTestStore(t)
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	run1 := []monitor.Alert{
		mkAlert("a1", "run-1", 0, monitor.SeverityCritical, "rmse", t1),
		mkAlert("a2", "run-1", 1, monitor.SeverityWarning, "missing_rate_glucose", t1),
	}
	run2 := []monitor.Alert{
		mkAlert("b1", "run-2", 0, monitor.SeverityRetrainingRequired, "zone_agreement", t2),
	}
	if err := store.Append(run1); err != nil {
		t.Fatalf("append run1: %v", err)
	}
	if err := store.Append(run2); err != nil {
		t.Fatalf("append run2: %v", err)
	}

	alerts, err := store.Window(t1, t2)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	for i, wantID := range []string{"a1", "a2", "b1"} {
		if alerts[i].ID != wantID {
			t.Fatalf("position %d: expected %s, got %s", i, wantID, alerts[i].ID)
		}
	}

	// Roundtrip of a full row.
	got := alerts[0]
	if got.RunID != "run-1" || got.Severity != monitor.SeverityCritical ||
		got.Category != monitor.CategoryPerformance || got.Metric != "rmse" ||
		got.Value != 13.2 || got.Threshold != 12.0 || got.Source != "site-7" {
		t.Fatalf("row did not survive the roundtrip: %+v", got)
	}
	if !got.DetectedAt.Equal(t1) {
		t.Fatalf("expected detected_at %v, got %v", t1, got.DetectedAt)
	}
}

func TestWindowBoundsAreInclusive(t *testing.T) {
	store := openTestStore(t)
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 5, 10, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 8, 9, 10, 0, 0, 0, time.UTC)

	err := store.Append([]monitor.Alert{
		mkAlert("a1", "run-1", 0, monitor.SeverityWarning, "rmse", t1),
		mkAlert("a2", "run-1", 1, monitor.SeverityWarning, "rmse", t2),
		mkAlert("a3", "run-1", 2, monitor.SeverityWarning, "rmse", t3),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	alerts, err := store.Window(t1, t2)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected both boundary alerts, got %d", len(alerts))
	}
	if alerts[0].ID != "a1" || alerts[1].ID != "a2" {
		t.Fatalf("unexpected window contents: %+v", alerts)
	}
}

func TestRecentLimitsAndOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		a := mkAlert(string(rune('a'+i)), "run-1", i, monitor.SeverityInfo, "rmse", base.Add(time.Duration(i)*time.Hour))
		if err := store.Append([]monitor.Alert{a}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	alerts, err := store.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].ID != "e" || alerts[1].ID != "d" {
		t.Fatalf("expected newest first, got %+v", alerts)
	}
}

func TestCountBySeverity(t *testing.T) {
	store := openTestStore(t)
	at := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	err := store.Append([]monitor.Alert{
		mkAlert("a1", "run-1", 0, monitor.SeverityCritical, "rmse", at),
		mkAlert("a2", "run-1", 1, monitor.SeverityCritical, "psi_glucose", at),
		mkAlert("a3", "run-1", 2, monitor.SeverityWarning, "outlier_rate", at),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	counts, err := store.CountBySeverity(at.Add(-time.Hour), at.Add(time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[monitor.SeverityCritical] != 2 || counts[monitor.SeverityWarning] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if counts[monitor.SeverityRetrainingRequired] != 0 {
		t.Fatalf("unexpected retraining count: %v", counts)
	}
}

func TestEmptyAppendIsNoop(t *testing.T) {
	store := openTestStore(t)
	if err := store.Append(nil); err != nil {
		t.Fatalf("append nil: %v", err)
	}
	alerts, err := store.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected an empty log, got %d rows", len(alerts))
	}
}

func TestEmptySourceRoundtripsAsEmpty(t *testing.T) {
	store := openTestStore(t)
	a := mkAlert("a1", "run-1", 0, monitor.SeverityInfo, "rmse", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	a.Source = ""
	if err := store.Append([]monitor.Alert{a}); err != nil {
		t.Fatalf("append: %v", err)
	}
	alerts, err := store.Recent(1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Source != "" {
		t.Fatalf("expected empty source, got %+v", alerts)
	}
}

// #endregion tests
