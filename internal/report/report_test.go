package report

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alexdbatista/driftwatch/internal/monitor"
)

// #region helpers

var (
	periodStart = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)
)

func mkAlert(sev monitor.Severity, cat monitor.Category, metric string, at time.Time) monitor.Alert {
	return monitor.Alert{
		Severity:   sev,
		Category:   cat,
		Metric:     metric,
		Message:    metric + " breached",
		DetectedAt: at,
	}
}

func sampleAlerts() []monitor.Alert {
	mid := periodStart.Add(10 * 24 * time.Hour)
	return []monitor.Alert{
		mkAlert(monitor.SeverityCritical, monitor.CategoryPerformance, "rmse", mid),
		mkAlert(monitor.SeverityWarning, monitor.CategoryDataQuality, "missing_rate_glucose", mid),
		mkAlert(monitor.SeverityWarning, monitor.CategoryStatisticalDrift, "psi_glucose", mid.Add(time.Hour)),
		mkAlert(monitor.SeverityWarning, monitor.CategoryStatisticalDrift, "psi_glucose", mid.Add(2*time.Hour)),
	}
}

// #endregion helpers

// #region tests

func TestGenerateCounts(t *testing.T) {
	r := Generate(sampleAlerts(), Period{Start: periodStart, End: periodEnd}, monitor.DefaultRetrainPolicy())

	if r.TotalAlerts != 4 {
		t.Fatalf("expected 4 alerts, got %d", r.TotalAlerts)
	}
	if r.Counts.Critical != 1 || r.Counts.Warning != 3 || r.Counts.Info != 0 {
		t.Fatalf("unexpected counts: %+v", r.Counts)
	}
	drift := r.CountsByCategory[string(monitor.CategoryStatisticalDrift)]
	if drift.Warning != 2 || drift.total() != 2 {
		t.Fatalf("unexpected drift counts: %+v", drift)
	}
	// Metrics are distinct and sorted.
	want := []string{"missing_rate_glucose", "psi_glucose", "rmse"}
	if !reflect.DeepEqual(r.Metrics, want) {
		t.Fatalf("expected metrics %v, got %v", want, r.Metrics)
	}
	if r.RetrainingRequired {
		t.Fatal("one critical is below the default retraining count")
	}
}

func TestGenerateFiltersToPeriod(t *testing.T) {
	alerts := sampleAlerts()
	alerts = append(alerts,
		mkAlert(monitor.SeverityCritical, monitor.CategoryPerformance, "rmse", periodStart.Add(-time.Hour)),
		mkAlert(monitor.SeverityCritical, monitor.CategoryPerformance, "rmse", periodEnd.Add(time.Hour)),
		// Boundary alerts are inclusive.
		mkAlert(monitor.SeverityInfo, monitor.CategoryDataQuality, "outlier_rate", periodStart),
		mkAlert(monitor.SeverityInfo, monitor.CategoryDataQuality, "outlier_rate", periodEnd),
	)

	r := Generate(alerts, Period{Start: periodStart, End: periodEnd}, monitor.DefaultRetrainPolicy())
	if r.TotalAlerts != 6 {
		t.Fatalf("expected 6 in-period alerts, got %d", r.TotalAlerts)
	}
	if r.Counts.Critical != 1 {
		t.Fatalf("out-of-period criticals must not count: %+v", r.Counts)
	}
	if r.Counts.Info != 2 {
		t.Fatalf("boundary alerts must count: %+v", r.Counts)
	}
}

func TestGenerateRetrainingVerdict(t *testing.T) {
	mid := periodStart.Add(24 * time.Hour)
	alerts := []monitor.Alert{
		mkAlert(monitor.SeverityCritical, monitor.CategoryPerformance, "rmse", mid),
		mkAlert(monitor.SeverityCritical, monitor.CategoryStatisticalDrift, "psi_glucose", mid),
		mkAlert(monitor.SeverityCritical, monitor.CategoryDataQuality, "range_violations_glucose", mid),
	}

	r := Generate(alerts, Period{Start: periodStart, End: periodEnd}, monitor.RetrainPolicy{CriticalCount: 3})
	if !r.RetrainingRequired {
		t.Fatal("three criticals at the policy count must require retraining")
	}
	if !strings.HasPrefix(r.Summary, "RETRAINING REQUIRED") {
		t.Fatalf("unexpected summary: %q", r.Summary)
	}

	single := []monitor.Alert{mkAlert(monitor.SeverityRetrainingRequired, monitor.CategoryPerformance, "zone_agreement", mid)}
	r = Generate(single, Period{Start: periodStart, End: periodEnd}, monitor.RetrainPolicy{CriticalCount: 3})
	if !r.RetrainingRequired {
		t.Fatal("a RETRAINING_REQUIRED alert must force the verdict")
	}
}

func TestGenerateIsPure(t *testing.T) {
	alerts := sampleAlerts()
	period := Period{Start: periodStart, End: periodEnd}
	policy := monitor.DefaultRetrainPolicy()

	first := Generate(alerts, period, policy)
	second := Generate(alerts, period, policy)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same inputs produced different reports:\n%+v\n%+v", first, second)
	}
}

func TestGenerateEmptyWindow(t *testing.T) {
	r := Generate(nil, Period{Start: periodStart, End: periodEnd}, monitor.DefaultRetrainPolicy())
	if r.TotalAlerts != 0 || r.RetrainingRequired {
		t.Fatalf("unexpected report for an empty window: %+v", r)
	}
	if r.Summary != "all checks passed" {
		t.Fatalf("unexpected summary: %q", r.Summary)
	}
}

func TestRenderTextIsReproducible(t *testing.T) {
	r := Generate(sampleAlerts(), Period{Start: periodStart, End: periodEnd}, monitor.DefaultRetrainPolicy())
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	text := RenderText(r, now)
	if text != RenderText(r, now) {
		t.Fatal("rendering the same report twice must be identical")
	}
	for _, want := range []string{
		"MODEL SURVEILLANCE REPORT",
		"Generated:        2026-08-01T09:00:00Z",
		"1. SUMMARY",
		"2. ALERTS BY CATEGORY",
		"3. TRIGGERING METRICS",
		"4. RECOMMENDATIONS",
		"- rmse",
		"Retraining required: false",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendered report is missing %q:\n%s", want, text)
		}
	}
}

// #endregion tests
