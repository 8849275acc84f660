// Package report aggregates windows of the alert log into surveillance
// reports for post-market follow-up. Generation is a pure function of the
// alert slice and the period: the same inputs always render the same report.
package report

// #region imports
import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexdbatista/driftwatch/internal/monitor"
)

// #endregion

// #region period

// Period bounds a reporting window, inclusive on both ends.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// #endregion period

// #region severity-counts

// SeverityCounts tallies alerts per severity level.
type SeverityCounts struct {
	Info               int `json:"info"`
	Warning            int `json:"warning"`
	Critical           int `json:"critical"`
	RetrainingRequired int `json:"retraining_required"`
}

func (c SeverityCounts) total() int {
	return c.Info + c.Warning + c.Critical + c.RetrainingRequired
}

// #endregion severity-counts

// #region report

// Report is the aggregated surveillance view over one reporting period.
// Read-only once rendered.
type Report struct {
	Period             Period                    `json:"period"`
	TotalAlerts        int                       `json:"total_alerts"`
	Counts             SeverityCounts            `json:"counts"`
	CountsByCategory   map[string]SeverityCounts `json:"counts_by_category,omitempty"`
	Metrics            []string                  `json:"metrics,omitempty"`
	RetrainingRequired bool                      `json:"retraining_required"`
	Summary            string                    `json:"summary"`
}

// #endregion report

// #region generate

// Generate aggregates alerts within the period. Alerts outside the period
// are ignored; prior log entries are never reordered or dropped by this —
// it only reads.
func Generate(alerts []monitor.Alert, period Period, policy monitor.RetrainPolicy) Report {
	var inWindow []monitor.Alert
	for _, a := range alerts {
		if a.DetectedAt.Before(period.Start) || a.DetectedAt.After(period.End) {
			continue
		}
		inWindow = append(inWindow, a)
	}

	r := Report{Period: period}
	metricSet := make(map[string]bool)
	for _, a := range inWindow {
		tally(&r.Counts, a.Severity)
		if r.CountsByCategory == nil {
			r.CountsByCategory = make(map[string]SeverityCounts)
		}
		byCat := r.CountsByCategory[string(a.Category)]
		tally(&byCat, a.Severity)
		r.CountsByCategory[string(a.Category)] = byCat
		metricSet[a.Metric] = true
	}
	r.TotalAlerts = r.Counts.total()

	for m := range metricSet {
		r.Metrics = append(r.Metrics, m)
	}
	sort.Strings(r.Metrics)

	r.RetrainingRequired = monitor.ShouldRetrain(inWindow, policy)
	r.Summary = summarize(r)
	return r
}

func tally(c *SeverityCounts, sev monitor.Severity) {
	switch sev {
	case monitor.SeverityInfo:
		c.Info++
	case monitor.SeverityWarning:
		c.Warning++
	case monitor.SeverityCritical:
		c.Critical++
	case monitor.SeverityRetrainingRequired:
		c.RetrainingRequired++
	}
}

func summarize(r Report) string {
	switch {
	case r.RetrainingRequired:
		return fmt.Sprintf("RETRAINING REQUIRED: %d alerts (%d critical, %d retraining-required)",
			r.TotalAlerts, r.Counts.Critical, r.Counts.RetrainingRequired)
	case r.Counts.Critical > 0:
		return fmt.Sprintf("critical issues detected: %d alerts (%d critical)", r.TotalAlerts, r.Counts.Critical)
	case r.Counts.Warning > 0:
		return fmt.Sprintf("warnings detected: %d alerts (%d warnings)", r.TotalAlerts, r.Counts.Warning)
	default:
		return "all checks passed"
	}
}

// #endregion generate

// #region render

// RenderText renders the report as a plain-text surveillance document. The
// clock is injected so rendering stays reproducible in tests.
func RenderText(r Report, now time.Time) string {
	var b strings.Builder
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "MODEL SURVEILLANCE REPORT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Generated:        %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Reporting period: %s to %s\n\n",
		r.Period.Start.UTC().Format(time.RFC3339), r.Period.End.UTC().Format(time.RFC3339))

	fmt.Fprintln(&b, "1. SUMMARY")
	fmt.Fprintf(&b, "   %s\n", r.Summary)
	fmt.Fprintf(&b, "   Total alerts: %d (info %d, warning %d, critical %d, retraining-required %d)\n",
		r.TotalAlerts, r.Counts.Info, r.Counts.Warning, r.Counts.Critical, r.Counts.RetrainingRequired)
	fmt.Fprintf(&b, "   Retraining required: %v\n\n", r.RetrainingRequired)

	fmt.Fprintln(&b, "2. ALERTS BY CATEGORY")
	if len(r.CountsByCategory) == 0 {
		fmt.Fprintln(&b, "   none")
	} else {
		cats := make([]string, 0, len(r.CountsByCategory))
		for c := range r.CountsByCategory {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			counts := r.CountsByCategory[c]
			fmt.Fprintf(&b, "   %-18s total %d, warning %d, critical %d, retraining-required %d\n",
				c, counts.total(), counts.Warning, counts.Critical, counts.RetrainingRequired)
		}
	}

	fmt.Fprintln(&b, "\n3. TRIGGERING METRICS")
	if len(r.Metrics) == 0 {
		fmt.Fprintln(&b, "   none")
	} else {
		for _, m := range r.Metrics {
			fmt.Fprintf(&b, "   - %s\n", m)
		}
	}

	fmt.Fprintln(&b, "\n4. RECOMMENDATIONS")
	if r.RetrainingRequired {
		fmt.Fprintln(&b, "   - Retrain and revalidate the model before further deployment.")
		fmt.Fprintln(&b, "   - Review the triggering metrics above for root cause.")
	} else if r.Counts.Critical > 0 || r.Counts.Warning > 0 {
		fmt.Fprintln(&b, "   - Investigate flagged metrics; retraining not yet required.")
	} else {
		fmt.Fprintln(&b, "   - Continue routine monitoring; no action required.")
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}

// #endregion render
