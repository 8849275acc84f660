package monitor

import "testing"

func sevAlerts(severities ...Severity) []Alert {
	alerts := make([]Alert, len(severities))
	for i, s := range severities {
		alerts[i] = Alert{Severity: s, Metric: "m"}
	}
	return alerts
}

func TestShouldRetrain(t *testing.T) {
	policy := RetrainPolicy{CriticalCount: 3}
	cases := []struct {
		name   string
		alerts []Alert
		want   bool
	}{
		{"no alerts", nil, false},
		{"warnings only", sevAlerts(SeverityWarning, SeverityWarning, SeverityWarning, SeverityWarning), false},
		{"two criticals below count", sevAlerts(SeverityCritical, SeverityCritical), false},
		{"three criticals at count", sevAlerts(SeverityCritical, SeverityCritical, SeverityCritical), true},
		{"criticals mixed with noise", sevAlerts(SeverityInfo, SeverityCritical, SeverityWarning, SeverityCritical, SeverityCritical), true},
		{"single retraining-required overrides count", sevAlerts(SeverityRetrainingRequired), true},
		{"retraining-required among warnings", sevAlerts(SeverityWarning, SeverityRetrainingRequired), true},
	}
	for _, c := range cases {
		if got := ShouldRetrain(c.alerts, policy); got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestSeverityOrderingAndText(t *testing.T) {
	if !(SeverityInfo < SeverityWarning && SeverityWarning < SeverityCritical && SeverityCritical < SeverityRetrainingRequired) {
		t.Fatal("severity order must be INFO < WARNING < CRITICAL < RETRAINING_REQUIRED")
	}

	for _, s := range []Severity{SeverityInfo, SeverityWarning, SeverityCritical, SeverityRetrainingRequired} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("marshal %d: %v", s, err)
		}
		var back Severity
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if back != s {
			t.Fatalf("round trip changed %s to %s", s, back)
		}
	}

	var s Severity
	if err := s.UnmarshalText([]byte("LOUD")); err == nil {
		t.Fatal("expected an error for an unknown severity label")
	}
}
