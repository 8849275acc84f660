package monitor

// #region should-retrain

// ShouldRetrain decides whether the alerts in a window demand retraining.
// The rule is exact: true iff the window holds at least policy.CriticalCount
// CRITICAL alerts, or any RETRAINING_REQUIRED alert. Pure function of the
// windowed alert slice; no other inputs.
func ShouldRetrain(alerts []Alert, policy RetrainPolicy) bool {
	critical := 0
	for _, a := range alerts {
		switch a.Severity {
		case SeverityRetrainingRequired:
			return true
		case SeverityCritical:
			critical++
		}
	}
	return critical >= policy.CriticalCount
}

// #endregion should-retrain
