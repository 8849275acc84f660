package monitor

// #region imports
import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alexdbatista/driftwatch/internal/batch"
	"github.com/alexdbatista/driftwatch/internal/profile"
	"github.com/alexdbatista/driftwatch/internal/stats"
)

// #endregion

// #region constants

// minDriftSamples is the minimum batch sample count per feature for the PSI
// check to be meaningful.
const minDriftSamples = 30

// #endregion constants

// #region alert-log

// AlertLog is the append-only sink evaluation runs write into.
type AlertLog interface {
	Append(alerts []Alert) error
}

// #endregion alert-log

// #region evaluator

// Evaluator runs the configured drift and quality checks. The reference
// profile is shared, read-only state; the evaluator never mutates it.
type Evaluator struct {
	thresholds Thresholds
	log        AlertLog
	logger     *zap.Logger
}

// NewEvaluator validates the thresholds eagerly and returns an evaluator.
// log may be nil for pure (Run-only) use; logger may be nil to silence audit
// output.
func NewEvaluator(t Thresholds, log AlertLog, logger *zap.Logger) (*Evaluator, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{thresholds: t, log: log, logger: logger}, nil
}

// Thresholds returns the active threshold configuration.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// #endregion evaluator

// #region run

// Run performs all checks and returns the complete result. It is pure:
// same batch, same profile, same thresholds yield the identical alert list.
// Alerts come back ordered by severity descending, detection order breaking
// ties; IDs and timestamps stay zero until the run is logged.
func (e *Evaluator) Run(b batch.Batch, ref profile.Profile) (Result, error) {
	if len(b.Records) == 0 {
		return Result{}, &InvalidInputError{Reason: "batch has no records"}
	}
	if err := ref.Validate(); err != nil {
		return Result{}, &InvalidInputError{Reason: "reference profile: " + err.Error()}
	}

	e.logger.Info("drift check started",
		zap.String("source", b.Source),
		zap.Int("samples", len(b.Records)),
		zap.String("model_version", ref.ModelVersion),
	)

	res := Result{Source: b.Source, Samples: len(b.Records)}
	var alerts []Alert

	alerts = e.checkDataQuality(b, ref, alerts, &res)
	alerts = e.checkDistributionShift(b, ref, alerts, &res)
	alerts = e.checkPerformance(b, alerts, &res)
	alerts = e.checkSubgroupDisparity(b, alerts, &res)

	// Severity descending; the stable sort preserves detection order (Seq)
	// within equal severity.
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity > alerts[j].Severity
	})
	res.Alerts = alerts

	for _, a := range alerts {
		e.logAlert(a)
	}
	e.logger.Info("drift check finished",
		zap.Int("alerts", len(alerts)),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.String("max_severity", res.MaxSeverity().String()),
	)
	return res, nil
}

// #endregion run

// #region evaluate

// Evaluate runs all checks and appends the produced alerts to the alert log
// as a single run: all alerts or none. Input errors leave the log untouched.
func (e *Evaluator) Evaluate(b batch.Batch, ref profile.Profile) (Result, error) {
	if e.log == nil {
		return Result{}, errors.New("no alert log configured")
	}
	res, err := e.Run(b, ref)
	if err != nil {
		return Result{}, err
	}

	res.RunID = uuid.New().String()
	now := time.Now().UTC()
	for i := range res.Alerts {
		res.Alerts[i].ID = uuid.New().String()
		res.Alerts[i].RunID = res.RunID
		res.Alerts[i].Source = b.Source
		res.Alerts[i].DetectedAt = now
	}

	if len(res.Alerts) > 0 {
		if err := e.log.Append(res.Alerts); err != nil {
			return Result{}, fmt.Errorf("append alerts: %w", err)
		}
	}
	return res, nil
}

// #endregion evaluate

// #region data-quality

func (e *Evaluator) checkDataQuality(b batch.Batch, ref profile.Profile, alerts []Alert, res *Result) []Alert {
	n := len(b.Records)
	features := ref.FeatureNames()

	// Per-field missing rate. Strictly greater-than: a rate exactly at the
	// threshold does not trigger.
	for _, name := range features {
		missing := 0
		for _, rec := range b.Records {
			if _, ok := rec.Feature(name); !ok {
				missing++
			}
		}
		rate := float64(missing) / float64(n)
		if rate > e.thresholds.MissingRate {
			alerts = e.append(alerts, Alert{
				Severity:  SeverityWarning,
				Category:  CategoryDataQuality,
				Metric:    "missing_rate_" + name,
				Value:     rate,
				Threshold: e.thresholds.MissingRate,
				Message:   fmt.Sprintf("missing rate %.1f%% for %q exceeds threshold %.1f%%", rate*100, name, e.thresholds.MissingRate*100),
			})
		}
	}

	// Declared valid-range violations.
	for _, name := range features {
		fb := ref.Features[name]
		if fb.ValidMin == nil && fb.ValidMax == nil {
			continue
		}
		violations := 0
		for _, rec := range b.Records {
			v, ok := rec.Feature(name)
			if !ok {
				continue
			}
			if (fb.ValidMin != nil && v < *fb.ValidMin) || (fb.ValidMax != nil && v > *fb.ValidMax) {
				violations++
			}
		}
		if violations > 0 {
			alerts = e.append(alerts, Alert{
				Severity:  SeverityCritical,
				Category:  CategoryDataQuality,
				Metric:    "range_violations_" + name,
				Value:     float64(violations),
				Threshold: 0,
				Message:   fmt.Sprintf("%d values of %q outside declared valid range", violations, name),
			})
		}
	}

	// Aggregate outlier rate against the reference moments.
	outliers, total := 0, 0
	for _, name := range features {
		fb := ref.Features[name]
		if fb.Std == 0 {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Metric: "outlier_rate",
				Note:   fmt.Sprintf("feature %q has zero reference std, skipped", name),
			})
			continue
		}
		for _, rec := range b.Records {
			v, ok := rec.Feature(name)
			if !ok {
				continue
			}
			total++
			if math.Abs(v-fb.Mean)/fb.Std > e.thresholds.OutlierZScore {
				outliers++
			}
		}
	}
	if total == 0 {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Metric: "outlier_rate",
			Note:   "no feature values to score",
		})
		return alerts
	}
	rate := float64(outliers) / float64(total)
	if rate > e.thresholds.OutlierRate {
		alerts = e.append(alerts, Alert{
			Severity:  SeverityWarning,
			Category:  CategoryDataQuality,
			Metric:    "outlier_rate",
			Value:     rate,
			Threshold: e.thresholds.OutlierRate,
			Message:   fmt.Sprintf("outlier rate %.1f%% (|z| > %.1f) exceeds threshold %.1f%%", rate*100, e.thresholds.OutlierZScore, e.thresholds.OutlierRate*100),
		})
	}
	return alerts
}

// #endregion data-quality

// #region distribution-shift

func (e *Evaluator) checkDistributionShift(b batch.Batch, ref profile.Profile, alerts []Alert, res *Result) []Alert {
	for _, name := range ref.FeatureNames() {
		fb := ref.Features[name]
		var values []float64
		for _, rec := range b.Records {
			if v, ok := rec.Feature(name); ok {
				values = append(values, v)
			}
		}
		if len(values) < minDriftSamples {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Metric: "psi_" + name,
				Note:   fmt.Sprintf("only %d samples (minimum %d), skipped", len(values), minDriftSamples),
			})
			continue
		}
		psi, err := stats.PSI(fb.BinShares, fb.BinEdges, values)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Metric: "psi_" + name,
				Note:   err.Error(),
			})
			continue
		}
		switch {
		case psi > e.thresholds.DistributionShift*driftCriticalMultiple:
			alerts = e.append(alerts, Alert{
				Severity:  SeverityCritical,
				Category:  CategoryStatisticalDrift,
				Metric:    "psi_" + name,
				Value:     psi,
				Threshold: e.thresholds.DistributionShift * driftCriticalMultiple,
				Message:   fmt.Sprintf("severe distribution shift in %q: PSI %.3f", name, psi),
			})
		case psi > e.thresholds.DistributionShift:
			alerts = e.append(alerts, Alert{
				Severity:  SeverityWarning,
				Category:  CategoryStatisticalDrift,
				Metric:    "psi_" + name,
				Value:     psi,
				Threshold: e.thresholds.DistributionShift,
				Message:   fmt.Sprintf("distribution shift in %q: PSI %.3f exceeds %.3f", name, psi, e.thresholds.DistributionShift),
			})
		}
	}
	return alerts
}

// #endregion distribution-shift

// #region performance

func (e *Evaluator) checkPerformance(b batch.Batch, alerts []Alert, res *Result) []Alert {
	var predicted, truth []float64
	for _, rec := range b.Records {
		if rec.Labeled() {
			predicted = append(predicted, *rec.Predicted)
			truth = append(truth, *rec.Truth)
		}
	}
	if len(predicted) == 0 {
		// No ground truth delivered; only distributional checks apply.
		return alerts
	}

	rmse, err := stats.RMSE(predicted, truth)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Metric: "rmse", Note: err.Error()})
		return alerts
	}
	mae, _ := stats.MAE(predicted, truth)
	agreement, err := stats.ZoneAgreement(predicted, truth)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Metric: "zone_agreement", Note: err.Error()})
	}
	res.Performance = &PerformanceMetrics{
		RMSE:          rmse,
		MAE:           mae,
		ZoneAgreement: agreement,
		Labeled:       len(predicted),
	}

	switch {
	case rmse > e.thresholds.ErrorRateCritical:
		alerts = e.append(alerts, Alert{
			Severity:  SeverityCritical,
			Category:  CategoryPerformance,
			Metric:    "rmse",
			Value:     rmse,
			Threshold: e.thresholds.ErrorRateCritical,
			Message:   fmt.Sprintf("RMSE %.2f exceeds critical threshold %.2f", rmse, e.thresholds.ErrorRateCritical),
		})
	case rmse > e.thresholds.ErrorRateWarning:
		alerts = e.append(alerts, Alert{
			Severity:  SeverityWarning,
			Category:  CategoryPerformance,
			Metric:    "rmse",
			Value:     rmse,
			Threshold: e.thresholds.ErrorRateWarning,
			Message:   fmt.Sprintf("RMSE %.2f exceeds warning threshold %.2f", rmse, e.thresholds.ErrorRateWarning),
		})
	}

	// The clinical floor: falling below the zone A+B minimum forces the
	// retraining pipeline regardless of other alerts.
	if err == nil && agreement < e.thresholds.ZoneAgreementMin {
		alerts = e.append(alerts, Alert{
			Severity:  SeverityRetrainingRequired,
			Category:  CategoryPerformance,
			Metric:    "zone_agreement",
			Value:     agreement,
			Threshold: e.thresholds.ZoneAgreementMin,
			Message:   fmt.Sprintf("clinical zone A+B agreement %.1f%% below floor %.1f%%", agreement, e.thresholds.ZoneAgreementMin),
		})
	}
	return alerts
}

// #endregion performance

// #region subgroup-disparity

func (e *Evaluator) checkSubgroupDisparity(b batch.Batch, alerts []Alert, res *Result) []Alert {
	groupKeys := b.GroupKeys()
	if len(groupKeys) == 0 {
		return alerts
	}
	cols := make([]string, 0, len(groupKeys))
	for k := range groupKeys {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	for _, col := range cols {
		pairs := make(map[string][][2]float64)
		for _, rec := range b.Records {
			val, ok := rec.Groups[col]
			if !ok || !rec.Labeled() {
				continue
			}
			pairs[val] = append(pairs[val], [2]float64{*rec.Predicted, *rec.Truth})
		}
		if len(pairs) < 2 {
			continue
		}

		groupRMSE := make(map[string]float64)
		for val, pp := range pairs {
			preds := make([]float64, len(pp))
			truths := make([]float64, len(pp))
			for i, pair := range pp {
				preds[i], truths[i] = pair[0], pair[1]
			}
			r, err := stats.RMSE(preds, truths)
			if err != nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Metric: "subgroup_disparity_" + col,
					Note:   fmt.Sprintf("group %q: %v", val, err),
				})
				continue
			}
			groupRMSE[val] = r
		}
		if len(groupRMSE) < 2 {
			continue
		}

		var worst, best string
		max, min := math.Inf(-1), math.Inf(1)
		for val, r := range groupRMSE {
			if r > max || (r == max && val < worst) {
				max, worst = r, val
			}
			if r < min || (r == min && val < best) {
				min, best = r, val
			}
		}
		disparity := max - min

		switch {
		case disparity > e.thresholds.SubgroupDisparity*2:
			alerts = e.append(alerts, Alert{
				Severity:  SeverityCritical,
				Category:  CategoryBiasDrift,
				Metric:    "subgroup_disparity_" + col,
				Value:     disparity,
				Threshold: e.thresholds.SubgroupDisparity * 2,
				Message:   fmt.Sprintf("severe subgroup RMSE disparity %.2f in %q (worst %q, best %q)", disparity, col, worst, best),
			})
		case disparity > e.thresholds.SubgroupDisparity:
			alerts = e.append(alerts, Alert{
				Severity:  SeverityWarning,
				Category:  CategoryBiasDrift,
				Metric:    "subgroup_disparity_" + col,
				Value:     disparity,
				Threshold: e.thresholds.SubgroupDisparity,
				Message:   fmt.Sprintf("subgroup RMSE disparity %.2f in %q (worst %q, best %q)", disparity, col, worst, best),
			})
		}
	}
	return alerts
}

// #endregion subgroup-disparity

// #region helpers

// append assigns the detection sequence number.
func (e *Evaluator) append(alerts []Alert, a Alert) []Alert {
	a.Seq = len(alerts)
	return append(alerts, a)
}

func (e *Evaluator) logAlert(a Alert) {
	fields := []zap.Field{
		zap.String("metric", a.Metric),
		zap.String("category", string(a.Category)),
		zap.Float64("value", a.Value),
		zap.Float64("threshold", a.Threshold),
	}
	switch {
	case a.Severity >= SeverityCritical:
		e.logger.Error(a.Message, fields...)
	case a.Severity == SeverityWarning:
		e.logger.Warn(a.Message, fields...)
	default:
		e.logger.Info(a.Message, fields...)
	}
}

// #endregion helpers
