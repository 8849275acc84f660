package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alexdbatista/driftwatch/internal/alertlog"
	"github.com/alexdbatista/driftwatch/internal/batch"
	"github.com/alexdbatista/driftwatch/internal/config"
	"github.com/alexdbatista/driftwatch/internal/logging"
	"github.com/alexdbatista/driftwatch/internal/monitor"
	"github.com/alexdbatista/driftwatch/internal/profile"
)

// #endregion

// #region main

func main() {
	configPath := flag.String("config", "", "path to driftwatch config YAML")
	profilePath := flag.String("profile", "", "reference profile JSON (overrides config)")
	batchPath := flag.String("batch", "", "observation batch CSV to evaluate")
	source := flag.String("source", "", "batch source tag recorded in the alert log")
	jsonOut := flag.Bool("json", false, "output the run result as JSON")
	flag.Parse()

	if *configPath == "" || *batchPath == "" {
		fmt.Fprintln(os.Stderr, "usage: monitor --config config.yaml --batch new_data.csv [--profile profile.json] [--source tag] [--json]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	refPath := cfg.ProfilePath
	if *profilePath != "" {
		refPath = *profilePath
	}
	if refPath == "" {
		fmt.Fprintln(os.Stderr, "no reference profile: set profile_path in the config or pass --profile")
		os.Exit(2)
	}
	ref, err := profile.Load(refPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		os.Exit(1)
	}

	b, err := batch.LoadCSV(*batchPath, *source, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "batch: %v\n", err)
		os.Exit(1)
	}

	store, err := alertlog.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "alert log: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	eval, err := monitor.NewEvaluator(cfg.Thresholds, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluator: %v\n", err)
		os.Exit(1)
	}

	res, err := eval.Evaluate(b, ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluate: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		if err := printJSON(res); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printResult(res, cfg.Retraining)
}

// #endregion main

// #region output

func printResult(res monitor.Result, policy monitor.RetrainPolicy) {
	fmt.Printf("run %s: %d samples from %q, %d alerts\n",
		shortID(res.RunID), res.Samples, res.Source, len(res.Alerts))

	if res.Performance != nil {
		fmt.Printf("performance: RMSE %.2f, MAE %.2f, zone A+B %.1f%% (%d labeled)\n",
			res.Performance.RMSE, res.Performance.MAE, res.Performance.ZoneAgreement, res.Performance.Labeled)
	}

	if len(res.Alerts) > 0 {
		fmt.Printf("\n%-20s  %-17s  %-28s  %10s  %10s\n", "Severity", "Category", "Metric", "Value", "Threshold")
		for _, a := range res.Alerts {
			fmt.Printf("%-20s  %-17s  %-28s  %10.4f  %10.4f\n",
				a.Severity, a.Category, a.Metric, a.Value, a.Threshold)
		}
	}

	for _, d := range res.Diagnostics {
		fmt.Printf("note: %s: %s\n", d.Metric, d.Note)
	}

	if monitor.ShouldRetrain(res.Alerts, policy) {
		fmt.Println("\nretraining required for this run")
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
