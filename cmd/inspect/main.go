package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alexdbatista/driftwatch/internal/alertlog"
	"github.com/alexdbatista/driftwatch/internal/monitor"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the alert log database")
	last := flag.Int("last", 20, "show N most recent alerts")
	severity := flag.String("severity", "", "filter by severity label (e.g. CRITICAL)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db driftwatch.db [--last N] [--severity LABEL] [--json]")
		os.Exit(2)
	}

	store, err := alertlog.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	alerts, err := store.Recent(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *severity != "" {
		var want monitor.Severity
		if err := want.UnmarshalText([]byte(*severity)); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		filtered := alerts[:0]
		for _, a := range alerts {
			if a.Severity == want {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}

	if len(alerts) == 0 {
		fmt.Fprintln(os.Stderr, "no alerts found")
		return
	}

	if *jsonOut {
		data, err := json.MarshalIndent(alerts, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal json: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}
	printTable(alerts)
}

// #endregion main

// #region table

func printTable(alerts []monitor.Alert) {
	fmt.Printf("%-10s  %-20s  %-28s  %10s  %10s  %-10s  %s\n",
		"Run", "Severity", "Metric", "Value", "Threshold", "Source", "Time")
	for _, a := range alerts {
		source := a.Source
		if source == "" {
			source = "—"
		}
		fmt.Printf("%-10s  %-20s  %-28s  %10.4f  %10.4f  %-10s  %s\n",
			shortID(a.RunID), a.Severity, a.Metric, a.Value, a.Threshold,
			source, a.DetectedAt.Format(time.RFC3339))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion table
