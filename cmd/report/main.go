package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alexdbatista/driftwatch/internal/alertlog"
	"github.com/alexdbatista/driftwatch/internal/config"
	"github.com/alexdbatista/driftwatch/internal/report"
)

// #endregion

// #region main

func main() {
	configPath := flag.String("config", "", "path to driftwatch config YAML")
	fromFlag := flag.String("from", "", "period start (RFC3339); default 30 days before --to")
	toFlag := flag.String("to", "", "period end (RFC3339); default now")
	jsonOut := flag.Bool("json", false, "output the report as JSON")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: report --config config.yaml [--from RFC3339] [--to RFC3339] [--json]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	to := now
	if *toFlag != "" {
		to, err = time.Parse(time.RFC3339, *toFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse --to: %v\n", err)
			os.Exit(2)
		}
	}
	from := to.Add(-30 * 24 * time.Hour)
	if *fromFlag != "" {
		from, err = time.Parse(time.RFC3339, *fromFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse --from: %v\n", err)
			os.Exit(2)
		}
	}

	store, err := alertlog.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "alert log: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	alerts, err := store.Window(from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	r := report.Generate(alerts, report.Period{Start: from, End: to}, cfg.Retraining)

	if *jsonOut {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal json: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}
	fmt.Print(report.RenderText(r, now))
}

// #endregion main
