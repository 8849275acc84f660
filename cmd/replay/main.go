package main

// #region imports
import (
	"flag"
	"fmt"
	"os"

	"github.com/alexdbatista/driftwatch/internal/monitor"
	"github.com/alexdbatista/driftwatch/internal/replay"
)

// #endregion

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to a JSON replay fixture")
	criticalCount := flag.Int("critical-count", monitor.DefaultRetrainPolicy().CriticalCount,
		"CRITICAL alerts required for a retraining verdict")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture fixture.json [--critical-count N]")
		os.Exit(2)
	}

	f, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	summary, err := replay.Run(f, monitor.RetrainPolicy{CriticalCount: *criticalCount})
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}

	if summary.Description != "" {
		fmt.Printf("fixture: %s\n\n", summary.Description)
	}
	for _, rr := range summary.Results {
		status := "PASS"
		if !rr.Pass {
			status = "FAIL"
		}
		fmt.Printf("batch %d: %s (%d alerts)\n", rr.Batch, status, len(rr.Got))
		if !rr.Pass {
			fmt.Printf("  %s\n", rr.Mismatch)
		}
	}

	fmt.Printf("\n%d/%d batches passed, retraining verdict %v\n",
		summary.Passed, summary.Total, summary.Retraining)
	if !summary.RetrainingOK {
		fmt.Println("retraining verdict does not match the fixture expectation")
	}

	if summary.Failed > 0 || !summary.RetrainingOK {
		os.Exit(1)
	}
}

// #endregion main
