package main

// #region imports
import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alexdbatista/driftwatch/internal/batch"
	"github.com/alexdbatista/driftwatch/internal/profile"
)

// #endregion

// #region main

func main() {
	baseline := flag.String("baseline", "", "path to baseline CSV with features, predicted and actual columns")
	modelVersion := flag.String("model-version", "", "model version the profile belongs to")
	out := flag.String("out", "profile.json", "output path for the profile JSON")
	flag.Parse()

	if *baseline == "" || *modelVersion == "" {
		fmt.Fprintln(os.Stderr, "usage: build-profile --baseline data.csv --model-version v1 [--out profile.json]")
		os.Exit(2)
	}

	b, err := batch.LoadCSV(*baseline, "baseline", time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load baseline: %v\n", err)
		os.Exit(1)
	}

	p, err := profile.Build(b.Records, *modelVersion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build profile: %v\n", err)
		os.Exit(1)
	}

	if err := profile.Save(p, *out); err != nil {
		fmt.Fprintf(os.Stderr, "save profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("profile for %s written to %s (%d features", *modelVersion, *out, len(p.Features))
	if p.BaselineRMSE > 0 {
		fmt.Printf(", baseline RMSE %.2f", p.BaselineRMSE)
	}
	fmt.Println(")")
}

// #endregion main
