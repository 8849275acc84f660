package profile

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alexdbatista/driftwatch/internal/batch"
)

// #region helpers

func baselineRecords(n int) []batch.Record {
	records := make([]batch.Record, n)
	for i := range records {
		truth := 100.0
		pred := truth + 2 // constant baseline error of 2
		records[i] = batch.Record{
			Features:  map[string]float64{"glucose": 60 + 0.8*float64(i)},
			Predicted: &pred,
			Truth:     &truth,
			Groups:    map[string]string{"site": []string{"a", "b"}[i%2]},
		}
	}
	return records
}

// #endregion helpers

// #region tests

func TestBuild(t *testing.T) {
	p, err := Build(baselineRecords(100), "rf-v2")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.ModelVersion != "rf-v2" || p.CreatedAt.IsZero() {
		t.Fatalf("profile metadata missing: %+v", p)
	}

	fb, ok := p.Features["glucose"]
	if !ok {
		t.Fatalf("expected a glucose baseline, got %v", p.FeatureNames())
	}
	if math.Abs(fb.Mean-99.6) > 1e-9 {
		t.Fatalf("expected mean 99.6, got %v", fb.Mean)
	}
	if fb.Std <= 0 {
		t.Fatalf("expected positive std, got %v", fb.Std)
	}
	if len(fb.BinEdges) != 11 || len(fb.BinShares) != 10 {
		t.Fatalf("expected 10 bins, got %d edges / %d shares", len(fb.BinEdges), len(fb.BinShares))
	}
	var sum float64
	for _, s := range fb.BinShares {
		sum += s
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("bin shares must sum to 1, got %v", sum)
	}

	// Constant error of 2: RMSE == MAE == 2, all in zone A.
	if math.Abs(p.BaselineRMSE-2) > 1e-9 || math.Abs(p.BaselineMAE-2) > 1e-9 {
		t.Fatalf("expected baseline error 2, got rmse %v mae %v", p.BaselineRMSE, p.BaselineMAE)
	}
	if p.BaselineZoneAgreement != 100 {
		t.Fatalf("expected 100%% agreement, got %v", p.BaselineZoneAgreement)
	}
	if math.Abs(p.SubgroupRMSE["site"]["a"]-2) > 1e-9 || math.Abs(p.SubgroupRMSE["site"]["b"]-2) > 1e-9 {
		t.Fatalf("unexpected subgroup baselines: %v", p.SubgroupRMSE)
	}
}

func TestBuildUnlabeledBaseline(t *testing.T) {
	records := baselineRecords(50)
	for i := range records {
		records[i].Predicted = nil
		records[i].Truth = nil
	}
	p, err := Build(records, "rf-v2")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.BaselineRMSE != 0 || p.SubgroupRMSE != nil {
		t.Fatalf("unlabeled baseline must not fabricate error metrics: %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("distributional-only profile must validate: %v", err)
	}
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	if _, err := Build(nil, "rf-v2"); err == nil {
		t.Fatal("expected an error for no records")
	}
	if _, err := Build([]batch.Record{{}, {}}, "rf-v2"); err == nil {
		t.Fatal("expected an error for records without features")
	}
}

func TestBuildRejectsConstantFeature(t *testing.T) {
	records := make([]batch.Record, 10)
	for i := range records {
		records[i] = batch.Record{Features: map[string]float64{"glucose": 100}}
	}
	if _, err := Build(records, "rf-v2"); err == nil {
		t.Fatal("expected an error for a constant feature")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	p, err := Build(baselineRecords(100), "rf-v2")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	lo, hi := 40.0, 400.0
	fb := p.Features["glucose"]
	fb.ValidMin, fb.ValidMax = &lo, &hi
	p.Features["glucose"] = fb

	path := filepath.Join(t.TempDir(), "profile.json")
	if err := Save(p, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("created_at changed: %v vs %v", loaded.CreatedAt, p.CreatedAt)
	}
	loaded.CreatedAt = p.CreatedAt
	if !reflect.DeepEqual(loaded, p) {
		t.Fatalf("profile changed across the roundtrip:\n%+v\n%+v", loaded, p)
	}
}

func TestValidate(t *testing.T) {
	if err := (Profile{}).Validate(); err == nil {
		t.Fatal("an empty profile must not validate")
	}
	bad := Profile{Features: map[string]FeatureBaseline{
		"glucose": {BinEdges: []float64{0, 1, 2}, BinShares: []float64{1}},
	}}
	if err := bad.Validate(); err == nil {
		t.Fatal("mismatched edges and shares must not validate")
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := Save(Profile{ModelVersion: "rf-v2"}, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a validation error for a featureless profile")
	}
}

// #endregion tests
