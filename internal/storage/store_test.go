package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/polycryst/internal/engine"
	"github.com/san-kum/polycryst/internal/orientation"
)

func smallParams() engine.Params {
	p := engine.DefaultParams()
	p.Grains = 4
	p.Steps = 6
	p.WriteStep = 2
	p.Dt = 1e-3
	p.Recrystallization = false
	return p
}

func recordRun(t *testing.T, st *Store) (string, *engine.Result) {
	t.Helper()
	p := smallParams()
	rec, err := st.Create("test", 42, p)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	eng, err := engine.New(p, engine.Options{Seed: 42, Observers: []engine.Observer{rec}})
	if err != nil {
		t.Fatal(err)
	}
	res, runErr := eng.Run(context.Background())
	if err := rec.Finish(res, map[string]float64{"peak_stress": 1.5}, runErr); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if runErr != nil {
		t.Fatal(runErr)
	}
	return rec.ID(), res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, res := recordRun(t, st)
	if !strings.HasPrefix(runID, "test_") || len(runID) != len("test_")+8 {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", meta.Name)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Params != smallParams() {
		t.Error("params did not survive the round trip")
	}
	if meta.Metrics["peak_stress"] != 1.5 {
		t.Errorf("expected peak_stress 1.5, got %f", meta.Metrics["peak_stress"])
	}
	if meta.Summary == nil || meta.Summary.StepsTaken != 6 || meta.Finished == nil {
		t.Fatalf("missing summary: %+v", meta.Summary)
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(series) != len(res.Series) {
		t.Fatalf("expected %d samples, got %d", len(res.Series), len(series))
	}
	last := series[len(series)-1]
	want := res.Final
	if last.Step != want.Step || last.Grains != want.Grains {
		t.Errorf("expected step %d with %d grains, got %d with %d", want.Step, want.Grains, last.Step, last.Grains)
	}
	if math.Abs(last.StressIntensity-want.StressIntensity) > 1e-6*math.Max(1, want.StressIntensity) {
		t.Errorf("stress intensity %g, want %g", last.StressIntensity, want.StressIntensity)
	}
	if math.Abs(last.MeanSigma[0][1]-want.MeanSigma[0][1]) > 1e-6 {
		t.Errorf("sigma12 %g, want %g", last.MeanSigma[0][1], want.MeanSigma[0][1])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	recordRun(t, st)
	if err := os.Mkdir(filepath.Join(st.BaseDir(), "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, res := recordRun(t, st)

	files := []string{metadataFile, seriesFile, orientationsFile}
	for _, fam := range orientation.Families {
		files = append(files, PoleFile(fam))
	}
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(st.BaseDir(), runID, f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(st.BaseDir(), runID, orientationsFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(res.Series) {
		t.Errorf("expected %d orientation lines, got %d", len(res.Series), len(lines))
	}
	if n := len(strings.Fields(lines[0])); n != 9*smallParams().Grains {
		t.Errorf("expected %d orientation values, got %d", 9*smallParams().Grains, n)
	}
}

func TestLoadPoles(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, res := recordRun(t, st)

	poles, err := st.LoadPoles(runID, orientation.Pole111)
	if err != nil {
		t.Fatal(err)
	}
	if len(poles) != len(res.Series) {
		t.Fatalf("expected %d snapshots, got %d", len(res.Series), len(poles))
	}
	for _, p := range poles[0] {
		if math.Abs(p.Norm()-1) > 1e-6 {
			t.Errorf("pole %v is not a unit vector", p)
		}
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadSeries("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRecorderRejectsWritesAfterClose(t *testing.T) {
	st := New(t.TempDir())
	rec, err := st.Create("closed", 1, smallParams())
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if err := rec.OnSnapshot(engine.Snapshot{}); err == nil {
		t.Error("expected an error after close")
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, res := recordRun(t, st)

	var buf bytes.Buffer
	if err := st.ExportJSON(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var out ExportData
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Run.ID != runID {
		t.Errorf("expected run %s, got %s", runID, out.Run.ID)
	}
	if len(out.Series) != len(res.Series) {
		t.Errorf("expected %d samples, got %d", len(res.Series), len(out.Series))
	}
}
