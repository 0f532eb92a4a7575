package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/geartrain/internal/config"
	"github.com/san-kum/geartrain/internal/problem"
)

func evaluate(t *testing.T, preset string) (*problem.Problem, *problem.Evaluation) {
	t.Helper()
	cfg := config.GetPreset(preset)
	a, err := cfg.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	conds, err := cfg.OperatingConditions()
	if err != nil {
		t.Fatalf("conditions failed: %v", err)
	}
	p, err := problem.Get(cfg.Problem, conds)
	if err != nil {
		t.Fatalf("problem failed: %v", err)
	}
	e, err := problem.Analyze(a, conds)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if err := p.Score(e); err != nil {
		t.Fatalf("score failed: %v", err)
	}
	return p, e
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	p, e := evaluate(t, "good")
	runID, err := st.Save("good", p, e)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "good" || meta.Problem != "ctsei5s2" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if len(meta.Components) != 3 || meta.Components[0].Kind != "motor" {
		t.Errorf("unexpected components: %+v", meta.Components)
	}
	if meta.Ratio != e.Actuator.Ratio() {
		t.Errorf("expected ratio %v, got %v", e.Actuator.Ratio(), meta.Ratio)
	}
	if len(meta.Objectives) != 5 || len(meta.Constraints) != 11 {
		t.Errorf("expected 5 objectives and 11 constraints, got %d and %d", len(meta.Objectives), len(meta.Constraints))
	}

	header, rows, err := st.LoadConditions(runID)
	if err != nil {
		t.Fatalf("load conditions failed: %v", err)
	}
	if len(header) != 8+4*2 {
		t.Errorf("expected 16 columns, got %d", len(header))
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != problem.OpSet2[0].Speed {
		t.Errorf("expected target speed %v, got %v", problem.OpSet2[0].Speed, rows[0][0])
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on empty dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	p, e := evaluate(t, "motored")
	if _, err := st.Save("first", p, e); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save("second", nil, e); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "second" {
		t.Errorf("expected newest run first, got %s", runs[0].Name)
	}
	if runs[0].Problem != "" || runs[0].Feasible {
		t.Errorf("unscored run has problem data: %+v", runs[0])
	}
}

func TestStoreLoad_Missing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, _, err := st.LoadConditions("nope"); err == nil {
		t.Error("expected error for missing conditions")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteConditions_ReportsWriteError(t *testing.T) {
	_, e := evaluate(t, "good")
	if err := writeConditions(failingWriter{}, e); err == nil {
		t.Fatal("expected the flush error to be returned")
	}
}
