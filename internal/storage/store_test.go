package storage

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/san-kum/horizon/internal/vecmath"
)

func sampleResult() *RunResult {
	return &RunResult{
		Frames: []Frame{
			{Time: 0, Active: 100, Energy: -1.5e40, Tracked: []vecmath.Vector3{{X: 1, Y: 2, Z: 3}}},
			{Time: 0.016, Active: 99, Energy: -1.4e40, Tracked: []vecmath.Vector3{{X: 1.1, Y: 2.1, Z: 3.1}}},
		},
		Metrics: map[string]float64{"captures": 1},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Seed:          42,
		Dt:            0.016,
		Integrator:    "rk4",
		Backend:       "cpu",
		BlackHoleMass: 1.989e30,
	}

	runID, err := st.Save(meta, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", loaded.Integrator)
	}
	if loaded.Frames != 2 {
		t.Errorf("expected 2 frames, got %d", loaded.Frames)
	}
	if loaded.Metrics["captures"] != 1 {
		t.Errorf("expected captures metric 1, got %g", loaded.Metrics["captures"])
	}
}

func TestLoadFramesRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	result := sampleResult()
	runID, err := st.Save(RunMetadata{}, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[1].Active != 99 {
		t.Errorf("expected active 99, got %d", frames[1].Active)
	}
	if frames[0].Tracked[0] != result.Frames[0].Tracked[0] {
		t.Errorf("tracked position changed: %v", frames[0].Tracked[0])
	}
}

func TestListEmptyDir(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestListFindsSavedRuns(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(RunMetadata{Backend: "cpu"}, sampleResult()); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Backend != "cpu" {
		t.Errorf("expected backend cpu, got %s", runs[0].Backend)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "time,active,energy,p0_x") {
		t.Errorf("unexpected header: %s", lines[0])
	}
}

func TestExportJSONFile(t *testing.T) {
	path := t.TempDir() + "/run.json"
	if err := ExportJSONFile(path, RunMetadata{Backend: "cpu"}, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(data), `"backend": "cpu"`) {
		t.Error("metadata missing from exported file")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunMetadata{Integrator: "rk4"}, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"integrator": "rk4"`) {
		t.Error("metadata missing from export")
	}
	if !strings.Contains(buf.String(), `"frame_count": 2`) {
		t.Error("frame count missing from export")
	}
}
