package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/growth"
)

func testFamily(t *testing.T) *family.Family {
	t.Helper()
	ts, err := growth.Linspace(0, 15, 16)
	if err != nil {
		t.Fatal(err)
	}
	f, err := family.Generate(growth.Params{K: 1, A: 0.5}, []float64{0.1, 0.25, 1.5}, ts, family.SchemeRainbow)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func testMeta() RunMetadata {
	return RunMetadata{
		Preset:    "scene",
		K:         1,
		A:         0.5,
		Initial:   Sweep{Start: 0.1, Stop: 1.5, Count: 3},
		Time:      Sweep{Start: 0, Stop: 15, Count: 16},
		Palette:   "rainbow",
		Tolerance: 1e-3,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	fam := testFamily(t)
	runID, err := st.Save(testMeta(), fam)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "scene_") {
		t.Errorf("expected preset-based id, got %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.K != 1 || meta.Time.Count != 16 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if len(meta.Curves) != 3 {
		t.Fatalf("expected 3 curve summaries, got %d", len(meta.Curves))
	}
	if meta.Curves[0].InflectionTime == nil {
		t.Error("expected inflection time for x0=0.1")
	}
	if meta.Curves[2].InflectionTime != nil {
		t.Error("expected no inflection time above K")
	}

	times, series, err := st.LoadCurves(runID)
	if err != nil {
		t.Fatalf("load curves failed: %v", err)
	}
	if diff := cmp.Diff(fam.Times, times); diff != "" {
		t.Errorf("times mismatch (-want +got):\n%s", diff)
	}
	want := make([]Series, len(fam.Curves))
	for i, c := range fam.Curves {
		want[i] = Series{X0: c.X0, Values: c.Values()}
	}
	if diff := cmp.Diff(want, series, cmpopts.EquateApprox(0, 1e-15)); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	fam := testFamily(t)

	meta := testMeta()
	meta.ID = "fixed"
	first, err := st.Save(meta, fam)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(meta, fam)
	if err != nil {
		t.Fatal(err)
	}
	if first != "fixed" || second != "fixed_1" {
		t.Errorf("expected fixed and fixed_1, got %s and %s", first, second)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	fam := testFamily(t)
	for _, id := range []string{"b", "a"} {
		meta := testMeta()
		meta.ID = id
		if _, err := st.Save(meta, fam); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(st.baseDir+"/junk", 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].Timestamp.Before(runs[1].Timestamp) && !runs[0].Timestamp.Equal(runs[1].Timestamp) {
		t.Error("expected runs ordered by timestamp")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, _, err := st.LoadCurves("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	fam := testFamily(t)
	runID, err := st.Save(testMeta(), fam)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.ID != runID || data.Steps != 16 || len(data.Series) != 3 {
		t.Errorf("unexpected export: id=%s steps=%d series=%d", data.ID, data.Steps, len(data.Series))
	}
	last := data.Series[2].Values[15]
	if math.Abs(last-fam.Curves[2].Final()) > 1e-15 {
		t.Errorf("expected final value %v, got %v", fam.Curves[2].Final(), last)
	}
}

func TestExportCSV(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(testMeta(), testFamily(t))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportCSV(&buf, runID); err != nil {
		t.Fatal(err)
	}
	header, _, _ := strings.Cut(buf.String(), "\n")
	if header != "time,x0=0.1,x0=0.25,x0=1.5" {
		t.Errorf("unexpected header %q", header)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 17 {
		t.Errorf("expected 17 lines, got %d", lines)
	}
}

func TestStoreSaveFailureCleansUp(t *testing.T) {
	st := New(t.TempDir())
	meta := testMeta()
	meta.ID = "broken"
	meta.K = math.NaN()

	if _, err := st.Save(meta, testFamily(t)); err == nil {
		t.Fatal("expected metadata encoding error")
	}
	if _, err := os.Stat(filepath.Join(st.baseDir, "broken")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected run directory removed, got %v", err)
	}

	meta.K = 1
	runID, err := st.Save(meta, testFamily(t))
	if err != nil {
		t.Fatal(err)
	}
	if runID != "broken" {
		t.Errorf("expected the freed id to be reused, got %s", runID)
	}
}
