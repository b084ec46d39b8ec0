// Package storage keeps sampled runs on disk, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/growth"
)

const (
	metadataFile = "metadata.json"
	curvesFile   = "curves.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Sweep struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
	Count int     `json:"count"`
}

// CurveSummary holds per-curve metrics. Times are omitted when the curve
// never settles or has no inflection.
type CurveSummary struct {
	Index          int      `json:"index"`
	X0             float64  `json:"x0"`
	Color          string   `json:"color"`
	Final          float64  `json:"final"`
	SettlingTime   *float64 `json:"settling_time,omitempty"`
	InflectionTime *float64 `json:"inflection_time,omitempty"`
}

type RunMetadata struct {
	ID        string         `json:"id"`
	Preset    string         `json:"preset"`
	Timestamp time.Time      `json:"timestamp"`
	K         float64        `json:"k"`
	A         float64        `json:"a"`
	Initial   Sweep          `json:"initial"`
	Time      Sweep          `json:"time"`
	Palette   string         `json:"palette"`
	Tolerance float64        `json:"tolerance"`
	Curves    []CurveSummary `json:"curves"`
}

// Summarize computes the metrics stored alongside a family.
func Summarize(fam *family.Family, tol float64) []CurveSummary {
	out := make([]CurveSummary, 0, len(fam.Curves))
	for _, c := range fam.Curves {
		s := CurveSummary{Index: c.Index, X0: c.X0, Color: c.Color.Hex(), Final: c.Final()}
		if t, ok := growth.SettlingTime(c.Curve, tol); ok {
			s.SettlingTime = &t
		}
		if t, ok := growth.InflectionTime(c.Curve); ok {
			s.InflectionTime = &t
		}
		out = append(out, s)
	}
	return out
}

// Save writes meta and the sampled family. An empty meta.ID is assigned
// from the preset and the current time; the curve summaries are filled in
// when meta has none.
func (s *Store) Save(meta RunMetadata, fam *family.Family) (string, error) {
	if fam == nil {
		return "", errors.New("storage: nil family")
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.Curves == nil {
		meta.Curves = Summarize(fam, meta.Tolerance)
	}
	if meta.ID == "" {
		name := meta.Preset
		if name == "" {
			name = "run"
		}
		meta.ID = fmt.Sprintf("%s_%d", name, meta.Timestamp.Unix())
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	for i := 1; ; i++ {
		if _, err := os.Stat(runDir); errors.Is(err, os.ErrNotExist) {
			break
		}
		runDir = filepath.Join(s.baseDir, fmt.Sprintf("%s_%d", meta.ID, i))
		if i > 1000 {
			return "", fmt.Errorf("storage: no free run id for %s", meta.ID)
		}
	}
	meta.ID = filepath.Base(runDir)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, meta, fam); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return meta.ID, nil
}

// writeRun writes both run files into runDir.
func writeRun(runDir string, meta RunMetadata, fam *family.Family) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		metaFile.Close()
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := metaFile.Close(); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, curvesFile))
	if err != nil {
		return err
	}
	if err := writeCurves(csvFile, fam); err != nil {
		csvFile.Close()
		return fmt.Errorf("write curves: %w", err)
	}
	return csvFile.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeCurves writes one row per sample: time, then each curve's value.
func writeCurves(out io.Writer, fam *family.Family) error {
	w := csv.NewWriter(out)

	header := []string{"time"}
	for _, c := range fam.Curves {
		header = append(header, "x0="+formatFloat(c.X0))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	values := make([][]float64, len(fam.Curves))
	for j, c := range fam.Curves {
		values[j] = c.Values()
	}
	for i, t := range fam.Times {
		row := []string{formatFloat(t)}
		for j := range fam.Curves {
			row = append(row, formatFloat(values[j][i]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return &meta, nil
}

// Series is one stored curve.
type Series struct {
	X0     float64   `json:"x0"`
	Values []float64 `json:"values"`
}

// LoadCurves reads the sampled curves of a run.
func (s *Store) LoadCurves(runID string) ([]float64, []Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, curvesFile))
	if err != nil {
		return nil, nil, fmt.Errorf("load curves %s: %w", runID, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("load curves %s: %w", runID, err)
	}
	if len(records) == 0 {
		return []float64{}, []Series{}, nil
	}

	header := records[0]
	series := make([]Series, 0, len(header)-1)
	for _, h := range header[1:] {
		x0, err := strconv.ParseFloat(strings.TrimPrefix(h, "x0="), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("load curves %s: bad column %q", runID, h)
		}
		series = append(series, Series{X0: x0, Values: make([]float64, 0, len(records)-1)})
	}

	times := make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("load curves %s: row %d: %w", runID, i+1, err)
		}
		times = append(times, t)
		for j := range series {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("load curves %s: row %d: %w", runID, i+1, err)
			}
			series[j].Values = append(series[j].Values, v)
		}
	}
	return times, series, nil
}

type ExportData struct {
	RunMetadata
	Steps  int       `json:"steps"`
	Times  []float64 `json:"times"`
	Series []Series  `json:"series"`
}

// ExportJSON writes a run and its curves as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := s.LoadCurves(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: *meta, Steps: len(times), Times: times, Series: series})
}

// ExportCSV copies a run's curves file to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	file, err := os.Open(filepath.Join(s.baseDir, runID, curvesFile))
	if err != nil {
		return fmt.Errorf("export %s: %w", runID, err)
	}
	defer file.Close()
	_, err = io.Copy(w, file)
	return err
}
