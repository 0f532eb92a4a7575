package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/geartrain/internal/problem"
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

type ComponentMeta struct {
	Kind   string  `json:"kind"`
	Ratio  float64 `json:"ratio"`
	Cost   float64 `json:"cost"`
	Volume float64 `json:"volume"`
}

type RunMetadata struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Problem     string          `json:"problem,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Ratio       float64         `json:"ratio"`
	GearRatio   float64         `json:"gear_ratio"`
	Volume      float64         `json:"volume"`
	Collisions  float64         `json:"collisions"`
	Components  []ComponentMeta `json:"components"`
	Objectives  []float64       `json:"objectives,omitempty"`
	Constraints []float64       `json:"constraints,omitempty"`
	Feasible    bool            `json:"feasible"`
}

// Save writes the evaluation under a new run directory. p may be nil for
// an evaluation without problem scoring.
func (s *Store) Save(name string, p *problem.Problem, e *problem.Evaluation) (string, error) {
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	a := e.Actuator
	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   time.Now(),
		Ratio:       a.Ratio(),
		GearRatio:   a.GearRatio(),
		Volume:      a.Volume(),
		Collisions:  a.InternalCollisions(),
		Objectives:  e.Objectives,
		Constraints: e.Constraints,
	}
	for _, c := range a.Components() {
		meta.Components = append(meta.Components, ComponentMeta{
			Kind:   c.Kind().String(),
			Ratio:  c.Ratio(),
			Cost:   c.Cost(),
			Volume: c.Volume(),
		})
	}
	if p != nil {
		meta.Problem = p.Name
		meta.Feasible = p.Feasible(e)
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "conditions.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writeConditions(csvFile, e); err != nil {
		return "", err
	}

	return runID, nil
}

func writeConditions(out io.Writer, e *problem.Evaluation) error {
	w := csv.NewWriter(out)
	if err := w.Write(ConditionHeader(len(e.Resistance))); err != nil {
		return err
	}
	for _, row := range ConditionRows(e) {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'g', 10, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ConditionHeader names the columns of the per-condition table for a chain
// with nGears gear pairs.
func ConditionHeader(nGears int) []string {
	header := []string{"target_speed", "target_torque", "v", "control_speed",
		"out_speed", "out_torque", "current", "torque_error"}
	for g := 0; g < nGears; g++ {
		header = append(header,
			fmt.Sprintf("sh_p%d", g), fmt.Sprintf("sh_g%d", g),
			fmt.Sprintf("sf_p%d", g), fmt.Sprintf("sf_g%d", g))
	}
	return header
}

// ConditionRows flattens an evaluation into one row per operating
// condition, in ConditionHeader order.
func ConditionRows(e *problem.Evaluation) [][]float64 {
	rows := make([][]float64, len(e.Output))
	for i, out := range e.Output {
		tgt := e.Targets[i]
		row := []float64{tgt.Speed, tgt.Torque, tgt.V, e.Control[i].Speed,
			out.Speed, out.Torque, out.IMax, e.TorqueError[i]}
		for _, perCond := range e.Resistance {
			r := perCond[i]
			row = append(row, r[0], r[1], r[2], r[3])
		}
		rows[i] = row
	}
	return rows
}

// List returns stored runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadConditions reads the per-condition table of a run.
func (s *Store) LoadConditions(runID string) ([]string, [][]float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "conditions.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) == 0 {
		return []string{}, [][]float64{}, nil
	}

	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]float64, 0, len(record))
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s: %w", runID, err)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	return records[0], rows, nil
}
