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
	"time"

	"github.com/san-kum/billiard/internal/config"
	"github.com/san-kum/billiard/internal/sim"
)

var ErrMalformedStates = errors.New("storage: malformed states file")

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	configFile   = "config.yaml"
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

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Discs     int                `json:"discs"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Rule      string             `json:"collision_rule"`
	Contact   string             `json:"contact"`
	HostDecay bool               `json:"host_decay"`
	Steps     int                `json:"steps"`
	Contacts  int                `json:"contacts"`
	WallHits  int                `json:"wall_hits"`
	RestTime  float64            `json:"rest_time"`
	Errors    []string           `json:"errors,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding the metadata, the sampled states and
// the configuration that produced them.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	name := cfg.Name
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Discs:     len(cfg.Discs),
		Dt:        cfg.Run.Dt,
		Duration:  cfg.Run.Duration,
		Rule:      cfg.Physics.CollisionRule,
		Contact:   cfg.Physics.Contact,
		HostDecay: cfg.Run.HostDecay,
		Steps:     result.StepsTaken,
		Contacts:  result.Contacts,
		WallHits:  result.WallHits,
		RestTime:  result.RestTime,
		Metrics:   result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, len(cfg.Discs), result); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Header names the states.csv columns for n discs.
func Header(n int) []string {
	header := make([]string, 0, 1+4*n)
	header = append(header, "time")
	for i := 0; i < n; i++ {
		header = append(header,
			fmt.Sprintf("d%d_x", i),
			fmt.Sprintf("d%d_y", i),
			fmt.Sprintf("d%d_vx", i),
			fmt.Sprintf("d%d_vy", i),
		)
	}
	return header
}

// WriteCSV writes the sampled states of a run with one row per sample.
func WriteCSV(out io.Writer, discs int, result *sim.Result) error {
	w := csv.NewWriter(out)

	if err := w.Write(Header(discs)); err != nil {
		return err
	}

	for i := range result.States {
		row := make([]string, 0, 1+len(result.States[i]))
		row = append(row, strconv.FormatFloat(result.Times[i], 'f', 6, 64))
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the saved runs, oldest first.
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
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadConfig reads back the configuration a run was saved with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedStates, err)
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: %w", ErrMalformedStates, i, err)
		}
		times = append(times, t)

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: row %d col %d: %w", ErrMalformedStates, i, j, err)
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return states, times, nil
}
