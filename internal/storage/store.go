package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/physics"
	"github.com/san-kum/chainsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	framesHeader = 7 // frame, time, state, near, flung, px, py
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

type StickMeta struct {
	A          int     `json:"a"`
	B          int     `json:"b"`
	RestLength float64 `json:"rest_length"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Frames    int                `json:"frames"`
	Particles int                `json:"particles"`
	Handle    int                `json:"handle"`
	Sticks    []StickMeta        `json:"sticks"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Gravity   [2]float64         `json:"gravity"`
	Flings    int                `json:"flings"`
	Metrics   map[string]float64 `json:"metrics"`
}

// RunInfo describes the setup a result was produced with.
type RunInfo struct {
	Preset  string
	Dt      float64
	Chain   *physics.Chain
	Gravity dynamo.Vec2
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", info.Preset, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    info.Preset,
		Timestamp: time.Now(),
		Dt:        info.Dt,
		Frames:    result.StepsTaken,
		Particles: len(info.Chain.Particles),
		Handle:    info.Chain.Handle,
		Sticks:    make([]StickMeta, len(info.Chain.Sticks)),
		Width:     info.Chain.Width,
		Height:    info.Chain.Height,
		Gravity:   [2]float64{info.Gravity.X, info.Gravity.Y},
		Flings:    result.Flings,
		Metrics:   result.Metrics,
	}
	for i, st := range info.Chain.Sticks {
		meta.Sticks[i] = StickMeta{A: st.A, B: st.B, RestLength: st.RestLength}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), meta.Particles, result.Frames); err != nil {
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

func writeFrames(path string, particles int, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"frame", "time", "state", "near", "flung", "px", "py"}
	for i := 0; i < particles; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, fr := range frames {
		row := []string{
			strconv.Itoa(fr.Index),
			strconv.FormatFloat(fr.Time, 'f', 6, 64),
			fr.State.String(),
			strconv.FormatBool(fr.NearHandle),
			strconv.FormatBool(fr.Flung),
			strconv.FormatFloat(fr.Pointer.X, 'f', 6, 64),
			strconv.FormatFloat(fr.Pointer.Y, 'f', 6, 64),
		}
		for _, p := range fr.Particles {
			row = append(row,
				strconv.FormatFloat(p.X, 'f', 6, 64),
				strconv.FormatFloat(p.Y, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

// LoadFrames reads back the frames of a run. Segments are rebuilt from the
// stick topology in the run's metadata.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for line, record := range records[1:] {
		f, err := parseFrame(record, meta)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseFrame(record []string, meta *RunMetadata) (sim.Frame, error) {
	if len(record) != framesHeader+2*meta.Particles {
		return sim.Frame{}, fmt.Errorf("expected %d fields, got %d", framesHeader+2*meta.Particles, len(record))
	}

	idx, err := strconv.Atoi(record[0])
	if err != nil {
		return sim.Frame{}, err
	}
	t, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return sim.Frame{}, err
	}
	near, _ := strconv.ParseBool(record[3])
	flung, _ := strconv.ParseBool(record[4])
	px, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return sim.Frame{}, err
	}
	py, err := strconv.ParseFloat(record[6], 64)
	if err != nil {
		return sim.Frame{}, err
	}

	f := sim.Frame{
		Index:      idx,
		Time:       t,
		Particles:  make([]dynamo.Vec2, meta.Particles),
		Handle:     meta.Handle,
		Pointer:    dynamo.Vec2{X: px, Y: py},
		NearHandle: near,
		Flung:      flung,
		State:      parseState(record[2]),
	}
	for i := range f.Particles {
		x, err := strconv.ParseFloat(record[framesHeader+2*i], 64)
		if err != nil {
			return sim.Frame{}, err
		}
		y, err := strconv.ParseFloat(record[framesHeader+2*i+1], 64)
		if err != nil {
			return sim.Frame{}, err
		}
		f.Particles[i] = dynamo.Vec2{X: x, Y: y}
	}

	f.Segments = make([]sim.Segment, 0, len(meta.Sticks))
	for _, st := range meta.Sticks {
		if st.A >= meta.Particles || st.B >= meta.Particles || st.A < 0 || st.B < 0 {
			continue
		}
		f.Segments = append(f.Segments, sim.Segment{A: f.Particles[st.A], B: f.Particles[st.B], RestLength: st.RestLength})
	}
	return f, nil
}

func parseState(s string) control.State {
	for _, st := range []control.State{control.Idle, control.Pressed, control.Attached} {
		if st.String() == s {
			return st
		}
	}
	return control.Idle
}

// HandleSeries extracts one coordinate of the handle across frames.
// axis 0 is x, anything else is y.
func HandleSeries(frames []sim.Frame, axis int) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		p := f.HandlePos()
		if axis == 0 {
			out[i] = p.X
		} else {
			out[i] = p.Y
		}
	}
	return out
}
