package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/chainsim/internal/sim"
)

type ExportData struct {
	ID      string             `json:"id"`
	Preset  string             `json:"preset"`
	Dt      float64            `json:"dt"`
	Frames  int                `json:"frames"`
	Handle  int                `json:"handle"`
	Sticks  []StickMeta        `json:"sticks"`
	Times   []float64          `json:"times"`
	States  []string           `json:"states"`
	Points  [][][2]float64     `json:"points"`
	Metrics map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run's metadata and frames as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, frames []sim.Frame) error {
	data := ExportData{
		ID:      meta.ID,
		Preset:  meta.Preset,
		Dt:      meta.Dt,
		Frames:  len(frames),
		Handle:  meta.Handle,
		Sticks:  meta.Sticks,
		Times:   make([]float64, len(frames)),
		States:  make([]string, len(frames)),
		Points:  make([][][2]float64, len(frames)),
		Metrics: meta.Metrics,
	}

	for i, f := range frames {
		data.Times[i] = f.Time
		data.States[i] = f.State.String()
		pts := make([][2]float64, len(f.Particles))
		for j, p := range f.Particles {
			pts[j] = [2]float64{p.X, p.Y}
		}
		data.Points[i] = pts
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
