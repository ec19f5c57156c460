package metrics

import (
	"math"

	"github.com/san-kum/chainsim/internal/sim"
)

// Stability is the fraction of frames in which every stick stayed within
// threshold relative stretch.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f sim.Frame) {
	s.samples++
	for _, seg := range f.Segments {
		if math.Abs(seg.Stretch()) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxStretch tracks the worst relative stick deviation seen in a run.
type MaxStretch struct {
	max float64
}

func NewMaxStretch() *MaxStretch { return &MaxStretch{} }

func (m *MaxStretch) Name() string { return "max_stretch" }

func (m *MaxStretch) Observe(f sim.Frame) {
	m.max = math.Max(m.max, FrameStretch(f))
}

func (m *MaxStretch) Value() float64 { return m.max }
func (m *MaxStretch) Reset()         { m.max = 0 }

// MeanStretch averages the per-frame mean absolute stretch.
type MeanStretch struct {
	sum     float64
	samples int
}

func NewMeanStretch() *MeanStretch { return &MeanStretch{} }

func (m *MeanStretch) Name() string { return "mean_stretch" }

func (m *MeanStretch) Observe(f sim.Frame) {
	if len(f.Segments) == 0 {
		return
	}
	total := 0.0
	for _, seg := range f.Segments {
		total += math.Abs(seg.Stretch())
	}
	m.sum += total / float64(len(f.Segments))
	m.samples++
}

func (m *MeanStretch) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanStretch) Reset() {
	m.sum = 0
	m.samples = 0
}

// FrameStretch returns the largest absolute relative stretch in f.
func FrameStretch(f sim.Frame) float64 {
	worst := 0.0
	for _, seg := range f.Segments {
		worst = math.Max(worst, math.Abs(seg.Stretch()))
	}
	return worst
}
