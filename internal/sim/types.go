package sim

import (
	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
)

// Segment is a stick's two endpoints as they stood at the end of a frame.
type Segment struct {
	A, B       dynamo.Vec2
	RestLength float64
}

// Stretch returns the relative deviation of the segment from its rest length.
func (s Segment) Stretch() float64 {
	l := dynamo.Dist(s.A, s.B)
	if s.RestLength == 0 {
		return l
	}
	return (l - s.RestLength) / s.RestLength
}

// Frame is a read-only snapshot handed to renderers after each step.
type Frame struct {
	Index      int
	Time       float64
	Particles  []dynamo.Vec2
	Segments   []Segment
	Handle     int
	Pointer    dynamo.Vec2
	NearHandle bool
	Flung      bool
	State      control.State
}

func (f Frame) HandlePos() dynamo.Vec2 {
	if f.Handle < 0 || f.Handle >= len(f.Particles) {
		return dynamo.Vec2{}
	}
	return f.Particles[f.Handle]
}

func (f Frame) IsValid() bool {
	for _, p := range f.Particles {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// Config controls a headless run. Dt is in the same time unit the
// configured gravity and masses were tuned for.
type Config struct {
	Dt            float64
	Frames        int
	ValidateState bool
	KeepFrames    bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            16,
		Frames:        600,
		ValidateState: true,
		KeepFrames:    true,
	}
}

type Result struct {
	Frames     []Frame
	Final      Frame
	Metrics    map[string]float64
	Flings     int
	StepsTaken int
	Errors     []error
}
