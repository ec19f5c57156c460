package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/sim"
)

func frame(ps ...dynamo.Vec2) sim.Frame {
	return sim.Frame{Particles: ps, Handle: len(ps) - 1}
}

func TestMotion(t *testing.T) {
	m := NewMotion()

	m.Observe(frame(dynamo.Vec2{}, dynamo.Vec2{X: 1}))
	if m.Value() != 0 {
		t.Errorf("expected zero motion after one frame, got %f", m.Value())
	}

	m.Observe(frame(dynamo.Vec2{Y: 3}, dynamo.Vec2{X: 1, Y: 4}))
	if m.Value() != 25 {
		t.Errorf("expected 25, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero motion after reset")
	}
}

func TestStretchMetrics(t *testing.T) {
	f := sim.Frame{Segments: []sim.Segment{
		{A: dynamo.Vec2{}, B: dynamo.Vec2{X: 12}, RestLength: 10},
		{A: dynamo.Vec2{}, B: dynamo.Vec2{X: 9}, RestLength: 10},
	}}

	maxS := NewMaxStretch()
	meanS := NewMeanStretch()
	stab := NewStability(0.15)
	for _, m := range []sim.Metric{maxS, meanS, stab} {
		m.Observe(f)
	}

	if math.Abs(maxS.Value()-0.2) > 1e-12 {
		t.Errorf("expected max stretch 0.2, got %f", maxS.Value())
	}
	if math.Abs(meanS.Value()-0.15) > 1e-12 {
		t.Errorf("expected mean stretch 0.15, got %f", meanS.Value())
	}
	if stab.Value() != 0 {
		t.Errorf("expected stability 0, got %f", stab.Value())
	}
}

func TestInteractionMetrics(t *testing.T) {
	share := NewAttachedShare()
	travel := NewHandleTravel()
	flings := NewFlings()

	frames := []sim.Frame{
		{Particles: []dynamo.Vec2{{X: 0, Y: 0}}, State: control.Attached},
		{Particles: []dynamo.Vec2{{X: 3, Y: 4}}, State: control.Attached},
		{Particles: []dynamo.Vec2{{X: 3, Y: 10}}, State: control.Idle, Flung: true},
		{Particles: []dynamo.Vec2{{X: 3, Y: 10}}, State: control.Idle},
	}
	for _, f := range frames {
		share.Observe(f)
		travel.Observe(f)
		flings.Observe(f)
	}

	if share.Value() != 0.5 {
		t.Errorf("expected attached share 0.5, got %f", share.Value())
	}
	if travel.Value() != 11 {
		t.Errorf("expected travel 11, got %f", travel.Value())
	}
	if flings.Value() != 1 {
		t.Errorf("expected 1 fling, got %f", flings.Value())
	}
}

func TestDefaultsNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Defaults(0.1) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
