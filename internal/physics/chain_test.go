package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/chainsim/internal/dynamo"
)

func TestNewLine(t *testing.T) {
	c, err := NewLine(LineSpec{
		Origin:     dynamo.Vec2{X: 50, Y: 0},
		Count:      3,
		Segment:    20,
		Mass:       1,
		HandleMass: 4,
		PinFirst:   true,
		Width:      100,
		Height:     100,
	})
	if err != nil {
		t.Fatalf("new line: %v", err)
	}

	if len(c.Particles) != 3 || len(c.Sticks) != 2 {
		t.Fatalf("expected 3 particles and 2 sticks, got %d and %d", len(c.Particles), len(c.Sticks))
	}
	if c.Handle != 2 {
		t.Errorf("expected handle 2, got %d", c.Handle)
	}
	if !c.Particles[0].Pinned || c.Particles[0].Anchor() != (dynamo.Vec2{X: 50, Y: 0}) {
		t.Errorf("expected first particle pinned at (50,0)")
	}
	if c.Particles[2].Mass != 4 {
		t.Errorf("expected handle mass 4, got %f", c.Particles[2].Mass)
	}
	for i, s := range c.Sticks {
		if s.RestLength != 20 {
			t.Errorf("stick %d: expected rest 20, got %f", i, s.RestLength)
		}
	}
	if err := c.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestNewBraceHasCycle(t *testing.T) {
	c, err := NewBrace([4]dynamo.Vec2{{X: 220, Y: 20}, {X: 280, Y: 20}, {X: 280, Y: 60}, {X: 220, Y: 80}}, 10000, 500, 500)
	if err != nil {
		t.Fatalf("new brace: %v", err)
	}
	if len(c.Sticks) != 5 {
		t.Fatalf("expected 5 sticks, got %d", len(c.Sticks))
	}
	if c.Sticks[3].A != 3 || c.Sticks[3].B != 0 {
		t.Errorf("expected closing stick 3-0, got %d-%d", c.Sticks[3].A, c.Sticks[3].B)
	}
}

func TestConnectErrors(t *testing.T) {
	c, _ := NewChain(10, 10)
	p, _ := NewParticle(dynamo.Vec2{X: 1, Y: 1}, 1)
	c.Add(p)

	if _, err := c.Connect(0, 0); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for self link, got %v", err)
	}
	if _, err := c.Connect(0, 5); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for bad index, got %v", err)
	}
	if err := c.SetHandle(-1); err == nil {
		t.Error("expected error for negative handle")
	}
}

func TestValidateEmpty(t *testing.T) {
	c, _ := NewChain(10, 10)
	if err := c.Validate(); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewChain(0, 10); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestReset(t *testing.T) {
	c, _ := NewLine(LineSpec{Origin: dynamo.Vec2{X: 5}, Count: 2, Segment: 3, Mass: 1, Width: 10, Height: 10})
	c.Particles[1].Pos = dynamo.Vec2{X: 9, Y: 9}

	c.Reset()

	if c.Particles[1].Pos != (dynamo.Vec2{X: 5, Y: 3}) {
		t.Errorf("expected reset to (5,3), got %v", c.Particles[1].Pos)
	}
}

func TestRelaxInsertionOrder(t *testing.T) {
	// three collinear particles, both sticks stretched; the second stick sees
	// the middle particle already moved by the first
	c, _ := NewChain(100, 100)
	for _, x := range []float64{0, 10, 20} {
		p, _ := NewParticle(dynamo.Vec2{X: x}, 1)
		c.Add(p)
	}
	c.Connect(0, 1)
	c.Connect(1, 2)
	c.Particles[0].Pos.X = -10
	c.Particles[2].Pos.X = 30

	c.Relax()

	// stick 0-1: length 20, rest 10 -> each moves 5: p0=-5, p1=5
	// stick 1-2: length 25, rest 10 -> each moves 7.5: p1=12.5, p2=22.5
	want := []float64{-5, 12.5, 22.5}
	for i, w := range want {
		if math.Abs(c.Particles[i].Pos.X-w) > 1e-9 {
			t.Errorf("particle %d: expected x=%f, got %f", i, w, c.Particles[i].Pos.X)
		}
	}
}
