package physics

import (
	"math"
	"testing"

	"github.com/san-kum/chainsim/internal/dynamo"
)

func pair(t *testing.T, a, b dynamo.Vec2) []Particle {
	t.Helper()
	pa, err := NewParticle(a, 1)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := NewParticle(b, 1)
	if err != nil {
		t.Fatal(err)
	}
	return []Particle{pa, pb}
}

func TestRelaxHalvesCorrection(t *testing.T) {
	ps := pair(t, dynamo.Vec2{X: 0, Y: 0}, dynamo.Vec2{X: 10, Y: 0})
	s := Stick{A: 0, B: 1, RestLength: 5}

	s.Relax(ps)

	if ps[0].Pos != (dynamo.Vec2{X: 2.5, Y: 0}) {
		t.Errorf("expected a at (2.5,0), got %v", ps[0].Pos)
	}
	if ps[1].Pos != (dynamo.Vec2{X: 7.5, Y: 0}) {
		t.Errorf("expected b at (7.5,0), got %v", ps[1].Pos)
	}
}

func TestRelaxIsSymmetric(t *testing.T) {
	tests := []struct {
		name string
		a, b dynamo.Vec2
		rest float64
	}{
		{"compressed", dynamo.Vec2{X: 1, Y: 1}, dynamo.Vec2{X: 2, Y: 3}, 6},
		{"stretched", dynamo.Vec2{X: -4, Y: 2}, dynamo.Vec2{X: 9, Y: -7}, 3},
		{"zero rest", dynamo.Vec2{X: 0, Y: 0}, dynamo.Vec2{X: 3, Y: 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := pair(t, tt.a, tt.b)
			s := Stick{A: 0, B: 1, RestLength: tt.rest}
			before := s.Length(ps)

			s.Relax(ps)

			da := ps[0].Pos.Sub(tt.a)
			db := ps[1].Pos.Sub(tt.b)
			if math.Abs(da.X+db.X) > 1e-12 || math.Abs(da.Y+db.Y) > 1e-12 {
				t.Errorf("offsets not opposite: %v vs %v", da, db)
			}

			after := s.Length(ps)
			if math.Abs(after-tt.rest) >= math.Abs(before-tt.rest) {
				t.Errorf("length %f did not move toward %f (was %f)", after, tt.rest, before)
			}
		})
	}
}

func TestRelaxAtRestLengthIsNoop(t *testing.T) {
	ps := pair(t, dynamo.Vec2{X: 0, Y: 0}, dynamo.Vec2{X: 3, Y: 4})
	s := Stick{A: 0, B: 1, RestLength: 5}

	s.Relax(ps)

	if ps[0].Pos != (dynamo.Vec2{}) || ps[1].Pos != (dynamo.Vec2{X: 3, Y: 4}) {
		t.Errorf("expected no movement, got %v %v", ps[0].Pos, ps[1].Pos)
	}
}

func TestRelaxCoincidentSkipped(t *testing.T) {
	ps := pair(t, dynamo.Vec2{X: 5, Y: 5}, dynamo.Vec2{X: 5, Y: 5})
	s := Stick{A: 0, B: 1, RestLength: 10}

	s.Relax(ps)

	for i, p := range ps {
		if !p.Pos.IsFinite() || p.Pos != (dynamo.Vec2{X: 5, Y: 5}) {
			t.Errorf("particle %d moved to %v", i, p.Pos)
		}
	}
}

func TestStretch(t *testing.T) {
	ps := pair(t, dynamo.Vec2{}, dynamo.Vec2{X: 12})
	if got := (Stick{A: 0, B: 1, RestLength: 10}).Stretch(ps); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected stretch 0.2, got %f", got)
	}
	if got := (Stick{A: 0, B: 1}).Stretch(ps); got != 12 {
		t.Errorf("expected absolute length for zero rest, got %f", got)
	}
}
