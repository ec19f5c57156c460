package physics

import "github.com/san-kum/chainsim/internal/dynamo"

// Stick is a distance constraint between two particles of a Chain,
// addressed by index. It never owns the particles.
type Stick struct {
	A, B       int
	RestLength float64
}

// Relax applies one correction to the pair, moving each end half of the
// way toward RestLength. Mass is ignored. Coincident ends are skipped.
func (s Stick) Relax(ps []Particle) {
	a, b := &ps[s.A], &ps[s.B]

	delta := a.Pos.Sub(b.Pos)
	length := delta.Len()
	if length == 0 {
		return
	}

	factor := (s.RestLength - length) / length * 0.5
	offset := delta.Scale(factor)

	a.Pos = a.Pos.Add(offset)
	b.Pos = b.Pos.Sub(offset)
}

// Length returns the current distance between the stick's ends.
func (s Stick) Length(ps []Particle) float64 {
	return dynamo.Dist(ps[s.A].Pos, ps[s.B].Pos)
}

// Stretch returns the signed relative deviation from the rest length.
// A zero rest length reports the absolute length instead.
func (s Stick) Stretch(ps []Particle) float64 {
	l := s.Length(ps)
	if s.RestLength == 0 {
		return l
	}
	return (l - s.RestLength) / s.RestLength
}
