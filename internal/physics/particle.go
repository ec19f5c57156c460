package physics

import (
	"fmt"

	"github.com/san-kum/chainsim/internal/dynamo"
)

// Particle is a point mass advanced by position Verlet.
// Velocity is implied by Pos - Prev; no explicit velocity is stored.
type Particle struct {
	Pos    dynamo.Vec2
	Prev   dynamo.Vec2
	Mass   float64
	Pinned bool

	anchor dynamo.Vec2
}

// NewParticle creates a free particle at rest at pos.
func NewParticle(pos dynamo.Vec2, mass float64) (Particle, error) {
	if err := checkParticle(pos, mass); err != nil {
		return Particle{}, err
	}
	return Particle{Pos: pos, Prev: pos, Mass: mass, anchor: pos}, nil
}

// NewPinned creates a particle held at anchor for its whole lifetime.
func NewPinned(anchor dynamo.Vec2, mass float64) (Particle, error) {
	p, err := NewParticle(anchor, mass)
	if err != nil {
		return Particle{}, err
	}
	p.Pinned = true
	return p, nil
}

func checkParticle(pos dynamo.Vec2, mass float64) error {
	if !pos.IsFinite() {
		return fmt.Errorf("%w: particle position %v", dynamo.ErrInvalidState, pos)
	}
	if !dynamo.IsFinite(mass) || mass <= 0 {
		return dynamo.ParamError("mass", mass)
	}
	return nil
}

// Anchor returns the position a pinned particle is held at.
func (p *Particle) Anchor() dynamo.Vec2 { return p.anchor }

// Velocity returns the implied per-step displacement.
func (p *Particle) Velocity() dynamo.Vec2 { return p.Pos.Sub(p.Prev) }

// Integrate advances the particle one Verlet step:
//
//	next = 2*pos - prev + acc*dt^2
//
// A pinned particle is integrated first and then snapped back to its anchor;
// Prev keeps the integrated value.
func (p *Particle) Integrate(dt float64, acc dynamo.Vec2) {
	dt2 := dt * dt
	next := dynamo.Vec2{
		X: 2*p.Pos.X - p.Prev.X + acc.X*dt2,
		Y: 2*p.Pos.Y - p.Prev.Y + acc.Y*dt2,
	}
	p.Prev = p.Pos
	p.Pos = next

	if p.Pinned {
		p.Pos = p.anchor
	}
}

// Accel converts a force into acceleration for this particle.
func (p *Particle) Accel(force dynamo.Vec2) dynamo.Vec2 {
	return dynamo.Vec2{X: force.X / p.Mass, Y: force.Y / p.Mass}
}
