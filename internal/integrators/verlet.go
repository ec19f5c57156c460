package integrators

import (
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/physics"
)

// Stepper advances every particle of a chain by dt under a uniform force.
type Stepper interface {
	Step(ps []physics.Particle, force dynamo.Vec2, dt float64)
}

// PositionVerlet integrates each particle with acceleration force/mass.
// The force is the same for every particle; heavier particles fall slower.
type PositionVerlet struct{}

func NewPositionVerlet() *PositionVerlet {
	return &PositionVerlet{}
}

func (v *PositionVerlet) Step(ps []physics.Particle, force dynamo.Vec2, dt float64) {
	for i := range ps {
		p := &ps[i]
		p.Integrate(dt, p.Accel(force))
	}
}
