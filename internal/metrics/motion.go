package metrics

import (
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/sim"
)

// Motion averages the summed squared displacement of all particles between
// consecutive frames. Verlet keeps no velocity, so this stands in for
// kinetic energy per unit mass.
type Motion struct {
	name    string
	prev    []dynamo.Vec2
	total   float64
	samples int
}

func NewMotion() *Motion {
	return &Motion{name: "motion"}
}

func (m *Motion) Name() string { return m.name }

func (m *Motion) Observe(f sim.Frame) {
	if len(m.prev) == len(f.Particles) {
		sum := 0.0
		for i, p := range f.Particles {
			d := p.Sub(m.prev[i])
			sum += d.X*d.X + d.Y*d.Y
		}
		m.total += sum
		m.samples++
	}
	m.prev = append(m.prev[:0], f.Particles...)
}

func (m *Motion) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *Motion) Reset() {
	m.prev = m.prev[:0]
	m.total = 0
	m.samples = 0
}
