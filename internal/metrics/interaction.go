package metrics

import (
	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/sim"
)

// AttachedShare is the fraction of frames the handle spent attached to the
// pointer.
type AttachedShare struct {
	name     string
	attached int
	samples  int
}

func NewAttachedShare() *AttachedShare {
	return &AttachedShare{
		name: "attached_share",
	}
}

func (a *AttachedShare) Name() string {
	return a.name
}

func (a *AttachedShare) Observe(f sim.Frame) {
	if f.State == control.Attached {
		a.attached++
	}
	a.samples++
}

func (a *AttachedShare) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.attached) / float64(a.samples)
}

func (a *AttachedShare) Reset() {
	a.attached = 0
	a.samples = 0
}

// HandleTravel sums the path length walked by the handle particle.
type HandleTravel struct {
	last    dynamo.Vec2
	started bool
	total   float64
}

func NewHandleTravel() *HandleTravel { return &HandleTravel{} }

func (h *HandleTravel) Name() string { return "handle_travel" }

func (h *HandleTravel) Observe(f sim.Frame) {
	pos := f.HandlePos()
	if h.started {
		h.total += dynamo.Dist(pos, h.last)
	}
	h.last = pos
	h.started = true
}

func (h *HandleTravel) Value() float64 { return h.total }

func (h *HandleTravel) Reset() {
	h.started = false
	h.total = 0
}

// Flings counts frames that ended in a fling release.
type Flings struct {
	count int
}

func NewFlings() *Flings { return &Flings{} }

func (c *Flings) Name() string { return "flings" }

func (c *Flings) Observe(f sim.Frame) {
	if f.Flung {
		c.count++
	}
}

func (c *Flings) Value() float64 { return float64(c.count) }
func (c *Flings) Reset()         { c.count = 0 }

// Defaults returns the metric set recorded for every run.
func Defaults(stretchTolerance float64) []sim.Metric {
	return []sim.Metric{
		NewMaxStretch(),
		NewMeanStretch(),
		NewStability(stretchTolerance),
		NewMotion(),
		NewHandleTravel(),
		NewAttachedShare(),
		NewFlings(),
	}
}
