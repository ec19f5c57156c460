package control

import (
	"fmt"

	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/physics"
)

// State is the attachment state of the handle.
type State int

const (
	Idle State = iota
	Pressed
	Attached
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Attached:
		return "attached"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Pointer is the host's view of the mouse or touch point for one frame.
type Pointer struct {
	Pos  dynamo.Vec2
	Down bool
}

// Settings configures the distances that drive the state machine.
type Settings struct {
	AttachThreshold float64 // pointer must be closer than this to grab the handle
	DragThreshold   float64 // dragging farther than this from the press point flings
}

func (s Settings) Validate() error {
	if !dynamo.IsFinite(s.AttachThreshold) || s.AttachThreshold < 0 {
		return dynamo.ParamError("attach_threshold", s.AttachThreshold)
	}
	if !dynamo.IsFinite(s.DragThreshold) || s.DragThreshold < 0 {
		return dynamo.ParamError("drag_threshold", s.DragThreshold)
	}
	return nil
}

// FlingEvent describes a drag that exceeded the drag threshold.
type FlingEvent struct {
	Origin   dynamo.Vec2
	Release  dynamo.Vec2
	Distance float64
}

// Controller owns the interaction state for one simulation instance.
type Controller struct {
	settings Settings
	state    State
	pointer  Pointer
	origin   dynamo.Vec2
	wasDown  bool
	// set by a fling, cleared on release: the held button no longer counts
	suppressed bool
	near       bool
	flung      bool
	onFling    func(FlingEvent)
}

func New(settings Settings) *Controller {
	return &Controller{settings: settings}
}

// OnFling registers the callback fired once per fling gesture.
func (c *Controller) OnFling(fn func(FlingEvent)) {
	c.onFling = fn
}

// Update records pointer input for this frame and applies the transitions
// against the handle's current position.
func (c *Controller) Update(p Pointer, handle dynamo.Vec2) {
	pressed := p.Down && !c.wasDown
	c.wasDown = p.Down
	c.pointer = p
	c.flung = false

	if !p.Down {
		c.suppressed = false
	}
	down := p.Down && !c.suppressed
	c.near = dynamo.Dist(handle, p.Pos) < c.settings.AttachThreshold

	if c.state == Idle && pressed && down {
		c.state = Pressed
		c.origin = p.Pos
	}

	switch c.state {
	case Pressed:
		if !down {
			c.state = Idle
		} else if c.near {
			c.state = Attached
		}
	case Attached:
		if !down {
			c.state = Idle
		} else if d := dynamo.Dist(p.Pos, c.origin); d > c.settings.DragThreshold {
			c.fling(d)
		}
	}
}

func (c *Controller) fling(d float64) {
	c.state = Idle
	c.suppressed = true
	c.flung = true
	if c.onFling != nil {
		c.onFling(FlingEvent{Origin: c.origin, Release: c.pointer.Pos, Distance: d})
	}
}

// Override moves the handle onto the pointer while attached.
func (c *Controller) Override(chain *physics.Chain) {
	if c.state != Attached {
		return
	}
	chain.Particles[chain.Handle].Pos = c.pointer.Pos
}

func (c *Controller) State() State { return c.state }

// Near reports whether the pointer was within the attach threshold of the
// handle at the last update. Renderers use it for cursor feedback.
func (c *Controller) Near() bool { return c.near }

// Flung reports whether the last update ended in a fling.
func (c *Controller) Flung() bool { return c.flung }

// Origin returns where the current or last press started.
func (c *Controller) Origin() dynamo.Vec2 { return c.origin }

func (c *Controller) Pointer() Pointer { return c.pointer }

func (c *Controller) Settings() Settings { return c.settings }

// Reset returns the controller to Idle with no pointer history.
func (c *Controller) Reset() {
	onFling := c.onFling
	*c = Controller{settings: c.settings, onFling: onFling}
}
