package physics

import (
	"fmt"

	"github.com/san-kum/chainsim/internal/dynamo"
)

// Chain owns a flat arena of particles and the sticks linking them.
// Sticks hold indices, so any number of them may share a particle and the
// link graph may contain cycles.
type Chain struct {
	Particles []Particle
	Sticks    []Stick
	Handle    int
	Width     float64
	Height    float64

	initial []Particle
}

// NewChain creates an empty chain confined to a width x height viewport.
func NewChain(width, height float64) (*Chain, error) {
	if !dynamo.IsFinite(width) || width <= 0 {
		return nil, dynamo.ParamError("width", width)
	}
	if !dynamo.IsFinite(height) || height <= 0 {
		return nil, dynamo.ParamError("height", height)
	}
	return &Chain{Width: width, Height: height, Handle: -1}, nil
}

// Add appends a particle and returns its index. The last particle added
// becomes the handle unless SetHandle is called afterwards.
func (c *Chain) Add(p Particle) (int, error) {
	if err := checkParticle(p.Pos, p.Mass); err != nil {
		return -1, err
	}
	c.Particles = append(c.Particles, p)
	c.initial = append(c.initial, p)
	c.Handle = len(c.Particles) - 1
	return c.Handle, nil
}

// Connect links particles a and b with a stick whose rest length is their
// current distance.
func (c *Chain) Connect(a, b int) (int, error) {
	if err := c.checkIndex(a); err != nil {
		return -1, err
	}
	if err := c.checkIndex(b); err != nil {
		return -1, err
	}
	if a == b {
		return -1, fmt.Errorf("%w: stick endpoints must differ (%d)", dynamo.ErrInvalidConfig, a)
	}
	rest := dynamo.Dist(c.Particles[a].Pos, c.Particles[b].Pos)
	c.Sticks = append(c.Sticks, Stick{A: a, B: b, RestLength: rest})
	return len(c.Sticks) - 1, nil
}

// SetHandle designates the particle eligible for pointer attachment.
func (c *Chain) SetHandle(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.Handle = i
	return nil
}

func (c *Chain) checkIndex(i int) error {
	if i < 0 || i >= len(c.Particles) {
		return fmt.Errorf("%w: particle index %d out of range [0,%d)", dynamo.ErrInvalidConfig, i, len(c.Particles))
	}
	return nil
}

// HandlePos returns the handle particle's current position.
func (c *Chain) HandlePos() dynamo.Vec2 {
	return c.Particles[c.Handle].Pos
}

// Relax runs a single pass over all sticks in insertion order.
func (c *Chain) Relax() {
	for _, s := range c.Sticks {
		s.Relax(c.Particles)
	}
}

// ClampAll keeps every particle inside the viewport.
func (c *Chain) ClampAll() {
	for i := range c.Particles {
		Clamp(&c.Particles[i], c.Width, c.Height)
	}
}

// Reset restores every particle to the layout it was added with.
func (c *Chain) Reset() {
	copy(c.Particles, c.initial)
}

// Validate checks the chain is ready to simulate.
func (c *Chain) Validate() error {
	if len(c.Particles) == 0 {
		return fmt.Errorf("%w: chain has no particles", dynamo.ErrInvalidConfig)
	}
	if err := c.checkIndex(c.Handle); err != nil {
		return err
	}
	for i := range c.Particles {
		if err := checkParticle(c.Particles[i].Pos, c.Particles[i].Mass); err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
	}
	for i, s := range c.Sticks {
		if s.RestLength < 0 || !dynamo.IsFinite(s.RestLength) {
			return fmt.Errorf("stick %d: %w", i, dynamo.ParamError("rest_length", s.RestLength))
		}
	}
	return nil
}
