package physics

import "github.com/san-kum/chainsim/internal/dynamo"

// LineSpec describes the canonical rope: Count particles hanging straight
// down from Origin, Segment apart, each linked to the next.
type LineSpec struct {
	Origin     dynamo.Vec2
	Count      int
	Segment    float64
	Mass       float64
	HandleMass float64 // 0 means same as Mass
	PinFirst   bool
	Width      float64
	Height     float64
}

// NewLine builds a vertical rope whose last particle is the handle.
func NewLine(spec LineSpec) (*Chain, error) {
	if spec.Count < 1 {
		return nil, dynamo.ParamError("count", spec.Count)
	}
	if !dynamo.IsFinite(spec.Segment) || spec.Segment < 0 {
		return nil, dynamo.ParamError("segment", spec.Segment)
	}

	c, err := NewChain(spec.Width, spec.Height)
	if err != nil {
		return nil, err
	}

	handleMass := spec.HandleMass
	if handleMass == 0 {
		handleMass = spec.Mass
	}

	for i := 0; i < spec.Count; i++ {
		pos := dynamo.Vec2{X: spec.Origin.X, Y: spec.Origin.Y + float64(i)*spec.Segment}
		mass := spec.Mass
		if i == spec.Count-1 {
			mass = handleMass
		}

		var p Particle
		if i == 0 && spec.PinFirst {
			p, err = NewPinned(pos, mass)
		} else {
			p, err = NewParticle(pos, mass)
		}
		if err != nil {
			return nil, err
		}
		if _, err := c.Add(p); err != nil {
			return nil, err
		}
		if i > 0 {
			if _, err := c.Connect(i-1, i); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// NewBrace builds the four-corner box with one diagonal: a closed loop of
// sticks whose graph has cycles. The last corner is the handle.
func NewBrace(corners [4]dynamo.Vec2, mass, width, height float64) (*Chain, error) {
	c, err := NewChain(width, height)
	if err != nil {
		return nil, err
	}
	for _, pos := range corners {
		p, err := NewParticle(pos, mass)
		if err != nil {
			return nil, err
		}
		if _, err := c.Add(p); err != nil {
			return nil, err
		}
	}
	for _, pair := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}} {
		if _, err := c.Connect(pair[0], pair[1]); err != nil {
			return nil, err
		}
	}
	return c, nil
}
