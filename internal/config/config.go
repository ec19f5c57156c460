package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/physics"
	"github.com/san-kum/chainsim/internal/sim"
)

const (
	DefaultWidth           = 500.0
	DefaultHeight          = 500.0
	DefaultCount           = 8
	DefaultSegment         = 25.0
	DefaultMass            = 1000.0
	DefaultGravity         = 9.82
	DefaultAttachThreshold = 20.0
	DefaultDragThreshold   = 250.0
	DefaultDt              = 16.0
	DefaultFrames          = 600
	DefaultStretchTol      = 0.1
)

const (
	LayoutLine  = "line"
	LayoutBrace = "brace"
)

type Config struct {
	Name        string            `yaml:"name"`
	Layout      string            `yaml:"layout"`
	Viewport    ViewportConfig    `yaml:"viewport"`
	Chain       ChainConfig       `yaml:"chain"`
	Gravity     VecConfig         `yaml:"gravity"`
	Interaction InteractionConfig `yaml:"interaction"`
	Run         RunConfig         `yaml:"run"`
	Script      []KeyframeConfig  `yaml:"script"`
}

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ChainConfig struct {
	Count      int         `yaml:"count"`
	Segment    float64     `yaml:"segment"`
	Origin     VecConfig   `yaml:"origin"`
	Mass       float64     `yaml:"mass"`
	HandleMass float64     `yaml:"handle_mass"`
	Pins       []PinConfig `yaml:"pins"`
	Handle     *int        `yaml:"handle"`
	Corners    []VecConfig `yaml:"corners"`
}

// PinConfig holds particle Index at Anchor. A nil anchor keeps the
// particle's layout position.
type PinConfig struct {
	Index  int        `yaml:"index"`
	Anchor *VecConfig `yaml:"anchor"`
}

type VecConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v VecConfig) Vec() dynamo.Vec2 { return dynamo.Vec2{X: v.X, Y: v.Y} }

type InteractionConfig struct {
	AttachThreshold float64 `yaml:"attach_threshold"`
	DragThreshold   float64 `yaml:"drag_threshold"`
}

type RunConfig struct {
	Dt               float64 `yaml:"dt"`
	Frames           int     `yaml:"frames"`
	StretchTolerance float64 `yaml:"stretch_tolerance"`
}

type KeyframeConfig struct {
	Frame int     `yaml:"frame"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Down  bool    `yaml:"down"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:   "rope",
		Layout: LayoutLine,
		Viewport: ViewportConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Chain: ChainConfig{
			Count:   DefaultCount,
			Segment: DefaultSegment,
			Origin:  VecConfig{X: DefaultWidth / 2, Y: 0},
			Mass:    DefaultMass,
			Pins:    []PinConfig{{Index: 0}},
		},
		Gravity: VecConfig{X: 0, Y: DefaultGravity},
		Interaction: InteractionConfig{
			AttachThreshold: DefaultAttachThreshold,
			DragThreshold:   DefaultDragThreshold,
		},
		Run: RunConfig{
			Dt:               DefaultDt,
			Frames:           DefaultFrames,
			StretchTolerance: DefaultStretchTol,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects anything that would put NaN or Inf into the simulation
// or divide by a non-positive mass.
func (c *Config) Validate() error {
	finite := []struct {
		name  string
		value float64
	}{
		{"viewport.width", c.Viewport.Width},
		{"viewport.height", c.Viewport.Height},
		{"chain.segment", c.Chain.Segment},
		{"chain.origin.x", c.Chain.Origin.X},
		{"chain.origin.y", c.Chain.Origin.Y},
		{"chain.mass", c.Chain.Mass},
		{"chain.handle_mass", c.Chain.HandleMass},
		{"gravity.x", c.Gravity.X},
		{"gravity.y", c.Gravity.Y},
		{"interaction.attach_threshold", c.Interaction.AttachThreshold},
		{"interaction.drag_threshold", c.Interaction.DragThreshold},
		{"run.dt", c.Run.Dt},
		{"run.stretch_tolerance", c.Run.StretchTolerance},
	}
	for _, f := range finite {
		if !dynamo.IsFinite(f.value) {
			return dynamo.ParamError(f.name, f.value)
		}
	}

	switch {
	case c.Viewport.Width <= 0:
		return dynamo.ParamError("viewport.width", c.Viewport.Width)
	case c.Viewport.Height <= 0:
		return dynamo.ParamError("viewport.height", c.Viewport.Height)
	case c.Chain.Mass <= 0:
		return dynamo.ParamError("chain.mass", c.Chain.Mass)
	case c.Chain.HandleMass < 0:
		return dynamo.ParamError("chain.handle_mass", c.Chain.HandleMass)
	case c.Run.Dt < 0:
		return dynamo.ParamError("run.dt", c.Run.Dt)
	case c.Run.Frames <= 0:
		return dynamo.ParamError("run.frames", c.Run.Frames)
	}

	settings := c.Settings()
	if err := settings.Validate(); err != nil {
		return err
	}

	count := c.particleCount()
	switch c.Layout {
	case LayoutLine:
		if c.Chain.Count < 1 {
			return dynamo.ParamError("chain.count", c.Chain.Count)
		}
		if c.Chain.Segment < 0 {
			return dynamo.ParamError("chain.segment", c.Chain.Segment)
		}
	case LayoutBrace:
		if len(c.Chain.Corners) != 4 {
			return fmt.Errorf("%w: brace layout needs 4 corners, got %d", dynamo.ErrInvalidConfig, len(c.Chain.Corners))
		}
		for i, v := range c.Chain.Corners {
			if !v.Vec().IsFinite() {
				return dynamo.ParamError(fmt.Sprintf("chain.corners[%d]", i), v)
			}
		}
	default:
		return fmt.Errorf("%w: unknown layout %q", dynamo.ErrInvalidConfig, c.Layout)
	}

	for _, pin := range c.Chain.Pins {
		if pin.Index < 0 || pin.Index >= count {
			return dynamo.ParamError("chain.pins.index", pin.Index)
		}
		if pin.Anchor != nil && !pin.Anchor.Vec().IsFinite() {
			return dynamo.ParamError("chain.pins.anchor", *pin.Anchor)
		}
	}
	if c.Chain.Handle != nil && (*c.Chain.Handle < 0 || *c.Chain.Handle >= count) {
		return dynamo.ParamError("chain.handle", *c.Chain.Handle)
	}
	for i, k := range c.Script {
		if k.Frame < 0 || !dynamo.IsFinite(k.X) || !dynamo.IsFinite(k.Y) {
			return dynamo.ParamError(fmt.Sprintf("script[%d]", i), k)
		}
	}
	return nil
}

func (c *Config) particleCount() int {
	if c.Layout == LayoutBrace {
		return 4
	}
	return c.Chain.Count
}

func (c *Config) Settings() control.Settings {
	return control.Settings{
		AttachThreshold: c.Interaction.AttachThreshold,
		DragThreshold:   c.Interaction.DragThreshold,
	}
}

func (c *Config) GravityForce() dynamo.Vec2 { return c.Gravity.Vec() }

// Build validates the config and lays out the chain it describes.
func (c *Config) Build() (*physics.Chain, control.Settings, error) {
	if err := c.Validate(); err != nil {
		return nil, control.Settings{}, err
	}

	pins := make(map[int]*dynamo.Vec2, len(c.Chain.Pins))
	for _, p := range c.Chain.Pins {
		var anchor *dynamo.Vec2
		if p.Anchor != nil {
			v := p.Anchor.Vec()
			anchor = &v
		}
		pins[p.Index] = anchor
	}

	positions := c.layout()
	chain, err := physics.NewChain(c.Viewport.Width, c.Viewport.Height)
	if err != nil {
		return nil, control.Settings{}, err
	}

	for i, pos := range positions {
		mass := c.Chain.Mass
		if i == len(positions)-1 && c.Chain.HandleMass > 0 {
			mass = c.Chain.HandleMass
		}

		var p physics.Particle
		if anchor, pinned := pins[i]; pinned {
			if anchor != nil {
				pos = *anchor
			}
			p, err = physics.NewPinned(pos, mass)
		} else {
			p, err = physics.NewParticle(pos, mass)
		}
		if err != nil {
			return nil, control.Settings{}, fmt.Errorf("particle %d: %w", i, err)
		}
		if _, err := chain.Add(p); err != nil {
			return nil, control.Settings{}, err
		}
	}

	for _, pair := range c.links(len(positions)) {
		if _, err := chain.Connect(pair[0], pair[1]); err != nil {
			return nil, control.Settings{}, err
		}
	}

	if c.Chain.Handle != nil {
		if err := chain.SetHandle(*c.Chain.Handle); err != nil {
			return nil, control.Settings{}, err
		}
	}
	return chain, c.Settings(), nil
}

func (c *Config) layout() []dynamo.Vec2 {
	if c.Layout == LayoutBrace {
		out := make([]dynamo.Vec2, len(c.Chain.Corners))
		for i, v := range c.Chain.Corners {
			out[i] = v.Vec()
		}
		return out
	}
	out := make([]dynamo.Vec2, c.Chain.Count)
	for i := range out {
		out[i] = dynamo.Vec2{X: c.Chain.Origin.X, Y: c.Chain.Origin.Y + float64(i)*c.Chain.Segment}
	}
	return out
}

func (c *Config) links(n int) [][2]int {
	if c.Layout == LayoutBrace {
		return [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}}
	}
	out := make([][2]int, 0, n)
	for i := 1; i < n; i++ {
		out = append(out, [2]int{i - 1, i})
	}
	return out
}

func (c *Config) RunConfig() sim.Config {
	return sim.Config{
		Dt:            c.Run.Dt,
		Frames:        c.Run.Frames,
		ValidateState: true,
		KeepFrames:    true,
	}
}

func (c *Config) Keyframes() sim.Keyframes {
	ks := make([]sim.Keyframe, len(c.Script))
	for i, k := range c.Script {
		ks[i] = sim.Keyframe{Frame: k.Frame, Pos: dynamo.Vec2{X: k.X, Y: k.Y}, Down: k.Down}
	}
	return sim.NewKeyframes(ks)
}
