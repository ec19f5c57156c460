package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/integrators"
	"github.com/san-kum/chainsim/internal/physics"
)

// Simulator owns one chain and its interaction state and advances both one
// frame at a time. The host decides cadence.
type Simulator struct {
	chain     *physics.Chain
	stepper   integrators.Stepper
	ctrl      *control.Controller
	gravity   dynamo.Vec2
	maxAccel  float64
	frame     int
	t         float64
	metrics   []Metric
	observers []Observer
}

// New validates its inputs and returns a simulator at frame 0.
// gravity is a force; each particle's acceleration is gravity / mass.
func New(chain *physics.Chain, stepper integrators.Stepper, ctrl *control.Controller, gravity dynamo.Vec2) (*Simulator, error) {
	if chain == nil || stepper == nil || ctrl == nil {
		return nil, fmt.Errorf("%w: chain, stepper and controller are required", dynamo.ErrInvalidConfig)
	}
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	if !gravity.IsFinite() {
		return nil, dynamo.ParamError("gravity", gravity)
	}
	if err := ctrl.Settings().Validate(); err != nil {
		return nil, err
	}

	maxAccel := 0.0
	for i := range chain.Particles {
		maxAccel = math.Max(maxAccel, gravity.Len()/chain.Particles[i].Mass)
	}

	return &Simulator{
		chain:     chain,
		stepper:   stepper,
		ctrl:      ctrl,
		gravity:   gravity,
		maxAccel:  maxAccel,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Chain() *physics.Chain           { return s.chain }
func (s *Simulator) Controller() *control.Controller { return s.ctrl }
func (s *Simulator) Gravity() dynamo.Vec2            { return s.gravity }

// Step advances the simulation by dt given this frame's pointer. The phases
// run in a fixed order: interaction, integration, clamp, one relaxation
// pass, handle override.
func (s *Simulator) Step(dt float64, p control.Pointer) (Frame, error) {
	if err := s.checkInput(dt, p); err != nil {
		return Frame{}, &dynamo.SimulationError{Frame: s.frame, Time: s.t, Wrapped: err}
	}

	s.ctrl.Update(p, s.chain.HandlePos())
	s.stepper.Step(s.chain.Particles, s.gravity, dt)
	s.chain.ClampAll()
	s.chain.Relax()
	s.ctrl.Override(s.chain)

	s.frame++
	s.t += dt

	f := s.Snapshot()
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnFrame(f)
	}
	return f, nil
}

func (s *Simulator) checkInput(dt float64, p control.Pointer) error {
	dt2 := dt * dt
	if !dynamo.IsFinite(dt) || dt < 0 || !dynamo.IsFinite(dt2) || !dynamo.IsFinite(s.maxAccel*dt2) {
		return fmt.Errorf("%w: got %v", dynamo.ErrInvalidDelta, dt)
	}
	if !p.Pos.IsFinite() {
		return fmt.Errorf("%w: pointer %v", dynamo.ErrInvalidState, p.Pos)
	}
	return nil
}

// Snapshot copies the current positions into a Frame without stepping.
func (s *Simulator) Snapshot() Frame {
	ps := s.chain.Particles
	f := Frame{
		Index:      s.frame,
		Time:       s.t,
		Particles:  make([]dynamo.Vec2, len(ps)),
		Segments:   make([]Segment, len(s.chain.Sticks)),
		Handle:     s.chain.Handle,
		Pointer:    s.ctrl.Pointer().Pos,
		NearHandle: s.ctrl.Near(),
		Flung:      s.ctrl.Flung(),
		State:      s.ctrl.State(),
	}
	for i := range ps {
		f.Particles[i] = ps[i].Pos
	}
	for i, st := range s.chain.Sticks {
		f.Segments[i] = Segment{A: ps[st.A].Pos, B: ps[st.B].Pos, RestLength: st.RestLength}
	}
	return f
}

// Reset restores the initial layout and clears interaction and time.
func (s *Simulator) Reset() {
	s.chain.Reset()
	s.ctrl.Reset()
	s.frame = 0
	s.t = 0
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Run drives the simulator for cfg.Frames steps with pointer input read
// from script.
func (s *Simulator) Run(ctx context.Context, script Script, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if script == nil {
		script = Keyframes(nil)
	}

	result := &Result{
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	if cfg.KeepFrames {
		result.Frames = make([]Frame, 0, cfg.Frames+1)
		result.Frames = append(result.Frames, s.Snapshot())
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		// the first frame has no elapsed time behind it
		dt := cfg.Dt
		if i == 0 {
			dt = 0
		}

		f, err := s.Step(dt, script.PointerAt(i))
		if err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		if cfg.ValidateState && !f.IsValid() {
			result.Errors = append(result.Errors, &dynamo.SimulationError{Frame: f.Index, Time: f.Time, Wrapped: dynamo.ErrInvalidState})
			break
		}

		if f.Flung {
			result.Flings++
		}
		result.StepsTaken++
		result.Final = f
		if cfg.KeepFrames {
			result.Frames = append(result.Frames, f)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if !dynamo.IsFinite(cfg.Dt) || cfg.Dt < 0 {
		return fmt.Errorf("%w: dt must be >= 0, got %f", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", dynamo.ErrInvalidConfig, cfg.Frames)
	}
	return nil
}
