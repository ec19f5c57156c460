package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/integrators"
	"github.com/san-kum/chainsim/internal/physics"
	"github.com/san-kum/chainsim/internal/sim"
)

type countingMetric struct {
	frames int
}

func (c *countingMetric) Name() string        { return "frames" }
func (c *countingMetric) Observe(f sim.Frame) { c.frames++ }
func (c *countingMetric) Value() float64      { return float64(c.frames) }
func (c *countingMetric) Reset()              { c.frames = 0 }

type recorder struct {
	states []control.State
}

func (r *recorder) OnFrame(f sim.Frame) { r.states = append(r.states, f.State) }

func rope(pin bool) *physics.Chain {
	c, err := physics.NewLine(physics.LineSpec{
		Origin:   dynamo.Vec2{X: 50, Y: 0},
		Count:    3,
		Segment:  20,
		Mass:     1,
		PinFirst: pin,
		Width:    200,
		Height:   200,
	})
	Expect(err).NotTo(HaveOccurred())
	return c
}

func newSim(c *physics.Chain, gravity dynamo.Vec2) *sim.Simulator {
	s, err := sim.New(c, integrators.NewPositionVerlet(),
		control.New(control.Settings{AttachThreshold: 10, DragThreshold: 60}), gravity)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Simulator", func() {
	Context("with zero gravity and a pinned head", func() {
		It("keeps the pinned particle exactly on its anchor", func() {
			s := newSim(rope(true), dynamo.Vec2{})
			for i := 0; i < 200; i++ {
				f, err := s.Step(16, control.Pointer{})
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Particles[0]).To(Equal(dynamo.Vec2{X: 50, Y: 0}))
			}
		})
	})

	Context("under gravity", func() {
		It("snaps a pinned particle back on the next integration", func() {
			c := rope(true)
			s := newSim(c, dynamo.Vec2{Y: 9.82})
			verlet := integrators.NewPositionVerlet()

			for i := 0; i < 30; i++ {
				_, err := s.Step(1, control.Pointer{})
				Expect(err).NotTo(HaveOccurred())

				verlet.Step(c.Particles[:1], s.Gravity(), 1)
				Expect(c.Particles[0].Pos).To(Equal(c.Particles[0].Anchor()))
			}
		})

		It("lets relaxation pull the pin off its anchor within a frame", func() {
			c := rope(true)
			s := newSim(c, dynamo.Vec2{Y: 50})

			f, err := s.Step(1, control.Pointer{})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Particles[0].Y).To(BeNumerically(">", 0))
		})

		It("keeps every particle inside the viewport after the clamp", func() {
			c := rope(false)
			s := newSim(c, dynamo.Vec2{Y: 9.82})
			for i := 0; i < 500; i++ {
				_, err := s.Step(1, control.Pointer{})
				Expect(err).NotTo(HaveOccurred())
			}
			for _, p := range c.Particles {
				Expect(p.Pos.IsFinite()).To(BeTrue())
				Expect(p.Pos.Y).To(BeNumerically("<=", 200+20))
			}
		})
	})

	Describe("interaction", func() {
		It("forces the attached handle onto the pointer after relaxation", func() {
			c := rope(true)
			s := newSim(c, dynamo.Vec2{Y: 9.82})

			_, err := s.Step(0, control.Pointer{Pos: dynamo.Vec2{X: 50, Y: 40}, Down: true})
			Expect(err).NotTo(HaveOccurred())

			f, err := s.Step(16, control.Pointer{Pos: dynamo.Vec2{X: 80, Y: 60}, Down: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.State).To(Equal(control.Attached))
			Expect(f.HandlePos()).To(Equal(dynamo.Vec2{X: 80, Y: 60}))
		})

		It("reports the near-handle flag every frame", func() {
			s := newSim(rope(true), dynamo.Vec2{})
			f, _ := s.Step(0, control.Pointer{Pos: dynamo.Vec2{X: 52, Y: 40}})
			Expect(f.NearHandle).To(BeTrue())
			f, _ = s.Step(0, control.Pointer{Pos: dynamo.Vec2{X: 150, Y: 150}})
			Expect(f.NearHandle).To(BeFalse())
		})

		It("flings once when dragged past the drag threshold", func() {
			s := newSim(rope(true), dynamo.Vec2{})
			fired := 0
			s.Controller().OnFling(func(control.FlingEvent) { fired++ })
			rec := &recorder{}
			s.AddObserver(rec)

			script := sim.NewKeyframes([]sim.Keyframe{
				{Frame: 0, Pos: dynamo.Vec2{X: 50, Y: 40}, Down: true},
				{Frame: 10, Pos: dynamo.Vec2{X: 150, Y: 40}, Down: true},
				{Frame: 20, Pos: dynamo.Vec2{X: 150, Y: 40}, Down: false},
			})

			res, err := s.Run(context.Background(), script, sim.Config{Dt: 16, Frames: 30, KeepFrames: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(fired).To(Equal(1))
			Expect(res.Flings).To(Equal(1))
			Expect(res.Final.State).To(Equal(control.Idle))
			Expect(rec.states).To(ContainElement(control.Attached))
		})
	})

	Describe("input validation", func() {
		var s *sim.Simulator

		BeforeEach(func() {
			s = newSim(rope(true), dynamo.Vec2{Y: 9.82})
		})

		DescribeTable("rejects bad delta time without touching state",
			func(gravity dynamo.Vec2, dt float64) {
				s := newSim(rope(true), gravity)
				before := s.Snapshot()
				_, err := s.Step(dt, control.Pointer{})
				Expect(err).To(MatchError(dynamo.ErrInvalidDelta))
				Expect(s.Snapshot().Particles).To(Equal(before.Particles))
			},
			Entry("negative", dynamo.Vec2{Y: 9.82}, -1.0),
			Entry("NaN", dynamo.Vec2{Y: 9.82}, math.NaN()),
			Entry("infinite", dynamo.Vec2{Y: 9.82}, math.Inf(1)),
			Entry("overflowing", dynamo.Vec2{Y: 9.82}, 1e200),
			Entry("overflowing with zero gravity", dynamo.Vec2{}, 1e200),
		)

		It("keeps positions finite on a huge step with zero gravity", func() {
			s := newSim(rope(true), dynamo.Vec2{})
			f, err := s.Step(1e150, control.Pointer{})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.IsValid()).To(BeTrue())
			Expect(f.Particles[0]).To(Equal(dynamo.Vec2{X: 50, Y: 0}))
		})

		It("rejects a non-finite pointer", func() {
			_, err := s.Step(1, control.Pointer{Pos: dynamo.Vec2{X: math.NaN()}})
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
		})

		It("fails fast on an invalid chain or gravity", func() {
			empty, _ := physics.NewChain(10, 10)
			_, err := sim.New(empty, integrators.NewPositionVerlet(), control.New(control.Settings{}), dynamo.Vec2{})
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

			_, err = sim.New(rope(true), integrators.NewPositionVerlet(), control.New(control.Settings{}), dynamo.Vec2{Y: math.Inf(1)})
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})
	})

	Describe("Run", func() {
		It("collects metrics and frames", func() {
			s := newSim(rope(true), dynamo.Vec2{Y: 9.82})
			m := &countingMetric{}
			s.AddMetric(m)

			res, err := s.Run(context.Background(), nil, sim.Config{Dt: 16, Frames: 10, KeepFrames: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(10))
			Expect(res.Frames).To(HaveLen(11))
			Expect(res.Metrics).To(HaveKeyWithValue("frames", 10.0))
		})

		It("uses zero elapsed time for the first frame", func() {
			s := newSim(rope(false), dynamo.Vec2{Y: 9.82})
			res, err := s.Run(context.Background(), nil, sim.Config{Dt: 16, Frames: 1, KeepFrames: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Final.Time).To(Equal(0.0))
			Expect(res.Final.Particles).To(Equal(res.Frames[0].Particles))
		})

		It("rejects invalid configs", func() {
			s := newSim(rope(true), dynamo.Vec2{})
			_, err := s.Run(context.Background(), nil, sim.Config{Dt: 16})
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
			_, err = s.Run(context.Background(), nil, sim.Config{Dt: -1, Frames: 3})
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("stops on a canceled context", func() {
			s := newSim(rope(true), dynamo.Vec2{})
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := s.Run(ctx, nil, sim.DefaultConfig())
			Expect(err).To(MatchError(dynamo.ErrContextCanceled))
		})

		It("resets to the initial layout", func() {
			c := rope(false)
			s := newSim(c, dynamo.Vec2{Y: 9.82})
			start := s.Snapshot().Particles
			_, err := s.Run(context.Background(), nil, sim.Config{Dt: 16, Frames: 20})
			Expect(err).NotTo(HaveOccurred())

			s.Reset()
			f := s.Snapshot()
			Expect(f.Particles).To(Equal(start))
			Expect(f.Index).To(Equal(0))
		})
	})

	It("sweeps independent simulators concurrently", func() {
		factory := func() (*sim.Simulator, error) {
			return sim.New(rope(true), integrators.NewPositionVerlet(),
				control.New(control.Settings{AttachThreshold: 10, DragThreshold: 60}), dynamo.Vec2{Y: 9.82})
		}
		cfgs := []sim.Config{{Dt: 4, Frames: 50}, {Dt: 16, Frames: 50}}

		results, err := sim.Sweep(context.Background(), factory, nil, cfgs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Final.Time).To(BeNumerically("<", results[1].Final.Time))
	})
})
