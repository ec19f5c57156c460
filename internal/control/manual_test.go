package control_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/physics"
)

var _ = Describe("Controller", func() {
	var (
		ctrl   *control.Controller
		handle dynamo.Vec2
		flings []control.FlingEvent
	)

	at := func(x, y float64, down bool) control.Pointer {
		return control.Pointer{Pos: dynamo.Vec2{X: x, Y: y}, Down: down}
	}

	BeforeEach(func() {
		ctrl = control.New(control.Settings{AttachThreshold: 10, DragThreshold: 100})
		handle = dynamo.Vec2{X: 50, Y: 50}
		flings = nil
		ctrl.OnFling(func(ev control.FlingEvent) { flings = append(flings, ev) })
	})

	It("starts idle", func() {
		Expect(ctrl.State()).To(Equal(control.Idle))
	})

	It("attaches when pressed near the handle", func() {
		ctrl.Update(at(52, 50, true), handle)
		Expect(ctrl.State()).To(Equal(control.Attached))
		Expect(ctrl.Origin()).To(Equal(dynamo.Vec2{X: 52, Y: 50}))
		Expect(ctrl.Near()).To(BeTrue())
	})

	It("stays pressed when pressed far from the handle", func() {
		ctrl.Update(at(200, 200, true), handle)
		Expect(ctrl.State()).To(Equal(control.Pressed))
		Expect(ctrl.Near()).To(BeFalse())

		By("moving onto the handle with the button held")
		ctrl.Update(at(51, 51, true), handle)
		Expect(ctrl.State()).To(Equal(control.Attached))
	})

	It("returns to idle on release", func() {
		ctrl.Update(at(50, 50, true), handle)
		ctrl.Update(at(50, 50, false), handle)
		Expect(ctrl.State()).To(Equal(control.Idle))
		Expect(flings).To(BeEmpty())
	})

	It("does not attach on hover without a press", func() {
		ctrl.Update(at(50, 50, false), handle)
		Expect(ctrl.State()).To(Equal(control.Idle))
		Expect(ctrl.Near()).To(BeTrue())
	})

	Context("when dragged past the drag threshold", func() {
		BeforeEach(func() {
			ctrl.Update(at(50, 50, true), handle)
			Expect(ctrl.State()).To(Equal(control.Attached))
			ctrl.Update(at(120, 50, true), handle)
			Expect(ctrl.State()).To(Equal(control.Attached))
			ctrl.Update(at(160, 50, true), handle)
		})

		It("detaches and fires the fling callback once", func() {
			Expect(ctrl.State()).To(Equal(control.Idle))
			Expect(ctrl.Flung()).To(BeTrue())
			Expect(flings).To(HaveLen(1))
			Expect(flings[0].Distance).To(BeNumerically("~", 110, 1e-9))
			Expect(flings[0].Origin).To(Equal(dynamo.Vec2{X: 50, Y: 50}))
		})

		It("ignores the held button until it is released", func() {
			ctrl.Update(at(50, 50, true), handle)
			ctrl.Update(at(50, 50, true), handle)
			Expect(ctrl.State()).To(Equal(control.Idle))
			Expect(ctrl.Flung()).To(BeFalse())
			Expect(flings).To(HaveLen(1))

			By("releasing and pressing again")
			ctrl.Update(at(50, 50, false), handle)
			ctrl.Update(at(50, 50, true), handle)
			Expect(ctrl.State()).To(Equal(control.Attached))
		})
	})

	It("treats a pointer exactly on the handle as near", func() {
		ctrl.Update(at(50, 50, false), handle)
		Expect(ctrl.Near()).To(BeTrue())
	})

	Describe("Override", func() {
		var chain *physics.Chain

		BeforeEach(func() {
			var err error
			chain, err = physics.NewLine(physics.LineSpec{
				Origin: dynamo.Vec2{X: 50, Y: 10}, Count: 2, Segment: 40,
				Mass: 1, PinFirst: true, Width: 200, Height: 200,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("moves the handle onto the pointer while attached", func() {
			ctrl.Update(at(52, 48, true), chain.HandlePos())
			ctrl.Override(chain)
			Expect(chain.HandlePos()).To(Equal(dynamo.Vec2{X: 52, Y: 48}))
		})

		It("leaves the handle alone when not attached", func() {
			ctrl.Update(at(150, 150, false), chain.HandlePos())
			ctrl.Override(chain)
			Expect(chain.HandlePos()).To(Equal(dynamo.Vec2{X: 50, Y: 50}))
		})
	})

	It("validates settings", func() {
		Expect(control.Settings{AttachThreshold: -1}.Validate()).To(MatchError(dynamo.ErrParameterBounds))
		Expect(control.Settings{AttachThreshold: 1, DragThreshold: 2}.Validate()).To(Succeed())
	})

	It("resets to idle but keeps the callback", func() {
		ctrl.Update(at(50, 50, true), handle)
		ctrl.Reset()
		Expect(ctrl.State()).To(Equal(control.Idle))
		ctrl.Update(at(50, 50, true), handle)
		ctrl.Update(at(300, 50, true), handle)
		Expect(flings).To(HaveLen(1))
	})
})
