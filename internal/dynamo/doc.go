// Package dynamo provides core primitives shared by the chain simulation.
//
// The package defines the small vocabulary every other package speaks:
//
//   - [Vec2]: 2D vector used for positions, offsets and accelerations
//   - domain errors returned when configuration or per-frame input is invalid
//   - [SimulationError]: wraps an error with the frame it occurred on
//
// # Example
//
//	chain, settings, _ := cfg.Build()
//	s, err := sim.New(chain, integrators.NewPositionVerlet(), control.New(settings), gravity)
//	frame, _ := s.Step(16, control.Pointer{Pos: dynamo.Vec2{X: 120, Y: 40}, Down: true})
//
// # Thread Safety
//
// Nothing in the simulation is safe for concurrent use. A host drives one
// simulator from a single goroutine and reads frames between steps.
package dynamo
