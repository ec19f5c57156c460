// Package physics implements the position-based core of the chain:
// particles advanced by Verlet integration, sticks relaxed toward their
// rest length, and the viewport clamp.
//
//   - [Particle]: point mass with current and previous position
//   - [Stick]: index-based distance constraint
//   - [Chain]: particle arena plus sticks and the handle index
//   - [NewLine], [NewBrace]: canonical layouts
//
// Sticks are relaxed once per frame in insertion order. The pass is not
// iterated to convergence, so lengths are only approximately preserved.
package physics
