package physics

// Clamp keeps p inside [0, width] x [0, height]. Prev is left alone, so a
// clamped particle keeps its implied velocity into the wall.
func Clamp(p *Particle, width, height float64) {
	if p.Pos.Y >= height {
		p.Pos.Y = height
	}
	if p.Pos.X >= width {
		p.Pos.X = width
	}
	if p.Pos.Y < 0 {
		p.Pos.Y = 0
	}
	if p.Pos.X < 0 {
		p.Pos.X = 0
	}
}
