package analysis

import (
	"strings"

	"github.com/san-kum/chainsim/internal/sim"
)

// Point is one sample of a 2D plot.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	Axis   int
	Points []Point
}

func coord(f sim.Frame, axis int) float64 {
	p := f.HandlePos()
	if axis == 1 {
		return p.Y
	}
	return p.X
}

// HandlePhase pairs the handle's coordinate on axis (0 = x, 1 = y) with its
// finite-difference velocity in units per second. Frames with no elapsed
// time are skipped.
func HandlePhase(frames []sim.Frame, axis int) *PhasePortrait2D {
	portrait := &PhasePortrait2D{Axis: axis}
	if len(frames) < 2 {
		return portrait
	}
	portrait.Points = make([]Point, 0, len(frames)-1)

	for i := 1; i < len(frames); i++ {
		dt := frames[i].Time - frames[i-1].Time
		if dt <= 0 {
			continue
		}
		x := coord(frames[i], axis)
		v := (x - coord(frames[i-1], axis)) / dt * 1000
		portrait.Points = append(portrait.Points, Point{X: x, Y: v})
	}

	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// zero velocity line
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossing is the handle state at a positive-going crossing.
type Crossing struct {
	Frame    int
	Time     float64
	Velocity float64
}

// HandleCrossings records each frame where the handle's coordinate on axis
// passes threshold going upward. The velocity is in units per second.
func HandleCrossings(frames []sim.Frame, axis int, threshold float64) []Crossing {
	var out []Crossing
	for i := 1; i < len(frames); i++ {
		prev := coord(frames[i-1], axis)
		cur := coord(frames[i], axis)
		if prev < threshold && cur >= threshold {
			c := Crossing{Frame: frames[i].Index, Time: frames[i].Time}
			if dt := frames[i].Time - frames[i-1].Time; dt > 0 {
				c.Velocity = (cur - prev) / dt * 1000
			}
			out = append(out, c)
		}
	}
	return out
}

// Period estimates the oscillation period in ms from the spacing of
// successive crossings. It returns 0 with fewer than two crossings.
func Period(crossings []Crossing) float64 {
	if len(crossings) < 2 {
		return 0
	}
	span := crossings[len(crossings)-1].Time - crossings[0].Time
	return span / float64(len(crossings)-1)
}
