package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/sim"
	"github.com/san-kum/chainsim/internal/viz"
)

const (
	particleRadius = 5
	pointerRadius  = 10
)

// Style holds the colours used for SVG output.
type Style struct {
	Background string
	Stroke     string
	Handle     string
	Pointer    string
}

func DefaultStyle() Style {
	return Style{
		Background: "#0a0a0a",
		Stroke:     "red",
		Handle:     "#ffcc00",
		Pointer:    "#555555",
	}
}

func header(sb *strings.Builder, width, height float64, bg string) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, bg))
}

// FrameToSVG draws one frame in world coordinates: a line per stick, a
// circle per particle and the pointer tether hanging from the top centre.
func FrameToSVG(frame sim.Frame, width, height float64, style Style) string {
	var sb strings.Builder
	header(&sb, width, height, style.Background)

	sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-width="1">
<line x1="%.1f" y1="0" x2="%.1f" y2="%.1f"/>
<circle cx="%.1f" cy="%.1f" r="%d"/>
</g>
`, style.Pointer, width/2, frame.Pointer.X, frame.Pointer.Y,
		frame.Pointer.X, frame.Pointer.Y, pointerRadius))

	sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-width="2">
`, style.Stroke))
	for _, s := range frame.Segments {
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, s.A.X, s.A.Y, s.B.X, s.B.Y))
	}
	for i, p := range frame.Particles {
		if i == frame.Handle && frame.NearHandle {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%d" stroke="%s"/>
`, p.X, p.Y, particleRadius, style.Handle))
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%d"/>
`, p.X, p.Y, particleRadius))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64, style Style) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	header(&sb, width, height, style.Background)
	sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", style.Stroke))

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if !canvas.IsSet(col*2+dx, row*4+dy) {
						continue
					}
					cx := float64(col*2+dx)*scale + scale/2
					cy := float64(row*4+dy)*scale + scale/2
					sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG traces a path of world points, typically the handle over
// a run. The viewport is kept as-is so the path lines up with FrameToSVG.
func TrajectoryToSVG(points []dynamo.Vec2, width, height float64, style Style) string {
	if len(points) < 2 {
		return ""
	}

	var sb strings.Builder
	header(&sb, width, height, style.Background)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, style.Stroke))

	for i, p := range points {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X, p.Y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// HandlePath pulls the handle position out of each frame.
func HandlePath(frames []sim.Frame) []dynamo.Vec2 {
	out := make([]dynamo.Vec2, len(frames))
	for i, f := range frames {
		out[i] = f.HandlePos()
	}
	return out
}
