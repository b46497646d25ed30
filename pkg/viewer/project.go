package viewer

import (
	"image/color"

	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/scene"
)

// ScreenSegment is a projected 2D line in widget coordinates
type ScreenSegment struct {
	X1, Y1, X2, Y2 float64
	Color          color.RGBA
}

var (
	axisX = color.RGBA{R: 255, A: 255}
	axisY = color.RGBA{G: 255, A: 255}
	axisZ = color.RGBA{B: 255, A: 255}
)

// ProjectFrame flattens a frame into screen segments: grid first, then axes,
// then path lines so the path is drawn on top. Segments entirely behind the
// camera are dropped and those crossing the near plane are clipped.
func ProjectFrame(frame scene.Frame, width, height float64) []ScreenSegment {
	if width <= 0 || height <= 0 {
		return nil
	}
	p := projector{cam: frame.Camera, width: width, height: height}
	p.forward = frame.Camera.Target.Sub(frame.Camera.Position).Normalize()

	var out []ScreenSegment
	if g := frame.Grid; g.Divisions > 0 && g.Size > 0 {
		half := g.Size / 2
		step := g.Size / float64(g.Divisions)
		for i := 0; i <= g.Divisions; i++ {
			offset := -half + float64(i)*step
			c := g.LineColor
			if i*2 == g.Divisions {
				c = g.CenterColor
			}
			out = p.appendSegment(out, geometry.NewVector3(offset, 0, -half), geometry.NewVector3(offset, 0, half), c)
			out = p.appendSegment(out, geometry.NewVector3(-half, 0, offset), geometry.NewVector3(half, 0, offset), c)
		}
	}

	if l := frame.Axes.Length; l > 0 {
		origin := geometry.Vector3{}
		out = p.appendSegment(out, origin, geometry.NewVector3(l, 0, 0), axisX)
		out = p.appendSegment(out, origin, geometry.NewVector3(0, l, 0), axisY)
		out = p.appendSegment(out, origin, geometry.NewVector3(0, 0, l), axisZ)
	}

	for _, line := range frame.Lines {
		for i := 1; i < len(line.Points); i++ {
			out = p.appendSegment(out, line.Points[i-1], line.Points[i], line.Color)
		}
	}
	return out
}

type projector struct {
	cam           scene.Camera
	forward       geometry.Vector3
	width, height float64
}

func (p projector) depth(v geometry.Vector3) float64 {
	return v.Sub(p.cam.Position).Dot(p.forward)
}

func (p projector) appendSegment(out []ScreenSegment, a, b geometry.Vector3, c color.RGBA) []ScreenSegment {
	near := p.cam.Near
	da, db := p.depth(a), p.depth(b)
	if da < near && db < near {
		return out
	}
	// Clip the end behind the near plane
	if da < near {
		a = a.Add(b.Sub(a).Mul((near - da) / (db - da)))
	} else if db < near {
		b = b.Add(a.Sub(b).Mul((near - db) / (da - db)))
	}

	x1, y1, _ := p.cam.Project(a, p.width, p.height)
	x2, y2, _ := p.cam.Project(b, p.width, p.height)
	return append(out, ScreenSegment{X1: x1, Y1: y1, X2: x2, Y2: y2, Color: c})
}
