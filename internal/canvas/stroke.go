package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Point is a position in canvas-local coordinates.
type Point struct{ X, Y float32 }

// CompositeMode controls how a stroke is blended onto the surface.
type CompositeMode int

const (
	// ModeNormal blends the stroke over whatever is underneath it.
	ModeNormal CompositeMode = iota
	// ModeBackground paints the stroke colour fully opaque, which for the
	// eraser is the surface background colour.
	ModeBackground
)

func (m CompositeMode) color(c color.RGBA) color.RGBA {
	if m == ModeBackground {
		c.A = 255
	}
	return c
}

// Style is the tool-derived appearance of a stroke.
type Style struct {
	Color color.RGBA
	Width float32
	Mode  CompositeMode
}

// Stroke is a committed freehand path. Strokes are never mutated after they
// are added to a surface, which lets scenes share them.
type Stroke struct {
	ID     string
	Points []Point
	Style
}

// Bounds returns the integer rectangle touched by the stroke.
func (s *Stroke) Bounds() image.Rectangle {
	if s == nil || len(s.Points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := s.Points[0].X, s.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range s.Points[1:] {
		minX = float32(math.Min(float64(minX), float64(p.X)))
		minY = float32(math.Min(float64(minY), float64(p.Y)))
		maxX = float32(math.Max(float64(maxX), float64(p.X)))
		maxY = float32(math.Max(float64(maxY), float64(p.Y)))
	}
	r := s.Width/2 + 1
	return image.Rect(
		int(math.Floor(float64(minX-r))),
		int(math.Floor(float64(minY-r))),
		int(math.Ceil(float64(maxX+r))),
		int(math.Ceil(float64(maxY+r))),
	)
}

// capSegments is the number of edges used to approximate a round cap.
const capSegments = 24

// rasterizeStroke draws s onto dst, which must have a zero origin, with
// anti-aliased edges. Every segment is a capsule (a quad plus two round caps)
// and all pieces share one winding direction so overlaps do not cancel out.
func rasterizeStroke(z *vector.Rasterizer, dst *image.RGBA, s *Stroke) {
	if s == nil || len(s.Points) == 0 || s.Width <= 0 {
		return
	}
	b := dst.Bounds()
	z.Reset(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	r := s.Width / 2

	circle(z, s.Points[0], r)
	for i := 1; i < len(s.Points); i++ {
		p0, p1 := s.Points[i-1], s.Points[i]
		dx, dy := p1.X-p0.X, p1.Y-p0.Y
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*r, dx/l*r
		z.MoveTo(p0.X+nx, p0.Y+ny)
		z.LineTo(p1.X+nx, p1.Y+ny)
		z.LineTo(p1.X-nx, p1.Y-ny)
		z.LineTo(p0.X-nx, p0.Y-ny)
		z.ClosePath()
		circle(z, p1, r)
	}
	z.Draw(dst, b, image.NewUniform(s.Mode.color(s.Color)), image.Point{})
}

// circle adds a polygon approximating a disc, wound the same way as the
// segment quads built in rasterizeStroke.
func circle(z *vector.Rasterizer, c Point, r float32) {
	for i := 0; i <= capSegments; i++ {
		a := -2 * math.Pi * float64(i) / capSegments
		x := c.X + r*float32(math.Cos(a))
		y := c.Y + r*float32(math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}
