// Package render draws decorations around finished panels for export.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
)

// Shadow describes a soft drop shadow cast by a panel.
type Shadow struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadow suits panels laid out on a light contact sheet.
func DefaultShadow() Shadow {
	return Shadow{Radius: 10, Offset: image.Pt(6, 8), Opacity: 0.45}
}

// Card is a panel composited over its shadow.
type Card struct {
	Image *image.RGBA
	// Content is where the panel's top-left corner landed inside Image.
	Content image.Point
}

// WithShadow returns img on a larger transparent canvas with s beneath it.
// The result always has a zero origin. A nil image yields an empty Card and a
// zero opacity returns img unchanged.
func WithShadow(img *image.RGBA, s Shadow) Card {
	if img == nil {
		return Card{}
	}
	src := img.Bounds()
	if src.Empty() || s.Opacity <= 0 {
		return Card{Image: img}
	}
	if s.Opacity > 1 {
		s.Opacity = 1
	}
	if s.Radius < 0 {
		s.Radius = 0
	}

	cast := src.Inset(-s.Radius).Add(s.Offset)
	all := src.Union(cast)
	dst := image.NewRGBA(all.Sub(all.Min))

	mask := image.NewAlpha(cast.Sub(cast.Min))
	inner := src.Add(s.Offset).Sub(cast.Min)
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			a := img.RGBAAt(x, y).A
			mask.SetAlpha(inner.Min.X+x-src.Min.X, inner.Min.Y+y-src.Min.Y, color.Alpha{A: a})
		}
	}
	var soft image.Image = mask
	if s.Radius > 0 {
		soft = blur.Box(mask, float64(s.Radius))
	}

	shade := image.NewUniform(color.RGBA{A: uint8(s.Opacity*255 + 0.5)})
	draw.DrawMask(dst, cast.Sub(all.Min), shade, image.Point{}, soft, image.Point{}, draw.Over)
	content := src.Min.Sub(all.Min)
	draw.Draw(dst, src.Sub(all.Min), img, src.Min, draw.Over)
	return Card{Image: dst, Content: content}
}
