package appstate

import (
	"image"

	"github.com/example/sketchstory/internal/canvas"
)

// Viewport places the canvas inside the window.
type Viewport struct {
	Origin image.Point // window position of canvas 0,0
	Zoom   float64
}

// ToCanvas maps window coordinates into canvas coordinates.
func (v Viewport) ToCanvas(x, y float32) canvas.Point {
	z := v.Zoom
	if z <= 0 {
		z = 1
	}
	return canvas.Point{
		X: float32(float64(x-float32(v.Origin.X)) / z),
		Y: float32(float64(y-float32(v.Origin.Y)) / z),
	}
}

// Rect returns the window rectangle covered by a canvas of the given bounds.
func (v Viewport) Rect(b image.Rectangle) image.Rectangle {
	z := v.Zoom
	if z <= 0 {
		z = 1
	}
	w := int(float64(b.Dx()) * z)
	h := int(float64(b.Dy()) * z)
	return image.Rect(v.Origin.X, v.Origin.Y, v.Origin.X+w, v.Origin.Y+h)
}

// fitViewport scales a canvas of size b to fit area, anchored at its top left.
// It never enlarges beyond 1:1.
func fitViewport(b, area image.Rectangle) Viewport {
	zx := float64(area.Dx()) / float64(b.Dx())
	zy := float64(area.Dy()) / float64(b.Dy())
	z := zx
	if zy < z {
		z = zy
	}
	if z > 1 {
		z = 1
	}
	if z < 0.1 {
		z = 0.1
	}
	return Viewport{Origin: area.Min, Zoom: z}
}
