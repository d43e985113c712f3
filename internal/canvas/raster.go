package canvas

import (
	"image"
	"image/color"
)

// drawLine draws an aliased line with Bresenham's algorithm. Guides use it so
// grid lines stay crisp at one pixel.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA, thick int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		plot(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// plot sets a square of side thick centred on x,y, clipped to img.
func plot(img *image.RGBA, x, y, thick int, col color.RGBA) {
	r := thick / 2
	b := img.Bounds()
	for py := y - r; py <= y+r; py++ {
		for px := x - r; px <= x+r; px++ {
			if image.Pt(px, py).In(b) {
				img.SetRGBA(px, py, col)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
