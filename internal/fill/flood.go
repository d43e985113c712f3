// Package fill implements the bucket tool: a 4-connected flood fill over the
// composited surface whose result becomes the surface's fill layer.
package fill

import (
	"image"
	"image/color"
	"image/draw"
)

// DefaultTolerance is the per-channel distance, out of 255, within which a
// pixel still counts as the seed colour.
const DefaultTolerance uint8 = 8

// Flood fills the region of src that is 4-connected to seed and matches the
// seed colour within tolerance on every channel. src is not modified; the
// result is a copy with matched pixels replaced by fill at full opacity.
//
// Flood returns nil and 0 when nothing would change: the seed lies outside
// src or the seed colour already matches fill.
func Flood(src *image.RGBA, seed image.Point, fill color.RGBA, tolerance uint8) (*image.RGBA, int) {
	if src == nil {
		return nil, 0
	}
	b := src.Bounds()
	if !seed.In(b) {
		return nil, 0
	}
	fill.A = 255
	target := src.RGBAAt(seed.X, seed.Y)
	if within(target, fill, tolerance) {
		return nil, 0
	}

	out := image.NewRGBA(b)
	draw.Draw(out, b, src, b.Min, draw.Src)

	w := b.Dx()
	seen := newBitset(w * b.Dy())
	index := func(x, y int) int { return (y-b.Min.Y)*w + (x - b.Min.X) }

	stack := []image.Point{seed}
	seen.set(index(seed.X, seed.Y))
	n := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !within(src.RGBAAt(p.X, p.Y), target, tolerance) {
			continue
		}
		out.SetRGBA(p.X, p.Y, fill)
		n++
		for _, q := range [4]image.Point{{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1}} {
			if !q.In(b) {
				continue
			}
			i := index(q.X, q.Y)
			if seen.has(i) {
				continue
			}
			seen.set(i)
			stack = append(stack, q)
		}
	}
	return out, n
}

func within(a, b color.RGBA, tol uint8) bool {
	return diff(a.R, b.R) <= tol && diff(a.G, b.G) <= tol && diff(a.B, b.B) <= tol && diff(a.A, b.A) <= tol
}

func diff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (s bitset) set(i int)      { s[i/64] |= 1 << (uint(i) % 64) }
func (s bitset) has(i int) bool { return s[i/64]&(1<<(uint(i)%64)) != 0 }
