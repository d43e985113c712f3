// Package grid draws optional guide lines beneath the drawable content of a
// canvas.
package grid

import (
	"image"
	"image/color"

	"github.com/example/sketchstory/internal/canvas"
)

// DefaultStep is the spacing between guide lines in canvas pixels.
const DefaultStep = 40

// DefaultColor is the guide colour used when none is configured.
var DefaultColor = color.RGBA{220, 224, 232, 255}

// GuideSetter receives the rebuilt guide layer.
type GuideSetter interface {
	Bounds() image.Rectangle
	SetGuides([]canvas.Guide)
}

// Overlay owns the guide layer of one surface. The enabled flag is supplied
// by the caller from configuration.
type Overlay struct {
	target  GuideSetter
	enabled bool
	step    int
	color   color.RGBA
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithStep sets the line spacing. Non-positive values keep the default.
func WithStep(step int) Option {
	return func(o *Overlay) {
		if step > 0 {
			o.step = step
		}
	}
}

// WithColor sets the line colour.
func WithColor(c color.RGBA) Option { return func(o *Overlay) { o.color = c } }

// New creates an overlay for target and builds its guide layer.
func New(target GuideSetter, enabled bool, opts ...Option) *Overlay {
	o := &Overlay{target: target, step: DefaultStep, color: DefaultColor}
	for _, opt := range opts {
		opt(o)
	}
	o.Rebuild(enabled)
	return o
}

// Enabled reports whether guides are currently drawn.
func (o *Overlay) Enabled() bool { return o.enabled }

// Step returns the line spacing.
func (o *Overlay) Step() int { return o.step }

// Rebuild replaces the guide layer, drawing lines only when enabled. Callers
// run it again after clearing the surface.
func (o *Overlay) Rebuild(enabled bool) {
	o.enabled = enabled
	if !enabled {
		o.target.SetGuides(nil)
		return
	}
	lines := Lines(o.target.Bounds(), o.step)
	for i := range lines {
		lines[i].Color = o.color
	}
	o.target.SetGuides(lines)
}

// SetEnabled rebuilds the layer when the flag changes and reports whether it
// did.
func (o *Overlay) SetEnabled(enabled bool) bool {
	if enabled == o.enabled {
		return false
	}
	o.Rebuild(enabled)
	return true
}

// SetStyle changes spacing and colour and rebuilds when either differs.
func (o *Overlay) SetStyle(step int, c color.RGBA) bool {
	if step <= 0 {
		step = o.step
	}
	if step == o.step && c == o.color {
		return false
	}
	o.step, o.color = step, c
	o.Rebuild(o.enabled)
	return true
}

// Lines returns vertical then horizontal guides every step pixels inside b,
// skipping the edges.
func Lines(b image.Rectangle, step int) []canvas.Guide {
	if step <= 0 || b.Empty() {
		return nil
	}
	var out []canvas.Guide
	for x := b.Min.X + step; x < b.Max.X; x += step {
		out = append(out, canvas.Guide{From: image.Pt(x, b.Min.Y), To: image.Pt(x, b.Max.Y-1)})
	}
	for y := b.Min.Y + step; y < b.Max.Y; y += step {
		out = append(out, canvas.Guide{From: image.Pt(b.Min.X, y), To: image.Pt(b.Max.X-1, y)})
	}
	return out
}
