package fill

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/example/sketchstory/internal/canvas"
)

// Surface is the part of a canvas the engine samples and writes back to.
type Surface interface {
	Bounds() image.Rectangle
	Pixels(r image.Rectangle) *image.RGBA
	SetBackgroundImage(img *image.RGBA) error
}

// Committer records a history entry after a successful fill.
type Committer interface {
	Commit() bool
}

// Result describes a completed fill. The zero value means nothing changed.
type Result struct {
	Seed      image.Point
	Filled    int
	Committed bool
}

// Engine applies flood fills to a surface.
type Engine struct {
	surface   Surface
	history   Committer
	tolerance uint8
}

// Option configures an Engine.
type Option func(*Engine)

// WithTolerance overrides DefaultTolerance.
func WithTolerance(t uint8) Option { return func(e *Engine) { e.tolerance = t } }

// NewEngine returns an engine that fills s and commits to h. h may be nil.
func NewEngine(s Surface, h Committer, opts ...Option) *Engine {
	e := &Engine{surface: s, history: h, tolerance: DefaultTolerance}
	for _, o := range opts {
		o(e)
	}
	return e
}

// FillAt floods the region under x,y with c. The composited surface, strokes
// included, is sampled and the filled copy replaces the fill layer. A seed
// outside the surface, or one already matching c, is a no-op that records no
// history.
func (e *Engine) FillAt(x, y int, c color.RGBA) (Result, error) {
	seed := image.Pt(x, y)
	b := e.surface.Bounds()
	if !seed.In(b) {
		return Result{}, nil
	}
	src := e.surface.Pixels(b)
	if src == nil {
		return Result{}, canvas.ErrNotInitialized
	}
	out, n := Flood(src, seed, c, e.tolerance)
	if n == 0 {
		return Result{}, nil
	}
	if err := e.surface.SetBackgroundImage(out); err != nil {
		return Result{}, fmt.Errorf("install fill layer: %w", err)
	}
	res := Result{Seed: seed, Filled: n}
	if e.history != nil {
		res.Committed = e.history.Commit()
	}
	log.Printf("fill: %d pixels from %d,%d", n, x, y)
	return res, nil
}
