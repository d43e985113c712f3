package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/google/uuid"
	"golang.org/x/image/vector"
)

var (
	// ErrNotInitialized is returned when a surface has no pixels to work with.
	ErrNotInitialized = errors.New("canvas: surface not initialized")
	// ErrBounds is returned when a background image does not cover the surface exactly.
	ErrBounds = errors.New("canvas: image bounds do not match surface")
	// ErrSceneMismatch is returned when a scene cannot be applied to this surface.
	ErrSceneMismatch = errors.New("canvas: scene does not match surface")
)

// Blank is the background colour of a cleared surface.
var Blank = color.RGBA{255, 255, 255, 255}

// Layer is a rasterized background image. Version increases every time a new
// layer is installed on a surface.
type Layer struct {
	Image   *image.RGBA
	Version uint64
}

// Guide is a non-interactive line drawn beneath strokes on the display only.
type Guide struct {
	From, To image.Point
	Color    color.RGBA
}

// Surface owns the pixel buffer and the object layers composited onto it:
// background colour, an optional fill layer, guides and strokes.
//
// A Surface is not safe for concurrent use. It never records history itself;
// callers snapshot after each structural change.
type Surface struct {
	bounds     image.Rectangle
	background color.RGBA
	fill       *Layer
	layerSeq   uint64
	strokes    []*Stroke
	preview    *Stroke
	guides     []Guide

	content *image.RGBA
	display *image.RGBA
	dirty   bool
	ddirty  bool
	z       *vector.Rasterizer
}

// Option configures a Surface during creation.
type Option func(*Surface)

// WithBackground sets the initial background colour.
func WithBackground(c color.RGBA) Option { return func(s *Surface) { s.background = c } }

// New creates a blank surface of the given size.
func New(width, height int, opts ...Option) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s := &Surface{
		bounds:     image.Rect(0, 0, width, height),
		background: Blank,
		dirty:      true,
		ddirty:     true,
	}
	for _, o := range opts {
		o(s)
	}
	s.content = image.NewRGBA(s.bounds)
	s.display = image.NewRGBA(s.bounds)
	s.z = vector.NewRasterizer(width, height)
	return s
}

func (s *Surface) ready() bool {
	return s != nil && !s.bounds.Empty()
}

func (s *Surface) touch() {
	s.dirty = true
	s.ddirty = true
}

// Bounds returns the drawable area.
func (s *Surface) Bounds() image.Rectangle {
	if s == nil {
		return image.Rectangle{}
	}
	return s.bounds
}

// BackgroundColor returns the solid colour beneath every other layer.
func (s *Surface) BackgroundColor() color.RGBA { return s.background }

// SetBackgroundColor replaces the solid background colour.
func (s *Surface) SetBackgroundColor(c color.RGBA) {
	s.background = c
	s.touch()
}

// FillLayer returns the active fill layer or nil.
func (s *Surface) FillLayer() *Layer { return s.fill }

// SetBackgroundImage installs img as the surface's only fill layer,
// superseding any previous one. The image is copied.
func (s *Surface) SetBackgroundImage(img *image.RGBA) error {
	if !s.ready() {
		return ErrNotInitialized
	}
	if img == nil || !img.Bounds().Eq(s.bounds) {
		return ErrBounds
	}
	s.layerSeq++
	s.fill = &Layer{Image: clone.AsRGBA(img), Version: s.layerSeq}
	s.touch()
	return nil
}

// PaintStroke appends a committed stroke built from points and style.
func (s *Surface) PaintStroke(points []Point, style Style) *Stroke {
	if len(points) == 0 {
		return nil
	}
	st := &Stroke{
		ID:     uuid.NewString(),
		Points: append([]Point(nil), points...),
		Style:  style,
	}
	s.strokes = append(s.strokes, st)
	s.touch()
	return st
}

// SetPreview shows an in-progress stroke on top of everything else. Pass nil
// to remove it. The preview is part of the composited pixels but not of scenes.
func (s *Surface) SetPreview(st *Stroke) {
	s.preview = st
	s.touch()
}

// Strokes returns the committed strokes in paint order.
func (s *Surface) Strokes() []*Stroke {
	return append([]*Stroke(nil), s.strokes...)
}

// RemoveStroke deletes the committed stroke with the given id.
func (s *Surface) RemoveStroke(id string) bool {
	for i, st := range s.strokes {
		if st.ID != id {
			continue
		}
		next := make([]*Stroke, 0, len(s.strokes)-1)
		next = append(next, s.strokes[:i]...)
		next = append(next, s.strokes[i+1:]...)
		s.strokes = next
		s.touch()
		return true
	}
	return false
}

// SetGuides replaces the guide layer.
func (s *Surface) SetGuides(g []Guide) {
	s.guides = append([]Guide(nil), g...)
	s.ddirty = true
}

// Guides returns the current guide layer.
func (s *Surface) Guides() []Guide { return append([]Guide(nil), s.guides...) }

// Clear removes every stroke and the fill layer and resets the background to
// Blank. Guides are left for the grid overlay to rebuild.
func (s *Surface) Clear() {
	s.strokes = nil
	s.preview = nil
	s.fill = nil
	s.background = Blank
	s.touch()
}

// Render flushes pending changes into the composited buffers.
func (s *Surface) Render() {
	if !s.ready() {
		return
	}
	if s.dirty {
		s.composite(s.content, false)
		s.dirty = false
	}
	if s.ddirty {
		s.composite(s.display, true)
		s.ddirty = false
	}
}

func (s *Surface) composite(dst *image.RGBA, guides bool) {
	draw.Draw(dst, s.bounds, image.NewUniform(s.background), image.Point{}, draw.Src)
	if s.fill != nil {
		draw.Draw(dst, s.bounds, s.fill.Image, image.Point{}, draw.Over)
	}
	if guides {
		for _, g := range s.guides {
			drawLine(dst, g.From.X, g.From.Y, g.To.X, g.To.Y, g.Color, 1)
		}
	}
	for _, st := range s.strokes {
		rasterizeStroke(s.z, dst, st)
	}
	rasterizeStroke(s.z, dst, s.preview)
}

// Pixels returns a copy of the composited content inside r. Pending renders
// are flushed first so the result matches what the user sees.
func (s *Surface) Pixels(r image.Rectangle) *image.RGBA {
	if !s.ready() {
		return nil
	}
	s.Render()
	r = r.Intersect(s.bounds)
	out := image.NewRGBA(r)
	draw.Draw(out, r, s.content, r.Min, draw.Src)
	return out
}

// Display returns the composited content with guides. The returned image is
// owned by the surface and only valid until the next mutation.
func (s *Surface) Display() *image.RGBA {
	if !s.ready() {
		return nil
	}
	s.Render()
	return s.display
}

// Capture encodes the composited content as PNG.
func (s *Surface) Capture() ([]byte, error) {
	if !s.ready() {
		return nil, ErrNotInitialized
	}
	s.Render()
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.content); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}
	return buf.Bytes(), nil
}
