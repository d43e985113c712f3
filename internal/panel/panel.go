// Package panel holds the ordered set of accepted captures that make up a
// story.
package panel

import (
	"errors"
	"image"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Capacity is the number of panels in a complete story.
const Capacity = 3

var (
	// ErrFull is returned when adding to a collection that already holds Capacity panels.
	ErrFull = errors.New("panel: collection is full")
	// ErrNotFound is returned for an unknown panel id.
	ErrNotFound = errors.New("panel: not found")
	// ErrIndex is returned for a reorder position outside the collection.
	ErrIndex = errors.New("panel: index out of range")
	// ErrIncomplete is returned when fewer than Capacity panels are present.
	ErrIncomplete = errors.New("panel: collection incomplete")
)

// Panel is one accepted capture. Its buffers are dropped by Release.
type Panel struct {
	ID      string
	encoded []byte
	pixels  *image.RGBA

	once    sync.Once
	cleanup []func()
}

// Option configures a Panel.
type Option func(*Panel)

// WithCleanup registers fn to run once when the panel is released, such as
// removing a temporary preview file.
func WithCleanup(fn func()) Option {
	return func(p *Panel) {
		if fn != nil {
			p.cleanup = append(p.cleanup, fn)
		}
	}
}

// New wraps an encoded capture and the pixels it was made from.
func New(encoded []byte, pixels *image.RGBA, opts ...Option) *Panel {
	p := &Panel{ID: uuid.NewString(), encoded: encoded, pixels: pixels}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Encoded returns the PNG bytes, or nil after Release.
func (p *Panel) Encoded() []byte { return p.encoded }

// Pixels returns the originating image, or nil after Release.
func (p *Panel) Pixels() *image.RGBA { return p.pixels }

// Released reports whether Release has run.
func (p *Panel) Released() bool { return p.encoded == nil && p.pixels == nil }

// Release drops the buffers and runs cleanup hooks. Further calls do nothing.
func (p *Panel) Release() {
	p.once.Do(func() {
		p.encoded = nil
		p.pixels = nil
		for _, fn := range p.cleanup {
			fn()
		}
		p.cleanup = nil
	})
}

// Collection is an ordered list of at most Capacity panels. Order is story
// order. It is not safe for concurrent use.
type Collection struct {
	panels []*Panel
}

// Len returns the number of panels.
func (c *Collection) Len() int { return len(c.panels) }

// IsComplete reports whether the collection holds exactly Capacity panels.
func (c *Collection) IsComplete() bool { return len(c.panels) == Capacity }

// Panels returns the panels in order.
func (c *Collection) Panels() []*Panel { return append([]*Panel(nil), c.panels...) }

// Add appends p.
func (c *Collection) Add(p *Panel) error {
	if len(c.panels) >= Capacity {
		return ErrFull
	}
	c.panels = append(c.panels, p)
	return nil
}

func (c *Collection) index(id string) int {
	for i, p := range c.panels {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes and releases the panel with the given id.
func (c *Collection) Remove(id string) error {
	i := c.index(id)
	if i < 0 {
		return ErrNotFound
	}
	p := c.panels[i]
	c.panels = append(c.panels[:i], c.panels[i+1:]...)
	p.Release()
	return nil
}

// Replace swaps the panel with the given id for p in the same position and
// releases the old one.
func (c *Collection) Replace(id string, p *Panel) error {
	i := c.index(id)
	if i < 0 {
		return ErrNotFound
	}
	old := c.panels[i]
	c.panels[i] = p
	if old != p {
		old.Release()
	}
	return nil
}

// Reorder moves the panel at from to position to, shifting the others.
func (c *Collection) Reorder(from, to int) error {
	n := len(c.panels)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrIndex
	}
	if from == to {
		return nil
	}
	p := c.panels[from]
	c.panels = append(c.panels[:from], c.panels[from+1:]...)
	c.panels = append(c.panels[:to], append([]*Panel{p}, c.panels[to:]...)...)
	return nil
}

// Images returns the encoded panels in order once the collection is complete.
func (c *Collection) Images() ([][]byte, error) {
	if !c.IsComplete() {
		return nil, ErrIncomplete
	}
	out := make([][]byte, len(c.panels))
	for i, p := range c.panels {
		out[i] = p.Encoded()
	}
	return out, nil
}

// ReleaseAll releases and drops every panel.
func (c *Collection) ReleaseAll() {
	for _, p := range c.panels {
		p.Release()
	}
	if len(c.panels) > 0 {
		log.Printf("panel: released %d panels", len(c.panels))
	}
	c.panels = nil
}
