package grid

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sketchstory/internal/canvas"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		step   int
		want   int
	}{
		{"square", image.Rect(0, 0, 100, 100), 40, 4},
		{"exact multiple skips edge", image.Rect(0, 0, 80, 80), 40, 2},
		{"step larger than bounds", image.Rect(0, 0, 30, 30), 40, 0},
		{"zero step", image.Rect(0, 0, 30, 30), 0, 0},
		{"empty bounds", image.Rectangle{}, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Lines(tt.bounds, tt.step), tt.want)
		})
	}
}

func TestLinesGeometry(t *testing.T) {
	lines := Lines(image.Rect(0, 0, 50, 30), 20)
	require.Len(t, lines, 3)
	assert.Equal(t, image.Pt(20, 0), lines[0].From)
	assert.Equal(t, image.Pt(20, 29), lines[0].To)
	assert.Equal(t, image.Pt(0, 20), lines[2].From)
	assert.Equal(t, image.Pt(49, 20), lines[2].To)
}

func TestOverlayEnabled(t *testing.T) {
	s := canvas.New(100, 100)
	o := New(s, true, WithStep(25))
	assert.True(t, o.Enabled())
	assert.Len(t, s.Guides(), 6)
	for _, g := range s.Guides() {
		assert.Equal(t, DefaultColor, g.Color)
	}
	assert.Equal(t, DefaultColor, s.Display().RGBAAt(25, 10))
}

func TestOverlayDisabled(t *testing.T) {
	s := canvas.New(100, 100)
	o := New(s, false)
	assert.False(t, o.Enabled())
	assert.Empty(t, s.Guides())
}

func TestSetEnabledOnlyOnChange(t *testing.T) {
	s := canvas.New(100, 100)
	o := New(s, false)
	assert.False(t, o.SetEnabled(false))
	assert.True(t, o.SetEnabled(true))
	assert.NotEmpty(t, s.Guides())
	assert.False(t, o.SetEnabled(true))
	assert.True(t, o.SetEnabled(false))
	assert.Empty(t, s.Guides())
}

func TestRebuildAfterClear(t *testing.T) {
	s := canvas.New(100, 100)
	o := New(s, true)
	n := len(s.Guides())
	s.Clear()
	o.Rebuild(o.Enabled())
	assert.Len(t, s.Guides(), n)
}

func TestSetStyle(t *testing.T) {
	s := canvas.New(100, 100)
	blue := color.RGBA{0, 0, 255, 255}
	o := New(s, true, WithColor(blue))
	assert.False(t, o.SetStyle(DefaultStep, blue))
	assert.True(t, o.SetStyle(50, blue))
	assert.Equal(t, 50, o.Step())
	assert.Len(t, s.Guides(), 2)
	assert.False(t, o.SetStyle(0, blue))
}

func TestGuidesNotInCapture(t *testing.T) {
	s := canvas.New(100, 100)
	New(s, true)
	img := s.Pixels(s.Bounds())
	assert.Equal(t, canvas.Blank, img.RGBAAt(40, 10))
}
