package fill

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sketchstory/internal/canvas"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// boxed returns a w×h white image with a one pixel black frame around the
// inner rectangle r.
func boxed(w, h int, r image.Rectangle) *image.RGBA {
	img := solid(w, h, white)
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, black)
		img.SetRGBA(x, r.Max.Y-1, black)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, black)
		img.SetRGBA(r.Max.X-1, y, black)
	}
	return img
}

func TestFloodCounts(t *testing.T) {
	tests := []struct {
		name string
		src  *image.RGBA
		seed image.Point
		want int
	}{
		{"whole image", solid(5, 4, white), image.Pt(2, 2), 20},
		{"inside frame", boxed(10, 10, image.Rect(2, 2, 8, 8)), image.Pt(4, 4), 16},
		{"outside frame", boxed(10, 10, image.Rect(2, 2, 8, 8)), image.Pt(0, 0), 100 - 36},
		{"frame itself", boxed(10, 10, image.Rect(2, 2, 8, 8)), image.Pt(2, 2), 20},
		{"seed outside", solid(5, 5, white), image.Pt(5, 0), 0},
		{"negative seed", solid(5, 5, white), image.Pt(-1, 2), 0},
		{"already fill colour", solid(5, 5, red), image.Pt(1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, n := Flood(tt.src, tt.seed, red, DefaultTolerance)
			assert.Equal(t, tt.want, n)
			if tt.want == 0 {
				assert.Nil(t, out)
			}
		})
	}
}

func TestFloodDoesNotModifySource(t *testing.T) {
	src := solid(4, 4, white)
	out, n := Flood(src, image.Pt(0, 0), red, DefaultTolerance)
	require.Equal(t, 16, n)
	assert.Equal(t, white, src.RGBAAt(1, 1))
	assert.Equal(t, red, out.RGBAAt(1, 1))
}

func TestFloodTolerance(t *testing.T) {
	src := solid(3, 1, white)
	src.SetRGBA(1, 0, color.RGBA{248, 250, 255, 255})
	src.SetRGBA(2, 0, color.RGBA{240, 255, 255, 255})

	_, n := Flood(src, image.Pt(0, 0), red, DefaultTolerance)
	assert.Equal(t, 2, n, "8 levels away is inside, 15 is not")

	_, n = Flood(src, image.Pt(0, 0), red, 20)
	assert.Equal(t, 3, n)
}

func TestFloodNearFillIsNoop(t *testing.T) {
	src := solid(3, 3, color.RGBA{250, 3, 0, 255})
	out, n := Flood(src, image.Pt(1, 1), red, DefaultTolerance)
	assert.Nil(t, out)
	assert.Zero(t, n)
}

func TestFloodForcesOpaque(t *testing.T) {
	src := solid(2, 2, white)
	out, n := Flood(src, image.Pt(0, 0), color.RGBA{0, 0, 128, 128}, DefaultTolerance)
	require.Equal(t, 4, n)
	assert.Equal(t, uint8(255), out.RGBAAt(1, 1).A)
}

func TestFloodFourConnected(t *testing.T) {
	// Diagonal black line: the two white halves only touch at corners.
	src := solid(4, 4, white)
	for i := 0; i < 4; i++ {
		src.SetRGBA(i, i, black)
	}
	_, n := Flood(src, image.Pt(3, 0), red, DefaultTolerance)
	assert.Equal(t, 6, n)
}

func TestFloodLargeRegion(t *testing.T) {
	src := solid(700, 700, white)
	_, n := Flood(src, image.Pt(350, 350), red, DefaultTolerance)
	assert.Equal(t, 700*700, n)
}

func TestFloodSubImage(t *testing.T) {
	src := solid(10, 10, white).SubImage(image.Rect(2, 2, 6, 6)).(*image.RGBA)
	out, n := Flood(src, image.Pt(3, 3), red, DefaultTolerance)
	require.Equal(t, 16, n)
	assert.Equal(t, image.Rect(2, 2, 6, 6), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(5, 5))
}

type commitCounter struct{ n int }

func (c *commitCounter) Commit() bool { c.n++; return true }

func TestEngineFillAt(t *testing.T) {
	s := canvas.New(40, 40)
	// Square outline from 10,10 to 30,30 at integer coordinates keeps the
	// edges free of anti-aliasing.
	s.PaintStroke([]canvas.Point{{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 30}, {X: 10, Y: 30}, {X: 10, Y: 10}},
		canvas.Style{Color: black, Width: 4})
	h := &commitCounter{}
	e := NewEngine(s, h)

	res, err := e.FillAt(20, 20, red)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, 1, h.n)
	assert.Equal(t, 16*16, res.Filled)

	img := s.Pixels(s.Bounds())
	assert.Equal(t, red, img.RGBAAt(20, 20))
	assert.Equal(t, white, img.RGBAAt(2, 2))
	assert.Equal(t, black, img.RGBAAt(10, 20))
	require.NotNil(t, s.FillLayer())
}

func TestEngineNoopDoesNotCommit(t *testing.T) {
	s := canvas.New(10, 10)
	h := &commitCounter{}
	e := NewEngine(s, h)

	res, err := e.FillAt(50, 50, red)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	res, err = e.FillAt(1, 1, white)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	assert.Zero(t, h.n)
	assert.Nil(t, s.FillLayer())
}

func TestEngineUninitialized(t *testing.T) {
	e := NewEngine(&stubSurface{bounds: image.Rect(0, 0, 4, 4)}, nil)
	_, err := e.FillAt(1, 1, red)
	assert.True(t, errors.Is(err, canvas.ErrNotInitialized))
}

func TestEngineInstallError(t *testing.T) {
	s := &stubSurface{bounds: image.Rect(0, 0, 4, 4), pixels: solid(4, 4, white), err: canvas.ErrBounds}
	h := &commitCounter{}
	_, err := NewEngine(s, h).FillAt(1, 1, red)
	assert.ErrorIs(t, err, canvas.ErrBounds)
	assert.Zero(t, h.n)
}

type stubSurface struct {
	bounds image.Rectangle
	pixels *image.RGBA
	err    error
}

func (s *stubSurface) Bounds() image.Rectangle { return s.bounds }
func (s *stubSurface) Pixels(image.Rectangle) *image.RGBA { return s.pixels }
func (s *stubSurface) SetBackgroundImage(*image.RGBA) error {
	return s.err
}
