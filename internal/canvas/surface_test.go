package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var black = color.RGBA{0, 0, 0, 255}

func TestNewSurfaceIsBlank(t *testing.T) {
	s := New(10, 8)
	img := s.Pixels(s.Bounds())
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 10, 8), img.Bounds())
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			assert.Equal(t, Blank, img.RGBAAt(x, y))
		}
	}
}

func TestPaintStrokeDot(t *testing.T) {
	s := New(40, 40)
	st := s.PaintStroke([]Point{{20, 20}}, Style{Color: black, Width: 10})
	require.NotNil(t, st)
	assert.NotEmpty(t, st.ID)

	img := s.Pixels(s.Bounds())
	assert.Equal(t, black, img.RGBAAt(20, 20))
	assert.Equal(t, Blank, img.RGBAAt(2, 2))
}

func TestPaintStrokeEmptyPoints(t *testing.T) {
	s := New(10, 10)
	assert.Nil(t, s.PaintStroke(nil, Style{Color: black, Width: 4}))
	assert.Empty(t, s.Strokes())
}

func TestPaintStrokeCopiesPoints(t *testing.T) {
	s := New(20, 20)
	pts := []Point{{1, 1}, {5, 5}}
	st := s.PaintStroke(pts, Style{Color: black, Width: 2})
	pts[0] = Point{19, 19}
	assert.Equal(t, Point{1, 1}, st.Points[0])
}

func TestStrokeSegmentCoversLine(t *testing.T) {
	s := New(50, 20)
	s.PaintStroke([]Point{{5, 10}, {45, 10}}, Style{Color: black, Width: 4})
	img := s.Pixels(s.Bounds())
	for x := 5; x < 45; x++ {
		assert.Equal(t, black, img.RGBAAt(x, 10), "x=%d", x)
	}
	assert.Equal(t, Blank, img.RGBAAt(25, 2))
}

func TestEraserPaintsBackground(t *testing.T) {
	s := New(30, 30)
	s.PaintStroke([]Point{{15, 15}}, Style{Color: black, Width: 20})
	s.PaintStroke([]Point{{15, 15}}, Style{Color: Blank, Width: 6, Mode: ModeBackground})
	img := s.Pixels(s.Bounds())
	assert.Equal(t, Blank, img.RGBAAt(15, 15))
	assert.Equal(t, black, img.RGBAAt(15, 7))
}

func TestPreviewIsCompositedButNotInScene(t *testing.T) {
	s := New(20, 20)
	s.SetPreview(&Stroke{Points: []Point{{10, 10}}, Style: Style{Color: black, Width: 8}})
	assert.Equal(t, black, s.Pixels(s.Bounds()).RGBAAt(10, 10))
	assert.Empty(t, s.Snapshot().Strokes)

	s.SetPreview(nil)
	assert.Equal(t, Blank, s.Pixels(s.Bounds()).RGBAAt(10, 10))
}

func TestRemoveStroke(t *testing.T) {
	s := New(20, 20)
	a := s.PaintStroke([]Point{{5, 5}}, Style{Color: black, Width: 4})
	b := s.PaintStroke([]Point{{15, 15}}, Style{Color: black, Width: 4})

	assert.True(t, s.RemoveStroke(a.ID))
	assert.False(t, s.RemoveStroke(a.ID))
	require.Len(t, s.Strokes(), 1)
	assert.Equal(t, b.ID, s.Strokes()[0].ID)
	assert.Equal(t, Blank, s.Pixels(s.Bounds()).RGBAAt(5, 5))
}

func TestSetBackgroundImage(t *testing.T) {
	s := New(4, 4)
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	red := color.RGBA{255, 0, 0, 255}
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], []uint8{255, 0, 0, 255})
	}

	require.NoError(t, s.SetBackgroundImage(img))
	first := s.FillLayer()
	require.NotNil(t, first)
	assert.Equal(t, red, s.Pixels(s.Bounds()).RGBAAt(1, 1))

	img.SetRGBA(1, 1, black)
	assert.Equal(t, red, s.Pixels(s.Bounds()).RGBAAt(1, 1), "layer must be a copy")

	require.NoError(t, s.SetBackgroundImage(img))
	assert.Greater(t, s.FillLayer().Version, first.Version)
}

func TestSetBackgroundImageBounds(t *testing.T) {
	s := New(4, 4)
	assert.ErrorIs(t, s.SetBackgroundImage(image.NewRGBA(image.Rect(0, 0, 3, 4))), ErrBounds)
	assert.ErrorIs(t, s.SetBackgroundImage(nil), ErrBounds)
	assert.ErrorIs(t, New(0, 0).SetBackgroundImage(image.NewRGBA(image.Rect(0, 0, 1, 1))), ErrNotInitialized)
}

func TestGuidesOnlyOnDisplay(t *testing.T) {
	s := New(20, 20)
	grey := color.RGBA{200, 200, 200, 255}
	s.SetGuides([]Guide{{From: image.Pt(10, 0), To: image.Pt(10, 19), Color: grey}})

	assert.Equal(t, grey, s.Display().RGBAAt(10, 5))
	assert.Equal(t, Blank, s.Pixels(s.Bounds()).RGBAAt(10, 5))

	capture, err := s.Capture()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(capture))
	require.NoError(t, err)
	r, g, b, _ := img.At(10, 5).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestGuidesBeneathStrokes(t *testing.T) {
	s := New(20, 20)
	s.SetGuides([]Guide{{From: image.Pt(0, 10), To: image.Pt(19, 10), Color: color.RGBA{200, 0, 0, 255}}})
	s.PaintStroke([]Point{{10, 10}}, Style{Color: black, Width: 6})
	assert.Equal(t, black, s.Display().RGBAAt(10, 10))
}

func TestClear(t *testing.T) {
	s := New(10, 10, WithBackground(color.RGBA{0, 0, 255, 255}))
	s.PaintStroke([]Point{{5, 5}}, Style{Color: black, Width: 4})
	require.NoError(t, s.SetBackgroundImage(image.NewRGBA(s.Bounds())))
	s.Clear()
	assert.Empty(t, s.Strokes())
	assert.Nil(t, s.FillLayer())
	assert.Equal(t, Blank, s.BackgroundColor())
	assert.Equal(t, Blank, s.Pixels(s.Bounds()).RGBAAt(5, 5))
}

func TestCaptureUninitialized(t *testing.T) {
	var s *Surface
	_, err := s.Capture()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = New(0, 10).Capture()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestPixelsClipsToBounds(t *testing.T) {
	s := New(10, 10)
	img := s.Pixels(image.Rect(5, 5, 20, 20))
	assert.Equal(t, image.Rect(5, 5, 10, 10), img.Bounds())
}

func TestSnapshotRestore(t *testing.T) {
	s := New(20, 20)
	before := s.Snapshot()
	s.PaintStroke([]Point{{10, 10}}, Style{Color: black, Width: 6})
	after := s.Snapshot()
	assert.False(t, before.Equal(after))

	require.NoError(t, s.Restore(before))
	assert.Empty(t, s.Strokes())
	assert.Equal(t, Blank, s.Pixels(s.Bounds()).RGBAAt(10, 10))

	require.NoError(t, s.Restore(after))
	assert.True(t, s.Snapshot().Equal(after))
	assert.Equal(t, black, s.Pixels(s.Bounds()).RGBAAt(10, 10))
}

func TestRestoreMismatch(t *testing.T) {
	s := New(10, 10)
	bad := Scene{Background: Blank, Fill: &Layer{Image: image.NewRGBA(image.Rect(0, 0, 5, 5))}}
	assert.ErrorIs(t, s.Restore(bad), ErrSceneMismatch)
	assert.ErrorIs(t, s.Restore(Scene{Strokes: []*Stroke{nil}}), ErrSceneMismatch)
}

func TestStrokeBounds(t *testing.T) {
	st := &Stroke{Points: []Point{{10, 10}, {20, 5}}, Style: Style{Width: 4}}
	assert.Equal(t, image.Rect(7, 2, 23, 13), st.Bounds())
	assert.True(t, (*Stroke)(nil).Bounds().Empty())
}
