package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sketchstory/internal/story"
)

func panelPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 70, 70))
	for y := 0; y < 70; y++ {
		for x := 0; x < 70; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func triplet(t *testing.T) [][]byte {
	return [][]byte{
		panelPNG(t, color.RGBA{255, 0, 0, 255}),
		panelPNG(t, color.RGBA{0, 255, 0, 255}),
		panelPNG(t, color.RGBA{0, 0, 255, 255}),
	}
}

var sample = &story.Story{
	Title:  "  The Red Ball ",
	Panels: []string{"A ball sits still.", "It starts to roll down the hill.", "It stops by a tree."},
	Moral:  "Slow down and look around.",
}

func TestNew(t *testing.T) {
	sb := New(triplet(t), sample)
	assert.Equal(t, "The Red Ball", sb.Title)
	require.Len(t, sb.Frames, 3)
	assert.Equal(t, "It stops by a tree.", sb.Frames[2].Text)

	sb = New(triplet(t), nil)
	assert.Equal(t, "Untitled Story", sb.Title)
	assert.Empty(t, sb.Frames[0].Text)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, New(triplet(t), sample)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestSavePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.pdf")
	require.NoError(t, SavePDF(path, New(triplet(t), sample)))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))
}

func TestPDFNoPanels(t *testing.T) {
	assert.ErrorIs(t, WritePDF(&bytes.Buffer{}, Storyboard{Title: "x"}), ErrNoPanels)
}

func TestPDFBadPanel(t *testing.T) {
	sb := Storyboard{Frames: []Frame{{PNG: []byte("nope")}}}
	assert.Error(t, WritePDF(&bytes.Buffer{}, sb))
}

func TestContactSheet(t *testing.T) {
	opts := DefaultSheetOptions()
	opts.PanelWidth = 100
	img, err := ContactSheet(New(triplet(t), sample), opts)
	require.NoError(t, err)

	b := img.Bounds()
	assert.Greater(t, b.Dx(), 3*100)
	assert.Equal(t, opts.Background, img.RGBAAt(1, 1))

	// The first card starts at the padding below the title.
	top := opts.Padding + 2*lineHeight
	px := img.RGBAAt(opts.Padding+50, top+50)
	assert.Greater(t, px.R, uint8(240))
	assert.Less(t, px.G, uint8(15))
}

func TestSaveSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.png")
	require.NoError(t, SaveSheet(path, New(triplet(t), sample), DefaultSheetOptions()))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want []string
	}{
		{"", 10, nil},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"hi abcdefgh", 4, []string{"hi", "abcd", "efgh"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wrap(tt.in, tt.n), tt.in)
	}
}
