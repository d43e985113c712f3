package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/sketchstory/internal/render"
)

// SheetOptions controls the contact sheet layout.
type SheetOptions struct {
	PanelWidth int
	Padding    int
	Background color.RGBA
	Ink        color.RGBA
	Shadow     render.Shadow
}

// DefaultSheetOptions lays panels out at 320 pixels wide on a warm paper tone.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{
		PanelWidth: 320,
		Padding:    24,
		Background: color.RGBA{250, 246, 238, 255},
		Ink:        color.RGBA{40, 40, 40, 255},
		Shadow:     render.DefaultShadow(),
	}
}

const lineHeight = 16

// ContactSheet lays the frames out left to right with their text beneath and
// the title and moral above and below.
func ContactSheet(sb Storyboard, opts SheetOptions) (*image.RGBA, error) {
	imgs, err := sb.decode()
	if err != nil {
		return nil, err
	}
	if opts.PanelWidth <= 0 {
		opts.PanelWidth = DefaultSheetOptions().PanelWidth
	}
	face := basicfont.Face7x13
	maxChars := opts.PanelWidth / face.Advance

	cards := make([]render.Card, len(imgs))
	captions := make([][]string, len(imgs))
	cellW, cardH, textLines := 0, 0, 0
	for i, img := range imgs {
		b := img.Bounds()
		h := opts.PanelWidth * b.Dy() / b.Dx()
		thumb := image.NewRGBA(image.Rect(0, 0, opts.PanelWidth, h))
		xdraw.CatmullRom.Scale(thumb, thumb.Bounds(), img, b, draw.Src, nil)
		cards[i] = render.WithShadow(thumb, opts.Shadow)
		cb := cards[i].Image.Bounds()
		cellW = max(cellW, cb.Dx())
		cardH = max(cardH, cb.Dy())
		captions[i] = wrap(sb.Frames[i].Text, maxChars)
		textLines = max(textLines, len(captions[i]))
	}

	pad := opts.Padding
	titleH := 2 * lineHeight
	moralH := 0
	if sb.Moral != "" {
		moralH = 2 * lineHeight
	}
	w := pad + len(cards)*(cellW+pad)
	h := pad + titleH + cardH + textLines*lineHeight + moralH + 2*pad
	sheet := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	ink := image.NewUniform(opts.Ink)
	d := &font.Drawer{Dst: sheet, Src: ink, Face: face}
	centre(d, sb.Title, w/2, pad+lineHeight)

	top := pad + titleH
	for i, c := range cards {
		x := pad + i*(cellW+pad)
		r := c.Image.Bounds().Add(image.Pt(x, top))
		draw.Draw(sheet, r, c.Image, image.Point{}, draw.Over)
		cx := x + c.Content.X + opts.PanelWidth/2
		for j, line := range captions[i] {
			centre(d, line, cx, top+cardH+pad/2+(j+1)*lineHeight)
		}
	}
	if sb.Moral != "" {
		centre(d, "Moral: "+sb.Moral, w/2, h-pad)
	}
	return sheet, nil
}

// SaveSheet writes the contact sheet to path as PNG.
func SaveSheet(path string, sb Storyboard, opts SheetOptions) error {
	img, err := ContactSheet(sb, opts)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func centre(d *font.Drawer, s string, cx, baseline int) {
	width := d.MeasureString(s).Ceil()
	d.Dot = fixed.P(cx-width/2, baseline)
	d.DrawString(s)
}

// wrap breaks s on spaces into lines of at most n characters. Words longer
// than n are split.
func wrap(s string, n int) []string {
	if n <= 0 {
		n = 1
	}
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(s) {
		for len(word) > n {
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			lines = append(lines, word[:n])
			word = word[n:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(word) > n {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
