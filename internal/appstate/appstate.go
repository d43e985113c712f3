// Package appstate drives a drawing session: the tool state machine, the
// panel and story flow, and the shiny window that presents them.
package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/sketchstory/internal/panel"
	"github.com/example/sketchstory/internal/theme"
)

const (
	titleHeight    = 28
	shortcutHeight = 22
	stripHeight    = 120
	toolbarWidth   = 72
	buttonHeight   = 24
	swatchSize     = 16
	swatchStep     = 20
	widthRowHeight = 18
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const messageDuration = 4 * time.Second

var titleFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	titleFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 16, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// shortcut is a clickable entry in the bottom bar that mirrors a key.
type shortcut struct {
	label  string
	action string
}

var shortcuts = []shortcut{
	{"Enter:capture", "capture"},
	{"U:undo", "undo"},
	{"R:redo", "redo"},
	{"C:clear", "clear"},
	{"G:grid", "grid"},
	{"X:remove", "remove"},
	{"P:replace", "replace"},
	{"[ ]:move", ""},
	{"S:story", "story"},
	{"^C:copy", "copy"},
	{"^V:paste", "paste"},
	{"^S:save", "save"},
	{"Q:quit", "quit"},
}

var toolLabels = []string{"B:Brush", "E:Eraser", "F:Fill"}

// layout holds every hit-testable rectangle for one window size.
type layout struct {
	toolbar   image.Rectangle
	canvas    image.Rectangle // area available to the canvas
	view      Viewport
	strip     image.Rectangle
	bottom    image.Rectangle
	tools     []image.Rectangle
	palette   []image.Rectangle
	widths    []image.Rectangle
	slots     []image.Rectangle
	shortcuts []image.Rectangle
}

func computeLayout(width, height int, canvasBounds image.Rectangle) layout {
	var l layout
	l.toolbar = image.Rect(0, titleHeight, toolbarWidth, height-shortcutHeight)
	l.bottom = image.Rect(0, height-shortcutHeight, width, height)
	l.strip = image.Rect(toolbarWidth, height-shortcutHeight-stripHeight, width, height-shortcutHeight)
	l.canvas = image.Rect(toolbarWidth+4, titleHeight+4, width-4, l.strip.Min.Y-4)
	if l.canvas.Empty() {
		l.canvas = image.Rect(toolbarWidth, titleHeight, toolbarWidth+1, titleHeight+1)
	}
	l.view = fitViewport(canvasBounds, l.canvas)

	y := l.toolbar.Min.Y
	for range toolLabels {
		l.tools = append(l.tools, image.Rect(0, y, toolbarWidth, y+buttonHeight))
		y += buttonHeight
	}
	y += 6
	cols := (toolbarWidth - 4) / swatchStep
	pal := PaletteColors()
	for i := range pal {
		x := 4 + (i%cols)*swatchStep
		row := y + (i/cols)*swatchStep
		l.palette = append(l.palette, image.Rect(x, row, x+swatchSize, row+swatchSize))
	}
	y += (len(pal) + cols - 1) / cols * swatchStep
	y += 6
	for range WidthOptions() {
		l.widths = append(l.widths, image.Rect(0, y, toolbarWidth, y+widthRowHeight))
		y += widthRowHeight
	}

	slotH := l.strip.Dy() - 24
	slotW := slotH * canvasBounds.Dx() / max(canvasBounds.Dy(), 1)
	x := l.strip.Min.X + 8
	for i := 0; i < panel.Capacity; i++ {
		l.slots = append(l.slots, image.Rect(x, l.strip.Min.Y+6, x+slotW, l.strip.Min.Y+6+slotH))
		x += slotW + 12
	}

	meas := &font.Drawer{Face: basicfont.Face7x13}
	x = 4
	for _, sc := range shortcuts {
		w := meas.MeasureString(sc.label).Ceil()
		l.shortcuts = append(l.shortcuts, image.Rect(x, l.bottom.Min.Y+2, x+w+6, l.bottom.Max.Y-2))
		x += w + 12
	}
	return l
}

func hit(rects []image.Rectangle, p image.Point) int {
	for i, r := range rects {
		if p.In(r) {
			return i
		}
	}
	return -1
}

// frame is everything the paint worker needs, detached from the session.
type frame struct {
	width, height int
	layout        layout
	theme         *theme.Theme
	display       *image.RGBA
	tool          ToolConfig
	colorIdx      int
	widthIdx      int
	thumbs        []*image.RGBA
	captions      []string
	selected      int
	title         string
	gridOn        bool
	busy          bool
	message       Message
	messageUntil  time.Time
	hoverShortcut int
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.Color, thick int) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thick), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-thick, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thick, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-thick, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func label(dst *image.RGBA, face font.Face, c color.Color, x, y int, s string) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func buttonColor(th *theme.Theme, state ButtonState) color.RGBA {
	if state == StatePressed {
		return th.ButtonActive
	}
	return th.ButtonBackground
}

// renderFrame paints fr into dst. It returns false when ctx was cancelled
// part way.
func renderFrame(ctx context.Context, dst *image.RGBA, fr frame) bool {
	th := fr.theme
	l := fr.layout
	fillRect(dst, dst.Bounds(), th.Background)

	if fr.display != nil {
		r := l.view.Rect(fr.display.Bounds())
		xdraw.NearestNeighbor.Scale(dst, r, fr.display, fr.display.Bounds(), draw.Src, nil)
		outline(dst, r.Inset(-1), th.CanvasBorder, 1)
	}
	if ctx.Err() != nil {
		return false
	}

	// title bar
	fillRect(dst, image.Rect(0, 0, fr.width, titleHeight), th.ToolbarBackground)
	label(dst, titleFace, th.Foreground, 6, 20, "SketchStory")
	status := fmt.Sprintf("%s  %s  %.0fpx", fr.tool.Tool, theme.FormatColor(fr.tool.Color), fr.tool.Width)
	if fr.gridOn {
		status += "  grid"
	}
	if fr.busy {
		status += "  writing story..."
	}
	label(dst, basicfont.Face7x13, th.Foreground, 120, 18, status)
	if fr.message.Text != "" && time.Now().Before(fr.messageUntil) {
		c := th.MessageInfo
		switch fr.message.Level {
		case LevelWarn:
			c = th.MessageWarn
		case LevelError:
			c = th.MessageError
		}
		meas := &font.Drawer{Face: basicfont.Face7x13}
		w := meas.MeasureString(fr.message.Text).Ceil()
		label(dst, basicfont.Face7x13, c, fr.width-w-8, 18, fr.message.Text)
	}

	// toolbar
	fillRect(dst, l.toolbar, th.ToolbarBackground)
	for i, r := range l.tools {
		state := StateDefault
		if Tool(i) == fr.tool.Tool {
			state = StatePressed
		}
		fillRect(dst, r.Inset(1), buttonColor(th, state))
		label(dst, basicfont.Face7x13, th.ButtonText, r.Min.X+4, r.Min.Y+16, toolLabels[i])
	}
	for i, p := range PaletteColors() {
		if i >= len(l.palette) {
			break
		}
		r := l.palette[i]
		fillRect(dst, r, p.Color)
		border := th.ButtonBorder
		if i == fr.colorIdx {
			border = th.ButtonActive
			outline(dst, r.Inset(-2), border, 2)
		} else {
			outline(dst, r, border, 1)
		}
	}
	for i, wv := range WidthOptions() {
		if i >= len(l.widths) {
			break
		}
		r := l.widths[i]
		state := StateDefault
		if i == fr.widthIdx {
			state = StatePressed
		}
		fillRect(dst, r.Inset(1), buttonColor(th, state))
		label(dst, basicfont.Face7x13, th.ButtonText, 4, r.Min.Y+13, fmt.Sprintf("%d", wv))
		h := min(wv/3+1, r.Dy()-4)
		cy := (r.Min.Y + r.Max.Y) / 2
		fillRect(dst, image.Rect(28, cy-h/2, r.Max.X-4, cy-h/2+h), fr.tool.Color)
	}
	if ctx.Err() != nil {
		return false
	}

	// panel strip
	fillRect(dst, l.strip, th.ToolbarBackground)
	for i, r := range l.slots {
		fillRect(dst, r, th.PanelSlot)
		if i < len(fr.thumbs) && fr.thumbs[i] != nil {
			xdraw.ApproxBiLinear.Scale(dst, r, fr.thumbs[i], fr.thumbs[i].Bounds(), draw.Src, nil)
		} else {
			label(dst, basicfont.Face7x13, th.PanelSlotBorder, r.Min.X+6, r.Min.Y+16, fmt.Sprintf("%d", i+1))
		}
		border, thick := th.PanelSlotBorder, 1
		if i == fr.selected {
			border, thick = th.ButtonActive, 2
		}
		outline(dst, r, border, thick)
		if i < len(fr.captions) && fr.captions[i] != "" {
			label(dst, basicfont.Face7x13, th.Foreground, r.Min.X, r.Max.Y+13, clip(fr.captions[i], r.Dx()/7))
		}
	}
	if fr.title != "" && len(l.slots) > 0 {
		last := l.slots[len(l.slots)-1]
		label(dst, titleFace, th.Foreground, last.Max.X+16, last.Min.Y+18, fr.title)
	}

	// shortcuts
	fillRect(dst, l.bottom, th.ToolbarBackground)
	for i, sc := range shortcuts {
		r := l.shortcuts[i]
		state := StateDefault
		if i == fr.hoverShortcut {
			state = StatePressed
		}
		fillRect(dst, r, buttonColor(th, state))
		outline(dst, r, th.ButtonBorder, 1)
		label(dst, basicfont.Face7x13, th.ButtonText, r.Min.X+3, r.Max.Y-5, sc.label)
	}
	return ctx.Err() == nil
}

func clip(s string, n int) string {
	if n <= 1 {
		return ""
	}
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, fr frame) {
	b, err := s.NewBuffer(image.Point{fr.width, fr.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	if !renderFrame(ctx, b.RGBA(), fr) {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
