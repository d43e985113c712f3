package appstate

import (
	"context"
	"image"
	"image/draw"
	"log"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/sketchstory/internal/config"
	"github.com/example/sketchstory/internal/quality"
	"github.com/example/sketchstory/internal/story"
	"github.com/example/sketchstory/internal/theme"
)

// AppState runs a Session in a window.
type AppState struct {
	session    *Session
	theme      *theme.Theme
	configPath string
	colorIdx   int
	widthIdx   int

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTheme sets the window colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.theme = t } }

// WithConfigWatch reloads settings whenever the file at path changes.
func WithConfigWatch(path string) Option { return func(a *AppState) { a.configPath = path } }

// WithColorIndex sets the initial palette index.
func WithColorIndex(idx int) Option { return func(a *AppState) { a.colorIdx = idx } }

// WithWidthIndex sets the initial stroke width index.
func WithWidthIndex(idx int) Option { return func(a *AppState) { a.widthIdx = idx } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates a window state for s.
func New(s *Session, opts ...Option) *AppState {
	a := &AppState{
		session:  s,
		theme:    theme.Default(),
		colorIdx: defaultColorIndex,
		widthIdx: defaultWidthIndex,
	}
	for _, o := range opts {
		o(a)
	}
	a.colorIdx = clampIndex(a.colorIdx, len(PaletteColors()))
	a.widthIdx = clampIndex(a.widthIdx, len(WidthOptions()))
	return a
}

// SettingsFromConfig derives session settings from a configuration and the
// active theme.
func SettingsFromConfig(cfg *config.Config, th *theme.Theme) Settings {
	gate := quality.Default()
	gate.MinBytes = cfg.Quality.MinBytes
	gate.MinVariance = cfg.Quality.MinVariance
	st := Settings{
		GridGuides: cfg.Canvas.GridGuides,
		GridStep:   cfg.Canvas.GridStep,
		Gate:       gate,
		Mood:       cfg.Story.Mood,
	}
	if th != nil {
		st.GridColor = th.GridLine
	}
	return st
}

type settingsEvent struct{ settings Settings }

type storyEvent struct {
	story *story.Story
	err   error
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		a.session.Close()
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main is the shiny entry point.
func (a *AppState) Main(s screen.Screen) {
	sess := a.session
	b := sess.Surface().Bounds()
	width := b.Dx() + toolbarWidth + 8
	height := b.Dy() + titleHeight + stripHeight + shortcutHeight + 8
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "SketchStory"})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.configPath != "" {
		th := a.theme
		go func() {
			err := config.Watch(ctx, a.configPath, func(cfg *config.Config) {
				w.Send(settingsEvent{SettingsFromConfig(cfg, th)})
			})
			if err != nil {
				log.Printf("config: %v", err)
			}
		}()
	}

	colorIdx, widthIdx := a.colorIdx, a.widthIdx
	sess.SetColor(paletteColorAt(colorIdx))
	sess.SetWidth(float32(widthAt(widthIdx)))

	var (
		lay          = computeLayout(width, height, b)
		dragging     bool
		selected     int
		busy         bool
		confirmClear bool
		message      Message
		messageUntil time.Time
		hoverSC      = -1
	)
	show := func(m Message) {
		if m.IsZero() {
			return
		}
		message = m
		messageUntil = time.Now().Add(messageDuration)
		if m.Level != LevelError {
			log.Print(m.Text)
		}
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan frame, 1)
	go func() {
		for fr := range paintCh {
			fctx, fcancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = fcancel
			paintMu.Unlock()
			drawFrame(fctx, s, w, fr)
			paintMu.Lock()
			paintCancel = nil
			if fctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			fcancel()
		}
	}()
	defer close(paintCh)

	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	actions := map[string]func(){
		"capture": func() { show(sess.CapturePanel()) },
		"undo":    func() { show(sess.Undo()) },
		"redo":    func() { show(sess.Redo()) },
		"clear": func() {
			if !confirmClear {
				confirmClear = true
				show(info("press C again to clear the drawing"))
				return
			}
			sess.Clear()
			show(info("drawing cleared"))
		},
		"grid": func() {
			g := sess.Grid()
			g.SetEnabled(!g.Enabled())
		},
		"remove": func() {
			show(sess.RemovePanel(selected))
			if n := len(sess.Panels()); selected >= n && n > 0 {
				selected = n - 1
			}
		},
		"replace": func() { show(sess.ReplacePanel(selected)) },
		"left": func() {
			if selected > 0 {
				show(sess.ReorderPanel(selected, selected-1))
				selected--
			}
		},
		"right": func() {
			if selected < len(sess.Panels())-1 {
				show(sess.ReorderPanel(selected, selected+1))
				selected++
			}
		},
		"story": func() {
			if busy {
				show(info("still writing the story"))
				return
			}
			req, msg := sess.PrepareStory()
			show(msg)
			if req == nil {
				return
			}
			busy = true
			go func() {
				st, err := req.Run(ctx)
				w.Send(storyEvent{story: st, err: err})
			}()
		},
		"copy":  func() { show(sess.CopyPanel(selected)) },
		"paste": func() { show(sess.PasteBackground()) },
		"save": func() {
			_, msg := sess.SaveStory()
			show(msg)
		},
	}
	trigger := func(action string) bool {
		if action == "quit" {
			stopPaint()
			return false
		}
		if action != "clear" {
			confirmClear = false
		}
		if fn, ok := actions[action]; ok {
			fn()
		}
		w.Send(paint.Event{})
		return true
	}

	for {
		switch e := w.NextEvent().(type) {
		case settingsEvent:
			if sess.ApplySettings(e.settings) {
				w.Send(paint.Event{})
			}
		case storyEvent:
			busy = false
			show(sess.FinishStory(e.story, e.err))
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			lay = computeLayout(width, height, b)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			fr := a.frame(lay, width, height, colorIdx, widthIdx, selected, busy, message, messageUntil, hoverSC)
			select {
			case paintCh <- fr:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- fr
			}
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			if dragging {
				cp := lay.view.ToCanvas(e.X, e.Y)
				switch e.Direction {
				case mouse.DirNone:
					sess.PointerMove(cp)
				case mouse.DirRelease:
					sess.PointerUp(cp)
					dragging = false
				}
				w.Send(paint.Event{})
				continue
			}
			if i := hit(lay.shortcuts, p); i >= 0 || hoverSC >= 0 {
				if i != hoverSC {
					hoverSC = i
					w.Send(paint.Event{})
				}
				if i >= 0 && e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					if !trigger(shortcuts[i].action) {
						return
					}
				}
			}
			if e.Button == mouse.ButtonRight && e.Direction == mouse.DirPress && p.In(lay.view.Rect(b)) {
				confirmClear = false
				show(sess.EraseStrokeAt(lay.view.ToCanvas(e.X, e.Y)))
				w.Send(paint.Event{})
				continue
			}
			if e.Button != mouse.ButtonLeft || e.Direction != mouse.DirPress {
				continue
			}
			confirmClear = false
			switch {
			case hit(lay.tools, p) >= 0:
				sess.SelectTool(Tool(hit(lay.tools, p)))
			case hit(lay.palette, p) >= 0:
				colorIdx = hit(lay.palette, p)
				sess.SetColor(paletteColorAt(colorIdx))
			case hit(lay.widths, p) >= 0:
				widthIdx = hit(lay.widths, p)
				sess.SetWidth(float32(widthAt(widthIdx)))
			case hit(lay.slots, p) >= 0:
				if i := hit(lay.slots, p); i < len(sess.Panels()) {
					selected = i
				}
			case p.In(lay.view.Rect(b)):
				show(sess.PointerDown(lay.view.ToCanvas(e.X, e.Y)))
				dragging = sess.Drawing()
			default:
				continue
			}
			w.Send(paint.Event{})
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			action := keyAction(e)
			switch action {
			case "":
				continue
			case "brush", "eraser", "fill":
				t, _ := ParseTool(action)
				sess.SelectTool(t)
				confirmClear = false
				w.Send(paint.Event{})
			case "wider", "thinner":
				if action == "wider" {
					widthIdx = clampIndex(widthIdx+1, len(WidthOptions()))
				} else {
					widthIdx = clampIndex(widthIdx-1, len(WidthOptions()))
				}
				sess.SetWidth(float32(widthAt(widthIdx)))
				w.Send(paint.Event{})
			case "panel1", "panel2", "panel3":
				if i := int(action[5] - '1'); i < len(sess.Panels()) {
					selected = i
					w.Send(paint.Event{})
				}
			default:
				if !trigger(action) {
					return
				}
			}
		}
	}
}

// keyAction maps a key press to an action name.
func keyAction(e key.Event) string {
	if e.Modifiers&key.ModControl != 0 {
		switch unicode.ToLower(e.Rune) {
		case 'c':
			return "copy"
		case 'v':
			return "paste"
		case 's':
			return "save"
		case 'z':
			return "undo"
		case 'y':
			return "redo"
		}
		return ""
	}
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		return "capture"
	case key.CodeEscape:
		return "quit"
	}
	switch unicode.ToLower(e.Rune) {
	case 'b':
		return "brush"
	case 'e':
		return "eraser"
	case 'f':
		return "fill"
	case 'u':
		return "undo"
	case 'r':
		return "redo"
	case 'c':
		return "clear"
	case 'g':
		return "grid"
	case 'x':
		return "remove"
	case 'p':
		return "replace"
	case '[':
		return "left"
	case ']':
		return "right"
	case 's':
		return "story"
	case '+', '=':
		return "wider"
	case '-':
		return "thinner"
	case '1', '2', '3':
		return "panel" + string(e.Rune)
	case 'q':
		return "quit"
	}
	return ""
}

// frame snapshots what the paint worker draws. The display buffer is copied
// because the surface reuses it.
func (a *AppState) frame(l layout, width, height, colorIdx, widthIdx, selected int, busy bool, msg Message, until time.Time, hover int) frame {
	sess := a.session
	fr := frame{
		width:         width,
		height:        height,
		layout:        l,
		theme:         a.theme,
		tool:          sess.Tool(),
		colorIdx:      colorIdx,
		widthIdx:      widthIdx,
		selected:      selected,
		gridOn:        sess.Grid().Enabled(),
		busy:          busy,
		message:       msg,
		messageUntil:  until,
		hoverShortcut: hover,
	}
	if d := sess.Surface().Display(); d != nil {
		fr.display = image.NewRGBA(d.Bounds())
		draw.Draw(fr.display, d.Bounds(), d, d.Bounds().Min, draw.Src)
	}
	for _, p := range sess.Panels() {
		fr.thumbs = append(fr.thumbs, p.Pixels())
	}
	if st := sess.Story(); st != nil {
		fr.title = st.Title
		fr.captions = append([]string(nil), st.Panels...)
	}
	return fr
}
