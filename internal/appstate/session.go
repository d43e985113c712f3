package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/example/sketchstory/internal/canvas"
	"github.com/example/sketchstory/internal/clipboard"
	"github.com/example/sketchstory/internal/export"
	"github.com/example/sketchstory/internal/fill"
	"github.com/example/sketchstory/internal/grid"
	"github.com/example/sketchstory/internal/history"
	"github.com/example/sketchstory/internal/notify"
	"github.com/example/sketchstory/internal/panel"
	"github.com/example/sketchstory/internal/quality"
	"github.com/example/sketchstory/internal/story"
)

// Level grades a Message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "info"
}

// Message is a user-facing outcome. The zero value means there is nothing to
// report.
type Message struct {
	Level Level
	Text  string
}

func (m Message) IsZero() bool { return m.Text == "" }

func info(format string, args ...any) Message {
	return Message{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

func warn(format string, args ...any) Message {
	return Message{Level: LevelWarn, Text: fmt.Sprintf(format, args...)}
}

func failure(format string, args ...any) Message {
	m := Message{Level: LevelError, Text: fmt.Sprintf(format, args...)}
	log.Print(m.Text)
	return m
}

// Clipboard access, swapped out in tests.
var (
	writeClipboard = clipboard.WritePNG
	readClipboard  = clipboard.ReadImage
)

// Settings are the values the configuration pushes into a running session.
type Settings struct {
	GridGuides bool
	GridStep   int
	GridColor  color.RGBA
	Gate       quality.Gate
	Mood       string
}

// Session owns one drawing surface with its history, fill engine, grid and
// captured panels. It is not safe for concurrent use; the window loop or the
// REPL is its only caller.
type Session struct {
	surface *canvas.Surface
	history *history.Manager
	filler  *fill.Engine
	grid    *grid.Overlay
	panels  panel.Collection

	gate      quality.Gate
	notifier  *notify.Notifier
	generator story.Generator
	mood      string
	saveDir   string

	tool    ToolConfig
	drawing *canvas.Stroke
	story   *story.Story
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithGate replaces quality.Default.
func WithGate(g quality.Gate) SessionOption { return func(s *Session) { s.gate = g } }

// WithNotifier routes panel, story and save events to n.
func WithNotifier(n *notify.Notifier) SessionOption { return func(s *Session) { s.notifier = n } }

// WithGenerator sets the story service.
func WithGenerator(g story.Generator) SessionOption { return func(s *Session) { s.generator = g } }

// WithMood sets the mood sent with story requests.
func WithMood(m string) SessionOption { return func(s *Session) { s.mood = m } }

// WithSaveDir sets where SaveStory writes.
func WithSaveDir(dir string) SessionOption { return func(s *Session) { s.saveDir = dir } }

// WithBackground sets the starting background colour. Clear still returns the
// surface to canvas.Blank.
func WithBackground(c color.RGBA) SessionOption {
	return func(s *Session) { s.surface.SetBackgroundColor(c) }
}

// WithGrid sets the initial guide state.
func WithGrid(enabled bool, step int, c color.RGBA) SessionOption {
	return func(s *Session) {
		s.grid = grid.New(s.surface, enabled, grid.WithStep(step), grid.WithColor(c))
	}
}

// NewSession creates a blank width×height session with the brush selected.
func NewSession(width, height int, opts ...SessionOption) *Session {
	s := &Session{
		surface: canvas.New(width, height),
		gate:    quality.Default(),
		mood:    story.DefaultMood,
		tool: ToolConfig{
			Tool:  ToolBrush,
			Color: paletteColorAt(defaultColorIndex),
			Width: float32(widthAt(defaultWidthIndex)),
		},
	}
	for _, o := range opts {
		o(s)
	}
	if s.grid == nil {
		s.grid = grid.New(s.surface, false)
	}
	s.history = history.New(s.surface)
	s.filler = fill.NewEngine(s.surface, s.history)
	return s
}

// Surface returns the drawing surface.
func (s *Session) Surface() *canvas.Surface { return s.surface }

// History returns the undo manager.
func (s *Session) History() *history.Manager { return s.history }

// Grid returns the guide overlay.
func (s *Session) Grid() *grid.Overlay { return s.grid }

// Tool returns the current tool configuration.
func (s *Session) Tool() ToolConfig { return s.tool }

// SelectTool switches tools. A stroke in progress is discarded.
func (s *Session) SelectTool(t Tool) {
	if t < ToolBrush || t > ToolFill {
		return
	}
	s.cancelStroke()
	s.tool.Tool = t
}

// SetColor changes the colour of the next stroke or fill.
func (s *Session) SetColor(c color.RGBA) { s.tool.Color = c }

// SetWidth changes the width of the next stroke, clamped to the allowed range.
func (s *Session) SetWidth(w float32) { s.tool.Width = ClampWidth(w) }

// Drawing reports whether a stroke is in progress.
func (s *Session) Drawing() bool { return s.drawing != nil }

// PointerDown starts a stroke, or fills for the fill tool.
func (s *Session) PointerDown(p canvas.Point) Message {
	if s.tool.Tool == ToolFill {
		x, y := int(math.Floor(float64(p.X))), int(math.Floor(float64(p.Y)))
		res, err := s.filler.FillAt(x, y, s.tool.Color)
		if err != nil {
			return failure("fill failed: %v", err)
		}
		if res.Filled > 0 && !res.Committed {
			log.Printf("fill: %d pixels not recorded in history", res.Filled)
		}
		return Message{}
	}
	style := canvas.Style{Color: s.tool.Color, Width: s.tool.Width}
	if s.tool.Tool == ToolEraser {
		style.Color = s.surface.BackgroundColor()
		style.Mode = canvas.ModeBackground
	}
	s.drawing = &canvas.Stroke{Points: []canvas.Point{p}, Style: style}
	s.surface.SetPreview(s.drawing)
	return Message{}
}

// PointerMove extends the stroke in progress.
func (s *Session) PointerMove(p canvas.Point) {
	if s.drawing == nil {
		return
	}
	if last := s.drawing.Points[len(s.drawing.Points)-1]; last == p {
		return
	}
	s.drawing.Points = append(s.drawing.Points, p)
	s.surface.SetPreview(s.drawing)
}

// PointerUp commits the stroke in progress and records it in history.
func (s *Session) PointerUp(p canvas.Point) {
	if s.drawing == nil {
		return
	}
	s.PointerMove(p)
	st := s.drawing
	s.drawing = nil
	s.surface.SetPreview(nil)
	s.surface.PaintStroke(st.Points, st.Style)
	s.history.Commit()
}

func (s *Session) cancelStroke() {
	if s.drawing != nil {
		s.drawing = nil
		s.surface.SetPreview(nil)
	}
}

// Undo steps back one history entry.
func (s *Session) Undo() Message {
	s.cancelStroke()
	ok, err := s.history.Undo()
	switch {
	case err != nil:
		return failure("undo unavailable: %v", err)
	case !ok:
		return info("nothing to undo")
	}
	return Message{}
}

// Redo re-applies the last undone entry.
func (s *Session) Redo() Message {
	s.cancelStroke()
	ok, err := s.history.Redo()
	switch {
	case err != nil:
		return failure("redo unavailable: %v", err)
	case !ok:
		return info("nothing to redo")
	}
	return Message{}
}

// Clear wipes the surface, rebuilds the guides and starts history afresh
// from the blank scene.
func (s *Session) Clear() {
	s.cancelStroke()
	s.surface.Clear()
	s.grid.Rebuild(s.grid.Enabled())
	s.history.Reset()
}

// RemoveStroke deletes one committed stroke.
func (s *Session) RemoveStroke(id string) bool {
	if !s.surface.RemoveStroke(id) {
		return false
	}
	s.history.Commit()
	return true
}

// StrokeAt returns the topmost committed stroke passing under p, or nil.
func (s *Session) StrokeAt(p canvas.Point) *canvas.Stroke {
	strokes := s.surface.Strokes()
	pt := image.Pt(int(math.Floor(float64(p.X))), int(math.Floor(float64(p.Y))))
	for i := len(strokes) - 1; i >= 0; i-- {
		st := strokes[i]
		if !pt.In(st.Bounds()) {
			continue
		}
		if hitsStroke(st, p) {
			return st
		}
	}
	return nil
}

// EraseStrokeAt removes the topmost stroke under p as one history entry.
func (s *Session) EraseStrokeAt(p canvas.Point) Message {
	s.cancelStroke()
	st := s.StrokeAt(p)
	if st == nil {
		return info("No stroke there.")
	}
	s.RemoveStroke(st.ID)
	return info("Stroke removed.")
}

// hitsStroke reports whether p lies within half the stroke width of its path.
func hitsStroke(st *canvas.Stroke, p canvas.Point) bool {
	r := float64(st.Width)/2 + 1
	pts := st.Points
	if len(pts) == 1 {
		return segmentDistance(p, pts[0], pts[0]) <= r
	}
	for i := 1; i < len(pts); i++ {
		if segmentDistance(p, pts[i-1], pts[i]) <= r {
			return true
		}
	}
	return false
}

func segmentDistance(p, a, b canvas.Point) float64 {
	px, py := float64(p.X), float64(p.Y)
	ax, ay := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-ax, float64(b.Y)-ay
	t := 0.0
	if l := dx*dx + dy*dy; l > 0 {
		t = math.Max(0, math.Min(1, ((px-ax)*dx+(py-ay)*dy)/l))
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

// ApplySettings pushes new configuration into the session and reports
// whether the display changed.
func (s *Session) ApplySettings(st Settings) bool {
	changed := s.grid.SetStyle(st.GridStep, st.GridColor)
	if s.grid.SetEnabled(st.GridGuides) {
		changed = true
	}
	if st.Gate.SampleSize > 0 {
		s.gate = st.Gate
	}
	if st.Mood != "" {
		s.mood = st.Mood
	}
	return changed
}

// Panels returns the captured panels in story order.
func (s *Session) Panels() []*panel.Panel { return s.panels.Panels() }

// CapturePanel runs the quality gate on the current drawing and, when it
// passes, stores it as the next panel and clears the surface for the next
// one.
func (s *Session) CapturePanel() Message {
	s.cancelStroke()
	if s.panels.Len() >= panel.Capacity {
		return warn("All %d panels are ready. Remove one to draw another.", panel.Capacity)
	}
	n := s.panels.Len() + 1
	p, msg := s.gatedPanel(n)
	if p == nil {
		return msg
	}
	if err := s.panels.Add(p); err != nil {
		p.Release()
		return warn("%v", err)
	}
	s.story = nil
	s.Clear()
	if n == panel.Capacity {
		return info("Panel %d of %d captured. Ready for a story!", n, panel.Capacity)
	}
	return info("Panel %d of %d captured.", n, panel.Capacity)
}

// ReplacePanel captures the current drawing into the slot at index, keeping
// its place in the story. The old panel is released.
func (s *Session) ReplacePanel(index int) Message {
	s.cancelStroke()
	old, msg := s.panelAt(index)
	if old == nil {
		return msg
	}
	p, msg := s.gatedPanel(index + 1)
	if p == nil {
		return msg
	}
	if err := s.panels.Replace(old.ID, p); err != nil {
		p.Release()
		return failure("replace panel: %v", err)
	}
	s.story = nil
	s.Clear()
	return info("Panel %d replaced.", index+1)
}

// gatedPanel captures the surface and returns it as panel number n when the
// quality gate accepts it.
func (s *Session) gatedPanel(n int) (*panel.Panel, Message) {
	data, err := s.surface.Capture()
	if err != nil {
		return nil, failure("capture failed: %v", err)
	}
	v, err := s.gate.Accept(data)
	if err != nil {
		return nil, failure("capture failed: %v", err)
	}
	if !v.Accepted {
		log.Printf("gate: rejected %s (%d bytes, variance %.1f)", v.Reason, v.Bytes, v.Variance)
		s.notifier.Rejected(v.Message())
		return nil, warn("%s", v.Message())
	}
	pixels := s.surface.Pixels(s.surface.Bounds())
	release := s.notifier.Accepted(n, pixels)
	return panel.New(data, pixels, panel.WithCleanup(release)), Message{}
}

func (s *Session) panelAt(index int) (*panel.Panel, Message) {
	ps := s.panels.Panels()
	if index < 0 || index >= len(ps) {
		return nil, warn("No panel %d.", index+1)
	}
	return ps[index], Message{}
}

// RemovePanel releases the panel at index.
func (s *Session) RemovePanel(index int) Message {
	p, msg := s.panelAt(index)
	if p == nil {
		return msg
	}
	if err := s.panels.Remove(p.ID); err != nil {
		return failure("remove panel: %v", err)
	}
	s.story = nil
	return info("Panel %d removed.", index+1)
}

// ReorderPanel moves a panel to a new position in the story.
func (s *Session) ReorderPanel(from, to int) Message {
	if err := s.panels.Reorder(from, to); err != nil {
		return warn("Cannot move panel %d to %d.", from+1, to+1)
	}
	if from != to {
		s.story = nil
	}
	return Message{}
}

// CopyPanel puts the encoded panel on the clipboard.
func (s *Session) CopyPanel(index int) Message {
	p, msg := s.panelAt(index)
	if p == nil {
		return msg
	}
	if err := writeClipboard(p.Encoded()); err != nil {
		return failure("copy failed: %v", err)
	}
	detail := fmt.Sprintf("panel %d", index+1)
	s.notifier.Copy(detail)
	return info("Copied %s.", detail)
}

// PasteBackground installs the clipboard image, scaled to the surface, as the
// fill layer. It is one history entry.
func (s *Session) PasteBackground() Message {
	img, err := readClipboard()
	if err != nil {
		if errors.Is(err, clipboard.ErrNoImage) {
			return warn("The clipboard has no picture.")
		}
		return failure("paste failed: %v", err)
	}
	s.cancelStroke()
	b := s.surface.Bounds()
	dst := image.NewRGBA(b)
	xdraw.Draw(dst, b, image.NewUniform(s.surface.BackgroundColor()), image.Point{}, xdraw.Src)
	xdraw.CatmullRom.Scale(dst, b, img, img.Bounds(), xdraw.Over, nil)
	if err := s.surface.SetBackgroundImage(dst); err != nil {
		return failure("paste failed: %v", err)
	}
	s.history.Commit()
	return info("Pasted picture as background.")
}

// StoryRequest is a prepared call to the story service. Run may be called
// from any goroutine; it does not touch the session.
type StoryRequest struct {
	images    [][]byte
	mood      string
	generator story.Generator
}

// Run calls the service.
func (r *StoryRequest) Run(ctx context.Context) (*story.Story, error) {
	return r.generator.Generate(ctx, r.images, r.mood)
}

// PrepareStory snapshots the complete panel set for a story request.
func (s *Session) PrepareStory() (*StoryRequest, Message) {
	images, err := s.panels.Images()
	if errors.Is(err, panel.ErrIncomplete) {
		missing := panel.Capacity - s.panels.Len()
		return nil, warn("Draw %d more panel%s first.", missing, plural(missing))
	}
	if err != nil {
		return nil, failure("story: %v", err)
	}
	if s.generator == nil {
		return nil, failure("story: no story service configured")
	}
	copied := make([][]byte, len(images))
	for i, img := range images {
		copied[i] = append([]byte(nil), img...)
	}
	return &StoryRequest{images: copied, mood: s.mood, generator: s.generator}, Message{}
}

// FinishStory records the outcome of a StoryRequest. Panels are never
// changed by a failed request.
func (s *Session) FinishStory(st *story.Story, err error) Message {
	if err != nil {
		var se *story.Error
		if errors.As(err, &se) && se.Fallback != nil {
			s.story = se.Fallback
			return warn("The story service had trouble (%s). Showing a simple story instead.", se.Message)
		}
		if errors.Is(err, context.Canceled) {
			return info("Story request cancelled.")
		}
		return failure("Could not create a story: %v", err)
	}
	s.story = st
	s.notifier.Story(st.Title)
	return info("Your story %q is ready.", st.Title)
}

// CreateStory sends the panels to the story service and waits for the reply.
func (s *Session) CreateStory(ctx context.Context) (*story.Story, Message) {
	req, msg := s.PrepareStory()
	if req == nil {
		return nil, msg
	}
	st, err := req.Run(ctx)
	msg = s.FinishStory(st, err)
	return s.story, msg
}

// Story returns the last story, if any.
func (s *Session) Story() *story.Story { return s.story }

// SaveStory writes the storyboard PDF and contact sheet to the save
// directory and returns the written paths.
func (s *Session) SaveStory() ([]string, Message) {
	images, err := s.panels.Images()
	if err != nil {
		return nil, warn("Capture all %d panels before saving.", panel.Capacity)
	}
	dir := s.saveDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, failure("save: %v", err)
	}
	sb := export.New(images, s.story)
	base := filepath.Join(dir, fileStem(sb.Title)+"-"+time.Now().Format("20060102-150405"))
	pdfPath, pngPath := base+".pdf", base+".png"
	if err := export.SavePDF(pdfPath, sb); err != nil {
		return nil, failure("save: %v", err)
	}
	if err := export.SaveSheet(pngPath, sb, export.DefaultSheetOptions()); err != nil {
		return []string{pdfPath}, failure("save: %v", err)
	}
	s.notifier.Save(pngPath)
	log.Printf("saved %s and %s", pdfPath, pngPath)
	return []string{pdfPath, pngPath}, info("Saved %s", filepath.Base(pdfPath))
}

// Close releases every panel.
func (s *Session) Close() {
	s.cancelStroke()
	s.panels.ReleaseAll()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// fileStem turns a title into a safe lower-case file name.
func fileStem(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "story"
	}
	return out
}
