package appstate

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/example/sketchstory/internal/theme"
)

// Tool is the active drawing tool.
type Tool int

const (
	ToolBrush Tool = iota
	ToolEraser
	ToolFill
)

var toolNames = []string{"brush", "eraser", "fill"}

func (t Tool) String() string {
	if int(t) >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool accepts a tool name or its first letter.
func ParseTool(s string) (Tool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range toolNames {
		if s == n || (len(s) == 1 && s[0] == n[0]) {
			return Tool(i), nil
		}
	}
	return ToolBrush, fmt.Errorf("unknown tool %q", s)
}

// Stroke width limits.
const (
	MinWidth = 2
	MaxWidth = 48
)

// ToolConfig is the tool, colour and width applied to the next stroke or fill.
type ToolConfig struct {
	Tool  Tool
	Color color.RGBA
	Width float32
}

// ClampWidth limits w to [MinWidth, MaxWidth].
func ClampWidth(w float32) float32 {
	switch {
	case w < MinWidth:
		return MinWidth
	case w > MaxWidth:
		return MaxWidth
	}
	return w
}

// PaletteColor is a named drawing colour.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

const (
	defaultColorIndex = 0
	defaultWidthIndex = 2
)

var (
	paletteMu sync.RWMutex
	palette   = []PaletteColor{
		{"Black", color.RGBA{0, 0, 0, 255}},
		{"Red", color.RGBA{230, 40, 40, 255}},
		{"Orange", color.RGBA{245, 140, 20, 255}},
		{"Yellow", color.RGBA{250, 210, 30, 255}},
		{"Green", color.RGBA{40, 170, 60, 255}},
		{"Sky", color.RGBA{60, 170, 240, 255}},
		{"Blue", color.RGBA{30, 70, 200, 255}},
		{"Purple", color.RGBA{140, 60, 190, 255}},
		{"Pink", color.RGBA{245, 120, 180, 255}},
		{"Brown", color.RGBA{130, 80, 40, 255}},
		{"Gray", color.RGBA{128, 128, 128, 255}},
		{"White", color.RGBA{255, 255, 255, 255}},
	}

	widthsMu sync.RWMutex
	widths   = []int{2, 4, 8, 16, 32, 48}
)

// DefaultColorIndex returns the palette index used at start up.
func DefaultColorIndex() int { return defaultColorIndex }

// DefaultWidthIndex returns the width index used at start up.
func DefaultWidthIndex() int { return defaultWidthIndex }

// PaletteColors returns a copy of the palette.
func PaletteColors() []PaletteColor {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	return append([]PaletteColor(nil), palette...)
}

// EnsurePaletteColor adds col when missing and returns its index.
func EnsurePaletteColor(col color.RGBA, name string) int {
	paletteMu.Lock()
	defer paletteMu.Unlock()
	for i, p := range palette {
		if p.Color == col {
			return i
		}
	}
	if name == "" {
		name = theme.FormatColor(col)
	}
	palette = append(palette, PaletteColor{Name: name, Color: col})
	return len(palette) - 1
}

// LookupColor resolves a palette name, SVG colour name or hex value.
func LookupColor(s string) (color.RGBA, error) {
	paletteMu.RLock()
	for _, p := range palette {
		if strings.EqualFold(p.Name, s) {
			paletteMu.RUnlock()
			return p.Color, nil
		}
	}
	paletteMu.RUnlock()
	return theme.ParseColor(s)
}

func paletteColorAt(idx int) color.RGBA {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	return palette[clampIndex(idx, len(palette))].Color
}

// WidthOptions returns a copy of the preset stroke widths.
func WidthOptions() []int {
	widthsMu.RLock()
	defer widthsMu.RUnlock()
	return append([]int(nil), widths...)
}

// NearestWidthIndex returns the index of the preset closest to px.
func NearestWidthIndex(px int) int {
	widthsMu.RLock()
	defer widthsMu.RUnlock()
	best := 0
	for i, w := range widths {
		if abs(w-px) < abs(widths[best]-px) {
			best = i
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func widthAt(idx int) int {
	widthsMu.RLock()
	defer widthsMu.RUnlock()
	return widths[clampIndex(idx, len(widths))]
}

func clampIndex(idx, n int) int {
	if idx < 0 || n == 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
