// Package config reads and writes the sketchstory rc file.
package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"time"

	"github.com/example/sketchstory/internal/theme"
)

// Canvas holds drawing surface settings.
type Canvas struct {
	Width      int
	Height     int
	GridGuides bool
	GridStep   int
	Background color.RGBA
}

// Quality holds capture gate thresholds.
type Quality struct {
	MinBytes    int
	MinVariance float64
}

// Story holds the story service settings.
type Story struct {
	Endpoint string
	Mood     string
	Timeout  time.Duration
}

// Notify selects which events raise a desktop notification.
type Notify struct {
	Accept bool
	Reject bool
	Story  bool
	Save   bool
	Copy   bool
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Canvas  Canvas
	Quality Quality
	Story   Story
	Notify  Notify
	Themes  map[string]*theme.Theme
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Canvas: Canvas{
			Width:      700,
			Height:     500,
			GridGuides: false,
			GridStep:   40,
			Background: color.RGBA{255, 255, 255, 255},
		},
		Quality: Quality{MinBytes: 1200, MinVariance: 40},
		Story: Story{
			Endpoint: "http://localhost:5000",
			Mood:     "friendly",
			Timeout:  90 * time.Second,
		},
		Notify: Notify{Accept: true, Reject: true, Story: true},
		Themes: make(map[string]*theme.Theme),
	}
}

// String returns the configuration in rc format. Parse(String()) yields an
// equal Config.
func (c *Config) String() string {
	var sb strings.Builder
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}

	sb.WriteString("\n[canvas]\n")
	fmt.Fprintf(&sb, "width = %d\n", c.Canvas.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Canvas.Height)
	fmt.Fprintf(&sb, "grid_guides = %t\n", c.Canvas.GridGuides)
	fmt.Fprintf(&sb, "grid_step = %d\n", c.Canvas.GridStep)
	fmt.Fprintf(&sb, "background = %s\n", theme.FormatColor(c.Canvas.Background))

	sb.WriteString("\n[quality]\n")
	fmt.Fprintf(&sb, "min_bytes = %d\n", c.Quality.MinBytes)
	fmt.Fprintf(&sb, "min_variance = %g\n", c.Quality.MinVariance)

	sb.WriteString("\n[story]\n")
	fmt.Fprintf(&sb, "endpoint = %s\n", c.Story.Endpoint)
	fmt.Fprintf(&sb, "mood = %s\n", c.Story.Mood)
	fmt.Fprintf(&sb, "timeout = %s\n", c.Story.Timeout)

	sb.WriteString("\n[notify]\n")
	fmt.Fprintf(&sb, "accept = %t\n", c.Notify.Accept)
	fmt.Fprintf(&sb, "reject = %t\n", c.Notify.Reject)
	fmt.Fprintf(&sb, "story = %t\n", c.Notify.Story)
	fmt.Fprintf(&sb, "save = %t\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %t\n", c.Notify.Copy)

	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "\n[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, theme.FormatColor(f.Color))
		}
	}
	return sb.String()
}

// Clone returns a deep copy. Themes are copied by value.
func (c *Config) Clone() *Config {
	out := *c
	out.Themes = make(map[string]*theme.Theme, len(c.Themes))
	for k, t := range c.Themes {
		cp := *t
		out.Themes[k] = &cp
	}
	return &out
}
