package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/example/sketchstory/internal/appstate"
	"github.com/example/sketchstory/internal/story"
)

// newSession builds a drawing session from the loaded configuration.
func (r *root) newSession(width, height int) *appstate.Session {
	cfg := r.cfg()
	st := appstate.SettingsFromConfig(cfg, r.currentTheme())
	return appstate.NewSession(width, height,
		appstate.WithBackground(cfg.Canvas.Background),
		appstate.WithGrid(st.GridGuides, st.GridStep, st.GridColor),
		appstate.WithGate(st.Gate),
		appstate.WithMood(st.Mood),
		appstate.WithSaveDir(cfg.SaveDir),
		appstate.WithNotifier(r.notifier),
		appstate.WithGenerator(r.storyClient()),
	)
}

func (r *root) storyClient() *story.Client {
	return story.NewClient(r.storyEndpoint(), story.WithTimeout(r.cfg().Story.Timeout))
}

// drawCmd opens the drawing window.
type drawCmd struct {
	*root
	fs *flag.FlagSet

	width     int
	height    int
	grid      bool
	colorSpec string
	stroke    int
	mood      string
	saveDir   string
	watch     bool
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	cfg := r.cfg()
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.Usage = usageFunc(d)
	fs.IntVar(&d.width, "width", cfg.Canvas.Width, "canvas width in pixels")
	fs.IntVar(&d.height, "height", cfg.Canvas.Height, "canvas height in pixels")
	fs.BoolVar(&d.grid, "grid", cfg.Canvas.GridGuides, "show grid guides")
	fs.StringVar(&d.colorSpec, "color", "", "starting color name or hex value")
	fs.IntVar(&d.stroke, "stroke", 0, "starting stroke width in pixels")
	fs.StringVar(&d.mood, "mood", cfg.Story.Mood, "mood sent with story requests")
	fs.StringVar(&d.saveDir, "save-dir", cfg.SaveDir, "directory for saved storyboards")
	fs.BoolVar(&d.watch, "watch", true, "apply config file changes while drawing")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: d}
	}
	if d.width <= 0 || d.height <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", d.width, d.height)
	}
	return d, nil
}

func (d *drawCmd) Run() error {
	cfg := d.cfg().Clone()
	cfg.Canvas.GridGuides = d.grid
	cfg.Story.Mood = d.mood
	cfg.SaveDir = d.saveDir
	d.config = cfg

	opts := []appstate.Option{appstate.WithTheme(d.currentTheme())}
	if name := strings.TrimSpace(d.colorSpec); name != "" {
		c, err := appstate.LookupColor(name)
		if err != nil {
			return err
		}
		opts = append(opts, appstate.WithColorIndex(appstate.EnsurePaletteColor(c, name)))
	}
	if d.stroke > 0 {
		opts = append(opts, appstate.WithWidthIndex(appstate.NearestWidthIndex(d.stroke)))
	}
	if d.watch && d.configPath != "" {
		opts = append(opts, appstate.WithConfigWatch(d.configPath))
	}

	sess := d.newSession(d.width, d.height)
	appstate.New(sess, opts...).Run()
	return nil
}
