package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/sketchstory/internal/config"
	"github.com/example/sketchstory/internal/notify"
	"github.com/example/sketchstory/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs         *flag.FlagSet
	program    string
	notifier   *notify.Notifier
	config     *config.Config
	configPath string

	themeName    string
	endpoint     string
	acceptAlerts bool
	rejectAlerts bool
	storyAlerts  bool
	saveAlerts   bool
	copyAlerts   bool
	activeTheme  *theme.Theme

	stdout io.Writer
	stderr io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:         flag.NewFlagSet("sketchstory", flag.ExitOnError),
		program:    "sketchstory",
		notifier:   notify.New(notify.LoadPreferences()),
		config:     cfg,
		configPath: loader.Path(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	r.fs.BoolVar(&r.acceptAlerts, "notify-accept", cfg.Notify.Accept, "show a desktop notification when a panel is captured")
	r.fs.BoolVar(&r.rejectAlerts, "notify-reject", cfg.Notify.Reject, "show a desktop notification when a capture is rejected")
	r.fs.BoolVar(&r.storyAlerts, "notify-story", cfg.Notify.Story, "show a desktop notification when a story is ready")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving a storyboard")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying a panel")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use ("+strings.Join(theme.Names(), ", ")+")")
	r.fs.StringVar(&r.endpoint, "endpoint", "", "story service address")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventAccept, r.acceptAlerts)
		r.notifier.Enable(notify.EventReject, r.rejectAlerts)
		r.notifier.Enable(notify.EventStory, r.storyAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme()
	return r.dispatch(r.fs.Arg(0), r.fs.Args()[1:])
}

func (r *root) dispatch(name string, args []string) error {
	var (
		cmd runnable
		err error
	)
	switch name {
	case "draw":
		cmd, err = parseDrawCmd(args, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(args, r)
	case "fill":
		cmd, err = parseFillCmd(args, r)
	case "gate":
		cmd, err = parseGateCmd(args, r)
	case "story":
		cmd, err = parseStoryCmd(args, r)
	case "colors":
		cmd, err = parseColorsCmd(args, r)
	case "widths":
		cmd, err = parseWidthsCmd(args, r)
	case "themes":
		cmd, err = parseThemesCmd(args, r)
	case "config":
		cmd, err = parseConfigCmd(args, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// resolveTheme picks the theme named by the flag, the environment or the
// config, in that order, falling back to the default.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv("SKETCHSTORY_THEME")
	}
	if name == "" && r.config != nil {
		name = r.config.Theme
	}
	if r.config != nil {
		if t, ok := r.config.Themes[name]; ok {
			return t
		}
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		if name != "" && name != "default" {
			fmt.Fprintf(r.errOut(), "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

// storyEndpoint applies the same precedence to the story service address.
func (r *root) storyEndpoint() string {
	if r.endpoint != "" {
		return r.endpoint
	}
	if v := strings.TrimSpace(os.Getenv("SKETCHSTORY_STORY_ENDPOINT")); v != "" {
		return v
	}
	if r.config != nil {
		return r.config.Story.Endpoint
	}
	return config.New().Story.Endpoint
}

func (r *root) currentTheme() *theme.Theme {
	if r.activeTheme == nil {
		r.activeTheme = r.resolveTheme()
	}
	return r.activeTheme
}

func (r *root) cfg() *config.Config {
	if r.config == nil {
		r.config = config.New()
	}
	return r.config
}

func (r *root) out() io.Writer {
	if r.stdout == nil {
		return os.Stdout
	}
	return r.stdout
}

func (r *root) errOut() io.Writer {
	if r.stderr == nil {
		return os.Stderr
	}
	return r.stderr
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
