package main

import (
	"flag"
	"fmt"

	"github.com/example/sketchstory/internal/config"
)

type configCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}
	switch args[0] {
	case "print":
		fmt.Fprint(c.out(), c.cfg().String())
		return nil
	case "path":
		return c.runPath()
	case "save":
		return c.runSave()
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

func (c *configCmd) loader() *config.Loader {
	return config.NewLoader(version, configPathOverride)
}

func (c *configCmd) runPath() error {
	l := c.loader()
	if p := l.Path(); p != "" {
		fmt.Fprintln(c.out(), p)
		return nil
	}
	fmt.Fprintf(c.out(), "%s (not created)\n", l.DefaultPath())
	return nil
}

func (c *configCmd) runSave() error {
	path, err := c.loader().Save(c.cfg())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.errOut(), "Configuration saved to %s\n", path)
	return nil
}
