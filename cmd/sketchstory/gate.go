package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/example/sketchstory/internal/quality"
)

// errRejected is returned when at least one file fails the gate.
var errRejected = errors.New("gate: one or more images rejected")

// gateCmd runs the capture quality gate on image files.
type gateCmd struct {
	*root
	fs *flag.FlagSet

	minBytes    int
	minVariance float64
	files       []string
}

func (g *gateCmd) FlagSet() *flag.FlagSet {
	return g.fs
}

func parseGateCmd(args []string, r *root) (*gateCmd, error) {
	cfg := r.cfg()
	fs := flag.NewFlagSet("gate", flag.ExitOnError)
	g := &gateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(g)
	fs.IntVar(&g.minBytes, "min-bytes", cfg.Quality.MinBytes, "smallest accepted encoded size in bytes")
	fs.Float64Var(&g.minVariance, "min-variance", cfg.Quality.MinVariance, "smallest accepted grayscale variance")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: g}
	}
	g.files = fs.Args()
	return g, nil
}

func (g *gateCmd) Run() error {
	gate := quality.Default()
	gate.MinBytes = g.minBytes
	gate.MinVariance = g.minVariance

	rejected := 0
	for _, path := range g.files {
		data, _, err := readImageFile(path)
		if err != nil {
			return err
		}
		v, err := gate.Accept(data)
		if err != nil {
			return fmt.Errorf("gate %s: %w", path, err)
		}
		status := "accepted"
		if !v.Accepted {
			status = "rejected (" + v.Reason.String() + ")"
			rejected++
		}
		fmt.Fprintf(g.out(), "%s: %s %s, %d bytes, variance %.1f\n", path, status, v.Kind, v.Bytes, v.Variance)
	}
	if rejected > 0 {
		return errRejected
	}
	return nil
}
