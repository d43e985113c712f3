package main

import (
	"flag"
	"fmt"
	"image"
	"strings"

	"github.com/example/sketchstory/internal/appstate"
	"github.com/example/sketchstory/internal/fill"
)

// fillCmd flood fills a region of an image file.
type fillCmd struct {
	*root
	fs *flag.FlagSet

	file      string
	output    string
	colorSpec string
	tolerance uint
	x, y      int
}

func (f *fillCmd) FlagSet() *flag.FlagSet {
	return f.fs
}

func parseFillCmd(args []string, r *root) (*fillCmd, error) {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	f := &fillCmd{root: r, fs: fs}
	fs.Usage = usageFunc(f)
	fs.StringVar(&f.file, "file", "", "input image file")
	fs.StringVar(&f.output, "output", "", "output PNG path (defaults to input file)")
	fs.StringVar(&f.colorSpec, "color", "red", "fill color name or hex value")
	fs.UintVar(&f.tolerance, "tolerance", uint(fill.DefaultTolerance), "per-channel match tolerance (0-255)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.file == "" || fs.NArg() != 2 {
		return nil, &UsageError{of: f}
	}
	coords, err := expectInts(fs.Args(), 2, "fill")
	if err != nil {
		return nil, err
	}
	if f.tolerance > 255 {
		return nil, fmt.Errorf("tolerance must be between 0 and 255")
	}
	f.x, f.y = coords[0], coords[1]
	if f.output == "" {
		f.output = f.file
	}
	return f, nil
}

func (f *fillCmd) Run() error {
	c, err := appstate.LookupColor(strings.TrimSpace(f.colorSpec))
	if err != nil {
		return err
	}
	_, img, err := readImageFile(f.file)
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	seed := img.Bounds().Min.Add(image.Pt(f.x, f.y))
	out, n := fill.Flood(img, seed, c, uint8(f.tolerance))
	if n == 0 {
		fmt.Fprintln(f.out(), "nothing to fill")
		return nil
	}
	if err := writePNG(f.output, out); err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	fmt.Fprintf(f.out(), "filled %d pixels, wrote %s\n", n, f.output)
	return nil
}
