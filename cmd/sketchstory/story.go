package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/example/sketchstory/internal/export"
	"github.com/example/sketchstory/internal/panel"
	"github.com/example/sketchstory/internal/story"
)

// storyCmd sends three image files to the story service.
type storyCmd struct {
	*root
	fs *flag.FlagSet

	mood   string
	pdf    string
	sheet  string
	status bool
	files  []string
}

func (s *storyCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseStoryCmd(args []string, r *root) (*storyCmd, error) {
	cfg := r.cfg()
	fs := flag.NewFlagSet("story", flag.ExitOnError)
	s := &storyCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	fs.StringVar(&s.mood, "mood", cfg.Story.Mood, "mood of the story")
	fs.StringVar(&s.pdf, "pdf", "", "write the storyboard PDF to this path")
	fs.StringVar(&s.sheet, "sheet", "", "write a PNG contact sheet to this path")
	fs.BoolVar(&s.status, "status", false, "only report whether the service is ready")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	s.files = fs.Args()
	if s.status {
		if len(s.files) != 0 {
			return nil, &UsageError{of: s}
		}
		return s, nil
	}
	if len(s.files) != panel.Capacity {
		return nil, &UsageError{of: s}
	}
	return s, nil
}

func (s *storyCmd) Run() error {
	client := s.storyClient()
	if s.status {
		return printStatus(s.out(), client)
	}

	images := make([][]byte, 0, len(s.files))
	for _, path := range s.files {
		data, _, err := readImageFile(path)
		if err != nil {
			return fmt.Errorf("story: %w", err)
		}
		images = append(images, data)
	}

	st, err := client.Generate(context.Background(), images, s.mood)
	if err != nil {
		var se *story.Error
		if !errors.As(err, &se) || se.Fallback == nil {
			return err
		}
		fmt.Fprintf(s.errOut(), "warning: %s; using the fallback story\n", se.Message)
		st = se.Fallback
	}
	printStory(s.out(), st)

	sb := export.New(images, st)
	if s.pdf != "" {
		if err := export.SavePDF(s.pdf, sb); err != nil {
			return err
		}
		fmt.Fprintf(s.out(), "wrote %s\n", s.pdf)
	}
	if s.sheet != "" {
		if err := export.SaveSheet(s.sheet, sb, export.DefaultSheetOptions()); err != nil {
			return err
		}
		fmt.Fprintf(s.out(), "wrote %s\n", s.sheet)
	}
	if s.pdf != "" || s.sheet != "" {
		s.notifier.Save(firstNonEmpty(s.sheet, s.pdf))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
