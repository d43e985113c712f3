// Package export writes a finished story and its panels to shareable files:
// a printable PDF and a PNG contact sheet.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"strings"

	"github.com/example/sketchstory/internal/story"
)

// ErrNoPanels is returned when a storyboard has nothing to lay out.
var ErrNoPanels = errors.New("export: storyboard has no panels")

// Frame is one panel image with the text written for it.
type Frame struct {
	PNG  []byte
	Text string
}

// Storyboard is the exportable form of a story.
type Storyboard struct {
	Title  string
	Frames []Frame
	Moral  string
}

// New pairs encoded panels with the generated story. s may be nil, in which
// case the frames carry no text.
func New(images [][]byte, s *story.Story) Storyboard {
	sb := Storyboard{Title: "Untitled Story"}
	if s != nil {
		if t := strings.TrimSpace(s.Title); t != "" {
			sb.Title = t
		}
		sb.Moral = strings.TrimSpace(s.Moral)
	}
	for i, img := range images {
		f := Frame{PNG: img}
		if s != nil && i < len(s.Panels) {
			f.Text = strings.TrimSpace(s.Panels[i])
		}
		sb.Frames = append(sb.Frames, f)
	}
	return sb
}

func (sb Storyboard) decode() ([]image.Image, error) {
	if len(sb.Frames) == 0 {
		return nil, ErrNoPanels
	}
	out := make([]image.Image, len(sb.Frames))
	for i, f := range sb.Frames {
		img, _, err := image.Decode(bytes.NewReader(f.PNG))
		if err != nil {
			return nil, fmt.Errorf("decode panel %d: %w", i+1, err)
		}
		out[i] = img
	}
	return out, nil
}
