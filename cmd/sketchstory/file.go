package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/h2non/filetype"

	"github.com/example/sketchstory/internal/story"
)

// readImageFile returns the raw bytes of an image file along with its decoded
// pixels.
func readImageFile(path string) ([]byte, *image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !filetype.IsImage(data) {
		return nil, nil, fmt.Errorf("open %s: not an image", path)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return data, clone.AsRGBA(img), nil
}

func writePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func printStory(w io.Writer, st *story.Story) {
	fmt.Fprintf(w, "%s\n\n", st.Title)
	if len(st.Panels) > 0 {
		for i, p := range st.Panels {
			fmt.Fprintf(w, "%d. %s\n", i+1, strings.TrimSpace(p))
		}
	} else {
		fmt.Fprintln(w, st.Text())
	}
	if st.Moral != "" {
		fmt.Fprintf(w, "\nMoral: %s\n", st.Moral)
	}
}

func printStatus(w io.Writer, c *story.Client) error {
	st, err := c.Status(context.Background())
	if err != nil {
		return err
	}
	state := "not ready"
	if st.Ready {
		state = "ready"
	}
	fmt.Fprintf(w, "%s: %s", c.Endpoint(), state)
	for _, kv := range [][2]string{{"mode", st.Mode}, {"model", st.Model}, {"device", st.Device}} {
		if kv[1] != "" {
			fmt.Fprintf(w, " %s=%s", kv[0], kv[1])
		}
	}
	fmt.Fprintln(w)
	if st.Err != "" {
		fmt.Fprintf(w, "error: %s\n", st.Err)
	}
	return nil
}
