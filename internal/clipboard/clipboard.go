// Package clipboard moves panels and story text through the system
// clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/h2non/filetype"
)

var (
	errNoDisplay = errors.New("clipboard: DISPLAY or WAYLAND_DISPLAY is required")
	// ErrNoImage is returned when the clipboard holds no decodable image.
	ErrNoImage = errors.New("clipboard: no image data")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// decodeImage checks clipboard bytes before decoding them.
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 || !filetype.IsImage(data) {
		return nil, ErrNoImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return img, nil
}
