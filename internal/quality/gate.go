// Package quality decides whether a captured panel carries enough visible
// content to be worth sending to the story service.
package quality

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
)

// ErrNotImage is returned for bytes that are not a recognised image.
var ErrNotImage = errors.New("quality: not an image")

// Reason names why a capture was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTooSmall
	ReasonLowVariance
)

func (r Reason) String() string {
	switch r {
	case ReasonTooSmall:
		return "too-small"
	case ReasonLowVariance:
		return "low-variance"
	default:
		return "none"
	}
}

// Verdict is the outcome of a quality check.
type Verdict struct {
	Accepted bool
	Reason   Reason
	Bytes    int
	Variance float64
	Kind     string
}

// Message returns text suitable for showing the user.
func (v Verdict) Message() string {
	switch v.Reason {
	case ReasonTooSmall:
		return "That panel looks empty. Add a clear shape or a few bold lines and capture again."
	case ReasonLowVariance:
		return "That panel is almost blank. Add a clear shape with some contrast and capture again."
	}
	return "Panel accepted."
}

// Gate holds the thresholds. The zero value rejects nothing; use Default.
type Gate struct {
	MinBytes    int
	MinVariance float64
	SampleSize  int
}

// Default returns thresholds tuned for hand-drawn panels on a blank canvas.
func Default() Gate {
	return Gate{MinBytes: 1200, MinVariance: 40, SampleSize: 64}
}

// Accept checks an encoded capture. Byte size is checked first because it is
// cheap; only captures that pass are decoded and sampled.
func (g Gate) Accept(encoded []byte) (Verdict, error) {
	v := Verdict{Bytes: len(encoded)}
	if !filetype.IsImage(encoded) {
		return v, ErrNotImage
	}
	if kind, err := filetype.Match(encoded); err == nil {
		v.Kind = kind.Extension
	}
	if len(encoded) < g.MinBytes {
		v.Reason = ReasonTooSmall
		return v, nil
	}
	img, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return v, fmt.Errorf("decode capture: %w", err)
	}
	v.Variance = Variance(img, g.SampleSize)
	if v.Variance < g.MinVariance {
		v.Reason = ReasonLowVariance
		return v, nil
	}
	v.Accepted = true
	return v, nil
}

// Variance downsamples img to size×size, converts it to grayscale and returns
// the population variance of the intensities. A non-positive size samples the
// image at full resolution.
func Variance(img image.Image, size int) float64 {
	if img == nil || img.Bounds().Empty() {
		return 0
	}
	if size > 0 {
		img = transform.Resize(img, size, size, transform.Linear)
	}
	// Grayscale keeps the RGBA layout with R == G == B, so one channel per
	// pixel is the intensity.
	gray := effect.Grayscale(img)
	n := len(gray.Pix) / 4
	if n == 0 {
		return 0
	}
	var sum, sq float64
	for i := 0; i < len(gray.Pix); i += 4 {
		f := float64(gray.Pix[i])
		sum += f
		sq += f * f
	}
	mean := sum / float64(n)
	return sq/float64(n) - mean*mean
}
