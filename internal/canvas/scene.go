package canvas

import (
	"image/color"
)

// Scene is an immutable capture of everything drawable on a surface. Strokes
// and the fill layer are shared by pointer with the surface and other scenes;
// neither is ever mutated once created.
type Scene struct {
	Strokes    []*Stroke
	Background color.RGBA
	Fill       *Layer
}

// Snapshot captures the current drawable state. The in-progress preview and
// guides are not part of it.
func (s *Surface) Snapshot() Scene {
	return Scene{
		Strokes:    append([]*Stroke(nil), s.strokes...),
		Background: s.background,
		Fill:       s.fill,
	}
}

// Restore replaces the drawable state with sc.
func (s *Surface) Restore(sc Scene) error {
	if !s.ready() {
		return ErrNotInitialized
	}
	if sc.Fill != nil && (sc.Fill.Image == nil || !sc.Fill.Image.Bounds().Eq(s.bounds)) {
		return ErrSceneMismatch
	}
	for _, st := range sc.Strokes {
		if st == nil {
			return ErrSceneMismatch
		}
	}
	s.strokes = append([]*Stroke(nil), sc.Strokes...)
	s.background = sc.Background
	s.fill = sc.Fill
	s.preview = nil
	s.touch()
	return nil
}

// Equal reports whether two scenes describe the same drawable state.
func (sc Scene) Equal(o Scene) bool {
	if sc.Background != o.Background || sc.Fill != o.Fill || len(sc.Strokes) != len(o.Strokes) {
		return false
	}
	for i := range sc.Strokes {
		if sc.Strokes[i] != o.Strokes[i] {
			return false
		}
	}
	return true
}
