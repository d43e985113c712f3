package history

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sketchstory/internal/canvas"
)

var black = color.RGBA{0, 0, 0, 255}

func paint(s *canvas.Surface, x float32) *canvas.Stroke {
	return s.PaintStroke([]canvas.Point{{X: x, Y: 5}}, canvas.Style{Color: black, Width: 2})
}

func TestNewRecordsFloor(t *testing.T) {
	m := New(canvas.New(10, 10))
	assert.Equal(t, 1, m.Len())
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())

	ok, err := m.Undo()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUndoRedo(t *testing.T) {
	s := canvas.New(10, 10)
	m := New(s)

	a := paint(s, 2)
	require.True(t, m.Commit())
	b := paint(s, 6)
	require.True(t, m.Commit())

	ok, err := m.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []*canvas.Stroke{a}, s.Strokes())
	assert.Equal(t, 1, m.RedoLen())

	ok, err = m.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []*canvas.Stroke{a, b}, s.Strokes())
	assert.False(t, m.CanRedo())

	ok, err = m.Redo()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommitClearsRedo(t *testing.T) {
	s := canvas.New(10, 10)
	m := New(s)
	paint(s, 2)
	m.Commit()
	_, err := m.Undo()
	require.NoError(t, err)
	require.True(t, m.CanRedo())

	paint(s, 7)
	m.Commit()
	assert.False(t, m.CanRedo())
	assert.Equal(t, 2, m.Len())
}

func TestCommitUnchangedScene(t *testing.T) {
	m := New(canvas.New(10, 10))
	assert.False(t, m.Commit())
	assert.Equal(t, 1, m.Len())
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := canvas.New(100, 10)
	m := New(s)
	for i := 0; i < DefaultCapacity+10; i++ {
		paint(s, float32(i))
		m.Commit()
	}
	assert.Equal(t, DefaultCapacity, m.Len())

	undone := 0
	for m.CanUndo() {
		ok, err := m.Undo()
		require.NoError(t, err)
		require.True(t, ok)
		undone++
	}
	assert.Equal(t, DefaultCapacity-1, undone)
	// The floor is now the oldest surviving scene, not the blank one.
	assert.Len(t, s.Strokes(), 11)
}

func TestWithCapacity(t *testing.T) {
	s := canvas.New(10, 10)
	m := New(s, WithCapacity(3))
	for i := 0; i < 5; i++ {
		paint(s, float32(i))
		m.Commit()
	}
	assert.Equal(t, 3, m.Len())

	m = New(s, WithCapacity(0))
	paint(s, 9)
	m.Commit()
	assert.True(t, m.CanUndo())
}

func TestReset(t *testing.T) {
	s := canvas.New(10, 10)
	m := New(s)
	paint(s, 2)
	m.Commit()
	s.Clear()
	m.Reset()
	assert.Equal(t, 1, m.Len())
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
}

// reentrant commits to its manager from inside Restore, as a surface
// listener would.
type reentrant struct {
	*canvas.Surface
	m       *Manager
	results []bool
}

func (r *reentrant) Restore(sc canvas.Scene) error {
	if err := r.Surface.Restore(sc); err != nil {
		return err
	}
	r.results = append(r.results, r.m.Commit())
	return nil
}

func TestCommitIgnoredWhileRestoring(t *testing.T) {
	r := &reentrant{Surface: canvas.New(10, 10)}
	m := New(r)
	r.m = m
	paint(r.Surface, 3)
	m.Commit()

	_, err := m.Undo()
	require.NoError(t, err)
	_, err = m.Redo()
	require.NoError(t, err)

	assert.Equal(t, []bool{false, false}, r.results)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 0, m.RedoLen())
}

// flaky fails every Restore once armed.
type flaky struct {
	*canvas.Surface
	fail bool
}

func (f *flaky) Restore(sc canvas.Scene) error {
	if f.fail {
		return errors.New("boom")
	}
	return f.Surface.Restore(sc)
}

func TestFailedRestoreRollsBack(t *testing.T) {
	f := &flaky{Surface: canvas.New(10, 10)}
	m := New(f)
	a := paint(f.Surface, 3)
	m.Commit()

	f.fail = true
	ok, err := m.Undo()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrRestore)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 0, m.RedoLen())
	assert.Equal(t, []*canvas.Stroke{a}, f.Strokes())

	f.fail = false
	_, err = m.Undo()
	require.NoError(t, err)
	f.fail = true
	ok, err = m.Redo()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrRestore)
	assert.Equal(t, 1, m.RedoLen())
	assert.Empty(t, f.Strokes())
}

func TestUndoRestoresFillLayer(t *testing.T) {
	s := canvas.New(4, 4)
	m := New(s)
	img := s.Pixels(s.Bounds())
	img.SetRGBA(0, 0, black)
	require.NoError(t, s.SetBackgroundImage(img))
	m.Commit()

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Nil(t, s.FillLayer())
	_, err = m.Redo()
	require.NoError(t, err)
	require.NotNil(t, s.FillLayer())
	assert.Equal(t, black, s.Pixels(s.Bounds()).RGBAAt(0, 0))
}
