// Package history keeps a bounded undo/redo stack of canvas scenes.
package history

import (
	"errors"
	"fmt"
	"log"

	"github.com/example/sketchstory/internal/canvas"
)

// DefaultCapacity is the number of scenes kept on the undo stack, including
// the current one.
const DefaultCapacity = 30

// ErrRestore is returned when a scene could not be applied to the target.
// The stacks are left as they were before the call.
var ErrRestore = errors.New("history: restore failed")

// Target is the surface whose state is recorded.
type Target interface {
	Snapshot() canvas.Scene
	Restore(canvas.Scene) error
}

// Manager records scenes after each structural change. The top of the undo
// stack is always the scene currently shown.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	target    Target
	capacity  int
	undo      []canvas.Scene
	redo      []canvas.Scene
	restoring bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithCapacity overrides DefaultCapacity. Values below 2 are raised to 2 so
// there is always one step to undo.
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n < 2 {
			n = 2
		}
		m.capacity = n
	}
}

// New returns a manager whose floor is the target's current scene.
func New(target Target, opts ...Option) *Manager {
	m := &Manager{target: target, capacity: DefaultCapacity}
	for _, o := range opts {
		o(m)
	}
	m.Reset()
	return m
}

// Reset drops both stacks and records the current scene as the new floor.
func (m *Manager) Reset() {
	m.undo = []canvas.Scene{m.target.Snapshot()}
	m.redo = nil
}

// Commit records the target's current scene. It returns false when called
// while a scene is being restored or when nothing changed since the last
// commit. Any successful commit clears the redo stack.
func (m *Manager) Commit() bool {
	if m.restoring {
		return false
	}
	sc := m.target.Snapshot()
	if n := len(m.undo); n > 0 && m.undo[n-1].Equal(sc) {
		return false
	}
	m.undo = append(m.undo, sc)
	if over := len(m.undo) - m.capacity; over > 0 {
		m.undo = append([]canvas.Scene(nil), m.undo[over:]...)
	}
	m.redo = nil
	return true
}

// Undo restores the previous scene. It reports false when there is nothing
// to undo.
func (m *Manager) Undo() (bool, error) {
	if !m.CanUndo() {
		return false, nil
	}
	top := m.undo[len(m.undo)-1]
	prev := m.undo[len(m.undo)-2]
	if err := m.apply(prev); err != nil {
		return false, err
	}
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, top)
	return true, nil
}

// Redo re-applies the most recently undone scene.
func (m *Manager) Redo() (bool, error) {
	if !m.CanRedo() {
		return false, nil
	}
	next := m.redo[len(m.redo)-1]
	if err := m.apply(next); err != nil {
		return false, err
	}
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, next)
	return true, nil
}

func (m *Manager) apply(sc canvas.Scene) error {
	m.restoring = true
	defer func() { m.restoring = false }()
	if err := m.target.Restore(sc); err != nil {
		log.Printf("history: restore: %v", err)
		return fmt.Errorf("%w: %v", ErrRestore, err)
	}
	return nil
}

// CanUndo reports whether a step back is available.
func (m *Manager) CanUndo() bool { return len(m.undo) > 1 }

// CanRedo reports whether an undone step can be re-applied.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Len returns the size of the undo stack, current scene included.
func (m *Manager) Len() int { return len(m.undo) }

// RedoLen returns the size of the redo stack.
func (m *Manager) RedoLen() int { return len(m.redo) }
