package panel

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mk(b byte) *Panel {
	return New([]byte{b}, image.NewRGBA(image.Rect(0, 0, 1, 1)))
}

func ids(c *Collection) []string {
	var out []string
	for _, p := range c.Panels() {
		out = append(out, p.ID)
	}
	return out
}

func TestAddUntilFull(t *testing.T) {
	var c Collection
	for i := 0; i < Capacity; i++ {
		require.NoError(t, c.Add(mk(byte(i))))
		assert.Equal(t, i == Capacity-1, c.IsComplete())
	}
	extra := mk(9)
	assert.ErrorIs(t, c.Add(extra), ErrFull)
	assert.Equal(t, Capacity, c.Len())
	assert.False(t, extra.Released())
}

func TestImagesOrder(t *testing.T) {
	var c Collection
	_, err := c.Images()
	assert.ErrorIs(t, err, ErrIncomplete)

	for i := byte(1); i <= 3; i++ {
		require.NoError(t, c.Add(mk(i)))
	}
	imgs, err := c.Images()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{1}, {2}, {3}}, imgs)
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []int
	}{
		{"first to last", 0, 2, []int{1, 2, 0}},
		{"last to first", 2, 0, []int{2, 0, 1}},
		{"middle up", 1, 0, []int{1, 0, 2}},
		{"same place", 1, 1, []int{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Collection
			ps := []*Panel{mk(0), mk(1), mk(2)}
			for _, p := range ps {
				require.NoError(t, c.Add(p))
			}
			require.NoError(t, c.Reorder(tt.from, tt.to))
			var want []string
			for _, i := range tt.want {
				want = append(want, ps[i].ID)
			}
			assert.Equal(t, want, ids(&c))
		})
	}
}

func TestReorderOutOfRange(t *testing.T) {
	var c Collection
	require.NoError(t, c.Add(mk(0)))
	require.NoError(t, c.Add(mk(1)))
	before := ids(&c)
	assert.ErrorIs(t, c.Reorder(0, 2), ErrIndex)
	assert.ErrorIs(t, c.Reorder(-1, 0), ErrIndex)
	assert.Equal(t, before, ids(&c))
}

func TestRemoveReleases(t *testing.T) {
	var c Collection
	a, b := mk(0), mk(1)
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))

	require.NoError(t, c.Remove(a.ID))
	assert.True(t, a.Released())
	assert.Nil(t, a.Encoded())
	assert.Equal(t, []string{b.ID}, ids(&c))
	assert.ErrorIs(t, c.Remove(a.ID), ErrNotFound)
}

func TestReplace(t *testing.T) {
	var c Collection
	a, b, n := mk(0), mk(1), mk(7)
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))

	require.NoError(t, c.Replace(a.ID, n))
	assert.True(t, a.Released())
	assert.Equal(t, []string{n.ID, b.ID}, ids(&c))
	assert.ErrorIs(t, c.Replace("missing", mk(8)), ErrNotFound)
}

func TestReleaseRunsCleanupOnce(t *testing.T) {
	calls := 0
	p := New([]byte{1}, nil, WithCleanup(func() { calls++ }), WithCleanup(nil))
	p.Release()
	p.Release()
	assert.Equal(t, 1, calls)
	assert.True(t, p.Released())
}

func TestReleaseAll(t *testing.T) {
	var c Collection
	calls := 0
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Add(New([]byte{byte(i)}, nil, WithCleanup(func() { calls++ }))))
	}
	c.ReleaseAll()
	assert.Zero(t, c.Len())
	assert.Equal(t, 3, calls)
}

func TestUniqueIDs(t *testing.T) {
	assert.NotEqual(t, mk(0).ID, mk(0).ID)
}
