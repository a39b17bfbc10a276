package fallback_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/fallback"
)

type note struct {
	ID   uint64
	Text string
}

func TestCRUD(t *testing.T) {
	s := fallback.New[note]()

	a := s.Create(func(id uint64) note { return note{ID: id, Text: "a"} })
	b := s.Create(func(id uint64) note { return note{ID: id, Text: "b"} })

	assert.Equal(t, uint64(1), a.ID)
	assert.Equal(t, uint64(2), b.ID)

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Text)

	updated, err := s.Update(a.ID, func(n *note) error {
		n.Text = "a2"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a2", updated.Text)

	require.NoError(t, s.Delete(b.ID))
	require.ErrorIs(t, s.Delete(b.ID), fallback.ErrNotFound)

	_, err = s.Get(b.ID)
	require.ErrorIs(t, err, fallback.ErrNotFound)

	assert.Equal(t, []note{{ID: 1, Text: "a2"}}, s.List(nil))
}

func TestUpdateMissingDoesNotInsert(t *testing.T) {
	s := fallback.New[note]()

	_, err := s.Update(5, func(n *note) error {
		n.Text = "ghost"
		return nil
	})
	require.ErrorIs(t, err, fallback.ErrNotFound)
	assert.Empty(t, s.List(nil))
}

func TestUpdateErrorKeepsOld(t *testing.T) {
	s := fallback.New[note]()
	n := s.Create(func(id uint64) note { return note{ID: id, Text: "keep"} })

	boom := errors.New("invalid") //nolint:goerr113

	_, err := s.Update(n.ID, func(n *note) error {
		n.Text = "changed"
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Get(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Text)
}

func TestListFilterAndOrder(t *testing.T) {
	s := fallback.New[note]()

	for _, text := range []string{"x", "y", "x", "z", "x"} {
		s.Create(func(id uint64) note { return note{ID: id, Text: text} })
	}

	xs := s.List(func(n note) bool { return n.Text == "x" })
	require.Len(t, xs, 3)
	assert.Equal(t, []uint64{1, 3, 5}, []uint64{xs[0].ID, xs[1].ID, xs[2].ID})
}

func TestConcurrentCreateUniqueIDs(t *testing.T) {
	s := fallback.New[note]()

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 20 {
				s.Create(func(id uint64) note { return note{ID: id} })
			}
		}()
	}

	wg.Wait()

	all := s.List(nil)
	require.Len(t, all, 1000)

	seen := make(map[uint64]bool, len(all))
	for _, n := range all {
		assert.False(t, seen[n.ID])
		seen[n.ID] = true
	}
}
