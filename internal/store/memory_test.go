package store

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	ID   string
	Name string
	Tags []string
}

func newTable() *Table[rec] {
	return NewTable(func(r rec) string { return r.ID }, func(r rec) rec {
		r.Tags = append([]string(nil), r.Tags...)
		return r
	})
}

func TestTableCRUD(t *testing.T) {
	tbl := newTable()
	require.NoError(t, tbl.Insert(rec{ID: "1", Name: "a"}))
	assert.ErrorIs(t, tbl.Insert(rec{ID: "1"}), ErrDuplicate)

	got, err := tbl.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	assert.ErrorIs(t, tbl.Replace(rec{ID: "2"}), ErrNotFound)
	require.NoError(t, tbl.Replace(rec{ID: "1", Name: "b"}))

	updated, err := tbl.Update("1", func(r *rec) error {
		r.Name = "c"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "c", updated.Name)

	_, err = tbl.Update("1", func(r *rec) error { return errors.New("boom") })
	require.Error(t, err)
	got, _ = tbl.Get("1")
	assert.Equal(t, "c", got.Name, "failed update must not be stored")

	assert.True(t, tbl.Delete("1"))
	assert.False(t, tbl.Delete("1"))
	_, err = tbl.Get("1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTableFindKeepsInsertionOrder(t *testing.T) {
	tbl := newTable()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, tbl.Insert(rec{ID: id}))
	}
	tbl.Put(rec{ID: "a", Name: "updated"})

	items := tbl.Find(nil)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "updated", items[1].Name)

	assert.Equal(t, 2, tbl.DeleteWhere(func(r rec) bool { return r.ID != "a" }))
	assert.Equal(t, 1, tbl.Len())
}

func TestTableDoesNotShareSlicesWithCallers(t *testing.T) {
	tbl := newTable()
	in := rec{ID: "1", Tags: []string{"a", "b"}}
	require.NoError(t, tbl.Insert(in))
	in.Tags[0] = "mutated-input"

	got, err := tbl.Get("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Tags)

	got.Tags[1] = "mutated-get"
	found := tbl.Find(nil)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"a", "b"}, found[0].Tags)
	found[0].Tags[0] = "mutated-find"

	updated, err := tbl.Update("1", func(r *rec) error {
		r.Tags[0] = "x"
		return nil
	})
	require.NoError(t, err)
	updated.Tags[1] = "mutated-update"

	got, _ = tbl.Get("1")
	assert.Equal(t, []string{"x", "b"}, got.Tags)

	_, err = tbl.Update("1", func(r *rec) error {
		r.Tags[0] = "leaked"
		return errors.New("boom")
	})
	require.Error(t, err)
	got, _ = tbl.Get("1")
	assert.Equal(t, "x", got.Tags[0], "failed update must not leak through shared slices")
}

func TestTableConcurrentUpdateAndRead(t *testing.T) {
	tbl := newTable()
	require.NoError(t, tbl.Insert(rec{ID: "1", Tags: []string{"0"}}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = tbl.Update("1", func(r *rec) error {
					r.Tags[0] = "w"
					return nil
				})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := tbl.Get("1")
				if err == nil {
					_ = strings.Join(got.Tags, ",")
				}
			}
		}()
	}
	wg.Wait()

	got, err := tbl.Get("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"w"}, got.Tags)
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{2, 3}, Page(items, 2, 1))
	assert.Equal(t, []int{4, 5}, Page(items, 10, 3))
	assert.Empty(t, Page(items, 2, 9))
}
