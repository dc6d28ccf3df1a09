// Package store holds the storage building blocks shared by the domain
// repositories: an in-memory table and thin MongoDB helpers.
package store

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Table is a mutex-guarded map keyed by record id. Mutations are
// synchronous and the last writer wins. Every record is passed through
// clone on the way in and on the way out, so callers never share slices,
// maps or pointers with the table. A nil clone is only safe for flat
// records.
type Table[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	seq   map[string]int
	next  int
	idOf  func(T) string
	clone func(T) T
}

func NewTable[T any](idOf func(T) string, clone func(T) T) *Table[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Table[T]{
		items: make(map[string]T),
		seq:   make(map[string]int),
		idOf:  idOf,
		clone: clone,
	}
}

func (t *Table[T]) Insert(item T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.idOf(item)
	if _, exists := t.items[id]; exists {
		return ErrDuplicate
	}
	t.items[id] = t.clone(item)
	t.seq[id] = t.next
	t.next++
	return nil
}

// Put inserts or replaces.
func (t *Table[T]) Put(item T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.idOf(item)
	if _, exists := t.items[id]; !exists {
		t.seq[id] = t.next
		t.next++
	}
	t.items[id] = t.clone(item)
}

func (t *Table[T]) Replace(item T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.idOf(item)
	if _, exists := t.items[id]; !exists {
		return ErrNotFound
	}
	t.items[id] = t.clone(item)
	return nil
}

func (t *Table[T]) Get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return t.clone(item), nil
}

// Update applies fn to the stored record under the write lock.
func (t *Table[T]) Update(id string, fn func(*T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stored, ok := t.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	item := t.clone(stored)
	if err := fn(&item); err != nil {
		var zero T
		return zero, err
	}
	t.items[id] = t.clone(item)
	return item, nil
}

func (t *Table[T]) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	delete(t.items, id)
	delete(t.seq, id)
	return true
}

// DeleteWhere removes every record matching fn and returns the count.
func (t *Table[T]) DeleteWhere(match func(T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, item := range t.items {
		if match(item) {
			delete(t.items, id)
			delete(t.seq, id)
			n++
		}
	}
	return n
}

// Find returns matching records in insertion order. A nil match returns all.
func (t *Table[T]) Find(match func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.items))
	for id, item := range t.items {
		if match == nil || match(item) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return t.seq[ids[i]] < t.seq[ids[j]] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.clone(t.items[id]))
	}
	return out
}

func (t *Table[T]) FindOne(match func(T) bool) (T, error) {
	items := t.Find(match)
	if len(items) == 0 {
		var zero T
		return zero, ErrNotFound
	}
	return items[0], nil
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// Page slices items the way skip/limit would in a database query.
func Page[T any](items []T, limit, offset int64) []T {
	if offset >= int64(len(items)) {
		return make([]T, 0)
	}
	end := int64(len(items))
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
