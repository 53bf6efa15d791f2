package optimistic

import (
	"slices"
	"sync"
)

// Keyed is implemented by records held in a Collection.
type Keyed interface {
	Key() string
}

// Mutation transforms the current items into the next items. It must
// not retain or modify its argument.
type Mutation[T Keyed] func(items []T) []T

// Collection is the in-memory view of one user-visible list.
type Collection[T Keyed] struct {
	mu    sync.RWMutex
	items []T
}

func NewCollection[T Keyed](items []T) *Collection[T] {
	return &Collection[T]{items: clone(items)}
}

// Snapshot returns a copy of the current items.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.items)
}

func (c *Collection[T]) Apply(m Mutation[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = m(clone(c.items))
}

// Rollback restores a value previously returned by Snapshot.
func (c *Collection[T]) Rollback(snapshot []T) {
	c.Replace(snapshot)
}

func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = clone(items)
}

func (c *Collection[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.Key() == key {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func Append[T Keyed](item T) Mutation[T] {
	return func(items []T) []T {
		return append(items, item)
	}
}

// ReplaceKey swaps the record stored under key for item in place.
func ReplaceKey[T Keyed](key string, item T) Mutation[T] {
	return func(items []T) []T {
		for i := range items {
			if items[i].Key() == key {
				items[i] = item
				break
			}
		}
		return items
	}
}

func PatchKey[T Keyed](key string, patch func(T) T) Mutation[T] {
	return func(items []T) []T {
		for i := range items {
			if items[i].Key() == key {
				items[i] = patch(items[i])
				break
			}
		}
		return items
	}
}

func RemoveKey[T Keyed](key string) Mutation[T] {
	return func(items []T) []T {
		out := items[:0]
		for _, item := range items {
			if item.Key() != key {
				out = append(out, item)
			}
		}
		return out
	}
}

// RestoreKey puts back the record that key held in snapshot, at the
// position it had there. Records other than key keep their current
// values. rename maps snapshot keys that were replaced since, such as
// temporary keys whose insert has resolved.
func RestoreKey[T Keyed](snapshot []T, key string, rename func(string) string) Mutation[T] {
	return func(items []T) []T {
		idx := slices.IndexFunc(snapshot, func(item T) bool { return item.Key() == key })
		if idx < 0 {
			return items
		}
		prev := snapshot[idx]
		if i := slices.IndexFunc(items, func(item T) bool { return item.Key() == key }); i >= 0 {
			items[i] = prev
			return items
		}
		at := min(idx, len(items))
		if idx > 0 {
			before := snapshot[idx-1].Key()
			if rename != nil {
				before = rename(before)
			}
			if i := slices.IndexFunc(items, func(item T) bool { return item.Key() == before }); i >= 0 {
				at = i + 1
			}
		}
		return slices.Insert(items, at, prev)
	}
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
