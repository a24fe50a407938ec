package collection

import (
	"iter"
	"slices"
	"strings"

	"github.com/Kaktotak00p/notes/internal/client/models"
)

// Snapshot is an immutable view of a collection at one point in time.
// The zero value is an empty snapshot.
type Snapshot[T models.Entity] struct {
	items   []T
	version uint64
}

func (s Snapshot[T]) Len() int { return len(s.items) }

// Version increases by one with every applied change or load.
func (s Snapshot[T]) Version() uint64 { return s.version }

// Items returns a copy of the entities in canonical (id) order.
func (s Snapshot[T]) Items() []T { return slices.Clone(s.items) }

func (s Snapshot[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range s.items {
			if !yield(e) {
				return
			}
		}
	}
}

func (s Snapshot[T]) Get(id string) (T, bool) {
	i, ok := slices.BinarySearchFunc(s.items, id, func(e T, k string) int {
		return strings.Compare(e.Key(), k)
	})
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[i], true
}
