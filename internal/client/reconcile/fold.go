// Package reconcile folds change events into collection snapshots.
//
// Every writer of a collection (gateway results applied locally and change
// feed notifications) goes through Fold, so the two paths cannot disagree.
// Fold keeps snapshots in ascending key order, which makes it idempotent and
// commutative for events touching different keys:
//
//	Fold(Fold(s, e), e)   == Fold(s, e)
//	Fold(Fold(s, a), b)   == Fold(Fold(s, b), a)   // a.Key() != b.Key()
package reconcile

import (
	"slices"
	"strings"

	"github.com/Kaktotak00p/notes/internal/client/models"
)

// Fold returns the snapshot that results from applying one change to snap.
// snap must be in canonical order (see Canonical) and is never modified.
//
//   - insert of an existing key behaves as update;
//   - update of a missing key behaves as insert;
//   - delete of a missing key is a no-op.
func Fold[T models.Entity](snap []T, kind models.ChangeKind, e T) []T {
	i, found := search(snap, e.Key())

	switch kind {
	case models.ChangeInsert, models.ChangeUpdate:
		out := make([]T, 0, len(snap)+1)
		out = append(out, snap[:i]...)
		out = append(out, e)
		if found {
			out = append(out, snap[i+1:]...)
		} else {
			out = append(out, snap[i:]...)
		}
		return out

	case models.ChangeDelete:
		if !found {
			return snap
		}
		out := make([]T, 0, len(snap)-1)
		out = append(out, snap[:i]...)
		return append(out, snap[i+1:]...)

	default:
		return snap
	}
}

// Apply is Fold for a models.Change.
func Apply[T models.Entity](snap []T, c models.Change[T]) []T {
	return Fold(snap, c.Kind, c.Entity)
}

// Canonical returns a copy of rows in fold order, unique by key. When keys
// repeat, the last row wins.
func Canonical[T models.Entity](rows []T) []T {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int {
		return strings.Compare(a.Key(), b.Key())
	})

	n := 0
	for i := range out {
		if n > 0 && out[n-1].Key() == out[i].Key() {
			out[n-1] = out[i]
			continue
		}
		out[n] = out[i]
		n++
	}
	return out[:n]
}

func search[T models.Entity](snap []T, key string) (int, bool) {
	return slices.BinarySearchFunc(snap, key, func(e T, k string) int {
		return strings.Compare(e.Key(), k)
	})
}
