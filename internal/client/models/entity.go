// Package models defines the entities synchronised by the client engine
// (notes, tasks, categories, profiles), the change events folded into collection
// snapshots, and the presentation views derived from snapshots.
package models

import (
	"fmt"
	"strings"
)

// Entity is a row owned by exactly one user and identified by an opaque id.
type Entity interface {
	Key() string
	Owner() string
}

// ChangeKind is the verb of a change event. Its values match the trigger
// operation names of the remote store.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

func ParseChangeKind(s string) (ChangeKind, error) {
	switch k := ChangeKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return k, nil
	default:
		return "", fmt.Errorf("unknown change kind %q", s)
	}
}

// Change is one event to fold into a snapshot: a gateway result or a feed
// notification. For deletes only the key and owner of Entity matter.
type Change[T Entity] struct {
	Kind   ChangeKind
	Entity T
}

func Inserted[T Entity](e T) Change[T] { return Change[T]{Kind: ChangeInsert, Entity: e} }
func Updated[T Entity](e T) Change[T]  { return Change[T]{Kind: ChangeUpdate, Entity: e} }
func Deleted[T Entity](e T) Change[T]  { return Change[T]{Kind: ChangeDelete, Entity: e} }
