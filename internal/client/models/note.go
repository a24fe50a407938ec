package models

import (
	"cmp"
	"slices"
	"time"
)

// Note is a user's text document.
type Note struct {
	// ID is the row id (UUID).
	ID string `json:"id"`

	// OwnerID is the id of the owning user.
	OwnerID string `json:"user_id"`

	// FileName is the display name.
	FileName string `json:"file_name"`

	Content string `json:"content"`

	// CategoryID references a Category; nil when the note is uncategorised.
	CategoryID *string `json:"category_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Deleted marks the note as being in the trash. Trashed notes stay in the
	// collection until restored or permanently deleted.
	Deleted bool `json:"deleted"`
}

func (n Note) Key() string   { return n.ID }
func (n Note) Owner() string { return n.OwnerID }

// NotePatch is a partial update. Nil fields are left untouched;
// ClearCategory sets the category to NULL and wins over CategoryID.
type NotePatch struct {
	FileName      *string
	Content       *string
	CategoryID    *string
	ClearCategory bool
	Deleted       *bool
}

func (p NotePatch) Empty() bool {
	return p.FileName == nil && p.Content == nil && p.CategoryID == nil && !p.ClearCategory && p.Deleted == nil
}

// ActiveNotes is the default listing: notes not in the trash, most recently
// modified first.
func ActiveNotes(notes []Note) []Note {
	return SortNotesByUpdated(filterNotes(notes, false), true)
}

// TrashedNotes lists notes in the trash, most recently modified first.
func TrashedNotes(notes []Note) []Note {
	return SortNotesByUpdated(filterNotes(notes, true), true)
}

// SortNotesByUpdated returns a sorted copy; desc puts the newest first.
// Ties are broken by id so the order is stable across snapshots.
func SortNotesByUpdated(notes []Note, desc bool) []Note {
	out := slices.Clone(notes)
	slices.SortFunc(out, func(a, b Note) int {
		c := a.UpdatedAt.Compare(b.UpdatedAt)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// LastCreatedNote returns the note with the latest creation time.
func LastCreatedNote(notes []Note) (Note, bool) {
	if len(notes) == 0 {
		return Note{}, false
	}
	return slices.MaxFunc(notes, func(a, b Note) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	}), true
}

func filterNotes(notes []Note, deleted bool) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.Deleted == deleted {
			out = append(out, n)
		}
	}
	return out
}
