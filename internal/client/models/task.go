package models

import (
	"cmp"
	"slices"
	"time"
)

// Task is an actionable item, created by the user or extracted from a note.
type Task struct {
	ID      string     `json:"id"`
	OwnerID string     `json:"user_id"`
	Text    string     `json:"task"`
	DueDate *time.Time `json:"due_date"`

	Completed   bool `json:"completed"`
	AIGenerated bool `json:"ai_generated"`

	// NoteID references the note the task was extracted from.
	NoteID *string `json:"note_id"`

	// Hash is the content hash of the normalised text; set only for
	// machine-generated tasks.
	Hash *string `json:"hash"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Task) Key() string   { return t.ID }
func (t Task) Owner() string { return t.OwnerID }

type TaskPatch struct {
	Text         *string
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
}

func (p TaskPatch) Empty() bool {
	return p.Text == nil && p.DueDate == nil && !p.ClearDueDate && p.Completed == nil
}

// OpenTasks lists incomplete tasks ordered by due date; tasks without a due
// date come last, newest first.
func OpenTasks(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b Task) int {
		switch {
		case a.DueDate != nil && b.DueDate != nil:
			if c := a.DueDate.Compare(*b.DueDate); c != 0 {
				return c
			}
		case a.DueDate != nil:
			return -1
		case b.DueDate != nil:
			return 1
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func TasksForNote(tasks []Task, noteID string) []Task {
	var out []Task
	for _, t := range tasks {
		if t.NoteID != nil && *t.NoteID == noteID {
			out = append(out, t)
		}
	}
	return out
}

func LastCreatedTask(tasks []Task) (Task, bool) {
	if len(tasks) == 0 {
		return Task{}, false
	}
	return slices.MaxFunc(tasks, func(a, b Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	}), true
}
