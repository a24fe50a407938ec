package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Kaktotak00p/notes/internal/client/models"
)

const dateLayout = "2006-01-02"

func formatTask(t models.Task) string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	due := ""
	if t.DueDate != nil {
		due = " (due " + t.DueDate.Format(dateLayout) + ")"
	}
	ai := ""
	if t.AIGenerated {
		ai = " *"
	}
	return fmt.Sprintf("%s %s  %s%s%s", mark, t.ID, t.Text, due, ai)
}

func (a *App) ListTasks(_ context.Context, args []string) error {
	var (
		ts  []models.Task
		err error
	)
	if len(args) > 0 {
		ts, err = a.tasks.ForNote(args[0])
	} else {
		ts, err = a.tasks.Open()
	}
	if err != nil {
		return err
	}

	if len(ts) == 0 {
		printlnFn("No tasks")
		return nil
	}
	for _, t := range ts {
		printlnFn(formatTask(t))
	}
	return nil
}

func (a *App) AddTask(ctx context.Context, _ []string) error {
	text, err := getSimpleText(a.reader, "Enter task", os.Stdout)
	if err != nil {
		return err
	}
	if text == "" {
		return errUsage
	}

	dueText, err := getSimpleText(a.reader, "Due date (YYYY-MM-DD, empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	var due *time.Time
	if dueText != "" {
		d, err := time.ParseInLocation(dateLayout, dueText, time.Local)
		if err != nil {
			return fmt.Errorf("bad date %q: %w", dueText, err)
		}
		due = &d
	}

	t, err := a.tasks.Create(ctx, text, due, nil)
	if err != nil {
		return err
	}
	printlnFn("Created task", t.ID)
	return nil
}

func (a *App) CompleteTask(ctx context.Context, args []string) error {
	return a.setCompleted(ctx, args, true)
}

func (a *App) ReopenTask(ctx context.Context, args []string) error {
	return a.setCompleted(ctx, args, false)
}

func (a *App) setCompleted(ctx context.Context, args []string, done bool) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	_, err = a.tasks.Complete(ctx, id, done)
	return err
}

func (a *App) DeleteTask(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	return a.tasks.Delete(ctx, id)
}

// Extract asks the extraction server for a note's action items and creates
// the ones not seen before.
func (a *App) Extract(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}

	out, err := a.tasks.ExtractFromNote(ctx, id)
	if err != nil {
		return err
	}

	var created, skipped int
	for _, o := range out {
		switch {
		case o.Created():
			created++
			printlnFn("+", o.Text)
		case o.Skipped():
			skipped++
		default:
			printlnFn("!", o.Text+":", o.Err)
		}
	}
	printlnFn(fmt.Sprintf("%d task(s) created, %d duplicate(s) skipped", created, skipped))
	return nil
}
