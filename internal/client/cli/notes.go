package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Kaktotak00p/notes/internal/client/models"
)

var errUsage = errors.New("wrong arguments, see 'help'")

func argID(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", errUsage
	}
	return args[0], nil
}

func formatNote(n models.Note) string {
	title := n.FileName
	if title == "" {
		title = firstLine(n.Content)
	}
	return fmt.Sprintf("%s  %-24s  %s", n.ID, title, n.UpdatedAt.Local().Format(time.DateTime))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if r := []rune(line); len(r) > 40 {
		return string(r[:40]) + "..."
	}
	return line
}

func printNotes(ns []models.Note) {
	if len(ns) == 0 {
		printlnFn("No notes")
		return
	}
	for _, n := range ns {
		printlnFn(formatNote(n))
	}
}

func (a *App) ListNotes(_ context.Context, args []string) error {
	oldestFirst := len(args) > 0 && args[0] == "-r"
	ns, err := a.notes.Active(!oldestFirst)
	if err != nil {
		return err
	}
	printNotes(ns)
	return nil
}

func (a *App) ListTrash(_ context.Context, _ []string) error {
	ns, err := a.notes.Trash()
	if err != nil {
		return err
	}
	printNotes(ns)
	return nil
}

func (a *App) ShowNote(_ context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	n, err := a.notes.Get(id)
	if err != nil {
		return err
	}

	printlnFn(formatNote(n))
	if n.CategoryID != nil {
		if c, err := a.categories.Get(*n.CategoryID); err == nil {
			printlnFn("Category:", c.Label)
		}
	}
	if n.Deleted {
		printlnFn("(in trash)")
	}
	printlnFn(n.Content)

	ts, err := a.tasks.ForNote(n.ID)
	if err != nil {
		return err
	}
	for _, t := range ts {
		printlnFn(formatTask(t))
	}
	return nil
}

func (a *App) AddNote(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Enter file name", os.Stdout)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter text", os.Stdout)
	if err != nil {
		return err
	}

	n, err := a.notes.Create(ctx, name, content, nil)
	if err != nil {
		return err
	}
	printlnFn("Created note", n.ID)
	return nil
}

func (a *App) EditNote(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter new text", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.notes.Update(ctx, id, models.NotePatch{Content: &content}); err != nil {
		return err
	}
	printlnFn("Saved")
	return nil
}

func (a *App) SetCategory(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}

	p := models.NotePatch{ClearCategory: true}
	if len(args) > 1 {
		c, err := a.categories.Get(args[1])
		if err != nil {
			return err
		}
		p = models.NotePatch{CategoryID: &c.ID}
	}

	_, err = a.notes.Update(ctx, id, p)
	return err
}

func (a *App) TrashNote(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	_, err = a.notes.MoveToTrash(ctx, id)
	return err
}

func (a *App) RestoreNote(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	_, err = a.notes.Restore(ctx, id)
	return err
}

func (a *App) RestoreAll(ctx context.Context, _ []string) error {
	n, err := a.notes.RestoreAll(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Restored %d note(s)", n))
	return nil
}

func (a *App) EmptyTrash(ctx context.Context, _ []string) error {
	n, err := a.notes.EmptyTrash(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Deleted %d note(s)", n))
	return nil
}

func (a *App) DeleteNote(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	return a.notes.Delete(ctx, id)
}
