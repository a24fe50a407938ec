package cli

import (
	"context"
	"strings"
)

func (a *App) ListCategories(_ context.Context, _ []string) error {
	cs, err := a.categories.List()
	if err != nil {
		return err
	}
	if len(cs) == 0 {
		printlnFn("No categories")
		return nil
	}
	for _, c := range cs {
		printlnFn(c.ID, c.Label)
	}
	return nil
}

func (a *App) AddCategory(ctx context.Context, args []string) error {
	label := strings.Join(args, " ")
	if label == "" {
		return errUsage
	}
	c, err := a.categories.Create(ctx, label)
	if err != nil {
		return err
	}
	printlnFn("Created category", c.ID)
	return nil
}

func (a *App) RenameCategory(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	_, err := a.categories.Rename(ctx, args[0], strings.Join(args[1:], " "))
	return err
}

func (a *App) DeleteCategory(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	return a.categories.Delete(ctx, id)
}
