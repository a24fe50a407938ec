package models

import (
	"slices"
	"strings"
)

type Category struct {
	ID      string `json:"id"`
	OwnerID string `json:"user_id"`
	Label   string `json:"category"`
}

func (c Category) Key() string   { return c.ID }
func (c Category) Owner() string { return c.OwnerID }

type CategoryPatch struct {
	Label *string
}

func (p CategoryPatch) Empty() bool { return p.Label == nil }

func FindCategory(categories []Category, id string) (Category, bool) {
	i := slices.IndexFunc(categories, func(c Category) bool { return c.ID == id })
	if i < 0 {
		return Category{}, false
	}
	return categories[i], true
}

// SortCategoriesByLabel returns a copy ordered case-insensitively by label.
func SortCategoriesByLabel(categories []Category) []Category {
	out := slices.Clone(categories)
	slices.SortFunc(out, func(a, b Category) int {
		if c := strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
