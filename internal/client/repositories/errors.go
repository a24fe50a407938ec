// Package repositories holds what the remote-store gateways share: error
// translation into the engine's taxonomy, partial-update SQL building and
// per-call timeouts. The per-collection gateways live in the subpackages.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation       = "23505"
	pgInsufficientPrivilege = "42501"
	pgInvalidAuthPrefix     = "28"
)

// MapError translates a database/sql or pgx error into one of
// common.ErrNotFound, common.ErrDuplicateSkipped, common.ErrUnauthorized or
// common.ErrRemoteUnavailable. The original error stays in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return fmt.Errorf("%w: %w", common.ErrDuplicateSkipped, err)
		case pgErr.Code == pgInsufficientPrivilege, strings.HasPrefix(pgErr.Code, pgInvalidAuthPrefix):
			return fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
		}
	}

	return fmt.Errorf("%w: %w", common.ErrRemoteUnavailable, err)
}

// WithTimeout bounds a single gateway call. A zero d leaves ctx unchanged.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// SetList accumulates "column = $n" assignments for a partial UPDATE.
type SetList struct {
	sets []string
	args []any
}

func (s *SetList) Add(column string, value any) {
	s.args = append(s.args, value)
	s.sets = append(s.sets, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *SetList) Empty() bool { return len(s.sets) == 0 }

// Update renders "UPDATE table SET ... WHERE id = $i AND user_id = $j RETURNING returning"
// and the matching arguments.
func (s *SetList) Update(table, returning, id, owner string) (string, []any) {
	args := append(append([]any(nil), s.args...), id, owner)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		table, strings.Join(s.sets, ", "), len(args)-1, len(args), returning)
	return query, args
}

// UpdateByID renders "UPDATE table SET ... WHERE id = $i RETURNING returning"
// for tables keyed by the owner id itself.
func (s *SetList) UpdateByID(table, returning, id string) (string, []any) {
	args := append(append([]any(nil), s.args...), id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(s.sets, ", "), len(args), returning)
	return query, args
}
