package services

import (
	"github.com/Kaktotak00p/notes/internal/client/session"
	"github.com/Kaktotak00p/notes/internal/common"
)

// SessionSource yields the running session. *session.Coordinator implements it.
type SessionSource interface {
	Current() *session.Session
}

func current(src SessionSource) (*session.Session, error) {
	s := src.Current()
	if s == nil {
		return nil, common.ErrNotStarted
	}
	return s, nil
}
