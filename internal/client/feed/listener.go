package feed

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Stream is an open subscription to one notification channel: a lazy,
// unbounded sequence of payloads. Closing it ends the subscription.
type Stream interface {
	// Next blocks until the next payload arrives, ctx is done or the
	// transport fails.
	Next(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}

type Listener interface {
	// Listen opens a stream on channel. A nil error is the transport's
	// acknowledgment that the subscription is active.
	Listen(ctx context.Context, channel string) (Stream, error)
}

// PgListener listens with PostgreSQL LISTEN/NOTIFY, one dedicated connection
// per stream.
type PgListener struct {
	dsn string
}

func NewPgListener(dsn string) *PgListener {
	return &PgListener{dsn: dsn}
}

func (l *PgListener) Listen(ctx context.Context, channel string) (Stream, error) {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, err
	}

	return &pgStream{conn: conn}, nil
}

type pgStream struct {
	conn *pgx.Conn
}

func (s *pgStream) Next(ctx context.Context) ([]byte, error) {
	n, err := s.conn.WaitForNotification(ctx)
	if err != nil {
		return nil, err
	}
	return []byte(n.Payload), nil
}

func (s *pgStream) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.conn.Close(ctx)
}
