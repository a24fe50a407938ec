package cli

import (
	"context"
	"fmt"

	"github.com/Kaktotak00p/notes/internal/common"
)

func (a *App) Status(_ context.Context, _ []string) error {
	s := a.sessions.Current()
	if s == nil {
		return common.ErrNotStarted
	}

	printlnFn("Owner:", s.OwnerID)
	printlnFn("Extractor:", string(a.Mode()))
	for _, st := range s.Status() {
		line := fmt.Sprintf("%-11s %-11s feed %-11s %d item(s)", st.Name, st.Load, st.Feed, st.Count)
		if st.Err != nil {
			line += "  " + st.Err.Error()
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) Reconnect(ctx context.Context, _ []string) error {
	if err := a.sessions.Resubscribe(ctx); err != nil {
		return err
	}
	printlnFn("All collections loaded and live")
	return nil
}
