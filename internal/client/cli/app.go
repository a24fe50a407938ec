package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Kaktotak00p/notes/internal/client/avatars"
	"github.com/Kaktotak00p/notes/internal/client/client"
	"github.com/Kaktotak00p/notes/internal/client/config"
	"github.com/Kaktotak00p/notes/internal/client/feed"
	"github.com/Kaktotak00p/notes/internal/client/repositories/categories"
	"github.com/Kaktotak00p/notes/internal/client/repositories/notes"
	"github.com/Kaktotak00p/notes/internal/client/repositories/profiles"
	"github.com/Kaktotak00p/notes/internal/client/repositories/tasks"
	"github.com/Kaktotak00p/notes/internal/client/services"
	"github.com/Kaktotak00p/notes/internal/client/session"
	"github.com/Kaktotak00p/notes/internal/logging"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Mode reports whether the extraction server is reachable. Notes and tasks
// work in either mode; only extract needs ModeOnline.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionManager is the part of *session.Coordinator the CLI uses.
type sessionManager interface {
	Start(ctx context.Context, ownerID string) (*session.Session, error)
	Stop()
	Resubscribe(ctx context.Context) error
	Current() *session.Session
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	sessions   sessionManager
	auth       services.AuthService
	notes      services.NoteService
	tasks      services.TaskService
	categories services.CategoryService
	profile    services.ProfileService
	reader     *bufio.Reader
	closers    []func() error

	mu      sync.Mutex
	ownerID string
	mode    Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", c.LogLevel)

	local, err := client.OpenLocalStore(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing local store: %w", err)
	}

	remote, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		_ = local.Close()
		return nil, fmt.Errorf("error opening remote store: %w", err)
	}

	apiClient, err := client.NewExtractorClient(c.ExtractorAddr)
	if err != nil {
		_ = local.Close()
		_ = remote.Close()
		return nil, err
	}

	notesRepo := notes.NewPostgresRepository(remote, logger, c.RequestTimeout)
	tasksRepo := tasks.NewPostgresRepository(remote, logger, c.RequestTimeout)
	categoriesRepo := categories.NewPostgresRepository(remote, logger, c.RequestTimeout)
	profilesRepo := profiles.NewPostgresRepository(remote, logger, c.RequestTimeout)

	var avatarStore services.AvatarStorage
	if c.S3Bucket != "" {
		s3Store, err := avatars.NewS3Store(ctx, avatars.Config{
			Bucket:   c.S3Bucket,
			Region:   c.S3Region,
			Endpoint: c.S3BaseEndpoint,
			User:     c.S3RootUser,
			Password: c.S3RootPassword,
		}, nil, logger)
		if err != nil {
			_ = local.Close()
			_ = remote.Close()
			_ = apiClient.Close()
			return nil, fmt.Errorf("error initializing avatar storage: %w", err)
		}
		avatarStore = s3Store
	}

	a := &App{
		config: c,
		logger: logger.With("module", "cli"),
		reader: bufio.NewReader(os.Stdin),
		mode:   ModeOffline,
	}

	coord := session.NewCoordinator(session.Gateways{
		Notes:      notesRepo,
		Tasks:      tasksRepo,
		Categories: categoriesRepo,
		Profiles:   profilesRepo,
	}, feed.NewPgListener(c.DatabaseDSN), logger, session.WithFeedDetachHook(a.feedDetached))

	a.sessions = coord
	a.auth = services.NewAuthService(apiClient, local)
	a.notes = services.NewNoteService(coord, notesRepo)
	a.tasks = services.NewTaskService(coord, tasksRepo, apiClient)
	a.categories = services.NewCategoryService(coord, categoriesRepo)
	a.profile = services.NewProfileService(coord, profilesRepo, avatarStore, logger)
	a.closers = []func() error{remote.Close, local.Close}

	return a, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	a.Root(ctx)
}

// Close ends the session and releases every connection.
func (a *App) Close(ctx context.Context) error {
	if a.sessions != nil {
		a.sessions.Stop()
	}
	var errs []error
	if a.auth != nil {
		errs = append(errs, a.auth.Close(ctx))
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.ownerID != ""
}

func (a *App) setOwner(ownerID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ownerID = ownerID
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "extractor mode changed", "mode", string(mode))
	}
}

func (a *App) feedDetached(collection string, err error) {
	printlnFn(fmt.Sprintf("Live updates for %s stopped (%v). Run 'reconnect' to resume.", collection, err))
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
