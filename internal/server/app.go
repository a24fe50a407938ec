// Package server wires and runs the task extraction server: schema
// migrations on the notes store, the OpenAI-backed extractor and the gRPC
// endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Kaktotak00p/notes/internal/auth"
	"github.com/Kaktotak00p/notes/internal/logging"
	"github.com/Kaktotak00p/notes/internal/server/config"
	"github.com/Kaktotak00p/notes/internal/server/extract"
	"github.com/Kaktotak00p/notes/internal/server/schema"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/Kaktotak00p/notes/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	extractor extract.Extractor
}

func NewApp(c *config.Config) *App {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	ex := extract.NewOpenAI(c.OpenAIBaseURL, c.OpenAIAPIKey, c.OpenAIModel, c.ExtractTimeout, &http.Client{}, logger)

	return &App{config: c, logger: logger, extractor: ex}
}

var openDB = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }

// Migrate applies the schema migrations to the notes store.
func (app *App) Migrate(ctx context.Context) error {
	db, err := openDB(app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	if err := schema.RunMigrations(ctx, db); err != nil {
		return err
	}

	app.logger.Info(ctx, "schema up to date")
	return nil
}

// IssueToken writes an access token for owner to w.
func (app *App) IssueToken(w io.Writer, owner string) error {
	tok, err := auth.GenerateToken(owner, []byte(app.config.SecretKey), app.config.AccessTokenValidityDuration)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, tok)
	return err
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.extractor, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the store if configured and serves until a signal arrives or
// ctx is done.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if app.config.Migrate {
		if err := app.Migrate(ctx); err != nil {
			return err
		}
	}

	if app.config.OpenAIAPIKey == "" {
		app.logger.Warn(ctx, "OPENAI_API_KEY is not set")
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	return nil
}
