package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/jarsclient/internal/client/client"
	"github.com/dmitrijs2005/jarsclient/internal/client/config"
	"github.com/dmitrijs2005/jarsclient/internal/client/session"
	"github.com/dmitrijs2005/jarsclient/internal/logging"
	"github.com/dmitrijs2005/jarsclient/internal/memstore"
)

// recordDir is where downloaded records land, relative to the working directory.
const recordDir = "records"

type App struct {
	config   *config.Config
	client   client.Client
	sessions session.Repository
	closeDB  func() error
	target   string
	log      logging.Logger
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp wires the store client for the configured backend, restoring the
// token and version saved for the same target by a previous run.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level)

	a := &App{
		config: c,
		target: targetOf(c),
		log:    logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	opts := []client.Option{client.WithTimeout(c.Timeout), client.WithLogger(logger)}

	if c.SessionDB != "" {
		db, err := session.InitDatabase(ctx, c.SessionDB)
		if err != nil {
			return nil, fmt.Errorf("session database: %w", err)
		}
		a.sessions = session.NewSQLiteRepository(db)
		a.closeDB = db.Close

		saved, err := a.sessions.Load(ctx, a.target)
		if err != nil {
			db.Close()
			return nil, err
		}
		if saved != nil {
			opts = append(opts, client.WithToken(saved.Token), client.WithVersion(saved.Version))
			logger.Debug(ctx, "session restored", "target", a.target)
		}
	}

	cl, err := newStoreClient(c, logger, opts)
	if err != nil {
		if a.closeDB != nil {
			a.closeDB()
		}
		return nil, err
	}
	a.client = cl

	return a, nil
}

func newStoreClient(c *config.Config, logger logging.Logger, opts []client.Option) (client.Client, error) {
	if c.Mode == config.ModeLocal {
		seed, err := memstore.LoadSeed(c.SeedFile)
		if err != nil {
			return nil, err
		}
		store, err := memstore.New(seed, memstore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return client.NewLocal(store, opts...), nil
	}
	return client.NewHTTP(c.ServerURL, opts...)
}

// targetOf names the backend a session belongs to.
func targetOf(c *config.Config) string {
	if c.Mode == config.ModeLocal {
		return "local:" + c.SeedFile
	}
	return strings.TrimRight(c.ServerURL, "/")
}

// Run blocks until the REPL ends or ctx is cancelled. The session is saved
// either way.
func (a *App) Run(ctx context.Context) {
	defer a.close(context.WithoutCancel(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Root(ctx)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		printlnFn("\nInterrupted")
	}
}

func (a *App) close(ctx context.Context) {
	a.saveSession(ctx)
	if a.closeDB != nil {
		if err := a.closeDB(); err != nil {
			a.log.Error(ctx, "closing session database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.client.Token() != ""
}

// saveSession stores the current token and version for the next run.
func (a *App) saveSession(ctx context.Context) {
	if a.sessions == nil {
		return
	}
	s := &session.Session{Target: a.target, Token: a.client.Token(), Version: a.client.Version()}
	if err := a.sessions.Save(ctx, s); err != nil {
		a.log.Error(ctx, "saving session", "target", a.target, "error", err)
	}
}

func (a *App) forgetSession(ctx context.Context) {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.Forget(ctx, a.target); err != nil {
		a.log.Error(ctx, "forgetting session", "target", a.target, "error", err)
	}
}
