// Package cli wires the Hippo client together and exposes it as an
// interactive command loop: save files as encrypted objects, resolve
// references back to plaintext, and watch the background uploads drain.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hippostore/hippo/internal/api"
	"github.com/hippostore/hippo/internal/config"
	"github.com/hippostore/hippo/internal/cryptox"
	"github.com/hippostore/hippo/internal/hippo"
	"github.com/hippostore/hippo/internal/hippoproto"
	"github.com/hippostore/hippo/internal/logging"
	"github.com/hippostore/hippo/internal/repositories/records"
	"github.com/hippostore/hippo/internal/uploader"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	store  *hippo.Store
	coord  *uploader.Coordinator
	log    logging.Logger

	out          io.Writer
	pollInterval time.Duration
	closers      []func() error
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app := &App{
		config:       c,
		log:          log,
		out:          os.Stdout,
		pollInterval: 100 * time.Millisecond,
	}

	repo, err := app.openRepository(ctx, c)
	if err != nil {
		return nil, err
	}

	crypt, err := cryptox.ByName(c.Cipher)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewClient(c.ServerBaseURL, c.ClientOwnerID, nil)

	app.coord = uploader.NewCoordinator(repo, apiClient, log, uploader.Options{
		Workers:    c.UploadWorkers,
		MaxRetries: c.UploadMaxRetries,
		BaseDelay:  c.UploadBaseDelay,
		Observer:   uploader.LogObserver{Log: log.Info},
	})

	app.store = hippo.NewStore(repo, apiClient, crypt, app.coord, log, c.DataDir, c.URLScheme)

	return app, nil
}

func (a *App) openRepository(ctx context.Context, c *config.Config) (records.Repository, error) {
	switch c.StoreEngine {
	case "bbolt":
		repo, err := records.OpenBoltRepository(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open bolt record store: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil

	case "sqlite":
		db, err := hippo.InitDatabase(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite record store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return records.NewSQLiteRepository(db), nil

	default:
		return nil, fmt.Errorf("unknown store engine %q", c.StoreEngine)
	}
}

// Run starts the upload workers, installs the reference interceptor on
// the default transport, and enters the command loop. It returns when
// the user exits or stdin closes.
func (a *App) Run(ctx context.Context) error {
	if err := a.coord.Start(ctx); err != nil {
		a.log.Warn(ctx, "initial recovery scan failed", "error", err)
	}
	defer a.coord.Stop()

	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		hippoproto.Register(t, a.config.URLScheme, a.store)
	}

	runREPL(ctx, a, bufio.NewScanner(os.Stdin), a.out)
	return nil
}

func (a *App) Close() error {
	var firstErr error
	for _, close := range a.closers {
		if err := close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
