// Package cli is the interactive surface of docstage: a line-oriented REPL
// over the staging store, the status ledger and the remote workflow. It holds
// no SQL and no HTTP of its own.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dkarademir/docstage/internal/apiclient"
	"github.com/dkarademir/docstage/internal/background"
	"github.com/dkarademir/docstage/internal/config"
	"github.com/dkarademir/docstage/internal/ledger"
	"github.com/dkarademir/docstage/internal/logging"
	"github.com/dkarademir/docstage/internal/staging"
	"github.com/dkarademir/docstage/internal/workflow"

	_ "modernc.org/sqlite"
)

// isTerminalFn is a test seam for the interactive-stdin check.
var isTerminalFn = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// healthChecker is the slice of the API client the REPL probes directly.
type healthChecker interface {
	Health(ctx context.Context) bool
}

type App struct {
	cfg      *config.Config
	logger   logging.Logger
	store    *staging.Store
	repo     ledger.Repository
	resolver *staging.Resolver
	coord    *workflow.Coordinator
	health   healthChecker
	runner   *background.Runner

	user string

	in  *bufio.Scanner
	out io.Writer

	close func() error
}

// NewApp wires the full pipeline from configuration: ledger database,
// staging store, remote client, workflow coordinator and background runner.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := ledger.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	store, err := staging.NewStore(cfg.StagingDir, cfg.SupportedExtensions)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	repo := ledger.NewSQLiteRepository(db)
	client := apiclient.New(cfg, logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		repo:     repo,
		resolver: staging.NewResolver(store, repo, logger),
		coord:    workflow.NewCoordinator(store, repo, client, logger),
		health:   client,
		runner:   background.NewRunner(logger),
		user:     cfg.OwnerUser,
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
		close:    db.Close,
	}, nil
}

// Run starts the REPL and blocks until exit or EOF.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.close != nil {
			_ = a.close()
		}
	}()

	fmt.Fprintf(a.out, "docstage — staging dir %s (type 'help' for commands)\n", a.store.Dir())
	a.repl(ctx)
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}
