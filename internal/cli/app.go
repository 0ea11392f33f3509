package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/spiritcast/internal/catalog"
	"github.com/roach88/spiritcast/internal/operator"
	"github.com/roach88/spiritcast/internal/playback"
	"github.com/roach88/spiritcast/internal/projection"
	"github.com/roach88/spiritcast/internal/store"
	"github.com/roach88/spiritcast/internal/suggest"
)

// app bundles what a command needs to reach the shared projection.
type app struct {
	store   *store.Store
	catalog *catalog.Library
	channel *projection.Channel
}

// loadCatalog returns the catalog selected by opts.
func loadCatalog(opts *RootOptions) (*catalog.Library, error) {
	if opts.Catalog == "" {
		return catalog.Builtin()
	}
	slog.Debug("loading catalog", "path", opts.Catalog)
	return catalog.LoadFile(opts.Catalog)
}

// openApp opens the database and catalog. The channel's clock is advanced
// past the stored frame so writes from this process win over older ones.
func openApp(ctx context.Context, opts *RootOptions) (*app, error) {
	if opts.DB == "" {
		return nil, NewExitError(ExitCommandError, "no database: set --db or SPIRITCAST_DB")
	}
	cat, err := loadCatalog(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err).WithErrCode(CodeCatalog)
	}

	slog.Debug("opening database", "path", opts.DB)
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err).WithErrCode(CodeStore)
	}

	port := projection.NewStorePort(st, store.WatchOptions{Poll: opts.Poll, Logger: slog.Default()})
	ch := projection.New(port, projection.WithLogger(slog.Default()))
	if _, err := ch.Refresh(ctx); err != nil {
		slog.Warn("stored frame unreadable, starting from idle", "error", err)
	}
	return &app{store: st, catalog: cat, channel: ch}, nil
}

func (a *app) close() {
	if closeErr := a.store.Close(); closeErr != nil {
		slog.Error("error closing database", "error", closeErr)
	}
}

// console builds the operator console, with detection when withDetection
// is set. Detection journals its samples to the database.
func (a *app) console(opts *RootOptions, withDetection bool) (*operator.Console, error) {
	consoleOpts := []operator.Option{
		operator.WithVersion(opts.Version),
		operator.WithLogger(slog.Default()),
	}
	if withDetection {
		engine, err := a.detection(opts)
		if err != nil {
			return nil, err
		}
		consoleOpts = append(consoleOpts, operator.WithDetection(engine))
	}
	return operator.New(a.catalog, a.channel, consoleOpts...), nil
}

func (a *app) detection(opts *RootOptions) (*suggest.Engine, error) {
	m, err := suggest.NewMatcher(a.catalog, opts.Version)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build matcher", err).WithErrCode(CodeCatalog)
	}
	return suggest.New(m,
		suggest.WithSink(a.store),
		suggest.WithLogger(slog.Default()),
	), nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM or when the
// command's own context ends.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan) // Prevent signal handler leak
	}()
	return ctx, cancel
}

// ignoreCanceled maps a clean shutdown to nil.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// contentError maps a content lookup or publish failure to an exit error.
// Anything other than a missing item or bad input failed to publish.
func contentError(action string, err error) *ExitError {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, operator.ErrUnknownSuggestion):
		return WrapExitError(ExitFailure, fmt.Sprintf("%s: not found", action), err).WithErrCode(CodeNotFound)
	case errors.Is(err, operator.ErrEmptyAnnouncement), errors.Is(err, playback.ErrSectionOutOfRange):
		return WrapExitError(ExitCommandError, action, err).WithErrCode(CodeInvalidInput)
	default:
		return WrapExitError(ExitFailure, action, err).WithErrCode(CodeStore)
	}
}
