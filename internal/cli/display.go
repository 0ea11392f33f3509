package cli

import (
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/roach88/spiritcast/internal/content"
)

// DisplayOptions holds flags for the display command.
type DisplayOptions struct {
	*RootOptions
	Once bool
}

// NewDisplayCommand creates the display command.
func NewDisplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DisplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "display",
		Short: "Show the projection and follow changes",
		Long: `Render the current frame, then every newer frame any operator publishes
to the same database, until interrupted.

Example:
  spiritcast display --db /srv/service.db
  spiritcast display --format json | jq .data.content`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisplay(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Once, "once", false, "render the current frame and exit")

	return cmd
}

func runDisplay(opts *DisplayOptions, cmd *cobra.Command) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := openApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.close()

	out := opts.formatter(cmd)
	var (
		mu      sync.Mutex
		failure error
	)
	sub := a.channel.Subscribe(ctx, func(f content.Frame) {
		mu.Lock()
		defer mu.Unlock()
		if failure != nil {
			return
		}
		slog.Debug("display frame", "kind", f.Kind, "seq", f.Sequence)
		if err := writeFrame(out, f, opts.Width); err != nil {
			failure = err
			cancel()
		}
	})
	defer sub.Unsubscribe()

	if opts.Once {
		return failure
	}

	slog.Info("display following projection", "db", opts.DB)
	runErr := ignoreCanceled(a.channel.Run(ctx))

	mu.Lock()
	defer mu.Unlock()
	if failure != nil {
		return failure
	}
	if runErr != nil {
		return WrapExitError(ExitFailure, "display stopped", runErr)
	}
	return nil
}
