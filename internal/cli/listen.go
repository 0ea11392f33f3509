package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/spiritcast/internal/suggest"
)

// ListenOptions holds flags for the listen command.
type ListenOptions struct {
	*RootOptions
	Duration time.Duration
}

// NewListenCommand creates the listen command.
func NewListenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run detection and print suggestions",
		Long: `Run the detection engine without projecting anything. Every sampled
utterance and every suggestion is printed as it happens and journaled to the
database; pending suggestions are listed on exit.

Example:
  spiritcast listen --duration 1m
  spiritcast listen --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "stop after this long (0 runs until interrupted)")

	return cmd
}

func runListen(opts *ListenOptions, cmd *cobra.Command) error {
	if opts.Duration < 0 {
		return NewExitError(ExitCommandError, "--duration must not be negative")
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()
	if opts.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	a, err := openApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.close()

	engine, err := a.detection(opts.RootOptions)
	if err != nil {
		return err
	}

	out := &syncWriter{w: cmd.OutOrStdout()}
	formatter := &OutputFormatter{Format: opts.Format, Writer: out, ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	remove := engine.OnEvent(func(ev suggest.Event) {
		if ev.Type == suggest.EventProcessing {
			writeEvent(formatter, ev)
			return
		}
		_ = formatter.SuccessText(newEventView(ev), func(io.Writer) error {
			writeEvent(formatter, ev)
			return nil
		})
	})
	formatter.VerboseLog("listening, journaling to %s", a.store.Path())

	engine.StartListening()
	<-ctx.Done()
	engine.StopListening()
	remove()

	pending := engine.Suggestions()
	views := make([]suggestionView, len(pending))
	for i, s := range pending {
		views[i] = newSuggestionView(s)
	}
	return formatter.SuccessText(views, func(w io.Writer) error {
		fmt.Fprintf(w, "%d pending suggestion(s)\n", len(pending))
		for i, s := range pending {
			fmt.Fprintf(w, "  %d. %s (%d%%)\n", i+1, s.Caption, s.Confidence)
		}
		return nil
	})
}
