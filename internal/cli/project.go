package cli

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/spiritcast/internal/content"
	"github.com/roach88/spiritcast/internal/operator"
	"github.com/roach88/spiritcast/internal/render"
)

// ProjectOptions holds flags for the project subcommands.
type ProjectOptions struct {
	*RootOptions
	Version string
	Section int
	Caption string
}

// NewProjectCommand creates the project command and its subcommands.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProjectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Put content on the projection",
		Long: `Publish one frame to every display sharing the database.

Example:
  spiritcast project verse John 3:16 --version kjv
  spiritcast project song amazing-grace --section 2
  spiritcast project announce "Potluck after service" --caption Today`,
	}

	verse := &cobra.Command{
		Use:           "verse <reference>",
		Short:         "Project a Bible verse",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := strings.Join(args, " ")
			return runProject(cmd, opts.RootOptions, "project verse", func(ctx context.Context, c *operator.Console) (content.Frame, error) {
				return c.ProjectVerse(ctx, ref, opts.Version)
			})
		},
	}
	verse.Flags().StringVar(&opts.Version, "version", "", "Bible version id (default --bible-version)")

	song := &cobra.Command{
		Use:           "song <id>",
		Short:         "Start a song at a section",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd, opts.RootOptions, "project song", func(ctx context.Context, c *operator.Console) (content.Frame, error) {
				return c.ProjectSong(ctx, args[0], opts.Section-1)
			})
		},
	}
	song.Flags().IntVar(&opts.Section, "section", 1, "section number, starting at 1")

	announce := &cobra.Command{
		Use:           "announce <text>",
		Short:         "Project an announcement",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return runProject(cmd, opts.RootOptions, "project announce", func(ctx context.Context, c *operator.Console) (content.Frame, error) {
				return c.Announce(ctx, text, opts.Caption)
			})
		},
	}
	announce.Flags().StringVar(&opts.Caption, "caption", "", "optional caption shown under the text")

	cmd.AddCommand(verse, song, announce)
	return cmd
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Blank the projection",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd, rootOpts, "clear", func(ctx context.Context, c *operator.Console) (content.Frame, error) {
				return c.Clear(ctx)
			})
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the frame currently projected",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, err := openApp(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer a.close()
			return writeFrame(rootOpts.formatter(cmd), a.channel.Current(), rootOpts.Width)
		},
	}
}

func runProject(cmd *cobra.Command, opts *RootOptions, action string, do func(context.Context, *operator.Console) (content.Frame, error)) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()

	console, err := a.console(opts, false)
	if err != nil {
		return err
	}
	f, err := do(ctx, console)
	if err != nil {
		return contentError(action, err)
	}
	return writeFrame(opts.formatter(cmd), f, opts.Width)
}

// writeFrame prints f as its wire JSON or as a rendered block.
func writeFrame(out *OutputFormatter, f content.Frame, width int) error {
	payload, err := content.EncodeFrame(f)
	if err != nil {
		return WrapExitError(ExitFailure, "encode frame", err)
	}
	return out.SuccessText(json.RawMessage(payload), func(w io.Writer) error {
		return render.New(width).Frame(w, f)
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
