package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/spiritcast/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DB      string
	Catalog string
	Version string

	// Poll and Width come from the environment only.
	Poll  time.Duration
	Width int

	// LogWriter receives slog output. Defaults to os.Stderr.
	LogWriter io.Writer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Execute runs cmd and reports a failure in the format selected by its
// --format flag. Returns the process exit code.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	format, _ := cmd.PersistentFlags().GetString("format")
	verbose, _ := cmd.PersistentFlags().GetBool("verbose")
	if !isValidFormat(format) {
		format = "text"
	}
	ReportError(&OutputFormatter{
		Format:    format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   verbose,
	}, err)
	return GetExitCode(err)
}

// NewRootCommand creates the root command for the spiritcast CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "spiritcast",
		Short: "SpiritCast - worship projection controller",
		Long: `SpiritCast drives a live worship projection: the operator picks Bible
verses, song sections and announcements, and every display sharing the
same database mirrors the selection in real time.

Settings are read from SPIRITCAST_DB, SPIRITCAST_CATALOG, SPIRITCAST_VERSION,
SPIRITCAST_POLL_INTERVAL and SPIRITCAST_WIDTH; flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if err := opts.applyConfig(cmd); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err).WithErrCode(CodeConfig)
			}
			opts.setupLogging()
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to the shared SQLite database (default $SPIRITCAST_DB or spiritcast.db)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "catalog YAML file (default built-in catalog)")
	cmd.PersistentFlags().StringVar(&opts.Version, "bible-version", "", "default Bible version id (default catalog default)")

	// Add subcommands
	cmd.AddCommand(NewProjectCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewDisplayCommand(opts))
	cmd.AddCommand(NewConsoleCommand(opts))
	cmd.AddCommand(NewListenCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewActivityCommand(opts))

	return cmd
}

// applyConfig fills every option the user did not set on the command line
// from the environment.
func (o *RootOptions) applyConfig(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("db") {
		o.DB = cfg.DBPath
	}
	if !flags.Changed("catalog") {
		o.Catalog = cfg.CatalogPath
	}
	if !flags.Changed("bible-version") {
		o.Version = cfg.Version
	}
	o.Poll = cfg.PollInterval
	o.Width = cfg.Width
	return nil
}

func (o *RootOptions) setupLogging() {
	logLevel := slog.LevelWarn
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	w := o.LogWriter
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
