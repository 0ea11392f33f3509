package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/spiritcast/internal/content"
	"github.com/roach88/spiritcast/internal/operator"
	"github.com/roach88/spiritcast/internal/render"
	"github.com/roach88/spiritcast/internal/suggest"
)

// ConsoleOptions holds flags for the console command.
type ConsoleOptions struct {
	*RootOptions
	Listen bool
}

// NewConsoleCommand creates the console command.
func NewConsoleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsoleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive operator console",
		Long: `Read operator commands from standard input, one per line. Frames go to
every display sharing the database; frames other operators publish are
picked up too. Type "help" for the command list.

Example:
  spiritcast console --listen`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Listen, "listen", false, "start detection immediately")

	return cmd
}

const consoleHelp = `commands:
  verse <reference>       project a verse          version <id>   set Bible version
  song <id> [n]           start a song at section n (from 1)
  next | prev | stop      song navigation
  announce <text>         project an announcement
  clear | show            blank or print the projection
  listen | unlisten       start or stop detection
  hear <text>             match a phrase now
  suggestions             list pending suggestions
  accept <n|id>           project a suggestion
  reject <n|id>           discard a suggestion
  activity                recent samples          clear-activity
  help | quit`

func runConsole(opts *ConsoleOptions, cmd *cobra.Command) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := openApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.close()

	console, err := a.console(opts.RootOptions, true)
	if err != nil {
		return err
	}
	detection := console.Detection()
	defer detection.StopListening()

	out := &syncWriter{w: cmd.OutOrStdout()}
	events := &OutputFormatter{Format: "text", Writer: out, Verbose: opts.Verbose}
	remove := detection.OnEvent(func(ev suggest.Event) {
		writeEvent(events, ev)
	})
	defer remove()

	r := &repl{console: console, out: out, width: opts.Width, version: opts.Version}
	fmt.Fprintln(out, `spiritcast console - type "help" for commands`)
	if opts.Listen {
		detection.StartListening()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCanceled(a.channel.Run(gctx))
	})
	g.Go(func() error {
		defer cancel()
		return r.run(gctx, cmd.InOrStdin())
	})
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "console stopped", err)
	}
	return nil
}

// repl executes console command lines.
type repl struct {
	console *operator.Console
	out     io.Writer
	width   int
	version string
}

// run reads lines until EOF, "quit", or ctx ends.
func (r *repl) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if r.exec(ctx, line) {
				return nil
			}
		}
	}
}

// exec runs one command line. Returns true when the session should end.
func (r *repl) exec(ctx context.Context, line string) bool {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	detection := r.console.Detection()

	var err error
	switch strings.ToLower(name) {
	case "":
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(r.out, consoleHelp)
	case "version":
		if rest == "" {
			err = errors.New("usage: version <id>")
			break
		}
		r.version = rest
		fmt.Fprintf(r.out, "bible version: %s\n", rest)
	case "verse":
		if rest == "" {
			err = errors.New("usage: verse <reference>")
			break
		}
		err = r.projected(r.console.ProjectVerse(ctx, rest, r.version))
	case "song":
		err = r.song(ctx, rest)
	case "next":
		err = r.moved(r.console.NextSection(ctx))
	case "prev", "previous":
		err = r.moved(r.console.PreviousSection(ctx))
	case "stop":
		err = r.console.StopSong(ctx)
		if err == nil {
			fmt.Fprintln(r.out, "song stopped")
		}
	case "announce":
		err = r.projected(r.console.Announce(ctx, rest, ""))
	case "clear":
		err = r.projected(r.console.Clear(ctx))
	case "show":
		err = render.New(r.width).Frame(r.out, r.console.Current())
	case "listen":
		detection.StartListening()
	case "unlisten":
		detection.StopListening()
	case "hear":
		if _, ok := detection.Ingest(rest); !ok {
			fmt.Fprintln(r.out, "no new suggestion")
		}
	case "suggestions":
		r.listSuggestions()
	case "accept":
		var id string
		if id, err = r.resolveSuggestion(rest); err == nil {
			err = r.projected(r.console.Accept(ctx, id))
		}
	case "reject":
		var id string
		if id, err = r.resolveSuggestion(rest); err == nil {
			if err = r.console.Reject(id); err == nil {
				fmt.Fprintln(r.out, "rejected")
			}
		}
	case "activity":
		for _, rec := range detection.Activity() {
			writeActivity(r.out, rec)
		}
	case "clear-activity":
		detection.ClearActivity()
	default:
		err = fmt.Errorf("unknown command %q (try help)", name)
	}
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
	return false
}

func (r *repl) song(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return errors.New("usage: song <id> [n]")
	}
	section := 1
	if len(fields) == 2 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("section %q: not a number", fields[1])
		}
		section = n
	}
	return r.projected(r.console.ProjectSong(ctx, fields[0], section-1))
}

func (r *repl) projected(f content.Frame, err error) error {
	if err != nil {
		return err
	}
	if f.IsBlank() {
		fmt.Fprintln(r.out, "projected: blank")
		return nil
	}
	label := f.Caption
	if label == "" {
		label = strconv.Quote(f.Body)
	}
	fmt.Fprintf(r.out, "projected: %s %s\n", f.Kind, label)
	return nil
}

func (r *repl) moved(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(r.out, "no section to move to")
		return nil
	}
	return r.projected(r.console.Current(), nil)
}

func (r *repl) listSuggestions() {
	pending := r.console.Detection().Suggestions()
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "no pending suggestions")
		return
	}
	for i, s := range pending {
		fmt.Fprintf(r.out, "%d. %s %s (%d%%) id=%s\n", i+1, s.Kind, s.Caption, s.Confidence, s.ID)
	}
}

// resolveSuggestion accepts a 1-based list position or an id.
func (r *repl) resolveSuggestion(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("usage: accept|reject <n|id>")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		pending := r.console.Detection().Suggestions()
		if n < 1 || n > len(pending) {
			return "", fmt.Errorf("no suggestion %d", n)
		}
		return pending[n-1].ID, nil
	}
	return arg, nil
}
