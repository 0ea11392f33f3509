package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/spiritcast/internal/content"
)

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse Bible versions, verses and songs",
	}

	versions := &cobra.Command{
		Use:           "versions",
		Short:         "List Bible versions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load catalog", err).WithErrCode(CodeCatalog)
			}
			list := cat.Versions()
			def := cat.DefaultVersion()
			return rootOpts.formatter(cmd).SuccessText(list, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, v := range list {
					mark := " "
					if v.ID == def.ID {
						mark = "*"
					}
					fmt.Fprintf(tw, "%s %s\t%s\t%s\n", mark, v.ID, v.Abbreviation, v.Name)
				}
				return tw.Flush()
			})
		},
	}

	var version string
	verses := &cobra.Command{
		Use:           "verses [query]",
		Short:         "Search verses by reference or text",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load catalog", err).WithErrCode(CodeCatalog)
			}
			if version == "" {
				version = rootOpts.Version
			}
			results := cat.SearchVerses(strings.Join(args, " "), version)
			if results == nil {
				results = []content.VerseLookupResult{}
			}
			return rootOpts.formatter(cmd).SuccessText(verseViews(results), func(w io.Writer) error {
				for _, r := range results {
					fmt.Fprintf(w, "%s (%s)\n  %s\n", r.Reference, r.Version.Abbreviation, r.Body)
				}
				return nil
			})
		},
	}
	verses.Flags().StringVar(&version, "version", "", "Bible version id (default --bible-version)")

	songs := &cobra.Command{
		Use:           "songs [query]",
		Short:         "Search songs by title or artist",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load catalog", err).WithErrCode(CodeCatalog)
			}
			results := cat.SearchSongs(strings.Join(args, " "))
			return rootOpts.formatter(cmd).SuccessText(songViews(results), func(w io.Writer) error {
				for _, s := range results {
					fmt.Fprintf(w, "%s  %s", s.ID, s.Title)
					if s.Artist != "" {
						fmt.Fprintf(w, " (%s)", s.Artist)
					}
					fmt.Fprintln(w)
					for i, sec := range s.Sections {
						fmt.Fprintf(w, "  %d. %s\n", i+1, sec.Label())
					}
				}
				return nil
			})
		},
	}

	cmd.AddCommand(versions, verses, songs)
	return cmd
}

type verseView struct {
	Reference string `json:"reference"`
	Version   string `json:"version"`
	Text      string `json:"text"`
}

func verseViews(in []content.VerseLookupResult) []verseView {
	out := make([]verseView, len(in))
	for i, r := range in {
		out[i] = verseView{Reference: r.Reference, Version: r.Version.ID, Text: r.Body}
	}
	return out
}

type songView struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist,omitempty"`
	Sections []string `json:"sections"`
}

func songViews(in []content.Song) []songView {
	out := make([]songView, len(in))
	for i, s := range in {
		labels := make([]string, len(s.Sections))
		for j, sec := range s.Sections {
			labels[j] = sec.Label()
		}
		out[i] = songView{ID: s.ID, Title: s.Title, Artist: s.Artist, Sections: labels}
	}
	return out
}
