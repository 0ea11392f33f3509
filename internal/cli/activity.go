package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/spiritcast/internal/content"
)

// NewActivityCommand creates the activity command.
func NewActivityCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show journaled detection samples",
		Long: `Print the utterances the detection engine sampled, newest first, as
journaled in the database by console and listen sessions.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return NewExitError(ExitCommandError, "--limit must be positive")
			}
			ctx := commandContext(cmd)
			a, err := openApp(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			recs, err := a.store.ReadActivity(ctx, limit)
			if err != nil {
				return WrapExitError(ExitFailure, "read activity", err).WithErrCode(CodeStore)
			}
			return rootOpts.formatter(cmd).SuccessText(activityViews(recs), func(w io.Writer) error {
				for _, r := range recs {
					writeActivity(w, r)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to show")

	return cmd
}

type activityView struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	ObservedAt time.Time `json:"observedAt"`
	Matched    bool      `json:"matched"`
}

func activityViews(in []content.ActivityRecord) []activityView {
	out := make([]activityView, len(in))
	for i, r := range in {
		out[i] = activityView{ID: r.ID, Text: r.SampledText, ObservedAt: r.ObservedAt, Matched: r.Matched}
	}
	return out
}

func writeActivity(w io.Writer, r content.ActivityRecord) {
	mark := "-"
	if r.Matched {
		mark = "+"
	}
	fmt.Fprintf(w, "%s %s %q\n", r.ObservedAt.Local().Format("15:04:05"), mark, r.SampledText)
}
