package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tarachom/accountingstore/internal/journal"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	From   string
	To     string
	Type   string
	Posted string
}

// DocumentView is the output shape of one journal entry.
type DocumentView struct {
	Type          string     `json:"type"`
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Number        string     `json:"number"`
	Date          time.Time  `json:"date"`
	DeletionLabel bool       `json:"deletion_label"`
	Spend         bool       `json:"spend"`
	SpendDate     *time.Time `json:"spend_date,omitempty"`
	Presentation  string     `json:"presentation"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	jopts := &JournalOptions{}
	cmd := &cobra.Command{
		Use:   "journal <name>",
		Short: "List the documents of a journal within a date range",
		Long: `List document headers of every document type in a journal, dated
within [--from, --to] inclusive, ordered by date.

Dates are YYYY-MM-DD or RFC 3339. A bare --to date covers the whole day.

Example:
  accstore journal Full --from 2024-01-01 --to 2024-01-31 --posted true`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(rootOpts, jopts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&jopts.From, "from", "", "start of the period (required)")
	cmd.Flags().StringVar(&jopts.To, "to", "", "end of the period (required)")
	cmd.Flags().StringVar(&jopts.Type, "type", "", "keep one document type")
	cmd.Flags().StringVar(&jopts.Posted, "posted", "", "keep posted (true) or unposted (false) documents")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runJournal(opts *RootOptions, jopts *JournalOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	start, err := parseDate(jopts.From, false)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidArgument, "invalid --from", err)
	}
	end, err := parseDate(jopts.To, true)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidArgument, "invalid --to", err)
	}
	var selectOpts []journal.Option
	if jopts.Type != "" {
		selectOpts = append(selectOpts, journal.WithType(jopts.Type))
	}
	if jopts.Posted != "" {
		posted, err := strconv.ParseBool(jopts.Posted)
		if err != nil {
			return formatter.Fail(ErrCodeInvalidArgument, "invalid --posted", err)
		}
		selectOpts = append(selectOpts, journal.WithPosted(posted))
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cursor, err := journal.NewSelect(s.kernel, name)
	if err != nil {
		return s.formatter.Fail(ErrCodeInvalidArgument, "invalid journal", err)
	}
	ctx := cmd.Context()
	if _, err := cursor.Select(ctx, start, end, selectOpts...); err != nil {
		return s.formatter.Fail(ErrCodeDatabase, "failed to select journal", err)
	}

	views := make([]DocumentView, 0, cursor.Count())
	for d := range cursor.All() {
		text, err := s.store.ResolvePresentation(ctx, d.Reference())
		if err != nil {
			return s.formatter.Fail(ErrCodeDatabase, "failed to resolve presentation", err)
		}
		v := DocumentView{
			Type:          d.TypeDocument,
			ID:            d.ID.String(),
			Name:          d.Name,
			Number:        d.Number,
			Date:          d.Date,
			DeletionLabel: d.DeletionLabel,
			Spend:         d.Spend,
			Presentation:  text,
		}
		if !d.SpendDate.IsZero() {
			spendDate := d.SpendDate
			v.SpendDate = &spendDate
		}
		views = append(views, v)
	}

	return s.formatter.Render(views, func(w io.Writer) {
		for _, v := range views {
			mark := " "
			if v.Spend {
				mark = "✓"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, v.Date.Format(time.DateTime), v.Type, v.Number, v.Presentation)
		}
		fmt.Fprintf(w, "(%d document(s))\n", len(views))
	})
}

// parseDate accepts RFC 3339 or a bare date. A bare end date is moved to
// the last instant of its day.
func parseDate(s string, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	if end {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return t, nil
}
