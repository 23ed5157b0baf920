package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/query"
)

// PagesOptions holds flags for the pages command.
type PagesOptions struct {
	Target   string
	Owner    string
	PageSize int
}

// PagesResult is the output of the pages command.
type PagesResult struct {
	Table       string `json:"table"`
	Records     int    `json:"records"`
	Pages       int    `json:"pages"`
	PageSize    int    `json:"page_size"`
	CurrentPage int    `json:"current_page"`
}

// NewPagesCommand creates the pages command.
func NewPagesCommand(rootOpts *RootOptions) *cobra.Command {
	popts := &PagesOptions{}
	cmd := &cobra.Command{
		Use:   "pages <table>",
		Short: "Split a table into pages and locate a row",
		Long: `Count the rows of a table, derive the number of pages and, with
--target, the page holding that row. A target that is not in the table
reports page 1.

Example:
  accstore pages tab_b02 --target 0190c3e2-... --page-size 500`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPages(rootOpts, popts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&popts.Target, "target", "", "identity of the row to locate")
	cmd.Flags().StringVar(&popts.Owner, "owner", "", "restrict register records to this owner")
	cmd.Flags().IntVar(&popts.PageSize, "page-size", 0, "page size (default: config page_size)")
	return cmd
}

func runPages(opts *RootOptions, popts *PagesOptions, table string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	def, ok := s.meta.Table(table)
	if !ok {
		return s.formatter.Fail(ErrCodeInvalidArgument, "invalid table", fmt.Errorf("%w: %s", backend.ErrUnknownTable, table))
	}
	target := ident.Empty
	if popts.Target != "" {
		if target, err = ident.Parse(popts.Target); err != nil {
			return s.formatter.Fail(ErrCodeInvalidArgument, "invalid --target", err)
		}
	}
	if popts.Owner != "" && def.Kind != metadata.KindRegisterRecords {
		return s.formatter.Fail(ErrCodeInvalidArgument, "--owner applies to register records only", nil)
	}

	ctx := cmd.Context()
	size := s.pageSize(popts.PageSize)
	var split backend.PageSplit
	if def.Kind == metadata.KindRegisterRecords {
		set, setErr := s.recordsSet(table, popts.Owner, nil)
		if setErr != nil {
			return setErr
		}
		split, err = set.SplitSelectToPages(ctx, target, size)
	} else {
		split, err = s.kernel.Backend.SplitSelectToPages(ctx, backend.NoTx, *query.New(table), target, size)
	}
	if err != nil {
		return s.formatter.Fail(ErrCodeDatabase, "failed to split pages", err)
	}

	res := PagesResult{
		Table:       table,
		Records:     split.Records,
		Pages:       split.Pages,
		PageSize:    split.PageSize,
		CurrentPage: split.PageOrFirst(),
	}
	return s.formatter.Render(res, func(w io.Writer) {
		fmt.Fprintf(w, "records\t%d\n", res.Records)
		fmt.Fprintf(w, "pages\t%d\n", res.Pages)
		fmt.Fprintf(w, "page size\t%d\n", res.PageSize)
		fmt.Fprintf(w, "current page\t%d\n", res.CurrentPage)
	})
}
