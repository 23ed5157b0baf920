package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tarachom/accountingstore/internal/constants"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/query"
	"github.com/tarachom/accountingstore/internal/register"
)

// RowsResult is the output of the tablepart and register commands.
type RowsResult struct {
	Table string    `json:"table"`
	Page  int       `json:"page,omitempty"`
	Rows  []RowView `json:"rows"`
}

func renderRows(f *OutputFormatter, res RowsResult) error {
	return f.Render(res, func(w io.Writer) {
		writeRows(w, res.Rows)
		fmt.Fprintf(w, "(%d row(s))\n", len(res.Rows))
	})
}

// NewTablePartCommand creates the tablepart command.
func NewTablePartCommand(rootOpts *RootOptions) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "tablepart <table>",
		Short: "List the rows of a constants table part",
		Long: `Read every row of a constants table part ordered by identity.

Example:
  accstore tablepart tab_a01 --field code --field rate`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTablePart(rootOpts, args[0], fields, cmd)
		},
	}
	cmd.Flags().StringSliceVar(&fields, "field", nil, "fields to project (default: all)")
	return cmd
}

func runTablePart(opts *RootOptions, table string, fields []string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	part, err := constants.NewTablePart(s.kernel, table, fields...)
	if err != nil {
		return s.formatter.Fail(ErrCodeInvalidArgument, "invalid table part", err)
	}
	if err := part.Read(cmd.Context()); err != nil {
		return s.formatter.Fail(ErrCodeDatabase, "failed to read table part", err)
	}
	return renderRows(s.formatter, RowsResult{
		Table: table,
		Rows:  newRowViews(part.Records, part.JoinValue),
	})
}

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	Owner    string
	Page     int
	PageSize int
	Fields   []string
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	ropts := &RegisterOptions{}
	cmd := &cobra.Command{
		Use:   "register <table>",
		Short: "List the records of an information register",
		Long: `Read the records of an information register, optionally restricted to
one owner and one page.

Example:
  accstore register tab_b02 --owner 0190c3e2-... --page 2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(rootOpts, ropts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&ropts.Owner, "owner", "", "restrict to records of this owner")
	cmd.Flags().IntVar(&ropts.Page, "page", 0, "read one page, counted from 1 (default: all records)")
	cmd.Flags().IntVar(&ropts.PageSize, "page-size", 0, "page size (default: config page_size)")
	cmd.Flags().StringSliceVar(&ropts.Fields, "field", nil, "fields to project (default: all)")
	return cmd
}

func runRegister(opts *RootOptions, ropts *RegisterOptions, table string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	set, err := s.recordsSet(table, ropts.Owner, ropts.Fields)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ropts.Page > 0 {
		err = set.ReadPage(ctx, ropts.Page, s.pageSize(ropts.PageSize))
	} else {
		err = set.Read(ctx)
	}
	if err != nil {
		return s.formatter.Fail(ErrCodeDatabase, "failed to read register", err)
	}
	return renderRows(s.formatter, RowsResult{
		Table: table,
		Page:  ropts.Page,
		Rows:  newRowViews(set.Records, set.JoinValue),
	})
}

// recordsSet binds a record set, filtered by owner when one is given.
func (s *session) recordsSet(table, owner string, fields []string) (*register.RecordsSet, error) {
	set, err := register.NewRecordsSet(s.kernel, table, fields...)
	if err != nil {
		return nil, s.formatter.Fail(ErrCodeInvalidArgument, "invalid register", err)
	}
	if owner != "" {
		id, err := ident.Parse(owner)
		if err != nil {
			return nil, s.formatter.Fail(ErrCodeInvalidArgument, "invalid --owner", err)
		}
		set.Query().Filter("owner", query.EQ, field.ID(id))
	}
	return set, nil
}

func (s *session) pageSize(flag int) int {
	if flag > 0 {
		return flag
	}
	return s.cfg.PageSize
}
