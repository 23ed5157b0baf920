package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and every declared table",
		Long: `Open the database, creating it if it doesn't exist, and create every
table the metadata declares. Columns added to the metadata since the last
run are added to existing tables; nothing is dropped.

Example:
  accstore init --db ./books.db --metadata ./metadata`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	tables, err := s.store.Tables(cmd.Context())
	if err != nil {
		return s.formatter.Fail(ErrCodeDatabase, "failed to list tables", err)
	}
	s.logger.Info("database ready", "path", s.cfg.Database, "tables", len(tables))

	return s.formatter.Render(tables, func(w io.Writer) {
		fmt.Fprintf(w, "Database %s ready\n", s.cfg.Database)
		for _, t := range tables {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, t.Kind, t.Entity, strings.Join(t.Columns, ","))
		}
	})
}
