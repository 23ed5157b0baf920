package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tarachom/accountingstore/internal/fixture"
)

// SeedResult reports the identities a seed file wrote.
type SeedResult struct {
	Documents   []string `json:"documents"`
	Directories []string `json:"directories"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Write the documents and directory items of a YAML file",
		Long: `Apply a YAML fixture file in one transaction. Field values are parsed
according to the kinds the metadata declares.

Example:
  accstore seed --db ./books.db --metadata ./metadata ./seed.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := fixture.Load(path)
	if err != nil {
		return s.formatter.Fail(ErrCodeFixture, "failed to load fixture", err)
	}
	res, err := fixture.Apply(cmd.Context(), s.store, s.meta, f,
		fixture.WithGenerator(s.kernel.IDs),
		fixture.WithLogger(s.logger))
	if err != nil {
		return s.formatter.Fail(ErrCodeFixture, "failed to apply fixture", err)
	}

	out := SeedResult{Documents: []string{}, Directories: []string{}}
	for _, id := range res.Documents {
		out.Documents = append(out.Documents, id.String())
	}
	for _, id := range res.Directories {
		out.Directories = append(out.Directories, id.String())
	}
	return s.formatter.Render(out, func(w io.Writer) {
		fmt.Fprintf(w, "Seeded %d document(s) and %d directory item(s)\n",
			len(out.Documents), len(out.Directories))
	})
}
