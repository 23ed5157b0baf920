package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tarachom/accountingstore/internal/metadata"
)

// ValidationError is one metadata problem.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Tables    int               `json:"tables,omitempty"`
	Documents int               `json:"documents,omitempty"`
	Journals  int               `json:"journals,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <metadata-dir>",
		Short: "Compile metadata and report every error",
		Long: `Compile the CUE metadata of a directory without touching a database.

All problems are reported at once, each with its source position.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	formatter.VerboseLog("Compiling metadata in %s", dir)

	meta, err := metadata.Load(dir)
	if err != nil {
		errs := validationErrors(err)
		if len(errs) == 0 {
			return formatter.Fail(ErrCodeNotFound, "failed to load metadata", err)
		}
		return outputValidationErrors(formatter, errs)
	}

	result := ValidationResult{
		Valid:     true,
		Tables:    len(meta.Tables()),
		Documents: len(meta.Documents()),
		Journals:  len(meta.Journals()),
	}
	return formatter.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Metadata valid: %d table(s), %d document(s), %d journal(s)\n",
			result.Tables, result.Documents, result.Journals)
	})
}

// validationErrors converts compile errors. It returns nil when err holds
// no *metadata.CompileError, meaning the directory could not be read.
func validationErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range metadata.Errors(err) {
		var cErr *metadata.CompileError
		if !errors.As(e, &cErr) {
			continue
		}
		v := ValidationError{Field: cErr.Field, Message: cErr.Message}
		if cErr.Pos.IsValid() {
			v.File = cErr.Pos.Filename()
			v.Line = cErr.Pos.Line()
		}
		out = append(out, v)
	}
	return out
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeMetadata, errs[0].Message, ValidationResult{Valid: false, Errors: errs})
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", e.File, e.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Field, e.Message)
	}
	return exitErr
}
