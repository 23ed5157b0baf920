package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failure or rejected write
	ExitCommandError = 2 // Command error (bad arguments, missing files, database errors)
)

// Error codes reported in the JSON envelope.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeConfig          = "E010" // Config file error
	ErrCodeMetadata        = "E101" // Metadata does not compile
	ErrCodeDatabase        = "E201" // Database open or query failure
	ErrCodeInvalidArgument = "E301" // Bad flag or argument value
	ErrCodeFixture         = "E401" // Fixture file error
	ErrCodeInvalidState    = "E501" // Write to a row that no longer exists
	ErrCodeWriterBusy      = "E502" // Another transaction holds the writer
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E101", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Render outputs data in the JSON envelope, or calls text with a tab
// writer for the text format.
func (f *OutputFormatter) Render(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return f.Success(data)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
// Stale-row writes and busy-writer rejections exit with ExitFailure;
// everything else with ExitCommandError.
func (f *OutputFormatter) Fail(code, message string, err error) error {
	exit := ExitCommandError
	switch {
	case backend.IsInvalidState(err):
		code = ErrCodeInvalidState
		exit = ExitFailure
	case backend.IsWriterBusy(err):
		code = ErrCodeWriterBusy
		exit = ExitFailure
	}
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, text, nil)
	return WrapExitError(exit, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// RowView is the output shape of one stored row.
type RowView struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
	// Display holds resolved text of reference fields.
	Display map[string]string `json:"display,omitempty"`

	names []string
}

func newRowViews(set field.RowSet, join field.JoinMap) []RowView {
	views := make([]RowView, 0, len(set))
	for _, row := range set {
		v := RowView{
			ID:     row.ID.String(),
			Fields: make(map[string]string, row.Len()),
			names:  row.Names(),
		}
		for _, p := range row.Pairs() {
			v.Fields[p.Name] = field.Format(p.Value)
			if text, ok := join.Get(row.ID, p.Name); ok {
				if v.Display == nil {
					v.Display = make(map[string]string)
				}
				v.Display[p.Name] = text
			}
		}
		views = append(views, v)
	}
	return views
}

// writeRows prints one line per row: identity, then name=value pairs in
// projection order with display text in brackets.
func writeRows(w io.Writer, views []RowView) {
	for _, v := range views {
		parts := make([]string, 0, len(v.names))
		for _, name := range v.names {
			s := name + "=" + v.Fields[name]
			if text, ok := v.Display[name]; ok && text != "" {
				s += " [" + text + "]"
			}
			parts = append(parts, s)
		}
		fmt.Fprintf(w, "%s\t%s\n", v.ID, strings.Join(parts, "\t"))
	}
}
