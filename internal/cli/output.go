package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Exit codes of the madang command.
const (
	ExitSuccess      = 0 // Success
	ExitFailure      = 1 // Rejected or failed transaction
	ExitCommandError = 2 // Bad arguments, configuration or storage setup
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Errors raised by cobra itself,
// such as unknown flags, are command errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{FormatText, FormatJSON}

type printer struct {
	format string
	w      io.Writer
}

func (p printer) isJSON() bool { return p.format == FormatJSON }

// json writes one JSON document followed by a newline.
func (p printer) json(encode func(e *jx.Encoder)) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)
	if _, err := p.w.Write(append(e.Bytes(), '\n')); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}

// table writes tab separated rows as aligned columns.
func (p printer) table(header string, rows func(w io.Writer)) error {
	tw := tabwriter.NewWriter(p.w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}

func (p printer) line(format string, args ...any) error {
	if _, err := fmt.Fprintf(p.w, format+"\n", args...); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}
