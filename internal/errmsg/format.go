// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Index operations
	OpIndexBuild Op = "build track index"
	OpIndexCount Op = "count indexed tracks"

	// Read operations
	OpSearch     Op = "search tracks"
	OpShuffle    Op = "build shuffled playlist"
	OpAlbumLoad  Op = "load album"
	OpTrackLoad  Op = "load track"
	OpGenresLoad Op = "list genres"
	OpYearsLoad  Op = "list years"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpStateOpen  Op = "open index state"
	OpInitialize Op = "initialize library"
	OpShutdown   Op = "shut down library"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Error is an error annotated with the operation that failed. Its message
// is the FormatWith rendering.
type Error struct {
	Op      Op
	Context string
	Err     error
}

// Wrap annotates err with op and an optional context. A nil err stays nil.
func Wrap(op Op, context string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Context: context, Err: err}
}

func (e *Error) Error() string {
	return FormatWith(e.Op, e.Context, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
