// Package ui is the terminal surface of the feedme commands.
package ui

import (
	"encoding/json"
	"io"
)

// Severity is the visual weight of a piece of inline text.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarn
	SeverityError
	SeverityCritical
)

// StyledText pairs a plain string with a Severity. It marshals to JSON as
// the plain string.
type StyledText struct {
	Text     string
	Severity Severity
}

func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

func Styled(text string, severity Severity) StyledText {
	return StyledText{Text: text, Severity: severity}
}

// UI is implemented by TerminalUI for real use and by RecordingUI in tests.
type UI interface {
	// Style colours t for embedding in a larger line. Without colours the
	// plain text is returned.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	// Critical is for data the user must review before signing, and for
	// proof of what was just submitted.
	Critical(format string, args ...any)

	// Section writes a separator centred around title.
	Section(title string)
	// KeyValue renders label/value rows with the values aligned.
	KeyValue(rows [][2]string)
	// Table renders a bordered table. No header row is drawn when headers
	// is empty.
	Table(headers []string, rows [][]string)

	// Spinner shows msg until the returned stop function is called.
	Spinner(msg string) func()

	// Ask reads a line, repeating until validate accepts it. A nil
	// validate accepts anything.
	Ask(validate func(string) error) string
	Confirm(prompt string, defaultYes bool) bool

	// Indent returns a child UI one level deeper sharing the same input and
	// output.
	Indent() UI
	// Writer indents everything written to it at the current level.
	Writer() io.Writer
}
