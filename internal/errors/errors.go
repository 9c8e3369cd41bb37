package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrTrailingData    = errors.New("multiple values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrDisallowedTag   = errors.New("disallowed YAML tag")
	ErrNodeLimit       = errors.New("document exceeds the node limit")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrParse             = errors.New("parse error")
	ErrStructure         = errors.New("structure error")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput  ErrorType = "input"
	ErrorTypeOutput ErrorType = "output"
	ErrorTypeConfig ErrorType = "config"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to reading input
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to writing output
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// ParseError reports input that is malformed or not allowed for its declared format.
type ParseError struct {
	// Format is the declared input format (json, yaml, xml)
	Format string
	// Path is the source file, when known
	Path string
	// Line and Column locate the failure (0 if unknown)
	Line   int
	Column int
	// Offset is the byte offset of the failure (0 if unknown)
	Offset int64
	// Detail describes the failure
	Detail string
	// Cause is the underlying error, if any
	Cause error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Format != "" {
		b.WriteString(e.Format)
		b.WriteString(" ")
	}
	b.WriteString("parse error")
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	switch {
	case e.Line > 0 && e.Column > 0:
		fmt.Fprintf(&b, " at line %d, column %d", e.Line, e.Column)
	case e.Line > 0:
		fmt.Fprintf(&b, " at line %d", e.Line)
	case e.Offset > 0:
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// StructureError reports a value that the target format cannot represent.
type StructureError struct {
	// Format is the target format
	Format string
	// Path locates the offending value, e.g. $.items[0]
	Path string
	// Reason describes why it cannot be represented
	Reason string
	// Source is the input file the value came from, when known
	Source string
}

func (e *StructureError) Error() string {
	msg := "structure error"
	if e.Format != "" {
		msg = e.Format + " " + msg
	}
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *StructureError) Is(target error) bool {
	return target == ErrStructure
}

// UnsupportedFormatError reports a format name or file extension that is not one of
// json, yaml or xml.
type UnsupportedFormatError struct {
	// Name is the rejected format name or extension
	Name string
	// Path is the file the name was inferred from, if any
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	name := e.Name
	if name == "" {
		name = "(none)"
	}
	msg := fmt.Sprintf("unsupported format %q", name)
	if e.Path != "" {
		msg += " for " + e.Path
	}
	return msg + ": expected json, yaml or xml"
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// UserFriendlyError returns a one-line message suitable for a terminal
func UserFriendlyError(err error) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return "Error: " + parseErr.Error()
	}
	var structErr *StructureError
	if errors.As(err, &structErr) {
		return "Error: " + structErr.Error()
	}
	var formatErr *UnsupportedFormatError
	if errors.As(err, &formatErr) {
		return "Error: " + formatErr.Error()
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, appErr.Err)
		}
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", msg)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", msg)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", msg)
		default:
			return fmt.Sprintf("Error: %s", msg)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a JSON, YAML or XML document."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
