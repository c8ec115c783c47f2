package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes the type of error encountered during profile
// parsing or validation.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // JSON syntax error
	ErrorTypeStructural ErrorType = "structural" // Missing or invalid fields
	ErrorTypeSemantic   ErrorType = "semantic"   // Target/type coherence violation
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Error represents a profile error with category, rule path, and an
// optional suggested fix.
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Error message
	Path       string    // JSON path of the offending rule (e.g. "mappings[2]")
	File       string    // Profile file, if known
	Suggestion string    // Suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))

	if e.Path != "" {
		sb.WriteString(fmt.Sprintf("\n  --> %s", e.location()))
	} else if e.File != "" {
		sb.WriteString(fmt.Sprintf("\n  --> %s", e.File))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

func (e *Error) location() string {
	if e.File == "" {
		return e.Path
	}
	return e.File + ": " + e.Path
}

// ErrorList accumulates errors encountered during parsing/validation so
// that all problems in a profile surface together.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message, path string) {
	el.Add(&Error{Type: errType, Message: message, Path: path})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message, path, suggestion string) {
	el.Add(&Error{Type: errType, Message: message, Path: path, Suggestion: suggestion})
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d error(s) in profile:\n", el.Count()))
	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("\nerror %d:\n%s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ErrOrNil returns the list as an error when it is non-empty, nil
// otherwise. Callers use this to return the accumulated result.
func (el *ErrorList) ErrOrNil() error {
	if el.HasErrors() {
		return el
	}
	return nil
}
