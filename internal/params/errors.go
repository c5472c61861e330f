package params

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed params document. Nothing from the document
// is applied when it is returned.
type ParseError struct {
	Path   string
	Reason string
	Fields []FieldError
	Cause  error
}

// FieldError is one schema violation inside a params document.
type FieldError struct {
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
		}
		return fmt.Sprintf("invalid params document %s: %s", e.Path, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("invalid params document %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FilesystemError reports a failure to create a directory or write a file.
type FilesystemError struct {
	Op    string
	Path  string
	Cause error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *FilesystemError) Unwrap() error {
	return e.Cause
}
