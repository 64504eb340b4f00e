package diag

import (
	"errors"
	"fmt"

	"annogen/internal/source"
)

// Error is a fatal diagnostic travelling up an error return chain.
// Every failure that must stop a run is one of these.
type Error struct {
	Diag Diagnostic
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Diag.Primary, e.Diag.Code.ID(), e.Diag.Message)
}

// Errorf builds a fatal error at pos.
func Errorf(code Code, pos source.Pos, format string, args ...any) *Error {
	return &Error{Diag: NewError(code, pos, fmt.Sprintf(format, args...))}
}

// Wrap turns an arbitrary error into a fatal diagnostic unless it already is one.
func Wrap(code Code, pos source.Pos, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Diag: NewError(code, pos, err.Error())}
}

// AsDiagnostic extracts the diagnostic carried by err, if any.
func AsDiagnostic(err error) (Diagnostic, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Diag, true
	}
	return Diagnostic{}, false
}
