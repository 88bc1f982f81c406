package fsm

import (
	"errors"
	"fmt"
)

// DefinitionError reports one structural problem found while loading or
// validating a machine definition.
type DefinitionError struct {
	// Code identifies the problem category.
	Code string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Definition error codes.
const (
	ErrCodeLoadFailed          = "E200" // file could not be read or decoded
	ErrCodeUnknownFormat       = "E201" // unsupported file extension
	ErrCodeNoStates            = "E202" // definition declares no state
	ErrCodeMissingInitial      = "E203" // no initial state, or not a state
	ErrCodeDuplicateState      = "E204" // state declared twice
	ErrCodeUnknownState        = "E205" // transition endpoint is not a state
	ErrCodeUndeclaredInput     = "E206" // transition input not in alphabet
	ErrCodeUndeclaredOutput    = "E207" // transition output not in alphabet
	ErrCodeDuplicateTransition = "E208" // two transitions share from and input
	ErrCodeMalformedCell       = "E209" // matrix cell is not input[/output]
	ErrCodeEmptyName           = "E210" // empty state or lexeme name
	ErrCodeUnknownFinal        = "E211" // final state is not a state
	ErrCodeUndeclaredEntry     = "E212" // entry output not in alphabet
)

// Codes returns the codes of every DefinitionError joined in err, in order.
func Codes(err error) []string {
	if err == nil {
		return nil
	}
	var res []string
	var de *DefinitionError
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range u.Unwrap() {
			res = append(res, Codes(e)...)
		}
		return res
	}
	if errors.As(err, &de) {
		res = append(res, de.Code)
	}
	return res
}

// Problems returns every DefinitionError joined in err, in order. Errors of
// other types are wrapped with ErrCodeLoadFailed
func Problems(err error) []*DefinitionError {
	if err == nil {
		return nil
	}
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		var res []*DefinitionError
		for _, e := range u.Unwrap() {
			res = append(res, Problems(e)...)
		}
		return res
	}
	var de *DefinitionError
	if errors.As(err, &de) {
		return []*DefinitionError{de}
	}
	return []*DefinitionError{{Code: ErrCodeLoadFailed, Message: err.Error()}}
}
