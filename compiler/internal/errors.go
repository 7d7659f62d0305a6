package internal

import (
	"errors"
	"fmt"
)

// SemanticError is a language-level error found by the checker. Compilation stops at the first one.
type SemanticError struct {
	Line int
	Msg  string
}

func (err *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at line %d: %s", err.Line, err.Msg)
}

// InternalError reports a malformed tree or a pipeline misuse, never a problem in the DJ program itself.
type InternalError struct {
	Msg string
}

func (err *InternalError) Error() string {
	return "internal error: " + err.Msg
}

func makeSemanticError(line int, format string, msg ...interface{}) error {
	return &SemanticError{Line: line, Msg: fmt.Sprintf(format, msg...)}
}

func makeInternalError(format string, msg ...interface{}) error {
	return &InternalError{Msg: fmt.Sprintf(format, msg...)}
}

func IsSemanticError(err error) bool {
	var semanticErr *SemanticError
	return errors.As(err, &semanticErr)
}

func IsInternalError(err error) bool {
	var internalErr *InternalError
	return errors.As(err, &internalErr)
}
