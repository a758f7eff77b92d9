package runtime

import (
	"fmt"

	"sl/internal/token"
)

// RuntimeError aborts the current run. Tok locates the fault.
type RuntimeError struct {
	Tok token.Token
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d:%d: runtime error: %s", e.Tok.Pos.Line, e.Tok.Pos.Column, e.Msg)
}

func NewError(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Tok: tok, Msg: fmt.Sprintf(format, args...)}
}
