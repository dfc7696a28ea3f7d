package hotkey

import (
	"errors"
	"fmt"
)

// Compile error kinds. Match them with errors.Is.
var (
	ErrEmptyPattern   = errors.New("empty pattern")
	ErrUnknownKey     = errors.New("unknown key")
	ErrAmbiguousMatch = errors.New("ambiguous key value match")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// CompileError is the single error type returned by the compiler. Token
// holds the offending piece of the pattern, when there is one.
type CompileError struct {
	Pattern string
	Token   string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("pattern %q: %v %q", e.Pattern, e.Err, e.Token)
}

func (e *CompileError) Unwrap() error { return e.Err }

func errEmpty(pattern string) *CompileError {
	return &CompileError{Pattern: pattern, Err: ErrEmptyPattern}
}

// errEmptyIn reports an empty member inside the key run, such as "a+".
func errEmptyIn(pattern, keyRun string) *CompileError {
	return &CompileError{Pattern: pattern, Token: keyRun, Err: ErrEmptyPattern}
}

func errUnknown(pattern, token string) *CompileError {
	return &CompileError{Pattern: pattern, Token: token, Err: ErrUnknownKey}
}

func errAmbiguous(pattern, token string) *CompileError {
	return &CompileError{Pattern: pattern, Token: token, Err: ErrAmbiguousMatch}
}

func errTimeout(pattern, token string) *CompileError {
	return &CompileError{Pattern: pattern, Token: token, Err: ErrInvalidTimeout}
}
