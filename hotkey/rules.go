package hotkey

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ouka-input/ouka/keys"
)

// Rule assigns a state to every primary key token its expression matches.
//
// When the expression has a capture group, the key name is the text of the
// first group and the rest of the token is the state marker, so the rule
// `^hold_(.+)$ = held` turns "hold_a" into key "a" with state Held. Without
// a group the whole token is the key name.
type Rule struct {
	Expr  *regexp.Regexp
	State keys.State
}

// NewRule compiles expr and parses the state identifier.
func NewRule(expr, ident string) (Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("key value rule %q: %w", expr, err)
	}
	st, err := ParseState(ident)
	if err != nil {
		return Rule{}, fmt.Errorf("key value rule %q: %w", expr, err)
	}
	return Rule{Expr: re, State: st}, nil
}

// match reports whether the rule applies to token and returns the key name
// it carries.
func (r Rule) match(token string) (string, bool) {
	m := r.Expr.FindStringSubmatch(token)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], true
	}
	return token, true
}

// ParseState parses a state identifier: up, down, held, their prefix forms
// "^" and "_", or a timeout written "(N)" or "timeout(N)".
func ParseState(ident string) (keys.State, error) {
	s := strings.ToLower(strings.TrimSpace(ident))
	switch s {
	case "up", "^":
		return keys.Up, nil
	case "down", "":
		return keys.Down, nil
	case "held", "hold", "_":
		return keys.Held, nil
	}
	s = strings.TrimPrefix(s, "timeout")
	if strings.HasPrefix(s, "(") {
		st, rest, ok := parseTimeout(s)
		if !ok || rest != "" {
			return keys.State{}, fmt.Errorf("state %q: %w", ident, ErrInvalidTimeout)
		}
		return st, nil
	}
	return keys.State{}, fmt.Errorf("unknown state identifier %q", ident)
}

// parseTimeout parses a leading "(N)". ok is false when the closing
// parenthesis is missing or N is not a non-negative integer.
func parseTimeout(s string) (st keys.State, rest string, ok bool) {
	end := strings.IndexByte(s, ')')
	if end < 0 {
		return keys.State{}, s, false
	}
	ms, err := strconv.ParseUint(s[1:end], 10, 64)
	if err != nil {
		return keys.State{}, s, false
	}
	return keys.Timeout(ms), s[end+1:], true
}
