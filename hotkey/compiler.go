package hotkey

import (
	"maps"
	"strings"

	"github.com/ouka-input/ouka/keys"
)

// Compiler turns patterns into combos using a name table and value rules.
//
// A Compiler is not safe for concurrent use.
type Compiler struct {
	codes Codes
	rules map[string]Rule
}

// NewCompiler returns a compiler with an empty name table and no rules.
func NewCompiler() *Compiler {
	return &Compiler{
		codes: NewCodes(),
		rules: make(map[string]Rule),
	}
}

// SetKeycodes merges tables into the name table. Later tables win.
func (c *Compiler) SetKeycodes(tables ...Codes) {
	c.codes.Merge(tables...)
}

// Codes returns a copy of the current name table.
func (c *Compiler) Codes() Codes { return c.codes.Clone() }

// SetKeyValues merges value rules, keyed by expression, into the rule set.
// Nothing is merged when any rule fails to compile.
func (c *Compiler) SetKeyValues(tables ...map[string]string) error {
	pending := make(map[string]Rule)
	for _, t := range tables {
		for expr, ident := range t {
			r, err := NewRule(expr, ident)
			if err != nil {
				return err
			}
			pending[expr] = r
		}
	}
	maps.Copy(c.rules, pending)
	return nil
}

// Compile parses pattern and returns its canonical combo.
func (c *Compiler) Compile(pattern string) (keys.Combo, error) {
	hk, err := c.Parse(pattern)
	if err != nil {
		return keys.Combo{}, err
	}
	return hk.Combo(), nil
}

// Parse parses pattern. The first error found is returned as a
// *CompileError.
func (c *Compiler) Parse(pattern string) (Hotkey, error) {
	text := strings.TrimSpace(pattern)
	if text == "" {
		return Hotkey{}, errEmpty(pattern)
	}

	state := keys.Down
	switch text[0] {
	case '^':
		state, text = keys.Up, text[1:]
	case '_':
		state, text = keys.Held, text[1:]
	case '(':
		st, rest, ok := parseTimeout(text)
		if !ok {
			token := text
			if end := strings.IndexByte(text, ')'); end >= 0 {
				token = text[:end+1]
			}
			return Hotkey{}, errTimeout(pattern, token)
		}
		state, text = st, rest
	}

	modRun, keyRun := splitModifiers(text)
	if strings.TrimSpace(keyRun) == "" {
		return Hotkey{}, errEmpty(pattern)
	}

	hk := Hotkey{State: state}
	if modRun != "" {
		for _, tok := range strings.Split(modRun, "-") {
			code, ok := c.codes.mod(tok)
			if !ok {
				return Hotkey{}, errUnknown(pattern, strings.TrimSpace(tok))
			}
			if m, ok := keys.ModifierFor(code); ok {
				hk.Mods |= m
			} else {
				hk.Held = append(hk.Held, code)
			}
		}
	}

	for _, tok := range splitKeys(keyRun) {
		if strings.TrimSpace(tok) == "" {
			return Hotkey{}, errEmptyIn(pattern, strings.TrimSpace(keyRun))
		}
		ev, err := c.resolveKey(pattern, tok, state)
		if err != nil {
			return Hotkey{}, err
		}
		hk.Primary = append(hk.Primary, ev)
	}
	return hk, nil
}

func (c *Compiler) resolveKey(pattern, tok string, state keys.State) (keys.Event, error) {
	name := strings.TrimSpace(tok)
	token := name
	matched := 0
	for _, r := range c.rules {
		payload, ok := r.match(token)
		if !ok {
			continue
		}
		matched++
		if matched > 1 {
			return keys.Event{}, errAmbiguous(pattern, token)
		}
		name, state = payload, r.State
	}

	code, ok := c.codes.key(name)
	if !ok {
		return keys.Event{}, errUnknown(pattern, normalizeName(name))
	}
	return keys.Event{Code: code, State: state}, nil
}

// splitModifiers cuts text at the last '-' that is not its final byte, so
// a trailing "--" names the minus key. A single trailing '-' leaves the
// key run empty.
func splitModifiers(text string) (modRun, keyRun string) {
	if len(text) > 1 && strings.HasSuffix(text, "-") && !strings.HasSuffix(text, "--") {
		return text[:len(text)-1], ""
	}
	if len(text) < 2 {
		return "", text
	}
	i := strings.LastIndexByte(text[:len(text)-1], '-')
	if i < 0 {
		return "", text
	}
	return text[:i], text[i+1:]
}

func splitKeys(keyRun string) []string {
	if strings.TrimSpace(keyRun) == "+" {
		return []string{"+"}
	}
	return strings.Split(keyRun, "+")
}
