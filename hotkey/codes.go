package hotkey

import (
	"maps"
	"strings"

	"github.com/ouka-input/ouka/keys"
)

// Codes resolves key names to key codes. Names are case-insensitive.
//
// Modifier names are looked up in Mods first and fall back to Keys, so a
// table only needs a separate modifier namespace when the names differ.
type Codes struct {
	Keys map[string]keys.Code
	Mods map[string]keys.Code
}

// NewCodes returns an empty table.
func NewCodes() Codes {
	return Codes{
		Keys: make(map[string]keys.Code),
		Mods: make(map[string]keys.Code),
	}
}

// Merge copies every entry of the given tables into c. Later tables win
// on a name collision.
func (c *Codes) Merge(tables ...Codes) {
	if c.Keys == nil {
		c.Keys = make(map[string]keys.Code)
	}
	if c.Mods == nil {
		c.Mods = make(map[string]keys.Code)
	}
	for _, t := range tables {
		for name, code := range t.Keys {
			c.Keys[normalizeName(name)] = code
		}
		for name, code := range t.Mods {
			c.Mods[normalizeName(name)] = code
		}
	}
}

// Clone returns a deep copy of c.
func (c Codes) Clone() Codes {
	return Codes{Keys: maps.Clone(c.Keys), Mods: maps.Clone(c.Mods)}
}

// Len returns the number of names in both namespaces.
func (c Codes) Len() int { return len(c.Keys) + len(c.Mods) }

func (c Codes) key(name string) (keys.Code, bool) {
	code, ok := c.Keys[normalizeName(name)]
	return code, ok
}

func (c Codes) mod(name string) (keys.Code, bool) {
	if code, ok := c.Mods[normalizeName(name)]; ok {
		return code, true
	}
	return c.key(name)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
