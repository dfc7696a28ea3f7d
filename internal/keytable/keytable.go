// Package keytable builds the name to key code tables the pattern compiler
// resolves names with: the built-in evdev names and user table files.
package keytable

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/holoplot/go-evdev"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/ouka-input/ouka/hotkey"
	"github.com/ouka-input/ouka/keys"
)

// ModsKey names the nested table holding the modifier namespace.
const ModsKey = "mods"

var defaultMods = map[string]evdev.EvCode{
	"ctrl":   evdev.KEY_LEFTCTRL,
	"shift":  evdev.KEY_LEFTSHIFT,
	"alt":    evdev.KEY_LEFTALT,
	"meta":   evdev.KEY_LEFTMETA,
	"super":  evdev.KEY_LEFTMETA,
	"lctrl":  evdev.KEY_LEFTCTRL,
	"lshift": evdev.KEY_LEFTSHIFT,
	"lalt":   evdev.KEY_LEFTALT,
	"lmeta":  evdev.KEY_LEFTMETA,
	"rctrl":  evdev.KEY_RIGHTCTRL,
	"rshift": evdev.KEY_RIGHTSHIFT,
	"ralt":   evdev.KEY_RIGHTALT,
	"rmeta":  evdev.KEY_RIGHTMETA,
	"altgr":  evdev.KEY_RIGHTALT,
}

// Default returns every kernel key name, lower-cased without its KEY_
// prefix ("a", "leftctrl", "f1"). Button names keep their BTN_ prefix.
// The modifier namespace holds the usual short names ("ctrl", "ralt").
func Default() hotkey.Codes {
	c := hotkey.NewCodes()
	for name, code := range evdev.KEYFromString {
		switch {
		case strings.HasPrefix(name, "KEY_"):
			c.Keys[strings.ToLower(strings.TrimPrefix(name, "KEY_"))] = keys.Code(code)
		case strings.HasPrefix(name, "BTN_"):
			c.Keys[strings.ToLower(name)] = keys.Code(code)
		}
	}
	for name, code := range defaultMods {
		c.Mods[name] = keys.Code(code)
	}
	return c
}

// Load reads a table file. The format follows the extension: .json, .yaml,
// .yml or .toml.
func Load(path string) (hotkey.Codes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return hotkey.Codes{}, err
	}
	c, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return hotkey.Codes{}, fmt.Errorf("keycode table %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a table in the given format.
func Parse(data []byte, format string) (hotkey.Codes, error) {
	var raw map[string]any
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return hotkey.Codes{}, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return hotkey.Codes{}, err
		}
	case "toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return hotkey.Codes{}, err
		}
		raw = tree.ToMap()
	default:
		return hotkey.Codes{}, fmt.Errorf("unsupported format %q", format)
	}
	return FromMap(raw)
}

// FromMap converts a decoded table. Values are key codes, either numbers or
// kernel key names such as "KEY_A" or "a". A nested "mods" map fills the
// modifier namespace.
func FromMap(raw map[string]any) (hotkey.Codes, error) {
	c := hotkey.NewCodes()
	for name, v := range raw {
		if strings.EqualFold(name, ModsKey) {
			if sub, ok := v.(map[string]any); ok {
				for mod, mv := range sub {
					code, err := Resolve(mv)
					if err != nil {
						return hotkey.Codes{}, fmt.Errorf("%s.%s: %w", ModsKey, mod, err)
					}
					c.Mods[strings.ToLower(mod)] = code
				}
				continue
			}
		}
		code, err := Resolve(v)
		if err != nil {
			return hotkey.Codes{}, fmt.Errorf("%s: %w", name, err)
		}
		c.Keys[strings.ToLower(name)] = code
	}
	return c, nil
}

// Resolve turns a table value into a key code.
func Resolve(v any) (keys.Code, error) {
	switch n := v.(type) {
	case int:
		return codeFromInt(int64(n))
	case int64:
		return codeFromInt(n)
	case uint64:
		if n > math.MaxUint16 {
			return 0, fmt.Errorf("key code %d out of range", n)
		}
		return keys.Code(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("key code %v is not an integer", n)
		}
		return codeFromInt(int64(n))
	case string:
		return codeFromName(n)
	default:
		return 0, fmt.Errorf("unsupported key code value %v (%T)", v, v)
	}
}

func codeFromInt(n int64) (keys.Code, error) {
	if n < 0 || n > math.MaxUint16 {
		return 0, fmt.Errorf("key code %d out of range", n)
	}
	return keys.Code(n), nil
}

func codeFromName(s string) (keys.Code, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return codeFromInt(n)
	}
	upper := strings.ToUpper(s)
	for _, name := range []string{upper, "KEY_" + upper} {
		if code, ok := evdev.KEYFromString[name]; ok {
			return keys.Code(code), nil
		}
	}
	return 0, fmt.Errorf("unknown key name %q", s)
}
