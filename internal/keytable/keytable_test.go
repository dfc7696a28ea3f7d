package keytable_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ouka-input/ouka/hotkey"
	"github.com/ouka-input/ouka/internal/keytable"
	"github.com/ouka-input/ouka/keys"
)

func TestDefault(t *testing.T) {
	c := keytable.Default()
	assert.Equal(t, keys.Code(evdev.KEY_A), c.Keys["a"])
	assert.Equal(t, keys.Code(evdev.KEY_LEFTCTRL), c.Keys["leftctrl"])
	assert.Equal(t, keys.Code(evdev.KEY_F1), c.Keys["f1"])
	assert.Equal(t, keys.Code(evdev.BTN_LEFT), c.Keys["btn_left"])
	assert.Equal(t, keys.Code(evdev.KEY_RIGHTALT), c.Mods["ralt"])

	comp := hotkey.NewCompiler()
	comp.SetKeycodes(c)
	got, err := comp.Compile("ctrl-shift-a")
	require.NoError(t, err)
	assert.True(t, got.Equal(keys.NewCombo(
		keys.Event{Code: keys.Code(evdev.KEY_LEFTCTRL), State: keys.Held},
		keys.Event{Code: keys.Code(evdev.KEY_LEFTSHIFT), State: keys.Held},
		keys.Event{Code: keys.Code(evdev.KEY_A), State: keys.Down},
	)))
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{format: "json", data: `{"hen": 92, "muhen": "KEY_MUHENKAN", "mods": {"hyper": "capslock"}}`},
		{format: "yaml", data: "hen: 92\nmuhen: KEY_MUHENKAN\nmods:\n  hyper: capslock\n"},
		{format: "yml", data: "hen: 0x5c\nmuhen: muhenkan\nmods:\n  hyper: 58\n"},
		{format: "toml", data: "hen = 92\nmuhen = \"KEY_MUHENKAN\"\n\n[mods]\nhyper = \"capslock\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c, err := keytable.Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, keys.Code(evdev.KEY_HENKAN), c.Keys["hen"])
			assert.Equal(t, keys.Code(evdev.KEY_MUHENKAN), c.Keys["muhen"])
			assert.Equal(t, keys.Code(evdev.KEY_CAPSLOCK), c.Mods["hyper"])
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
	}{
		{name: "unknown name", format: "json", data: `{"x": "KEY_NOPE"}`},
		{name: "negative", format: "json", data: `{"x": -1}`},
		{name: "too large", format: "json", data: `{"x": 70000}`},
		{name: "fraction", format: "json", data: `{"x": 1.5}`},
		{name: "list value", format: "yaml", data: "x: [1, 2]\n"},
		{name: "bad mod", format: "yaml", data: "mods:\n  hyper: nothing\n"},
		{name: "format", format: "ini", data: "x=1"},
		{name: "syntax", format: "toml", data: "x = = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keytable.Parse([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kana: katakanahiragana\n"), 0o644))

	c, err := keytable.Load(path)
	require.NoError(t, err)
	assert.Equal(t, keys.Code(evdev.KEY_KATAKANAHIRAGANA), c.Keys["kana"])

	_, err = keytable.Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
