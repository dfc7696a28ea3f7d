package hotmap_test

import (
	"context"
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ouka-input/ouka/hotkey"
	"github.com/ouka-input/ouka/hotmap"
	"github.com/ouka-input/ouka/keys"
)

const (
	kA     = keys.Code(evdev.KEY_A)
	kB     = keys.Code(evdev.KEY_B)
	kCtrl  = keys.Code(evdev.KEY_LEFTCTRL)
	kShift = keys.Code(evdev.KEY_LEFTSHIFT)
)

type named string

func (n named) Invoke(context.Context) error { return nil }

func TestInsertLastWriteWins(t *testing.T) {
	m := hotmap.New()
	c := keys.NewCombo(keys.Event{Code: kCtrl, State: keys.Held}, keys.Event{Code: kA, State: keys.Down})
	same := keys.NewCombo(keys.Event{Code: kA, State: keys.Down}, keys.Event{Code: kCtrl, State: keys.Held})

	m.Insert(c, named("first"))
	m.Insert(same, named("second"))

	assert.Equal(t, 1, m.Len())
	h, ok := m.Lookup(c)
	require.True(t, ok)
	assert.Equal(t, named("second"), h)
}

func TestLookupExactOnly(t *testing.T) {
	m := hotmap.New()
	m.Insert(keys.NewCombo(keys.Event{Code: kA, State: keys.Held}), named("held-a"))

	_, ok := m.Lookup(keys.NewCombo(keys.Event{Code: kA, State: keys.Down}))
	assert.False(t, ok)
	_, ok = m.Lookup(keys.NewCombo(
		keys.Event{Code: kA, State: keys.Held},
		keys.Event{Code: kB, State: keys.Held},
	))
	assert.False(t, ok)
	h, ok := m.Lookup(keys.NewCombo(keys.Event{Code: kA, State: keys.Held}))
	require.True(t, ok)
	assert.Equal(t, named("held-a"), h)
}

func TestIsCodeSetRegistered(t *testing.T) {
	m := hotmap.New()
	m.Insert(keys.NewCombo(
		keys.Event{Code: kCtrl, State: keys.Held},
		keys.Event{Code: kA, State: keys.Down},
	), named("ctrl-a"))

	tests := []struct {
		name  string
		combo keys.Combo
		want  bool
	}{
		{
			name: "same codes, other states",
			combo: keys.NewCombo(
				keys.Event{Code: kCtrl, State: keys.Down},
				keys.Event{Code: kA, State: keys.Held},
			),
			want: true,
		},
		{
			name:  "subset",
			combo: keys.NewCombo(keys.Event{Code: kCtrl, State: keys.Down}),
			want:  false,
		},
		{
			name: "superset",
			combo: keys.NewCombo(
				keys.Event{Code: kCtrl, State: keys.Held},
				keys.Event{Code: kShift, State: keys.Held},
				keys.Event{Code: kA, State: keys.Down},
			),
			want: false,
		},
		{
			name:  "empty",
			combo: keys.NewCombo(),
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsCodeSetRegistered(tt.combo))
		})
	}
}

func TestCompileThenLookup(t *testing.T) {
	c := hotkey.NewCompiler()
	c.SetKeycodes(hotkey.Codes{
		Keys: map[string]keys.Code{"a": kA},
		Mods: map[string]keys.Code{"ctrl": kCtrl, "shift": kShift},
	})
	combo, err := c.Compile("ctrl-shift-a")
	require.NoError(t, err)

	m := hotmap.New()
	m.Insert(combo, named("h"))

	observed := keys.NewCombo(
		keys.Event{Code: kCtrl, State: keys.Held},
		keys.Event{Code: kShift, State: keys.Held},
		keys.Event{Code: kA, State: keys.Down},
	)
	h, ok := m.Lookup(observed)
	require.True(t, ok)
	assert.Equal(t, named("h"), h)
}

func TestCombosStableOrder(t *testing.T) {
	m := hotmap.New()
	b := keys.NewCombo(keys.Event{Code: kB, State: keys.Down})
	a := keys.NewCombo(keys.Event{Code: kA, State: keys.Down})
	m.Insert(b, named("b"))
	m.Insert(a, named("a"))

	got := m.Combos()
	require.Len(t, got, 2)
	assert.True(t, a.Equal(got[0]))
	assert.True(t, b.Equal(got[1]))
}

func TestHandlerFunc(t *testing.T) {
	called := false
	var h hotmap.Handler = hotmap.HandlerFunc(func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, h.Invoke(context.Background()))
	assert.True(t, called)
}
