package device_test

import (
	"errors"
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ouka-input/ouka/device"
	th "github.com/ouka-input/ouka/internal/testing"
	"github.com/ouka-input/ouka/keys"
)

func TestTapShape(t *testing.T) {
	sink := &th.FakeSink{}
	v := device.NewVirtualWithSink("ouka-test", sink)

	combo := keys.NewCombo(
		keys.Event{Code: keys.Code(evdev.KEY_A), State: keys.Down},
		keys.Event{Code: keys.Code(evdev.KEY_LEFTCTRL), State: keys.Held},
	)
	require.NoError(t, v.Tap(combo))

	batches := sink.Batches()
	require.Len(t, batches, 2)
	syn := evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}
	assert.Equal(t, []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: evdev.KEY_LEFTCTRL, Value: 1},
		{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 1},
		syn,
	}, batches[0])
	assert.Equal(t, []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: evdev.KEY_LEFTCTRL, Value: 0},
		{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 0},
		syn,
	}, batches[1])
}

func TestTapEmptyCombo(t *testing.T) {
	sink := &th.FakeSink{}
	v := device.NewVirtualWithSink("ouka-test", sink)
	require.NoError(t, v.Tap(keys.NewCombo()))
	assert.Empty(t, sink.Batches())
}

func TestEmitVerbatim(t *testing.T) {
	sink := &th.FakeSink{}
	v := device.NewVirtualWithSink("ouka-test", sink)
	batch := []evdev.InputEvent{
		{Type: evdev.EV_MSC, Code: evdev.MSC_SCAN, Value: 0x70004},
		{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 2},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT},
	}
	require.NoError(t, v.Emit(batch))
	require.Len(t, sink.Batches(), 1)
	assert.Equal(t, batch, sink.Batches()[0])
}

func TestEmitFailure(t *testing.T) {
	boom := errors.New("boom")
	v := device.NewVirtualWithSink("ouka-test", &th.FakeSink{Err: boom})
	err := v.Emit(th.KeyBatch(keys.Event{Code: keys.Code(evdev.KEY_A), State: keys.Down}))
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrEmitFailed)
	assert.ErrorIs(t, err, boom)

	var de *device.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ouka-test", de.Device)
}

func TestCloseClosesSink(t *testing.T) {
	sink := &th.FakeSink{}
	v := device.NewVirtualWithSink("ouka-test", sink)
	require.NoError(t, v.Close())
	assert.True(t, sink.Closed())
}

func TestNewVirtualDeclaresEveryEventType(t *testing.T) {
	var gotName string
	var gotCaps map[evdev.EvType][]evdev.EvCode
	sink := &th.FakeSink{}
	restore := device.SetSinkFactory(func(name string, _ device.Source, caps map[evdev.EvType][]evdev.EvCode) (device.Sink, error) {
		gotName, gotCaps = name, caps
		return sink, nil
	})
	defer restore()

	src := th.NewFakeSource("Acme Receiver")
	v, err := device.NewVirtual(src)
	require.NoError(t, err)
	assert.Equal(t, "ouka-Acme Receiver", gotName)
	assert.Equal(t, "ouka-Acme Receiver", v.Name())

	for typ, codes := range src.Capabilities() {
		if typ == evdev.EV_SYN || typ == evdev.EV_REP {
			assert.NotContains(t, gotCaps, typ)
			continue
		}
		assert.ElementsMatch(t, codes, gotCaps[typ], "type %s", evdev.TypeName(typ))
	}

	// Pointer motion from a grabbed receiver must survive forwarding.
	motion := []evdev.InputEvent{
		{Type: evdev.EV_REL, Code: evdev.REL_X, Value: 5},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT},
	}
	require.NoError(t, v.Emit(motion))
	assert.Equal(t, [][]evdev.InputEvent{motion}, sink.Batches())
}

func TestNewVirtualFactoryFailure(t *testing.T) {
	restore := device.SetSinkFactory(func(string, device.Source, map[evdev.EvType][]evdev.EvCode) (device.Sink, error) {
		return nil, errors.New("no uinput")
	})
	defer restore()

	_, err := device.NewVirtual(th.NewFakeSource("kbd"))
	assert.ErrorIs(t, err, device.ErrOpenFailed)
}
