package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/ouka-input/ouka/device"
	"github.com/ouka-input/ouka/internal/log"
	th "github.com/ouka-input/ouka/internal/testing"
	"github.com/ouka-input/ouka/keys"
	"github.com/ouka-input/ouka/session"
)

func quietLogger() *slog.Logger {
	return slog.New(log.NewHandler(slog.LevelError, &bytes.Buffer{}, &bytes.Buffer{}))
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "init.lua")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Script":    "script",
		"QueueSize": "queue_size",
		"EventFile": "event_file",
		"HTTPAddr":  "http_addr",
	}
	for in, want := range tests {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

func TestBuildMapFromStruct(t *testing.T) {
	m := buildMapFromStruct(reflect.TypeOf(Run{}))
	assert.Equal(t, map[string]any{"queue_size": int64(64)}, m, "empty paths are left out")

	cli := buildMapFromStruct(reflect.TypeOf(CLI{}))
	assert.Equal(t, map[string]any{"level": "info"}, cli["log"])
	assert.NotContains(t, cli, "run", "commands are not config keys")
}

func TestConfigInit(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "sub", "ouka.yaml")
	c := ConfigInit{Command: "run", Format: "yaml", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, 64, got["queue_size"])
	assert.Equal(t, "info", got["log"].(map[string]any)["level"])

	assert.Error(t, c.Run(), "existing file without --force")
	c.Force = true
	assert.NoError(t, c.Run())

	bad := ConfigInit{Command: "run", Format: "ini", Output: dest}
	assert.Error(t, bad.Run())
}

func TestConfigTemplateLoadsBack(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "ouka.json")
	require.NoError(t, (&ConfigInit{Command: "run", Format: "json", Output: dest}).Run())

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	m["queue_size"] = 8
	m["log"].(map[string]any)["level"] = "debug"
	raw, err = json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dest, raw, 0o644))

	var cli CLI
	parser, err := kong.New(&cli, kong.Configuration(kong.JSON, dest), kong.Exit(func(int) {}))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, 8, cli.Run.QueueSize)
	assert.Equal(t, "debug", cli.Log.Level)
}

func TestDevicesPrint(t *testing.T) {
	all := device.Group([]device.Node{
		{Path: "/dev/input/event3", Name: "Acme Keyboard", ID: evdev.InputID{Vendor: 0x1234, Product: 1}, Keys: true},
		{Path: "/dev/input/event4", Name: "Acme Mouse", ID: evdev.InputID{Vendor: 0x1234, Product: 2}},
		{Path: "/dev/input/event1", Name: "Power Button", Keys: true},
	})

	var buf bytes.Buffer
	require.NoError(t, (&Devices{}).print(&buf, all, 0))
	assert.Equal(t,
		"0000:0000\t/dev/input/event1\tPower Button\n"+
			"1234:0001\t/dev/input/event3\tAcme Keyboard\n",
		buf.String())

	buf.Reset()
	require.NoError(t, (&Devices{Filter: "ACME", All: true}).print(&buf, all, 0))
	assert.Contains(t, buf.String(), "Acme Mouse")
	assert.NotContains(t, buf.String(), "Power Button")

	buf.Reset()
	require.NoError(t, (&Devices{}).print(&buf, all, 120))
	assert.Contains(t, buf.String(), "PATH")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a long...", truncate("a long device name", 9))
	assert.Equal(t, "tiny", truncate("tiny", 2))
}

func TestCheck(t *testing.T) {
	ok := writeScript(t, `
		local kbd = ouka.getDeviceByName("kbd")
		kbd:map("ctrl-a", function() end)
		kbd:listen()
	`)
	assert.NoError(t, (&Check{Script: ok}).Run(quietLogger()))

	inert := writeScript(t, `
		local kbd = ouka.getDeviceByName("kbd")
		kbd:map("(200)a", function() end)
	`)
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	assert.NoError(t, (&Check{Script: inert}).Run(logger), "timeouts warn without failing")
	assert.Contains(t, out.String(), "Hotkeys with a timeout never fire")

	bad := writeScript(t, `
		local kbd = ouka.getDeviceByName("kbd")
		kbd:map("ctrl-nothing", function() end)
	`)
	err := (&Check{Script: bad}).Run(quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 hotkey pattern(s) rejected")
}

func TestRunUntilKill(t *testing.T) {
	src := th.NewFakeSource("Acme Keyboard", th.Step{
		Held:  []keys.Code{keys.Code(evdev.KEY_B)},
		Batch: th.KeyBatch(keys.Event{Code: keys.Code(evdev.KEY_B), State: keys.Down}),
	})
	opener := &th.FakeOpener{Sources: map[string][]*th.FakeSource{"acme": {src}}}
	path := writeScript(t, `
		local kbd = ouka.getDeviceByName("acme")
		kbd:grab()
		kbd:map("ctrl-a", function() end)
		kbd:listen()
		ouka.kill()
	`)

	done := make(chan error, 1)
	go func() {
		done <- (&Run{Script: path, QueueSize: 4}).Start(context.Background(), quietLogger(), nil, opener)
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}
	assert.True(t, src.Closed())
	require.Len(t, opener.Sinks(), 1)
	assert.True(t, opener.Sinks()[0].Closed())
}

func TestRunRequiresListen(t *testing.T) {
	src := th.NewFakeSource("Acme Keyboard")
	opener := &th.FakeOpener{Sources: map[string][]*th.FakeSource{"acme": {src}}}
	path := writeScript(t, `ouka.getDeviceByName("acme")`)

	err := (&Run{Script: path}).Start(context.Background(), quietLogger(), nil, opener)
	assert.ErrorIs(t, err, session.ErrNoSessions)
	assert.True(t, src.Closed(), "unused devices are released")
}

func TestRunScriptError(t *testing.T) {
	opener := &th.FakeOpener{}
	path := writeScript(t, `ouka.getDeviceByName("missing")`)
	err := (&Run{Script: path}).Start(context.Background(), quietLogger(), nil, opener)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching device")
}
