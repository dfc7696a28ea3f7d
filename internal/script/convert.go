package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/ouka-input/ouka/hotkey"
	"github.com/ouka-input/ouka/internal/keytable"
)

// tableToMap converts a Lua table with string keys. Nested tables become
// nested maps and numbers become float64.
func tableToMap(t *lua.LTable) map[string]any {
	return tableToMapVisited(t, map[*lua.LTable]bool{})
}

func tableToMapVisited(t *lua.LTable, visited map[*lua.LTable]bool) map[string]any {
	visited[t] = true
	out := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		key := k.String()
		switch lv := v.(type) {
		case lua.LNumber:
			out[key] = float64(lv)
		case lua.LString:
			out[key] = string(lv)
		case lua.LBool:
			out[key] = bool(lv)
		case *lua.LTable:
			if !visited[lv] {
				out[key] = tableToMapVisited(lv, visited)
			}
		}
	})
	return out
}

func tableToStrings(t *lua.LTable) map[string]string {
	out := make(map[string]string)
	t.ForEach(func(k, v lua.LValue) {
		out[k.String()] = v.String()
	})
	return out
}

func codesToTable(L *lua.LState, c hotkey.Codes) *lua.LTable {
	t := L.CreateTable(0, len(c.Keys)+1)
	for name, code := range c.Keys {
		t.RawSetString(name, lua.LNumber(code))
	}
	mods := L.CreateTable(0, len(c.Mods))
	for name, code := range c.Mods {
		mods.RawSetString(name, lua.LNumber(code))
	}
	t.RawSetString(keytable.ModsKey, mods)
	return t
}
