// Package hotmap provides the match table that binds combos to handlers.
package hotmap

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/ouka-input/ouka/keys"
)

// Handler is an externally owned callable bound to a combo. The table never
// inspects a handler; it only hands it back on a match.
type Handler interface {
	Invoke(ctx context.Context) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context) error

// Invoke calls f(ctx).
func (f HandlerFunc) Invoke(ctx context.Context) error { return f(ctx) }

type entry struct {
	combo   keys.Combo
	handler Handler
}

// HotMap maps canonical combos to handlers.
//
// A HotMap belongs to one session. The lock only guards against handlers
// that remap keys from the dispatch goroutine while the session is reading.
type HotMap struct {
	mu       sync.RWMutex
	entries  map[string]entry
	codeSets map[string]int
}

// New returns an empty table.
func New() *HotMap {
	return &HotMap{
		entries:  make(map[string]entry),
		codeSets: make(map[string]int),
	}
}

// Insert binds combo to h, replacing any handler already bound to it.
func (m *HotMap) Insert(combo keys.Combo, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := combo.Key()
	if _, exists := m.entries[k]; !exists {
		m.codeSets[combo.CodeSetKey()]++
	}
	m.entries[k] = entry{combo: combo, handler: h}
}

// Lookup returns the handler bound to exactly combo.
func (m *HotMap) Lookup(combo keys.Combo) (Handler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[combo.Key()]
	return e.handler, ok
}

// IsCodeSetRegistered reports whether some registered combo involves
// exactly the same keys as combo, whatever their states.
func (m *HotMap) IsCodeSetRegistered(combo keys.Combo) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.codeSets[combo.CodeSetKey()] > 0
}

// Len returns the number of registered combos.
func (m *HotMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Combos returns every registered combo in a stable order.
func (m *HotMap) Combos() []keys.Combo {
	m.mu.RLock()
	out := make([]keys.Combo, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.combo)
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b keys.Combo) int { return strings.Compare(a.Key(), b.Key()) })
	return out
}
