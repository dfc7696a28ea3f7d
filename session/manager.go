package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrNoSessions is returned by Run when nothing was added.
var ErrNoSessions = errors.New("no device is listening")

// Manager owns every session of the process and runs each on its own
// goroutine. A failing session stops alone; its siblings keep running.
type Manager struct {
	logger *slog.Logger

	mu       sync.Mutex
	sessions []*Session
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	active   int
	idle     chan struct{}
	errs     []error
}

// NewManager returns an empty manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Add registers s. If the manager is already running, s starts listening
// immediately. Adding the same session twice is a no-op.
func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, have := range m.sessions {
		if have == s {
			return
		}
	}
	m.sessions = append(m.sessions, s)
	if m.running {
		m.launch(s)
	}
}

// Sessions returns the registered sessions in insertion order.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Run starts every registered session and blocks until all of them have
// stopped, either because ctx was cancelled, Stop was called, or their
// devices failed. Session failures are joined into the returned error.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("manager already running")
	}
	if len(m.sessions) == 0 {
		m.mu.Unlock()
		return ErrNoSessions
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.running = true
	m.idle = make(chan struct{})
	m.errs = nil
	for _, s := range m.sessions {
		if s.Phase() == Configured {
			m.launch(s)
		}
	}
	if m.active == 0 {
		m.running = false
		close(m.idle)
	}
	idle := m.idle
	m.mu.Unlock()

	m.logger.Info("sessions started", "count", len(m.Sessions()))
	<-idle

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancel()
	return errors.Join(m.errs...)
}

// Stop cancels every running session. Run returns once they are released.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}

// launch must be called with m.mu held.
func (m *Manager) launch(s *Session) {
	m.active++
	ctx := m.ctx
	go func() {
		err := s.Listen(ctx)
		m.mu.Lock()
		defer m.mu.Unlock()
		if err != nil {
			m.errs = append(m.errs, err)
		}
		m.active--
		if m.active == 0 {
			m.running = false
			close(m.idle)
		}
	}()
}
