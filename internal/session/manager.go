package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/interviewace/api/internal/interview"
)

// Manager owns the live sessions, keyed by id.
type Manager struct {
	selector *interview.Selector
	sched    Scheduler
	logger   *slog.Logger
	now      func() time.Time

	hookMu  sync.RWMutex
	onEvent func(Event)

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(selector *interview.Selector, sched Scheduler, logger *slog.Logger) *Manager {
	return &Manager{
		selector: selector,
		sched:    sched,
		logger:   logger,
		now:      time.Now,
		onEvent:  func(Event) {},
		sessions: make(map[string]*Session),
	}
}

// OnEvent sets the hook that receives events from every session.
func (m *Manager) OnEvent(fn func(Event)) {
	m.hookMu.Lock()
	m.onEvent = fn
	m.hookMu.Unlock()
}

func (m *Manager) dispatch(ev Event) {
	m.hookMu.RLock()
	fn := m.onEvent
	m.hookMu.RUnlock()

	if ev.Type == EventCompleted {
		m.logger.Info("session completed", "session", ev.SessionID, "total", ev.Snapshot.Total)
	}
	fn(ev)
}

// Create selects questions for cfg and starts a new session.
func (m *Manager) Create(cfg interview.Config) *Session {
	return m.CreateWith(cfg, m.selector.Select(cfg))
}

// CreateWith starts a session over a fixed question list.
func (m *Manager) CreateWith(cfg interview.Config, questions []interview.Question) *Session {
	s := New(uuid.NewString(), cfg, questions, m.sched, WithEvents(m.dispatch), WithClock(m.now))

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.logger.Info("session created",
		"session", s.ID(),
		"field", cfg.Field,
		"experience", cfg.Experience,
		"company_type", cfg.CompanyType,
		"requested", cfg.QuestionCount,
		"selected", len(questions),
	)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// End closes a session and forgets it.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	s.Close()
	m.logger.Info("session ended", "session", id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Idle returns the ids of sessions with no user activity since cutoff.
func (m *Manager) Idle(cutoff time.Time) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close ends every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
