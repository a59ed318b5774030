// Package session runs practice interviews: the per-question countdown,
// navigation between questions, and the end-of-interview summary.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/interviewace/api/internal/interview"
)

// TimeLimit is the number of seconds allowed per question.
const TimeLimit = 180

// TickInterval is the countdown resolution.
const TickInterval = time.Second

var (
	ErrNotFound      = errors.New("session not found")
	ErrFirstQuestion = errors.New("already at the first question")
	ErrNotActive     = errors.New("session is not answering")
	ErrNotReviewing  = errors.New("session is not complete")
)

type State string

const (
	StateLoading   State = "loading"
	StateAnswering State = "answering"
	StateReviewing State = "reviewing"
	StateEnded     State = "ended"
)

type EventType string

const (
	EventTick      EventType = "tick"
	EventQuestion  EventType = "question"
	EventPaused    EventType = "paused"
	EventResumed   EventType = "resumed"
	EventCompleted EventType = "completed"
	EventEnded     EventType = "ended"
)

// Event reports a state change together with the snapshot taken right
// after it.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// Session is one practice interview. All methods are safe for concurrent
// use. Events are delivered to the hook after the session lock is released,
// so a hook may call back into the session.
type Session struct {
	id        string
	cfg       interview.Config
	questions []interview.Question
	sched     Scheduler
	emit      func(Event)
	now       func() time.Time
	createdAt time.Time

	mu        sync.Mutex
	state     State
	index     int
	answers   []string
	draft     string
	remaining int
	paused    bool
	handle    Handle
	gen       uint64
	touched   time.Time
}

type Option func(*Session)

// WithEvents sets the hook that receives every event.
func WithEvents(fn func(Event)) Option {
	return func(s *Session) { s.emit = fn }
}

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New builds a session over an already selected question list. A non-empty
// list starts answering the first question immediately; an empty list
// leaves the session loading with no timer.
func New(id string, cfg interview.Config, questions []interview.Question, sched Scheduler, opts ...Option) *Session {
	s := &Session{
		id:        id,
		cfg:       cfg,
		questions: questions,
		sched:     sched,
		emit:      func(Event) {},
		now:       time.Now,
		state:     StateLoading,
		answers:   make([]string, len(questions)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.createdAt = s.now()
	s.touched = s.createdAt

	if len(questions) > 0 {
		s.state = StateAnswering
		s.remaining = TimeLimit
		s.startTimerLocked()
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Config() interview.Config { return s.cfg }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActive is the time of the last call that changed the session on
// behalf of the user. Timer ticks do not count.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetDraft replaces the answer buffer for the current question.
func (s *Session) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnswering {
		return ErrNotActive
	}
	s.draft = text
	s.touched = s.now()
	return nil
}

// Next saves the draft and moves forward. On the last question it
// completes the interview.
func (s *Session) Next() error {
	s.mu.Lock()
	if s.state != StateAnswering {
		s.mu.Unlock()
		return ErrNotActive
	}
	s.touched = s.now()
	ev := s.nextLocked()
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Previous saves the draft and moves back one question.
func (s *Session) Previous() error {
	s.mu.Lock()
	if s.state != StateAnswering {
		s.mu.Unlock()
		return ErrNotActive
	}
	if s.index == 0 {
		s.mu.Unlock()
		return ErrFirstQuestion
	}
	s.touched = s.now()
	s.answers[s.index] = s.draft
	s.index--
	s.enterQuestionLocked()
	ev := s.eventLocked(EventQuestion)
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// TogglePause pauses a running countdown or resumes a paused one.
func (s *Session) TogglePause() error {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if paused {
		return s.Resume()
	}
	return s.Pause()
}

// Pause stops the countdown. Index and answers are unchanged. It is a
// no-op outside Answering or when already paused.
func (s *Session) Pause() error {
	s.mu.Lock()
	if s.state != StateAnswering || s.paused {
		s.mu.Unlock()
		return nil
	}
	s.touched = s.now()
	s.paused = true
	s.stopTimerLocked()
	ev := s.eventLocked(EventPaused)
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Resume restarts the countdown from the remaining time.
func (s *Session) Resume() error {
	s.mu.Lock()
	if s.state != StateAnswering || !s.paused {
		s.mu.Unlock()
		return nil
	}
	s.touched = s.now()
	s.paused = false
	s.startTimerLocked()
	ev := s.eventLocked(EventResumed)
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Close terminates the interview early. The timer is cancelled before the
// state is dropped. Closing twice is harmless.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.state = StateEnded
	ev := s.eventLocked(EventEnded)
	s.mu.Unlock()

	s.emit(ev)
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.handle == nil || s.state != StateAnswering || s.paused {
		s.mu.Unlock()
		return
	}
	s.remaining--
	evs := []Event{s.eventLocked(EventTick)}
	if s.remaining <= 0 {
		s.remaining = 0
		evs = append(evs, s.nextLocked())
	}
	s.mu.Unlock()

	for _, ev := range evs {
		s.emit(ev)
	}
}

func (s *Session) nextLocked() Event {
	s.answers[s.index] = s.draft
	if s.index == len(s.questions)-1 {
		s.stopTimerLocked()
		s.state = StateReviewing
		s.paused = false
		return s.eventLocked(EventCompleted)
	}
	s.index++
	s.enterQuestionLocked()
	return s.eventLocked(EventQuestion)
}

// enterQuestionLocked restores the stored answer of the current question
// and restarts its countdown.
func (s *Session) enterQuestionLocked() {
	s.draft = s.answers[s.index]
	s.remaining = TimeLimit
	s.stopTimerLocked()
	if !s.paused {
		s.startTimerLocked()
	}
}

func (s *Session) startTimerLocked() {
	s.stopTimerLocked()
	s.gen++
	gen := s.gen
	s.handle = s.sched.Start(TickInterval, func() { s.tick(gen) })
}

func (s *Session) stopTimerLocked() {
	if s.handle != nil {
		s.handle.Cancel()
		s.handle = nil
	}
	s.gen++
}

func (s *Session) eventLocked(t EventType) Event {
	return Event{Type: t, SessionID: s.id, Snapshot: s.snapshotLocked()}
}
