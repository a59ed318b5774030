package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewace/api/internal/interview"
)

func questions(n int) []interview.Question {
	qs := make([]interview.Question, n)
	for i := range qs {
		qs[i] = interview.Question{
			ID:         fmt.Sprintf("q%d", i+1),
			Question:   fmt.Sprintf("Question %d?", i+1),
			Category:   "React",
			Difficulty: interview.DifficultyMedium,
		}
	}
	return qs
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newTestSession(t *testing.T, n int) (*Session, *ManualScheduler, *recorder) {
	t.Helper()
	sched := NewManualScheduler()
	rec := &recorder{}
	s := New("s1", interview.Config{QuestionCount: n}, questions(n), sched, WithEvents(rec.record))
	return s, sched, rec
}

func TestNew(t *testing.T) {
	t.Run("questions start answering", func(t *testing.T) {
		s, sched, _ := newTestSession(t, 3)
		snap := s.Snapshot()
		assert.Equal(t, StateAnswering, snap.State)
		assert.Equal(t, 0, snap.Index)
		assert.Equal(t, TimeLimit, snap.Remaining)
		assert.Equal(t, "q1", snap.Question.ID)
		assert.Equal(t, "Intermediate", snap.DifficultyLabel)
		assert.InDelta(t, 33.33, snap.Progress, 0.01)
		assert.Equal(t, 1, sched.Live())
	})

	t.Run("empty selection stays loading", func(t *testing.T) {
		s, sched, _ := newTestSession(t, 0)
		snap := s.Snapshot()
		assert.Equal(t, StateLoading, snap.State)
		assert.Nil(t, snap.Question)
		assert.Zero(t, snap.Total)
		assert.Zero(t, sched.Live())
		assert.ErrorIs(t, s.Next(), ErrNotActive)
		assert.ErrorIs(t, s.SetDraft("x"), ErrNotActive)
	})
}

func TestCountdown(t *testing.T) {
	s, sched, rec := newTestSession(t, 2)

	sched.Advance(5)
	assert.Equal(t, TimeLimit-5, s.Snapshot().Remaining)
	assert.Len(t, rec.types(), 5)

	require.NoError(t, s.SetDraft("first"))
	sched.Advance(TimeLimit - 5)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Index, "expiry advances")
	assert.Equal(t, TimeLimit, snap.Remaining)
	assert.Equal(t, "", snap.Draft)
	assert.Equal(t, 1, sched.Live())
}

func TestExpiryOnLastQuestionCompletes(t *testing.T) {
	s, sched, rec := newTestSession(t, 1)

	require.NoError(t, s.SetDraft("closures capture scope"))
	sched.Advance(TimeLimit)

	assert.Equal(t, StateReviewing, s.State())
	assert.Zero(t, sched.Live())
	assert.Equal(t, EventCompleted, rec.types()[len(rec.types())-1])

	sum, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Answered)
	assert.Equal(t, "closures capture scope", sum.Items[0].Answer)

	sched.Advance(10)
	assert.Equal(t, 0, s.Snapshot().Remaining)
}

func TestNextPrevious(t *testing.T) {
	s, sched, _ := newTestSession(t, 3)

	assert.ErrorIs(t, s.Previous(), ErrFirstQuestion)

	require.NoError(t, s.SetDraft("a1"))
	require.NoError(t, s.Next())
	require.NoError(t, s.SetDraft("a2"))
	sched.Advance(30)

	require.NoError(t, s.Previous())
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, "a1", snap.Draft)
	assert.Equal(t, TimeLimit, snap.Remaining)

	require.NoError(t, s.Next())
	snap = s.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, "a2", snap.Draft, "stored answer restored")
	assert.Equal(t, 1, sched.Live())
}

func TestPreviousNextIdempotent(t *testing.T) {
	s, _, _ := newTestSession(t, 4)
	require.NoError(t, s.Next())
	require.NoError(t, s.SetDraft("draft at two"))
	before := s.Snapshot()

	require.NoError(t, s.Previous())
	require.NoError(t, s.Next())
	after := s.Snapshot()

	assert.Equal(t, before.Index, after.Index)
	assert.Equal(t, before.Draft, after.Draft)
	assert.Equal(t, TimeLimit, after.Remaining)
}

func TestPause(t *testing.T) {
	s, sched, rec := newTestSession(t, 3)

	sched.Advance(10)
	require.NoError(t, s.TogglePause())
	assert.True(t, s.Snapshot().Paused)
	assert.Zero(t, sched.Live())

	sched.Advance(50)
	assert.Equal(t, TimeLimit-10, s.Snapshot().Remaining, "frozen while paused")

	require.NoError(t, s.Next())
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, TimeLimit, snap.Remaining)
	assert.True(t, snap.Paused)
	assert.Zero(t, sched.Live(), "navigation keeps a paused session paused")

	require.NoError(t, s.TogglePause())
	assert.Equal(t, 1, sched.Live())
	sched.Advance(1)
	assert.Equal(t, TimeLimit-1, s.Snapshot().Remaining)

	assert.Contains(t, rec.types(), EventPaused)
	assert.Contains(t, rec.types(), EventResumed)
}

func TestAtMostOneLiveTimer(t *testing.T) {
	s, sched, _ := newTestSession(t, 5)

	steps := []func() error{
		s.Next, s.Next, s.Previous, s.TogglePause, s.TogglePause,
		s.Next, s.Pause, s.Resume, s.Resume, s.Previous,
	}
	for _, step := range steps {
		require.NoError(t, step())
		assert.LessOrEqual(t, sched.Live(), 1)
		sched.Advance(3)
		snap := s.Snapshot()
		assert.GreaterOrEqual(t, snap.Remaining, 0)
		assert.LessOrEqual(t, snap.Remaining, TimeLimit)
	}
	assert.Equal(t, TimeLimit-3, s.Snapshot().Remaining, "single decrement per tick")
}

func TestStaleTickIgnored(t *testing.T) {
	sched := NewManualScheduler()
	s := New("s", interview.Config{}, questions(2), sched)

	var stale func()
	captured := &captureScheduler{inner: sched, last: &stale}
	s.sched = captured
	require.NoError(t, s.Next())
	require.NoError(t, s.Previous())

	before := s.Snapshot().Remaining
	stale() // tick from the handle cancelled by Previous
	assert.Equal(t, before, s.Snapshot().Remaining)
}

type captureScheduler struct {
	inner *ManualScheduler
	last  *func()
	first bool
}

// Start remembers the first tick func it hands out.
func (c *captureScheduler) Start(d time.Duration, fn func()) Handle {
	if !c.first {
		c.first = true
		*c.last = fn
	}
	return c.inner.Start(d, fn)
}

func TestClose(t *testing.T) {
	s, sched, rec := newTestSession(t, 3)
	s.Close()

	assert.Equal(t, StateEnded, s.State())
	assert.Zero(t, sched.Live())
	assert.ErrorIs(t, s.Next(), ErrNotActive)
	_, err := s.Summary()
	assert.ErrorIs(t, err, ErrNotReviewing)

	s.Close()
	n := 0
	for _, ty := range rec.types() {
		if ty == EventEnded {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestSummary(t *testing.T) {
	s, _, _ := newTestSession(t, 10)

	_, err := s.Summary()
	require.ErrorIs(t, err, ErrNotReviewing)

	for i := range 10 {
		if i < 7 {
			require.NoError(t, s.SetDraft(fmt.Sprintf("answer %d", i)))
		} else {
			require.NoError(t, s.SetDraft("   "))
		}
		require.NoError(t, s.Next())
	}

	sum, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Total)
	assert.Equal(t, 7, sum.Answered)
	assert.Equal(t, 70, sum.Completion)
	assert.Equal(t, NotAnswered, sum.Items[9].Answer)
	assert.False(t, sum.Items[9].Answered)
	assert.Equal(t, "Intermediate", sum.Items[0].DifficultyLabel)

	assert.NoError(t, s.Pause(), "pause is a no-op once reviewing")
	assert.ErrorIs(t, s.Previous(), ErrNotActive)
}

func TestManager(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := NewManualScheduler()
	sel := interview.NewSelector(interview.DefaultCatalog())
	m := NewManager(sel, sched, logger)

	rec := &recorder{}
	m.OnEvent(rec.record)

	s := m.Create(interview.Config{Field: interview.FieldFrontend, Experience: interview.ExperienceJunior, CompanyType: interview.CompanyStartup, QuestionCount: 3})
	assert.Equal(t, 3, s.Snapshot().Total)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	sched.Advance(1)
	require.NotEmpty(t, rec.types())
	assert.Equal(t, s.ID(), rec.events[0].SessionID)

	require.NoError(t, m.End(s.ID()))
	assert.Zero(t, m.Len())
	assert.Zero(t, sched.Live())
	assert.ErrorIs(t, m.End(s.ID()), ErrNotFound)
	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrNotFound)

	m.CreateWith(interview.Config{QuestionCount: 1}, questions(1))
	m.CreateWith(interview.Config{QuestionCount: 2}, questions(2))
	m.Close()
	assert.Zero(t, m.Len())
	assert.Zero(t, sched.Live())
}

func TestReaper(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := NewManualScheduler()
	m := NewManager(interview.NewSelector(nil), sched, logger)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	old := m.CreateWith(interview.Config{}, questions(2))
	now = now.Add(90 * time.Minute)
	fresh := m.CreateWith(interview.Config{}, questions(2))
	now = now.Add(45 * time.Minute)

	r := NewReaper(m, 2*time.Hour, time.Minute, logger)
	assert.Equal(t, 1, r.Reap())

	_, err := m.Get(old.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)
	assert.Equal(t, StateEnded, old.State())

	require.NoError(t, fresh.SetDraft("still here"))
	now = now.Add(time.Hour)
	assert.Zero(t, r.Reap(), "activity resets idle time")
}

func TestWallClockCancel(t *testing.T) {
	var mu sync.Mutex
	n := 0
	h := WallClock{}.Start(time.Millisecond, func() {
		mu.Lock()
		n++
		mu.Unlock()
	})
	time.Sleep(20 * time.Millisecond)
	h.Cancel()
	h.Cancel()

	mu.Lock()
	stopped := n
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, stopped, 0)
	assert.LessOrEqual(t, n, stopped+1)
}
