package session

import (
	"sync"
	"time"
)

// Handle identifies a running periodic task. Cancel may be called any
// number of times.
type Handle interface {
	Cancel()
}

// Scheduler starts periodic tasks.
type Scheduler interface {
	Start(interval time.Duration, onTick func()) Handle
}

// WallClock runs tasks on real time.Tickers.
type WallClock struct{}

func (WallClock) Start(interval time.Duration, onTick func()) Handle {
	h := &wallHandle{done: make(chan struct{})}
	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-t.C:
				onTick()
			}
		}
	}()
	return h
}

type wallHandle struct {
	once sync.Once
	done chan struct{}
}

func (h *wallHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
}

// ManualScheduler fires ticks only when Advance is called. It lets tests
// drive the countdown without sleeping.
type ManualScheduler struct {
	mu    sync.Mutex
	next  int
	tasks map[int]*manualTask
}

type manualTask struct {
	s      *ManualScheduler
	id     int
	onTick func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]*manualTask)}
}

func (m *ManualScheduler) Start(_ time.Duration, onTick func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	t := &manualTask{s: m, id: m.next, onTick: onTick}
	m.tasks[t.id] = t
	return t
}

func (t *manualTask) Cancel() {
	t.s.mu.Lock()
	delete(t.s.tasks, t.id)
	t.s.mu.Unlock()
}

// Advance fires n ticks. On each tick every task live at that moment runs
// once, in start order. Tasks cancelled during the tick are skipped.
func (m *ManualScheduler) Advance(n int) {
	for range n {
		m.mu.Lock()
		live := make([]*manualTask, 0, len(m.tasks))
		for id := 1; id <= m.next; id++ {
			if t, ok := m.tasks[id]; ok {
				live = append(live, t)
			}
		}
		m.mu.Unlock()

		for _, t := range live {
			m.mu.Lock()
			_, ok := m.tasks[t.id]
			m.mu.Unlock()
			if ok {
				t.onTick()
			}
		}
	}
}

// Live reports how many tasks are running.
func (m *ManualScheduler) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
