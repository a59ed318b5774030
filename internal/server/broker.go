package server

import (
	"encoding/json"
	"sync"

	"github.com/interviewace/api/internal/session"
	"github.com/interviewace/api/internal/voice"
)

// SSEEvent is the payload published to session subscribers.
type SSEEvent struct {
	Type     string            `json:"type"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Voice    *VoiceStatus      `json:"voice,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// VoiceStatus is the state of the voice conversation bound to a session.
type VoiceStatus struct {
	Status   voice.Status      `json:"status"`
	Speaking bool              `json:"speaking"`
	Message  voice.MessageType `json:"message,omitempty"`
	Text     string            `json:"text,omitempty"`
}

type brokerMsg struct {
	typ  string
	data []byte
}

// Broker is an in-process pub/sub for session events, keyed by session ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan brokerMsg]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan brokerMsg]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given session.
func (b *Broker) Subscribe(sessionID string) chan brokerMsg {
	ch := make(chan brokerMsg, 16)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan brokerMsg]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the session's subscribers.
func (b *Broker) Unsubscribe(sessionID string, ch chan brokerMsg) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given session.
func (b *Broker) Publish(sessionID string, event SSEEvent) {
	msg := encodeEvent(event)
	b.mu.RLock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

func encodeEvent(event SSEEvent) brokerMsg {
	data, _ := json.Marshal(event)
	return brokerMsg{typ: event.Type, data: data}
}

// publishSession forwards a session state change.
func (b *Broker) publishSession(ev session.Event) {
	snap := ev.Snapshot
	b.Publish(ev.SessionID, SSEEvent{Type: string(ev.Type), Snapshot: &snap})
}
