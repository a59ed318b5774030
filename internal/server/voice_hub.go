package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/interviewace/api/internal/session"
	"github.com/interviewace/api/internal/voice"
)

// VoiceHub binds at most one voice conversation to each practice session.
// Connecting resumes the session countdown, disconnecting pauses it.
type VoiceHub struct {
	provider voice.Provider
	broker   *Broker
	logger   *slog.Logger

	mu    sync.Mutex
	convs map[string]*voice.Conversation
}

func NewVoiceHub(p voice.Provider, broker *Broker, logger *slog.Logger) *VoiceHub {
	return &VoiceHub{
		provider: p,
		broker:   broker,
		logger:   logger,
		convs:    make(map[string]*voice.Conversation),
	}
}

// Start connects a voice agent for the session.
func (h *VoiceHub) Start(ctx context.Context, s *session.Session, creds voice.Credentials, micGranted bool) (VoiceStatus, error) {
	id := s.ID()

	h.mu.Lock()
	conv, ok := h.convs[id]
	if !ok {
		conv = h.newConversation(s)
		h.convs[id] = conv
	}
	h.mu.Unlock()

	if err := conv.StartSession(ctx, creds, micGranted); err != nil {
		return h.status(conv), err
	}
	return h.status(conv), nil
}

// Stop ends the session's voice conversation.
func (h *VoiceHub) Stop(ctx context.Context, sessionID string) error {
	h.mu.Lock()
	conv, ok := h.convs[sessionID]
	h.mu.Unlock()
	if !ok {
		return voice.ErrNotActive
	}
	return conv.EndSession(ctx)
}

// Status reports the voice state for a session.
func (h *VoiceHub) Status(sessionID string) VoiceStatus {
	h.mu.Lock()
	conv, ok := h.convs[sessionID]
	h.mu.Unlock()
	if !ok {
		return VoiceStatus{Status: voice.StatusDisconnected}
	}
	return h.status(conv)
}

// Forget stops and drops the session's conversation. Used when the
// session completes or ends.
func (h *VoiceHub) Forget(ctx context.Context, sessionID string) {
	h.mu.Lock()
	conv, ok := h.convs[sessionID]
	delete(h.convs, sessionID)
	h.mu.Unlock()
	if !ok {
		return
	}
	if conv.Status() != voice.StatusDisconnected {
		if err := conv.EndSession(ctx); err != nil {
			h.logger.Debug("ending voice conversation", "session", sessionID, "error", err)
		}
	}
}

func (h *VoiceHub) status(conv *voice.Conversation) VoiceStatus {
	return VoiceStatus{Status: conv.Status(), Speaking: conv.Speaking()}
}

func (h *VoiceHub) newConversation(s *session.Session) *voice.Conversation {
	id := s.ID()
	logger := h.logger.With("session", id)

	var conv *voice.Conversation
	publish := func(typ string, extra func(*VoiceStatus)) {
		st := VoiceStatus{Status: voice.StatusDisconnected}
		if conv != nil {
			st = h.status(conv)
		}
		if extra != nil {
			extra(&st)
		}
		h.broker.Publish(id, SSEEvent{Type: typ, Voice: &st})
	}

	conv = voice.NewConversation(h.provider, voice.Callbacks{
		OnConnect: func() {
			if err := s.Resume(); err != nil {
				logger.Debug("resume on voice connect", "error", err)
			}
			publish("voice_connected", nil)
		},
		OnDisconnect: func() {
			if err := s.Pause(); err != nil {
				logger.Debug("pause on voice disconnect", "error", err)
			}
			publish("voice_disconnected", nil)
		},
		OnError: func(err error) {
			h.broker.Publish(id, SSEEvent{Type: "voice_error", Error: err.Error()})
		},
		OnMessage: func(m voice.Message) {
			publish("voice_message", func(st *VoiceStatus) {
				st.Message = m.Type
				st.Text = m.Text
			})
		},
	}, logger)
	return conv
}
