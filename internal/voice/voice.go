// Package voice manages a spoken interview conversation with an external
// agent. A Conversation owns at most one provider connection and reports
// its lifecycle through callbacks.
package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	ErrMissingCredentials = errors.New("voice api key and agent id are required")
	ErrPermissionDenied   = errors.New("microphone permission is required")
	ErrAlreadyActive      = errors.New("voice conversation already active")
	ErrNotActive          = errors.New("no active voice conversation")
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

type Credentials struct {
	APIKey  string
	AgentID string
}

func (c Credentials) valid() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.AgentID) != ""
}

type MessageType string

const (
	MessageAudio          MessageType = "audio"
	MessageInterruption   MessageType = "interruption"
	MessageUserTranscript MessageType = "user_transcript"
	MessageAgentResponse  MessageType = "agent_response"
	MessageInit           MessageType = "conversation_initiation_metadata"
	MessagePing           MessageType = "ping"
)

// Message is one event received from the agent. Text carries the
// transcript or agent response when the event has one.
type Message struct {
	Type MessageType     `json:"type"`
	Text string          `json:"text,omitempty"`
	Raw  json.RawMessage `json:"-"`
}

// Provider opens connections to a voice agent.
type Provider interface {
	Connect(ctx context.Context, creds Credentials) (Conn, error)
}

// Conn is an open agent connection. Receive blocks until the next event.
type Conn interface {
	Receive(ctx context.Context) (Message, error)
	Close() error
}

// Callbacks are invoked without any Conversation lock held.
type Callbacks struct {
	OnConnect    func()
	OnDisconnect func()
	OnError      func(error)
	OnMessage    func(Message)
}

type Conversation struct {
	provider Provider
	cb       Callbacks
	logger   *slog.Logger

	mu       sync.Mutex
	status   Status
	speaking bool
	conn     Conn
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewConversation(p Provider, cb Callbacks, logger *slog.Logger) *Conversation {
	if cb.OnConnect == nil {
		cb.OnConnect = func() {}
	}
	if cb.OnDisconnect == nil {
		cb.OnDisconnect = func() {}
	}
	if cb.OnError == nil {
		cb.OnError = func(error) {}
	}
	if cb.OnMessage == nil {
		cb.OnMessage = func(Message) {}
	}
	return &Conversation{
		provider: p,
		cb:       cb,
		logger:   logger,
		status:   StatusDisconnected,
	}
}

func (c *Conversation) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Speaking reports whether the agent is currently talking.
func (c *Conversation) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// StartSession connects to the agent. It returns once the connection is
// open; events are then read in the background until EndSession or a
// provider error.
func (c *Conversation) StartSession(ctx context.Context, creds Credentials, micGranted bool) error {
	if !creds.valid() {
		return ErrMissingCredentials
	}
	if !micGranted {
		return ErrPermissionDenied
	}

	c.mu.Lock()
	if c.status != StatusDisconnected {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	c.status = StatusConnecting
	c.mu.Unlock()

	conn, err := c.provider.Connect(ctx, creds)
	if err != nil {
		c.mu.Lock()
		c.status = StatusDisconnected
		c.mu.Unlock()
		c.logger.Warn("voice connect failed", "agent", creds.AgentID, "error", err)
		c.cb.OnError(err)
		return fmt.Errorf("connecting to voice agent: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.status = StatusConnected
	c.speaking = false
	c.conn = conn
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	c.logger.Info("voice connected", "agent", creds.AgentID)
	c.cb.OnConnect()

	go c.readLoop(readCtx, conn, done)
	return nil
}

// EndSession closes the connection and waits for the reader to stop.
func (c *Conversation) EndSession(ctx context.Context) error {
	c.mu.Lock()
	conn, cancel, done := c.conn, c.cancel, c.done
	c.mu.Unlock()
	if conn == nil {
		return ErrNotActive
	}

	cancel()
	c.teardown(conn)

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (c *Conversation) readLoop(ctx context.Context, conn Conn, done chan struct{}) {
	defer close(done)

	for {
		msg, err := conn.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("voice connection failed", "error", err)
			c.cb.OnError(err)
			c.teardown(conn)
			return
		}

		c.mu.Lock()
		switch msg.Type {
		case MessageAudio:
			c.speaking = true
		case MessageInterruption, MessageUserTranscript:
			c.speaking = false
		}
		c.mu.Unlock()

		c.cb.OnMessage(msg)
	}
}

// teardown disconnects conn if it is still the current connection. The
// disconnect callback fires once per connection.
func (c *Conversation) teardown(conn Conn) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.conn = nil
	c.cancel = nil
	c.status = StatusDisconnected
	c.speaking = false
	c.mu.Unlock()

	cancel()
	if err := conn.Close(); err != nil {
		c.logger.Debug("voice close", "error", err)
	}
	c.logger.Info("voice disconnected")
	c.cb.OnDisconnect()
}
