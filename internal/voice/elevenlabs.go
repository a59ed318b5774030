package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// DefaultURL is the ElevenLabs conversational agent endpoint.
const DefaultURL = "wss://api.elevenlabs.io/v1/convai/conversation"

// ElevenLabs connects to a conversational agent over a websocket.
type ElevenLabs struct {
	URL        string
	HTTPClient *http.Client
}

func NewElevenLabs(rawURL string) *ElevenLabs {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	return &ElevenLabs{URL: rawURL}
}

func (e *ElevenLabs) Connect(ctx context.Context, creds Credentials) (Conn, error) {
	u, err := url.Parse(e.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing voice url: %w", err)
	}
	q := u.Query()
	q.Set("agent_id", creds.AgentID)
	u.RawQuery = q.Encode()

	h := http.Header{}
	h.Set("xi-api-key", creds.APIKey)

	ws, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		HTTPClient: e.HTTPClient,
		HTTPHeader: h,
	})
	if err != nil {
		return nil, fmt.Errorf("dialing voice agent: %w", err)
	}
	ws.SetReadLimit(1 << 20)
	return &elevenConn{ws: ws}, nil
}

type elevenConn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
}

// wireEvent covers the fields of every agent event this client reads.
type wireEvent struct {
	Type      MessageType `json:"type"`
	PingEvent struct {
		EventID int `json:"event_id"`
	} `json:"ping_event"`
	UserTranscription struct {
		Text string `json:"user_transcript"`
	} `json:"user_transcription_event"`
	AgentResponse struct {
		Text string `json:"agent_response"`
	} `json:"agent_response_event"`
}

// Receive returns the next agent event. Pings are answered here and never
// returned.
func (c *elevenConn) Receive(ctx context.Context) (Message, error) {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			return Message{}, err
		}

		var ev wireEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return Message{}, fmt.Errorf("decoding agent event: %w", err)
		}

		switch ev.Type {
		case MessagePing:
			if err := c.send(ctx, map[string]any{"type": "pong", "event_id": ev.PingEvent.EventID}); err != nil {
				return Message{}, fmt.Errorf("answering ping: %w", err)
			}
			continue
		case MessageUserTranscript:
			return Message{Type: ev.Type, Text: ev.UserTranscription.Text, Raw: data}, nil
		case MessageAgentResponse:
			return Message{Type: ev.Type, Text: ev.AgentResponse.Text, Raw: data}, nil
		}
		return Message{Type: ev.Type, Raw: data}, nil
	}
}

func (c *elevenConn) send(ctx context.Context, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsjson.Write(ctx, c.ws, v)
}

func (c *elevenConn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "")
}
