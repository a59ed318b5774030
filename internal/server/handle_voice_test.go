package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/interviewace/api/internal/session"
	"github.com/interviewace/api/internal/voice"
)

var voiceReq = VoiceStartRequest{APIKey: "key", AgentID: "agent", MicrophoneGranted: true}

func TestStartVoiceErrors(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)
	snap := env.createSession(t, c)
	path := "/api/sessions/" + snap.ID + "/voice"

	tests := []struct {
		name string
		req  VoiceStartRequest
		want int
	}{
		{"missing api key", VoiceStartRequest{AgentID: "agent", MicrophoneGranted: true}, http.StatusBadRequest},
		{"missing agent", VoiceStartRequest{APIKey: "key", MicrophoneGranted: true}, http.StatusBadRequest},
		{"no microphone", VoiceStartRequest{APIKey: "key", AgentID: "agent"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, c, http.MethodPost, path, tt.req)
			expectStatus(t, code, tt.want, body)
		})
	}

	env.voice.fail(errors.New("dial refused"))
	code, body := env.do(t, c, http.MethodPost, path, voiceReq)
	expectStatus(t, code, http.StatusBadGateway, body)

	code, body = env.do(t, c, http.MethodPost, "/api/sessions/nope/voice", voiceReq)
	expectStatus(t, code, http.StatusNotFound, body)
}

func TestVoiceLifecycle(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)
	snap := env.createSession(t, c)
	base := "/api/sessions/" + snap.ID

	code, body := env.do(t, c, http.MethodPost, base+"/pause", nil)
	expectStatus(t, code, http.StatusOK, body)

	code, body = env.do(t, c, http.MethodPost, base+"/voice", voiceReq)
	expectStatus(t, code, http.StatusOK, body)
	if st := decode[VoiceStatus](t, body); st.Status != voice.StatusConnected {
		t.Fatalf("status = %s, want connected", st.Status)
	}

	// Connecting resumes the countdown.
	code, body = env.do(t, c, http.MethodGet, base, nil)
	expectStatus(t, code, http.StatusOK, body)
	if s := decode[session.Snapshot](t, body); s.Paused {
		t.Error("session still paused after voice connect")
	}

	code, body = env.do(t, c, http.MethodPost, base+"/voice", voiceReq)
	expectStatus(t, code, http.StatusConflict, body)

	code, body = env.do(t, c, http.MethodDelete, base+"/voice", nil)
	expectStatus(t, code, http.StatusOK, body)
	if st := decode[VoiceStatus](t, body); st.Status != voice.StatusDisconnected {
		t.Fatalf("status = %s, want disconnected", st.Status)
	}

	// Disconnecting pauses it.
	code, body = env.do(t, c, http.MethodGet, base, nil)
	expectStatus(t, code, http.StatusOK, body)
	if s := decode[session.Snapshot](t, body); !s.Paused {
		t.Error("session not paused after voice disconnect")
	}

	code, body = env.do(t, c, http.MethodDelete, base+"/voice", nil)
	expectStatus(t, code, http.StatusConflict, body)
}

func TestVoiceStream(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)
	snap := env.createSession(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/voice/" + snap.ID
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var ev SSEEvent
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if ev.Type != "voice_status" || ev.Voice == nil || ev.Voice.Status != voice.StatusDisconnected {
		t.Fatalf("first message = %+v", ev)
	}

	code, body := env.do(t, c, http.MethodPost, "/api/sessions/"+snap.ID+"/voice", voiceReq)
	expectStatus(t, code, http.StatusOK, body)

	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read connect: %v", err)
	}
	if ev.Type != "voice_connected" || ev.Voice.Status != voice.StatusConnected {
		t.Fatalf("connect message = %+v", ev)
	}

	// Ending the session hangs up the agent and closes the stream.
	code, body = env.do(t, c, http.MethodDelete, "/api/sessions/"+snap.ID, nil)
	expectStatus(t, code, http.StatusNoContent, body)

	for {
		err := wsjson.Read(ctx, conn, &ev)
		if err == nil {
			continue
		}
		if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
			t.Fatalf("close = %v, want normal closure", err)
		}
		break
	}
}

func TestVoiceStreamUnknownSession(t *testing.T) {
	env := newTestEnv(t, "")

	resp, err := http.Get(env.srv.URL + "/ws/voice/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
