package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/interviewace/api/internal/session"
)

// handleVoiceStream pushes voice status changes for a session over a
// websocket. The client only listens; anything it sends is discarded.
func handleVoiceStream(logger *slog.Logger, sessions *session.Manager, broker *Broker, hub *VoiceHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := conn.CloseRead(r.Context())

		ch := broker.Subscribe(s.ID())
		defer broker.Unsubscribe(s.ID(), ch)

		st := hub.Status(s.ID())
		if err := wsjson.Write(ctx, conn, SSEEvent{Type: "voice_status", Voice: &st}); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				if msg.typ == string(session.EventEnded) || msg.typ == string(session.EventCompleted) {
					conn.Close(websocket.StatusNormalClosure, "session "+msg.typ)
					return
				}
				if !strings.HasPrefix(msg.typ, "voice_") {
					continue
				}
				wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err := conn.Write(wctx, websocket.MessageText, msg.data)
				cancel()
				if err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
