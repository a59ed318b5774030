package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/interviewace/api/internal/session"
)

// handleEvents streams a session's state changes as Server-Sent Events.
// The first event is the current snapshot.
func handleEvents(sessions *session.Manager, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		ch := broker.Subscribe(s.ID())
		defer broker.Unsubscribe(s.ID(), ch)

		snap := s.Snapshot()
		writeSSE(w, encodeEvent(SSEEvent{Type: "snapshot", Snapshot: &snap}))
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case msg := <-ch:
				writeSSE(w, msg)
				flusher.Flush()
				if msg.typ == string(session.EventEnded) {
					return
				}
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, msg brokerMsg) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.typ, msg.data)
}
