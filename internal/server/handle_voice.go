package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/interviewace/api/internal/session"
	"github.com/interviewace/api/internal/voice"
)

type VoiceStartRequest struct {
	APIKey            string `json:"apiKey"`
	AgentID           string `json:"agentId"`
	MicrophoneGranted bool   `json:"microphoneGranted"`
}

func writeVoiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voice.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, voice.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, voice.ErrAlreadyActive), errors.Is(err, voice.ErrNotActive):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadGateway, "voice provider unavailable")
	}
}

func handleStartVoice(sessions *session.Manager, hub *VoiceHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}

		var req VoiceStartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errBadBody.Error())
			return
		}

		creds := voice.Credentials{APIKey: req.APIKey, AgentID: req.AgentID}
		st, err := hub.Start(r.Context(), s, creds, req.MicrophoneGranted)
		if err != nil {
			writeVoiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func handleStopVoice(sessions *session.Manager, hub *VoiceHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		if err := hub.Stop(r.Context(), s.ID()); err != nil {
			writeVoiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, hub.Status(s.ID()))
	}
}
