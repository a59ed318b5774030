package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/interviewace/api/internal/interview"
	"github.com/interviewace/api/internal/session"
)

type CreateSessionRequest struct {
	Field         string   `json:"field" validate:"required,oneof=frontend backend devops fullstack"`
	Experience    string   `json:"experience" validate:"required,oneof=junior 1-3years 3-5years senior"`
	CompanyType   string   `json:"companyType" validate:"required,oneof=startup small large global"`
	QuestionCount int      `json:"questionCount" validate:"required,min=1,max=50"`
	Categories    []string `json:"categories" validate:"omitempty,dive,required"`
}

func (req CreateSessionRequest) config() interview.Config {
	return interview.Config{
		Field:         interview.Field(req.Field),
		Experience:    interview.Experience(req.Experience),
		CompanyType:   interview.CompanyType(req.CompanyType),
		QuestionCount: req.QuestionCount,
		Categories:    req.Categories,
	}
}

type DraftRequest struct {
	Answer string `json:"answer"`
}

// writeSessionError maps session sentinels to HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrFirstQuestion),
		errors.Is(err, session.ErrNotActive),
		errors.Is(err, session.ErrNotReviewing):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func handleCreateSession(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if err := readValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s := sessions.Create(req.config())
		writeJSON(w, http.StatusCreated, s.Snapshot())
	}
}

func handleGetSession(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

func handleDraft(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}

		var req DraftRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errBadBody.Error())
			return
		}
		if err := s.SetDraft(req.Answer); err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

// sessionAction runs a state transition and replies with the new snapshot.
func sessionAction(sessions *session.Manager, action func(*session.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		if err := action(s); err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

func handleNext(sessions *session.Manager) http.HandlerFunc {
	return sessionAction(sessions, (*session.Session).Next)
}

func handlePrevious(sessions *session.Manager) http.HandlerFunc {
	return sessionAction(sessions, (*session.Session).Previous)
}

func handlePause(sessions *session.Manager) http.HandlerFunc {
	return sessionAction(sessions, (*session.Session).TogglePause)
}

func handleSummary(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		sum, err := s.Summary()
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

func handleEndSession(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.End(chi.URLParam(r, "id")); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
