package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/interviewace/api/internal/interview"
	"github.com/interviewace/api/internal/session"
	"github.com/interviewace/api/internal/store"
)

type WrongAnswerListResponse struct {
	WrongAnswers []interview.WrongAnswer `json:"wrongAnswers"`
	Categories   []string                `json:"categories"`
}

type RecordWrongAnswerRequest struct {
	QuestionID    string `json:"questionId"`
	Question      string `json:"question" validate:"required"`
	Category      string `json:"category" validate:"required"`
	Difficulty    string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer" validate:"required"`
	Explanation   string `json:"explanation"`
}

type RetryResponse struct {
	WrongAnswer interview.WrongAnswer `json:"wrongAnswer"`
	Session     session.Snapshot      `json:"session"`
}

func handleListWrongAnswers(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := userID(r)

		items, err := st.ListWrongAnswers(r.Context(), owner, r.URL.Query().Get("category"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		cats, err := st.WrongAnswerCategories(r.Context(), owner)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, WrongAnswerListResponse{WrongAnswers: items, Categories: cats})
	}
}

func handleRecordWrongAnswer(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordWrongAnswerRequest
		if err := readValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		saved, err := st.RecordWrongAnswer(r.Context(), userID(r), interview.WrongAnswer{
			QuestionID:    req.QuestionID,
			Question:      req.Question,
			Category:      req.Category,
			Difficulty:    interview.Difficulty(req.Difficulty),
			UserAnswer:    req.UserAnswer,
			CorrectAnswer: req.CorrectAnswer,
			Explanation:   req.Explanation,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// handleRetryWrongAnswer bumps the retry count and opens a one-question
// practice session for the noted question.
func handleRetryWrongAnswer(st Store, sessions *session.Manager, catalog interview.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wa, err := st.IncrementRetry(r.Context(), userID(r), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "wrong answer not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		q, ok := catalog.Lookup(wa.QuestionID)
		if !ok {
			q = interview.Question{
				ID:         "wrong-" + wa.ID,
				Question:   wa.Question,
				Category:   wa.Category,
				Difficulty: wa.Difficulty,
			}
		}
		cfg := interview.Config{QuestionCount: 1, Categories: []string{wa.Category}}
		s := sessions.CreateWith(cfg, []interview.Question{q})

		writeJSON(w, http.StatusCreated, RetryResponse{WrongAnswer: wa, Session: s.Snapshot()})
	}
}

func handleDeleteWrongAnswer(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := st.DeleteWrongAnswer(r.Context(), userID(r), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "wrong answer not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
