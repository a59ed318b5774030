package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/interviewace/api/internal/interview"
)

type ContactResponse struct {
	ID string `json:"id"`
}

func handleFAQs() http.HandlerFunc {
	faqs := interview.FAQs()
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, faqs)
	}
}

func handleContact(st Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg interview.ContactMessage
		if err := readJSON(r, &msg); err != nil {
			writeError(w, http.StatusBadRequest, errBadBody.Error())
			return
		}
		msg.Name = strings.TrimSpace(msg.Name)
		msg.Email = strings.TrimSpace(msg.Email)
		msg.Subject = strings.TrimSpace(msg.Subject)
		msg.Message = strings.TrimSpace(msg.Message)
		if err := validate.Struct(msg); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		id, err := st.SaveContactMessage(r.Context(), msg)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		logger.Info("contact message received", "id", id, "subject", msg.Subject)
		writeJSON(w, http.StatusCreated, ContactResponse{ID: id})
	}
}
