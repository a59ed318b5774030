package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/interviewace/api/internal/auth"
	"github.com/interviewace/api/internal/interview"
	"github.com/interviewace/api/internal/store"
)

type RegisterRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User interview.User `json:"user"`
}

func handleRegister(st Store, passwords *auth.Passwords, tokens *auth.Tokens, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		hash, err := passwords.Hash(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		user, err := st.CreateUser(r.Context(), req.Name, req.Email, hash)
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		setAuthCookie(w, token, tokens.TTL())
		logger.Info("user registered", "user", user.ID)
		writeJSON(w, http.StatusCreated, AuthResponse{User: user})
	}
}

func handleLogin(st Store, passwords *auth.Passwords, tokens *auth.Tokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := st.UserByEmail(r.Context(), req.Email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err != nil || !passwords.Check(user.PasswordHash, req.Password) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		setAuthCookie(w, token, tokens.TTL())
		writeJSON(w, http.StatusOK, AuthResponse{User: user})
	}
}

func handleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearAuthCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMe(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := userID(r)
		if id == "" {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		user, err := st.UserByID(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, AuthResponse{User: user})
	}
}
