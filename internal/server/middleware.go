package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/interviewace/api/internal/auth"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyVisitor
)

const (
	authCookieName    = "auth_token"
	visitorCookieName = "visitor_id"
)

// identify resolves who is calling. A valid auth cookie sets the user id;
// every caller gets a long-lived visitor cookie for anonymous data.
func identify(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if c, err := r.Cookie(authCookieName); err == nil && c.Value != "" {
				if userID, err := tokens.Parse(c.Value); err == nil {
					ctx = context.WithValue(ctx, ctxKeyUser, userID)
				}
			}

			visitor := ""
			if c, err := r.Cookie(visitorCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					visitor = c.Value
				}
			}
			if visitor == "" {
				visitor = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     visitorCookieName,
					Value:    visitor,
					Path:     "/",
					MaxAge:   int(365 * 24 * time.Hour / time.Second),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx = context.WithValue(ctx, ctxKeyVisitor, visitor)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireUser rejects requests without a valid auth cookie.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyUser).(string)
	return id
}

// ownerID is the signed-in user, or the anonymous visitor otherwise.
func ownerID(r *http.Request) string {
	if id := userID(r); id != "" {
		return "user:" + id
	}
	id, _ := r.Context().Value(ctxKeyVisitor).(string)
	return "visitor:" + id
}

func setAuthCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
