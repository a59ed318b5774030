package server

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/interviewace/api/internal/session"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	broker := NewBroker()
	hub := NewVoiceHub(deps.Voice, broker, logger)

	deps.Sessions.OnEvent(func(ev session.Event) {
		broker.publishSession(ev)
		if ev.Type == session.EventCompleted || ev.Type == session.EventEnded {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			hub.Forget(ctx, ev.SessionID)
			cancel()
		}
	})

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("InterviewAce API", "/openapi.json", "/docs"))
	r.Get("/ws/voice/{id}", handleVoiceStream(logger, deps.Sessions, broker, hub))

	r.Route("/api", func(r chi.Router) {
		r.Use(identify(deps.Tokens))

		r.Get("/setup/options", handleSetupOptions())
		r.Get("/categories", handleCategories())

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", handleCreateSession(deps.Sessions))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handleGetSession(deps.Sessions))
				r.Delete("/", handleEndSession(deps.Sessions))
				r.Put("/draft", handleDraft(deps.Sessions))
				r.Post("/next", handleNext(deps.Sessions))
				r.Post("/previous", handlePrevious(deps.Sessions))
				r.Post("/pause", handlePause(deps.Sessions))
				r.Get("/summary", handleSummary(deps.Sessions))
				r.Get("/events", handleEvents(deps.Sessions, broker))
				r.Post("/voice", handleStartVoice(deps.Sessions, hub))
				r.Delete("/voice", handleStopVoice(deps.Sessions, hub))
			})
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", handleListBookmarks(deps.Bookmarks))
			r.Put("/", handleReplaceBookmarks(deps.Bookmarks))
			r.Delete("/", handleClearBookmarks(deps.Bookmarks))
			r.Post("/{questionID}", handleToggleBookmark(deps.Bookmarks, deps.Catalog))
			r.Delete("/{questionID}", handleRemoveBookmark(deps.Bookmarks))
		})

		r.Route("/wrong-answers", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", handleListWrongAnswers(deps.Store))
			r.Post("/", handleRecordWrongAnswer(deps.Store))
			r.Post("/{id}/retry", handleRetryWrongAnswer(deps.Store, deps.Sessions, deps.Catalog))
			r.Delete("/{id}", handleDeleteWrongAnswer(deps.Store))
		})

		r.Get("/posts", handleListPosts(deps.Store))
		r.With(requireUser).Post("/posts", handleCreatePost(deps.Store))
		r.Post("/posts/{id}/like", handleLikePost(deps.Store))

		r.Get("/faqs", handleFAQs())
		r.Post("/contact", handleContact(deps.Store, logger))

		r.Post("/auth/register", handleRegister(deps.Store, deps.Passwords, deps.Tokens, logger))
		r.Post("/auth/login", handleLogin(deps.Store, deps.Passwords, deps.Tokens))
		r.Post("/auth/logout", handleLogout())
		r.Get("/auth/me", handleMe(deps.Store))

		r.NotFound(handleAPINotFound())
	})

	spaDir := deps.SPADir
	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
			return
		}
		logger.Warn("SPA directory not found, serving API only", "dir", spaDir)
	}
}
