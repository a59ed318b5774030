package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/interviewace/api/internal/bookmark"
	"github.com/interviewace/api/internal/interview"
)

type ToggleBookmarkResponse struct {
	Bookmarked bool                 `json:"bookmarked"`
	Bookmarks  []interview.Question `json:"bookmarks"`
}

func bookmarksFor(kv bookmark.KV, r *http.Request) *bookmark.Store {
	return bookmark.New(kv, bookmark.KeyFor(ownerID(r)))
}

func handleListBookmarks(kv bookmark.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := bookmarksFor(kv, r).Load(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

// handleReplaceBookmarks overwrites the whole list. The last writer wins.
func handleReplaceBookmarks(kv bookmark.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var qs []interview.Question
		if err := readJSON(r, &qs); err != nil {
			writeError(w, http.StatusBadRequest, errBadBody.Error())
			return
		}
		for _, q := range qs {
			if q.ID == "" {
				writeError(w, http.StatusBadRequest, "every bookmark needs an id")
				return
			}
		}

		store := bookmarksFor(kv, r)
		if err := store.Replace(r.Context(), qs); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		saved, err := store.Load(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func handleClearBookmarks(kv bookmark.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := bookmarksFor(kv, r).Clear(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleToggleBookmark(kv bookmark.KV, catalog interview.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := catalog.Lookup(chi.URLParam(r, "questionID"))
		if !ok {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}

		store := bookmarksFor(kv, r)
		on, err := store.Toggle(r.Context(), q)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		qs, err := store.Load(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, ToggleBookmarkResponse{Bookmarked: on, Bookmarks: qs})
	}
}

func handleRemoveBookmark(kv bookmark.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := bookmarksFor(kv, r).Remove(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
