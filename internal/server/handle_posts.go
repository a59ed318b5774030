package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/interviewace/api/internal/interview"
	"github.com/interviewace/api/internal/store"
)

type PostListResponse struct {
	Posts []interview.Post    `json:"posts"`
	Stats interview.PostStats `json:"stats"`
}

type CreatePostRequest struct {
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"omitempty,oneof=frontend backend devops cs general"`
	Tags     []string `json:"tags" validate:"max=10"`
}

func handleListPosts(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := interview.PostCategory(r.URL.Query().Get("category"))
		if category != "" && category != interview.PostAll && !category.Valid() {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}

		posts, err := st.ListPosts(r.Context(), category)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		stats, err := st.PostStats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, PostListResponse{Posts: posts, Stats: stats})
	}
}

// handleCreatePost publishes a post under the signed-in user's name.
func handleCreatePost(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePostRequest
		if err := readValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := st.UserByID(r.Context(), userID(r))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		post, err := interview.NewPost(req.Title, req.Content, user.Name, interview.PostCategory(req.Category), req.Tags)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, err := st.CreatePost(r.Context(), post, user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

func handleLikePost(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := st.LikePost(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}
