package server

import (
	"net/http"

	"github.com/interviewace/api/internal/interview"
)

const (
	minQuestionCount = 1
	maxQuestionCount = 50
)

type SetupOptionsResponse struct {
	Fields               []interview.Option `json:"fields"`
	Experiences          []interview.Option `json:"experiences"`
	CompanyTypes         []interview.Option `json:"companyTypes"`
	DefaultQuestionCount int                `json:"defaultQuestionCount"`
	MinQuestionCount     int                `json:"minQuestionCount"`
	MaxQuestionCount     int                `json:"maxQuestionCount"`
}

func handleSetupOptions() http.HandlerFunc {
	resp := SetupOptionsResponse{
		Fields:               interview.FieldOptions(),
		Experiences:          interview.ExperienceOptions(),
		CompanyTypes:         interview.CompanyTypeOptions(),
		DefaultQuestionCount: interview.DefaultQuestionCount,
		MinQuestionCount:     minQuestionCount,
		MaxQuestionCount:     maxQuestionCount,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleCategories lists category options, narrowed to ?field= when given.
func handleCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("field")
		if raw == "" {
			writeJSON(w, http.StatusOK, interview.Categories())
			return
		}

		field := interview.Field(raw)
		if !field.Valid() {
			writeError(w, http.StatusBadRequest, "unknown field")
			return
		}
		opts := interview.CategoriesFor(field)
		if opts == nil {
			opts = []interview.CategoryOption{}
		}
		writeJSON(w, http.StatusOK, opts)
	}
}
