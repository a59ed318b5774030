package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/interviewace/api/internal/interview"
	"github.com/interviewace/api/internal/session"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthCheck is one entry of the /healthz response, keyed by dependency.
type HealthCheck struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
}

type sessionPath struct {
	ID string `path:"id"`
}

type questionPath struct {
	QuestionID string `path:"questionID"`
}

type idPath struct {
	ID string `path:"id"`
}

type categoriesQuery struct {
	Field string `query:"field" enum:"frontend,backend,devops,fullstack"`
}

type categoryQuery struct {
	Category string `query:"category"`
}

type operation struct {
	method, path, summary, description string
	req                                any
	resp                               map[int]any
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "InterviewAce API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the InterviewAce interview practice app.")

	ops := []operation{
		{http.MethodGet, "/healthz", "Health check", "Returns the health status of backend dependencies.", nil,
			map[int]any{http.StatusOK: map[string]HealthCheck{}, http.StatusServiceUnavailable: map[string]HealthCheck{}}},

		{http.MethodGet, "/api/setup/options", "Setup options", "Fields, experience levels and company types offered on the setup screen.", nil,
			map[int]any{http.StatusOK: SetupOptionsResponse{}}},
		{http.MethodGet, "/api/categories", "Category options", "Category cards with icons, optionally narrowed to one field.", categoriesQuery{},
			map[int]any{http.StatusOK: []interview.CategoryOption{}, http.StatusBadRequest: ErrorResponse{}}},

		{http.MethodPost, "/api/sessions", "Start interview", "Selects questions for the submitted setup and starts a session.", CreateSessionRequest{},
			map[int]any{http.StatusCreated: session.Snapshot{}, http.StatusBadRequest: ErrorResponse{}}},
		{http.MethodGet, "/api/sessions/{id}", "Get session", "Returns the current session snapshot.", sessionPath{},
			map[int]any{http.StatusOK: session.Snapshot{}, http.StatusNotFound: ErrorResponse{}}},
		{http.MethodDelete, "/api/sessions/{id}", "End interview", "Ends the interview early and discards the session.", sessionPath{},
			map[int]any{http.StatusNoContent: nil, http.StatusNotFound: ErrorResponse{}}},
		{http.MethodPut, "/api/sessions/{id}/draft", "Update answer", "Replaces the answer buffer for the current question.", struct {
			sessionPath
			DraftRequest
		}{},
			map[int]any{http.StatusOK: session.Snapshot{}, http.StatusNotFound: ErrorResponse{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodPost, "/api/sessions/{id}/next", "Next question", "Saves the answer and moves forward. Completes the interview on the last question.", sessionPath{},
			map[int]any{http.StatusOK: session.Snapshot{}, http.StatusNotFound: ErrorResponse{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodPost, "/api/sessions/{id}/previous", "Previous question", "Saves the answer and moves back one question.", sessionPath{},
			map[int]any{http.StatusOK: session.Snapshot{}, http.StatusNotFound: ErrorResponse{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodPost, "/api/sessions/{id}/pause", "Toggle pause", "Pauses or resumes the countdown.", sessionPath{},
			map[int]any{http.StatusOK: session.Snapshot{}, http.StatusNotFound: ErrorResponse{}}},
		{http.MethodGet, "/api/sessions/{id}/summary", "Interview summary", "Answers and completion rate once the interview is complete.", sessionPath{},
			map[int]any{http.StatusOK: session.Summary{}, http.StatusNotFound: ErrorResponse{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodGet, "/api/sessions/{id}/events", "Session event stream", "Server-Sent Events for countdown ticks, question changes and voice status.", sessionPath{},
			map[int]any{http.StatusOK: nil, http.StatusNotFound: ErrorResponse{}}},
		{http.MethodPost, "/api/sessions/{id}/voice", "Start voice interview", "Connects a voice agent to the session.", struct {
			sessionPath
			VoiceStartRequest
		}{},
			map[int]any{
				http.StatusOK: VoiceStatus{}, http.StatusBadRequest: ErrorResponse{}, http.StatusForbidden: ErrorResponse{},
				http.StatusConflict: ErrorResponse{}, http.StatusBadGateway: ErrorResponse{},
			}},
		{http.MethodDelete, "/api/sessions/{id}/voice", "Stop voice interview", "Disconnects the voice agent.", sessionPath{},
			map[int]any{http.StatusOK: VoiceStatus{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodGet, "/ws/voice/{id}", "Voice status stream", "Upgrades to a WebSocket that pushes voice status changes.", sessionPath{},
			map[int]any{http.StatusSwitchingProtocols: nil, http.StatusNotFound: ErrorResponse{}}},

		{http.MethodGet, "/api/bookmarks", "List bookmarks", "Bookmarked questions of the caller.", nil,
			map[int]any{http.StatusOK: []interview.Question{}}},
		{http.MethodPut, "/api/bookmarks", "Replace bookmarks", "Overwrites the whole bookmark list.", []interview.Question{},
			map[int]any{http.StatusOK: []interview.Question{}, http.StatusBadRequest: ErrorResponse{}}},
		{http.MethodDelete, "/api/bookmarks", "Clear bookmarks", "Removes every bookmark.", nil,
			map[int]any{http.StatusNoContent: nil}},
		{http.MethodPost, "/api/bookmarks/{questionID}", "Toggle bookmark", "Adds or removes a catalog question.", questionPath{},
			map[int]any{http.StatusOK: ToggleBookmarkResponse{}, http.StatusNotFound: ErrorResponse{}}},
		{http.MethodDelete, "/api/bookmarks/{questionID}", "Remove bookmark", "Removes one bookmark.", questionPath{},
			map[int]any{http.StatusNoContent: nil}},

		{http.MethodGet, "/api/wrong-answers", "List wrong answers", "The signed-in user's wrong-answer notes. Requires auth_token cookie.", categoryQuery{},
			map[int]any{http.StatusOK: WrongAnswerListResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodPost, "/api/wrong-answers", "Record wrong answer", "Adds a wrong-answer note. Requires auth_token cookie.", RecordWrongAnswerRequest{},
			map[int]any{http.StatusCreated: interview.WrongAnswer{}, http.StatusBadRequest: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodPost, "/api/wrong-answers/{id}/retry", "Retry question", "Counts a retry and starts a one-question session. Requires auth_token cookie.", idPath{},
			map[int]any{http.StatusCreated: RetryResponse{}, http.StatusNotFound: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodDelete, "/api/wrong-answers/{id}", "Delete wrong answer", "Removes a note. Requires auth_token cookie.", idPath{},
			map[int]any{http.StatusNoContent: nil, http.StatusNotFound: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{}}},

		{http.MethodGet, "/api/posts", "List posts", "Community feed with totals, newest first.", categoryQuery{},
			map[int]any{http.StatusOK: PostListResponse{}, http.StatusBadRequest: ErrorResponse{}}},
		{http.MethodPost, "/api/posts", "Create post", "Publishes a post. Requires auth_token cookie.", CreatePostRequest{},
			map[int]any{http.StatusCreated: interview.Post{}, http.StatusBadRequest: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodPost, "/api/posts/{id}/like", "Like post", "Adds one like.", idPath{},
			map[int]any{http.StatusOK: interview.Post{}, http.StatusNotFound: ErrorResponse{}}},

		{http.MethodGet, "/api/faqs", "FAQ", "Support page questions and answers.", nil,
			map[int]any{http.StatusOK: []interview.FAQ{}}},
		{http.MethodPost, "/api/contact", "Contact support", "Stores a support inquiry.", interview.ContactMessage{},
			map[int]any{http.StatusCreated: ContactResponse{}, http.StatusBadRequest: ErrorResponse{}}},

		{http.MethodPost, "/api/auth/register", "Register", "Creates an account and sets the auth_token cookie.", RegisterRequest{},
			map[int]any{http.StatusCreated: AuthResponse{}, http.StatusBadRequest: ErrorResponse{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodPost, "/api/auth/login", "Log in", "Authenticates with email and password. Sets the auth_token cookie.", LoginRequest{},
			map[int]any{http.StatusOK: AuthResponse{}, http.StatusBadRequest: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodPost, "/api/auth/logout", "Log out", "Clears the auth_token cookie.", nil,
			map[int]any{http.StatusNoContent: nil}},
		{http.MethodGet, "/api/auth/me", "Current user", "Returns the signed-in user.", nil,
			map[int]any{http.StatusOK: AuthResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
	}

	for _, op := range ops {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for status, body := range op.resp {
			switch {
			case op.path == "/api/sessions/{id}/events" && status == http.StatusOK:
				oc.AddRespStructure(nil, openapi.WithHTTPStatus(status), openapi.WithContentType("text/event-stream"))
			case status == http.StatusSwitchingProtocols:
				oc.AddRespStructure(nil, openapi.WithHTTPStatus(status), openapi.WithContentType("text/plain"))
			default:
				oc.AddRespStructure(body, openapi.WithHTTPStatus(status))
			}
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
