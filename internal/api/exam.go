package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/bloomify/internal/agent"
	"github.com/ashureev/bloomify/internal/domain"
	"github.com/ashureev/bloomify/internal/identity"
	"github.com/ashureev/bloomify/internal/prompt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const defaultMaxRequestBodySize = 1 << 20

// ExamHandler serves the classify, suggest and generate endpoints.
type ExamHandler struct {
	svc         agent.Processor
	maxBodySize int64
}

// NewExamHandler creates an exam handler. maxBodySize <= 0 uses 1 MiB.
func NewExamHandler(svc agent.Processor, maxBodySize int64) *ExamHandler {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxRequestBodySize
	}
	return &ExamHandler{svc: svc, maxBodySize: maxBodySize}
}

// RegisterRoutes registers exam routes with and without the trailing slash.
func (h *ExamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/hello", h.Hello)
	for _, route := range []struct {
		path    string
		handler http.HandlerFunc
	}{
		{"/classify", h.Classify},
		{"/suggest", h.Suggest},
		{"/generate", h.Generate},
	} {
		r.Post(route.path, route.handler)
		r.Post(route.path+"/", route.handler)
	}
	r.Delete("/sessions", h.ResetSessions)
}

// Hello answers with a fixed greeting.
func (h *ExamHandler) Hello(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, "hello world")
}

// Classify asks the model for the Bloom's level of a question.
func (h *ExamHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var in domain.ClassificationInput
	if !h.decode(w, r, classificationValidator, &in) {
		return
	}
	text, err := prompt.Classification(in)
	if err != nil {
		slog.Error("Failed to render classification prompt", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	reply, ok := h.send(w, r, domain.EndpointClassify, text)
	if !ok {
		return
	}
	if level, found := domain.ParseBloomLevel(reply); found {
		slog.Debug("Question classified", "level", level, "rank", level.Rank(), "request_id", chiMiddleware.GetReqID(r.Context()))
	} else {
		slog.Warn("Classification reply names no Bloom's level", "request_id", chiMiddleware.GetReqID(r.Context()))
	}
	Text(w, http.StatusOK, reply)
}

// Suggest asks the model to rewrite a question at another level.
func (h *ExamHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var in domain.SuggestionInput
	if !h.decode(w, r, suggestionValidator, &in) {
		return
	}
	text, err := prompt.Suggestion(in)
	if err != nil {
		slog.Error("Failed to render suggestion prompt", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if reply, ok := h.send(w, r, domain.EndpointSuggest, text); ok {
		Text(w, http.StatusOK, reply)
	}
}

// Generate asks the model for a complete question paper.
func (h *ExamHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var in domain.GenerationInput
	if !h.decode(w, r, generationValidator, &in) {
		return
	}
	text, err := prompt.Generation(in)
	if err != nil {
		slog.Error("Failed to render generation prompt", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if reply, ok := h.send(w, r, domain.EndpointGenerate, text); ok {
		Text(w, http.StatusOK, reply)
	}
}

// ResetSessions drops the caller's current session on every endpoint, or
// every session the caller owns when ?all=true.
func (h *ExamHandler) ResetSessions(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if r.URL.Query().Get("all") == "true" {
		n, err := h.svc.ResetCaller(r.Context(), userID)
		if err != nil {
			slog.Error("Failed to reset caller sessions", "user_id", userID, "error", err)
			Error(w, http.StatusInternalServerError, "failed to reset sessions")
			return
		}
		slog.Info("Caller sessions reset", "user_id", userID, "sessions", n)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sessionID := identity.SessionIDFromContext(r.Context())
	if err := h.svc.ResetSession(r.Context(), userID, sessionID); err != nil {
		slog.Error("Failed to reset session", "user_id", userID, "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to reset session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExamHandler) decode(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) bool {
	body, err := readBody(w, r, h.maxBodySize, schema)
	if err != nil {
		writeRequestError(w, err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		Error(w, http.StatusUnprocessableEntity, "validation failed")
		return false
	}
	return true
}

func (h *ExamHandler) send(w http.ResponseWriter, r *http.Request, endpoint domain.Endpoint, text string) (string, bool) {
	resp, err := h.svc.Send(r.Context(), agent.ChatRequest{
		Endpoint:  endpoint,
		Prompt:    text,
		UserID:    identity.UserIDFromContext(r.Context()),
		SessionID: identity.SessionIDFromContext(r.Context()),
		RequestID: chiMiddleware.GetReqID(r.Context()),
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("Model call failed", "endpoint", endpoint, "request_id", chiMiddleware.GetReqID(r.Context()), "error", err)
		}
		writeUpstreamError(w, err)
		return "", false
	}
	return resp.Text, true
}
