package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/bloomify/internal/domain"
	"github.com/ashureev/bloomify/internal/identity"
	"github.com/ashureev/bloomify/internal/llm"
	"github.com/ashureev/bloomify/internal/prompt"
	"github.com/ashureev/bloomify/internal/session"
)

// Service sends prompts as turns of per-caller sessions.
type Service struct {
	provider llm.Provider
	store    session.Store
	log      ConversationLogger
	cfg      Config
	locks    *keyedMutex
}

// NewService creates a new agent service.
func NewService(provider llm.Provider, store session.Store, conversationLogger ConversationLogger, cfg Config) *Service {
	if conversationLogger == nil {
		conversationLogger = noopConversationLogger{}
	}
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Service{
		provider: provider,
		store:    store,
		log:      conversationLogger,
		cfg:      cfg,
		locks:    newKeyedMutex(),
	}
}

// Key returns the session key a request maps to.
func (s *Service) Key(endpoint domain.Endpoint, userID, sessionID string) domain.SessionKey {
	if s.cfg.Shared {
		return domain.SessionKey{Endpoint: endpoint, CallerID: sharedCallerID, SessionID: identity.DefaultSessionIDValue}
	}
	return domain.SessionKey{Endpoint: endpoint, CallerID: userID, SessionID: sessionID}
}

// Send appends req.Prompt as a user turn, asks the model, and records the
// reply. Nothing is recorded when the model call fails. Sends to the same
// session are serialized so turn pairs never interleave.
func (s *Service) Send(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	key := s.Key(req.Endpoint, req.UserID, req.SessionID)

	unlock := s.locks.Lock(key.String())
	defer unlock()

	conv, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	userTurn := domain.Turn{Role: domain.RoleUser, Text: req.Prompt}
	conv.Seed = prompt.Seed(req.Endpoint)
	history := append(conv.History(), userTurn)

	s.logTurn(req, key, "outbound", "user_prompt", req.Prompt, nil)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.provider.Generate(callCtx, llm.Request{
		Messages:    toMessages(history),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		TopP:        s.cfg.TopP,
		TopK:        s.cfg.TopK,
	})
	if err != nil {
		s.logTurn(req, key, "inbound", "model_error", err.Error(), nil)
		return nil, fmt.Errorf("%s: %w", req.Endpoint, err)
	}

	modelTurn := domain.Turn{Role: domain.RoleModel, Text: resp.Text}
	if err := s.store.Append(ctx, key, userTurn, modelTurn); err != nil {
		slog.Warn("failed to record session turns", "endpoint", req.Endpoint, "user_id", key.CallerID, "error", err)
	}

	s.logTurn(req, key, "inbound", "model_reply", resp.Text, map[string]any{
		"model":         resp.Model,
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
		"stop_reason":   resp.StopReason,
	})

	return &ChatResponse{
		Text:         resp.Text,
		Model:        resp.Model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

// History returns the seed and live turns of a session.
func (s *Service) History(ctx context.Context, endpoint domain.Endpoint, userID, sessionID string) (*domain.Conversation, error) {
	conv, err := s.store.Get(ctx, s.Key(endpoint, userID, sessionID))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	conv.Seed = prompt.Seed(endpoint)
	return conv, nil
}

// ResetSession drops the caller's session on every endpoint.
func (s *Service) ResetSession(ctx context.Context, userID, sessionID string) error {
	for _, endpoint := range domain.Endpoints {
		if err := s.store.Delete(ctx, s.Key(endpoint, userID, sessionID)); err != nil {
			return fmt.Errorf("reset %s session: %w", endpoint, err)
		}
	}
	return nil
}

// ResetCaller drops every session owned by the caller.
func (s *Service) ResetCaller(ctx context.Context, userID string) (int, error) {
	if s.cfg.Shared {
		userID = sharedCallerID
	}
	return s.store.DeleteCaller(ctx, userID)
}

// Stats summarizes the service state.
type Stats struct {
	Model    string `json:"model"`
	Sessions int    `json:"sessions"`
	Shared   bool   `json:"shared_sessions"`
}

// GetStats returns agent statistics.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	n, err := s.store.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Model: s.provider.ModelID(), Sessions: n, Shared: s.cfg.Shared}, nil
}

// Ping checks that the session store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close releases resources.
func (s *Service) Close() {
	if err := s.log.Close(); err != nil {
		slog.Warn("failed to close conversation logger", "error", err)
	}
	if err := s.store.Close(); err != nil {
		slog.Warn("failed to close session store", "error", err)
	}
}

func (s *Service) logTurn(req ChatRequest, key domain.SessionKey, direction, eventType, content string, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["request_id"] = req.RequestID
	s.log.Log(ConversationLogEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		UserID:     key.CallerID,
		SessionID:  key.SessionID,
		Channel:    string(req.Endpoint),
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
		Meta:       meta,
	})
}

func toMessages(turns []domain.Turn) []llm.Message {
	out := make([]llm.Message, len(turns))
	for i, t := range turns {
		role := llm.RoleUser
		if t.Role == domain.RoleModel {
			role = llm.RoleAssistant
		}
		out[i] = llm.Message{Role: role, Content: t.Text}
	}
	return out
}
