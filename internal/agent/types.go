// Package agent implements the conversational wrapper around the LLM: each
// request becomes the next turn of the caller's session for that endpoint.
package agent

import (
	"time"

	"github.com/ashureev/bloomify/internal/domain"
)

// ChatRequest is one prompt sent as the next user turn of a session.
type ChatRequest struct {
	Endpoint  domain.Endpoint
	Prompt    string
	UserID    string
	SessionID string
	RequestID string
}

// ChatResponse is the model's reply to a ChatRequest.
type ChatResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Config holds agent configuration.
type Config struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
	Timeout     time.Duration
	// Shared routes every caller to one session per endpoint.
	Shared bool
}

// DefaultConfig returns the generation settings the service ships with.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.9,
		TopP:        1,
		TopK:        1,
		Timeout:     60 * time.Second,
	}
}

const sharedCallerID = "shared"
