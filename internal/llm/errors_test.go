package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

func anthropicStatusError(code int, retryAfter string) error {
	resp := &http.Response{StatusCode: code, Header: http.Header{}}
	if retryAfter != "" {
		resp.Header.Set("Retry-After", retryAfter)
	}
	return &anthropic.Error{
		StatusCode: code,
		Request:    httptest.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil),
		Response:   resp,
	}
}

func TestMapProviderErrors(t *testing.T) {
	retryInfo := []map[string]any{{
		"@type":      "type.googleapis.com/google.rpc.RetryInfo",
		"retryDelay": "30s",
	}}

	tests := []struct {
		name          string
		mapper        func(error) error
		err           error
		wantRateLimit bool
		wantRetry     time.Duration
	}{
		{"gemini 429 by value", mapGeminiError, fmt.Errorf("generate: %w", genai.APIError{Code: 429}), true, 0},
		{"gemini 429 by pointer", mapGeminiError, &genai.APIError{Code: 429}, true, 0},
		{"gemini 429 retry info", mapGeminiError, genai.APIError{Code: 429, Details: retryInfo}, true, 30 * time.Second},
		{"gemini 500", mapGeminiError, genai.APIError{Code: 500}, false, 0},
		{"gemini transport", mapGeminiError, errors.New("dial tcp: refused"), false, 0},
		{"anthropic 429", mapAnthropicError, anthropicStatusError(429, "12"), true, 12 * time.Second},
		{"anthropic 429 no header", mapAnthropicError, anthropicStatusError(429, ""), true, 0},
		{"anthropic 529", mapAnthropicError, anthropicStatusError(529, ""), false, 0},
		{"openai 429", mapOpenAIError, &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, true, 0},
		{"openai 503", mapOpenAIError, &openai.APIError{HTTPStatusCode: 503, Message: "down"}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mapper(tt.err)

			var rl *ErrRateLimit
			isRateLimit := errors.As(got, &rl)
			if isRateLimit != tt.wantRateLimit {
				t.Fatalf("rate limit = %v, want %v (mapped type %T)", isRateLimit, tt.wantRateLimit, got)
			}
			if isRateLimit && rl.RetryAfter != tt.wantRetry {
				t.Fatalf("RetryAfter = %s, want %s", rl.RetryAfter, tt.wantRetry)
			}
			if !isRateLimit {
				var unavailable *ErrProviderUnavailable
				if !errors.As(got, &unavailable) {
					t.Fatalf("expected ErrProviderUnavailable, got %T", got)
				}
			}
		})
	}
}

func TestMapGeminiErrorKeepsDeadline(t *testing.T) {
	got := mapGeminiError(fmt.Errorf("generate: %w", context.DeadlineExceeded))
	if !errors.Is(got, context.DeadlineExceeded) {
		t.Fatal("expected deadline to stay visible through the mapped error")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"soon", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
