package agent

import "context"

// Processor defines the conversational operations served over HTTP.
// This interface is implemented by Service.
type Processor interface {
	// Send appends a prompt to the caller's session and returns the reply.
	Send(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ResetSession clears one session on every endpoint.
	ResetSession(ctx context.Context, userID, sessionID string) error

	// ResetCaller clears every session the caller owns.
	ResetCaller(ctx context.Context, userID string) (int, error)

	// GetStats returns agent statistics
	GetStats(ctx context.Context) (Stats, error)

	// Ping checks the session backend
	Ping(ctx context.Context) error
}

// Ensure Service implements Processor.
var _ Processor = (*Service)(nil)
