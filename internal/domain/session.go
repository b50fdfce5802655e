package domain

// Endpoint names one of the conversational operations. Each endpoint has
// its own few-shot seed and its own sessions.
type Endpoint string

const (
	EndpointClassify Endpoint = "classify"
	EndpointSuggest  Endpoint = "suggest"
	EndpointGenerate Endpoint = "generate"
)

// Endpoints lists every conversational endpoint.
var Endpoints = []Endpoint{EndpointClassify, EndpointSuggest, EndpointGenerate}

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// SessionKey identifies one conversation.
type SessionKey struct {
	Endpoint  Endpoint
	CallerID  string
	SessionID string
}

// String renders the key for map and Redis lookups.
func (k SessionKey) String() string {
	return string(k.Endpoint) + "|" + k.CallerID + "|" + k.SessionID
}

// Conversation is a snapshot of one session's turns.
type Conversation struct {
	Key   SessionKey
	Seed  []Turn
	Turns []Turn
}

// History returns the seed followed by the live turns.
func (c *Conversation) History() []Turn {
	out := make([]Turn, 0, len(c.Seed)+len(c.Turns))
	out = append(out, c.Seed...)
	return append(out, c.Turns...)
}
