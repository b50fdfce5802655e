package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/bloomify/internal/agent"
	"github.com/ashureev/bloomify/internal/domain"
	"github.com/ashureev/bloomify/internal/identity"
	"github.com/ashureev/bloomify/internal/llm"
	"github.com/ashureev/bloomify/internal/session"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const generateBody = `{
  "syllabus": [
    {"unit": 1, "content": "Neural networks"},
    {"unit": 2, "content": "Linear algebra"},
    {"unit": 3, "content": "Optimisation"}
  ],
  "marking_scheme": {
    "marks_per_unit": 80,
    "main_questions_per_unit": 2,
    "sub_questions_per_main_question": 3,
    "marks_per_main_question": 14
  },
  "university": "SPPU",
  "degree": "B.E.",
  "branch": "AI&DS",
  "year": "Second Year",
  "subject": "Machine Learning",
  "average_blooms_score": 3
}`

type testServer struct {
	router http.Handler
	mock   *llm.MockProvider
	store  *session.MemoryStore
	svc    *agent.Service
}

func newTestServer(t *testing.T, mock *llm.MockProvider, maxBody int64) *testServer {
	t.Helper()
	store := session.NewMemoryStore(session.Options{TTL: time.Hour, HistoryTurns: 20})
	svc := agent.NewService(mock, store, nil, agent.DefaultConfig())
	t.Cleanup(svc.Close)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(identity.Middleware(true))
	NewHealthHandler(svc, "mock", time.Second).RegisterHealth(r)
	NewExamHandler(svc, maxBody).RegisterRoutes(r)

	return &testServer{router: r, mock: mock, store: store, svc: svc}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(identity.CallerHeaderName, "caller-1")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHello(t *testing.T) {
	srv := newTestServer(t, llm.NewEchoProvider(), 0)

	rec := srv.do(http.MethodGet, "/hello", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Expected JSON string body: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("Expected hello world, got %q", got)
	}
}

func TestClassifyReturnsModelText(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "REMEMBER"},
		llm.MockResponse{Text: "The level is APPLY"},
	)
	srv := newTestServer(t, mock, 0)

	for _, path := range []string{"/classify/", "/classify"} {
		rec := srv.do(http.MethodPost, path, `{"question": "Define frame buffer"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
			t.Fatalf("%s: expected text/plain, got %q", path, rec.Header().Get("Content-Type"))
		}
		if rec.Body.Len() == 0 {
			t.Fatalf("%s: expected non-empty body", path)
		}
	}

	call, _ := mock.LastCall()
	last := call.Messages[len(call.Messages)-1].Content
	if !strings.Contains(last, "Question: Define frame buffer") {
		t.Fatalf("unexpected classification prompt: %q", last)
	}

	conv, err := srv.svc.History(context.Background(), domain.EndpointClassify, "caller-1", identity.DefaultSessionIDValue)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(conv.Turns) != 4 {
		t.Fatalf("expected 4 live turns after two requests, got %d", len(conv.Turns))
	}
}

func TestClassifyValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing question", `{}`, http.StatusUnprocessableEntity},
		{"wrong type", `{"question": 7}`, http.StatusUnprocessableEntity},
		{"not an object", `["q"]`, http.StatusUnprocessableEntity},
		{"malformed", `{"question": `, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewEchoProvider()
			srv := newTestServer(t, mock, 0)
			rec := srv.do(http.MethodPost, "/classify/", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if mock.CallCount() != 0 {
				t.Fatal("expected no model call for invalid input")
			}
		})
	}
}

func TestValidationDetails(t *testing.T) {
	srv := newTestServer(t, llm.NewEchoProvider(), 0)

	rec := srv.do(http.MethodPost, "/suggest/", `{"question": "Define paging"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", rec.Code)
	}
	var got struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(got.Details) == 0 || !strings.Contains(strings.Join(got.Details, " "), "desired_level") {
		t.Fatalf("Expected details naming desired_level, got %+v", got)
	}
}

func TestOversizedBody(t *testing.T) {
	srv := newTestServer(t, llm.NewEchoProvider(), 32)

	rec := srv.do(http.MethodPost, "/classify/", `{"question": "`+strings.Repeat("x", 64)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %d", rec.Code)
	}
}

func TestSuggest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Compare paging and segmentation."})
	srv := newTestServer(t, mock, 0)

	rec := srv.do(http.MethodPost, "/suggest/", `{"question": "Define paging", "desired_level": "ANALYZE"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Compare paging and segmentation." {
		t.Fatalf("Expected verbatim reply, got %q", rec.Body.String())
	}

	call, _ := mock.LastCall()
	if len(call.Messages) != 5 {
		t.Fatalf("Expected seeded suggest history of 5 messages, got %d", len(call.Messages))
	}
}

func TestGenerateComputesTotalMarks(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "| Q | Question | Marks |"})
	srv := newTestServer(t, mock, 0)

	rec := srv.do(http.MethodPost, "/generate/", generateBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	call, _ := mock.LastCall()
	if len(call.Messages) != 1 {
		t.Fatalf("Expected unseeded generate history, got %d messages", len(call.Messages))
	}
	if !strings.Contains(call.Messages[0].Content, "Total Marks: 240") {
		t.Fatal("Expected generation prompt to carry total marks 240")
	}
}

func TestGenerateRejectsFractionalMarks(t *testing.T) {
	srv := newTestServer(t, llm.NewEchoProvider(), 0)

	body := strings.Replace(generateBody, `"marks_per_unit": 80`, `"marks_per_unit": 80.5`, 1)
	rec := srv.do(http.MethodPost, "/generate/", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", rec.Code)
	}
}

func TestUpstreamFailureIsNotRecorded(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	srv := newTestServer(t, mock, 0)

	rec := srv.do(http.MethodPost, "/classify/", `{"question": "q"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}
	n, _ := srv.store.Len(context.Background())
	if n != 0 {
		t.Fatalf("Expected no session after failure, got %d", n)
	}
}

func TestResetSessions(t *testing.T) {
	srv := newTestServer(t, llm.NewEchoProvider(), 0)

	srv.do(http.MethodPost, "/classify/", `{"question": "q"}`)
	srv.do(http.MethodPost, "/suggest/", `{"question": "q", "desired_level": "APPLY"}`)

	rec := srv.do(http.MethodDelete, "/sessions", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	n, _ := srv.store.Len(context.Background())
	if n != 0 {
		t.Fatalf("Expected sessions dropped, got %d", n)
	}

	srv.do(http.MethodPost, "/classify/?session_id=tab-2", `{"question": "q"}`)
	rec = srv.do(http.MethodDelete, "/sessions?all=true", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	n, _ = srv.store.Len(context.Background())
	if n != 0 {
		t.Fatalf("Expected all caller sessions dropped, got %d", n)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, llm.NewEchoProvider(), 0)

	rec := srv.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["status"] != "ok" || got["provider"] != "mock" || got["model"] != "mock" {
		t.Fatalf("Unexpected health payload: %v", got)
	}

	if err := srv.store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	rec = srv.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 after store closed, got %d", rec.Code)
	}
}

func TestGenerateRejectsUnboundedMarks(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
	}{
		{"huge marks", `"marks_per_unit": 80`, `"marks_per_unit": 4611686018427387904`},
		{"negative marks", `"marks_per_unit": 80`, `"marks_per_unit": -80`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewEchoProvider()
			srv := newTestServer(t, mock, 0)

			rec := srv.do(http.MethodPost, "/generate/", strings.Replace(generateBody, tt.from, tt.to, 1))
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("Expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			if mock.CallCount() != 0 {
				t.Fatal("expected no model call for out-of-range marks")
			}
		})
	}
}
