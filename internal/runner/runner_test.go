package runner

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/studiowebux/docportal/internal/session"
	"github.com/studiowebux/docportal/internal/store"
	"github.com/studiowebux/docportal/internal/types"
)

type fakeRegenerator struct {
	calls atomic.Int32
	token string
	err   error
}

func (f *fakeRegenerator) RegenerateToken(ctx context.Context) (string, error) {
	f.calls.Add(1)
	return f.token, f.err
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []types.HistoryEntry
}

func (m *memoryRecorder) Record(entry types.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func ipEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSession_FinalURL(t *testing.T) {
	s := NewSession(types.EndpointData{
		Method: "get",
		URL:    "https://api.x.com/users/{id}/files/{name}",
		PathParameters: []types.Parameter{
			{Name: "id", Value: "42"},
			{Name: "name", Value: "a b/c"},
		},
		Parameters: []types.Parameter{
			{Name: "q", Value: "x y"},
			{Name: "empty", Value: ""},
			{Name: "a", Value: "1"},
		},
	})

	if s.Method != "GET" {
		t.Errorf("Expected upper-cased method, got %s", s.Method)
	}

	want := "https://api.x.com/users/42/files/a%20b%2Fc?a=1&q=x+y"
	if got := s.FinalURL(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	s.URL = "https://api.x.com/search?lang=en"
	s.QueryParams = map[string]string{"q": "go"}
	if got := s.FinalURL(); got != "https://api.x.com/search?lang=en&q=go" {
		t.Errorf("Expected '&' separator, got %s", got)
	}
}

func TestNewSession_CopiesEndpoint(t *testing.T) {
	endpoint := types.EndpointData{
		ID:      "users-get-user",
		Method:  "POST",
		URL:     "https://api.x.com/users",
		Headers: []types.Header{{Name: "X-Key", Value: "abc"}, {Name: "Off", Value: "1", Disabled: true}},
		Body:    `{"a":1}`,
	}
	s := NewSession(endpoint)

	if _, ok := s.Headers["Off"]; ok {
		t.Error("Expected disabled header to be skipped")
	}

	s.Headers["X-Key"] = "changed"
	s.URL = "https://other"
	if endpoint.Headers[0].Value != "abc" || endpoint.URL != "https://api.x.com/users" {
		t.Error("Expected source endpoint to be untouched")
	}

	clone := s.Clone()
	clone.Headers["X-Key"] = "clone"
	if s.Headers["X-Key"] != "changed" {
		t.Error("Expected clone to own its headers")
	}
}

func TestSession_SetBearer(t *testing.T) {
	s := &Session{Headers: map[string]string{"authorization": "Bearer old"}}
	s.SetBearer("new")

	if len(s.Headers) != 1 || s.Headers["Authorization"] != "Bearer new" {
		t.Errorf("Expected single replaced Authorization header, got %v", s.Headers)
	}
}

func TestRunner_Execute(t *testing.T) {
	var gotBody string
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7}`))
	}))
	defer server.Close()

	recorder := &memoryRecorder{}
	r := &Runner{Recorder: recorder}

	s := NewSession(types.EndpointData{ID: "orders-create", Method: "POST", URL: server.URL + "/orders", Body: `{"sku":"a"}`})
	s.Environment = "Prod"

	outcome, err := r.Execute(context.Background(), s)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if gotMethod != "POST" || gotBody != `{"sku":"a"}` {
		t.Errorf("Expected POST with body, got %s %q", gotMethod, gotBody)
	}
	if outcome.Status != 201 || outcome.StatusText != "Created" {
		t.Errorf("Expected 201 Created, got %d %s", outcome.Status, outcome.StatusText)
	}
	data, ok := outcome.Data.(map[string]any)
	if !ok || data["id"] != float64(7) {
		t.Errorf("Expected decoded JSON data, got %#v", outcome.Data)
	}

	if len(recorder.entries) != 1 {
		t.Fatalf("Expected one history entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.EndpointID != "orders-create" || entry.Environment != "Prod" || entry.ResponseStatus != 201 {
		t.Errorf("Unexpected history entry %+v", entry)
	}
}

func TestRunner_Execute_GETDropsBody(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte("plain"))
	}))
	defer server.Close()

	r := &Runner{}
	outcome, err := r.Execute(context.Background(), &Session{Method: "GET", URL: server.URL, Body: "ignored"})
	if err != nil {
		t.Fatal(err)
	}
	if gotBody != "" {
		t.Errorf("Expected no body on GET, got %q", gotBody)
	}
	if outcome.Data != nil {
		t.Errorf("Expected no decoded data for text response, got %v", outcome.Data)
	}
	if outcome.Body != "plain" {
		t.Errorf("Expected raw body, got %q", outcome.Body)
	}
}

func TestRunner_Execute_TransportError(t *testing.T) {
	r := &Runner{}
	outcome, err := r.Execute(context.Background(), &Session{Method: "GET", URL: "http://127.0.0.1:1/unreachable"})
	if err != nil {
		t.Fatalf("Expected transport errors in the outcome, got %v", err)
	}
	if outcome.Error == "" {
		t.Error("Expected outcome error message")
	}
}

func TestRunner_IPRejection_NoCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"IP 203.0.113.7 not whitelisted"}`))
	}))
	defer server.Close()

	regen := &fakeRegenerator{token: "unused"}
	r := &Runner{
		Regenerator: regen,
		Session:     session.NewManager(store.NewMemoryStore()),
		IPEchoURL:   ipEchoServer(t).URL,
	}

	outcome, err := r.Execute(context.Background(), &Session{Method: "GET", URL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	if regen.calls.Load() != 0 {
		t.Errorf("Expected no regeneration without credentials, got %d calls", regen.calls.Load())
	}
	if outcome.IPError == nil {
		t.Fatal("Expected IPError")
	}
	if outcome.IPError.PublicIP != "203.0.113.7" {
		t.Errorf("Expected public IP from echo service, got %q", outcome.IPError.PublicIP)
	}
	if !strings.Contains(outcome.IPError.Message, "not whitelisted") {
		t.Errorf("Expected backend message, got %q", outcome.IPError.Message)
	}
	if outcome.IPError.Hint == "" {
		t.Error("Expected whitelist hint")
	}
	if outcome.Retried {
		t.Error("Expected no retry")
	}
}

func TestRunner_IPRejection_RegeneratesAndRetries(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Not authorized IP"}`))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	sess := session.NewManager(store.NewMemoryStore())
	sess.AddCredential(types.Credential{ClientID: "cid", ClientSecret: "secret"})

	regen := &fakeRegenerator{token: "fresh"}
	r := &Runner{Regenerator: regen, Session: sess}

	original := &Session{Method: "GET", URL: server.URL, Headers: map[string]string{"Authorization": "Bearer stale"}}
	outcome, err := r.Execute(context.Background(), original)
	if err != nil {
		t.Fatal(err)
	}

	if regen.calls.Load() != 1 {
		t.Errorf("Expected one regeneration, got %d", regen.calls.Load())
	}
	if requests.Load() != 2 {
		t.Errorf("Expected exactly one retry, got %d requests", requests.Load())
	}
	if !outcome.Retried || outcome.Status != 200 || outcome.IPError != nil {
		t.Errorf("Expected successful retry, got %+v", outcome)
	}
	if sess.APIToken() != "fresh" {
		t.Errorf("Expected new token to be stored, got %q", sess.APIToken())
	}
	if original.Headers["Authorization"] != "Bearer stale" {
		t.Error("Expected caller's session to stay untouched")
	}
}

func TestRunner_IPRejection_RetryBounded(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"IP not whitelisted"}`))
	}))
	defer server.Close()

	sess := session.NewManager(store.NewMemoryStore())
	sess.AddCredential(types.Credential{ClientID: "cid", ClientSecret: "secret"})

	r := &Runner{Regenerator: &fakeRegenerator{token: "fresh"}, Session: sess}
	outcome, err := r.Execute(context.Background(), &Session{Method: "GET", URL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	if requests.Load() != 2 {
		t.Errorf("Expected the retry to be bounded to one, got %d requests", requests.Load())
	}
	if !outcome.Retried || outcome.IPError == nil {
		t.Errorf("Expected retried outcome with IPError, got %+v", outcome)
	}
}

func TestRunner_IPRejection_RegenerationFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"IP not whitelisted"}`))
	}))
	defer server.Close()

	sess := session.NewManager(store.NewMemoryStore())
	sess.AddCredential(types.Credential{ClientID: "cid", ClientSecret: "secret"})

	regen := &fakeRegenerator{err: errors.New("token endpoint down")}
	r := &Runner{Regenerator: regen, Session: sess}

	outcome, err := r.Execute(context.Background(), &Session{Method: "GET", URL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	if regen.calls.Load() != 1 {
		t.Errorf("Expected one regeneration attempt, got %d", regen.calls.Load())
	}
	if outcome.Retried || outcome.IPError == nil {
		t.Errorf("Expected IPError without retry, got %+v", outcome)
	}
}

func TestRunner_ForbiddenWithoutIPMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"insufficient scope"}`))
	}))
	defer server.Close()

	regen := &fakeRegenerator{token: "x"}
	r := &Runner{Regenerator: regen}
	outcome, _ := r.Execute(context.Background(), &Session{Method: "GET", URL: server.URL})

	if outcome.IPError != nil || regen.calls.Load() != 0 {
		t.Errorf("Expected plain 403 to pass through, got %+v", outcome)
	}
}

func TestPretty(t *testing.T) {
	if got := Pretty(`{"a":1}`); got != "{\n  \"a\": 1\n}" {
		t.Errorf("Unexpected pretty output %q", got)
	}
	if got := Pretty("not json"); got != "not json" {
		t.Errorf("Expected non-JSON to pass through, got %q", got)
	}
}
