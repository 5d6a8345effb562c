package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/studiowebux/docportal/internal/config"
	"github.com/studiowebux/docportal/internal/session"
	"github.com/studiowebux/docportal/internal/store"
	"github.com/studiowebux/docportal/internal/types"
)

// fakeBackend answers GraphQL operations by matching the operation name
type fakeBackend struct {
	mu       sync.Mutex
	ips      []string
	webhook  string
	active   bool
	calls    []string
	lastVars map[string]any
	auth     []string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	f.lastVars = req.Variables
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	reply := func(data string) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":` + data + `}`))
	}

	switch {
	case strings.Contains(req.Query, "mutation Register"):
		f.calls = append(f.calls, "register")
		reply(`{"registerWithoutPasswordV2":{"request_id":"r1","status":"sent"}}`)
	case strings.Contains(req.Query, "mutation VerifyOTP"):
		f.calls = append(f.calls, "verify")
		if req.Variables["otp1"] != "1234" {
			reply(`{"verifyOTPV2":{"auth_token":"","status":"invalid"}}`)
			return
		}
		reply(`{"verifyOTPV2":{"auth_token":"at","refresh_token":"rt","id":"u1","status":"success"}}`)
	case strings.Contains(req.Query, "mutation RefreshToken"):
		f.calls = append(f.calls, "refresh")
		if req.Variables["refresh_token"] != "rt" {
			reply(`{"refreshToken":{"status":"failed"}}`)
			return
		}
		reply(`{"refreshToken":{"auth_token":"at2","refresh_token":"rt2","status":"success","id":"u1"}}`)
	case strings.Contains(req.Query, "mutation Logout"):
		f.calls = append(f.calls, "logout")
		w.WriteHeader(http.StatusInternalServerError)
	case strings.Contains(req.Query, "query GetAPIToken"):
		reply(`{"whatsub_b2b_client":[{"id":"client-row"}]}`)
	case strings.Contains(req.Query, "mutation GenerateAPIToken"):
		reply(`{"newB2BClient":{"affected_rows":1,"clientId":"cid","clientSecret":"secret"}}`)
	case strings.Contains(req.Query, "query GetWhitelistedIPs"):
		ips, _ := json.Marshal(f.ips)
		reply(`{"whatsub_b2b_client":[{"ips":` + string(ips) + `}]}`)
	case strings.Contains(req.Query, "mutation UpdateWhitelistedIPs"):
		f.ips = nil
		for _, ip := range req.Variables["ips"].([]any) {
			f.ips = append(f.ips, ip.(string))
		}
		reply(`{"update_whatsub_b2b_client":{"affected_rows":1}}`)
	case strings.Contains(req.Query, "query GetWebhookConfig"):
		hook, _ := json.Marshal(map[string]any{"webhook": f.webhook, "webhook_active": f.active})
		reply(`{"whatsub_b2b_client":[` + string(hook) + `]}`)
	case strings.Contains(req.Query, "mutation UpdateWebhookConfig"):
		f.webhook = req.Variables["webhook"].(string)
		f.active = req.Variables["webhook_active"].(bool)
		reply(`{"update_whatsub_b2b_client":{"affected_rows":1}}`)
	case strings.Contains(req.Query, "query DocumentationByPath"):
		if req.Variables["path"] != "payments" {
			reply(`{"karlo_documentation":[]}`)
			return
		}
		reply(`{"karlo_documentation":[{"path":"payments","name":"Payments","docs":"name: Payments"}]}`)
	case strings.Contains(req.Query, "query DocumentationList"):
		reply(`{"karlo_documentation":[{"path":"payments","name":"Payments","allowed_urls":"shop.example"},{"path":"orders","name":"Orders","allowed_urls":"shop.example"}]}`)
	default:
		w.Write([]byte(`{"errors":[{"message":"unknown operation"}]}`))
	}
}

func newTestService(t *testing.T, backend http.Handler, tokenHandler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.GraphQLEndpoint = server.URL
	cfg.AuthEndpoint = server.URL
	cfg.RequestTimeout = 5 * time.Second

	if tokenHandler != nil {
		tokenServer := httptest.NewServer(tokenHandler)
		t.Cleanup(tokenServer.Close)
		cfg.TokenEndpoint = tokenServer.URL
	}

	return New(cfg, session.NewManager(store.NewMemoryStore()))
}

func login(t *testing.T, s *Service) {
	t.Helper()
	if _, err := s.VerifyOTP(context.Background(), "911234567890", "1234"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"911234567890":   "+911234567890",
		"+911234567890":  "+911234567890",
		" +91 1234-567 ": "+911234567",
	}
	for in, want := range tests {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestService_LoginFlow(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestService(t, backend, nil)
	ctx := context.Background()

	req, err := s.SendOTP(ctx, "911234567890")
	if err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	if req.RequestID != "r1" {
		t.Errorf("Expected request id r1, got %q", req.RequestID)
	}
	if backend.lastVars["phone"] != "+911234567890" {
		t.Errorf("Expected normalized phone, got %v", backend.lastVars["phone"])
	}

	if _, err := s.VerifyOTP(ctx, "911234567890", "0000"); err == nil {
		t.Error("Expected wrong OTP to fail")
	}
	if s.Session().IsAuthenticated() {
		t.Error("Expected failed verification not to save tokens")
	}

	tokens, err := s.VerifyOTP(ctx, "911234567890", "1234")
	if err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
	if tokens.AccessToken != "at" || tokens.UserID != "u1" {
		t.Errorf("Unexpected tokens %+v", tokens)
	}
	if !s.Session().IsAuthenticated() {
		t.Error("Expected session to be authenticated")
	}

	refreshed, err := s.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.AccessToken != "at2" || refreshed.RefreshToken != "rt2" {
		t.Errorf("Expected rotated tokens, got %+v", refreshed)
	}

	// Logout clears local state even though the backend errors
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if s.Session().IsAuthenticated() {
		t.Error("Expected logout to clear the session")
	}
}

func TestService_RefreshFailureClearsSession(t *testing.T) {
	s := newTestService(t, &fakeBackend{}, nil)
	s.Session().SaveTokens(types.AuthTokens{AccessToken: "at", RefreshToken: "stale", UserID: "u1"})

	if _, err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Expected refresh to fail")
	}
	if s.Session().IsAuthenticated() {
		t.Error("Expected failed refresh to log out")
	}
}

func TestService_RequiresLogin(t *testing.T) {
	s := newTestService(t, &fakeBackend{}, nil)

	if _, err := s.Whitelist(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestService_CreateClientAndToken(t *testing.T) {
	var tokenRequests int
	tokenHandler := func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["clientId"] != "cid" || body["clientSecret"] != "secret" {
			t.Errorf("Unexpected token request %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"api-token"}`))
	}

	backend := &fakeBackend{}
	s := newTestService(t, backend, tokenHandler)
	ctx := context.Background()

	if _, err := s.RegenerateToken(ctx); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials, got %v", err)
	}

	login(t, s)

	ok, err := s.HasClient(ctx)
	if err != nil || !ok {
		t.Fatalf("Expected existing client, got ok=%v err=%v", ok, err)
	}
	if org, ok := s.Session().Organization(); !ok || org.ID != "client-row" {
		t.Errorf("Expected organization from client row, got %+v", org)
	}

	cred, err := s.CreateClient(ctx, "ci")
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if cred.ClientID != "cid" || cred.Label != "ci" {
		t.Errorf("Unexpected credential %+v", cred)
	}
	if got := backend.auth[len(backend.auth)-1]; got != "Bearer at" {
		t.Errorf("Expected bearer auth on portal calls, got %q", got)
	}

	token, err := s.RegenerateToken(ctx)
	if err != nil {
		t.Fatalf("RegenerateToken failed: %v", err)
	}
	if token != "api-token" || s.Session().APIToken() != "api-token" {
		t.Errorf("Expected token to be cached, got %q / %q", token, s.Session().APIToken())
	}
	if tokenRequests != 1 {
		t.Errorf("Expected one token request, got %d", tokenRequests)
	}
}

func TestService_RequestToken_Error(t *testing.T) {
	s := newTestService(t, &fakeBackend{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := s.RequestToken(context.Background(), types.Credential{ClientID: "a", ClientSecret: "b"})
	if err == nil {
		t.Error("Expected error for rejected credentials")
	}
}

func TestService_Whitelist(t *testing.T) {
	backend := &fakeBackend{ips: []string{"1.2.3.4"}}
	s := newTestService(t, backend, nil)
	ctx := context.Background()
	login(t, s)

	if _, err := s.AddIP(ctx, "not-an-ip"); err == nil {
		t.Error("Expected invalid IP to be rejected")
	}
	if _, err := s.AddIP(ctx, "1.2.3.4"); err == nil || !strings.Contains(err.Error(), "already whitelisted") {
		t.Errorf("Expected duplicate error, got %v", err)
	}

	ips, err := s.AddIP(ctx, "2001:db8::1")
	if err != nil {
		t.Fatalf("AddIP failed: %v", err)
	}
	if len(ips) != 2 || len(backend.ips) != 2 {
		t.Errorf("Expected 2 IPs, got %v (backend %v)", ips, backend.ips)
	}

	ips, err = s.RemoveIP(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("RemoveIP failed: %v", err)
	}
	if len(ips) != 1 || ips[0] != "2001:db8::1" {
		t.Errorf("Unexpected whitelist %v", ips)
	}
	if _, err := s.RemoveIP(ctx, "9.9.9.9"); err == nil {
		t.Error("Expected removing unknown IP to fail")
	}
}

func TestService_Webhook(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestService(t, backend, nil)
	ctx := context.Background()
	login(t, s)

	if err := s.SetWebhook(ctx, Webhook{URL: "not a url"}); err == nil {
		t.Error("Expected invalid URL to be rejected")
	}
	if err := s.SetWebhook(ctx, Webhook{URL: ""}); err == nil {
		t.Error("Expected empty URL to be rejected")
	}

	if err := s.SetWebhook(ctx, Webhook{URL: "https://hooks.example.com/in", Active: true}); err != nil {
		t.Fatalf("SetWebhook failed: %v", err)
	}

	hook, err := s.Webhook(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if hook.URL != "https://hooks.example.com/in" || !hook.Active {
		t.Errorf("Unexpected webhook %+v", hook)
	}
}

func TestService_FetchDocs(t *testing.T) {
	s := newTestService(t, &fakeBackend{}, nil)

	doc, err := s.FetchDocs(context.Background(), "payments")
	if err != nil {
		t.Fatalf("FetchDocs failed: %v", err)
	}
	if doc.Name != "Payments" || doc.Docs == "" {
		t.Errorf("Unexpected document %+v", doc)
	}

	if _, err := s.FetchDocs(context.Background(), "missing"); err == nil {
		t.Error("Expected error for unknown path")
	}
}

func TestService_ListDocs(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestService(t, backend, nil)

	list, err := s.ListDocs(context.Background(), "shop.example")
	if err != nil {
		t.Fatalf("ListDocs failed: %v", err)
	}
	if len(list) != 2 || list[1].Path != "orders" {
		t.Errorf("Unexpected documents %+v", list)
	}
	if backend.lastVars["pattern"] != "%shop.example%" {
		t.Errorf("Expected ilike pattern, got %v", backend.lastVars["pattern"])
	}
}
