package session

import (
	"testing"
	"time"

	"github.com/studiowebux/docportal/internal/store"
	"github.com/studiowebux/docportal/internal/types"
)

func newTestManager(now time.Time) *Manager {
	m := NewManager(store.NewMemoryStore())
	m.now = func() time.Time { return now }
	return m
}

func TestManager_ActiveEnvironment(t *testing.T) {
	m := newTestManager(time.Now())

	if got := m.ActiveEnvironment(); got != "" {
		t.Errorf("Expected empty environment, got %q", got)
	}
	if err := m.SetActiveEnvironment("Prod"); err != nil {
		t.Fatal(err)
	}
	if got := m.ActiveEnvironment(); got != "Prod" {
		t.Errorf("Expected Prod, got %q", got)
	}
}

func TestManager_Tokens(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(now)

	if m.IsAuthenticated() {
		t.Error("Expected not authenticated initially")
	}

	if err := m.SaveTokens(types.AuthTokens{AccessToken: "a", RefreshToken: "r", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}

	tokens, ok, err := m.Tokens()
	if err != nil || !ok {
		t.Fatalf("Expected saved tokens, got ok=%v err=%v", ok, err)
	}
	if !tokens.IssuedAt.Equal(now) {
		t.Errorf("Expected issuedAt %v, got %v", now, tokens.IssuedAt)
	}
	if tokens.ExpiresIn != int64(TokenLifetime/time.Second) {
		t.Errorf("Expected default lifetime, got %d", tokens.ExpiresIn)
	}
	if !m.IsAuthenticated() {
		t.Error("Expected authenticated")
	}
	if m.NeedsRefresh() {
		t.Error("Expected fresh token not to need refresh")
	}

	m.now = func() time.Time { return now.Add(23 * time.Hour) }
	if !m.NeedsRefresh() {
		t.Error("Expected token to need refresh close to expiry")
	}

	m.now = func() time.Time { return now.Add(25 * time.Hour) }
	if m.IsAuthenticated() {
		t.Error("Expected expired token not to count as authenticated")
	}

	if err := m.ClearTokens(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.Tokens(); ok {
		t.Error("Expected tokens to be cleared")
	}
}

func TestManager_AddCredential_ReadsLatest(t *testing.T) {
	s := store.NewMemoryStore()
	first := NewManager(s)
	second := NewManager(s)

	if err := first.AddCredential(types.Credential{ClientID: "a", ClientSecret: "1"}); err != nil {
		t.Fatal(err)
	}
	// second writes after first without reloading anything itself
	if err := second.AddCredential(types.Credential{ClientID: "b", ClientSecret: "2"}); err != nil {
		t.Fatal(err)
	}

	creds, err := first.Credentials()
	if err != nil {
		t.Fatal(err)
	}
	if len(creds) != 2 {
		t.Fatalf("Expected both credentials to survive, got %+v", creds)
	}

	latest, ok, _ := first.LatestCredential()
	if !ok || latest.ClientID != "b" {
		t.Errorf("Expected latest credential 'b', got %+v", latest)
	}
}

func TestManager_AddCredential_ReplacesSameClient(t *testing.T) {
	m := newTestManager(time.Now())

	m.AddCredential(types.Credential{ClientID: "a", ClientSecret: "old"})
	m.AddCredential(types.Credential{ClientID: "b", ClientSecret: "x"})
	m.AddCredential(types.Credential{ClientID: "a", ClientSecret: "new"})

	creds, _ := m.Credentials()
	if len(creds) != 2 {
		t.Fatalf("Expected 2 credentials, got %d", len(creds))
	}
	if creds[1].ClientID != "a" || creds[1].ClientSecret != "new" {
		t.Errorf("Expected replaced credential last, got %+v", creds[1])
	}

	if err := m.AddCredential(types.Credential{}); err == nil {
		t.Error("Expected empty client id to be rejected")
	}
}

func TestManager_RemoveCredential(t *testing.T) {
	m := newTestManager(time.Now())
	m.AddCredential(types.Credential{ClientID: "a"})

	if err := m.RemoveCredential("a"); err != nil {
		t.Fatal(err)
	}
	if err := m.RemoveCredential("a"); err == nil {
		t.Error("Expected error removing unknown credential")
	}
	if _, ok, _ := m.LatestCredential(); ok {
		t.Error("Expected no credentials left")
	}
}

func TestManager_APITokenAndOrganization(t *testing.T) {
	m := newTestManager(time.Now())

	if m.APIToken() != "" {
		t.Error("Expected no API token initially")
	}
	m.SetAPIToken("tok")
	if m.APIToken() != "tok" {
		t.Errorf("Expected 'tok', got %q", m.APIToken())
	}

	if _, ok := m.Organization(); ok {
		t.Error("Expected no organization initially")
	}
	m.SetOrganization(types.Organization{ID: "o1", Name: "Acme"})
	org, ok := m.Organization()
	if !ok || org.Name != "Acme" {
		t.Errorf("Expected Acme, got %+v", org)
	}
}
