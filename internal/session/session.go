package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/studiowebux/docportal/internal/store"
	"github.com/studiowebux/docportal/internal/types"
)

const (
	// TokenLifetime is how long a portal session token stays valid
	TokenLifetime = 24 * time.Hour
	// RefreshBeforeExpiry is how early a session token is refreshed
	RefreshBeforeExpiry = 2 * time.Hour
)

// Manager exposes typed access to the persisted portal state
type Manager struct {
	store store.Store
	now   func() time.Time
}

// NewManager creates a session manager over a store
func NewManager(s store.Store) *Manager {
	return &Manager{store: s, now: time.Now}
}

// Store returns the underlying store
func (m *Manager) Store() store.Store {
	return m.store
}

// ActiveEnvironment returns the saved environment name, or "" when unset
func (m *Manager) ActiveEnvironment() string {
	name, err := m.store.Get(store.KeyEnvironment)
	if err != nil {
		return ""
	}
	return name
}

// SetActiveEnvironment saves the selected environment name
func (m *Manager) SetActiveEnvironment(name string) error {
	if err := m.store.Set(store.KeyEnvironment, name); err != nil {
		return fmt.Errorf("failed to save environment: %w", err)
	}
	return nil
}

// Tokens returns the saved session tokens. ok is false when nobody is logged in.
func (m *Manager) Tokens() (tokens types.AuthTokens, ok bool, err error) {
	if err := store.GetJSON(m.store, store.KeyAuthTokens, &tokens); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.AuthTokens{}, false, nil
		}
		return types.AuthTokens{}, false, err
	}

	if tokens.IssuedAt.IsZero() {
		if raw, err := m.store.Get(store.KeyAuthIssuedAt); err == nil {
			if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
				tokens.IssuedAt = time.UnixMilli(ms)
			}
		}
	}

	return tokens, tokens.AccessToken != "", nil
}

// SaveTokens stores session tokens along with their issuance time
func (m *Manager) SaveTokens(tokens types.AuthTokens) error {
	if tokens.IssuedAt.IsZero() {
		tokens.IssuedAt = m.now()
	}
	if tokens.ExpiresIn == 0 {
		tokens.ExpiresIn = int64(TokenLifetime / time.Second)
	}

	if err := store.SetJSON(m.store, store.KeyAuthTokens, tokens); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	issuedAt := strconv.FormatInt(tokens.IssuedAt.UnixMilli(), 10)
	if err := m.store.Set(store.KeyAuthIssuedAt, issuedAt); err != nil {
		return fmt.Errorf("failed to save token timestamp: %w", err)
	}
	return nil
}

// ClearTokens forgets the portal session
func (m *Manager) ClearTokens() error {
	for _, key := range []string{store.KeyAuthTokens, store.KeyAuthIssuedAt, store.KeyActiveOrg} {
		if err := m.store.Remove(key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

// IsAuthenticated reports whether a non-expired session token is saved
func (m *Manager) IsAuthenticated() bool {
	tokens, ok, err := m.Tokens()
	if err != nil || !ok {
		return false
	}
	return !tokens.Expired(m.now())
}

// NeedsRefresh reports whether the session token is close enough to expiry
// to be refreshed
func (m *Manager) NeedsRefresh() bool {
	tokens, ok, err := m.Tokens()
	if err != nil || !ok || tokens.RefreshToken == "" {
		return false
	}
	return m.now().Sub(tokens.IssuedAt) >= TokenLifetime-RefreshBeforeExpiry
}

// Credentials returns the saved client credentials, oldest first
func (m *Manager) Credentials() ([]types.Credential, error) {
	var creds []types.Credential
	if err := store.GetJSON(m.store, store.KeyCredentials, &creds); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []types.Credential{}, nil
		}
		return nil, err
	}
	return creds, nil
}

// LatestCredential returns the most recently saved credential
func (m *Manager) LatestCredential() (types.Credential, bool, error) {
	creds, err := m.Credentials()
	if err != nil {
		return types.Credential{}, false, err
	}
	if len(creds) == 0 {
		return types.Credential{}, false, nil
	}
	return creds[len(creds)-1], true, nil
}

// AddCredential appends a credential, replacing any entry with the same
// client id. The list is re-read right before writing so concurrent writers
// lose as little as possible.
func (m *Manager) AddCredential(cred types.Credential) error {
	if cred.ClientID == "" {
		return fmt.Errorf("client id is required")
	}
	if cred.SavedAt.IsZero() {
		cred.SavedAt = m.now()
	}

	creds, err := m.Credentials()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	updated := make([]types.Credential, 0, len(creds)+1)
	for _, c := range creds {
		if c.ClientID != cred.ClientID {
			updated = append(updated, c)
		}
	}
	updated = append(updated, cred)

	if err := store.SetJSON(m.store, store.KeyCredentials, updated); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// RemoveCredential deletes the credential with the given client id
func (m *Manager) RemoveCredential(clientID string) error {
	creds, err := m.Credentials()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	updated := make([]types.Credential, 0, len(creds))
	for _, c := range creds {
		if c.ClientID != clientID {
			updated = append(updated, c)
		}
	}
	if len(updated) == len(creds) {
		return fmt.Errorf("credential not found: %s", clientID)
	}

	if err := store.SetJSON(m.store, store.KeyCredentials, updated); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// APIToken returns the cached bearer token for try-it-out requests
func (m *Manager) APIToken() string {
	token, err := m.store.Get(store.KeyAPIToken)
	if err != nil {
		return ""
	}
	return token
}

// SetAPIToken caches the bearer token for try-it-out requests
func (m *Manager) SetAPIToken(token string) error {
	if err := m.store.Set(store.KeyAPIToken, token); err != nil {
		return fmt.Errorf("failed to save API token: %w", err)
	}
	return nil
}

// Organization returns the last-known active organization
func (m *Manager) Organization() (types.Organization, bool) {
	var org types.Organization
	if err := store.GetJSON(m.store, store.KeyActiveOrg, &org); err != nil {
		return types.Organization{}, false
	}
	return org, org.ID != ""
}

// SetOrganization saves the active organization
func (m *Manager) SetOrganization(org types.Organization) error {
	if err := store.SetJSON(m.store, store.KeyActiveOrg, org); err != nil {
		return fmt.Errorf("failed to save organization: %w", err)
	}
	return nil
}
