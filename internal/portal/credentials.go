package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/studiowebux/docportal/internal/types"
)

// ClientRecord is the user's API client row
type ClientRecord struct {
	ID        string   `json:"id"`
	IPs       []string `json:"ips"`
	Webhook   string   `json:"webhook"`
	Active    bool     `json:"webhook_active"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type clientRows struct {
	Clients []ClientRecord `json:"whatsub_b2b_client"`
}

// fetchClient runs a query keyed by user id and returns the first client row
func (s *Service) fetchClient(ctx context.Context, query string) (ClientRecord, bool, error) {
	token, userID, err := s.user()
	if err != nil {
		return ClientRecord{}, false, err
	}

	var out clientRows
	if err := s.api.Do(ctx, query, map[string]any{"user_id": userID}, token, &out); err != nil {
		return ClientRecord{}, false, err
	}
	if len(out.Clients) == 0 {
		return ClientRecord{}, false, nil
	}
	return out.Clients[0], true, nil
}

// HasClient reports whether the user already generated an API client. The
// client row becomes the active organization.
func (s *Service) HasClient(ctx context.Context) (bool, error) {
	client, ok, err := s.fetchClient(ctx, getClientQuery)
	if err != nil {
		return false, fmt.Errorf("failed to check API client: %w", err)
	}
	if ok {
		if err := s.session.SetOrganization(types.Organization{ID: client.ID, Role: "b2b_client"}); err != nil {
			return true, err
		}
	}
	return ok, nil
}

// CreateClient generates a new client id/secret pair and saves it locally.
// The secret is only ever returned by this call.
func (s *Service) CreateClient(ctx context.Context, label string) (types.Credential, error) {
	token, userID, err := s.user()
	if err != nil {
		return types.Credential{}, err
	}

	var out struct {
		NewClient struct {
			AffectedRows int    `json:"affected_rows"`
			ClientID     string `json:"clientId"`
			ClientSecret string `json:"clientSecret"`
		} `json:"newB2BClient"`
	}
	if err := s.api.Do(ctx, newClientMutation, map[string]any{"user_id": userID}, token, &out); err != nil {
		return types.Credential{}, fmt.Errorf("failed to generate API client: %w", err)
	}
	if out.NewClient.ClientID == "" {
		return types.Credential{}, fmt.Errorf("failed to generate API client: empty client id")
	}

	cred := types.Credential{
		ClientID:     out.NewClient.ClientID,
		ClientSecret: out.NewClient.ClientSecret,
		Label:        label,
	}
	if err := s.session.AddCredential(cred); err != nil {
		return types.Credential{}, err
	}
	return cred, nil
}

// RequestToken exchanges a client id/secret pair for an API bearer token
func (s *Service) RequestToken(ctx context.Context, cred types.Credential) (string, error) {
	if s.tokenEndpoint == "" {
		return "", fmt.Errorf("token endpoint is not configured")
	}
	if cred.ClientID == "" || cred.ClientSecret == "" {
		return "", fmt.Errorf("client id and secret are required")
	}

	var out struct {
		AuthToken string `json:"authToken"`
		Token     string `json:"token"`
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"clientId": cred.ClientID, "clientSecret": cred.ClientSecret}).
		SetResult(&out).
		Post(s.tokenEndpoint)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to get token: %s", strings.TrimSpace(resp.Status()))
	}

	token := out.AuthToken
	if token == "" {
		token = out.Token
	}
	if token == "" {
		return "", fmt.Errorf("failed to get token: response carried no token")
	}
	return token, nil
}

// RegenerateToken mints a bearer token from the most recently saved
// credential and caches it for try-it-out requests
func (s *Service) RegenerateToken(ctx context.Context) (string, error) {
	cred, ok, err := s.session.LatestCredential()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoCredentials
	}

	token, err := s.RequestToken(ctx, cred)
	if err != nil {
		return "", err
	}
	if err := s.session.SetAPIToken(token); err != nil {
		return "", err
	}
	return token, nil
}
