package portal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Webhook is the user's webhook delivery configuration
type Webhook struct {
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Webhook returns the saved webhook configuration
func (s *Service) Webhook(ctx context.Context) (Webhook, error) {
	client, ok, err := s.fetchClient(ctx, getWebhookQuery)
	if err != nil {
		return Webhook{}, fmt.Errorf("failed to load webhook: %w", err)
	}
	if !ok {
		return Webhook{}, ErrNoClient
	}
	return Webhook{URL: client.Webhook, Active: client.Active}, nil
}

// SetWebhook saves the webhook URL and whether deliveries are enabled
func (s *Service) SetWebhook(ctx context.Context, hook Webhook) error {
	hook.URL = strings.TrimSpace(hook.URL)
	if hook.URL == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if u, err := url.Parse(hook.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid webhook URL format: %q", hook.URL)
	}

	token, userID, err := s.user()
	if err != nil {
		return err
	}
	vars := map[string]any{"user_id": userID, "webhook": hook.URL, "webhook_active": hook.Active}
	if err := s.api.Do(ctx, updateWebhookMutation, vars, token, nil); err != nil {
		return fmt.Errorf("failed to update webhook: %w", err)
	}
	return nil
}
