package portal

import (
	"context"
	"fmt"
	"net"
	"slices"
	"strings"
)

// Whitelist returns the IP addresses allowed to call the API
func (s *Service) Whitelist(ctx context.Context) ([]string, error) {
	client, ok, err := s.fetchClient(ctx, getWhitelistQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load IP whitelist: %w", err)
	}
	if !ok {
		return nil, ErrNoClient
	}
	if client.IPs == nil {
		return []string{}, nil
	}
	return client.IPs, nil
}

// ValidIP reports whether ip is a literal IPv4 or IPv6 address
func ValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// AddIP appends ip to the whitelist and returns the new list
func (s *Service) AddIP(ctx context.Context, ip string) ([]string, error) {
	ip = strings.TrimSpace(ip)
	if !ValidIP(ip) {
		return nil, fmt.Errorf("invalid IP address format: %q", ip)
	}

	current, err := s.Whitelist(ctx)
	if err != nil {
		return nil, err
	}
	if slices.Contains(current, ip) {
		return nil, fmt.Errorf("IP address already whitelisted: %s", ip)
	}

	updated := append(slices.Clone(current), ip)
	if err := s.setWhitelist(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveIP drops ip from the whitelist and returns the new list
func (s *Service) RemoveIP(ctx context.Context, ip string) ([]string, error) {
	ip = strings.TrimSpace(ip)

	current, err := s.Whitelist(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(current, ip) {
		return nil, fmt.Errorf("IP address not whitelisted: %s", ip)
	}

	updated := slices.DeleteFunc(slices.Clone(current), func(existing string) bool {
		return existing == ip
	})
	if err := s.setWhitelist(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) setWhitelist(ctx context.Context, ips []string) error {
	token, userID, err := s.user()
	if err != nil {
		return err
	}
	vars := map[string]any{"user_id": userID, "ips": ips}
	if err := s.api.Do(ctx, updateWhitelistMutation, vars, token, nil); err != nil {
		return fmt.Errorf("failed to update IP whitelist: %w", err)
	}
	return nil
}
