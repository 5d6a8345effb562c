package portal

import (
	"context"
	"fmt"
)

// Document is a hosted documentation entry
type Document struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Name        string `json:"name"`
	Docs        string `json:"docs"`
	ImageURL    string `json:"image_url,omitempty"`
	Platform    string `json:"platform,omitempty"`
	AllowedURLs string `json:"allowed_urls,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type documentRows struct {
	Documents []Document `json:"karlo_documentation"`
}

// FetchDocs returns the documentation published under path. Docs holds the
// collection YAML.
func (s *Service) FetchDocs(ctx context.Context, path string) (Document, error) {
	var out documentRows
	if err := s.api.Do(ctx, docByPathQuery, map[string]any{"path": path}, nil, &out); err != nil {
		return Document{}, fmt.Errorf("failed to fetch documentation: %w", err)
	}
	if len(out.Documents) == 0 {
		return Document{}, fmt.Errorf("documentation not found: %s", path)
	}
	return out.Documents[0], nil
}

// ListDocs returns the documentation entries published for domain
func (s *Service) ListDocs(ctx context.Context, domain string) ([]Document, error) {
	var out documentRows
	pattern := "%" + domain + "%"
	if err := s.api.Do(ctx, docListQuery, map[string]any{"pattern": pattern}, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list documentation: %w", err)
	}
	return out.Documents, nil
}
