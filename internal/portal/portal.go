// Package portal talks to the developer portal backend: OTP login, API
// client credentials, IP whitelists, webhooks and hosted documentation.
package portal

import (
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"github.com/studiowebux/docportal/internal/config"
	"github.com/studiowebux/docportal/internal/graphql"
	"github.com/studiowebux/docportal/internal/session"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a logged-in user
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrNoCredentials is returned when no client credentials are saved
	ErrNoCredentials = errors.New("no saved client credentials")
	// ErrNoClient is returned when the user has not generated an API client yet
	ErrNoClient = errors.New("no API client found, generate one first")
)

// Service groups the portal operations around one session
type Service struct {
	api           *graphql.Client
	auth          *graphql.Client
	http          *resty.Client
	tokenEndpoint string
	session       *session.Manager
}

// New creates a portal service from the loaded configuration
func New(cfg *config.Config, sess *session.Manager) *Service {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	authEndpoint := cfg.AuthEndpoint
	if authEndpoint == "" {
		authEndpoint = cfg.GraphQLEndpoint
	}

	return &Service{
		api:           graphql.NewClient(cfg.GraphQLEndpoint, timeout),
		auth:          graphql.NewClient(authEndpoint, timeout),
		http:          resty.New().SetTimeout(timeout),
		tokenEndpoint: cfg.TokenEndpoint,
		session:       sess,
	}
}

// Session returns the session the service reads and writes
func (s *Service) Session() *session.Manager {
	return s.session
}

// user returns the bearer token and user id of the logged-in user
func (s *Service) user() (*oauth2.Token, string, error) {
	tokens, ok, err := s.session.Tokens()
	if err != nil {
		return nil, "", err
	}
	if !ok || tokens.UserID == "" {
		return nil, "", ErrNotAuthenticated
	}
	return graphql.Bearer(tokens.AccessToken), tokens.UserID, nil
}
