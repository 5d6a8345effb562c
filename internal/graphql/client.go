// Package graphql is a minimal client for the portal's GraphQL backend.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

// Error is returned when the backend answers with a non-empty errors array.
// Message is the first error's message.
type Error struct {
	Message    string
	Messages   []string
	StatusCode int
}

func (e *Error) Error() string {
	return "graphql: " + e.Message
}

// request is the wire shape of a GraphQL call
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// response is the wire shape of a GraphQL answer
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client sends queries to one GraphQL endpoint
type Client struct {
	http     *resty.Client
	endpoint string
}

// NewClient creates a client for endpoint
func NewClient(endpoint string, timeout time.Duration) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: client, endpoint: endpoint}
}

// Endpoint returns the URL queries are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Do posts a query and decodes the data member into out (which may be nil).
// A nil token sends the request unauthenticated.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, token *oauth2.Token, out any) error {
	if c.endpoint == "" {
		return fmt.Errorf("graphql endpoint is not configured")
	}

	if variables == nil {
		variables = map[string]any{}
	}

	req := c.http.R().
		SetContext(ctx).
		SetBody(request{Query: query, Variables: variables})

	if token != nil && token.AccessToken != "" {
		req.SetHeader("Authorization", token.Type()+" "+token.AccessToken)
	}

	resp, err := req.Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to send graphql request: %w", err)
	}

	var envelope response
	decodeErr := json.Unmarshal(resp.Body(), &envelope)

	if decodeErr == nil && len(envelope.Errors) > 0 {
		gqlErr := &Error{Message: envelope.Errors[0].Message, StatusCode: resp.StatusCode()}
		for _, e := range envelope.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return gqlErr
	}

	if resp.IsError() {
		return fmt.Errorf("HTTP error! status: %d", resp.StatusCode())
	}

	if decodeErr != nil {
		return fmt.Errorf("failed to parse graphql response: %w", decodeErr)
	}

	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data: %w", err)
	}
	return nil
}

// Bearer wraps a raw access token for Do
func Bearer(accessToken string) *oauth2.Token {
	if accessToken == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
}
