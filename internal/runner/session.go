package runner

import (
	"maps"
	"net/url"
	"sort"
	"strings"

	"github.com/studiowebux/docportal/internal/types"
)

// Session holds the editable request state for one try-it-out run. It owns
// copies of everything it was built from.
type Session struct {
	EndpointID  string
	Environment string
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string]string
	PathParams  map[string]string
	Body        string
}

// NewSession seeds a session from an endpoint. The endpoint is not retained.
func NewSession(endpoint types.EndpointData) *Session {
	method := strings.ToUpper(endpoint.Method)
	if method == "" {
		method = "GET"
	}

	path := make(map[string]string, len(endpoint.PathParameters))
	for _, p := range endpoint.PathParameters {
		if p.Disabled || p.Name == "" {
			continue
		}
		path[p.Name] = p.Value
	}

	return &Session{
		EndpointID:  endpoint.ID,
		Method:      method,
		URL:         endpoint.URL,
		Headers:     endpoint.HeaderMap(),
		QueryParams: endpoint.QueryMap(),
		PathParams:  path,
		Body:        endpoint.Body,
	}
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	c.Headers = maps.Clone(s.Headers)
	c.QueryParams = maps.Clone(s.QueryParams)
	c.PathParams = maps.Clone(s.PathParams)
	return &c
}

// SetBearer sets the Authorization header to a bearer token
func (s *Session) SetBearer(token string) {
	if s.Headers == nil {
		s.Headers = make(map[string]string)
	}
	for name := range s.Headers {
		if strings.EqualFold(name, "Authorization") {
			delete(s.Headers, name)
		}
	}
	s.Headers["Authorization"] = "Bearer " + token
}

// HasBody reports whether the request carries a body
func (s *Session) HasBody() bool {
	return s.Body != "" && s.Method != "GET" && s.Method != "HEAD"
}

// FinalURL substitutes {name} path placeholders and appends non-empty query
// parameters in key order
func (s *Session) FinalURL() string {
	final := s.URL
	for name, value := range s.PathParams {
		final = strings.ReplaceAll(final, "{"+name+"}", url.PathEscape(value))
	}

	keys := make([]string, 0, len(s.QueryParams))
	for k, v := range s.QueryParams {
		if k != "" && v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return final
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(s.QueryParams[k]))
	}

	separator := "?"
	if strings.Contains(final, "?") {
		separator = "&"
	}
	return final + separator + strings.Join(pairs, "&")
}
