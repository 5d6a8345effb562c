// Package store persists small pieces of portal state (selected environment,
// auth tokens, saved client credentials) behind a key/value interface.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has no value
var ErrNotFound = errors.New("key not found")

// Well-known keys
const (
	KeyEnvironment  = "docs.environment"
	KeyAuthTokens   = "auth.tokens"
	KeyAuthIssuedAt = "auth.issuedAt"
	KeyCredentials  = "apiTest.credentials"
	KeyAPIToken     = "apiTest.token"
	KeyActiveOrg    = "org.active"
)

// Store is a last-write-wins string key/value store
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Open returns the store backend named by kind ("file", "sqlite" or "memory")
func Open(kind, path string) (Store, error) {
	switch kind {
	case "", "file":
		return NewFileStore(path), nil
	case "sqlite":
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend: %s", kind)
}

// GetJSON decodes the JSON value stored under key into v
func GetJSON(s Store, key string, v any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v as JSON under key
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(key, string(data))
}
