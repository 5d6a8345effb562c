package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// FileName is the keybinding override file looked up in the config dir
const FileName = "keybinds.json"

// Config is the user's keybinding overrides: context -> action -> keys.
// Keys are comma separated, e.g. {"nav": {"try_request": "t,ctrl+t"}}.
// Comments and trailing commas are allowed.
type Config struct {
	Version  string                       `json:"version,omitempty"`
	Bindings map[string]map[string]string `json:"bindings"`
}

// LoadConfig reads a keybinding configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", FileName, err)
	}
	return &config, nil
}

// Apply overrides the registry with the configured bindings. Every action
// named in the file loses its default keys in that context.
func (c *Config) Apply(r *Registry) error {
	for ctxName, actions := range c.Bindings {
		ctx := Context(ctxName)
		if !isContext(ctx) {
			return fmt.Errorf("unknown keybinding context: %s", ctxName)
		}
		for actionName, keys := range actions {
			action := Action(actionName)
			if !action.IsKnown() {
				return fmt.Errorf("unknown action %q in context %s", actionName, ctxName)
			}
			r.Unbind(ctx, action)
			for _, key := range strings.Split(keys, ",") {
				key = strings.TrimSpace(key)
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("%s.%s: %w", ctxName, actionName, err)
				}
				r.Register(ctx, key, action)
			}
		}
	}
	return nil
}

// LoadOrDefault returns the default registry with overrides from dir applied
// when a keybinds.json exists there
func LoadOrDefault(dir string) (*Registry, error) {
	registry := NewDefaultRegistry()
	if dir == "" {
		return registry, nil
	}

	config, err := LoadConfig(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
	}
	if err := config.Apply(registry); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", FileName, err)
	}

	if result := NewValidator().Validate(registry); result.HasErrors() {
		return nil, fmt.Errorf("invalid keybindings:\n%s", result.String())
	}
	return registry, nil
}

func isContext(ctx Context) bool {
	for _, known := range Contexts {
		if known == ctx {
			return true
		}
	}
	return false
}
