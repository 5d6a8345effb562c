package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "conflict", "reserved" or "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// Validator checks a registry for unusable bindings
type Validator struct {
	// reservedKeys must stay bound to their action in the global context
	reservedKeys map[string]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{"ctrl+c": ActionQuitForce},
	}
}

// Validate reports reserved keys rebound anywhere and actions that became
// unreachable because all of their keys were taken
func (v *Validator) Validate(r *Registry) *ValidationResult {
	result := &ValidationResult{}

	contexts := make([]string, 0, len(r.bindings))
	for ctx := range r.bindings {
		contexts = append(contexts, string(ctx))
	}
	sort.Strings(contexts)

	for _, name := range contexts {
		ctx := Context(name)
		for _, b := range r.List(ctx) {
			if want, reserved := v.reservedKeys[b.Key]; reserved && b.Action != want {
				result.Errors = append(result.Errors, ValidationError{
					Type:    "reserved",
					Context: ctx,
					Key:     b.Key,
					Message: fmt.Sprintf("reserved for %s", want),
				})
			}
			if ctx != ContextGlobal {
				if global, ok := r.bindings[ContextGlobal][b.Key]; ok && global != b.Action {
					result.Warnings = append(result.Warnings, ValidationError{
						Type:    "warning",
						Context: ctx,
						Key:     b.Key,
						Message: fmt.Sprintf("shadows global binding (%s -> %s)", global, b.Action),
					})
				}
			}
		}
	}

	defaults := NewDefaultRegistry()
	for _, ctx := range Contexts {
		seen := make(map[Action]bool)
		for _, b := range defaults.List(ctx) {
			if seen[b.Action] {
				continue
			}
			seen[b.Action] = true
			if len(r.Keys(ctx, b.Action)) == 0 {
				result.Errors = append(result.Errors, ValidationError{
					Type:    "conflict",
					Context: ctx,
					Key:     "",
					Message: fmt.Sprintf("action %s has no key left", b.Action),
				})
			}
		}
	}

	return result
}

// ValidateKey checks if a key string is usable
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	for _, mod := range []string{"ctrl+", "alt+", "shift+", "super+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}
	return nil
}
