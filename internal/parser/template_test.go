package parser

import (
	"reflect"
	"testing"
)

func TestResolveTemplate_NoPlaceholders(t *testing.T) {
	vars := map[string]any{"baseUrl": "https://api.example.com"}
	inputs := []string{
		"",
		"https://example.com/users",
		"{{ baseUrl }}",
		"{ _.baseUrl }",
		"{{}}",
	}

	for _, input := range inputs {
		if got := ResolveTemplate(input, vars); got != input {
			t.Errorf("Expected %q unchanged, got %q", input, got)
		}
	}
}

func TestResolveTemplate_Substitution(t *testing.T) {
	vars := map[string]any{
		"baseUrl": "https://api.x.com",
		"id":      42,
		"ratio":   1.5,
		"enabled": true,
		"nothing": nil,
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"{{_.baseUrl}}/users", "https://api.x.com/users"},
		{"{{ _.baseUrl }}/users/{{ _.id }}", "https://api.x.com/users/42"},
		{"{{  _.  id  }}", "42"},
		{"r={{_.ratio}}", "r=1.5"},
		{"flag={{ _.enabled }}", "flag=true"},
		{"{{ _.nothing }}", "null"},
	}

	for _, tt := range tests {
		if got := ResolveTemplate(tt.input, vars); got != tt.expected {
			t.Errorf("ResolveTemplate(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestResolveTemplate_MissingKeyPreserved(t *testing.T) {
	vars := map[string]any{"a": "1"}
	input := "{{ _.a }}-{{ _.missing }}-{{_.other}}"
	expected := "1-{{ _.missing }}-{{_.other}}"

	got := ResolveTemplate(input, vars)
	if got != expected {
		t.Fatalf("Expected %q, got %q", expected, got)
	}

	// Resolving again with the same vars is a no-op
	if again := ResolveTemplate(got, vars); again != got {
		t.Errorf("Expected second pass to be a no-op, got %q", again)
	}
}

func TestResolveTemplate_NotRecursive(t *testing.T) {
	vars := map[string]any{
		"self":  "{{ _.self }}",
		"outer": "{{ _.inner }}",
		"inner": "value",
	}

	if got := ResolveTemplate("{{ _.self }}", vars); got != "{{ _.self }}" {
		t.Errorf("Expected self reference to be substituted once, got %q", got)
	}
	if got := ResolveTemplate("{{ _.outer }}", vars); got != "{{ _.inner }}" {
		t.Errorf("Expected substituted value not to be rescanned, got %q", got)
	}
}

func TestResolveValue_NonStringPassthrough(t *testing.T) {
	vars := map[string]any{"a": "1"}

	if got := ResolveValue(42, vars); got != 42 {
		t.Errorf("Expected 42 unchanged, got %v", got)
	}
	if got := ResolveValue(nil, vars); got != nil {
		t.Errorf("Expected nil unchanged, got %v", got)
	}
	if got := ResolveValue("{{ _.a }}", vars); got != "1" {
		t.Errorf("Expected string to be resolved, got %v", got)
	}
}

func TestTemplateKeys(t *testing.T) {
	keys := TemplateKeys("{{ _.baseUrl }}/users/{{_.id}}?v={{ _.baseUrl }}")
	expected := []string{"baseUrl", "id"}
	if !reflect.DeepEqual(keys, expected) {
		t.Errorf("Expected %v, got %v", expected, keys)
	}

	missing := UnresolvedKeys("{{ _.baseUrl }}/users/{{_.id}}", map[string]any{"baseUrl": "x"})
	if !reflect.DeepEqual(missing, []string{"id"}) {
		t.Errorf("Expected [id], got %v", missing)
	}
}
