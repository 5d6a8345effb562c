package docs

import (
	"strings"
	"testing"

	"github.com/studiowebux/docportal/internal/parser"
	"github.com/studiowebux/docportal/internal/types"
)

func TestActiveEnvironment(t *testing.T) {
	envs := []types.Environment{{Name: "Prod"}, {Name: "Staging"}}

	if got := ActiveEnvironment(envs, "Staging"); got != "Staging" {
		t.Errorf("Expected stored env, got %q", got)
	}
	if got := ActiveEnvironment(envs, "Gone"); got != "Prod" {
		t.Errorf("Expected fallback to first env, got %q", got)
	}
	if got := ActiveEnvironment(nil, "Prod"); got != "" {
		t.Errorf("Expected empty name with no envs, got %q", got)
	}
}

func TestEnvironmentData_LayersBaseData(t *testing.T) {
	doc := types.NormalizedDocument{
		BaseData: map[string]any{"host": "base", "shared": "yes"},
		Envs: []types.Environment{
			{Name: "Prod", Data: map[string]any{"host": "prod"}},
		},
	}

	data := EnvironmentData(doc, "Prod")
	if data["host"] != "prod" || data["shared"] != "yes" {
		t.Errorf("Unexpected layered data: %v", data)
	}

	if data := EnvironmentData(doc, "Unknown"); data["host"] != "base" {
		t.Errorf("Expected base data for unknown env, got %v", data)
	}
}

func TestBuild_WithOverrides(t *testing.T) {
	doc := parser.NormalizeInsomniaYAML(usersCollection)
	result := Build(doc, "Prod", map[string]any{"baseUrl": "http://localhost"})

	if result.Endpoints[0].URL != "http://localhost/users/42" {
		t.Errorf("Expected override to win, got %q", result.Endpoints[0].URL)
	}
}

func TestLint(t *testing.T) {
	yamlText := `
name: Lint Me
collection:
  - name: A
    children:
      - name: List
        method: GET
        url: "{{ _.baseUrl }}/a"
  - name: A
    children:
      - name: List
        method: GET
        url: "{{ _.missing }}/a"
environments:
  subEnvironments:
    - name: Prod
      data:
        baseUrl: https://x
`
	issues := Lint(yamlText)

	var dup, missing bool
	for _, issue := range issues {
		if issue.Field == "a-list" && strings.Contains(issue.Message, "shared") {
			dup = true
		}
		if strings.Contains(issue.Message, "missing") && strings.Contains(issue.Message, "Prod") {
			missing = true
		}
	}
	if !dup {
		t.Errorf("Expected duplicate id warning, got %v", issues)
	}
	if !missing {
		t.Errorf("Expected unresolved placeholder warning, got %v", issues)
	}
}

func TestLint_SchemaErrors(t *testing.T) {
	issues := Lint("name: 12\ncollection: nope\n")
	if len(issues) == 0 {
		t.Fatal("Expected schema issues")
	}
	for _, issue := range issues {
		if issue.Severity != SeverityError {
			t.Errorf("Expected only errors, got %v", issue)
		}
	}

	if issues := Lint("not: [valid"); len(issues) != 1 || issues[0].Severity != SeverityError {
		t.Errorf("Expected a single YAML error, got %v", issues)
	}
}
