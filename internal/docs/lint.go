package docs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/studiowebux/docportal/internal/parser"
	"github.com/studiowebux/docportal/internal/types"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Severity levels for lint issues
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one problem found in a collection export
type Issue struct {
	Severity string `json:"severity"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
}

const collectionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["collection"],
  "properties": {
    "name": {"type": "string"},
    "collection": {"type": "array", "items": {"$ref": "#/definitions/node"}},
    "environments": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "data": {"type": "object"},
        "subEnvironments": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["name"],
            "properties": {
              "name": {"type": "string"},
              "data": {"type": "object"}
            }
          }
        }
      }
    }
  },
  "definitions": {
    "node": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "method": {"type": "string"},
        "url": {"type": "string"},
        "endpoint": {"type": "string"},
        "meta": {
          "type": "object",
          "properties": {"sortKey": {"type": "number"}}
        },
        "headers": {"type": ["array", "object"]},
        "parameters": {"type": ["array", "object"]},
        "pathParameters": {"type": ["array", "object"]},
        "body": {"type": ["object", "string"]},
        "children": {
          "anyOf": [
            {"type": "array", "items": {"$ref": "#/definitions/node"}},
            {"type": "object", "additionalProperties": {"$ref": "#/definitions/node"}}
          ]
        }
      }
    }
  }
}`

// Lint validates a collection export against the expected shape and reports
// semantic problems: duplicate endpoint ids and placeholders that an
// environment cannot resolve.
func Lint(text string) []Issue {
	var raw any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return []Issue{{Severity: SeverityError, Message: fmt.Sprintf("invalid YAML: %v", err)}}
	}

	var issues []Issue

	schemaResult, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(collectionSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Message: fmt.Sprintf("schema validation failed: %v", err)})
	} else {
		for _, e := range schemaResult.Errors() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Field:    e.Field(),
				Message:  e.Description(),
			})
		}
	}

	doc := parser.NormalizeInsomniaYAML(text)

	base := Extract(Root(doc.Sections), nil)
	for _, id := range DuplicateIDs(base.Endpoints) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Field:    id,
			Message:  "endpoint id is shared by several endpoints; deep links will pick the first",
		})
	}

	for _, env := range doc.Envs {
		data := EnvironmentData(doc, env.Name)
		for _, ep := range Extract(Root(doc.Sections), data).Endpoints {
			if missing := unresolved(ep, data); len(missing) > 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Field:    ep.ID,
					Message:  fmt.Sprintf("environment %q does not define: %s", env.Name, strings.Join(missing, ", ")),
				})
			}
		}
	}

	return issues
}

// unresolved lists the placeholder keys still present in an endpoint
func unresolved(ep types.EndpointData, data map[string]any) []string {
	seen := make(map[string]bool)
	collect := func(text string) {
		for _, key := range parser.UnresolvedKeys(text, data) {
			seen[key] = true
		}
	}

	collect(ep.URL)
	collect(ep.Body)
	for _, h := range ep.Headers {
		collect(h.Value)
	}
	for _, p := range ep.Parameters {
		collect(p.Value)
	}
	for _, p := range ep.PathParameters {
		collect(p.Value)
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
