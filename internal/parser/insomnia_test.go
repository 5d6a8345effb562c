package parser

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/studiowebux/docportal/internal/types"
)

func TestNormalizeInsomniaYAML_InvalidInput(t *testing.T) {
	inputs := []string{
		"not: [valid",
		"42",
		"",
		"- a\n- b",
		"just a string",
	}

	for _, input := range inputs {
		doc := NormalizeInsomniaYAML(input)
		if !reflect.DeepEqual(doc, types.DefaultDocument()) {
			t.Errorf("Input %q: expected default document, got %+v", input, doc)
		}
	}
}

func TestNormalizeInsomniaYAML_DefaultValues(t *testing.T) {
	doc := NormalizeInsomniaYAML("name: 123\ncollection: nope\nenvironments: []\n")

	if doc.Title != "API Docs" {
		t.Errorf("Expected title 'API Docs' for non-string name, got %q", doc.Title)
	}
	if len(doc.Sections) != 0 {
		t.Errorf("Expected no sections, got %d", len(doc.Sections))
	}
	if doc.EnvRootName != "Base Environment" {
		t.Errorf("Expected 'Base Environment', got %q", doc.EnvRootName)
	}
	if len(doc.Envs) != 0 {
		t.Errorf("Expected no envs, got %d", len(doc.Envs))
	}
}

func TestNormalizeInsomniaYAML_SortsSectionsStable(t *testing.T) {
	yamlText := `
name: Sorted
collection:
  - name: B
    meta:
      sortKey: 5
  - name: A1
  - name: C
    meta:
      sortKey: -3
  - name: A2
    meta: {}
  - name: A3
    meta:
      sortKey: 0
`
	doc := NormalizeInsomniaYAML(yamlText)

	var names []string
	for _, s := range doc.Sections {
		names = append(names, s.Name)
	}

	expected := []string{"C", "A1", "A2", "A3", "B"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("Expected order %v, got %v", expected, names)
	}
	if doc.Title != "Sorted" {
		t.Errorf("Expected title 'Sorted', got %q", doc.Title)
	}
}

func TestNormalizeInsomniaYAML_Environments(t *testing.T) {
	yamlText := `
name: Envs
collection: []
environments:
  name: Root
  data:
    shared: base
  subEnvironments:
    - name: Prod
      data:
        baseUrl: https://api.x.com
        id: 42
    - name: Empty
    - not-a-mapping
`
	doc := NormalizeInsomniaYAML(yamlText)

	if doc.EnvRootName != "Root" {
		t.Errorf("Expected env root 'Root', got %q", doc.EnvRootName)
	}
	if len(doc.Envs) != 2 {
		t.Fatalf("Expected 2 envs, got %d", len(doc.Envs))
	}
	if doc.Envs[0].Name != "Prod" {
		t.Errorf("Expected first env 'Prod', got %q", doc.Envs[0].Name)
	}
	if doc.Envs[0].Data["baseUrl"] != "https://api.x.com" {
		t.Errorf("Expected baseUrl, got %v", doc.Envs[0].Data["baseUrl"])
	}
	if doc.Envs[0].Data["id"] != 42 {
		t.Errorf("Expected id 42, got %v (%T)", doc.Envs[0].Data["id"], doc.Envs[0].Data["id"])
	}
	if doc.Envs[1].Data == nil {
		t.Error("Expected empty data map for env without data")
	}
	if doc.BaseData["shared"] != "base" {
		t.Errorf("Expected base data to be decoded, got %v", doc.BaseData)
	}
}

func TestNormalizeInsomniaYAML_Nodes(t *testing.T) {
	yamlText := `
collection:
  - name: Users
    children:
      - name: Get User
        method: GET
        url: "{{ _.baseUrl }}/users/{id}"
        headers:
          - name: Accept
            value: application/json
          - name: X-Debug
            value: "1"
            disabled: true
        parameters:
          - name: expand
            value: profile
        pathParameters:
          - name: id
            value: "42"
      - name: Create User
        method: POST
        endpoint: "{{ _.baseUrl }}/users"
        url: ignored
        body:
          mimeType: application/json
          text: '{"name":"x"}'
        meta:
          description: Creates a user
`
	doc := NormalizeInsomniaYAML(yamlText)
	if len(doc.Sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(doc.Sections))
	}

	folder := doc.Sections[0]
	if kind := types.ClassifyNode(folder); kind != types.KindFolder {
		t.Errorf("Expected folder, got %s", kind)
	}
	if len(folder.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(folder.Children))
	}

	get := folder.Children[0].Node
	if kind := types.ClassifyNode(get); kind != types.KindEndpoint {
		t.Errorf("Expected endpoint, got %s", kind)
	}
	if len(get.Headers) != 2 || !get.Headers[1].Disabled {
		t.Errorf("Expected 2 headers with second disabled, got %+v", get.Headers)
	}
	if len(get.Parameters) != 1 || get.Parameters[0].Name != "expand" {
		t.Errorf("Unexpected parameters: %+v", get.Parameters)
	}
	if len(get.PathParameters) != 1 || get.PathParameters[0].Value != "42" {
		t.Errorf("Unexpected path parameters: %+v", get.PathParameters)
	}

	create := folder.Children[1].Node
	if create.URL != "{{ _.baseUrl }}/users" {
		t.Errorf("Expected endpoint field to win over url, got %q", create.URL)
	}
	if create.Body == nil || create.Body.MimeType != "application/json" {
		t.Errorf("Unexpected body: %+v", create.Body)
	}
	if create.Meta.Description != "Creates a user" {
		t.Errorf("Unexpected description: %q", create.Meta.Description)
	}
}

func TestNormalizeInsomniaYAML_NestedProperties(t *testing.T) {
	yamlText := `
collection:
  - name: Misc
    headers:
      X-Folder: yes
    extras:
      ping:
        name: Ping
        method: GET
        url: /ping
`
	doc := NormalizeInsomniaYAML(yamlText)
	misc := doc.Sections[0]

	if len(misc.Nested) != 1 || misc.Nested[0].Key != "extras" {
		t.Fatalf("Expected nested 'extras' entry, got %+v", misc.Nested)
	}
	extras := misc.Nested[0].Node
	if len(extras.Nested) != 1 || extras.Nested[0].Key != "ping" {
		t.Fatalf("Expected nested 'ping' entry, got %+v", extras.Nested)
	}
	if kind := types.ClassifyNode(extras.Nested[0].Node); kind != types.KindEndpoint {
		t.Errorf("Expected ping to be an endpoint, got %s", kind)
	}
}

func TestNormalizeInsomniaYAML_AliasExpansionFallsBack(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("x0: &a0 {method: GET, url: http://x}\n")
	for i := 1; i <= 30; i++ {
		fmt.Fprintf(&sb, "x%d: &a%d [*a%d, *a%d]\n", i, i, i-1, i-1)
	}
	sb.WriteString("collection:\n  - children: *a30\n")

	doc := NormalizeInsomniaYAML(sb.String())
	if !reflect.DeepEqual(doc, types.DefaultDocument()) {
		t.Errorf("Expected default document for exponential aliases, got %d sections", len(doc.Sections))
	}
}

func TestNormalizeInsomniaYAML_SharedAnchors(t *testing.T) {
	yamlText := `
name: Anchors
shared: &ping
  name: Ping
  method: GET
  url: /ping
collection:
  - name: A
    children:
      - *ping
  - name: B
    children:
      - *ping
`
	doc := NormalizeInsomniaYAML(yamlText)
	if doc.Title != "Anchors" || len(doc.Sections) != 2 {
		t.Fatalf("Expected 2 sections, got %+v", doc.Sections)
	}
	for _, section := range doc.Sections {
		if len(section.Children) != 1 || section.Children[0].Node.Name != "Ping" {
			t.Errorf("Expected aliased Ping child in %s, got %+v", section.Name, section.Children)
		}
	}
}

func TestCache_Normalize(t *testing.T) {
	var cache Cache

	doc, hit := cache.Normalize("name: One")
	if hit {
		t.Error("Expected first call to miss")
	}
	if doc.Title != "One" {
		t.Errorf("Expected title 'One', got %q", doc.Title)
	}

	if _, hit := cache.Normalize("name: One"); !hit {
		t.Error("Expected unchanged text to hit the cache")
	}

	doc, hit = cache.Normalize("name: Two")
	if hit || doc.Title != "Two" {
		t.Errorf("Expected changed text to rebuild, got hit=%v title=%q", hit, doc.Title)
	}
}
