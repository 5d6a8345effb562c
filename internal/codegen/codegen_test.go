package codegen

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/studiowebux/docportal/internal/types"
)

const bodyMarker = `{"secret":"BODYMARK"}`

func TestGenerate_GetOmitsBody(t *testing.T) {
	samples := Generate(Options{
		Method:  "get",
		URL:     "https://api.x.com/users/1",
		Headers: map[string]string{"X-Api-Key": "abc"},
		Body:    bodyMarker,
	})

	for _, lang := range Languages {
		sample, ok := samples[lang]
		if !ok {
			t.Fatalf("Expected sample for %s", lang)
		}
		if strings.Contains(sample, "BODYMARK") {
			t.Errorf("Expected %s sample to omit the body for GET, got:\n%s", lang, sample)
		}
		if !strings.Contains(sample, "https://api.x.com/users/1") {
			t.Errorf("Expected %s sample to contain the URL", lang)
		}
		if !strings.Contains(strings.ToUpper(sample), "GET") {
			t.Errorf("Expected %s sample to contain the method", lang)
		}
	}
}

func TestGenerate_PostIncludesBodyAndHeaders(t *testing.T) {
	samples := Generate(Options{
		Method: "POST",
		URL:    "https://api.x.com/orders",
		Headers: map[string]string{
			"X-Api-Key":    "abc",
			"Content-Type": "application/json",
		},
		Body: bodyMarker,
	})

	for _, lang := range Languages {
		sample := samples[lang]
		if !strings.Contains(sample, "BODYMARK") {
			t.Errorf("Expected %s sample to include the body, got:\n%s", lang, sample)
		}
		if !strings.Contains(sample, "X-Api-Key") || !strings.Contains(sample, "abc") {
			t.Errorf("Expected %s sample to include every header, got:\n%s", lang, sample)
		}
		if !strings.Contains(strings.ToUpper(sample), "POST") {
			t.Errorf("Expected %s sample to contain the method", lang)
		}
	}
}

func TestGenerate_HeadOmitsBody(t *testing.T) {
	samples := Generate(Options{Method: "HEAD", URL: "https://x", Body: bodyMarker})
	if strings.Contains(samples[Curl], "BODYMARK") {
		t.Errorf("Expected HEAD request to omit the body, got %s", samples[Curl])
	}
}

func TestGenerate_AliasesMatchCanonical(t *testing.T) {
	samples := Generate(Options{Method: "PUT", URL: "https://x/y", Body: "data"})

	for alias, canonical := range map[Language]Language{
		Fetch:   JavaScript,
		Axios:   JavaScriptAxios,
		TS:      TypeScript,
		TSAxios: TypeScriptAxios,
	} {
		if samples[alias] == "" {
			t.Errorf("Expected alias %s to be present", alias)
		}
		if samples[alias] != samples[canonical] {
			t.Errorf("Expected alias %s to equal %s", alias, canonical)
		}
		if got, _ := samples.Get(alias); got != samples[canonical] {
			t.Errorf("Expected Get(%s) to resolve to %s", alias, canonical)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	opts := Options{
		Method:      "PATCH",
		URL:         "https://x/items",
		Headers:     map[string]string{"B": "2", "A": "1", "C": "3", "D": "4"},
		QueryParams: map[string]string{"z": "last", "a": "first"},
		Body:        "{}",
	}

	first := Generate(opts)
	for i := 0; i < 5; i++ {
		if !reflect.DeepEqual(first, Generate(opts)) {
			t.Fatal("Expected identical samples for identical inputs")
		}
	}

	if !strings.Contains(first[Curl], "-H 'A: 1' \\\n  -H 'B: 2'") {
		t.Errorf("Expected headers sorted by name, got:\n%s", first[Curl])
	}
}

func TestGenerate_BodyEmbeddedAsGiven(t *testing.T) {
	body := `{"sku":"abc","qty":2}`
	samples := Generate(Options{Method: "POST", URL: "https://x/orders", Body: body})

	expected := map[Language]string{
		Curl:   "-d '" + body + "'",
		Go:     strconv.Quote(body),
		Java:   "\"\"\"\n" + body + "\"\"\"",
		PHP:    "'" + body + "'",
		Ruby:   "'" + body + "'",
		Python: `"{\"sku\":\"abc\",\"qty\":2}"`,
	}
	for lang, want := range expected {
		if !strings.Contains(samples[lang], want) {
			t.Errorf("Expected %s sample to embed %s, got:\n%s", lang, want, samples[lang])
		}
	}
}

func TestGenerate_QueryParams(t *testing.T) {
	samples := Generate(Options{
		URL:         "https://x/search",
		QueryParams: map[string]string{"q": "x y", "a": "1"},
	})

	if !strings.Contains(samples[Curl], "https://x/search?a=1&q=x+y") {
		t.Errorf("Expected encoded query on curl URL, got:\n%s", samples[Curl])
	}
	if !strings.Contains(samples[JavaScript], "https://x/search?a=1&q=x+y") {
		t.Errorf("Expected encoded query on fetch URL, got:\n%s", samples[JavaScript])
	}
	if !strings.Contains(samples[JavaScriptAxios], `"params": {`) {
		t.Errorf("Expected structured params for axios, got:\n%s", samples[JavaScriptAxios])
	}
	if !strings.Contains(samples[Python], "params=params") {
		t.Errorf("Expected structured params for python, got:\n%s", samples[Python])
	}

	// Existing query string is extended rather than replaced
	samples = Generate(Options{URL: "https://x/search?page=2", QueryParams: map[string]string{"q": "a"}})
	if !strings.Contains(samples[Curl], "https://x/search?page=2&q=a") {
		t.Errorf("Expected '&' separator, got:\n%s", samples[Curl])
	}
}

func TestGenerate_DefaultsMethodToGet(t *testing.T) {
	samples := Generate(Options{URL: "https://x"})
	if !strings.HasPrefix(samples[Curl], "curl -X GET") {
		t.Errorf("Expected default GET, got %s", samples[Curl])
	}
}

func TestGenerate_EmptyURL(t *testing.T) {
	samples := Generate(Options{Method: "GET"})
	if len(samples) != 0 {
		t.Errorf("Expected no samples without a URL, got %d", len(samples))
	}
}

func TestGenerate_ShellQuoting(t *testing.T) {
	samples := Generate(Options{Method: "POST", URL: "https://x", Body: "it's"})
	if !strings.Contains(samples[Curl], `-d 'it'\''s'`) {
		t.Errorf("Expected single quote to be escaped for the shell, got:\n%s", samples[Curl])
	}
}

func TestFromEndpoint_SkipsDisabled(t *testing.T) {
	opts := FromEndpoint(types.EndpointData{
		Method: "GET",
		URL:    "https://x",
		Headers: []types.Header{
			{Name: "Keep", Value: "1"},
			{Name: "Drop", Value: "2", Disabled: true},
		},
		Parameters: []types.Parameter{{Name: "q", Value: "v"}},
	})

	if _, ok := opts.Headers["Drop"]; ok {
		t.Error("Expected disabled header to be skipped")
	}
	if opts.QueryParams["q"] != "v" {
		t.Errorf("Expected query param, got %v", opts.QueryParams)
	}
}

func TestLanguage_Lexer(t *testing.T) {
	if Fetch.Lexer() != "javascript" {
		t.Errorf("Expected alias to share lexer, got %s", Fetch.Lexer())
	}
	if Curl.Lexer() != "bash" {
		t.Errorf("Expected bash lexer for curl, got %s", Curl.Lexer())
	}
	if Language("cobol").Lexer() != "plaintext" {
		t.Error("Expected plaintext for unknown language")
	}
}

func TestHighlight(t *testing.T) {
	sample := Generate(Options{URL: "https://x"})[Go]
	if out := Highlight(sample, Go, ""); out == "" {
		t.Error("Expected highlighted output")
	}
}
