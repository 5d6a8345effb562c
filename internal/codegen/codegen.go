// Package codegen renders "how to call this endpoint" snippets for a fixed
// set of languages and HTTP clients.
package codegen

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/studiowebux/docportal/internal/types"
)

// Language identifies a code sample flavour
type Language string

// Canonical languages
const (
	Curl            Language = "curl"
	JavaScript      Language = "javascript"
	JavaScriptAxios Language = "javascriptAxios"
	TypeScript      Language = "typescript"
	TypeScriptAxios Language = "typescriptAxios"
	Python          Language = "python"
	CSharp          Language = "csharp"
	Go              Language = "go"
	Java            Language = "java"
	PHP             Language = "php"
	Ruby            Language = "ruby"
	Swift           Language = "swift"
)

// Legacy aliases kept for older callers
const (
	Fetch   Language = "fetch"
	Axios   Language = "axios"
	TS      Language = "ts"
	TSAxios Language = "tsAxios"
)

// Languages lists the canonical languages in display order
var Languages = []Language{
	Curl, JavaScript, JavaScriptAxios, TypeScript, TypeScriptAxios,
	Python, CSharp, Go, Java, PHP, Ruby, Swift,
}

var aliases = map[Language]Language{
	Fetch:   JavaScript,
	Axios:   JavaScriptAxios,
	TS:      TypeScript,
	TSAxios: TypeScriptAxios,
}

// Canonical resolves an alias to its canonical language
func (l Language) Canonical() Language {
	if canonical, ok := aliases[l]; ok {
		return canonical
	}
	return l
}

// Label is the human-readable tab title
func (l Language) Label() string {
	switch l.Canonical() {
	case Curl:
		return "cURL"
	case JavaScript:
		return "JavaScript"
	case JavaScriptAxios:
		return "JavaScript (Axios)"
	case TypeScript:
		return "TypeScript"
	case TypeScriptAxios:
		return "TypeScript (Axios)"
	case Python:
		return "Python"
	case CSharp:
		return "C#"
	case Go:
		return "Go"
	case Java:
		return "Java"
	case PHP:
		return "PHP"
	case Ruby:
		return "Ruby"
	case Swift:
		return "Swift"
	}
	return string(l)
}

// Options describes the request a sample is generated for
type Options struct {
	Method      string
	URL         string
	Headers     map[string]string
	Body        string
	QueryParams map[string]string
}

// FromEndpoint builds options from a resolved endpoint
func FromEndpoint(ep types.EndpointData) Options {
	return Options{
		Method:      ep.Method,
		URL:         ep.URL,
		Headers:     ep.HeaderMap(),
		Body:        ep.Body,
		QueryParams: ep.QueryMap(),
	}
}

// Samples maps every canonical language and alias to its snippet
type Samples map[Language]string

// Get returns the sample for a language or alias
func (s Samples) Get(lang Language) (string, bool) {
	if text, ok := s[lang]; ok {
		return text, true
	}
	text, ok := s[lang.Canonical()]
	return text, ok
}

// Generate renders samples for every language. An empty URL yields no samples.
func Generate(opts Options) Samples {
	if strings.TrimSpace(opts.URL) == "" {
		slog.Warn("no URL provided for code samples")
		return Samples{}
	}

	req := newRequest(opts)
	samples := Samples{
		Curl:            curlSample(req),
		JavaScript:      fetchSample(req),
		JavaScriptAxios: axiosSample(req),
		TypeScript:      fetchTSSample(req),
		TypeScriptAxios: axiosTSSample(req),
		Python:          pythonSample(req),
		CSharp:          csharpSample(req),
		Go:              goSample(req),
		Java:            javaSample(req),
		PHP:             phpSample(req),
		Ruby:            rubySample(req),
		Swift:           swiftSample(req),
	}

	for alias, canonical := range aliases {
		samples[alias] = samples[canonical]
	}

	return samples
}

// header is one key/value pair in emission order
type header struct {
	Name  string
	Value string
}

// request is the normalized input shared by every emitter
type request struct {
	Method  string
	URL     string // as given, without query params
	FullURL string // with encoded query params appended
	Headers []header
	Query   map[string]string
	Body    string
	HasBody bool
}

func newRequest(opts Options) request {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = "GET"
	}

	req := request{
		Method:  method,
		URL:     opts.URL,
		FullURL: withQuery(opts.URL, opts.QueryParams),
		Query:   opts.QueryParams,
		Body:    opts.Body,
		HasBody: hasBody(method, opts.Body),
	}

	for _, name := range sortedKeys(opts.Headers) {
		req.Headers = append(req.Headers, header{Name: name, Value: opts.Headers[name]})
	}

	return req
}

// hasBody reports whether a body is sent for the given method
func hasBody(method, body string) bool {
	if body == "" {
		return false
	}
	m := strings.ToUpper(method)
	return m != "GET" && m != "HEAD"
}

// withQuery appends URL-encoded params, sorted by key
func withQuery(rawURL string, params map[string]string) string {
	if len(params) == 0 {
		return rawURL
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + values.Encode()
}
