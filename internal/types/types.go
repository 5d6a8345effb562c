package types

import "time"

// Default values used when a collection document is missing or malformed
const (
	DefaultTitle        = "API Docs"
	DefaultEnvRootName  = "Base Environment"
	DefaultEndpointName = "endpoint"
)

// Header is a name/value pair attached to an endpoint
type Header struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Parameter is a query or path parameter template
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value,omitempty" yaml:"value,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Disabled    bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Body is the request body template of an endpoint
type Body struct {
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Meta carries the ordering and description metadata of a node
type Meta struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	SortKey     float64 `json:"sortKey,omitempty" yaml:"sortKey,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Entry is a keyed child of a node, kept in document order
type Entry struct {
	Key  string
	Node *Node
}

// Node is one entry of a collection tree. A node may describe a folder,
// an endpoint, or both.
type Node struct {
	Name           string
	Method         string
	URL            string // from "endpoint" or "url"
	Headers        []Header
	Parameters     []Parameter
	PathParameters []Parameter
	Body           *Body
	Meta           Meta

	// Children holds the entries of the "children" property
	Children []Entry
	// Nested holds other object-valued properties that may contain endpoints
	Nested []Entry

	HasMethod   bool
	HasURL      bool
	HasChildren bool
}

// NodeKind is the canonical classification of a Node
type NodeKind int

const (
	KindOther NodeKind = iota
	KindEndpoint
	KindFolder
	KindFolderWithEndpoint
)

func (k NodeKind) String() string {
	switch k {
	case KindEndpoint:
		return "endpoint"
	case KindFolder:
		return "folder"
	case KindFolderWithEndpoint:
		return "folder+endpoint"
	default:
		return "other"
	}
}

// ClassifyNode reports what a node describes. A node is an endpoint when it
// has both a method and an endpoint/url; it is a folder when it has children.
func ClassifyNode(n *Node) NodeKind {
	if n == nil {
		return KindOther
	}
	endpoint := n.HasMethod && n.HasURL
	switch {
	case endpoint && n.HasChildren:
		return KindFolderWithEndpoint
	case endpoint:
		return KindEndpoint
	case n.HasChildren:
		return KindFolder
	default:
		return KindOther
	}
}

// IsEndpoint returns true if the kind describes an HTTP operation
func (k NodeKind) IsEndpoint() bool {
	return k == KindEndpoint || k == KindFolderWithEndpoint
}

// IsFolder returns true if the kind carries children
func (k NodeKind) IsFolder() bool {
	return k == KindFolder || k == KindFolderWithEndpoint
}

// Environment is a named flat mapping used for template resolution
type Environment struct {
	Name string         `json:"name" yaml:"name"`
	Data map[string]any `json:"data" yaml:"data"`
}

// NormalizedDocument is the stable shape of a parsed collection export
type NormalizedDocument struct {
	Title       string        `json:"title"`
	Sections    []*Node       `json:"-"`
	Envs        []Environment `json:"envs"`
	EnvRootName string        `json:"envRootName"`

	// BaseData is the data of the root environment, shared by every
	// sub-environment
	BaseData map[string]any `json:"baseData,omitempty"`
}

// DefaultDocument returns the document used when parsing fails
func DefaultDocument() NormalizedDocument {
	return NormalizedDocument{
		Title:       DefaultTitle,
		Sections:    []*Node{},
		Envs:        []Environment{},
		EnvRootName: DefaultEnvRootName,
	}
}

// EnvironmentNames returns the names of the document's environments in order
func (d NormalizedDocument) EnvironmentNames() []string {
	names := make([]string, 0, len(d.Envs))
	for _, env := range d.Envs {
		names = append(names, env.Name)
	}
	return names
}

// EndpointData is an endpoint with its templates resolved against an environment
type EndpointData struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Method         string      `json:"method"`
	URL            string      `json:"url"`
	Headers        []Header    `json:"headers,omitempty"`
	Parameters     []Parameter `json:"parameters,omitempty"`
	PathParameters []Parameter `json:"pathParameters,omitempty"`
	Body           string      `json:"body,omitempty"`
	BodyMimeType   string      `json:"bodyMimeType,omitempty"`
	Description    string      `json:"description,omitempty"`
}

// HeaderMap returns the enabled headers as a map
func (e EndpointData) HeaderMap() map[string]string {
	headers := make(map[string]string, len(e.Headers))
	for _, h := range e.Headers {
		if h.Disabled || h.Name == "" {
			continue
		}
		headers[h.Name] = h.Value
	}
	return headers
}

// QueryMap returns the enabled query parameters as a map
func (e EndpointData) QueryMap() map[string]string {
	params := make(map[string]string, len(e.Parameters))
	for _, p := range e.Parameters {
		if p.Disabled || p.Name == "" {
			continue
		}
		params[p.Name] = p.Value
	}
	return params
}

// NavItem is one entry of the navigation tree. Folders carry Children,
// endpoints carry Method.
type NavItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Method   string    `json:"method,omitempty"`
	Children []NavItem `json:"children,omitempty"`
}

// IsFolder returns true if the item groups other items
func (n NavItem) IsFolder() bool {
	return n.Method == ""
}

// RequestResult contains the HTTP response data
type RequestResult struct {
	Status       int               `json:"status"`
	StatusText   string            `json:"statusText"`
	Headers      map[string]string `json:"headers"`
	Body         string            `json:"body"`
	Duration     int64             `json:"duration"`     // milliseconds
	RequestSize  int               `json:"requestSize"`  // bytes
	ResponseSize int               `json:"responseSize"` // bytes
	Error        string            `json:"error,omitempty"`
}

// Credential is a saved client-credential pair used to mint API tokens
type Credential struct {
	ClientID     string    `json:"clientId"`
	ClientSecret string    `json:"clientSecret"`
	Label        string    `json:"label,omitempty"`
	SavedAt      time.Time `json:"savedAt"`
}

// AuthTokens are the session tokens issued after OTP verification
type AuthTokens struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	IssuedAt     time.Time `json:"issuedAt"`
	ExpiresIn    int64     `json:"expiresIn,omitempty"` // seconds
}

// Expired returns true when the access token is past its lifetime
func (t AuthTokens) Expired(now time.Time) bool {
	if t.AccessToken == "" {
		return true
	}
	if t.ExpiresIn <= 0 {
		return false
	}
	return now.After(t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second))
}

// Organization is the organization the portal user currently acts for
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// HistoryEntry represents a saved try-it-out execution
type HistoryEntry struct {
	ID                 int64             `json:"id"`
	Timestamp          string            `json:"timestamp"`
	EndpointID         string            `json:"endpointId"`
	Environment        string            `json:"environment,omitempty"`
	Method             string            `json:"method"`
	URL                string            `json:"url"`
	Headers            map[string]string `json:"headers"`
	Body               string            `json:"body,omitempty"`
	ResponseStatus     int               `json:"responseStatus"`
	ResponseStatusText string            `json:"responseStatusText"`
	ResponseHeaders    map[string]string `json:"responseHeaders"`
	ResponseBody       string            `json:"responseBody"`
	Duration           int64             `json:"duration"`
	Retried            bool              `json:"retried,omitempty"`
	Error              string            `json:"error,omitempty"`
}
