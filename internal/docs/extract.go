package docs

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/studiowebux/docportal/internal/parser"
	"github.com/studiowebux/docportal/internal/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Result holds everything derived from one collection and environment
type Result struct {
	Endpoints []types.EndpointData
	Nav       []types.NavItem
}

// frame is one pending node of the traversal worklist
type frame struct {
	node *types.Node
	key  string   // key the node was found under
	path []string // labels of the node's ancestors
}

// label is the path segment a node contributes to its descendants
func (f frame) label() string {
	if f.node.Name != "" {
		return f.node.Name
	}
	return f.key
}

// Root wraps normalized sections in a synthetic folder
func Root(sections []*types.Node) *types.Node {
	root := &types.Node{HasChildren: true}
	for i, section := range sections {
		root.Children = append(root.Children, types.Entry{Key: strconv.Itoa(i), Node: section})
	}
	return root
}

// Extract walks the tree depth-first and returns the flat endpoint list and
// the navigation tree. Templates are resolved against envData.
func Extract(root *types.Node, envData map[string]any) Result {
	result := Result{
		Endpoints: []types.EndpointData{},
		Nav:       []types.NavItem{},
	}
	if root == nil {
		return result
	}

	start := frame{node: root}

	// Explicit stack; children are pushed in reverse so they pop in order
	stack := []frame{start}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if types.ClassifyNode(f.node).IsEndpoint() {
			result.Endpoints = append(result.Endpoints, endpointData(f, envData))
		}

		children := childFrames(f)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	for _, child := range childFrames(start) {
		result.Nav = append(result.Nav, navItems(child)...)
	}

	return result
}

// childFrames lists the frames to visit below f: "children" entries first,
// then other object-valued properties, both in document order
func childFrames(f frame) []frame {
	path := f.path
	if label := f.label(); label != "" {
		path = make([]string, 0, len(f.path)+1)
		path = append(path, f.path...)
		path = append(path, label)
	}

	frames := make([]frame, 0, len(f.node.Children)+len(f.node.Nested))
	for _, e := range f.node.Children {
		if e.Node != nil {
			frames = append(frames, frame{node: e.Node, key: e.Key, path: path})
		}
	}
	for _, e := range f.node.Nested {
		if e.Node != nil {
			frames = append(frames, frame{node: e.Node, key: e.Key, path: path})
		}
	}
	return frames
}

// navItems builds the navigation entries contributed by one frame. Folders
// without visible children are pruned; containers that are neither folders
// nor endpoints pass their children through to the parent.
func navItems(f frame) []types.NavItem {
	kind := types.ClassifyNode(f.node)

	var items []types.NavItem
	if kind.IsEndpoint() {
		items = append(items, types.NavItem{
			ID:     endpointID(f),
			Title:  endpointTitle(f.node),
			Method: normalizeMethod(f.node.Method),
		})
	}

	var children []types.NavItem
	for _, child := range childFrames(f) {
		children = append(children, navItems(child)...)
	}

	if kind.IsFolder() {
		if len(children) > 0 {
			items = append(items, types.NavItem{
				ID:       Slugify(joinPath(f.path, f.label())),
				Title:    f.label(),
				Children: children,
			})
		}
		return items
	}

	return append(items, children...)
}

func endpointData(f frame, vars map[string]any) types.EndpointData {
	n := f.node
	data := types.EndpointData{
		ID:             endpointID(f),
		Title:          endpointTitle(n),
		Method:         normalizeMethod(n.Method),
		URL:            parser.ResolveTemplate(n.URL, vars),
		Headers:        resolveHeaders(n.Headers, vars),
		Parameters:     resolveParameters(n.Parameters, vars),
		PathParameters: resolveParameters(n.PathParameters, vars),
		Description:    n.Meta.Description,
	}
	if n.Body != nil {
		data.Body = parser.ResolveTemplate(n.Body.Text, vars)
		data.BodyMimeType = n.Body.MimeType
	}
	return data
}

func endpointID(f frame) string {
	name := f.node.Name
	if name == "" {
		name = types.DefaultEndpointName
	}
	return Slugify(joinPath(f.path, name))
}

func endpointTitle(n *types.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return types.DefaultEndpointName
}

func resolveHeaders(headers []types.Header, vars map[string]any) []types.Header {
	if len(headers) == 0 {
		return nil
	}
	resolved := make([]types.Header, len(headers))
	for i, h := range headers {
		resolved[i] = types.Header{
			Name:     h.Name,
			Value:    parser.ResolveTemplate(h.Value, vars),
			Disabled: h.Disabled,
		}
	}
	return resolved
}

func resolveParameters(params []types.Parameter, vars map[string]any) []types.Parameter {
	if len(params) == 0 {
		return nil
	}
	resolved := make([]types.Parameter, len(params))
	for i, p := range params {
		resolved[i] = p
		resolved[i].Value = parser.ResolveTemplate(p.Value, vars)
	}
	return resolved
}

// Slugify lower-cases text and turns whitespace runs into hyphens
func Slugify(text string) string {
	lower := cases.Lower(language.Und).String(text)
	return whitespacePattern.ReplaceAllString(lower, "-")
}

func joinPath(path []string, last string) string {
	parts := make([]string, 0, len(path)+1)
	for _, p := range path {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if last != "" {
		parts = append(parts, last)
	}
	return strings.Join(parts, "-")
}

func normalizeMethod(method string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(method))
}
