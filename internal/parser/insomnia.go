package parser

import (
	"log/slog"
	"sort"
	"strconv"

	"github.com/studiowebux/docportal/internal/types"
	"gopkg.in/yaml.v3"
)

// NonRecursableKeys are node properties that never contain endpoints, even
// when their value is an object
var NonRecursableKeys = map[string]bool{
	"meta":           true,
	"headers":        true,
	"parameters":     true,
	"pathParameters": true,
	"body":           true,
	"authentication": true,
	"settings":       true,
	"scripts":        true,
	"environment":    true,
	"cookieJar":      true,
}

const (
	// maxNodeDepth bounds recursion on pathological documents
	maxNodeDepth = 64
	// maxAliasCount bounds alias expansion; nested aliases grow the tree
	// exponentially
	maxAliasCount = 100
	maxNodeCount  = 100000
)

// decoder tracks how much of the tree has been built so aliased input
// cannot expand without bound
type decoder struct {
	aliases  int
	nodes    int
	exceeded bool
}

// deref follows an alias, charging it against the alias budget
func (d *decoder) deref(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.AliasNode {
		d.aliases++
		if d.aliases > maxAliasCount {
			d.exceeded = true
			return nil
		}
	}
	return resolveAlias(n)
}

// NormalizeInsomniaYAML parses an Insomnia-style collection export.
// It never fails: malformed input yields types.DefaultDocument().
func NormalizeInsomniaYAML(text string) types.NormalizedDocument {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		slog.Warn("failed to parse collection YAML", "error", err)
		return types.DefaultDocument()
	}

	doc := documentRoot(&root)
	if doc == nil || doc.Kind != yaml.MappingNode {
		slog.Warn("collection YAML root is not a mapping")
		return types.DefaultDocument()
	}

	result := types.DefaultDocument()

	if name := mappingValue(doc, "name"); isString(name) {
		result.Title = name.Value
	}

	if collection := mappingValue(doc, "collection"); collection != nil && collection.Kind == yaml.SequenceNode {
		d := &decoder{}
		for _, item := range collection.Content {
			node := d.decodeNode(item, 0)
			if d.exceeded {
				slog.Warn("collection YAML expands too far, aliases or nodes over budget",
					"aliases", d.aliases, "nodes", d.nodes)
				return types.DefaultDocument()
			}
			if node == nil {
				continue
			}
			result.Sections = append(result.Sections, node)
		}
	}

	sort.SliceStable(result.Sections, func(i, j int) bool {
		return result.Sections[i].Meta.SortKey < result.Sections[j].Meta.SortKey
	})

	if environments := mappingValue(doc, "environments"); environments != nil && environments.Kind == yaml.MappingNode {
		if name := mappingValue(environments, "name"); isString(name) {
			result.EnvRootName = name.Value
		}
		result.BaseData = decodeData(mappingValue(environments, "data"))

		if subs := mappingValue(environments, "subEnvironments"); subs != nil && subs.Kind == yaml.SequenceNode {
			for _, sub := range subs.Content {
				sub = resolveAlias(sub)
				if sub == nil || sub.Kind != yaml.MappingNode {
					continue
				}
				env := types.Environment{
					Data: decodeData(mappingValue(sub, "data")),
				}
				if name := mappingValue(sub, "name"); isScalar(name) {
					env.Name = name.Value
				}
				if env.Data == nil {
					env.Data = map[string]any{}
				}
				result.Envs = append(result.Envs, env)
			}
		}
	}

	return result
}

// decodeNode converts a YAML mapping (or sequence) into a collection node.
// Sequences become containers whose elements are keyed by index.
func (d *decoder) decodeNode(n *yaml.Node, depth int) *types.Node {
	n = d.deref(n)
	if n == nil || d.exceeded || depth > maxNodeDepth {
		return nil
	}
	d.nodes++
	if d.nodes > maxNodeCount {
		d.exceeded = true
		return nil
	}

	switch n.Kind {
	case yaml.SequenceNode:
		return &types.Node{Nested: d.decodeEntries(n, depth)}
	case yaml.MappingNode:
	default:
		return nil
	}

	node := &types.Node{}
	endpointSeen := false

	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		value := d.deref(n.Content[i+1])
		if value == nil {
			continue
		}

		switch key {
		case "name":
			if isScalar(value) {
				node.Name = value.Value
			}
		case "method":
			if isScalar(value) && value.Value != "" {
				node.Method = value.Value
				node.HasMethod = true
			}
		case "endpoint":
			if isScalar(value) && value.Value != "" {
				node.URL = value.Value
				node.HasURL = true
				endpointSeen = true
			}
		case "url":
			if isScalar(value) && value.Value != "" && !endpointSeen {
				node.URL = value.Value
				node.HasURL = true
			}
		case "headers":
			node.Headers = decodeHeaders(value)
		case "parameters":
			node.Parameters = decodeParameters(value)
		case "pathParameters":
			node.PathParameters = decodeParameters(value)
		case "body":
			node.Body = decodeBody(value)
		case "meta":
			node.Meta = decodeMeta(value)
		case "description":
			if isScalar(value) && node.Meta.Description == "" {
				node.Meta.Description = value.Value
			}
		case "children":
			if value.Kind == yaml.MappingNode || value.Kind == yaml.SequenceNode {
				node.HasChildren = true
				node.Children = d.decodeEntries(value, depth)
			}
		default:
			if NonRecursableKeys[key] {
				continue
			}
			if value.Kind != yaml.MappingNode && value.Kind != yaml.SequenceNode {
				continue
			}
			if nested := d.decodeNode(value, depth+1); nested != nil {
				node.Nested = append(node.Nested, types.Entry{Key: key, Node: nested})
			}
		}
	}

	return node
}

// decodeEntries decodes the values of a mapping or the items of a sequence
func (d *decoder) decodeEntries(n *yaml.Node, depth int) []types.Entry {
	var entries []types.Entry
	switch n.Kind {
	case yaml.SequenceNode:
		for i, item := range n.Content {
			if child := d.decodeNode(item, depth+1); child != nil {
				entries = append(entries, types.Entry{Key: strconv.Itoa(i), Node: child})
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if child := d.decodeNode(n.Content[i+1], depth+1); child != nil {
				entries = append(entries, types.Entry{Key: n.Content[i].Value, Node: child})
			}
		}
	}
	return entries
}

// decodeHeaders accepts either a list of {name, value, disabled} or a plain mapping
func decodeHeaders(n *yaml.Node) []types.Header {
	params := decodeParameters(n)
	if len(params) == 0 {
		return nil
	}
	headers := make([]types.Header, 0, len(params))
	for _, p := range params {
		headers = append(headers, types.Header{Name: p.Name, Value: p.Value, Disabled: p.Disabled})
	}
	return headers
}

// decodeParameters accepts either a list of {name, value, description, disabled}
// or a plain mapping of name to value
func decodeParameters(n *yaml.Node) []types.Parameter {
	var params []types.Parameter
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			item = resolveAlias(item)
			if item == nil || item.Kind != yaml.MappingNode {
				continue
			}
			p := types.Parameter{}
			if v := mappingValue(item, "name"); isScalar(v) {
				p.Name = v.Value
			}
			if v := mappingValue(item, "value"); isScalar(v) {
				p.Value = v.Value
			}
			if v := mappingValue(item, "description"); isScalar(v) {
				p.Description = v.Value
			}
			if v := mappingValue(item, "disabled"); isScalar(v) {
				p.Disabled, _ = strconv.ParseBool(v.Value)
			}
			if p.Name == "" {
				continue
			}
			params = append(params, p)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			value := resolveAlias(n.Content[i+1])
			p := types.Parameter{Name: n.Content[i].Value}
			if isScalar(value) {
				p.Value = value.Value
			}
			params = append(params, p)
		}
	}
	return params
}

func decodeBody(n *yaml.Node) *types.Body {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil
		}
		return &types.Body{Text: n.Value}
	case yaml.MappingNode:
		body := &types.Body{}
		if v := mappingValue(n, "mimeType"); isScalar(v) {
			body.MimeType = v.Value
		}
		if v := mappingValue(n, "text"); isScalar(v) {
			body.Text = v.Value
		}
		return body
	}
	return nil
}

func decodeMeta(n *yaml.Node) types.Meta {
	meta := types.Meta{}
	if n.Kind != yaml.MappingNode {
		return meta
	}
	if v := mappingValue(n, "id"); isScalar(v) {
		meta.ID = v.Value
	}
	if v := mappingValue(n, "sortKey"); isScalar(v) {
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			meta.SortKey = f
		}
	}
	if v := mappingValue(n, "description"); isScalar(v) {
		meta.Description = v.Value
	}
	return meta
}

// decodeData decodes an environment data mapping; anything else yields nil
func decodeData(n *yaml.Node) map[string]any {
	n = resolveAlias(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	var data map[string]any
	if err := n.Decode(&data); err != nil {
		slog.Warn("failed to decode environment data", "error", err)
		return nil
	}
	return data
}

func documentRoot(root *yaml.Node) *yaml.Node {
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		return resolveAlias(root.Content[0])
	}
	return resolveAlias(root)
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolveAlias(m.Content[i+1])
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isScalar(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() != "!!null"
}

func isString(n *yaml.Node) bool {
	return isScalar(n) && n.ShortTag() == "!!str"
}
