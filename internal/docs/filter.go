package docs

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/docportal/internal/types"
	"golang.org/x/text/cases"
)

// FilterEndpoints keeps endpoints whose title, method or URL contains term,
// ignoring case. An empty term keeps everything.
func FilterEndpoints(endpoints []types.EndpointData, term string) []types.EndpointData {
	if strings.TrimSpace(term) == "" {
		return endpoints
	}

	fold := cases.Fold()
	needle := fold.String(term)

	filtered := []types.EndpointData{}
	for _, ep := range endpoints {
		if strings.Contains(fold.String(ep.Title), needle) ||
			strings.Contains(fold.String(ep.Method), needle) ||
			strings.Contains(fold.String(ep.URL), needle) {
			filtered = append(filtered, ep)
		}
	}
	return filtered
}

// FilterNav keeps the subtrees whose endpoint leaves match term by title or
// method. Folders left without children are pruned.
func FilterNav(items []types.NavItem, term string) []types.NavItem {
	if strings.TrimSpace(term) == "" {
		return items
	}
	fold := cases.Fold()
	return filterNav(items, fold.String(term), fold)
}

func filterNav(items []types.NavItem, needle string, fold cases.Caser) []types.NavItem {
	filtered := []types.NavItem{}
	for _, item := range items {
		if item.IsFolder() {
			children := filterNav(item.Children, needle, fold)
			if len(children) == 0 {
				continue
			}
			folder := item
			folder.Children = children
			filtered = append(filtered, folder)
			continue
		}

		if strings.Contains(fold.String(item.Title), needle) ||
			strings.Contains(fold.String(item.Method), needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// View is the reader's display state: a search term and an optional selected
// endpoint. A non-empty search term takes precedence over the selection.
type View struct {
	Search   string
	Selected string
}

// SetSearch updates the search term; entering a term clears the selection
func (v *View) SetSearch(term string) {
	v.Search = term
	if strings.TrimSpace(term) != "" {
		v.Selected = ""
	}
}

// Select narrows the displayed endpoints to a single id
func (v *View) Select(id string) {
	v.Selected = id
}

// ClearSelection shows every endpoint again
func (v *View) ClearSelection() {
	v.Selected = ""
}

// Apply returns the endpoints and navigation visible under the view.
// An unknown selected id is ignored.
func (v View) Apply(result Result) Result {
	visible := Result{
		Endpoints: FilterEndpoints(result.Endpoints, v.Search),
		Nav:       FilterNav(result.Nav, v.Search),
	}

	if v.Selected != "" && strings.TrimSpace(v.Search) == "" {
		for _, ep := range result.Endpoints {
			if ep.ID == v.Selected {
				visible.Endpoints = []types.EndpointData{ep}
				break
			}
		}
	}
	return visible
}

// Find returns the endpoint with the given id
func Find(endpoints []types.EndpointData, id string) (types.EndpointData, bool) {
	for _, ep := range endpoints {
		if ep.ID == id {
			return ep, true
		}
	}
	return types.EndpointData{}, false
}

// DuplicateIDs reports endpoint ids shared by more than one endpoint, sorted
func DuplicateIDs(endpoints []types.EndpointData) []string {
	counts := make(map[string]int)
	for _, ep := range endpoints {
		counts[ep.ID]++
	}
	var dupes []string
	for id, count := range counts {
		if count > 1 {
			dupes = append(dupes, id)
		}
	}
	sort.Strings(dupes)
	return dupes
}

// endpointSource adapts endpoints to fuzzy.Source
type endpointSource []types.EndpointData

func (s endpointSource) String(i int) string {
	return s[i].Method + " " + s[i].Title + " " + s[i].URL
}

func (s endpointSource) Len() int {
	return len(s)
}

// Rank orders endpoints by fuzzy match quality against term, dropping the
// ones that do not match at all. Used for quick-jump.
func Rank(endpoints []types.EndpointData, term string) []types.EndpointData {
	if strings.TrimSpace(term) == "" {
		return endpoints
	}
	matches := fuzzy.FindFrom(term, endpointSource(endpoints))
	ranked := make([]types.EndpointData, 0, len(matches))
	for _, match := range matches {
		ranked = append(ranked, endpoints[match.Index])
	}
	return ranked
}

// Flatten lists nav items depth-first with their nesting depth
func Flatten(items []types.NavItem) []FlatItem {
	var flat []FlatItem
	var walk func([]types.NavItem, int)
	walk = func(items []types.NavItem, depth int) {
		for _, item := range items {
			flat = append(flat, FlatItem{Item: item, Depth: depth})
			if item.IsFolder() {
				walk(item.Children, depth+1)
			}
		}
	}
	walk(items, 0)
	return flat
}

// FlatItem is a nav item with its nesting depth
type FlatItem struct {
	Item  types.NavItem
	Depth int
}
