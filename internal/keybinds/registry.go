package keybinds

import (
	"sort"
	"strings"
)

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry manages keybinding mappings and matching
type Registry struct {
	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action

	// pending tracks multi-key sequences (like 'gg' in vim)
	pending map[Context]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		pending:  make(map[Context]string),
	}
}

// Register adds a keybinding to the registry
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple registers multiple keys for the same action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Unbind removes every key bound to action in context
func (r *Registry) Unbind(context Context, action Action) {
	for key, bound := range r.bindings[context] {
		if bound == action {
			delete(r.bindings[context], key)
		}
	}
}

// Match looks the key up in context first, then in the global context
func (r *Registry) Match(context Context, key string) (Action, bool) {
	if action, ok := r.bindings[context][key]; ok {
		return action, true
	}
	if action, ok := r.bindings[ContextGlobal][key]; ok {
		return action, true
	}
	return "", false
}

// MatchMultiKey handles sequences like 'gg'. It returns the action, whether
// the match is complete and whether the key started a sequence.
func (r *Registry) MatchMultiKey(context Context, key string) (Action, bool, bool) {
	if prev, ok := r.pending[context]; ok {
		delete(r.pending, context)
		if action, ok := r.Match(context, prev+key); ok {
			return action, true, false
		}
		return "", false, false
	}

	if action, ok := r.Match(context, key); ok && action == ActionGoToTopStart {
		r.pending[context] = key
		return "", false, true
	}

	action, ok := r.Match(context, key)
	return action, ok, false
}

// ClearPending drops any half-typed sequence for a context
func (r *Registry) ClearPending(context Context) {
	delete(r.pending, context)
}

// Keys returns the sorted keys bound to an action, falling back to global
func (r *Registry) Keys(context Context, action Action) []string {
	collect := func(ctx Context) []string {
		var keys []string
		for key, bound := range r.bindings[ctx] {
			if bound == action {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		return keys
	}

	if keys := collect(context); len(keys) > 0 {
		return keys
	}
	return collect(ContextGlobal)
}

// KeyString returns a human-readable list of keys bound to an action
func (r *Registry) KeyString(context Context, action Action) string {
	keys := r.Keys(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, "/")
}

// List returns the bindings of one context sorted by action then key
func (r *Registry) List(context Context) []Binding {
	var bindings []Binding
	for key, action := range r.bindings[context] {
		bindings = append(bindings, Binding{Key: key, Action: action, Context: context})
	}
	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Action != bindings[j].Action {
			return bindings[i].Action < bindings[j].Action
		}
		return bindings[i].Key < bindings[j].Key
	})
	return bindings
}

// Clone creates a deep copy of the registry
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	for context, bindings := range r.bindings {
		for key, action := range bindings {
			clone.Register(context, key, action)
		}
	}
	return clone
}
