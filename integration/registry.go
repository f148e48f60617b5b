package integration

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Definition binds a Target to its behavior. Exactly one of Interceptor and
// Hook is set.
type Definition struct {
	// Name identifies the definition, e.g. "ui.button.click".
	Name string
	// Group names the framework family, e.g. "presentation".
	Group       string
	Target      Target
	Interceptor Interceptor
	Hook        Hook
}

// Validate reports whether the definition can be registered.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if (d.Interceptor == nil) == (d.Hook == nil) {
		return fmt.Errorf("%w: %s needs exactly one of interceptor and hook", ErrInvalidDefinition, d.Name)
	}
	if err := d.Target.Validate(); err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	return nil
}

// Behavior names the kind of behavior for listings.
func (d Definition) Behavior() string {
	if d.Interceptor != nil {
		return "intercept"
	}
	if h, ok := d.Hook.(*SpanHook); ok && h.Root {
		return "entry"
	}
	return "call"
}

// Registry holds definitions by name.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Register rejects invalid and duplicate definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition.
func (r *Registry) Register(def Definition) error {
	def.Name = strings.TrimSpace(def.Name)
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Get returns the definition called name.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[strings.TrimSpace(name)]
	return def, ok
}

// Lookup returns the definition targeting module.typ.method whose version
// range covers version.
func (r *Registry) Lookup(module, typ, method, version string) (Definition, bool) {
	for _, def := range r.List() {
		if def.Target.Matches(module, typ, method) && def.Target.Covers(version) {
			return def, true
		}
	}
	return Definition{}, false
}

// List returns all definitions sorted by name.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Filter returns a new registry with the selected definitions. A definition
// is selected when enabled is empty or lists its name or group, and disabled
// lists neither.
func (r *Registry) Filter(enabled, disabled []string) *Registry {
	on, off := toSet(enabled), toSet(disabled)
	out := NewRegistry()
	for _, def := range r.List() {
		if len(on) > 0 && !on[def.Name] && !on[def.Group] {
			continue
		}
		if off[def.Name] || (def.Group != "" && off[def.Group]) {
			continue
		}
		out.defs[def.Name] = def
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = true
		}
	}
	return set
}
