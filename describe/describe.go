// Package describe reads a display name from objects the instrumented
// application does not own, such as UI controls handed to an intercepted
// method.
//
// Lookup order for a value v:
//  1. an Adapter registered for v's dynamic type,
//  2. the Nameable capability (a Name() string method, when the configured
//     field is "Name"),
//  3. an exported string field or a zero-argument method returning string
//     with the configured name, read through reflection (pointers followed).
//
// Every failure degrades to "": a Describer never returns an error and never
// panics.
package describe

import (
	"reflect"
	"strings"
	"sync"
)

// DefaultField is the member name read by Default.
const DefaultField = "Name"

// Nameable is implemented by values that know their own display name.
type Nameable interface {
	Name() string
}

// Adapter extracts a display name from a value of one concrete type.
type Adapter func(v any) string

// Describer extracts display names.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: all failures yield the empty string.
type Describer struct {
	field    string
	mu       sync.RWMutex
	adapters map[reflect.Type]Adapter
}

// New creates a Describer reading the member called field. An empty field
// means DefaultField.
func New(field string) *Describer {
	field = strings.TrimSpace(field)
	if field == "" {
		field = DefaultField
	}
	return &Describer{field: field, adapters: make(map[reflect.Type]Adapter)}
}

// Default is the Describer used by the built-in integrations.
var Default = New(DefaultField)

// Field returns the member name this Describer reads.
func (d *Describer) Field() string {
	return d.field
}

// Register installs an adapter for the dynamic type of sample. A later
// registration for the same type replaces the earlier one. Nil samples and
// nil adapters are ignored.
func (d *Describer) Register(sample any, adapter Adapter) {
	if sample == nil || adapter == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.adapters[reflect.TypeOf(sample)] = adapter
}

// Name returns the display name of v, or "".
func (d *Describer) Name(v any) (name string) {
	if v == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()

	d.mu.RLock()
	adapter, ok := d.adapters[reflect.TypeOf(v)]
	d.mu.RUnlock()
	if ok {
		return adapter(v)
	}

	if d.field == DefaultField {
		if n, ok := v.(Nameable); ok {
			return n.Name()
		}
	}
	return Member(v, d.field)
}

// Member reads the exported string field or zero-argument string method
// called name from v. Pointers and interfaces are followed. It returns "" when
// the member is absent, unexported, not a string or unreachable through a nil
// pointer.
func Member(v any, name string) (out string) {
	if v == nil || name == "" {
		return ""
	}
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	rv := reflect.ValueOf(v)
	if s, ok := callStringMethod(rv, name); ok {
		return s
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if s, ok := callStringMethod(rv, name); ok {
		return s
	}
	if rv.Kind() != reflect.Struct {
		return ""
	}

	sf, ok := rv.Type().FieldByName(name)
	if !ok || !sf.IsExported() || sf.Type.Kind() != reflect.String {
		return ""
	}
	return rv.FieldByIndex(sf.Index).String()
}

func callStringMethod(rv reflect.Value, name string) (string, bool) {
	m := rv.MethodByName(name)
	if !m.IsValid() {
		return "", false
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() != 1 || mt.Out(0).Kind() != reflect.String {
		return "", false
	}
	return m.Call(nil)[0].String(), true
}
