// Package semantic resolves Python names to their bindings.
//
// A Model is built once per module and is read-only afterwards, so detectors
// running in parallel may share it.
package semantic

import (
	"pycheck/internal/pyast"
)

type Model struct {
	scopes   []*Scope
	bindings []*Binding
	// uses records the scope each loaded name is evaluated in.
	uses map[*pyast.Name]ScopeID
}

// Scope returns the scope with the given id, or nil.
func (m *Model) Scope(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(m.scopes) {
		return nil
	}
	return m.scopes[id]
}

// Binding returns the binding with the given id, or nil.
func (m *Model) Binding(id BindingID) *Binding {
	if id < 0 || int(id) >= len(m.bindings) {
		return nil
	}
	return m.bindings[id]
}

func (m *Model) GlobalScope() *Scope {
	return m.scopes[0]
}

// ScopeOf returns the scope a loaded name is evaluated in.
func (m *Model) ScopeOf(name *pyast.Name) (ScopeID, bool) {
	id, ok := m.uses[name]
	return id, ok
}

// Resolve returns all bindings visible for name in the scope it is used in.
// An empty result means the name is a builtin or unbound.
func (m *Model) Resolve(name *pyast.Name) []*Binding {
	if name == nil {
		return nil
	}
	scope, ok := m.uses[name]
	if !ok {
		return nil
	}
	return m.lookup(scope, name.ID)
}

// OnlyBinding returns the binding name resolves to when it is the only
// binding of that name in the resolving scope.
func (m *Model) OnlyBinding(name *pyast.Name) (*Binding, bool) {
	bindings := m.Resolve(name)
	if len(bindings) != 1 || bindings[0] == nil {
		return nil, false
	}
	return bindings[0], true
}

// Statement returns the statement that created b.
func (m *Model) Statement(b *Binding) (pyast.Stmt, bool) {
	if b == nil || b.Stmt == nil {
		return nil, false
	}
	return b.Stmt, true
}

// lookup applies Python's LEGB rule starting at scope.
func (m *Model) lookup(start ScopeID, name string) []*Binding {
	for id := start; id != noScope; {
		scope := m.Scope(id)
		if scope == nil {
			return nil
		}
		// Class bodies are not visible from nested scopes.
		if scope.Kind == ClassScope && id != start {
			id = scope.Parent
			continue
		}
		if scope.globals[name] {
			return m.collect(m.GlobalScope().bindings[name])
		}
		if ids := scope.bindings[name]; len(ids) > 0 {
			return m.collect(ids)
		}
		id = scope.Parent
	}
	return nil
}

// collect returns nil if any id is dangling.
func (m *Model) collect(ids []BindingID) []*Binding {
	out := make([]*Binding, 0, len(ids))
	for _, id := range ids {
		b := m.Binding(id)
		if b == nil {
			return nil
		}
		out = append(out, b)
	}
	return out
}
