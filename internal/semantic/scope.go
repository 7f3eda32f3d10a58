package semantic

import "pycheck/internal/pyast"

type ScopeID int

const noScope ScopeID = -1

type ScopeKind uint8

const (
	ModuleScope ScopeKind = iota
	ClassScope
	FunctionScope
	LambdaScope
	ComprehensionScope
)

func (k ScopeKind) String() string {
	switch k {
	case ModuleScope:
		return "module"
	case ClassScope:
		return "class"
	case FunctionScope:
		return "function"
	case LambdaScope:
		return "lambda"
	case ComprehensionScope:
		return "comprehension"
	default:
		return "unknown"
	}
}

type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Parent ScopeID
	Node   pyast.Node

	bindings   map[string][]BindingID
	globals    map[string]bool
	nonlocals  map[string]bool
	starImport bool
}

func newScope(id ScopeID, kind ScopeKind, parent ScopeID, node pyast.Node) *Scope {
	return &Scope{
		ID:        id,
		Kind:      kind,
		Parent:    parent,
		Node:      node,
		bindings:  make(map[string][]BindingID),
		globals:   make(map[string]bool),
		nonlocals: make(map[string]bool),
	}
}

// BindingIDs returns every binding of name created in this scope, in source order.
func (s *Scope) BindingIDs(name string) []BindingID {
	return s.bindings[name]
}

// HasStarImport reports whether the scope contains `from m import *`.
func (s *Scope) HasStarImport() bool {
	return s.starImport
}
