package semantic

import (
	"pycheck/internal/pyast"
	"pycheck/internal/source"
)

type BindingID int

type BindingKind uint8

const (
	KindAssignment BindingKind = iota
	KindAnnotatedAssignment
	KindAnnotation // `x: int` without a value
	KindAugmentedAssignment
	KindNamedExpr
	KindLoopVar
	KindWithItem
	KindArgument
	KindImport
	KindFromImport
	KindFunctionDef
	KindClassDef
	KindDeletion
	KindExceptHandler
	KindComprehensionVar
	KindMatchCapture
	KindTypeAlias
)

func (k BindingKind) String() string {
	switch k {
	case KindAssignment:
		return "assignment"
	case KindAnnotatedAssignment:
		return "annotated-assignment"
	case KindAnnotation:
		return "annotation"
	case KindAugmentedAssignment:
		return "augmented-assignment"
	case KindNamedExpr:
		return "named-expr"
	case KindLoopVar:
		return "loop-var"
	case KindWithItem:
		return "with-item"
	case KindArgument:
		return "argument"
	case KindImport:
		return "import"
	case KindFromImport:
		return "from-import"
	case KindFunctionDef:
		return "function"
	case KindClassDef:
		return "class"
	case KindDeletion:
		return "deletion"
	case KindExceptHandler:
		return "except-handler"
	case KindComprehensionVar:
		return "comprehension-var"
	case KindMatchCapture:
		return "match-capture"
	case KindTypeAlias:
		return "type-alias"
	default:
		return "unknown"
	}
}

// Binding is one place where a name receives a value.
type Binding struct {
	ID    BindingID
	Name  string
	Kind  BindingKind
	Scope ScopeID
	Range source.Span

	// Stmt is the statement that created the binding, nil for bindings
	// created inside expressions of comprehension scopes.
	Stmt pyast.Stmt

	// Value is the expression assigned to the name when the name is the whole
	// assignment target (not a tuple-unpacking element).
	Value pyast.Expr

	// Annotation is set for annotated assignments and annotated parameters.
	Annotation pyast.Expr

	// Qualified is the imported symbol for import bindings, e.g.
	// "collections.OrderedDict".
	Qualified string
}
