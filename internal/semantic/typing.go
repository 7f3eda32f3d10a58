package semantic

import "pycheck/internal/pyast"

// Constructors whose call result is a dict.
var dictConstructors = map[string]bool{
	"builtins.dict":           true,
	"collections.OrderedDict": true,
	"collections.defaultdict": true,
}

// Annotations that denote a dict.
var dictAnnotations = map[string]bool{
	"builtins.dict":                 true,
	"typing.Dict":                   true,
	"typing.OrderedDict":            true,
	"typing.DefaultDict":            true,
	"typing_extensions.OrderedDict": true,
	"typing_extensions.DefaultDict": true,
	"collections.OrderedDict":       true,
	"collections.defaultdict":       true,
}

// IsDict reports whether b is statically known to hold a dict.
func (m *Model) IsDict(b *Binding) bool {
	if b == nil {
		return false
	}
	switch b.Kind {
	case KindAssignment, KindNamedExpr:
		return m.isDictExpr(b.Value)
	case KindAnnotatedAssignment:
		return m.isDictAnnotation(b.Annotation) || m.isDictExpr(b.Value)
	case KindAnnotation, KindArgument:
		return m.isDictAnnotation(b.Annotation)
	default:
		return false
	}
}

func (m *Model) isDictExpr(e pyast.Expr) bool {
	switch v := e.(type) {
	case *pyast.Dict, *pyast.DictComp:
		return true
	case *pyast.Call:
		return dictConstructors[m.QualifiedName(v.Func)]
	default:
		return false
	}
}

func (m *Model) isDictAnnotation(e pyast.Expr) bool {
	if sub, ok := e.(*pyast.Subscript); ok {
		e = sub.Value
	}
	return dictAnnotations[m.QualifiedName(e)]
}

// QualifiedName resolves a name or attribute chain to the dotted path of the
// symbol it refers to. Unbound names resolve to "builtins.<name>". The empty
// string means the expression refers to something defined locally or cannot
// be resolved.
func (m *Model) QualifiedName(e pyast.Expr) string {
	switch v := e.(type) {
	case *pyast.Name:
		bindings := m.Resolve(v)
		if len(bindings) == 0 {
			if _, used := m.uses[v]; !used || m.GlobalScope().HasStarImport() {
				return ""
			}
			return "builtins." + v.ID
		}
		if len(bindings) != 1 {
			return ""
		}
		switch bindings[0].Kind {
		case KindImport, KindFromImport:
			return bindings[0].Qualified
		}
		return ""
	case *pyast.Attribute:
		base := m.QualifiedName(v.Value)
		if base == "" {
			return ""
		}
		return base + "." + v.Attr
	default:
		return ""
	}
}
