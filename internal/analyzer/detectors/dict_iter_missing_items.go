package detectors

import (
	"pycheck/internal/models"
	"pycheck/internal/pyast"
	"pycheck/internal/semantic"
)

const (
	dictIterMissingItemsMessage  = "Call `items()` when unpacking a dictionary for iteration"
	dictIterMissingItemsFixTitle = "Add a call to `.items()`"
)

// Semantic is the part of the binding model the detector relies on.
// *semantic.Model implements it.
type Semantic interface {
	OnlyBinding(name *pyast.Name) (*semantic.Binding, bool)
	IsDict(b *semantic.Binding) bool
	Statement(b *semantic.Binding) (pyast.Stmt, bool)
}

// CheckDictIterMissingItems reports a for loop that unpacks two names
// straight out of a dict, e.g. `for k, v in data:`.
func CheckDictIterMissingItems(target, iter pyast.Expr, sem Semantic) (models.Diagnostic, bool) {
	tuple, ok := target.(*pyast.Tuple)
	if !ok || tuple == nil || len(tuple.Elts) != 2 {
		return models.Diagnostic{}, false
	}

	name, ok := pyast.AsName(iter)
	if !ok || sem == nil {
		return models.Diagnostic{}, false
	}

	binding, ok := sem.OnlyBinding(name)
	if !ok || binding == nil {
		return models.Diagnostic{}, false
	}
	if !sem.IsDict(binding) {
		return models.Diagnostic{}, false
	}

	// A dict keyed by pairs unpacks fine without .items().
	if stmt, ok := sem.Statement(binding); ok && hasOnlyPairKeys(stmt) {
		return models.Diagnostic{}, false
	}

	span := name.Span()
	return models.Diagnostic{
		Rule:    models.RuleDictIterMissingItems,
		Name:    DictIterMissingItemsName,
		Message: dictIterMissingItemsMessage,
		Span:    span,
		Fix: models.SafeFix(
			dictIterMissingItemsFixTitle,
			models.Replacement(span, name.ID+".items()"),
		),
	}, true
}

// hasOnlyPairKeys reports whether stmt assigns a dict literal whose keys
// are all two-element tuples. An empty literal qualifies.
func hasOnlyPairKeys(stmt pyast.Stmt) bool {
	var value pyast.Expr
	switch s := stmt.(type) {
	case *pyast.Assign:
		value = s.Value
	case *pyast.AnnAssign:
		value = s.Value
	default:
		return false
	}

	dict, ok := value.(*pyast.Dict)
	if !ok || dict == nil {
		return false
	}
	for _, key := range dict.Keys {
		pair, ok := key.(*pyast.Tuple)
		if !ok || pair == nil || len(pair.Elts) != 2 {
			return false
		}
	}
	return true
}

type DictIterMissingItemsDetector struct{}

func NewDictIterMissingItemsDetector() *DictIterMissingItemsDetector {
	return &DictIterMissingItemsDetector{}
}

func (d *DictIterMissingItemsDetector) Name() string {
	return DictIterMissingItemsName
}

func (d *DictIterMissingItemsDetector) Code() models.RuleCode {
	return models.RuleDictIterMissingItems
}

func (d *DictIterMissingItemsDetector) Detect(mod *pyast.Module, sem Semantic) []models.Diagnostic {
	diagnostics := make([]models.Diagnostic, 0)
	pyast.Inspect(mod, func(n pyast.Node) bool {
		loop, ok := n.(*pyast.For)
		if !ok {
			return true
		}
		if diag, ok := CheckDictIterMissingItems(loop.Target, loop.Iter, sem); ok {
			diagnostics = append(diagnostics, diag)
		}
		return true
	})
	return diagnostics
}
