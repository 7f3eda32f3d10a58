package pyast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pycheck/internal/source"
)

func name(id string, start uint32, ctx ExprContext) *Name {
	return &Name{Ranged: Ranged{source.NewSpan(start, start+uint32(len(id)))}, ID: id, Ctx: ctx}
}

func TestInspectVisitsNestedLoops(t *testing.T) {
	inner := &For{
		Target: &Tuple{Elts: []Expr{name("k", 0, Store), name("v", 0, Store)}},
		Iter:   name("data", 0, Load),
	}
	outer := &For{
		Target: name("row", 0, Store),
		Iter:   &Call{Func: name("rows", 0, Load)},
		Body: []Stmt{
			&If{Test: name("row", 0, Load), Body: []Stmt{inner}},
		},
	}
	fn := &FunctionDef{Name: name("f", 0, Store), Body: []Stmt{outer}}
	mod := &Module{Body: []Stmt{fn}}

	var loops []*For
	var names []string
	Inspect(mod, func(n Node) bool {
		switch x := n.(type) {
		case *For:
			loops = append(loops, x)
		case *Name:
			names = append(names, x.ID)
		}
		return true
	})

	assert.Equal(t, []*For{outer, inner}, loops)
	assert.Equal(t, []string{"f", "row", "rows", "row", "k", "v", "data"}, names)
}

func TestInspectPrunesChildren(t *testing.T) {
	mod := &Module{Body: []Stmt{
		&FunctionDef{Name: name("f", 0, Store), Body: []Stmt{
			&For{Target: name("x", 0, Store), Iter: name("xs", 0, Load)},
		}},
	}}

	count := 0
	Inspect(mod, func(n Node) bool {
		if _, ok := n.(*For); ok {
			count++
		}
		_, isFunc := n.(*FunctionDef)
		return !isFunc
	})
	assert.Zero(t, count)
}

func TestInspectDictSpreadKey(t *testing.T) {
	d := &Dict{
		Keys:   []Expr{nil, &Constant{Kind: ConstString, Text: `"a"`}},
		Values: []Expr{name("base", 0, Load), &Constant{Kind: ConstInt, Text: "1"}},
	}
	var kinds []string
	Inspect(d, func(n Node) bool {
		switch x := n.(type) {
		case *Name:
			kinds = append(kinds, "name:"+x.ID)
		case *Constant:
			kinds = append(kinds, "const:"+x.Text)
		}
		return true
	})
	assert.Equal(t, []string{"name:base", `const:"a"`, "const:1"}, kinds)
}
