package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pycheck/internal/pyast"
)

func parse(t *testing.T, code string) *pyast.Module {
	t.Helper()
	mod, err := New().Parse("test.py", []byte(code))
	require.NoError(t, err)
	require.NotNil(t, mod)
	return mod
}

func textOf(mod *pyast.Module, n pyast.Node) string {
	return n.Span().Text(mod.Source)
}

func TestParseForLoopShapes(t *testing.T) {
	code := `for city, population in data:
    pass
for (a, b) in (data):
    pass
for [a, b] in data:
    pass
for k, v in get_data():
    pass
async def f():
    async for x, y in stream:
        pass
`
	mod := parse(t, code)
	require.Len(t, mod.Body, 5)

	first := mod.Body[0].(*pyast.For)
	target, ok := first.Target.(*pyast.Tuple)
	require.True(t, ok)
	assert.Len(t, target.Elts, 2)
	assert.False(t, target.Parenthesized)
	assert.Equal(t, pyast.Store, target.Elts[0].(*pyast.Name).Ctx)
	iter, ok := first.Iter.(*pyast.Name)
	require.True(t, ok)
	assert.Equal(t, "data", iter.ID)
	assert.Equal(t, "data", textOf(mod, iter))

	second := mod.Body[1].(*pyast.For)
	target, ok = second.Target.(*pyast.Tuple)
	require.True(t, ok)
	assert.True(t, target.Parenthesized)
	iter, ok = second.Iter.(*pyast.Name)
	require.True(t, ok, "parentheses around the iterable are dropped")
	assert.Equal(t, "data", textOf(mod, iter))

	third := mod.Body[2].(*pyast.For)
	_, ok = third.Target.(*pyast.List)
	assert.True(t, ok)

	fourth := mod.Body[3].(*pyast.For)
	call, ok := fourth.Iter.(*pyast.Call)
	require.True(t, ok)
	assert.Equal(t, "get_data", call.Func.(*pyast.Name).ID)

	fn := mod.Body[4].(*pyast.FunctionDef)
	assert.True(t, fn.IsAsync)
	inner := fn.Body[0].(*pyast.For)
	assert.True(t, inner.IsAsync)
}

func TestParseDictLiteralKeys(t *testing.T) {
	code := `data = {("a", "b"): 1, "c": 2, **base}
`
	mod := parse(t, code)
	assign := mod.Body[0].(*pyast.Assign)
	require.Len(t, assign.Targets, 1)
	d, ok := assign.Value.(*pyast.Dict)
	require.True(t, ok)
	require.Len(t, d.Keys, 3)

	tuple, ok := d.Keys[0].(*pyast.Tuple)
	require.True(t, ok)
	assert.Len(t, tuple.Elts, 2)
	_, ok = d.Keys[1].(*pyast.Constant)
	assert.True(t, ok)
	assert.Nil(t, d.Keys[2])
	assert.Equal(t, "base", d.Values[2].(*pyast.Name).ID)
}

func TestParseAssignments(t *testing.T) {
	code := `a = b = {}
c: dict[str, int] = {}
d: int
e += 1
x, *rest = items
(n := 10)
`
	mod := parse(t, code)
	require.Len(t, mod.Body, 6)

	chained := mod.Body[0].(*pyast.Assign)
	require.Len(t, chained.Targets, 2)
	assert.Equal(t, "a", chained.Targets[0].(*pyast.Name).ID)
	assert.Equal(t, "b", chained.Targets[1].(*pyast.Name).ID)
	_, ok := chained.Value.(*pyast.Dict)
	assert.True(t, ok)

	ann := mod.Body[1].(*pyast.AnnAssign)
	assert.Equal(t, "c", ann.Target.(*pyast.Name).ID)
	sub, ok := ann.Annotation.(*pyast.Subscript)
	require.True(t, ok)
	assert.Equal(t, "dict", sub.Value.(*pyast.Name).ID)
	assert.NotNil(t, ann.Value)

	bare := mod.Body[2].(*pyast.AnnAssign)
	assert.Nil(t, bare.Value)

	aug := mod.Body[3].(*pyast.AugAssign)
	assert.Equal(t, "+=", aug.Op)

	unpack := mod.Body[4].(*pyast.Assign)
	tuple := unpack.Targets[0].(*pyast.Tuple)
	require.Len(t, tuple.Elts, 2)
	star, ok := tuple.Elts[1].(*pyast.Starred)
	require.True(t, ok)
	assert.Equal(t, "rest", star.Value.(*pyast.Name).ID)

	walrus := mod.Body[5].(*pyast.ExprStmt)
	ne, ok := walrus.Value.(*pyast.NamedExpr)
	require.True(t, ok)
	assert.Equal(t, "n", ne.Target.ID)
}

func TestParseBindingStatements(t *testing.T) {
	code := `import os, collections as c
from ..pkg import a, b as bb
from typing import *

def f(x, y: dict, *args, z=1, **kw) -> None:
    global g
    with open(x) as fh, lock:
        pass
    try:
        pass
    except ValueError as err:
        pass
    del x

@decorator
class K(Base, metaclass=Meta):
    pass
`
	mod := parse(t, code)
	require.Len(t, mod.Body, 5)

	imp := mod.Body[0].(*pyast.Import)
	require.Len(t, imp.Names, 2)
	assert.Equal(t, "os", imp.Names[0].Name)
	assert.Equal(t, "collections", imp.Names[1].Name)
	assert.Equal(t, "c", imp.Names[1].AsName)

	from := mod.Body[1].(*pyast.ImportFrom)
	assert.Equal(t, 2, from.Level)
	assert.Equal(t, "pkg", from.Module)
	require.Len(t, from.Names, 2)
	assert.Equal(t, "bb", from.Names[1].AsName)

	star := mod.Body[2].(*pyast.ImportFrom)
	require.Len(t, star.Names, 1)
	assert.Equal(t, "*", star.Names[0].Name)

	fn := mod.Body[3].(*pyast.FunctionDef)
	assert.Equal(t, "f", fn.Name.ID)
	require.Len(t, fn.Params.Args, 5)
	assert.Equal(t, "y", fn.Params.Args[1].Name.ID)
	assert.Equal(t, "dict", fn.Params.Args[1].Annotation.(*pyast.Name).ID)
	assert.Equal(t, pyast.ParamVarArgs, fn.Params.Args[2].Kind)
	assert.NotNil(t, fn.Params.Args[3].Default)
	assert.Equal(t, pyast.ParamKwArgs, fn.Params.Args[4].Kind)

	require.Len(t, fn.Body, 4)
	global := fn.Body[0].(*pyast.Global)
	assert.Equal(t, "g", global.Names[0].ID)

	with := fn.Body[1].(*pyast.With)
	require.Len(t, with.Items, 2)
	assert.Equal(t, "fh", with.Items[0].Target.(*pyast.Name).ID)
	assert.Nil(t, with.Items[1].Target)

	try := fn.Body[2].(*pyast.Try)
	require.Len(t, try.Handlers, 1)
	require.NotNil(t, try.Handlers[0].Name)
	assert.Equal(t, "err", try.Handlers[0].Name.ID)

	del := fn.Body[3].(*pyast.Delete)
	assert.Equal(t, pyast.Del, del.Targets[0].(*pyast.Name).Ctx)

	cls := mod.Body[4].(*pyast.ClassDef)
	assert.Equal(t, "K", cls.Name.ID)
	assert.Len(t, cls.Decorators, 1)
	assert.Len(t, cls.Bases, 1)
	require.Len(t, cls.Keywords, 1)
	assert.Equal(t, "metaclass", cls.Keywords[0].Arg)
}

func TestParseIfElifElse(t *testing.T) {
	code := `if a:
    x = 1
elif b:
    x = 2
else:
    x = 3
`
	mod := parse(t, code)
	root := mod.Body[0].(*pyast.If)
	require.Len(t, root.Orelse, 1)
	elif := root.Orelse[0].(*pyast.If)
	assert.Equal(t, "b", elif.Test.(*pyast.Name).ID)
	require.Len(t, elif.Orelse, 1)
	_, ok := elif.Orelse[0].(*pyast.Assign)
	assert.True(t, ok)
}

func TestParseMatchCaptures(t *testing.T) {
	code := `match command:
    case [action, obj]:
        pass
    case _:
        pass
`
	mod := parse(t, code)
	m, ok := mod.Body[0].(*pyast.Match)
	require.True(t, ok)
	require.Len(t, m.Cases, 2)

	var captured []string
	for _, n := range m.Cases[0].Captures {
		captured = append(captured, n.ID)
	}
	assert.Contains(t, captured, "action")
	assert.Contains(t, captured, "obj")
}

func TestParseComprehensions(t *testing.T) {
	code := `squares = {k: v * v for k, v in pairs if v}
`
	mod := parse(t, code)
	assign := mod.Body[0].(*pyast.Assign)
	dc, ok := assign.Value.(*pyast.DictComp)
	require.True(t, ok)
	require.Len(t, dc.Generators, 1)
	gen := dc.Generators[0]
	assert.Len(t, gen.Target.(*pyast.Tuple).Elts, 2)
	assert.Equal(t, "pairs", gen.Iter.(*pyast.Name).ID)
	assert.Len(t, gen.Ifs, 1)
}

func TestParseSyntaxErrorStillReturnsModule(t *testing.T) {
	mod, err := New().Parse("broken.py", []byte("data = {\nfor a, b in data:\n    pass\n"))
	require.ErrorIs(t, err, ErrSyntax)
	require.NotNil(t, mod)
}

func TestParserConcurrentUse(t *testing.T) {
	p := New()
	src := []byte("data = {'a': 1}\nfor k, v in data:\n    pass\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				mod, err := p.Parse("c.py", src)
				assert.NoError(t, err)
				assert.Len(t, mod.Body, 2)
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, p.pool.Leased())
}

func TestIsPythonFile(t *testing.T) {
	assert.True(t, IsPythonFile("pkg/mod.py"))
	assert.True(t, IsPythonFile("stubs/mod.PYI"))
	assert.False(t, IsPythonFile("main.go"))
}
