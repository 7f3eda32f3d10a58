package semantic

import (
	"strings"

	"pycheck/internal/pyast"
)

// Build walks mod and records every scope, binding and name use.
func Build(mod *pyast.Module) *Model {
	b := &builder{
		model: &Model{uses: make(map[*pyast.Name]ScopeID)},
	}
	b.current = b.pushScope(ModuleScope, mod)
	if mod != nil {
		b.stmts(mod.Body)
	}
	return b.model
}

type builder struct {
	model   *Model
	current ScopeID
}

func (b *builder) pushScope(kind ScopeKind, node pyast.Node) ScopeID {
	id := ScopeID(len(b.model.scopes))
	parent := noScope
	if len(b.model.scopes) > 0 {
		parent = b.current
	}
	b.model.scopes = append(b.model.scopes, newScope(id, kind, parent, node))
	return id
}

// within runs fn with a fresh child scope as the current scope.
func (b *builder) within(kind ScopeKind, node pyast.Node, fn func()) {
	saved := b.current
	b.current = b.pushScope(kind, node)
	fn()
	b.current = saved
}

func (b *builder) scope() *Scope {
	return b.model.scopes[b.current]
}

// targetScope picks the scope a new binding of name lands in, following
// global and nonlocal declarations.
func (b *builder) targetScope(name string) *Scope {
	s := b.scope()
	if s.globals[name] {
		return b.model.GlobalScope()
	}
	if s.nonlocals[name] {
		for id := s.Parent; id != noScope; {
			enclosing := b.model.scopes[id]
			if enclosing.Kind == FunctionScope || enclosing.Kind == LambdaScope {
				if len(enclosing.bindings[name]) > 0 || enclosing.Parent == noScope {
					return enclosing
				}
			}
			id = enclosing.Parent
		}
	}
	return s
}

func (b *builder) bind(name *pyast.Name, kind BindingKind, stmt pyast.Stmt, mutate func(*Binding)) {
	if name == nil || name.ID == "" {
		return
	}
	b.bindIn(b.targetScope(name.ID), name, kind, stmt, mutate)
}

func (b *builder) bindIn(scope *Scope, name *pyast.Name, kind BindingKind, stmt pyast.Stmt, mutate func(*Binding)) {
	binding := &Binding{
		ID:    BindingID(len(b.model.bindings)),
		Name:  name.ID,
		Kind:  kind,
		Scope: scope.ID,
		Range: name.Span(),
		Stmt:  stmt,
	}
	if mutate != nil {
		mutate(binding)
	}
	b.model.bindings = append(b.model.bindings, binding)
	scope.bindings[name.ID] = append(scope.bindings[name.ID], binding.ID)
}

func (b *builder) stmts(list []pyast.Stmt) {
	for _, s := range list {
		if s != nil {
			b.stmt(s)
		}
	}
}

func (b *builder) stmt(s pyast.Stmt) {
	switch n := s.(type) {
	case *pyast.Assign:
		b.expr(n.Value)
		for _, target := range n.Targets {
			b.target(target, KindAssignment, n, n.Value)
		}

	case *pyast.AnnAssign:
		b.expr(n.Annotation)
		b.expr(n.Value)
		kind := KindAnnotatedAssignment
		if n.Value == nil {
			kind = KindAnnotation
		}
		if name, ok := n.Target.(*pyast.Name); ok {
			b.bind(name, kind, n, func(bd *Binding) {
				bd.Value = n.Value
				bd.Annotation = n.Annotation
			})
		} else {
			b.target(n.Target, kind, n, nil)
		}

	case *pyast.AugAssign:
		b.expr(n.Value)
		if name, ok := n.Target.(*pyast.Name); ok {
			b.use(name)
			b.bind(name, KindAugmentedAssignment, n, nil)
		} else {
			b.target(n.Target, KindAugmentedAssignment, n, nil)
		}

	case *pyast.For:
		b.expr(n.Iter)
		b.target(n.Target, KindLoopVar, n, nil)
		b.stmts(n.Body)
		b.stmts(n.Orelse)

	case *pyast.While:
		b.expr(n.Test)
		b.stmts(n.Body)
		b.stmts(n.Orelse)

	case *pyast.If:
		b.expr(n.Test)
		b.stmts(n.Body)
		b.stmts(n.Orelse)

	case *pyast.With:
		for _, item := range n.Items {
			b.expr(item.Context)
			if item.Target != nil {
				b.target(item.Target, KindWithItem, n, nil)
			}
		}
		b.stmts(n.Body)

	case *pyast.Try:
		b.stmts(n.Body)
		for _, h := range n.Handlers {
			b.expr(h.Type)
			if h.Name != nil {
				b.bind(h.Name, KindExceptHandler, n, nil)
			}
			b.stmts(h.Body)
		}
		b.stmts(n.Orelse)
		b.stmts(n.Finalbody)

	case *pyast.FunctionDef:
		b.functionDef(n)

	case *pyast.ClassDef:
		b.exprs(n.Decorators)
		b.exprs(n.Bases)
		for _, kw := range n.Keywords {
			b.expr(kw.Value)
		}
		b.bind(n.Name, KindClassDef, n, nil)
		b.within(ClassScope, n, func() {
			b.stmts(n.Body)
		})

	case *pyast.Import:
		for _, alias := range n.Names {
			b.importAlias(n, alias)
		}

	case *pyast.ImportFrom:
		for _, alias := range n.Names {
			if alias.Name == "*" {
				b.scope().starImport = true
				continue
			}
			bound := alias.Name
			if alias.AsName != "" {
				bound = alias.AsName
			}
			qualified := alias.Name
			if n.Module != "" && n.Level == 0 {
				qualified = n.Module + "." + alias.Name
			}
			name := &pyast.Name{Ranged: alias.Ranged, ID: bound, Ctx: pyast.Store}
			b.bind(name, KindFromImport, n, func(bd *Binding) {
				bd.Qualified = qualified
			})
		}

	case *pyast.Global:
		for _, name := range n.Names {
			b.scope().globals[name.ID] = true
		}

	case *pyast.Nonlocal:
		for _, name := range n.Names {
			b.scope().nonlocals[name.ID] = true
		}

	case *pyast.Delete:
		for _, target := range n.Targets {
			b.target(target, KindDeletion, n, nil)
		}

	case *pyast.Return:
		b.expr(n.Value)

	case *pyast.ExprStmt:
		b.expr(n.Value)

	case *pyast.Match:
		b.expr(n.Subject)
		for _, c := range n.Cases {
			for _, capture := range c.Captures {
				if capture.ID != "_" {
					b.bind(capture, KindMatchCapture, n, nil)
				}
			}
			b.expr(c.Guard)
			b.stmts(c.Body)
		}

	case *pyast.OtherStmt:
		b.exprs(n.Exprs)
		for _, name := range n.Binds {
			b.bind(name, KindTypeAlias, n, nil)
		}
		b.stmts(n.Body)
	}
}

func (b *builder) importAlias(stmt *pyast.Import, alias *pyast.Alias) {
	bound := alias.AsName
	qualified := alias.Name
	if bound == "" {
		// `import a.b.c` binds `a`
		bound, _, _ = strings.Cut(alias.Name, ".")
		qualified = bound
	}
	name := &pyast.Name{Ranged: alias.Ranged, ID: bound, Ctx: pyast.Store}
	b.bind(name, KindImport, stmt, func(bd *Binding) {
		bd.Qualified = qualified
	})
}

func (b *builder) functionDef(fn *pyast.FunctionDef) {
	b.exprs(fn.Decorators)
	if fn.Params != nil {
		for _, p := range fn.Params.Args {
			b.expr(p.Default)
			b.expr(p.Annotation)
		}
	}
	b.expr(fn.Returns)
	b.bind(fn.Name, KindFunctionDef, fn, nil)

	b.within(FunctionScope, fn, func() {
		b.parameters(fn.Params, fn)
		b.stmts(fn.Body)
	})
}

func (b *builder) parameters(params *pyast.Parameters, stmt pyast.Stmt) {
	if params == nil {
		return
	}
	for _, p := range params.Args {
		param := p
		b.bind(param.Name, KindArgument, stmt, func(bd *Binding) {
			bd.Annotation = param.Annotation
		})
	}
}

// target binds every name in an assignment target. value is only attached
// when the target is a bare name.
func (b *builder) target(e pyast.Expr, kind BindingKind, stmt pyast.Stmt, value pyast.Expr) {
	switch t := e.(type) {
	case nil:
	case *pyast.Name:
		b.bind(t, kind, stmt, func(bd *Binding) {
			bd.Value = value
		})
	case *pyast.Tuple:
		for _, elt := range t.Elts {
			b.target(elt, kind, stmt, nil)
		}
	case *pyast.List:
		for _, elt := range t.Elts {
			b.target(elt, kind, stmt, nil)
		}
	case *pyast.Starred:
		b.target(t.Value, kind, stmt, nil)
	case *pyast.Attribute:
		b.expr(t.Value)
	case *pyast.Subscript:
		b.expr(t.Value)
		b.expr(t.Slice)
	default:
		b.expr(e)
	}
}

func (b *builder) use(name *pyast.Name) {
	b.model.uses[name] = b.current
}

func (b *builder) exprs(list []pyast.Expr) {
	for _, e := range list {
		b.expr(e)
	}
}

func (b *builder) expr(e pyast.Expr) {
	switch n := e.(type) {
	case nil:
	case *pyast.Name:
		if n.Ctx == pyast.Load {
			b.use(n)
		}
	case *pyast.Tuple:
		b.exprs(n.Elts)
	case *pyast.List:
		b.exprs(n.Elts)
	case *pyast.Set:
		b.exprs(n.Elts)
	case *pyast.Starred:
		b.expr(n.Value)
	case *pyast.Dict:
		for i := range n.Values {
			b.expr(n.Keys[i])
			b.expr(n.Values[i])
		}
	case *pyast.DictComp:
		b.comprehension(n, n.Generators, func() {
			b.expr(n.Key)
			b.expr(n.Value)
		})
	case *pyast.ListComp:
		b.comprehension(n, n.Generators, func() { b.expr(n.Elt) })
	case *pyast.SetComp:
		b.comprehension(n, n.Generators, func() { b.expr(n.Elt) })
	case *pyast.Generator:
		b.comprehension(n, n.Generators, func() { b.expr(n.Elt) })
	case *pyast.Call:
		b.expr(n.Func)
		b.exprs(n.Args)
		for _, kw := range n.Keywords {
			b.expr(kw.Value)
		}
	case *pyast.Attribute:
		b.expr(n.Value)
	case *pyast.Subscript:
		b.expr(n.Value)
		b.expr(n.Slice)
	case *pyast.NamedExpr:
		b.expr(n.Value)
		b.namedExpr(n)
	case *pyast.Lambda:
		if n.Params != nil {
			for _, p := range n.Params.Args {
				b.expr(p.Default)
			}
		}
		b.within(LambdaScope, n, func() {
			b.parameters(n.Params, nil)
			b.expr(n.Body)
		})
	case *pyast.BinOp:
		b.expr(n.Left)
		b.expr(n.Right)
	case *pyast.Other:
		b.exprs(n.Children)
	}
}

// namedExpr binds the walrus target; inside comprehensions it lands in the
// nearest enclosing non-comprehension scope.
func (b *builder) namedExpr(n *pyast.NamedExpr) {
	if n.Target == nil {
		return
	}
	id := b.current
	for b.model.scopes[id].Kind == ComprehensionScope && b.model.scopes[id].Parent != noScope {
		id = b.model.scopes[id].Parent
	}
	saved := b.current
	b.current = id
	b.bind(n.Target, KindNamedExpr, nil, func(bd *Binding) {
		bd.Value = n.Value
	})
	b.current = saved
}

// comprehension evaluates the first iterable in the enclosing scope and
// everything else in a new comprehension scope.
func (b *builder) comprehension(node pyast.Node, gens []*pyast.Comprehension, elt func()) {
	if len(gens) > 0 {
		b.expr(gens[0].Iter)
	}
	b.within(ComprehensionScope, node, func() {
		for i, gen := range gens {
			if i > 0 {
				b.expr(gen.Iter)
			}
			b.target(gen.Target, KindComprehensionVar, nil, nil)
			b.exprs(gen.Ifs)
		}
		elt()
	})
}
