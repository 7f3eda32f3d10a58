package pyast

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node. If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Module:
		walkStmts(n.Body, f)

	case *Tuple:
		walkExprs(n.Elts, f)
	case *List:
		walkExprs(n.Elts, f)
	case *Set:
		walkExprs(n.Elts, f)
	case *Starred:
		walkExpr(n.Value, f)
	case *Dict:
		for i := range n.Values {
			walkExpr(n.Keys[i], f)
			walkExpr(n.Values[i], f)
		}
	case *Comprehension:
		walkExpr(n.Target, f)
		walkExpr(n.Iter, f)
		walkExprs(n.Ifs, f)
	case *DictComp:
		walkExpr(n.Key, f)
		walkExpr(n.Value, f)
		walkComprehensions(n.Generators, f)
	case *ListComp:
		walkExpr(n.Elt, f)
		walkComprehensions(n.Generators, f)
	case *SetComp:
		walkExpr(n.Elt, f)
		walkComprehensions(n.Generators, f)
	case *Generator:
		walkExpr(n.Elt, f)
		walkComprehensions(n.Generators, f)
	case *Keyword:
		walkExpr(n.Value, f)
	case *Call:
		walkExpr(n.Func, f)
		walkExprs(n.Args, f)
		for _, kw := range n.Keywords {
			Inspect(kw, f)
		}
	case *Attribute:
		walkExpr(n.Value, f)
	case *Subscript:
		walkExpr(n.Value, f)
		walkExpr(n.Slice, f)
	case *NamedExpr:
		if n.Target != nil {
			Inspect(n.Target, f)
		}
		walkExpr(n.Value, f)
	case *Lambda:
		if n.Params != nil {
			Inspect(n.Params, f)
		}
		walkExpr(n.Body, f)
	case *BinOp:
		walkExpr(n.Left, f)
		walkExpr(n.Right, f)
	case *Other:
		walkExprs(n.Children, f)

	case *Assign:
		walkExprs(n.Targets, f)
		walkExpr(n.Value, f)
	case *AnnAssign:
		walkExpr(n.Target, f)
		walkExpr(n.Annotation, f)
		walkExpr(n.Value, f)
	case *AugAssign:
		walkExpr(n.Target, f)
		walkExpr(n.Value, f)
	case *For:
		walkExpr(n.Target, f)
		walkExpr(n.Iter, f)
		walkStmts(n.Body, f)
		walkStmts(n.Orelse, f)
	case *While:
		walkExpr(n.Test, f)
		walkStmts(n.Body, f)
		walkStmts(n.Orelse, f)
	case *If:
		walkExpr(n.Test, f)
		walkStmts(n.Body, f)
		walkStmts(n.Orelse, f)
	case *WithItem:
		walkExpr(n.Context, f)
		walkExpr(n.Target, f)
	case *With:
		for _, item := range n.Items {
			Inspect(item, f)
		}
		walkStmts(n.Body, f)
	case *ExceptHandler:
		walkExpr(n.Type, f)
		if n.Name != nil {
			Inspect(n.Name, f)
		}
		walkStmts(n.Body, f)
	case *Try:
		walkStmts(n.Body, f)
		for _, h := range n.Handlers {
			Inspect(h, f)
		}
		walkStmts(n.Orelse, f)
		walkStmts(n.Finalbody, f)
	case *Parameter:
		if n.Name != nil {
			Inspect(n.Name, f)
		}
		walkExpr(n.Annotation, f)
		walkExpr(n.Default, f)
	case *Parameters:
		for _, p := range n.Args {
			Inspect(p, f)
		}
	case *FunctionDef:
		walkExprs(n.Decorators, f)
		if n.Name != nil {
			Inspect(n.Name, f)
		}
		if n.Params != nil {
			Inspect(n.Params, f)
		}
		walkExpr(n.Returns, f)
		walkStmts(n.Body, f)
	case *ClassDef:
		walkExprs(n.Decorators, f)
		if n.Name != nil {
			Inspect(n.Name, f)
		}
		walkExprs(n.Bases, f)
		for _, kw := range n.Keywords {
			Inspect(kw, f)
		}
		walkStmts(n.Body, f)
	case *Import:
		for _, a := range n.Names {
			Inspect(a, f)
		}
	case *ImportFrom:
		for _, a := range n.Names {
			Inspect(a, f)
		}
	case *Global:
		for _, name := range n.Names {
			Inspect(name, f)
		}
	case *Nonlocal:
		for _, name := range n.Names {
			Inspect(name, f)
		}
	case *Delete:
		walkExprs(n.Targets, f)
	case *Return:
		walkExpr(n.Value, f)
	case *ExprStmt:
		walkExpr(n.Value, f)
	case *MatchCase:
		for _, name := range n.Captures {
			Inspect(name, f)
		}
		walkExpr(n.Guard, f)
		walkStmts(n.Body, f)
	case *Match:
		walkExpr(n.Subject, f)
		for _, c := range n.Cases {
			Inspect(c, f)
		}
	case *OtherStmt:
		walkExprs(n.Exprs, f)
		for _, name := range n.Binds {
			Inspect(name, f)
		}
		walkStmts(n.Body, f)
	}
}

func walkExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func walkExprs(list []Expr, f func(Node) bool) {
	for _, e := range list {
		walkExpr(e, f)
	}
}

func walkStmts(list []Stmt, f func(Node) bool) {
	for _, s := range list {
		if s != nil {
			Inspect(s, f)
		}
	}
}

func walkComprehensions(list []*Comprehension, f func(Node) bool) {
	for _, c := range list {
		if c != nil {
			Inspect(c, f)
		}
	}
}
