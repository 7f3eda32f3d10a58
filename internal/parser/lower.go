package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"pycheck/internal/pyast"
	"pycheck/internal/source"
)

var statementKinds = map[string]bool{
	"expression_statement":    true,
	"for_statement":           true,
	"while_statement":         true,
	"if_statement":            true,
	"with_statement":          true,
	"try_statement":           true,
	"function_definition":     true,
	"class_definition":        true,
	"decorated_definition":    true,
	"import_statement":        true,
	"import_from_statement":   true,
	"future_import_statement": true,
	"global_statement":        true,
	"nonlocal_statement":      true,
	"delete_statement":        true,
	"return_statement":        true,
	"match_statement":         true,
	"type_alias_statement":    true,
	"pass_statement":          true,
	"break_statement":         true,
	"continue_statement":      true,
	"raise_statement":         true,
	"assert_statement":        true,
	"print_statement":         true,
	"exec_statement":          true,
}

// lowerer converts a tree-sitter Python tree into pyast nodes.
type lowerer struct {
	src []byte
}

func newLowerer(src []byte) *lowerer {
	return &lowerer{src: src}
}

func (l *lowerer) ranged(n *sitter.Node) pyast.Ranged {
	return pyast.Ranged{Range: source.NewSpan(uint32(n.StartByte()), uint32(n.EndByte()))}
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(l.src[n.StartByte():n.EndByte()])
}

func isExtra(kind string) bool {
	return kind == "comment" || kind == "line_continuation"
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || !c.IsNamed() || isExtra(c.Kind()) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	kids := namedChildren(n)
	if len(kids) == 0 {
		return nil
	}
	return kids[0]
}

func childOfKind(n *sitter.Node, kind string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func hasToken(n *sitter.Node, token string) bool {
	return childOfKind(n, token) != nil
}

func (l *lowerer) module(root *sitter.Node) *pyast.Module {
	return &pyast.Module{
		Ranged: l.ranged(root),
		Body:   l.block(root),
		Source: l.src,
	}
}

func (l *lowerer) block(n *sitter.Node) []pyast.Stmt {
	if n == nil {
		return nil
	}
	var out []pyast.Stmt
	for _, c := range namedChildren(n) {
		if s := l.stmt(c); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// clauseBody returns the block of an else/finally clause.
func (l *lowerer) clauseBody(n *sitter.Node) []pyast.Stmt {
	if n == nil {
		return nil
	}
	if body := n.ChildByFieldName("body"); body != nil {
		return l.block(body)
	}
	return l.block(childOfKind(n, "block"))
}

func (l *lowerer) stmt(n *sitter.Node) pyast.Stmt {
	switch n.Kind() {
	case "expression_statement":
		return l.exprStatement(n)
	case "for_statement":
		return &pyast.For{
			Ranged:  l.ranged(n),
			Target:  l.exprCtx(n.ChildByFieldName("left"), pyast.Store),
			Iter:    l.expr(n.ChildByFieldName("right")),
			Body:    l.block(n.ChildByFieldName("body")),
			Orelse:  l.clauseBody(n.ChildByFieldName("alternative")),
			IsAsync: hasToken(n, "async"),
		}
	case "while_statement":
		return &pyast.While{
			Ranged: l.ranged(n),
			Test:   l.expr(n.ChildByFieldName("condition")),
			Body:   l.block(n.ChildByFieldName("body")),
			Orelse: l.clauseBody(n.ChildByFieldName("alternative")),
		}
	case "if_statement":
		return l.ifStmt(n)
	case "with_statement":
		return l.withStmt(n)
	case "try_statement":
		return l.tryStmt(n)
	case "function_definition":
		return l.functionDef(n)
	case "class_definition":
		return l.classDef(n)
	case "decorated_definition":
		return l.decorated(n)
	case "import_statement":
		return &pyast.Import{Ranged: l.ranged(n), Names: l.aliases(n, nil)}
	case "import_from_statement":
		return l.importFrom(n)
	case "future_import_statement":
		return &pyast.ImportFrom{Ranged: l.ranged(n), Module: "__future__", Names: l.aliases(n, nil)}
	case "global_statement":
		return &pyast.Global{Ranged: l.ranged(n), Names: l.identifiers(n)}
	case "nonlocal_statement":
		return &pyast.Nonlocal{Ranged: l.ranged(n), Names: l.identifiers(n)}
	case "delete_statement":
		return l.deleteStmt(n)
	case "return_statement":
		ret := &pyast.Return{Ranged: l.ranged(n)}
		if value := firstNamed(n); value != nil {
			ret.Value = l.expr(value)
		}
		return ret
	case "match_statement":
		return l.matchStmt(n)
	case "type_alias_statement":
		return l.typeAlias(n)
	default:
		return l.otherStmt(n)
	}
}

func (l *lowerer) exprStatement(n *sitter.Node) pyast.Stmt {
	kids := namedChildren(n)
	switch {
	case len(kids) == 0:
		return &pyast.OtherStmt{Ranged: l.ranged(n), Kind: n.Kind()}
	case len(kids) > 1:
		// `a, b` as a bare statement
		elts := make([]pyast.Expr, 0, len(kids))
		for _, c := range kids {
			elts = append(elts, l.expr(c))
		}
		return &pyast.ExprStmt{Ranged: l.ranged(n), Value: &pyast.Tuple{Ranged: l.ranged(n), Elts: elts}}
	}

	c := kids[0]
	switch c.Kind() {
	case "assignment":
		return l.assignment(c)
	case "augmented_assignment":
		return &pyast.AugAssign{
			Ranged: l.ranged(c),
			Target: l.exprCtx(c.ChildByFieldName("left"), pyast.Store),
			Op:     l.text(c.ChildByFieldName("operator")),
			Value:  l.expr(c.ChildByFieldName("right")),
		}
	default:
		return &pyast.ExprStmt{Ranged: l.ranged(n), Value: l.expr(c)}
	}
}

func (l *lowerer) assignment(n *sitter.Node) pyast.Stmt {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	if typ := n.ChildByFieldName("type"); typ != nil {
		ann := &pyast.AnnAssign{
			Ranged:     l.ranged(n),
			Target:     l.exprCtx(left, pyast.Store),
			Annotation: l.expr(typ),
		}
		if right != nil {
			ann.Value = l.expr(right)
		}
		return ann
	}

	assign := &pyast.Assign{Ranged: l.ranged(n)}
	assign.Targets = append(assign.Targets, l.exprCtx(left, pyast.Store))
	// a = b = value nests assignments on the right.
	for right != nil && right.Kind() == "assignment" && right.ChildByFieldName("type") == nil {
		assign.Targets = append(assign.Targets, l.exprCtx(right.ChildByFieldName("left"), pyast.Store))
		right = right.ChildByFieldName("right")
	}
	if right != nil {
		assign.Value = l.expr(right)
	}
	return assign
}

func (l *lowerer) ifStmt(n *sitter.Node) pyast.Stmt {
	root := &pyast.If{
		Ranged: l.ranged(n),
		Test:   l.expr(n.ChildByFieldName("condition")),
		Body:   l.block(n.ChildByFieldName("consequence")),
	}
	current := root
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "elif_clause":
			nested := &pyast.If{
				Ranged: pyast.Ranged{Range: source.NewSpan(uint32(c.StartByte()), uint32(n.EndByte()))},
				Test:   l.expr(c.ChildByFieldName("condition")),
				Body:   l.block(c.ChildByFieldName("consequence")),
			}
			current.Orelse = []pyast.Stmt{nested}
			current = nested
		case "else_clause":
			current.Orelse = l.clauseBody(c)
		}
	}
	return root
}

func (l *lowerer) withStmt(n *sitter.Node) pyast.Stmt {
	with := &pyast.With{
		Ranged:  l.ranged(n),
		Body:    l.block(n.ChildByFieldName("body")),
		IsAsync: hasToken(n, "async"),
	}
	clause := childOfKind(n, "with_clause")
	for _, item := range namedChildren(clause) {
		if item.Kind() != "with_item" {
			continue
		}
		value := item.ChildByFieldName("value")
		if value == nil {
			value = firstNamed(item)
		}
		wi := &pyast.WithItem{Ranged: l.ranged(item)}
		if value != nil && value.Kind() == "as_pattern" {
			wi.Context = l.expr(firstNamed(value))
			if target := asPatternTarget(value); target != nil {
				wi.Target = l.exprCtx(target, pyast.Store)
			}
		} else {
			wi.Context = l.expr(value)
		}
		with.Items = append(with.Items, wi)
	}
	return with
}

// asPatternTarget returns the expression after `as` in an as_pattern.
func asPatternTarget(n *sitter.Node) *sitter.Node {
	alias := n.ChildByFieldName("alias")
	if alias == nil {
		kids := namedChildren(n)
		if len(kids) < 2 {
			return nil
		}
		alias = kids[len(kids)-1]
	}
	if alias.Kind() == "as_pattern_target" {
		return firstNamed(alias)
	}
	return alias
}

func (l *lowerer) tryStmt(n *sitter.Node) pyast.Stmt {
	try := &pyast.Try{
		Ranged: l.ranged(n),
		Body:   l.block(n.ChildByFieldName("body")),
	}
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "except_clause", "except_group_clause":
			try.Handlers = append(try.Handlers, l.exceptHandler(c))
		case "else_clause":
			try.Orelse = l.clauseBody(c)
		case "finally_clause":
			try.Finalbody = l.clauseBody(c)
		}
	}
	return try
}

func (l *lowerer) exceptHandler(n *sitter.Node) *pyast.ExceptHandler {
	h := &pyast.ExceptHandler{Ranged: l.ranged(n)}
	afterAs := false
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		kind := c.Kind()
		switch {
		case kind == "as" || (kind == "," && h.Type != nil):
			afterAs = true
		case !c.IsNamed() || isExtra(kind):
		case kind == "block":
			h.Body = l.block(c)
		case kind == "as_pattern":
			h.Type = l.expr(firstNamed(c))
			if target := asPatternTarget(c); target != nil && isIdentifier(target) {
				h.Name = l.name(target, pyast.Store)
			}
		case afterAs:
			if isIdentifier(c) {
				h.Name = l.name(c, pyast.Store)
			}
		case h.Type == nil:
			h.Type = l.expr(c)
		}
	}
	return h
}

func (l *lowerer) functionDef(n *sitter.Node) *pyast.FunctionDef {
	fn := &pyast.FunctionDef{
		Ranged:  l.ranged(n),
		Params:  l.parameters(n.ChildByFieldName("parameters")),
		Body:    l.block(n.ChildByFieldName("body")),
		IsAsync: hasToken(n, "async"),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = l.name(name, pyast.Store)
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Returns = l.expr(ret)
	}
	return fn
}

func (l *lowerer) classDef(n *sitter.Node) *pyast.ClassDef {
	cls := &pyast.ClassDef{
		Ranged: l.ranged(n),
		Body:   l.block(n.ChildByFieldName("body")),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = l.name(name, pyast.Store)
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		cls.Bases, cls.Keywords = l.arguments(supers)
	}
	return cls
}

func (l *lowerer) decorated(n *sitter.Node) pyast.Stmt {
	var decorators []pyast.Expr
	for _, c := range namedChildren(n) {
		if c.Kind() == "decorator" {
			if e := firstNamed(c); e != nil {
				decorators = append(decorators, l.expr(e))
			}
		}
	}
	def := n.ChildByFieldName("definition")
	if def == nil {
		return l.otherStmt(n)
	}
	switch def.Kind() {
	case "function_definition":
		fn := l.functionDef(def)
		fn.Ranged = l.ranged(n)
		fn.Decorators = decorators
		return fn
	case "class_definition":
		cls := l.classDef(def)
		cls.Ranged = l.ranged(n)
		cls.Decorators = decorators
		return cls
	}
	return l.otherStmt(n)
}

// aliases collects imported names of an import statement, skipping skip.
func (l *lowerer) aliases(n *sitter.Node, skip *sitter.Node) []*pyast.Alias {
	var out []*pyast.Alias
	for _, c := range namedChildren(n) {
		if skip != nil && c.StartByte() == skip.StartByte() && c.EndByte() == skip.EndByte() {
			continue
		}
		switch c.Kind() {
		case "dotted_name", "identifier":
			out = append(out, &pyast.Alias{Ranged: l.ranged(c), Name: l.text(c)})
		case "aliased_import":
			out = append(out, &pyast.Alias{
				Ranged: l.ranged(c),
				Name:   l.text(c.ChildByFieldName("name")),
				AsName: l.text(c.ChildByFieldName("alias")),
			})
		case "wildcard_import":
			out = append(out, &pyast.Alias{Ranged: l.ranged(c), Name: "*"})
		}
	}
	return out
}

func (l *lowerer) importFrom(n *sitter.Node) pyast.Stmt {
	imp := &pyast.ImportFrom{Ranged: l.ranged(n)}
	module := n.ChildByFieldName("module_name")
	if module != nil {
		if module.Kind() == "relative_import" {
			prefix := childOfKind(module, "import_prefix")
			imp.Level = strings.Count(l.text(prefix), ".")
			imp.Module = l.text(childOfKind(module, "dotted_name"))
		} else {
			imp.Module = l.text(module)
		}
	}
	imp.Names = l.aliases(n, module)
	return imp
}

func (l *lowerer) identifiers(n *sitter.Node) []*pyast.Name {
	var out []*pyast.Name
	for _, c := range namedChildren(n) {
		if isIdentifier(c) {
			out = append(out, l.name(c, pyast.Store))
		}
	}
	return out
}

func (l *lowerer) deleteStmt(n *sitter.Node) pyast.Stmt {
	del := &pyast.Delete{Ranged: l.ranged(n)}
	target := firstNamed(n)
	if target == nil {
		return del
	}
	if target.Kind() == "expression_list" {
		for _, c := range namedChildren(target) {
			del.Targets = append(del.Targets, l.exprCtx(c, pyast.Del))
		}
		return del
	}
	del.Targets = []pyast.Expr{l.exprCtx(target, pyast.Del)}
	return del
}

func (l *lowerer) matchStmt(n *sitter.Node) pyast.Stmt {
	m := &pyast.Match{Ranged: l.ranged(n)}
	var subjects []pyast.Expr
	var body *sitter.Node
	for _, c := range namedChildren(n) {
		if c.Kind() == "block" {
			body = c
			continue
		}
		subjects = append(subjects, l.expr(c))
	}
	switch len(subjects) {
	case 0:
	case 1:
		m.Subject = subjects[0]
	default:
		m.Subject = &pyast.Tuple{Ranged: l.ranged(n), Elts: subjects}
	}

	for _, c := range namedChildren(body) {
		if c.Kind() != "case_clause" {
			continue
		}
		mc := &pyast.MatchCase{Ranged: l.ranged(c)}
		for _, part := range namedChildren(c) {
			switch part.Kind() {
			case "case_pattern":
				// Every identifier in a pattern is treated as a capture; over-counting
				// bindings only makes OnlyBinding more reluctant.
				l.collectIdentifiers(part, &mc.Captures)
			case "if_clause":
				mc.Guard = l.expr(firstNamed(part))
			case "block":
				mc.Body = l.block(part)
			}
		}
		if mc.Body == nil {
			mc.Body = l.block(c.ChildByFieldName("consequence"))
		}
		m.Cases = append(m.Cases, mc)
	}
	return m
}

func (l *lowerer) collectIdentifiers(n *sitter.Node, out *[]*pyast.Name) {
	if n == nil {
		return
	}
	if isIdentifier(n) {
		*out = append(*out, l.name(n, pyast.Store))
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		l.collectIdentifiers(n.Child(i), out)
	}
}

func (l *lowerer) typeAlias(n *sitter.Node) pyast.Stmt {
	stmt := &pyast.OtherStmt{Ranged: l.ranged(n), Kind: n.Kind()}
	if left := n.ChildByFieldName("left"); left != nil {
		var names []*pyast.Name
		l.collectIdentifiers(left, &names)
		if len(names) > 0 {
			stmt.Binds = names[:1]
		}
	}
	if right := n.ChildByFieldName("right"); right != nil {
		stmt.Exprs = []pyast.Expr{l.expr(right)}
	}
	return stmt
}

func (l *lowerer) otherStmt(n *sitter.Node) pyast.Stmt {
	stmt := &pyast.OtherStmt{Ranged: l.ranged(n), Kind: n.Kind()}
	for _, c := range namedChildren(n) {
		switch {
		case c.Kind() == "block":
			stmt.Body = append(stmt.Body, l.block(c)...)
		case statementKinds[c.Kind()]:
			stmt.Body = append(stmt.Body, l.stmt(c))
		default:
			stmt.Exprs = append(stmt.Exprs, l.expr(c))
		}
	}
	return stmt
}

func isIdentifier(n *sitter.Node) bool {
	return n != nil && (n.Kind() == "identifier" || n.Kind() == "keyword_identifier")
}

func (l *lowerer) name(n *sitter.Node, ctx pyast.ExprContext) *pyast.Name {
	return &pyast.Name{Ranged: l.ranged(n), ID: l.text(n), Ctx: ctx}
}

func (l *lowerer) expr(n *sitter.Node) pyast.Expr {
	return l.exprCtx(n, pyast.Load)
}

// exprCtx lowers both expressions and assignment patterns.
func (l *lowerer) exprCtx(n *sitter.Node, ctx pyast.ExprContext) pyast.Expr {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "identifier", "keyword_identifier":
		return l.name(n, ctx)

	case "parenthesized_expression", "type", "parenthesized_list_splat":
		inner := firstNamed(n)
		if inner == nil {
			return l.generic(n)
		}
		return l.exprCtx(inner, ctx)

	case "tuple", "tuple_pattern", "pattern_list", "expression_list":
		return &pyast.Tuple{
			Ranged:        l.ranged(n),
			Elts:          l.elts(n, ctx),
			Ctx:           ctx,
			Parenthesized: n.Kind() == "tuple" || n.Kind() == "tuple_pattern",
		}

	case "list", "list_pattern":
		return &pyast.List{Ranged: l.ranged(n), Elts: l.elts(n, ctx), Ctx: ctx}

	case "set":
		return &pyast.Set{Ranged: l.ranged(n), Elts: l.elts(n, pyast.Load)}

	case "list_splat", "list_splat_pattern":
		return &pyast.Starred{Ranged: l.ranged(n), Value: l.exprCtx(firstNamed(n), ctx), Ctx: ctx}

	case "dictionary":
		return l.dict(n)

	case "dictionary_comprehension":
		dc := &pyast.DictComp{Ranged: l.ranged(n), Generators: l.comprehensions(n)}
		if body := n.ChildByFieldName("body"); body != nil {
			dc.Key = l.expr(body.ChildByFieldName("key"))
			dc.Value = l.expr(body.ChildByFieldName("value"))
		}
		return dc

	case "list_comprehension":
		return &pyast.ListComp{Ranged: l.ranged(n), Elt: l.expr(n.ChildByFieldName("body")), Generators: l.comprehensions(n)}
	case "set_comprehension":
		return &pyast.SetComp{Ranged: l.ranged(n), Elt: l.expr(n.ChildByFieldName("body")), Generators: l.comprehensions(n)}
	case "generator_expression":
		return &pyast.Generator{Ranged: l.ranged(n), Elt: l.expr(n.ChildByFieldName("body")), Generators: l.comprehensions(n)}

	case "call":
		call := &pyast.Call{Ranged: l.ranged(n), Func: l.expr(n.ChildByFieldName("function"))}
		if args := n.ChildByFieldName("arguments"); args != nil {
			if args.Kind() == "generator_expression" {
				call.Args = []pyast.Expr{l.expr(args)}
			} else {
				call.Args, call.Keywords = l.arguments(args)
			}
		}
		return call

	case "attribute":
		return &pyast.Attribute{
			Ranged: l.ranged(n),
			Value:  l.expr(n.ChildByFieldName("object")),
			Attr:   l.text(n.ChildByFieldName("attribute")),
			Ctx:    ctx,
		}

	case "subscript":
		return l.subscript(n, ctx)

	case "string", "concatenated_string":
		return &pyast.Constant{Ranged: l.ranged(n), Kind: pyast.ConstString, Text: l.text(n)}
	case "integer":
		return &pyast.Constant{Ranged: l.ranged(n), Kind: pyast.ConstInt, Text: l.text(n)}
	case "float":
		return &pyast.Constant{Ranged: l.ranged(n), Kind: pyast.ConstFloat, Text: l.text(n)}
	case "true", "false":
		return &pyast.Constant{Ranged: l.ranged(n), Kind: pyast.ConstBool, Text: l.text(n)}
	case "none":
		return &pyast.Constant{Ranged: l.ranged(n), Kind: pyast.ConstNone, Text: l.text(n)}
	case "ellipsis":
		return &pyast.Constant{Ranged: l.ranged(n), Kind: pyast.ConstEllipsis, Text: l.text(n)}

	case "named_expression":
		ne := &pyast.NamedExpr{Ranged: l.ranged(n), Value: l.expr(n.ChildByFieldName("value"))}
		if target := n.ChildByFieldName("name"); target != nil {
			ne.Target = l.name(target, pyast.Store)
		}
		return ne

	case "lambda":
		return &pyast.Lambda{
			Ranged: l.ranged(n),
			Params: l.parameters(n.ChildByFieldName("parameters")),
			Body:   l.expr(n.ChildByFieldName("body")),
		}

	case "binary_operator":
		return &pyast.BinOp{
			Ranged: l.ranged(n),
			Left:   l.expr(n.ChildByFieldName("left")),
			Op:     l.text(n.ChildByFieldName("operator")),
			Right:  l.expr(n.ChildByFieldName("right")),
		}

	// Annotation-only shapes produced inside `type` nodes.
	case "generic_type":
		return l.genericType(n)
	case "member_type":
		kids := namedChildren(n)
		if len(kids) < 2 {
			return l.generic(n)
		}
		return &pyast.Attribute{
			Ranged: l.ranged(n),
			Value:  l.expr(kids[0]),
			Attr:   l.text(kids[len(kids)-1]),
			Ctx:    pyast.Load,
		}
	case "union_type":
		kids := namedChildren(n)
		if len(kids) != 2 {
			return l.generic(n)
		}
		return &pyast.BinOp{Ranged: l.ranged(n), Left: l.expr(kids[0]), Op: "|", Right: l.expr(kids[1])}
	}
	return l.generic(n)
}

// genericType lowers `dict[str, int]` in annotation position to a Subscript.
func (l *lowerer) genericType(n *sitter.Node) pyast.Expr {
	kids := namedChildren(n)
	if len(kids) == 0 {
		return l.generic(n)
	}
	sub := &pyast.Subscript{Ranged: l.ranged(n), Value: l.expr(kids[0])}
	params := childOfKind(n, "type_parameter")
	var slices []pyast.Expr
	for _, c := range namedChildren(params) {
		slices = append(slices, l.expr(c))
	}
	switch len(slices) {
	case 0:
	case 1:
		sub.Slice = slices[0]
	default:
		sub.Slice = &pyast.Tuple{Ranged: l.ranged(params), Elts: slices}
	}
	return sub
}

func (l *lowerer) generic(n *sitter.Node) pyast.Expr {
	other := &pyast.Other{Ranged: l.ranged(n), Kind: n.Kind()}
	for _, c := range namedChildren(n) {
		if c.Kind() == "block" || statementKinds[c.Kind()] {
			continue
		}
		other.Children = append(other.Children, l.expr(c))
	}
	return other
}

func (l *lowerer) elts(n *sitter.Node, ctx pyast.ExprContext) []pyast.Expr {
	kids := namedChildren(n)
	out := make([]pyast.Expr, 0, len(kids))
	for _, c := range kids {
		out = append(out, l.exprCtx(c, ctx))
	}
	return out
}

func (l *lowerer) dict(n *sitter.Node) pyast.Expr {
	d := &pyast.Dict{Ranged: l.ranged(n)}
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "pair":
			d.Keys = append(d.Keys, l.expr(c.ChildByFieldName("key")))
			d.Values = append(d.Values, l.expr(c.ChildByFieldName("value")))
		case "dictionary_splat":
			d.Keys = append(d.Keys, nil)
			d.Values = append(d.Values, l.expr(firstNamed(c)))
		}
	}
	return d
}

func (l *lowerer) comprehensions(n *sitter.Node) []*pyast.Comprehension {
	var out []*pyast.Comprehension
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "for_in_clause":
			out = append(out, &pyast.Comprehension{
				Ranged:  l.ranged(c),
				Target:  l.exprCtx(c.ChildByFieldName("left"), pyast.Store),
				Iter:    l.expr(c.ChildByFieldName("right")),
				IsAsync: hasToken(c, "async"),
			})
		case "if_clause":
			if len(out) > 0 {
				last := out[len(out)-1]
				last.Ifs = append(last.Ifs, l.expr(firstNamed(c)))
			}
		}
	}
	return out
}

func (l *lowerer) arguments(n *sitter.Node) ([]pyast.Expr, []*pyast.Keyword) {
	var args []pyast.Expr
	var keywords []*pyast.Keyword
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "keyword_argument":
			keywords = append(keywords, &pyast.Keyword{
				Ranged: l.ranged(c),
				Arg:    l.text(c.ChildByFieldName("name")),
				Value:  l.expr(c.ChildByFieldName("value")),
			})
		case "dictionary_splat":
			keywords = append(keywords, &pyast.Keyword{Ranged: l.ranged(c), Value: l.expr(firstNamed(c))})
		default:
			args = append(args, l.expr(c))
		}
	}
	return args, keywords
}

func (l *lowerer) subscript(n *sitter.Node, ctx pyast.ExprContext) pyast.Expr {
	value := n.ChildByFieldName("value")
	sub := &pyast.Subscript{Ranged: l.ranged(n), Value: l.expr(value), Ctx: ctx}
	var slices []pyast.Expr
	for _, c := range namedChildren(n) {
		if value != nil && c.StartByte() == value.StartByte() && c.EndByte() == value.EndByte() {
			continue
		}
		slices = append(slices, l.expr(c))
	}
	switch len(slices) {
	case 0:
	case 1:
		sub.Slice = slices[0]
	default:
		start, end := slices[0].Span().Start, slices[len(slices)-1].Span().End
		sub.Slice = &pyast.Tuple{Ranged: pyast.Ranged{Range: source.NewSpan(start, end)}, Elts: slices}
	}
	return sub
}

func (l *lowerer) parameters(n *sitter.Node) *pyast.Parameters {
	if n == nil {
		return nil
	}
	params := &pyast.Parameters{Ranged: l.ranged(n)}
	for _, c := range namedChildren(n) {
		if p := l.parameter(c); p != nil {
			params.Args = append(params.Args, p)
		}
	}
	return params
}

func (l *lowerer) parameter(n *sitter.Node) *pyast.Parameter {
	p := &pyast.Parameter{Ranged: l.ranged(n)}
	switch n.Kind() {
	case "identifier":
		p.Name = l.name(n, pyast.Store)
	case "list_splat_pattern", "dictionary_splat_pattern":
		inner := firstNamed(n)
		if !isIdentifier(inner) {
			return nil
		}
		p.Name = l.name(inner, pyast.Store)
		p.Kind = pyast.ParamVarArgs
		if n.Kind() == "dictionary_splat_pattern" {
			p.Kind = pyast.ParamKwArgs
		}
	case "typed_parameter":
		inner := firstNamed(n)
		if inner == nil {
			return nil
		}
		if inner.Kind() == "list_splat_pattern" || inner.Kind() == "dictionary_splat_pattern" {
			splat := l.parameter(inner)
			if splat == nil {
				return nil
			}
			p.Name, p.Kind = splat.Name, splat.Kind
		} else if isIdentifier(inner) {
			p.Name = l.name(inner, pyast.Store)
		} else {
			return nil
		}
		if typ := n.ChildByFieldName("type"); typ != nil {
			p.Annotation = l.expr(typ)
		}
	case "default_parameter", "typed_default_parameter":
		name := n.ChildByFieldName("name")
		if !isIdentifier(name) {
			return nil
		}
		p.Name = l.name(name, pyast.Store)
		if typ := n.ChildByFieldName("type"); typ != nil {
			p.Annotation = l.expr(typ)
		}
		if value := n.ChildByFieldName("value"); value != nil {
			p.Default = l.expr(value)
		}
	default:
		// keyword_separator, positional_separator, py2 tuple parameters
		return nil
	}
	return p
}
