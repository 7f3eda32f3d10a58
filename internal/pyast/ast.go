// Package pyast defines the Python syntax tree analyzed by pycheck.
//
// The tree is a lowered form of the tree-sitter concrete syntax tree: only the
// shapes the detectors and the semantic model care about get their own node
// types, everything else is kept as Other / OtherStmt so that nested names are
// still reachable.
package pyast

import "pycheck/internal/source"

type Node interface {
	Span() source.Span
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

// Ranged is embedded by every node to carry its source range.
type Ranged struct {
	Range source.Span
}

func (r Ranged) Span() source.Span { return r.Range }

// ExprContext tells whether an expression is read, written or deleted.
type ExprContext uint8

const (
	Load ExprContext = iota
	Store
	Del
)

func (c ExprContext) String() string {
	switch c {
	case Store:
		return "store"
	case Del:
		return "del"
	default:
		return "load"
	}
}

// Module is the root of a parsed file.
type Module struct {
	Ranged
	Body   []Stmt
	Source []byte
}

// Expressions

type Name struct {
	Ranged
	ID  string
	Ctx ExprContext
}

type Tuple struct {
	Ranged
	Elts          []Expr
	Ctx           ExprContext
	Parenthesized bool
}

type List struct {
	Ranged
	Elts []Expr
	Ctx  ExprContext
}

type Set struct {
	Ranged
	Elts []Expr
}

type Starred struct {
	Ranged
	Value Expr
	Ctx   ExprContext
}

// Dict is a dictionary display. Keys[i] is nil for a `**mapping` entry,
// in which case Values[i] holds the unpacked mapping.
type Dict struct {
	Ranged
	Keys   []Expr
	Values []Expr
}

type Comprehension struct {
	Ranged
	Target  Expr
	Iter    Expr
	Ifs     []Expr
	IsAsync bool
}

type DictComp struct {
	Ranged
	Key        Expr
	Value      Expr
	Generators []*Comprehension
}

type ListComp struct {
	Ranged
	Elt        Expr
	Generators []*Comprehension
}

type SetComp struct {
	Ranged
	Elt        Expr
	Generators []*Comprehension
}

type Generator struct {
	Ranged
	Elt        Expr
	Generators []*Comprehension
}

type Keyword struct {
	Ranged
	Arg   string // empty for **kwargs
	Value Expr
}

type Call struct {
	Ranged
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

type Attribute struct {
	Ranged
	Value Expr
	Attr  string
	Ctx   ExprContext
}

type Subscript struct {
	Ranged
	Value Expr
	Slice Expr
	Ctx   ExprContext
}

type ConstantKind uint8

const (
	ConstString ConstantKind = iota
	ConstInt
	ConstFloat
	ConstBool
	ConstNone
	ConstEllipsis
)

type Constant struct {
	Ranged
	Kind ConstantKind
	Text string
}

type NamedExpr struct {
	Ranged
	Target *Name
	Value  Expr
}

type Lambda struct {
	Ranged
	Params *Parameters
	Body   Expr
}

type BinOp struct {
	Ranged
	Left  Expr
	Op    string
	Right Expr
}

// Other stands for any expression without a dedicated node type.
type Other struct {
	Ranged
	Kind     string
	Children []Expr
}

func (*Name) exprNode()      {}
func (*Tuple) exprNode()     {}
func (*List) exprNode()      {}
func (*Set) exprNode()       {}
func (*Starred) exprNode()   {}
func (*Dict) exprNode()      {}
func (*DictComp) exprNode()  {}
func (*ListComp) exprNode()  {}
func (*SetComp) exprNode()   {}
func (*Generator) exprNode() {}
func (*Call) exprNode()      {}
func (*Attribute) exprNode() {}
func (*Subscript) exprNode() {}
func (*Constant) exprNode()  {}
func (*NamedExpr) exprNode() {}
func (*Lambda) exprNode()    {}
func (*BinOp) exprNode()     {}
func (*Other) exprNode()     {}

// Statements

type Assign struct {
	Ranged
	Targets []Expr
	Value   Expr
}

type AnnAssign struct {
	Ranged
	Target     Expr
	Annotation Expr
	Value      Expr // nil for a bare declaration
}

type AugAssign struct {
	Ranged
	Target Expr
	Op     string
	Value  Expr
}

type For struct {
	Ranged
	Target  Expr
	Iter    Expr
	Body    []Stmt
	Orelse  []Stmt
	IsAsync bool
}

type While struct {
	Ranged
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// If holds elif chains as a nested If in Orelse.
type If struct {
	Ranged
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

type WithItem struct {
	Ranged
	Context Expr
	Target  Expr // nil without `as`
}

type With struct {
	Ranged
	Items   []*WithItem
	Body    []Stmt
	IsAsync bool
}

type ExceptHandler struct {
	Ranged
	Type Expr
	Name *Name
	Body []Stmt
}

type Try struct {
	Ranged
	Body      []Stmt
	Handlers  []*ExceptHandler
	Orelse    []Stmt
	Finalbody []Stmt
}

type ParamKind uint8

const (
	ParamPositional ParamKind = iota
	ParamVarArgs
	ParamKwArgs
)

type Parameter struct {
	Ranged
	Name       *Name
	Kind       ParamKind
	Annotation Expr
	Default    Expr
}

type Parameters struct {
	Ranged
	Args []*Parameter
}

type FunctionDef struct {
	Ranged
	Name       *Name
	Params     *Parameters
	Returns    Expr
	Decorators []Expr
	Body       []Stmt
	IsAsync    bool
}

type ClassDef struct {
	Ranged
	Name       *Name
	Bases      []Expr
	Keywords   []*Keyword
	Decorators []Expr
	Body       []Stmt
}

// Alias is one imported name. Name is dotted, AsName is empty without `as`.
type Alias struct {
	Ranged
	Name   string
	AsName string
}

type Import struct {
	Ranged
	Names []*Alias
}

type ImportFrom struct {
	Ranged
	Module string
	Level  int
	Names  []*Alias
}

type Global struct {
	Ranged
	Names []*Name
}

type Nonlocal struct {
	Ranged
	Names []*Name
}

type Delete struct {
	Ranged
	Targets []Expr
}

type Return struct {
	Ranged
	Value Expr
}

type ExprStmt struct {
	Ranged
	Value Expr
}

type MatchCase struct {
	Ranged
	Captures []*Name
	Guard    Expr
	Body     []Stmt
}

type Match struct {
	Ranged
	Subject Expr
	Cases   []*MatchCase
}

// OtherStmt keeps statements without a dedicated node type. Binds lists
// names the statement introduces, e.g. the alias of a `type X = ...`.
type OtherStmt struct {
	Ranged
	Kind  string
	Exprs []Expr
	Binds []*Name
	Body  []Stmt
}

func (*Assign) stmtNode()      {}
func (*AnnAssign) stmtNode()   {}
func (*AugAssign) stmtNode()   {}
func (*For) stmtNode()         {}
func (*While) stmtNode()       {}
func (*If) stmtNode()          {}
func (*With) stmtNode()        {}
func (*Try) stmtNode()         {}
func (*FunctionDef) stmtNode() {}
func (*ClassDef) stmtNode()    {}
func (*Import) stmtNode()      {}
func (*ImportFrom) stmtNode()  {}
func (*Global) stmtNode()      {}
func (*Nonlocal) stmtNode()    {}
func (*Delete) stmtNode()      {}
func (*Return) stmtNode()      {}
func (*ExprStmt) stmtNode()    {}
func (*Match) stmtNode()       {}
func (*OtherStmt) stmtNode()   {}

// AsName returns e as a bare identifier reference.
func AsName(e Expr) (*Name, bool) {
	n, ok := e.(*Name)
	return n, ok && n != nil
}
