// Package pinescript provides parsing, unparsing and transformation of a
// pragmatic subset of Pine Script. It is the AST provider for the bundler:
// it recognizes the statement and expression forms the bundler needs to
// rename and merge, not the full TradingView grammar.
package pinescript

// Node is the interface for all AST nodes.
type Node interface {
	node()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt()
	StmtLine() int
}

// BaseStmt provides common fields for all statements.
type BaseStmt struct {
	SourceLine int // 1-based line in the original source
}

func (b BaseStmt) StmtLine() int { return b.SourceLine }

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr()
}

// Script is the root node. Annotations are the leading //@ comment lines
// (version pragma and friends) in source order.
type Script struct {
	Annotations []string
	Body        []Stmt
}

func (s *Script) node() {}

// ImportStmt represents a platform library import:
// import Namespace/Name/Version [as alias].
type ImportStmt struct {
	BaseStmt
	Namespace string
	Name      string
	Version   int
	Alias     string
}

func (i *ImportStmt) node() {}
func (i *ImportStmt) stmt() {}

// Param is a single function parameter.
type Param struct {
	Type    string // optional type qualifier, verbatim (e.g. "simple float")
	Name    string
	Default Expr // nil when no default
}

// FuncDef represents name(params) => body. Method declarations carry the
// leading method keyword and are invoked via dot-call syntax on a receiver.
type FuncDef struct {
	BaseStmt
	Name   string
	Method bool
	Params []Param
	Expr   Expr   // single-expression body, nil when Body is used
	Body   []Stmt // indented block body
}

func (f *FuncDef) node() {}
func (f *FuncDef) stmt() {}

// AssignStmt represents target = value and its variants. Target is either
// *Ident or *TupleExpr (destructuring).
type AssignStmt struct {
	BaseStmt
	Decl   string // "", "var" or "varip"
	Type   string // optional declared type, verbatim (e.g. "array<line>")
	Target Expr
	Op     string // "=", ":=", "+=", "-=", "*=", "/="
	Value  Expr
}

func (a *AssignStmt) node() {}
func (a *AssignStmt) stmt() {}

// ExprStmt is a statement that is just an expression.
type ExprStmt struct {
	BaseStmt
	X Expr
}

func (e *ExprStmt) node() {}
func (e *ExprStmt) stmt() {}

// IfStmt represents if/else if/else with indented bodies.
type IfStmt struct {
	BaseStmt
	Cond Expr
	Body []Stmt
	Else []Stmt // nil, a single nested *IfStmt (else if), or the else body
}

func (i *IfStmt) node() {}
func (i *IfStmt) stmt() {}

// ForStmt represents for i = from to limit [by step] or for x in collection.
type ForStmt struct {
	BaseStmt
	Var  string
	From Expr // counter form
	To   Expr
	Step Expr // nil unless "by" given
	In   Expr // collection form; nil in counter form
	Body []Stmt
}

func (f *ForStmt) node() {}
func (f *ForStmt) stmt() {}

// WhileStmt represents while cond with an indented body.
type WhileStmt struct {
	BaseStmt
	Cond Expr
	Body []Stmt
}

func (w *WhileStmt) node() {}
func (w *WhileStmt) stmt() {}

// Ident is an identifier occurrence, in read or write position.
type Ident struct {
	Name string
}

func (i *Ident) node() {}
func (i *Ident) expr() {}

// NumberLit is an integer or float literal, kept verbatim.
type NumberLit struct {
	Value string
}

func (n *NumberLit) node() {}
func (n *NumberLit) expr() {}

// StringLit is a string literal with its original quote character.
type StringLit struct {
	Value string
	Quote byte // '"' or '\''
}

func (s *StringLit) node() {}
func (s *StringLit) expr() {}

// BoolLit is true or false.
type BoolLit struct {
	Value bool
}

func (b *BoolLit) node() {}
func (b *BoolLit) expr() {}

// ColorLit is a #RRGGBB[AA] literal.
type ColorLit struct {
	Value string
}

func (c *ColorLit) node() {}
func (c *ColorLit) expr() {}

// BinaryExpr represents left op right.
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

func (b *BinaryExpr) node() {}
func (b *BinaryExpr) expr() {}

// UnaryExpr represents op operand.
type UnaryExpr struct {
	Op      string
	Operand Expr
}

func (u *UnaryExpr) node() {}
func (u *UnaryExpr) expr() {}

// TernaryExpr represents cond ? then : else.
type TernaryExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (t *TernaryExpr) node() {}
func (t *TernaryExpr) expr() {}

// Arg is one call argument, optionally named.
type Arg struct {
	Name  string // empty for positional arguments
	Value Expr
}

// CallExpr represents callee(args...).
type CallExpr struct {
	Func Expr
	Args []Arg
}

func (c *CallExpr) node() {}
func (c *CallExpr) expr() {}

// AttrExpr represents obj.field access. Only the root object of a dotted
// chain is a free-standing identifier; field names never collide.
type AttrExpr struct {
	X    Expr
	Name string
}

func (a *AttrExpr) node() {}
func (a *AttrExpr) expr() {}

// IndexExpr represents obj[index].
type IndexExpr struct {
	X     Expr
	Index Expr
}

func (i *IndexExpr) node() {}
func (i *IndexExpr) expr() {}

// TupleExpr is a bracketed tuple [a, b], used both as a literal and as a
// destructuring assignment target.
type TupleExpr struct {
	Elems []Expr
}

func (t *TupleExpr) node() {}
func (t *TupleExpr) expr() {}

// GroupExpr is a parenthesized comma list in non-call position. It only
// appears when a comparison chain swallows what was written as a generic
// constructor's argument list; the bundler's postprocess step reassembles
// the call form from the unparsed text.
type GroupExpr struct {
	Elems []Expr
}

func (g *GroupExpr) node() {}
func (g *GroupExpr) expr() {}
