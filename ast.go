package scy

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Span 是节点在源码中的范围. 行号从 1 开始, 列号从 0 开始按字节计,
// EndColumn 不包含在范围内.
type Span struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

func (s Span) Pos() Span { return s }

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Line, s.Column, s.EndLine, s.EndColumn)
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return !o.startsBefore(s) && !s.endsBefore(o)
}

func (s Span) startsBefore(o Span) bool {
	return s.Line < o.Line || (s.Line == o.Line && s.Column < o.Column)
}

func (s Span) endsBefore(o Span) bool {
	return s.EndLine < o.EndLine || (s.EndLine == o.EndLine && s.EndColumn < o.EndColumn)
}

// ordered reports whether the end of s is not before its start.
func (s Span) ordered() bool {
	return s.EndLine > s.Line || (s.EndLine == s.Line && s.EndColumn >= s.Column)
}

func spanOf(first, last Token) Span {
	return Span{Line: first.Line, Column: first.Column, EndLine: last.Line, EndColumn: last.end()}
}

// Node 是AST中所有节点的基础接口.
type Node interface {
	Pos() Span
	String() string
	Format(w *bytes.Buffer, indent string, opts FormatOptions)
}

// Expr 代表一个表达式.
type Expr interface {
	Node
	exprNode()
}

// Stmt 代表一个语句.
type Stmt interface {
	Node
	stmtNode()
}

// Root 是 Parse 的返回值: *Module 或 *ExpressionRoot.
type Root interface {
	Node
	rootNode()
}

type Context int

const (
	Load Context = iota
	Store
)

func (c Context) String() string {
	if c == Store {
		return "Store"
	}
	return "Load"
}

type UnaryOperator int

const (
	Neg UnaryOperator = iota
	Pos
	Not
	BitInvert
)

var unaryOperatorNames = [...]string{Neg: "Neg", Pos: "Pos", Not: "Not", BitInvert: "BitInvert"}

func (op UnaryOperator) String() string { return unaryOperatorNames[op] }

type BinaryOperator int

const (
	Add BinaryOperator = iota
	Sub
	Mul
	Div
	FloorDiv
	Pow
	BitOr
	BitXor
	BitAnd
	LShift
	RShift
)

var binaryOperatorNames = [...]string{
	Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", FloorDiv: "FloorDiv", Pow: "Pow",
	BitOr: "BitOr", BitXor: "BitXor", BitAnd: "BitAnd", LShift: "LShift", RShift: "RShift",
}

func (op BinaryOperator) String() string { return binaryOperatorNames[op] }

type BoolOperator int

const (
	And BoolOperator = iota
	Or
)

func (op BoolOperator) String() string {
	if op == Or {
		return "Or"
	}
	return "And"
}

type CompareOperator int

const (
	Lt CompareOperator = iota
	LtE
	Gt
	GtE
	Eq
	NotEq
	Is
	IsNot
	In
	NotIn
)

var compareOperatorNames = [...]string{
	Lt: "Lt", LtE: "LtE", Gt: "Gt", GtE: "GtE", Eq: "Eq", NotEq: "NotEq",
	Is: "Is", IsNot: "IsNot", In: "In", NotIn: "NotIn",
}

func (op CompareOperator) String() string { return compareOperatorNames[op] }

// --- 表达式 (Expressions) ---

// Constant is a literal. Value is one of bool, int64, float64, string or nil
// (for none).
type Constant struct {
	Span
	Value any
}

// Name is an identifier reference; Ctx is Store only for binding targets.
type Name struct {
	Span
	ID  string
	Ctx Context
}

type UnaryOp struct {
	Span
	Op      UnaryOperator
	Operand Expr
}

type BinOp struct {
	Span
	Left  Expr
	Op    BinaryOperator
	Right Expr
}

// BoolOp holds two or more operands of a single && or || chain.
type BoolOp struct {
	Span
	Op     BoolOperator
	Values []Expr
}

// Compare 表示比较链, 如 `a < b <= c`. Ops 与 Comparators 等长.
type Compare struct {
	Span
	Left        Expr
	Ops         []CompareOperator
	Comparators []Expr
}

// NamedExpr 表示表达式内部的赋值, 如 `f(x = 1)`.
type NamedExpr struct {
	Span
	Target *Name
	Value  Expr
}

type Call struct {
	Span
	Func Expr
	Args []Expr
}

func newCompare(span Span, left Expr, ops []CompareOperator, comparators []Expr) *Compare {
	if len(ops) == 0 || len(ops) != len(comparators) {
		panic(fmt.Sprintf("scy: compare built with %d operators and %d comparators", len(ops), len(comparators)))
	}
	return &Compare{Span: span, Left: left, Ops: ops, Comparators: comparators}
}

func (*Constant) exprNode()  {}
func (*Name) exprNode()      {}
func (*UnaryOp) exprNode()   {}
func (*BinOp) exprNode()     {}
func (*BoolOp) exprNode()    {}
func (*Compare) exprNode()   {}
func (*NamedExpr) exprNode() {}
func (*Call) exprNode()      {}

// --- 语句 (Statements) ---

type ExprStmt struct {
	Span
	Value Expr
}

// Assign binds every target to the single value, as in `a = b = 1;`.
type Assign struct {
	Span
	Targets []*Name
	Value   Expr
}

type If struct {
	Span
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// While 也是 C 风格 for 循环降级后的形式.
type While struct {
	Span
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// For is the `for (x : xs)` iteration form.
type For struct {
	Span
	Target *Name
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
}

type FunctionDef struct {
	Span
	Name   string
	Params []string
	Body   []Stmt
}

// Pass 用于填充必须非空但源码中为空的语句块.
type Pass struct {
	Span
}

func (*ExprStmt) stmtNode()    {}
func (*Assign) stmtNode()      {}
func (*If) stmtNode()          {}
func (*While) stmtNode()       {}
func (*For) stmtNode()         {}
func (*FunctionDef) stmtNode() {}
func (*Pass) stmtNode()        {}

// --- 根节点 (Roots) ---

type Module struct {
	Span
	Body []Stmt
}

type ExpressionRoot struct {
	Span
	Body Expr
}

func (*Module) rootNode()         {}
func (*ExpressionRoot) rootNode() {}

// --- Dump ---

// Dump renders node as a structural tree. It is a debug representation, not
// source text.
func Dump(node Node, opts FormatOptions) string {
	buf := getBuffer()
	defer putBuffer(buf)
	node.Format(buf, "", opts)
	return buf.String()
}

func nodeString(n Node) string {
	return Dump(n, FormatOptions{Style: StyleDefault})
}

func (n *Constant) String() string       { return nodeString(n) }
func (n *Name) String() string           { return nodeString(n) }
func (n *UnaryOp) String() string        { return nodeString(n) }
func (n *BinOp) String() string          { return nodeString(n) }
func (n *BoolOp) String() string         { return nodeString(n) }
func (n *Compare) String() string        { return nodeString(n) }
func (n *NamedExpr) String() string      { return nodeString(n) }
func (n *Call) String() string           { return nodeString(n) }
func (n *ExprStmt) String() string       { return nodeString(n) }
func (n *Assign) String() string         { return nodeString(n) }
func (n *If) String() string             { return nodeString(n) }
func (n *While) String() string          { return nodeString(n) }
func (n *For) String() string            { return nodeString(n) }
func (n *FunctionDef) String() string    { return nodeString(n) }
func (n *Pass) String() string           { return nodeString(n) }
func (n *Module) String() string         { return nodeString(n) }
func (n *ExpressionRoot) String() string { return nodeString(n) }

func (n *Constant) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "Constant", n.Span, atom(constantRepr(n.Value)))
}

func (n *Name) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "Name", n.Span, atom(n.ID), atom(n.Ctx.String()))
}

func (n *UnaryOp) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "UnaryOp", n.Span, atom(n.Op.String()), n.Operand)
}

func (n *BinOp) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "BinOp", n.Span, n.Left, atom(n.Op.String()), n.Right)
}

func (n *BoolOp) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "BoolOp", n.Span, atom(n.Op.String()), exprList(n.Values))
}

func (n *Compare) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	ops := make(nodeList, len(n.Ops))
	for i, op := range n.Ops {
		ops[i] = atom(op.String())
	}
	formatNode(w, indent, opts, "Compare", n.Span, n.Left, ops, exprList(n.Comparators))
}

func (n *NamedExpr) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "NamedExpr", n.Span, n.Target, n.Value)
}

func (n *Call) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "Call", n.Span, n.Func, exprList(n.Args))
}

func (n *ExprStmt) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "ExprStmt", n.Span, n.Value)
}

func (n *Assign) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	targets := make(nodeList, len(n.Targets))
	for i, t := range n.Targets {
		targets[i] = t
	}
	formatNode(w, indent, opts, "Assign", n.Span, targets, n.Value)
}

func (n *If) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "If", n.Span, n.Test, stmtList(n.Body), stmtList(n.Orelse))
}

func (n *While) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "While", n.Span, n.Test, stmtList(n.Body), stmtList(n.Orelse))
}

func (n *For) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "For", n.Span, n.Target, n.Iter, stmtList(n.Body), stmtList(n.Orelse))
}

func (n *FunctionDef) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	params := make(nodeList, len(n.Params))
	for i, p := range n.Params {
		params[i] = atom(p)
	}
	formatNode(w, indent, opts, "FunctionDef", n.Span, atom(n.Name), params, stmtList(n.Body))
}

func (n *Pass) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "Pass", n.Span)
}

func (n *Module) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "Module", n.Span, stmtList(n.Body))
}

func (n *ExpressionRoot) Format(w *bytes.Buffer, indent string, opts FormatOptions) {
	formatNode(w, indent, opts, "Expression", n.Span, n.Body)
}

// atom 是 dump 中不再展开的叶子, 例如运算符名或标识符.
type atom string

// nodeList 的元素是 Node 或 atom.
type nodeList []interface{}

func exprList(exprs []Expr) nodeList {
	l := make(nodeList, len(exprs))
	for i, e := range exprs {
		l[i] = e
	}
	return l
}

func stmtList(stmts []Stmt) nodeList {
	l := make(nodeList, len(stmts))
	for i, s := range stmts {
		l[i] = s
	}
	return l
}

// formatNode writes name(args...). In StyleIndented a node with nested
// children is broken over several lines; nodes made only of atoms stay on
// one line.
func formatNode(w *bytes.Buffer, indent string, opts FormatOptions, name string, span Span, args ...interface{}) {
	w.WriteString(name)
	if len(args) > 0 {
		multiline := opts.Style == StyleIndented && hasChildren(args)
		inner := indent
		if multiline {
			inner = indent + opts.indentUnit()
		}
		w.WriteByte('(')
		for i, a := range args {
			if multiline {
				if i > 0 {
					w.WriteByte(',')
				}
				w.WriteString("\n" + inner)
			} else if i > 0 {
				w.WriteString(", ")
			}
			formatArg(w, inner, opts, a)
		}
		if multiline {
			w.WriteString("\n" + indent)
		}
		w.WriteByte(')')
	}
	if opts.Spans {
		w.WriteByte('@')
		w.WriteString(span.String())
	}
}

func formatArg(w *bytes.Buffer, indent string, opts FormatOptions, a interface{}) {
	switch v := a.(type) {
	case atom:
		w.WriteString(string(v))
	case Node:
		v.Format(w, indent, opts)
	case nodeList:
		if len(v) == 0 {
			w.WriteString("[]")
			return
		}
		multiline := opts.Style == StyleIndented && hasChildren(v)
		inner := indent + opts.indentUnit()
		w.WriteByte('[')
		for i, el := range v {
			if multiline {
				if i > 0 {
					w.WriteByte(',')
				}
				w.WriteString("\n" + inner)
				formatArg(w, inner, opts, el)
				continue
			}
			if i > 0 {
				w.WriteString(", ")
			}
			formatArg(w, indent, opts, el)
		}
		if multiline {
			w.WriteString("\n" + indent)
		}
		w.WriteByte(']')
	}
}

func hasChildren(args []interface{}) bool {
	for _, a := range args {
		switch v := a.(type) {
		case *Constant, *Name, atom:
		case nodeList:
			if hasChildren(v) {
				return true
			}
		default:
			return true
		}
	}
	return false
}

func constantRepr(v any) string {
	switch c := v.(type) {
	case nil:
		return "none"
	case bool:
		return strconv.FormatBool(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case float64:
		s := strconv.FormatFloat(c, 'g', -1, 64)
		if !math.IsInf(c, 0) && !math.IsNaN(c) && c == math.Trunc(c) && !strings.ContainsAny(s, "e") {
			s += ".0"
		}
		return s
	case string:
		return strconv.Quote(c)
	default:
		return fmt.Sprintf("%v", c)
	}
}
