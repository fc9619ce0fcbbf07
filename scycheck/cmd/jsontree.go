package cmd

import (
	"io"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/WJQSERVER/scy"
)

// writeTrees encodes parsed files as a JSON array of {"file", "tree"}
// objects. Every node becomes an object whose "type" names the node kind.
func writeTrees(w io.Writer, files []parsedFile, spans bool) error {
	t := &treeWriter{
		enc:   jsontext.NewEncoder(w, jsontext.Multiline(true), jsontext.WithIndent("  ")),
		spans: spans,
	}
	t.write(jsontext.BeginArray)
	for _, f := range files {
		t.write(jsontext.BeginObject)
		t.field("file", jsontext.String(f.path))
		t.key("tree")
		t.node(f.root)
		t.write(jsontext.EndObject)
	}
	t.write(jsontext.EndArray)
	return t.err
}

// treeWriter keeps the first encoder error and ignores later writes.
type treeWriter struct {
	enc   *jsontext.Encoder
	spans bool
	err   error
}

func (t *treeWriter) write(tok jsontext.Token) {
	if t.err == nil {
		t.err = t.enc.WriteToken(tok)
	}
}

func (t *treeWriter) key(name string) {
	t.write(jsontext.String(name))
}

func (t *treeWriter) field(name string, value jsontext.Token) {
	t.key(name)
	t.write(value)
}

func (t *treeWriter) node(n scy.Node) {
	if n == nil {
		t.write(jsontext.Null)
		return
	}
	t.write(jsontext.BeginObject)
	t.field("type", jsontext.String(nodeType(n)))
	if t.spans {
		s := n.Pos()
		t.key("span")
		t.write(jsontext.BeginArray)
		for _, v := range []int{s.Line, s.Column, s.EndLine, s.EndColumn} {
			t.write(jsontext.Int(int64(v)))
		}
		t.write(jsontext.EndArray)
	}

	switch n := n.(type) {
	case *scy.Module:
		t.key("body")
		t.stmts(n.Body)
	case *scy.ExpressionRoot:
		t.key("body")
		t.node(n.Body)
	case *scy.Constant:
		t.key("value")
		t.constant(n.Value)
	case *scy.Name:
		t.field("id", jsontext.String(n.ID))
		t.field("ctx", jsontext.String(n.Ctx.String()))
	case *scy.UnaryOp:
		t.field("op", jsontext.String(n.Op.String()))
		t.key("operand")
		t.node(n.Operand)
	case *scy.BinOp:
		t.key("left")
		t.node(n.Left)
		t.field("op", jsontext.String(n.Op.String()))
		t.key("right")
		t.node(n.Right)
	case *scy.BoolOp:
		t.field("op", jsontext.String(n.Op.String()))
		t.key("values")
		t.exprs(n.Values)
	case *scy.Compare:
		t.key("left")
		t.node(n.Left)
		t.key("ops")
		t.write(jsontext.BeginArray)
		for _, op := range n.Ops {
			t.write(jsontext.String(op.String()))
		}
		t.write(jsontext.EndArray)
		t.key("comparators")
		t.exprs(n.Comparators)
	case *scy.NamedExpr:
		t.key("target")
		t.node(n.Target)
		t.key("value")
		t.node(n.Value)
	case *scy.Call:
		t.key("func")
		t.node(n.Func)
		t.key("args")
		t.exprs(n.Args)
	case *scy.ExprStmt:
		t.key("value")
		t.node(n.Value)
	case *scy.Assign:
		t.key("targets")
		t.write(jsontext.BeginArray)
		for _, target := range n.Targets {
			t.node(target)
		}
		t.write(jsontext.EndArray)
		t.key("value")
		t.node(n.Value)
	case *scy.If:
		t.loopLike(n.Test, n.Body, n.Orelse)
	case *scy.While:
		t.loopLike(n.Test, n.Body, n.Orelse)
	case *scy.For:
		t.key("target")
		t.node(n.Target)
		t.key("iter")
		t.node(n.Iter)
		t.key("body")
		t.stmts(n.Body)
		t.key("orelse")
		t.stmts(n.Orelse)
	case *scy.FunctionDef:
		t.field("name", jsontext.String(n.Name))
		t.key("params")
		t.write(jsontext.BeginArray)
		for _, p := range n.Params {
			t.write(jsontext.String(p))
		}
		t.write(jsontext.EndArray)
		t.key("body")
		t.stmts(n.Body)
	case *scy.Pass:
	}
	t.write(jsontext.EndObject)
}

func (t *treeWriter) loopLike(test scy.Expr, body, orelse []scy.Stmt) {
	t.key("test")
	t.node(test)
	t.key("body")
	t.stmts(body)
	t.key("orelse")
	t.stmts(orelse)
}

func (t *treeWriter) exprs(list []scy.Expr) {
	t.write(jsontext.BeginArray)
	for _, e := range list {
		t.node(e)
	}
	t.write(jsontext.EndArray)
}

func (t *treeWriter) stmts(list []scy.Stmt) {
	t.write(jsontext.BeginArray)
	for _, s := range list {
		t.node(s)
	}
	t.write(jsontext.EndArray)
}

// constant writes a literal value. Non-finite floats become strings.
func (t *treeWriter) constant(v any) {
	switch c := v.(type) {
	case nil:
		t.write(jsontext.Null)
	case bool:
		t.write(jsontext.Bool(c))
	case int64:
		t.write(jsontext.Int(c))
	case float64:
		t.write(jsontext.Float(c))
	case string:
		t.write(jsontext.String(c))
	}
}

func nodeType(n scy.Node) string {
	switch n.(type) {
	case *scy.Module:
		return "Module"
	case *scy.ExpressionRoot:
		return "Expression"
	case *scy.Constant:
		return "Constant"
	case *scy.Name:
		return "Name"
	case *scy.UnaryOp:
		return "UnaryOp"
	case *scy.BinOp:
		return "BinOp"
	case *scy.BoolOp:
		return "BoolOp"
	case *scy.Compare:
		return "Compare"
	case *scy.NamedExpr:
		return "NamedExpr"
	case *scy.Call:
		return "Call"
	case *scy.ExprStmt:
		return "ExprStmt"
	case *scy.Assign:
		return "Assign"
	case *scy.If:
		return "If"
	case *scy.While:
		return "While"
	case *scy.For:
		return "For"
	case *scy.FunctionDef:
		return "FunctionDef"
	case *scy.Pass:
		return "Pass"
	}
	return "Unknown"
}
