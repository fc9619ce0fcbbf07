package scy

import (
	"errors"
	"strings"
	"testing"
)

var verifySources = []string{
	"a = b = 1;",
	"for (x : xs) { y; }",
	"for (i = 0; i < 3; i = i + 1) { ; }",
	"def f(a, b) {\n  if (a is not none && b not in (c = 3)) f(a)(b); else ;\n}",
	"while (!x) {\n  x = ~x ** 2 // 3 << 1;\n}\nelse { g(1, 2.5, 'q'); }",
	"f(x = (y = 1));",
}

func TestVerifyParsedTrees(t *testing.T) {
	for _, src := range verifySources {
		root, err := ParseSource(src, "", ModeModule)
		if err != nil {
			t.Fatalf("ParseSource(%q) error: %v", src, err)
		}
		if err := Verify(root); err != nil {
			t.Errorf("Verify(%q) = %v", src, err)
		}
	}
}

// 所有节点的结束位置不早于开始位置, 父节点包含子节点.
func TestSpansNest(t *testing.T) {
	for _, src := range verifySources {
		root, err := ParseSource(src, "", ModeModule)
		if err != nil {
			t.Fatalf("ParseSource(%q) error: %v", src, err)
		}
		Inspect(root, func(n Node) bool {
			if !n.Pos().ordered() {
				t.Errorf("%q: %T span %s ends before it starts", src, n, n.Pos())
			}
			for _, c := range Children(n) {
				if !n.Pos().Contains(c.Pos()) {
					t.Errorf("%q: %T %s does not contain %T %s", src, n, n.Pos(), c, c.Pos())
				}
			}
			return true
		})
	}
}

func TestInspectOrder(t *testing.T) {
	root := parseOrFail(t, "a = f(b, c) + d;", ModeModule)
	var names []string
	Inspect(root, func(n Node) bool {
		if name, ok := n.(*Name); ok {
			names = append(names, name.ID)
		}
		return true
	})
	if got := strings.Join(names, " "); got != "a f b c d" {
		t.Fatalf("names visited in wrong order. got=%q", got)
	}

	// 返回 false 时跳过子节点.
	count := 0
	Inspect(root, func(n Node) bool {
		count++
		_, isCall := n.(*Call)
		return !isCall
	})
	// Module, Assign, Name(a), BinOp, Call, Name(d)
	if count != 6 {
		t.Fatalf("expected 6 visited nodes, got=%d", count)
	}
}

func TestVerifyRejects(t *testing.T) {
	at := func(line, col, endCol int) Span { return Span{line, col, line, endCol} }
	name := func(id string, ctx Context) *Name { return &Name{Span: at(1, 0, 1), ID: id, Ctx: ctx} }

	tests := []struct {
		what   string
		root   Node
		reason string
	}{
		{
			"single operand BoolOp",
			&BoolOp{Span: at(1, 0, 1), Op: And, Values: []Expr{name("a", Load)}},
			"1 operands, need at least 2",
		},
		{
			"Store outside a target",
			&ExprStmt{Span: at(1, 0, 1), Value: name("a", Store)},
			`name "a" has Store context outside a binding target`,
		},
		{
			"Load target",
			&Assign{Span: at(1, 0, 5), Targets: []*Name{name("a", Load)}, Value: &Constant{Span: at(1, 4, 5), Value: int64(1)}},
			`binding target "a" has Load context`,
		},
		{
			"child outside parent",
			&UnaryOp{Span: at(1, 0, 2), Op: Neg, Operand: &Constant{Span: at(1, 1, 9), Value: int64(1)}},
			"child *scy.Constant at 1:1-1:9 lies outside 1:0-1:2",
		},
		{
			"reversed span",
			&Pass{Span: Span{2, 0, 1, 4}},
			"span ends before it starts",
		},
		{
			"empty body",
			&While{Span: at(1, 0, 5), Test: &Constant{Span: at(1, 0, 1), Value: true}},
			"empty body",
		},
		{
			"compare length mismatch",
			&Compare{Span: at(1, 0, 1), Left: name("a", Load), Ops: []CompareOperator{Lt, Gt}, Comparators: []Expr{name("b", Load)}},
			"2 operators for 1 comparators",
		},
	}

	for _, tt := range tests {
		t.Run(tt.what, func(t *testing.T) {
			err := Verify(tt.root)
			var verr *VerifyError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *VerifyError, got=%v", err)
			}
			if verr.Reason != tt.reason {
				t.Fatalf("reason wrong. expected=%q, got=%q", tt.reason, verr.Reason)
			}
		})
	}
}

func TestNewComparePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected newCompare to panic on mismatched lengths")
		}
	}()
	newCompare(Span{}, &Name{ID: "a"}, []CompareOperator{Lt}, nil)
}
