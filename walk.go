package scy

import "fmt"

// Children returns the direct child nodes of node in source order.
func Children(node Node) []Node {
	var out []Node
	addExprs := func(exprs []Expr) {
		for _, e := range exprs {
			out = append(out, e)
		}
	}
	addStmts := func(stmts []Stmt) {
		for _, s := range stmts {
			out = append(out, s)
		}
	}

	switch n := node.(type) {
	case *Module:
		addStmts(n.Body)
	case *ExpressionRoot:
		out = append(out, n.Body)
	case *ExprStmt:
		out = append(out, n.Value)
	case *Assign:
		for _, t := range n.Targets {
			out = append(out, t)
		}
		out = append(out, n.Value)
	case *If:
		out = append(out, n.Test)
		addStmts(n.Body)
		addStmts(n.Orelse)
	case *While:
		out = append(out, n.Test)
		addStmts(n.Body)
		addStmts(n.Orelse)
	case *For:
		out = append(out, n.Target, n.Iter)
		addStmts(n.Body)
		addStmts(n.Orelse)
	case *FunctionDef:
		addStmts(n.Body)
	case *UnaryOp:
		out = append(out, n.Operand)
	case *BinOp:
		out = append(out, n.Left, n.Right)
	case *BoolOp:
		addExprs(n.Values)
	case *Compare:
		out = append(out, n.Left)
		addExprs(n.Comparators)
	case *NamedExpr:
		out = append(out, n.Target, n.Value)
	case *Call:
		out = append(out, n.Func)
		addExprs(n.Args)
	}
	return out
}

// Inspect walks the tree rooted at node depth-first in source order. If f
// returns false the children of that node are skipped. The walk keeps an
// explicit stack, so tree depth is not limited by the goroutine stack.
func Inspect(node Node, f func(Node) bool) {
	if node == nil {
		return
	}
	stack := []Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || !f(n) {
			continue
		}
		children := Children(n)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// VerifyError reports the first node that breaks a structural rule of the
// tree.
type VerifyError struct {
	Node   Node
	Reason string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("scy: invalid %T at %s: %s", e.Node, e.Node.Pos(), e.Reason)
}

// Verify checks a tree produced by Parse, or built by hand, for the
// properties the parser guarantees: ordered spans, children inside their
// parents, well-formed Compare and BoolOp nodes, Store context exactly on
// binding targets, and non-empty compound bodies.
func Verify(root Node) error {
	targets := make(map[*Name]bool)
	Inspect(root, func(n Node) bool {
		switch n := n.(type) {
		case *Assign:
			for _, t := range n.Targets {
				targets[t] = true
			}
		case *NamedExpr:
			targets[n.Target] = true
		case *For:
			targets[n.Target] = true
		}
		return true
	})

	var failure *VerifyError
	Inspect(root, func(n Node) bool {
		if failure != nil {
			return false
		}
		if reason := verifyNode(n, targets); reason != "" {
			failure = &VerifyError{Node: n, Reason: reason}
			return false
		}
		return true
	})
	if failure != nil {
		return failure
	}
	return nil
}

func verifyNode(node Node, targets map[*Name]bool) string {
	span := node.Pos()
	if !span.ordered() {
		return "span ends before it starts"
	}
	for _, child := range Children(node) {
		if child == nil {
			return "missing child node"
		}
		if !span.Contains(child.Pos()) {
			return fmt.Sprintf("child %T at %s lies outside %s", child, child.Pos(), span)
		}
	}

	switch n := node.(type) {
	case *Name:
		if want := targets[n]; want != (n.Ctx == Store) {
			if want {
				return fmt.Sprintf("binding target %q has %s context", n.ID, n.Ctx)
			}
			return fmt.Sprintf("name %q has Store context outside a binding target", n.ID)
		}
	case *Compare:
		if len(n.Ops) == 0 || len(n.Ops) != len(n.Comparators) {
			return fmt.Sprintf("%d operators for %d comparators", len(n.Ops), len(n.Comparators))
		}
	case *BoolOp:
		if len(n.Values) < 2 {
			return fmt.Sprintf("%d operands, need at least 2", len(n.Values))
		}
	case *Assign:
		if len(n.Targets) == 0 {
			return "no targets"
		}
	case *If:
		return checkBody(n.Body)
	case *While:
		return checkBody(n.Body)
	case *For:
		return checkBody(n.Body)
	case *FunctionDef:
		return checkBody(n.Body)
	}
	return ""
}

func checkBody(body []Stmt) string {
	if len(body) == 0 {
		return "empty body"
	}
	return ""
}
