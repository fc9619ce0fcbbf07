package scy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.scy")
	bad := filepath.Join(dir, "bad.scy")
	if err := os.WriteFile(good, []byte("def f(x) { x + 1; }\nf(2);\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("f(2;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root, err := ParseFile(good, ModeModule)
	if err != nil {
		t.Fatalf("ParseFile(good) error: %v", err)
	}
	if n := len(root.(*Module).Body); n != 2 {
		t.Fatalf("expected 2 statements, got=%d", n)
	}

	_, err = ParseFile(bad, ModeModule)
	var diag *Diagnostic
	if !errors.As(err, &diag) {
		t.Fatalf("expected *Diagnostic, got=%v", err)
	}
	if diag.Filename != bad {
		t.Fatalf("diagnostic filename wrong. expected=%q, got=%q", bad, diag.Filename)
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.scy"), ModeModule); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got=%v", err)
	}
}

func TestParseReader(t *testing.T) {
	root, err := ParseReader(strings.NewReader("a * (b + 1)"), "reader", ModeExpression)
	if err != nil {
		t.Fatalf("ParseReader error: %v", err)
	}
	want := "Expression(BinOp(Name(a, Load), Mul, BinOp(Name(b, Load), Add, Constant(1))))"
	if root.String() != want {
		t.Fatalf("wrong tree.\nexpected=%s\ngot=     %s", want, root.String())
	}
}

func TestDumpStyles(t *testing.T) {
	root := parseOrFail(t, "a = 1;", ModeModule)

	indented := Dump(root, FormatOptions{Style: StyleIndented})
	want := "Module(\n    [\n        Assign([Name(a, Store)], Constant(1))\n    ]\n)"
	if indented != want {
		t.Fatalf("indented dump wrong.\nexpected=%q\ngot=     %q", want, indented)
	}

	tabbed := Dump(root, FormatOptions{Style: StyleIndented, Indent: "\t"})
	if !strings.HasPrefix(tabbed, "Module(\n\t[\n\t\tAssign(") {
		t.Fatalf("tab indent not applied: %q", tabbed)
	}

	spans := Dump(parseOrFail(t, "x;", ModeModule), FormatOptions{Spans: true})
	if want := "Module([ExprStmt(Name(x, Load)@1:0-1:1)@1:0-1:2])@1:0-1:2"; spans != want {
		t.Fatalf("span dump wrong.\nexpected=%s\ngot=     %s", want, spans)
	}
}

func TestConstantRepr(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{nil, "none"},
		{true, "true"},
		{int64(-3), "-3"},
		{2.0, "2.0"},
		{0.25, "0.25"},
		{1e21, "1e+21"},
		{"a\"b", `"a\"b"`},
	}
	for _, tt := range tests {
		if got := constantRepr(tt.value); got != tt.expected {
			t.Errorf("constantRepr(%v) = %q, want %q", tt.value, got, tt.expected)
		}
	}
}

// 独立的调用之间不共享状态, 可以并发执行.
func TestConcurrentParse(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := fmt.Sprintf("x%d = %d * (y + %d);", i, i, i)
			root, err := ParseSource(src, "", ModeModule)
			if err != nil {
				errs <- err
				return
			}
			want := fmt.Sprintf("Module([Assign([Name(x%d, Store)], BinOp(Constant(%d), Mul, BinOp(Name(y, Load), Add, Constant(%d))))])", i, i, i)
			if root.String() != want {
				errs <- fmt.Errorf("goroutine %d: got %s", i, root.String())
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
