package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	tomlPath := writeFile(t, dir, "scy.toml", "mode = \"expression\"\nmax_depth = 50\nindent = \"  \"\nlog_level = \"debug\"\n")
	cfg, err := LoadConfig(tomlPath)
	if err != nil {
		t.Fatalf("LoadConfig(toml) error: %v", err)
	}
	if cfg.Mode != "expression" || cfg.MaxDepth != 50 || cfg.Indent != "  " || cfg.LogLevel != "debug" {
		t.Fatalf("toml config wrong: %+v", cfg)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Fatalf("workers default not applied: %d", cfg.Workers)
	}

	yamlPath := writeFile(t, dir, "scy.yml", "mode: eval\nspans: true\nworkers: 3\n")
	cfg, err = LoadConfig(yamlPath)
	if err != nil {
		t.Fatalf("LoadConfig(yaml) error: %v", err)
	}
	if cfg.Mode != "eval" || !cfg.Spans || cfg.Workers != 3 || cfg.MaxDepth != 200 || cfg.LogLevel != "warn" {
		t.Fatalf("yaml config wrong: %+v", cfg)
	}

	badMode := writeFile(t, dir, "bad.toml", "mode = \"single\"\n")
	if _, err := LoadConfig(badMode); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	badLevel := writeFile(t, dir, "bad.yaml", "log_level: loud\n")
	if _, err := LoadConfig(badLevel); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
	if _, err := LoadConfig(writeFile(t, dir, "scy.json", "{}")); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got=%v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.scy", "for (x : xs) { y = x * 2; }\n")
	bad := writeFile(t, dir, "bad.scy", "f(2;\n")

	stdout, stderr, err := run(t, "check", good, bad)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected errCheckFailed, got=%v", err)
	}
	if !strings.Contains(stderr, "bad.scy:1:4: syntax error: expect ')' after arguments") {
		t.Fatalf("stderr missing diagnostic:\n%s", stderr)
	}
	if !strings.Contains(stderr, "f(2;\n   ^") {
		t.Fatalf("stderr missing caret:\n%s", stderr)
	}
	if !strings.Contains(stdout, "2 file(s) checked, 1 failed") {
		t.Fatalf("stdout missing summary:\n%s", stdout)
	}

	if _, _, err := run(t, "check", good); err != nil {
		t.Fatalf("check on a valid file failed: %v", err)
	}
}

func TestCheckCommandConcurrentJSON(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, src := range []string{"a;", "b +;", "def f() {}", "\"open", "c = 1;"} {
		paths = append(paths, writeFile(t, dir, string(rune('a'+i))+".scy", src))
	}

	args := append([]string{"check", "--concurrent", "--json"}, paths...)
	stdout, _, err := run(t, args...)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected errCheckFailed, got=%v", err)
	}

	var results []checkResult
	if err := json.Unmarshal([]byte(stdout), &results); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, stdout)
	}
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got=%d", len(paths), len(results))
	}
	wantOK := []bool{true, false, true, false, true}
	wantKind := []string{"", "syntax error", "", "lexical error", ""}
	for i, r := range results {
		if r.File != paths[i] {
			t.Errorf("results[%d] out of order: %s", i, r.File)
		}
		if r.OK != wantOK[i] || r.Kind != wantKind[i] {
			t.Errorf("results[%d] = ok:%v kind:%q, want ok:%v kind:%q", i, r.OK, r.Kind, wantOK[i], wantKind[i])
		}
	}
	if d := results[1].Diagnostic; d == nil || d.Message != "expect expression" || d.Line != 1 || d.Column != 4 {
		t.Errorf("results[1] diagnostic wrong: %+v", d)
	}
}

func TestDumpCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.scy", "a = 1;")

	stdout, _, err := run(t, "dump", src)
	if err != nil {
		t.Fatalf("dump error: %v", err)
	}
	if want := "Module([Assign([Name(a, Store)], Constant(1))])\n"; stdout != want {
		t.Fatalf("dump output wrong.\nexpected=%q\ngot=     %q", want, stdout)
	}

	stdout, _, err = run(t, "dump", "--indent", "\t", src)
	if err != nil {
		t.Fatalf("dump --indent error: %v", err)
	}
	if !strings.HasPrefix(stdout, "Module(\n\t[\n\t\tAssign(") {
		t.Fatalf("indented dump wrong: %q", stdout)
	}

	cfgPath := writeFile(t, dir, "scy.yaml", "mode: expression\nspans: true\n")
	expr := writeFile(t, dir, "e.scy", "x")
	stdout, _, err = run(t, "--config", cfgPath, "dump", expr)
	if err != nil {
		t.Fatalf("dump with config error: %v", err)
	}
	if want := "Expression(Name(x, Load)@1:0-1:1)@1:0-1:1\n"; stdout != want {
		t.Fatalf("dump output wrong.\nexpected=%q\ngot=     %q", want, stdout)
	}
}

func TestDumpCommandJSON(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.scy", "f(-1, 2.5, \"s\", none);")

	stdout, _, err := run(t, "dump", "--json", "--spans", src)
	if err != nil {
		t.Fatalf("dump --json error: %v", err)
	}

	var files []struct {
		File string         `json:"file"`
		Tree map[string]any `json:"tree"`
	}
	if err := json.Unmarshal([]byte(stdout), &files); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, stdout)
	}
	if len(files) != 1 || files[0].File != src {
		t.Fatalf("unexpected files: %+v", files)
	}
	tree := files[0].Tree
	if tree["type"] != "Module" {
		t.Fatalf("root type wrong: %v", tree["type"])
	}
	body := tree["body"].([]any)
	stmt := body[0].(map[string]any)
	call := stmt["value"].(map[string]any)
	if call["type"] != "Call" {
		t.Fatalf("expected Call, got=%v", call["type"])
	}
	args := call["args"].([]any)
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got=%d", len(args))
	}
	if op := args[0].(map[string]any)["op"]; op != "Neg" {
		t.Errorf("args[0] op wrong: %v", op)
	}
	if v := args[1].(map[string]any)["value"]; v != 2.5 {
		t.Errorf("args[1] value wrong: %v", v)
	}
	if v := args[2].(map[string]any)["value"]; v != "s" {
		t.Errorf("args[2] value wrong: %v", v)
	}
	if v, ok := args[3].(map[string]any)["value"]; !ok || v != nil {
		t.Errorf("args[3] value wrong: %v", v)
	}
	if span := call["span"].([]any); len(span) != 4 || span[3] != float64(21) {
		t.Errorf("call span wrong: %v", span)
	}
}

func TestTokensCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "t.scy", "x = 0x10;")

	stdout, _, err := run(t, "tokens", src)
	if err != nil {
		t.Fatalf("tokens error: %v", err)
	}
	for _, want := range []string{"1:0\tIDENT\t\"x\"", "1:4\tINT\t\"0x10\"", "1:9\tEOF\t\"\""} {
		if !strings.Contains(stdout, want) {
			t.Errorf("tokens output missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = run(t, "tokens", "--json", src)
	if err != nil {
		t.Fatalf("tokens --json error: %v", err)
	}
	var files []fileTokens
	if err := json.Unmarshal([]byte(stdout), &files); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if len(files) != 1 || len(files[0].Tokens) != 5 || files[0].Tokens[2].Lexeme != "0x10" {
		t.Fatalf("unexpected tokens: %+v", files)
	}

	bad := writeFile(t, dir, "bad.scy", "x = 'a\\q';")
	_, stderr, err := run(t, "tokens", bad)
	if err == nil {
		t.Fatalf("expected lexical error")
	}
	if !strings.Contains(stderr, "x = 'a\\q';\n       ^") {
		t.Fatalf("stderr missing caret:\n%s", stderr)
	}
}

func TestRootFlags(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "deep.scy", "((((x))))")

	if _, _, err := run(t, "--mode", "expression", "--max-depth", "3", "check", src); !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected depth failure, got=%v", err)
	}
	if _, _, err := run(t, "--mode", "expression", "check", src); err != nil {
		t.Fatalf("check with default depth failed: %v", err)
	}
	if _, _, err := run(t, "--mode", "single", "check", src); err == nil {
		t.Fatalf("expected error for unknown mode")
	}

	_, stderr, err := run(t, "-v", "--mode", "eval", "check", src)
	if err != nil {
		t.Fatalf("verbose check failed: %v", err)
	}
	if !strings.Contains(stderr, "run=") || !strings.Contains(stderr, "checked file") {
		t.Fatalf("verbose log missing run id or record:\n%s", stderr)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(stdout, "scycheck v"+Version) {
		t.Fatalf("unexpected version output: %q", stdout)
	}
}
