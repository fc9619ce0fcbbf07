package scy

import (
	"strings"
	"testing"
)

// A reasonably varied program, repeated to get a few kilobytes of input.
var benchmarkSource = strings.Repeat(`
def fib(n) {
    a = 0; b = 1;
    for (i = 0; i < n; i = i + 1) {
        t = a + b;
        a = b;
        b = t;
    }
    a;
}
for (x : range(10)) {
    if (x & 1 == 0 && x not in skip) print(fib(x), "even\n");
    else while (x > 0) x = x >> 1;
}
`, 20)

func BenchmarkLexer(b *testing.B) {
	b.SetBytes(int64(len(benchmarkSource)))
	for i := 0; i < b.N; i++ {
		if _, err := Tokenize(benchmarkSource, "bench.scy"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParser(b *testing.B) {
	tokens, err := Tokenize(benchmarkSource, "bench.scy")
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(tokens, ModeModule, "bench.scy", benchmarkSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDump(b *testing.B) {
	root, err := ParseSource(benchmarkSource, "bench.scy", ModeModule)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Dump(root, FormatOptions{Style: StyleIndented})
	}
}
