// Package scy is the front end of the scy scripting language. It turns
// source text into tokens (Tokenize) and tokens into a syntax tree (Parse).
// The tree mirrors a Python-style AST: C-style for loops are lowered to
// While nodes and empty required bodies hold a single Pass.
package scy

import (
	"fmt"
	"io"
	"os"
)

// ParseSource tokenizes and parses source in one step.
func ParseSource(source, filename string, mode Mode, opts ...ParseOption) (Root, error) {
	tokens, err := Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, mode, filename, source, opts...)
}

func ParseReader(r io.Reader, filename string, mode Mode, opts ...ParseOption) (Root, error) {
	buf := getBuffer()
	defer putBuffer(buf)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("scy: reading %s: %w", filename, err)
	}
	return ParseSource(buf.String(), filename, mode, opts...)
}

// ParseFile reads path and parses it; diagnostics carry path as the
// filename.
func ParseFile(path string, mode Mode, opts ...ParseOption) (Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(bytesToString(data), path, mode, opts...)
}
