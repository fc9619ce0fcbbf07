package scy

import (
	"errors"
	"fmt"
	"strings"
)

type DiagnosticKind int

const (
	LexicalError DiagnosticKind = iota
	SyntaxError
)

func (k DiagnosticKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrLexical 和 ErrSyntax 可与 errors.Is 配合, 区分两类诊断.
	ErrLexical = errors.New("scy: lexical error")
	ErrSyntax  = errors.New("scy: syntax error")

	// ErrMissingEOF 表示传给 Parse 的 token 序列没有以 EOF 结尾.
	ErrMissingEOF = errors.New("scy: token sequence is not terminated by EOF")
)

// Diagnostic 描述一次词法或语法错误. Column 从 1 开始, 指向出错的字符.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"-"`
	Message    string         `json:"message"`
	Filename   string         `json:"filename"`
	Line       int            `json:"line"`
	Column     int            `json:"column"`
	SourceLine string         `json:"sourceLine"`
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Filename, d.Line, d.Column, d.Kind, d.Message)
}

func (d *Diagnostic) Is(target error) bool {
	switch target {
	case ErrLexical:
		return d.Kind == LexicalError
	case ErrSyntax:
		return d.Kind == SyntaxError
	}
	return false
}

// Caret renders the offending source line followed by a line with a caret
// under the reported column. Tabs before the column are kept so the caret
// lines up in a terminal.
func (d *Diagnostic) Caret() string {
	var b strings.Builder
	b.WriteString(d.SourceLine)
	b.WriteByte('\n')
	for i := 0; i < d.Column-1; i++ {
		if i < len(d.SourceLine) && d.SourceLine[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	return b.String()
}

// FindLine returns the line of source that contains the byte at index,
// without its trailing newline.
func FindLine(source string, index int) string {
	if index > len(source) {
		index = len(source)
	}
	if index < 0 {
		index = 0
	}
	start := strings.LastIndexByte(source[:index], '\n') + 1
	rest := source[start:]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		return rest[:end]
	}
	return rest
}

const (
	msgUnexpectedCharacter = "unexpected character"
	msgReservedKeyword     = "reserved keyword %q"
	msgInvalidHexString    = "invalid hex string %q"
	msgInvalidEscape       = "invalid escape sequence '\\%c'"
	msgMultilineString     = "multiline strings not supported"
	msgEOFDuringString     = "EOF reached during string"
	msgLeadingZero         = "leading zeros in decimal integer literals are not permitted"
	msgMissingDigits       = "missing digits after base prefix"
	msgInvalidDigit        = "invalid digit %q in base %d literal"
	msgAlternateBaseFloat  = "cannot have alternate bases on floats"
	msgUnderscoreEnded     = "cannot end number literal with '_'"
	msgIntegerTooLarge     = "integer literal too large"

	msgExpectExpression    = "expect expression"
	msgInvalidAssignment   = "invalid assignment target"
	msgInvalidIterTarget   = "invalid assignment target for iteration"
	msgTooDeeplyNested     = "expression too deeply nested"
	msgExpectEndOfInput    = "expect end of input after expression"
	msgExpectFunctionName  = "expect function name"
	msgExpectParameterName = "expect parameter name"
)
