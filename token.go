package scy

import (
	"fmt"
)

type TokenType string

// Token 是词法分析的最小单元. Lexeme 是源码中的原始切片, Literal 保存
// 数字和字符串字面量解析后的值 (int64, float64 或 string).
type Token struct {
	Type    TokenType
	Lexeme  string
	Line    int // 从 1 开始
	Column  int // 从 0 开始, 按字节计
	Index   int // 首字符在源码中的字节偏移
	Literal any
}

func (t Token) String() string {
	return fmt.Sprintf("Line:%d, Col:%d, Type:%s, Lexeme:`%s`", t.Line, t.Column, t.Type, t.Lexeme)
}

// end 返回 token 之后第一个字节的列号.
func (t Token) end() int {
	return t.Column + len(t.Lexeme)
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	AT        TokenType = "@"
	DOT       TokenType = "."
	ELLIPSIS  TokenType = "..."

	PLUS            TokenType = "+"
	MINUS           TokenType = "-"
	STAR            TokenType = "*"
	STAR_STAR       TokenType = "**"
	SLASH           TokenType = "/"
	SLASH_SLASH     TokenType = "//"
	PERCENT         TokenType = "%"
	CARET           TokenType = "^"
	TILDE           TokenType = "~"
	AMP             TokenType = "&"
	AMP_AMP         TokenType = "&&"
	PIPE            TokenType = "|"
	PIPE_PIPE       TokenType = "||"
	BANG            TokenType = "!"
	BANG_EQUAL      TokenType = "!="
	ASSIGN          TokenType = "="
	EQUAL_EQUAL     TokenType = "=="
	LESS            TokenType = "<"
	LESS_EQUAL      TokenType = "<="
	LESS_LESS       TokenType = "<<"
	GREATER         TokenType = ">"
	GREATER_EQUAL   TokenType = ">="
	GREATER_GREATER TokenType = ">>"

	IDENT   TokenType = "IDENT"
	STRING  TokenType = "STRING"
	INT     TokenType = "INT"
	DECIMAL TokenType = "DECIMAL"

	DEF   TokenType = "DEF"
	FOR   TokenType = "FOR"
	IF    TokenType = "IF"
	ELSE  TokenType = "ELSE"
	WHILE TokenType = "WHILE"
	TRUE  TokenType = "TRUE"
	FALSE TokenType = "FALSE"
	NONE  TokenType = "NONE"
	IS    TokenType = "IS"
	IN    TokenType = "IN"
	NOT   TokenType = "NOT"

	// 以下关键字会被识别, 但语法中没有任何产生式使用它们.
	ASSERT   TokenType = "ASSERT"
	ASYNC    TokenType = "ASYNC"
	BREAK    TokenType = "BREAK"
	CATCH    TokenType = "CATCH"
	CLASS    TokenType = "CLASS"
	CONTINUE TokenType = "CONTINUE"
	DEL      TokenType = "DEL"
	FINALLY  TokenType = "FINALLY"
	FROM     TokenType = "FROM"
	GLOBAL   TokenType = "GLOBAL"
	IMPORT   TokenType = "IMPORT"
	NONLOCAL TokenType = "NONLOCAL"
	RAISE    TokenType = "RAISE"
	RETURN   TokenType = "RETURN"
	TRY      TokenType = "TRY"
	WITH     TokenType = "WITH"
	YIELD    TokenType = "YIELD"
)

// keywords 中映射为 ILLEGAL 的条目是保留但不支持的关键字.
var keywords = map[string]TokenType{
	"and":      ILLEGAL,
	"as":       ILLEGAL,
	"assert":   ASSERT,
	"async":    ASYNC,
	"break":    BREAK,
	"catch":    CATCH,
	"class":    CLASS,
	"continue": CONTINUE,
	"def":      DEF,
	"del":      DEL,
	"elif":     ILLEGAL,
	"else":     ELSE,
	"except":   ILLEGAL,
	"false":    FALSE,
	"False":    FALSE,
	"finally":  FINALLY,
	"for":      FOR,
	"from":     FROM,
	"global":   GLOBAL,
	"if":       IF,
	"import":   IMPORT,
	"in":       IN,
	"is":       IS,
	"lambda":   ILLEGAL,
	"none":     NONE,
	"None":     NONE,
	"nonlocal": NONLOCAL,
	"not":      NOT,
	"or":       ILLEGAL,
	"pass":     ILLEGAL,
	"raise":    RAISE,
	"return":   RETURN,
	"true":     TRUE,
	"True":     TRUE,
	"try":      TRY,
	"while":    WHILE,
	"with":     WITH,
	"yield":    YIELD,
}

// LookupIdentifier 检查 ident 是否是关键字.
// 未登记的文本返回 IDENT, 保留但不支持的关键字返回 ILLEGAL.
func LookupIdentifier(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}
