package scy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Lexer struct {
	input       string
	filename    string
	start       int // 当前 token 的起始字节
	position    int // 下一个待读取的字节
	line        int
	startColumn int
	column      int
}

func NewLexer(input, filename string) *Lexer {
	return &Lexer{input: input, filename: filename, line: 1}
}

// Tokenize scans the whole source and returns its tokens, terminated by a
// single EOF token. On the first lexical error no tokens are returned.
func Tokenize(source, filename string) ([]Token, error) {
	l := NewLexer(source, filename)
	tokens := make([]Token, 0, len(source)/4+1)
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) readChar() byte {
	ch := l.input[l.position]
	l.position++
	l.column++
	return ch
}

func (l *Lexer) peekChar() byte {
	if l.position >= len(l.input) {
		return 0
	}
	return l.input[l.position]
}

func (l *Lexer) peekNext() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.input[l.position] != expected {
		return false
	}
	l.readChar()
	return true
}

// NextToken returns the next token. Once the input is exhausted it keeps
// returning EOF.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()
	l.start = l.position
	l.startColumn = l.column
	if l.atEnd() {
		return Token{Type: EOF, Line: l.line, Column: l.column, Index: l.position}, nil
	}

	ch := l.readChar()
	switch ch {
	case '(':
		return l.newToken(LPAREN, nil), nil
	case ')':
		return l.newToken(RPAREN, nil), nil
	case '{':
		return l.newToken(LBRACE, nil), nil
	case '}':
		return l.newToken(RBRACE, nil), nil
	case ',':
		return l.newToken(COMMA, nil), nil
	case ';':
		return l.newToken(SEMICOLON, nil), nil
	case ':':
		return l.newToken(COLON, nil), nil
	case '@':
		return l.newToken(AT, nil), nil
	case '+':
		return l.newToken(PLUS, nil), nil
	case '-':
		return l.newToken(MINUS, nil), nil
	case '%':
		return l.newToken(PERCENT, nil), nil
	case '^':
		return l.newToken(CARET, nil), nil
	case '~':
		return l.newToken(TILDE, nil), nil
	case '.':
		if l.peekChar() == '.' && l.peekNext() == '.' {
			l.readChar()
			l.readChar()
			return l.newToken(ELLIPSIS, nil), nil
		}
		return l.newToken(DOT, nil), nil
	case '*':
		return l.twoChar('*', STAR_STAR, STAR), nil
	case '!':
		return l.twoChar('=', BANG_EQUAL, BANG), nil
	case '=':
		return l.twoChar('=', EQUAL_EQUAL, ASSIGN), nil
	case '/':
		return l.twoChar('/', SLASH_SLASH, SLASH), nil
	case '&':
		return l.twoChar('&', AMP_AMP, AMP), nil
	case '|':
		return l.twoChar('|', PIPE_PIPE, PIPE), nil
	case '<':
		if l.match('=') {
			return l.newToken(LESS_EQUAL, nil), nil
		}
		return l.twoChar('<', LESS_LESS, LESS), nil
	case '>':
		if l.match('=') {
			return l.newToken(GREATER_EQUAL, nil), nil
		}
		return l.twoChar('>', GREATER_GREATER, GREATER), nil
	case '"', '\'':
		return l.readString(ch, false)
	}

	if ch == 'r' && (l.peekChar() == '"' || l.peekChar() == '\'') {
		return l.readString(l.readChar(), true)
	}
	if isIdentifierStart(ch) {
		return l.readIdentifier()
	}
	if isDigit(ch) {
		return l.readNumber(ch)
	}
	return Token{}, l.errorAt(msgUnexpectedCharacter, l.startColumn)
}

func (l *Lexer) twoChar(second byte, long, short TokenType) Token {
	if l.match(second) {
		return l.newToken(long, nil)
	}
	return l.newToken(short, nil)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peekChar() {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			l.readChar()
			l.line++
			l.column = 0
		case '#':
			for !l.atEnd() && l.peekChar() != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() (Token, error) {
	for isIdentifierChar(l.peekChar()) {
		l.readChar()
	}
	text := l.input[l.start:l.position]
	tt := LookupIdentifier(text)
	if tt == ILLEGAL {
		return Token{}, l.errorAt(fmt.Sprintf(msgReservedKeyword, text), l.startColumn)
	}
	return l.newToken(tt, nil), nil
}

func (l *Lexer) readString(quote byte, raw bool) (Token, error) {
	buf := getBuffer()
	defer putBuffer(buf)
	for {
		if l.atEnd() {
			return Token{}, l.errorAt(msgEOFDuringString, l.column)
		}
		c := l.peekChar()
		if c == quote {
			break
		}
		if c == '\n' {
			return Token{}, l.errorAt(msgMultilineString, l.column)
		}
		if !raw && c == '\\' {
			r, err := l.readEscape()
			if err != nil {
				return Token{}, err
			}
			buf.WriteRune(r)
			continue
		}
		buf.WriteByte(l.readChar())
	}
	l.readChar() // 闭合引号
	return l.newToken(STRING, buf.String()), nil
}

// readEscape consumes a backslash escape and returns the decoded rune.
func (l *Lexer) readEscape() (rune, error) {
	l.readChar() // '\'
	if l.atEnd() {
		return 0, l.errorAt(msgEOFDuringString, l.column)
	}
	code := l.peekChar()
	switch code {
	case 'n':
		l.readChar()
		return '\n', nil
	case 't':
		l.readChar()
		return '\t', nil
	case '"', '\'', '\\':
		l.readChar()
		return rune(code), nil
	case 'x':
		l.readChar()
		return l.readHex(2)
	case 'u':
		l.readChar()
		return l.readHex(4)
	case 'U':
		l.readChar()
		return l.readHex(8)
	case '\n':
		return 0, l.errorAt(msgMultilineString, l.column)
	}
	return 0, l.errorAt(fmt.Sprintf(msgInvalidEscape, code), l.column)
}

// readHex 读取恰好 n 个十六进制数字并返回对应的码点.
func (l *Lexer) readHex(n int) (rune, error) {
	where := l.column
	begin := l.position
	valid := true
	for i := 0; i < n; i++ {
		if l.atEnd() || l.peekChar() == '\n' {
			valid = false
			break
		}
		if !isHexDigit(l.readChar()) {
			valid = false
		}
	}
	data := l.input[begin:l.position]
	if !valid {
		return 0, l.errorAt(fmt.Sprintf(msgInvalidHexString, data), where)
	}
	v, err := strconv.ParseUint(data, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, l.errorAt(fmt.Sprintf(msgInvalidHexString, data), where)
	}
	return rune(v), nil
}

func (l *Lexer) readNumber(first byte) (Token, error) {
	base := 10
	if first == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		default:
			if isDigit(l.peekChar()) {
				return Token{}, l.errorAt(msgLeadingZero, l.startColumn+1)
			}
		}
		if base != 10 {
			l.readChar()
		}
	}

	digitsStart := l.position
	if base == 10 {
		digitsStart = l.start
	}
	for isBaseDigit(l.peekChar(), base) || l.peekChar() == '_' {
		l.readChar()
	}
	if l.position == digitsStart {
		return Token{}, l.errorAt(msgMissingDigits, l.column)
	}
	if base == 2 || base == 8 {
		for i := digitsStart; i < l.position; i++ {
			c := l.input[i]
			if c != '_' && int(c-'0') >= base {
				return Token{}, l.errorAt(fmt.Sprintf(msgInvalidDigit, string(c), base), l.startColumn+i-l.start)
			}
		}
	}

	if l.peekChar() == '.' && isDigit(l.peekNext()) {
		if base != 10 {
			return Token{}, l.errorAt(msgAlternateBaseFloat, l.startColumn)
		}
		if l.input[l.position-1] == '_' {
			return Token{}, l.errorAt(msgUnderscoreEnded, l.column-1)
		}
		l.readChar()
		for isDigit(l.peekChar()) || l.peekChar() == '_' {
			l.readChar()
		}
	}
	if l.input[l.position-1] == '_' {
		return Token{}, l.errorAt(msgUnderscoreEnded, l.column-1)
	}

	text := strings.ReplaceAll(l.input[digitsStart:l.position], "_", "")
	intPart, _, isDecimal := strings.Cut(text, ".")
	if base == 10 && len(intPart) > 1 && intPart[0] == '0' {
		return Token{}, l.errorAt(msgLeadingZero, l.startColumn+1)
	}
	if isDecimal {
		// 超出范围的小数按 ParseFloat 的约定变为 ±Inf.
		v, err := strconv.ParseFloat(text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Token{}, l.errorAt(err.Error(), l.startColumn)
		}
		return l.newToken(DECIMAL, v), nil
	}
	v, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Token{}, l.errorAt(msgIntegerTooLarge, l.startColumn)
		}
		return Token{}, l.errorAt(err.Error(), l.startColumn)
	}
	return l.newToken(INT, v), nil
}

func (l *Lexer) newToken(tokenType TokenType, literal any) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  l.input[l.start:l.position],
		Line:    l.line,
		Column:  l.startColumn,
		Index:   l.start,
		Literal: literal,
	}
}

// errorAt builds a lexical diagnostic; where is the 0-based column of the
// offending character on the current line.
func (l *Lexer) errorAt(message string, where int) *Diagnostic {
	return &Diagnostic{
		Kind:       LexicalError,
		Message:    message,
		Filename:   l.filename,
		Line:       l.line,
		Column:     where + 1,
		SourceLine: FindLine(l.input, l.position),
	}
}

func isIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentifierChar(ch byte) bool {
	return isIdentifierStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isBaseDigit(ch byte, base int) bool {
	if base == 16 {
		return isHexDigit(ch)
	}
	return isDigit(ch)
}
