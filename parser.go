package scy

import (
	"fmt"
	"log/slog"
	"strings"
)

type Mode int

const (
	ModeModule Mode = iota
	ModeExpression
)

func (m Mode) String() string {
	switch m {
	case ModeModule:
		return "module"
	case ModeExpression:
		return "expression"
	default:
		return "UNKNOWN"
	}
}

// ParseMode accepts "module" (or "exec") and "expression" (or "eval").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "module", "exec":
		return ModeModule, nil
	case "expression", "eval":
		return ModeExpression, nil
	}
	return 0, fmt.Errorf("unknown parse mode %q", s)
}

// DefaultMaxDepth bounds how deeply expressions and blocks may nest.
const DefaultMaxDepth = 200

type ParseOption func(*Parser)

// WithMaxDepth sets the nesting limit; values below 1 keep the default.
func WithMaxDepth(n int) ParseOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

func WithLogger(logger *slog.Logger) ParseOption {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger.With("component", "scy-parser")
		}
	}
}

type Parser struct {
	tokens   []Token
	current  int
	filename string
	source   string
	depth    int
	maxDepth int
	logger   *slog.Logger
}

// NewParser prepares a parser over tokens produced by Tokenize. source is
// only used to quote the offending line in diagnostics.
func NewParser(tokens []Token, filename, source string, opts ...ParseOption) (*Parser, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != EOF {
		return nil, ErrMissingEOF
	}
	p := &Parser{
		tokens:   tokens,
		filename: filename,
		source:   source,
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse turns a token sequence into a *Module or an *ExpressionRoot. It
// stops at the first syntax error.
func Parse(tokens []Token, mode Mode, filename, source string, opts ...ParseOption) (Root, error) {
	p, err := NewParser(tokens, filename, source, opts...)
	if err != nil {
		return nil, err
	}
	return p.Parse(mode)
}

func (p *Parser) Parse(mode Mode) (Root, error) {
	p.current = 0
	p.depth = 0
	p.logger.Debug("starting parse", "filename", p.filename, "mode", mode.String(), "tokens", len(p.tokens))

	var root Root
	var err error
	if mode == ModeExpression {
		root, err = p.parseExpressionRoot()
	} else {
		root, err = p.parseModule()
	}
	if err != nil {
		p.logger.Debug("parse failed", "filename", p.filename, "error", err.Error())
		return nil, err
	}
	p.logger.Debug("parse completed", "filename", p.filename, "consumed", p.current)
	return root, nil
}

func (p *Parser) parseModule() (*Module, error) {
	first := p.curToken()
	body := []Stmt{}
	for !p.curTokenIs(EOF) {
		stmts, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
	}
	span := Span{Line: first.Line, Column: first.Column, EndLine: first.Line, EndColumn: first.Column}
	if p.current > 0 {
		span = spanOf(first, p.previous())
	}
	return &Module{Span: span, Body: body}, nil
}

func (p *Parser) parseExpressionRoot() (*ExpressionRoot, error) {
	first := p.curToken()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(EOF) {
		return nil, p.errorAt(p.curToken(), msgExpectEndOfInput)
	}
	return &ExpressionRoot{Span: spanOf(first, p.previous()), Body: expr}, nil
}

// --- 语句 (Statements) ---

// parseDeclaration returns zero statements for an empty `;` and two for a
// C-style for loop with an initializer.
func (p *Parser) parseDeclaration() ([]Stmt, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	switch p.curToken().Type {
	case DEF:
		return one(p.parseFunctionDef())
	case SEMICOLON:
		p.nextToken()
		return nil, nil
	case FOR:
		return p.parseFor()
	case IF:
		return one(p.parseIf())
	case WHILE:
		return one(p.parseWhile())
	}
	return one(p.parseSimpleStatement(SEMICOLON, "expect ';' after statement"))
}

func one(stmt Stmt, err error) ([]Stmt, error) {
	if err != nil {
		return nil, err
	}
	return []Stmt{stmt}, nil
}

func (p *Parser) parseFunctionDef() (*FunctionDef, error) {
	start := p.nextToken()
	name, err := p.expect(IDENT, msgExpectFunctionName)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, "expect '(' after function name"); err != nil {
		return nil, err
	}
	params := []string{}
	if !p.curTokenIs(RPAREN) {
		for {
			param, err := p.expect(IDENT, msgExpectParameterName)
			if err != nil {
				return nil, err
			}
			params = append(params, param.Lexeme)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN, "expect ')' after parameters"); err != nil {
		return nil, err
	}
	open, err := p.expect(LBRACE, "expect '{' before function body")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBraceBody(open, "expect '}' after function body", true)
	if err != nil {
		return nil, err
	}
	return &FunctionDef{Span: spanOf(start, p.previous()), Name: name.Lexeme, Params: params, Body: body}, nil
}

func (p *Parser) parseIf() (*If, error) {
	start := p.nextToken()
	test, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	body, orelse, err := p.parseBodies()
	if err != nil {
		return nil, err
	}
	return &If{Span: spanOf(start, p.previous()), Test: test, Body: body, Orelse: orelse}, nil
}

func (p *Parser) parseWhile() (*While, error) {
	start := p.nextToken()
	test, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, orelse, err := p.parseBodies()
	if err != nil {
		return nil, err
	}
	return &While{Span: spanOf(start, p.previous()), Test: test, Body: body, Orelse: orelse}, nil
}

// parseCondition parses `( expression )` after an if/while keyword.
func (p *Parser) parseCondition(keyword string) (Expr, error) {
	if _, err := p.expect(LPAREN, fmt.Sprintf("expect '(' after '%s'", keyword)); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, fmt.Sprintf("expect ')' after %s condition", keyword)); err != nil {
		return nil, err
	}
	return test, nil
}

// parseBodies parses a required body and an optional else body.
func (p *Parser) parseBodies() (body, orelse []Stmt, err error) {
	body, err = p.parseOptionalBlock(true)
	if err != nil {
		return nil, nil, err
	}
	orelse = []Stmt{}
	if p.match(ELSE) {
		orelse, err = p.parseOptionalBlock(true)
		if err != nil {
			return nil, nil, err
		}
	}
	return body, orelse, nil
}

// parseFor handles both `for (x : xs)` and `for (init; cond; incr)`. The
// C form is lowered here into an optional initializer followed by a While
// whose body ends with the increment.
func (p *Parser) parseFor() ([]Stmt, error) {
	start := p.nextToken()
	if _, err := p.expect(LPAREN, "expect '(' after 'for'"); err != nil {
		return nil, err
	}

	var initializer Stmt
	if !p.match(SEMICOLON) {
		initStart := p.curToken()
		first, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.curTokenIs(COLON) {
			target, ok := first.(*Name)
			if !ok {
				return nil, p.errorAt(p.curToken(), msgInvalidIterTarget)
			}
			p.nextToken()
			return one(p.parseForIn(start, target))
		}
		initializer, err = p.finishSimpleStatement(initStart, first, SEMICOLON, "expect ';' after loop initializer")
		if err != nil {
			return nil, err
		}
	}

	var test Expr
	if tok := p.curToken(); tok.Type == SEMICOLON {
		test = &Constant{Span: Span{Line: tok.Line, Column: tok.Column, EndLine: tok.Line, EndColumn: tok.Column}, Value: true}
	} else {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		test = cond
	}
	if _, err := p.expect(SEMICOLON, "expect ';' after loop condition"); err != nil {
		return nil, err
	}

	var increment Stmt
	if !p.curTokenIs(RPAREN) {
		incr, err := p.parseSimpleStatement("", "")
		if err != nil {
			return nil, err
		}
		increment = incr
	}
	if _, err := p.expect(RPAREN, "expect ')' after for clauses"); err != nil {
		return nil, err
	}

	body, orelse, err := p.parseBodies()
	if err != nil {
		return nil, err
	}
	if increment != nil {
		body = append(body, increment)
	}
	loop := &While{Span: spanOf(start, p.previous()), Test: test, Body: body, Orelse: orelse}
	if initializer != nil {
		return []Stmt{initializer, loop}, nil
	}
	return []Stmt{loop}, nil
}

func (p *Parser) parseForIn(start Token, target *Name) (*For, error) {
	target.Ctx = Store
	iter, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "expect ')' after iterable"); err != nil {
		return nil, err
	}
	body, orelse, err := p.parseBodies()
	if err != nil {
		return nil, err
	}
	return &For{Span: spanOf(start, p.previous()), Target: target, Iter: iter, Body: body, Orelse: orelse}, nil
}

// parseOptionalBlock parses a braced block, a bare `;`, or one declaration.
// When required is set an empty result is replaced by a single Pass.
func (p *Parser) parseOptionalBlock(required bool) ([]Stmt, error) {
	switch tok := p.curToken(); tok.Type {
	case LBRACE:
		p.nextToken()
		return p.parseBraceBody(tok, "expect '}' after block", required)
	case SEMICOLON:
		p.nextToken()
		if required {
			return []Stmt{&Pass{Span: spanOf(tok, tok)}}, nil
		}
		return []Stmt{}, nil
	}
	return p.parseDeclaration()
}

// parseBraceBody parses declarations up to the closing brace; open is the
// already consumed '{'.
func (p *Parser) parseBraceBody(open Token, closeMessage string, required bool) ([]Stmt, error) {
	body := []Stmt{}
	for !p.curTokenIs(RBRACE) && !p.curTokenIs(EOF) {
		stmts, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
	}
	closing, err := p.expect(RBRACE, closeMessage)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 && required {
		body = append(body, &Pass{Span: spanOf(open, closing)})
	}
	return body, nil
}

// parseSimpleStatement parses an expression statement or an assignment
// chain. An empty terminator means the caller consumes what follows.
func (p *Parser) parseSimpleStatement(terminator TokenType, message string) (Stmt, error) {
	start := p.curToken()
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return p.finishSimpleStatement(start, first, terminator, message)
}

func (p *Parser) finishSimpleStatement(start Token, first Expr, terminator TokenType, message string) (Stmt, error) {
	targets := []*Name{}
	value := first
	for p.curTokenIs(ASSIGN) {
		target, ok := value.(*Name)
		if !ok {
			return nil, p.errorAt(p.curToken(), msgInvalidAssignment)
		}
		target.Ctx = Store
		targets = append(targets, target)
		p.nextToken()
		next, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = next
	}
	if terminator != "" {
		if _, err := p.expect(terminator, message); err != nil {
			return nil, err
		}
	}
	span := spanOf(start, p.previous())
	if len(targets) == 0 {
		return &ExprStmt{Span: span, Value: value}, nil
	}
	return &Assign{Span: span, Targets: targets, Value: value}, nil
}

// --- 表达式 (Expressions) ---

// parseExpression is the entry point for statement-level expressions; it
// does not accept inline assignment.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseOr()
}

// parseNamedExpression allows `name = value` and is used inside
// parentheses and call arguments. It is right-associative.
func (p *Parser) parseNamedExpression() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	start := p.curToken()
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(ASSIGN) {
		return expr, nil
	}
	target, ok := expr.(*Name)
	if !ok {
		return nil, p.errorAt(p.curToken(), msgInvalidAssignment)
	}
	p.nextToken()
	value, err := p.parseNamedExpression()
	if err != nil {
		return nil, err
	}
	target.Ctx = Store
	return &NamedExpr{Span: spanOf(start, p.previous()), Target: target, Value: value}, nil
}

func (p *Parser) parseOr() (Expr, error) {
	return p.parseBoolChain(PIPE_PIPE, Or, p.parseAnd)
}

func (p *Parser) parseAnd() (Expr, error) {
	return p.parseBoolChain(AMP_AMP, And, p.parseNot)
}

// parseBoolChain collects every operand of a run of the same boolean
// operator into one BoolOp.
func (p *Parser) parseBoolChain(tt TokenType, op BoolOperator, next func() (Expr, error)) (Expr, error) {
	start := p.curToken()
	left, err := next()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(tt) {
		return left, nil
	}
	values := []Expr{left}
	for p.match(tt) {
		right, err := next()
		if err != nil {
			return nil, err
		}
		values = append(values, right)
	}
	return &BoolOp{Span: spanOf(start, p.previous()), Op: op, Values: values}, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if !p.curTokenIs(BANG) {
		return p.parseComparison()
	}
	return p.parsePrefix(Not, p.parseNot)
}

var compareOperators = map[TokenType]CompareOperator{
	EQUAL_EQUAL:   Eq,
	BANG_EQUAL:    NotEq,
	LESS:          Lt,
	LESS_EQUAL:    LtE,
	GREATER:       Gt,
	GREATER_EQUAL: GtE,
	IN:            In,
}

func (p *Parser) parseComparison() (Expr, error) {
	start := p.curToken()
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	var ops []CompareOperator
	var comparators []Expr
	for {
		op, ok, err := p.matchCompareOperator()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		comparators = append(comparators, right)
	}
	if len(ops) == 0 {
		return left, nil
	}
	return newCompare(spanOf(start, p.previous()), left, ops, comparators), nil
}

// matchCompareOperator consumes `is not` and `not in` as single operators.
func (p *Parser) matchCompareOperator() (CompareOperator, bool, error) {
	switch p.curToken().Type {
	case IS:
		p.nextToken()
		if p.match(NOT) {
			return IsNot, true, nil
		}
		return Is, true, nil
	case NOT:
		p.nextToken()
		if _, err := p.expect(IN, "expect 'in' after 'not'"); err != nil {
			return 0, false, err
		}
		return NotIn, true, nil
	}
	op, ok := compareOperators[p.curToken().Type]
	if ok {
		p.nextToken()
	}
	return op, ok, nil
}

// binaryLevels lists the left-associative binary operators from the
// loosest (|) to the tightest (* / //).
var binaryLevels = [...]map[TokenType]BinaryOperator{
	{PIPE: BitOr},
	{CARET: BitXor},
	{AMP: BitAnd},
	{LESS_LESS: LShift, GREATER_GREATER: RShift},
	{PLUS: Add, MINUS: Sub},
	{STAR: Mul, SLASH: Div, SLASH_SLASH: FloorDiv},
}

func (p *Parser) parseBitOr() (Expr, error) {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(level int) (Expr, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	start := p.curToken()
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryLevels[level][p.curToken().Type]
		if !ok {
			return left, nil
		}
		p.nextToken()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &BinOp{Span: spanOf(start, p.previous()), Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	switch p.curToken().Type {
	case PLUS:
		return p.parsePrefix(Pos, p.parseUnary)
	case MINUS:
		return p.parsePrefix(Neg, p.parseUnary)
	}
	return p.parseInvert()
}

func (p *Parser) parseInvert() (Expr, error) {
	if !p.curTokenIs(TILDE) {
		return p.parsePower()
	}
	return p.parsePrefix(BitInvert, p.parseInvert)
}

// parsePrefix consumes the operator token and parses its operand with next.
func (p *Parser) parsePrefix(op UnaryOperator, next func() (Expr, error)) (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	start := p.nextToken()
	operand, err := next()
	if err != nil {
		return nil, err
	}
	return &UnaryOp{Span: spanOf(start, p.previous()), Op: op, Operand: operand}, nil
}

// parsePower builds `**` chains with the same left-to-right loop as the
// other binary levels, so `a ** b ** c` is `(a ** b) ** c`.
func (p *Parser) parsePower() (Expr, error) {
	start := p.curToken()
	left, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	for p.match(STAR_STAR) {
		right, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		left = &BinOp{Span: spanOf(start, p.previous()), Left: left, Op: Pow, Right: right}
	}
	return left, nil
}

func (p *Parser) parseCall() (Expr, error) {
	start := p.curToken()
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.match(LPAREN) {
		args := []Expr{}
		if !p.curTokenIs(RPAREN) {
			for {
				arg, err := p.parseNamedExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.match(COMMA) {
					break
				}
			}
		}
		if _, err := p.expect(RPAREN, "expect ')' after arguments"); err != nil {
			return nil, err
		}
		expr = &Call{Span: spanOf(start, p.previous()), Func: expr, Args: args}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.curToken()
	switch tok.Type {
	case TRUE:
		p.nextToken()
		return &Constant{Span: spanOf(tok, tok), Value: true}, nil
	case FALSE:
		p.nextToken()
		return &Constant{Span: spanOf(tok, tok), Value: false}, nil
	case NONE:
		p.nextToken()
		return &Constant{Span: spanOf(tok, tok), Value: nil}, nil
	case INT, DECIMAL, STRING:
		p.nextToken()
		return &Constant{Span: spanOf(tok, tok), Value: tok.Literal}, nil
	case IDENT:
		p.nextToken()
		return &Name{Span: spanOf(tok, tok), ID: tok.Lexeme, Ctx: Load}, nil
	case LPAREN:
		p.nextToken()
		expr, err := p.parseNamedExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "expect ')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorAt(tok, msgExpectExpression)
}

// --- 游标 (Cursor) ---

func (p *Parser) curToken() Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) curTokenIs(t TokenType) bool {
	return p.tokens[p.current].Type == t
}

// nextToken consumes the current token and returns it. EOF is never
// consumed.
func (p *Parser) nextToken() Token {
	tok := p.tokens[p.current]
	if tok.Type != EOF {
		p.current++
	}
	return tok
}

func (p *Parser) match(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expect(t TokenType, message string) (Token, error) {
	if p.curTokenIs(t) {
		return p.nextToken(), nil
	}
	return Token{}, p.errorAt(p.curToken(), message)
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.errorAt(p.curToken(), msgTooDeeplyNested)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) errorAt(tok Token, message string) *Diagnostic {
	return &Diagnostic{
		Kind:       SyntaxError,
		Message:    message,
		Filename:   p.filename,
		Line:       tok.Line,
		Column:     tok.Column + 1,
		SourceLine: FindLine(p.source, tok.Index),
	}
}
