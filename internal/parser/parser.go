// Package parser builds an internal/ast.Program from a token stream.
// Recursive-descent structure (current index, match/check/consume/
// advance helpers) follows the teacher's
// internal/parser/parser.go; the grammar itself is rewritten for AWK's
// pattern/action/function top level and the 11-level expression
// precedence table spec.md §4.2 specifies (the teacher's own
// precedence table only has 5 levels: concatenation, field references,
// and prefix/postfix inc/dec are new here).
package parser

import (
	"awkvm/internal/ast"
	"awkvm/internal/builtins"
	awkerr "awkvm/internal/errors"
	"awkvm/internal/lexer"
	"awkvm/internal/value"
)

type Parser struct {
	tokens  []lexer.Token
	current int
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream and returns a Program, or the
// first SyntaxError encountered (spec.md §4.2: "a single parse error
// with source position; no recovery").
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	p := New(tokens)
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	p.skipSeparators()
	for !p.isAtEnd() {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
		p.skipSeparators()
	}
	return prog, nil
}

// skipSeparators consumes any run of newline/semicolon tokens — item
// and statement lists use the same separator rule (spec.md §4.2).
func (p *Parser) skipSeparators() {
	for p.check(lexer.TokenNewline) || p.check(lexer.TokenSemi) {
		p.advance()
	}
}

func (p *Parser) parseItem() (ast.Item, error) {
	if p.check(lexer.TokenFunction) {
		fn, err := p.parseFunctionDef()
		if err != nil {
			return ast.Item{}, err
		}
		return ast.Item{Func: fn}, nil
	}
	rule, err := p.parseRule()
	if err != nil {
		return ast.Item{}, err
	}
	return ast.Item{Rule: rule}, nil
}

func (p *Parser) parseFunctionDef() (*ast.FunctionDef, error) {
	p.advance() // 'function'
	nameTok, err := p.consume(lexer.TokenIdent, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(lexer.TokenRParen) {
		pt, err := p.consume(lexer.TokenIdent, "expected parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, pt.Lexeme)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after parameter list"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Name: nameTok.Lexeme, Params: params, Body: body}, nil
}

func (p *Parser) parseRule() (*ast.PatternAction, error) {
	pattern, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	action, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.PatternAction{Pattern: pattern, Action: action}, nil
}

func (p *Parser) parsePattern() (ast.Pattern, error) {
	switch {
	case p.match(lexer.TokenBegin):
		return ast.Pattern{Kind: ast.PatternBegin}, nil
	case p.match(lexer.TokenEnd):
		return ast.Pattern{Kind: ast.PatternEnd}, nil
	case p.check(lexer.TokenLBrace):
		return ast.Pattern{Kind: ast.PatternAlways}, nil
	default:
		expr, err := p.parseExpr()
		if err != nil {
			return ast.Pattern{}, err
		}
		return ast.Pattern{Kind: ast.PatternExpr, Expr: expr}, nil
	}
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	if _, err := p.consume(lexer.TokenLBrace, "expected '{'"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	block := &ast.Block{}
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
		p.skipSeparators()
	}
	if _, err := p.consume(lexer.TokenRBrace, "expected '}'"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.check(lexer.TokenLBrace):
		return p.parseBlock()
	case p.check(lexer.TokenPrint):
		return p.parsePrint()
	case p.check(lexer.TokenPrintf):
		return p.parsePrintf()
	case p.check(lexer.TokenWhile):
		return p.parseWhile()
	case p.check(lexer.TokenFor):
		return p.parseFor()
	case p.check(lexer.TokenIf):
		return p.parseIf()
	case p.check(lexer.TokenReturn):
		return p.parseReturn()
	case p.check(lexer.TokenBreak):
		p.advance()
		return &ast.Break{}, nil
	case p.check(lexer.TokenContinue):
		p.advance()
		return &ast.Continue{}, nil
	default:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: expr}, nil
	}
}

func (p *Parser) parsePrint() (ast.Statement, error) {
	p.advance() // 'print'
	args, err := p.parseExprListUntilTerminator()
	if err != nil {
		return nil, err
	}
	return &ast.Print{Args: args}, nil
}

func (p *Parser) parsePrintf() (ast.Statement, error) {
	p.advance() // 'printf'
	paren := p.match(lexer.TokenLParen)
	format, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	for p.match(lexer.TokenComma) {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if paren {
		if _, err := p.consume(lexer.TokenRParen, "expected ')' after printf arguments"); err != nil {
			return nil, err
		}
	}
	return &ast.Printf{Format: format, Args: args}, nil
}

// parseExprListUntilTerminator parses `print`'s argument list, which
// may be parenthesized, comma-separated, or entirely absent ($0).
func (p *Parser) parseExprListUntilTerminator() ([]ast.Expression, error) {
	if p.check(lexer.TokenSemi) || p.check(lexer.TokenNewline) || p.check(lexer.TokenRBrace) || p.isAtEnd() {
		return []ast.Expression{&ast.FieldRef{Index: &ast.Literal{Value: value.Num(0)}}}, nil
	}
	paren := p.match(lexer.TokenLParen)
	var args []ast.Expression
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	args = append(args, expr)
	for p.match(lexer.TokenComma) {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
	}
	if paren {
		if _, err := p.consume(lexer.TokenRParen, "expected ')' after print arguments"); err != nil {
			return nil, err
		}
	}
	return args, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	p.advance() // 'while'
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after while condition"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	p.advance() // 'for'
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after for"); err != nil {
		return nil, err
	}
	var init ast.Statement
	if !p.check(lexer.TokenSemi) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		init = s
	}
	if _, err := p.consume(lexer.TokenSemi, "expected ';' after for-init"); err != nil {
		return nil, err
	}
	var cond ast.Expression
	if !p.check(lexer.TokenSemi) {
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cond = c
	}
	if _, err := p.consume(lexer.TokenSemi, "expected ';' after for-test"); err != nil {
		return nil, err
	}
	var update ast.Statement
	if !p.check(lexer.TokenRParen) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		update = s
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after for-update"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.For{Init: init, Cond: cond, Update: update, Body: body}, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	p.advance() // 'if'
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after if"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	mark := p.current
	p.skipSeparators()
	if p.match(lexer.TokenElse) {
		p.skipSeparators()
		elseStmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.IfElse{Cond: cond, Then: then, Else: elseStmt}, nil
	}
	p.current = mark
	return &ast.If{Cond: cond, Then: then}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	p.advance() // 'return'
	if p.check(lexer.TokenSemi) || p.check(lexer.TokenNewline) || p.check(lexer.TokenRBrace) || p.isAtEnd() {
		return &ast.Return{}, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Expr: expr}, nil
}

// --- Expressions: precedence climbing, low to high (spec.md §4.2). ---

func (p *Parser) parseExpr() (ast.Expression, error) { return p.parseAssign() }

var compoundOps = map[lexer.TokenType]ast.BinOpKind{
	lexer.TokenAddAssign: ast.OpAdd,
	lexer.TokenSubAssign: ast.OpSub,
	lexer.TokenMulAssign: ast.OpMul,
	lexer.TokenDivAssign: ast.OpDiv,
	lexer.TokenModAssign: ast.OpMod,
	lexer.TokenPowAssign: ast.OpPow,
}

func (p *Parser) parseAssign() (ast.Expression, error) {
	lhs, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TokenAssign) {
		lv, ok := exprToLValue(lhs)
		if !ok {
			return nil, p.syntaxErr("left side of '=' is not assignable")
		}
		p.advance()
		rhs, err := p.parseAssign() // right-associative
		if err != nil {
			return nil, err
		}
		return &ast.Assign{LV: lv, Expr: rhs}, nil
	}
	if op, ok := compoundOps[p.peek().Type]; ok {
		lv, ok := exprToLValue(lhs)
		if !ok {
			return nil, p.syntaxErr("left side of compound assignment is not assignable")
		}
		p.advance()
		rhs, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		combined := &ast.BinOp{Op: op, Left: &ast.LValueRead{LV: lv}, Right: rhs}
		return &ast.Assign{LV: lv, Expr: combined}, nil
	}
	return lhs, nil
}

func (p *Parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokenOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokenAnd) {
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

var compareOps = map[lexer.TokenType]ast.BinOpKind{
	lexer.TokenLt: ast.OpLess,
	lexer.TokenLe: ast.OpLessEqual,
	lexer.TokenNe: ast.OpNotEqual,
	lexer.TokenEq: ast.OpEqual,
	lexer.TokenGt: ast.OpGreater,
	lexer.TokenGe: ast.OpGreaterEqual,
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := compareOps[p.peek().Type]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: op, Left: left, Right: right}
	}
}

// parseConcat handles implicit juxtaposition concatenation: two
// additive-level expressions written back to back with no operator
// between them.
func (p *Parser) parseConcat() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.startsConcatOperand() {
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: ast.OpConcat, Left: left, Right: right}
	}
	return left, nil
}

// startsConcatOperand reports whether the current token could begin
// another additive-level expression, i.e. concatenation continues.
func (p *Parser) startsConcatOperand() bool {
	switch p.peek().Type {
	case lexer.TokenIdent, lexer.TokenNumber, lexer.TokenString,
		lexer.TokenLParen, lexer.TokenDollar, lexer.TokenNot,
		lexer.TokenIncr, lexer.TokenDecr, lexer.TokenMinus, lexer.TokenPlus:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) {
		op := ast.OpAdd
		if p.peek().Type == lexer.TokenMinus {
			op = ast.OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOpKind
		switch p.peek().Type {
		case lexer.TokenStar:
			op = ast.OpMul
		case lexer.TokenSlash:
			op = ast.OpDiv
		case lexer.TokenPercent:
			op = ast.OpMod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parsePow() (ast.Expression, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.match(lexer.TokenCaret) {
		right, err := p.parsePow() // right-associative
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Op: ast.OpPow, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	operand, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TokenIncr) || p.check(lexer.TokenDecr) {
		lv, ok := exprToLValue(operand)
		if !ok {
			return operand, nil
		}
		kind := ast.PostIncr
		if p.peek().Type == lexer.TokenDecr {
			kind = ast.PostDecr
		}
		p.advance()
		return &ast.IncDec{Kind: kind, LV: lv}, nil
	}
	return operand, nil
}

func (p *Parser) parsePrefix() (ast.Expression, error) {
	if p.check(lexer.TokenIncr) || p.check(lexer.TokenDecr) {
		kind := ast.PreIncr
		if p.peek().Type == lexer.TokenDecr {
			kind = ast.PreDecr
		}
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lv, ok := exprToLValue(operand)
		if !ok {
			return nil, p.syntaxErr("operand of ++/-- is not assignable")
		}
		return &ast.IncDec{Kind: kind, LV: lv}, nil
	}
	return p.parseUnary()
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.peek().Type {
	case lexer.TokenNot:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.UnaryNot, Operand: operand}, nil
	case lexer.TokenMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.UnaryMinus, Operand: operand}, nil
	case lexer.TokenPlus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.UnaryPlus, Operand: operand}, nil
	default:
		return p.parseFieldRef()
	}
}

func (p *Parser) parseFieldRef() (ast.Expression, error) {
	if p.match(lexer.TokenDollar) {
		index, err := p.parseFieldRef()
		if err != nil {
			return nil, err
		}
		return &ast.FieldRef{Index: index}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenNumber:
		p.advance()
		return &ast.Literal{Value: value.Num(parseNumberLiteral(tok.Lexeme))}, nil
	case lexer.TokenString:
		p.advance()
		return &ast.Literal{Value: value.Str(tok.Lexeme)}, nil
	case lexer.TokenLParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenRParen, "expected ')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.TokenIdent:
		return p.parseIdentExpr()
	default:
		return nil, p.syntaxErr("unexpected token " + string(tok.Type))
	}
}

func (p *Parser) parseIdentExpr() (ast.Expression, error) {
	nameTok := p.advance()
	name := nameTok.Lexeme

	if p.match(lexer.TokenLBracket) {
		var indices []ast.Expression
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
		for p.match(lexer.TokenComma) {
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			indices = append(indices, idx)
		}
		if _, err := p.consume(lexer.TokenRBracket, "expected ']'"); err != nil {
			return nil, err
		}
		return &ast.LValueRead{LV: &ast.ArrayIndex{Name: name, Indices: indices}}, nil
	}

	if p.match(lexer.TokenLParen) {
		var args []ast.Expression
		if !p.check(lexer.TokenRParen) {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			for p.match(lexer.TokenComma) {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
		}
		if _, err := p.consume(lexer.TokenRParen, "expected ')' after call arguments"); err != nil {
			return nil, err
		}
		if _, ok := builtins.Lookup(name); ok {
			return &ast.BuiltinCall{Name: name, Args: args}, nil
		}
		return &ast.UserCall{Name: name, Args: args}, nil
	}

	return &ast.LValueRead{LV: &ast.Name{Name: name}}, nil
}

// exprToLValue extracts the LValue an expression reads, for use as an
// assignment or inc/dec target. Only bare names and array indices are
// assignable (spec.md §3's LValue variants); field references are not.
func exprToLValue(e ast.Expression) (ast.LValue, bool) {
	if lr, ok := e.(*ast.LValueRead); ok {
		return lr.LV, true
	}
	return nil, false
}

func (p *Parser) syntaxErr(msg string) error {
	tok := p.peek()
	return awkerr.NewSyntax(msg, tok.Line, tok.Column)
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(tt lexer.TokenType) bool {
	return p.peek().Type == tt
}

func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(tt lexer.TokenType, msg string) (lexer.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.syntaxErr(msg)
}
