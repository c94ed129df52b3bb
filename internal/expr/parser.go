package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// Parse compiles condition text into an Expression.
func Parse(src string) (*Expression, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, &ParseError{Column: 1, Message: "empty condition", Source: src}
	}

	p := &parser{src: src, toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %s %q", tok.kind, tok.text)
	}

	return &Expression{
		Source:    src,
		Root:      root,
		variables: collectVariables(root),
	}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(src string) *Expression {
	e, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("expr.MustParse(%q): %v", src, err))
	}
	return e
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) *ParseError {
	return &ParseError{Column: tok.pos + 1, Message: fmt.Sprintf(format, args...), Source: p.src}
}

// or = and { "||" and }
func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

// and = unary { "&&" unary }
func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

// unary = "!" unary | primary
func (p *parser) parseUnary() (Node, error) {
	if p.peek().kind == tokNot {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{Operand: operand}, nil
	}
	return p.parsePrimary()
}

// primary = "(" expr ")" | marker | comparison | name
func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorf(closing, "expected \")\", got %s", closing.kind)
		}
		return inner, nil
	case tokMarker:
		p.next()
		return ChangeMarker{Name: tok.text}, nil
	case tokWord:
		if p.toks[p.pos+1].kind != tokOp && isName(tok.text) {
			p.next()
			return VariableRef{Name: tok.text}, nil
		}
		return p.parseComparison()
	case tokString:
		return p.parseComparison()
	default:
		return nil, p.errorf(tok, "expected comparison, change marker or \"(\", got %s", tok.kind)
	}
}

// comparison = name op literal | literal op name
func (p *parser) parseComparison() (Node, error) {
	left := p.next()

	opTok := p.next()
	if opTok.kind != tokOp {
		return nil, p.errorf(opTok, "expected comparison operator after %q, got %s", left.text, opTok.kind)
	}
	op := Operator(opTok.text)

	right := p.next()
	if right.kind != tokWord && right.kind != tokString {
		return nil, p.errorf(right, "expected value after %q, got %s", opTok.text, right.kind)
	}

	if left.kind == tokWord && isName(left.text) {
		return Comparison{
			Var: VariableRef{Name: left.text},
			Op:  op,
			Lit: Literal{Value: literalOf(right)},
		}, nil
	}

	if right.kind == tokWord && isName(right.text) {
		return Comparison{
			Var: VariableRef{Name: right.text},
			Op:  op.mirror(),
			Lit: Literal{Value: literalOf(left)},
		}, nil
	}

	return nil, p.errorf(left, "comparison %s %s %s does not reference a variable", left.text, opTok.text, right.text)
}

// literalOf converts a literal token to a value. Quoted strings are always
// strings. Words are tried as integer, float and boolean in that order and
// fall back to a bare string.
func literalOf(tok token) ir.SystemValue {
	if tok.kind == tokString {
		return ir.NewString(tok.text)
	}
	return ParseLiteral(tok.text)
}

// ParseLiteral interprets unquoted text as a value: integer, then float,
// then boolean, falling back to string.
func ParseLiteral(text string) ir.SystemValue {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return ir.NewInt(n)
	}
	if looksNumeric(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return ir.NewFloat(f)
		}
	}
	switch text {
	case "true":
		return ir.NewBool(true)
	case "false":
		return ir.NewBool(false)
	}
	return ir.NewString(text)
}

// looksNumeric keeps words such as "inf" or "NaN" out of float parsing.
func looksNumeric(text string) bool {
	t := strings.TrimLeft(text, "+-")
	return t != "" && (t[0] == '.' || (t[0] >= '0' && t[0] <= '9'))
}
