package parser

import (
	"fmt"
	"strconv"

	"github.com/leengari/hybrideval/internal/expr"
	"github.com/leengari/hybrideval/internal/parser/lexer"
)

type Parser struct {
	tokens  []lexer.Token
	curPos  int
	curTok  lexer.Token
	peekTok lexer.Token
}

func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens, curPos: 0}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.curPos < len(p.tokens) {
		p.peekTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.peekTok = lexer.Token{Type: lexer.EOF}
	}
}

// Parse consumes the whole token stream as a single expression
func (p *Parser) Parse() (expr.Node, error) {
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.curTok.Type != lexer.EOF {
		return nil, fmt.Errorf("unexpected trailing token %q", p.curTok.Literal)
	}
	return node, nil
}

// parseExpression handles + and - (lowest precedence)
func (p *Parser) parseExpression() (expr.Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.curTok.Type == lexer.PLUS || p.curTok.Type == lexer.MINUS {
		op := p.curTok.Literal
		p.nextToken()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &expr.Binary{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parseTerm handles * and /
func (p *Parser) parseTerm() (expr.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.curTok.Type == lexer.ASTERISK || p.curTok.Type == lexer.SLASH {
		op := p.curTok.Literal
		p.nextToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &expr.Binary{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parseUnary handles a leading minus, expressed as 0 - operand
func (p *Parser) parseUnary() (expr.Node, error) {
	if p.curTok.Type == lexer.MINUS {
		p.nextToken()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &expr.Binary{Left: &expr.Literal{Value: int64(0)}, Operator: "-", Right: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (expr.Node, error) {
	switch p.curTok.Type {
	case lexer.NUMBER:
		return p.parseNumber()

	case lexer.STRING:
		lit := &expr.Literal{Value: p.curTok.Literal}
		p.nextToken()
		return lit, nil

	case lexer.TRUE:
		p.nextToken()
		return &expr.Literal{Value: true}, nil

	case lexer.FALSE:
		p.nextToken()
		return &expr.Literal{Value: false}, nil

	case lexer.IDENTIFIER:
		name := p.curTok.Literal
		p.nextToken()
		if p.curTok.Type == lexer.PAREN_OPEN {
			return p.parseCall(name)
		}
		return &expr.Symbol{Name: name}, nil

	case lexer.PAREN_OPEN:
		p.nextToken()
		node, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.curTok.Type != lexer.PAREN_CLOSE {
			return nil, fmt.Errorf("expected ')', got %q", p.curTok.Literal)
		}
		p.nextToken()
		return node, nil

	default:
		return nil, fmt.Errorf("unexpected token %q", p.curTok.Literal)
	}
}

func (p *Parser) parseNumber() (expr.Node, error) {
	literal := p.curTok.Literal
	p.nextToken()

	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return &expr.Literal{Value: i}, nil
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", literal, err)
	}
	return &expr.Literal{Value: f}, nil
}

// parseCall parses the argument list after 'name('
func (p *Parser) parseCall(name string) (expr.Node, error) {
	// Consume '('
	p.nextToken()

	call := &expr.Call{Func: &expr.Symbol{Name: name}}

	if p.curTok.Type == lexer.PAREN_CLOSE {
		p.nextToken()
		return call, nil
	}

	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		if p.curTok.Type == lexer.COMMA {
			p.nextToken()
			continue
		}
		if p.curTok.Type == lexer.PAREN_CLOSE {
			p.nextToken()
			return call, nil
		}
		return nil, fmt.Errorf("expected ',' or ')' in call to %s, got %q", name, p.curTok.Literal)
	}
}

// ParseExpression tokenizes and parses input in one step
func ParseExpression(input string) (expr.Node, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, fmt.Errorf("lexer error: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	p := New(tokens)
	return p.Parse()
}
