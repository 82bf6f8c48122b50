package calculation

import (
	"strings"

	"github.com/pkg/errors"
)

// Parse parses the expression written the way String renders it, e.g. "frac(1,2)+sqrt(x)^(2)".
func Parse(s string) (Expression, error) {
	p := &parser{s: s}
	e, err := p.expression(1)
	if err != nil {
		return nil, err
	}
	if p.pos != len(s) {
		return nil, errors.Errorf("unexpected %q at position %d", s[p.pos], p.pos)
	}
	return e, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) expression(depth int) (Expression, error) {
	if depth > MaxDepth {
		return nil, errors.Errorf("expression is nested deeper than %d levels", MaxDepth)
	}

	e := Expression{}
	for p.pos < len(p.s) {
		switch {
		case p.s[p.pos] == ')' || p.s[p.pos] == ',':
			return e, nil
		case p.consume("frac("):
			numerator, err := p.argument(depth, ',')
			if err != nil {
				return nil, err
			}
			denominator, err := p.argument(depth, ')')
			if err != nil {
				return nil, err
			}
			e = append(e, Fraction(numerator, denominator))
		case p.consume("sqrt("):
			radicand, err := p.argument(depth, ')')
			if err != nil {
				return nil, err
			}
			e = append(e, Sqrt(radicand))
		case p.consume("^("):
			exponent, err := p.argument(depth, ')')
			if err != nil {
				return nil, err
			}
			e = append(e, Power(exponent))
		case p.consume("("):
			inner, err := p.argument(depth, ')')
			if err != nil {
				return nil, err
			}
			e = append(e, Parentheses(inner))
		case p.s[p.pos] == ' ':
			p.pos++
		case validToken(p.s[p.pos]):
			e = append(e, Token(p.s[p.pos]))
			p.pos++
		default:
			return nil, errors.Errorf("unexpected %q at position %d", p.s[p.pos], p.pos)
		}
	}
	return e, nil
}

func (p *parser) argument(depth int, terminator byte) (Expression, error) {
	e, err := p.expression(depth + 1)
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.s) || p.s[p.pos] != terminator {
		return nil, errors.Errorf("expected %q at position %d", terminator, p.pos)
	}
	p.pos++
	return e, nil
}

func (p *parser) consume(prefix string) bool {
	if strings.HasPrefix(p.s[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}
