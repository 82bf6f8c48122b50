package calculation

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the kind of the node in the expression tree.
type Kind byte

// Node kinds. Zero is reserved for the end-of-expression marker in the serialized form.
const (
	TokenKind Kind = iota + 1
	FractionKind
	SqrtKind
	PowerKind
	ParenthesesKind
)

// Tokens lists the glyphs which may be stored in token nodes.
const Tokens = "0123456789.+-*/x"

// MaxDepth is the maximum nesting level of the expression tree.
const MaxDepth = 16

// Node is the element of the expression tree.
type Node struct {
	Kind Kind

	// Token is set for TokenKind nodes only.
	Token byte

	// Children holds the numerator and denominator of a fraction, or the single argument of the other structured
	// nodes.
	Children []Expression
}

// Expression is the sequence of nodes.
type Expression []Node

// Calculation is the entry stored in the history.
type Calculation struct {
	Expression Expression
	Result     *float64
}

// New returns new calculation.
func New(expression Expression, result *float64) Calculation {
	return Calculation{
		Expression: expression,
		Result:     result,
	}
}

// Token returns the token node.
func Token(token byte) Node {
	return Node{Kind: TokenKind, Token: token}
}

// Fraction returns the fraction node.
func Fraction(numerator, denominator Expression) Node {
	return Node{Kind: FractionKind, Children: []Expression{numerator, denominator}}
}

// Sqrt returns the square root node.
func Sqrt(radicand Expression) Node {
	return Node{Kind: SqrtKind, Children: []Expression{radicand}}
}

// Power returns the node raising the preceding node to the exponent.
func Power(exponent Expression) Node {
	return Node{Kind: PowerKind, Children: []Expression{exponent}}
}

// Parentheses returns the node wrapping the expression in parentheses.
func Parentheses(inner Expression) Node {
	return Node{Kind: ParenthesesKind, Children: []Expression{inner}}
}

// Validate checks that the tree is well-formed.
func (e Expression) Validate() error {
	return e.validate(1)
}

func (e Expression) validate(depth int) error {
	if depth > MaxDepth {
		return errors.Errorf("expression is nested deeper than %d levels", MaxDepth)
	}
	for _, n := range e {
		expected, err := n.Kind.children()
		if err != nil {
			return err
		}
		if len(n.Children) != expected {
			return errors.Errorf("node of kind %d must have %d children, got %d", n.Kind, expected, len(n.Children))
		}
		if n.Kind == TokenKind && !validToken(n.Token) {
			return errors.Errorf("invalid token %q", n.Token)
		}
		for _, child := range n.Children {
			if err := child.validate(depth + 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders the expression in the form accepted by Parse.
func (e Expression) String() string {
	b := &strings.Builder{}
	e.render(b)
	return b.String()
}

func (e Expression) render(b *strings.Builder) {
	for _, n := range e {
		switch n.Kind {
		case TokenKind:
			b.WriteByte(n.Token)
		case FractionKind:
			b.WriteString("frac(")
			n.Children[0].render(b)
			b.WriteByte(',')
			n.Children[1].render(b)
			b.WriteByte(')')
		case SqrtKind:
			b.WriteString("sqrt(")
			n.Children[0].render(b)
			b.WriteByte(')')
		case PowerKind:
			b.WriteString("^(")
			n.Children[0].render(b)
			b.WriteByte(')')
		case ParenthesesKind:
			b.WriteByte('(')
			n.Children[0].render(b)
			b.WriteByte(')')
		}
	}
}

// String renders the calculation.
func (c Calculation) String() string {
	if c.Result == nil {
		return c.Expression.String()
	}
	return c.Expression.String() + " = " + strconv.FormatFloat(*c.Result, 'g', -1, 64)
}

func (k Kind) children() (int, error) {
	switch k {
	case TokenKind:
		return 0, nil
	case FractionKind:
		return 2, nil
	case SqrtKind, PowerKind, ParenthesesKind:
		return 1, nil
	default:
		return 0, errors.Errorf("unknown node kind %d", k)
	}
}

func validToken(token byte) bool {
	return token != 0 && strings.IndexByte(Tokens, token) >= 0
}
