package calculation

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

const (
	endOfExpression byte = 0x00

	noResult   byte = 0x00
	withResult byte = 0x01
)

// ErrMalformed is returned if bytes don't encode a calculation.
var ErrMalformed = errors.New("malformed calculation")

// Codec serializes calculations stored in the history.
//
// Expression is a sequence of nodes closed by a zero byte. Each node starts with its kind, token node is followed by
// the token byte, structured nodes are followed by their child expressions. Expression is followed by the presence
// byte and, if the result is present, the big-endian IEEE 754 bits of the result. Length is not stored anywhere.
type Codec struct{}

// Serialize serializes the calculation.
func (Codec) Serialize(c Calculation) ([]byte, error) {
	if err := c.Expression.Validate(); err != nil {
		return nil, err
	}

	buf := appendExpression(nil, c.Expression)
	if c.Result == nil {
		return append(buf, noResult), nil
	}
	buf = append(buf, withResult)
	return binary.BigEndian.AppendUint64(buf, math.Float64bits(*c.Result)), nil
}

// Deserialize reads the calculation from r.
func (Codec) Deserialize(r io.ByteReader) (Calculation, error) {
	expression, err := readExpression(r, 1)
	if err != nil {
		return Calculation{}, err
	}

	presence, err := r.ReadByte()
	if err != nil {
		return Calculation{}, errors.WithStack(err)
	}

	switch presence {
	case noResult:
		return New(expression, nil), nil
	case withResult:
	default:
		return Calculation{}, errors.Wrapf(ErrMalformed, "invalid presence byte 0x%02x", presence)
	}

	var bits [8]byte
	for i := range bits {
		if bits[i], err = r.ReadByte(); err != nil {
			return Calculation{}, errors.WithStack(err)
		}
	}
	result := math.Float64frombits(binary.BigEndian.Uint64(bits[:]))
	return New(expression, &result), nil
}

func appendExpression(buf []byte, e Expression) []byte {
	for _, n := range e {
		buf = append(buf, byte(n.Kind))
		if n.Kind == TokenKind {
			buf = append(buf, n.Token)
		}
		for _, child := range n.Children {
			buf = appendExpression(buf, child)
		}
	}
	return append(buf, endOfExpression)
}

func readExpression(r io.ByteReader, depth int) (Expression, error) {
	if depth > MaxDepth {
		return nil, errors.Wrapf(ErrMalformed, "expression is nested deeper than %d levels", MaxDepth)
	}

	e := Expression{}
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if b == endOfExpression {
			return e, nil
		}

		kind := Kind(b)
		nChildren, err := kind.children()
		if err != nil {
			return nil, errors.Wrap(ErrMalformed, err.Error())
		}

		n := Node{Kind: kind}
		if kind == TokenKind {
			if n.Token, err = r.ReadByte(); err != nil {
				return nil, errors.WithStack(err)
			}
			if !validToken(n.Token) {
				return nil, errors.Wrapf(ErrMalformed, "invalid token 0x%02x", n.Token)
			}
		}
		for i := 0; i < nChildren; i++ {
			child, err := readExpression(r, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
		e = append(e, n)
	}
}
