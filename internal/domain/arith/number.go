package arith

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrNotANumber is returned when a value cannot be parsed as a JSON number.
var ErrNotANumber = errors.New("not a number")

// ErrNotRepresentable is returned when a float result is infinite or NaN and
// therefore has no JSON encoding.
var ErrNotRepresentable = errors.New("number not representable in JSON")

// Number is an integer or a float. The zero value is the integer 0.
type Number struct {
	i       *big.Int
	f       float64
	isFloat bool
}

// Int returns an integer Number.
func Int(v int64) Number {
	return Number{i: big.NewInt(v)}
}

// Float returns a float Number.
func Float(v float64) Number {
	return Number{f: v, isFloat: true}
}

// ParseNumber parses a JSON number literal. Literals with a fraction or an
// exponent are floats; everything else is an integer of any size.
func ParseNumber(raw []byte) (Number, error) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || !json.Valid([]byte(s)) || !isNumberLiteral(s) {
		return Number{}, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}

	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Number{}, fmt.Errorf("%w: %q: %v", ErrNotANumber, s, err)
		}
		return Float(f), nil
	}

	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Number{}, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	return Number{i: i}, nil
}

// IsFloat reports whether n is a float.
func (n Number) IsFloat() bool {
	return n.isFloat
}

// Float64 returns n as a float64. Large integers lose precision.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	f, _ := new(big.Float).SetInt(n.bigInt()).Float64()
	return f
}

// Equal reports whether n and m have the same kind and value.
func (n Number) Equal(m Number) bool {
	if n.isFloat != m.isFloat {
		return false
	}
	if n.isFloat {
		return n.f == m.f
	}
	return n.bigInt().Cmp(m.bigInt()) == 0
}

// String formats n the way MarshalJSON does, without validating floats.
func (n Number) String() string {
	if !n.isFloat {
		return n.bigInt().String()
	}
	s := strconv.FormatFloat(n.f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// MarshalJSON encodes integers without a fraction and floats with one, so
// 4 and 4.0 survive a round trip as different kinds.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.isFloat && (math.IsInf(n.f, 0) || math.IsNaN(n.f)) {
		return nil, fmt.Errorf("%w: %v", ErrNotRepresentable, n.f)
	}
	return []byte(n.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	parsed, err := ParseNumber(data)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func (n Number) bigInt() *big.Int {
	if n.i == nil {
		return new(big.Int)
	}
	return n.i
}

func isNumberLiteral(s string) bool {
	c := s[0]
	return c == '-' || (c >= '0' && c <= '9')
}
