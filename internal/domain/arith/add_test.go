package arith

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		x, y     string
		expected string
		isFloat  bool
	}{
		{name: "two plus two", x: "2", y: "2", expected: "4"},
		{name: "negative integers", x: "-7", y: "3", expected: "-4"},
		{name: "zero", x: "0", y: "0", expected: "0"},
		{name: "floats", x: "1.5", y: "2.25", expected: "3.75", isFloat: true},
		{name: "int and float", x: "2", y: "2.0", expected: "4.0", isFloat: true},
		{name: "exponent is float", x: "1e2", y: "1", expected: "101.0", isFloat: true},
		{
			name:     "beyond int64",
			x:        "9223372036854775807",
			y:        "9223372036854775807",
			expected: "18446744073709551614",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			x, err := ParseNumber([]byte(tc.x))
			require.NoError(t, err)
			y, err := ParseNumber([]byte(tc.y))
			require.NoError(t, err)

			sum := Add(x, y)

			assert.Equal(t, tc.isFloat, sum.IsFloat())
			out, err := json.Marshal(sum)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(out))
		})
	}
}

func TestAddMatchesFloatArithmetic(t *testing.T) {
	t.Parallel()

	pairs := [][2]float64{{0.1, 0.2}, {-3.5, 3.5}, {1e-9, 1e9}, {123.456, -0.456}}
	for _, p := range pairs {
		sum := Add(Float(p[0]), Float(p[1]))
		assert.Equal(t, p[0]+p[1], sum.Float64())
	}
}

func TestAddIsCommutative(t *testing.T) {
	t.Parallel()

	values := []Number{Int(0), Int(-5), Int(42), Float(0.5), Float(-2.75)}
	for _, a := range values {
		for _, b := range values {
			assert.True(t, Add(a, b).Equal(Add(b, a)), "%s + %s", a, b)
		}
	}
}

func TestZeroValueIsIntegerZero(t *testing.T) {
	t.Parallel()

	var zero Number
	assert.True(t, Add(zero, Int(3)).Equal(Int(3)))
	assert.Equal(t, "0", zero.String())
}

func TestParseNumberRejectsNonNumbers(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`"2"`, `true`, `null`, `[1]`, ``, `{}`, `2x`} {
		_, err := ParseNumber([]byte(raw))
		assert.ErrorIs(t, err, ErrNotANumber, "input %q", raw)
	}
}

func TestMarshalInfinity(t *testing.T) {
	t.Parallel()

	sum := Add(Float(math.MaxFloat64), Float(math.MaxFloat64))
	_, err := json.Marshal(sum)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRepresentable)
}

func TestUnmarshalJSON(t *testing.T) {
	t.Parallel()

	var payload struct {
		X Number `json:"x"`
		Y Number `json:"y"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"x": 10, "y": 0.5}`), &payload))
	assert.True(t, payload.X.Equal(Int(10)))
	assert.True(t, payload.Y.Equal(Float(0.5)))
}
