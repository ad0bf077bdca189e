package arith

import "math/big"

// Add returns x + y. Two integers add exactly; if either operand is a float
// both are converted to float64 first.
func Add(x, y Number) Number {
	if x.isFloat || y.isFloat {
		return Float(x.Float64() + y.Float64())
	}
	return Number{i: new(big.Int).Add(x.bigInt(), y.bigInt())}
}
