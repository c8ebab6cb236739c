package keeper

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

// Overflow-safe arithmetic for the AMM kernels. The stableswap solvers need
// exact intermediates wider than 128 bits, so everything here runs on big.Int
// and is checked against the 256-bit range at the boundaries back to math.Int.

var maxUint256 = new(big.Int).Exp(big.NewInt(2), big.NewInt(256), nil)

// SafeAdd adds two math.Int values with overflow checking
func SafeAdd(a, b math.Int) (math.Int, error) {
	result := new(big.Int).Add(a.BigInt(), b.BigInt())
	if result.Cmp(maxUint256) >= 0 {
		return math.Int{}, fmt.Errorf("overflow: addition result exceeds maximum value")
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeSub subtracts two math.Int values with underflow checking
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, fmt.Errorf("underflow: cannot subtract %s from %s", b.String(), a.String())
	}
	return a.Sub(b), nil
}

// SafeMulDiv performs floor(a * b / d) with an exact 256-bit intermediate.
func SafeMulDiv(a, b, d math.Int) (math.Int, error) {
	if d.IsZero() {
		return math.Int{}, fmt.Errorf("division by zero")
	}
	intermediate := new(big.Int).Mul(a.BigInt(), b.BigInt())
	result := intermediate.Quo(intermediate, d.BigInt())
	if result.Cmp(maxUint256) >= 0 {
		return math.Int{}, fmt.Errorf("overflow in mul-div result")
	}
	return math.NewIntFromBigInt(result), nil
}

// Ratio returns floor(value * numerator / denominator).
func Ratio(value math.Int, numerator, denominator uint32) math.Int {
	out, err := SafeMulDiv(value, math.NewInt(int64(numerator)), math.NewInt(int64(denominator)))
	if err != nil {
		// numerator/denominator are bps-sized; the product of a 256-bit value
		// and a u32 divided by a u32 stays in range for every caller.
		panic(err)
	}
	return out
}

// IntegerSqrt returns the integer square root of a 256-bit product.
func IntegerSqrt(value *big.Int) *big.Int {
	return new(big.Int).Sqrt(value)
}

// mulBig returns a*b on fresh big.Int.
func mulBig(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

// quoBig returns floor(a/b) on fresh big.Int.
func quoBig(a, b *big.Int) *big.Int {
	return new(big.Int).Quo(a, b)
}

// absDiffBig returns |a-b| on fresh big.Int.
func absDiffBig(a, b *big.Int) *big.Int {
	out := new(big.Int).Sub(a, b)
	return out.Abs(out)
}

// toInt converts a non-negative big.Int back to math.Int, rejecting values
// past the 256-bit range.
func toInt(value *big.Int) (math.Int, error) {
	if value.Sign() < 0 {
		return math.Int{}, fmt.Errorf("negative amount %s", value)
	}
	if value.Cmp(maxUint256) >= 0 {
		return math.Int{}, fmt.Errorf("overflow: value exceeds 256 bits")
	}
	return math.NewIntFromBigInt(value), nil
}
