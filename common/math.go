package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

// maxAmount is 2^127-1, the upper bound of every stored amount.
const maxAmount = "170141183460469231731687303715884105727"

// MaxAmount returns the largest value an amount may take.
func MaxAmount() int {
	return std.Atoi10(maxAmount)
}

// CheckedAdd returns a+b or panics with ErrOverflow if the sum leaves the
// signed 128-bit range.
func CheckedAdd(a, b int) int {
	return bounded(a + b)
}

// CheckedSub returns a-b or panics with ErrOverflow.
func CheckedSub(a, b int) int {
	return bounded(a - b)
}

// CheckedMul returns a*b or panics with ErrOverflow.
func CheckedMul(a, b int) int {
	return bounded(a * b)
}

// CheckedDiv returns floor(a/b) for non-negative operands or panics with
// ErrDivision if b is zero.
func CheckedDiv(a, b int) int {
	if b == 0 {
		panic(ErrDivision)
	}
	return a / b
}

// SaturatingSub returns a-b clamped at zero.
func SaturatingSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}

func bounded(v int) int {
	limit := MaxAmount()
	if v > limit || v < -limit-1 {
		panic(ErrOverflow)
	}
	return v
}
