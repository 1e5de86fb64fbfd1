// Package vaultconst holds the fixed-point parameters of the Vault contract.
// It is imported by the contract itself and by off-chain code.
package vaultconst

const (
	// Precision is the fixed-point scale of the exchange rate: a rate equal
	// to Precision means one share per unit of principal.
	Precision = 10_000_000

	// PrecisionDecimals is the number of decimal places in Precision. Share
	// amounts use the same number of decimals.
	PrecisionDecimals = 7

	// MinAmount is the smallest deposit or withdrawal (in principal units
	// and shares respectively) the Vault accepts.
	MinAmount = 1_000_000

	// DefaultMaxDeposit is the single-deposit limit set on initialization.
	DefaultMaxDeposit = 1_000_000 * Precision
)

