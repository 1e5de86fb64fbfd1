package common

// Exception messages the contracts panic with. Off-chain code matches FAULT
// exceptions against them, so they must stay stable between versions.
const (
	ErrUnauthorized          = "unauthorized"
	ErrAlreadyInitialized    = "already initialized"
	ErrNotInitialized        = "not initialized"
	ErrInvalidAddress        = "invalid address"
	ErrInvalidAmount         = "invalid amount"
	ErrBelowMinimum          = "amount below minimum"
	ErrExceedsMaximum        = "amount exceeds maximum deposit"
	ErrExceedsCap            = "deposit exceeds total cap"
	ErrOverflow              = "arithmetic overflow"
	ErrDivision              = "division by zero"
	ErrInsufficientBalance   = "insufficient balance"
	ErrInsufficientAllowance = "insufficient allowance"
	ErrInsufficientShares    = "insufficient shares"
	ErrInsufficientLiquidity = "insufficient vault liquidity"
	ErrPaused                = "vault is paused"
	ErrReentrantCall         = "reentrant call"
	ErrDepositTooSmall       = "deposit too small"
	ErrWithdrawalTooSmall    = "withdrawal too small"
	ErrSlippage              = "slippage"
	ErrTransferFailed        = "principal transfer failed"
)
