package shares

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/sharevault/vault-contract/common"
)

// Errors returned by the accounting model and recognized in contract FAULT
// exceptions by FromFault.
var (
	ErrUnauthorized          = errors.New(common.ErrUnauthorized)
	ErrAlreadyInitialized    = errors.New(common.ErrAlreadyInitialized)
	ErrNotInitialized        = errors.New(common.ErrNotInitialized)
	ErrInvalidAddress        = errors.New(common.ErrInvalidAddress)
	ErrInvalidAmount         = errors.New(common.ErrInvalidAmount)
	ErrBelowMinimum          = errors.New(common.ErrBelowMinimum)
	ErrExceedsMaximum        = errors.New(common.ErrExceedsMaximum)
	ErrExceedsCap            = errors.New(common.ErrExceedsCap)
	ErrOverflow              = errors.New(common.ErrOverflow)
	ErrDivision              = errors.New(common.ErrDivision)
	ErrInsufficientBalance   = errors.New(common.ErrInsufficientBalance)
	ErrInsufficientAllowance = errors.New(common.ErrInsufficientAllowance)
	ErrInsufficientShares    = errors.New(common.ErrInsufficientShares)
	ErrInsufficientLiquidity = errors.New(common.ErrInsufficientLiquidity)
	ErrPaused                = errors.New(common.ErrPaused)
	ErrReentrantCall         = errors.New(common.ErrReentrantCall)
	ErrDepositTooSmall       = errors.New(common.ErrDepositTooSmall)
	ErrWithdrawalTooSmall    = errors.New(common.ErrWithdrawalTooSmall)
	ErrSlippage              = errors.New(common.ErrSlippage)
	ErrTransferFailed        = errors.New(common.ErrTransferFailed)
)

var faults = []error{
	ErrUnauthorized,
	ErrAlreadyInitialized,
	ErrNotInitialized,
	ErrInvalidAddress,
	ErrInvalidAmount,
	ErrBelowMinimum,
	ErrExceedsMaximum,
	ErrExceedsCap,
	ErrOverflow,
	ErrDivision,
	ErrInsufficientBalance,
	ErrInsufficientAllowance,
	ErrInsufficientShares,
	ErrInsufficientLiquidity,
	ErrPaused,
	ErrReentrantCall,
	ErrDepositTooSmall,
	ErrWithdrawalTooSmall,
	ErrTransferFailed,
	ErrSlippage,
}

var slippageRe = regexp.MustCompile(common.ErrSlippage + `: expected at least (-?\d+), got (-?\d+)`)

// SlippageError is returned when an operation would produce less than the
// caller accepted. It matches ErrSlippage with errors.Is.
type SlippageError struct {
	Expected *big.Int
	Actual   *big.Int
}

func (e *SlippageError) Error() string {
	return fmt.Sprintf("%s: expected at least %s, got %s", common.ErrSlippage, e.Expected, e.Actual)
}

// Is implements errors.Is interface.
func (e *SlippageError) Is(target error) bool {
	return target == ErrSlippage
}

// FromFault maps the exception text of a FAULTed contract invocation to one
// of the package errors. Unknown exceptions are returned as plain errors.
func FromFault(exception string) error {
	if m := slippageRe.FindStringSubmatch(exception); m != nil {
		e, _ := new(big.Int).SetString(m[1], 10)
		a, _ := new(big.Int).SetString(m[2], 10)
		return &SlippageError{Expected: e, Actual: a}
	}

	for _, e := range faults {
		if strings.Contains(exception, e.Error()) {
			return fmt.Errorf("%w: %s", e, exception)
		}
	}

	return errors.New(exception)
}
