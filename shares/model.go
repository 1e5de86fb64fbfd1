// Package shares models the Vault accounting off-chain with arbitrary
// precision integers. It mirrors the contract arithmetic bit for bit, so it
// can be used to preview operations, compute slippage bounds and check
// contract results.
package shares

import (
	"math/big"

	"github.com/sharevault/vault-contract/contracts/vault/vaultconst"
)

var (
	// Precision is the exchange rate scale.
	Precision = big.NewInt(vaultconst.Precision)

	// MinAmount is the smallest deposit amount and withdrawal share count.
	MinAmount = big.NewInt(vaultconst.MinAmount)

	// MaxAmount is the largest value any counter may take (2^127-1).
	MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

	minAmount = new(big.Int).Sub(new(big.Int).Neg(MaxAmount), big.NewInt(1))
)

// Limits are the administrator-controlled deposit bounds.
type Limits struct {
	MaxDeposit *big.Int
	TotalCap   *big.Int
}

// DefaultLimits returns the limits of a freshly initialized Vault.
func DefaultLimits() Limits {
	return Limits{
		MaxDeposit: big.NewInt(vaultconst.DefaultMaxDeposit),
		TotalCap:   new(big.Int).Set(MaxAmount),
	}
}

// State is a consistent snapshot of the Vault counters and the share token
// supply. The zero value is not usable, see NewState.
type State struct {
	TotalDeposits *big.Int
	YieldAccrued  *big.Int
	TotalSupply   *big.Int
}

// NewState returns the state of an empty Vault.
func NewState() State {
	return State{
		TotalDeposits: new(big.Int),
		YieldAccrued:  new(big.Int),
		TotalSupply:   new(big.Int),
	}
}

// TotalAssets returns deposits plus accrued yield.
func (s State) TotalAssets() (*big.Int, error) {
	return checked(new(big.Int).Add(s.TotalDeposits, s.YieldAccrued))
}

// ExchangeRate returns principal units per share scaled by Precision.
func (s State) ExchangeRate() (*big.Int, error) {
	assets, err := s.TotalAssets()
	if err != nil {
		return nil, err
	}
	return rate(assets, s.TotalSupply)
}

// PreviewDeposit returns the shares minted for amount, zero for dust.
func (s State) PreviewDeposit(amount *big.Int) (*big.Int, error) {
	if amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	r, err := s.ExchangeRate()
	if err != nil {
		return nil, err
	}
	return ToShares(amount, r)
}

// PreviewWithdraw returns the principal returned for shares.
func (s State) PreviewWithdraw(shares *big.Int) (*big.Int, error) {
	if shares.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	r, err := s.ExchangeRate()
	if err != nil {
		return nil, err
	}
	return ToAssets(shares, r)
}

// Deposit validates amount against limits, applies the deposit to s and
// returns the minted shares. On error s is left unchanged.
func (s *State) Deposit(amount *big.Int, l Limits) (*big.Int, error) {
	switch {
	case amount.Cmp(MinAmount) < 0:
		return nil, ErrBelowMinimum
	case amount.Cmp(l.MaxDeposit) > 0:
		return nil, ErrExceedsMaximum
	}

	deposits, err := checked(new(big.Int).Add(s.TotalDeposits, amount))
	if err != nil {
		return nil, err
	}
	if deposits.Cmp(l.TotalCap) > 0 {
		return nil, ErrExceedsCap
	}

	minted, err := s.PreviewDeposit(amount)
	if err != nil {
		return nil, err
	}
	if minted.Sign() == 0 {
		return nil, ErrDepositTooSmall
	}

	supply, err := checked(new(big.Int).Add(s.TotalSupply, minted))
	if err != nil {
		return nil, err
	}

	s.TotalDeposits = deposits
	s.TotalSupply = supply

	return minted, nil
}

// Withdraw applies a withdrawal of shares by a holder owning held shares and
// returns the principal paid out. Deposits and yield are reduced in
// proportion to their part of total assets. On error s is left unchanged.
func (s *State) Withdraw(shares, held *big.Int) (*big.Int, error) {
	if shares.Cmp(MinAmount) < 0 {
		return nil, ErrBelowMinimum
	}
	if held.Cmp(shares) < 0 {
		return nil, ErrInsufficientShares
	}

	amount, err := s.PreviewWithdraw(shares)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, ErrWithdrawalTooSmall
	}

	deposits, yield, err := SplitWithdrawal(amount, s.TotalDeposits, s.YieldAccrued)
	if err != nil {
		return nil, err
	}

	s.TotalDeposits = saturatingSub(s.TotalDeposits, deposits)
	s.YieldAccrued = saturatingSub(s.YieldAccrued, yield)
	s.TotalSupply = new(big.Int).Sub(s.TotalSupply, shares)

	return amount, nil
}

// AddYield credits amount to the accrued yield.
func (s *State) AddYield(amount *big.Int) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	yield, err := checked(new(big.Int).Add(s.YieldAccrued, amount))
	if err != nil {
		return err
	}

	s.YieldAccrued = yield
	return nil
}

// ToShares converts principal to shares at rate, rounding down.
func ToShares(amount, rate *big.Int) (*big.Int, error) {
	if rate.Sign() == 0 {
		return nil, ErrDivision
	}

	v, err := checked(new(big.Int).Mul(amount, Precision))
	if err != nil {
		return nil, err
	}
	return v.Quo(v, rate), nil
}

// ToAssets converts shares to principal at rate, rounding down.
func ToAssets(shares, rate *big.Int) (*big.Int, error) {
	v, err := checked(new(big.Int).Mul(shares, rate))
	if err != nil {
		return nil, err
	}
	return v.Quo(v, Precision), nil
}

// SplitWithdrawal divides a withdrawn amount into the part taken from
// deposits and the part taken from yield. The deposit part is rounded down,
// so rounding leftovers are always charged to yield.
func SplitWithdrawal(amount, deposits, yield *big.Int) (*big.Int, *big.Int, error) {
	assets, err := checked(new(big.Int).Add(deposits, yield))
	if err != nil {
		return nil, nil, err
	}
	if assets.Sign() == 0 {
		return new(big.Int), new(big.Int), nil
	}

	fromDeposits, err := checked(new(big.Int).Mul(amount, deposits))
	if err != nil {
		return nil, nil, err
	}
	fromDeposits.Quo(fromDeposits, assets)

	return fromDeposits, new(big.Int).Sub(amount, fromDeposits), nil
}

// MinOut returns the smallest acceptable result for expected when at most
// toleranceBps basis points may be lost.
func MinOut(expected *big.Int, toleranceBps uint) *big.Int {
	if toleranceBps >= 10_000 {
		return new(big.Int)
	}

	v := new(big.Int).Mul(expected, big.NewInt(int64(10_000-toleranceBps)))
	return v.Quo(v, big.NewInt(10_000))
}

func rate(assets, supply *big.Int) (*big.Int, error) {
	if supply.Sign() == 0 {
		return new(big.Int).Set(Precision), nil
	}

	v, err := checked(new(big.Int).Mul(assets, Precision))
	if err != nil {
		return nil, err
	}
	return v.Quo(v, supply), nil
}

func checked(v *big.Int) (*big.Int, error) {
	if v.Cmp(MaxAmount) > 0 || v.Cmp(minAmount) < 0 {
		return nil, ErrOverflow
	}
	return v, nil
}

func saturatingSub(a, b *big.Int) *big.Int {
	if b.Cmp(a) >= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}
