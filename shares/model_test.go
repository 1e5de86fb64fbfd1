package shares

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Precision)
}

func TestExchangeRate(t *testing.T) {
	s := NewState()

	r, err := s.ExchangeRate()
	require.NoError(t, err)
	require.EqualValues(t, 10_000_000, r.Int64())

	s.TotalDeposits = units(1500)
	s.YieldAccrued = units(150)
	s.TotalSupply = units(1500)

	r, err = s.ExchangeRate()
	require.NoError(t, err)
	require.EqualValues(t, 11_000_000, r.Int64())
}

func TestDeposit(t *testing.T) {
	t.Run("first deposit is 1:1", func(t *testing.T) {
		s := NewState()

		minted, err := s.Deposit(units(1000), DefaultLimits())
		require.NoError(t, err)
		require.Equal(t, units(1000), minted)
		require.Equal(t, units(1000), s.TotalDeposits)
		require.Equal(t, units(1000), s.TotalSupply)
	})

	t.Run("two depositors", func(t *testing.T) {
		s := NewState()

		a, err := s.Deposit(units(1000), DefaultLimits())
		require.NoError(t, err)
		b, err := s.Deposit(units(500), DefaultLimits())
		require.NoError(t, err)

		require.Equal(t, units(1000), a)
		require.Equal(t, units(500), b)
		require.Equal(t, units(1500), s.TotalSupply)
	})

	t.Run("after yield", func(t *testing.T) {
		s := NewState()

		_, err := s.Deposit(units(1000), DefaultLimits())
		require.NoError(t, err)
		_, err = s.Deposit(units(500), DefaultLimits())
		require.NoError(t, err)
		require.NoError(t, s.AddYield(units(150)))

		minted, err := s.Deposit(units(1100), DefaultLimits())
		require.NoError(t, err)
		require.Equal(t, units(1000), minted)
	})

	t.Run("limits", func(t *testing.T) {
		s := NewState()
		l := DefaultLimits()

		_, err := s.Deposit(big.NewInt(999_999), l)
		require.ErrorIs(t, err, ErrBelowMinimum)

		_, err = s.Deposit(new(big.Int).Add(l.MaxDeposit, big.NewInt(1)), l)
		require.ErrorIs(t, err, ErrExceedsMaximum)

		l.TotalCap = units(10)
		_, err = s.Deposit(units(11), l)
		require.ErrorIs(t, err, ErrExceedsCap)

		_, err = s.Deposit(units(10), l)
		require.NoError(t, err)
	})

	t.Run("dust", func(t *testing.T) {
		s := NewState()

		_, err := s.Deposit(MinAmount, DefaultLimits())
		require.NoError(t, err)
		require.NoError(t, s.AddYield(units(1_000_000)))

		before := s
		_, err = s.Deposit(MinAmount, DefaultLimits())
		require.ErrorIs(t, err, ErrDepositTooSmall)
		require.Equal(t, before, s)
	})

	t.Run("zero rate", func(t *testing.T) {
		s := NewState()
		s.TotalSupply = units(1)

		_, err := s.Deposit(units(1), DefaultLimits())
		require.ErrorIs(t, err, ErrDivision)
	})
}

func TestWithdraw(t *testing.T) {
	t.Run("more than held", func(t *testing.T) {
		s := NewState()

		minted, err := s.Deposit(units(1000), DefaultLimits())
		require.NoError(t, err)

		before := s
		_, err = s.Withdraw(units(1001), minted)
		require.ErrorIs(t, err, ErrInsufficientShares)
		require.Equal(t, before, s)
	})

	t.Run("below minimum", func(t *testing.T) {
		s := NewState()

		_, err := s.Withdraw(big.NewInt(999_999), units(1))
		require.ErrorIs(t, err, ErrBelowMinimum)
	})

	t.Run("too small", func(t *testing.T) {
		s := NewState()
		s.TotalDeposits = big.NewInt(1)
		s.TotalSupply = units(1_000_000)

		_, err := s.Withdraw(MinAmount, MinAmount)
		require.ErrorIs(t, err, ErrWithdrawalTooSmall)
	})

	t.Run("proportional reduction", func(t *testing.T) {
		s := NewState()

		minted, err := s.Deposit(units(1000), DefaultLimits())
		require.NoError(t, err)
		require.NoError(t, s.AddYield(units(100)))

		half := new(big.Int).Quo(minted, big.NewInt(2))
		amount, err := s.Withdraw(half, minted)
		require.NoError(t, err)
		require.Equal(t, units(550), amount)
		require.Equal(t, units(500), s.TotalDeposits)
		require.Equal(t, units(50), s.YieldAccrued)
		require.Equal(t, half, s.TotalSupply)
	})
}

func TestRoundTrip(t *testing.T) {
	for _, yield := range []int64{0, 1, 7, 333_333_333, 12_345_678_901} {
		for _, amount := range []int64{1_000_000, 1_000_001, 3_333_333, 99_999_999, 1_234_567_890_123} {
			s := NewState()

			_, err := s.Deposit(units(777), DefaultLimits())
			require.NoError(t, err)
			if yield > 0 {
				require.NoError(t, s.AddYield(big.NewInt(yield)))
			}

			minted, err := s.Deposit(big.NewInt(amount), DefaultLimits())
			if err != nil {
				require.ErrorIs(t, err, ErrDepositTooSmall)
				continue
			}

			if minted.Cmp(MinAmount) < 0 {
				continue
			}

			returned, err := s.Withdraw(minted, minted)
			require.NoError(t, err)
			require.True(t, returned.Cmp(big.NewInt(amount)) <= 0,
				"yield %d, amount %d: returned %s", yield, amount, returned)
		}
	}
}

func TestSplitWithdrawal(t *testing.T) {
	deposits, yield, err := SplitWithdrawal(big.NewInt(10), big.NewInt(3), big.NewInt(4))
	require.NoError(t, err)
	require.EqualValues(t, 4, deposits.Int64())
	require.EqualValues(t, 6, yield.Int64())

	deposits, yield, err = SplitWithdrawal(big.NewInt(10), new(big.Int), new(big.Int))
	require.NoError(t, err)
	require.Zero(t, deposits.Sign())
	require.Zero(t, yield.Sign())
}

func TestOverflow(t *testing.T) {
	_, err := ToShares(MaxAmount, big.NewInt(1))
	require.ErrorIs(t, err, ErrOverflow)

	_, err = ToShares(big.NewInt(1), new(big.Int))
	require.ErrorIs(t, err, ErrDivision)

	s := NewState()
	s.YieldAccrued = new(big.Int).Set(MaxAmount)
	require.ErrorIs(t, s.AddYield(big.NewInt(1)), ErrOverflow)
	require.ErrorIs(t, s.AddYield(new(big.Int)), ErrInvalidAmount)
}

func TestMinOut(t *testing.T) {
	require.EqualValues(t, 995, MinOut(big.NewInt(1000), 50).Int64())
	require.EqualValues(t, 1000, MinOut(big.NewInt(1000), 0).Int64())
	require.Zero(t, MinOut(big.NewInt(1000), 10_000).Sign())
}
