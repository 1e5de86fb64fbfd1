package vault

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/sharevault/vault-contract/shares"
	"github.com/stretchr/testify/require"
)

const precision = 10_000_000

type testInv struct {
	token  util.Uint160
	res    *result.Invoke
	err    error
	script []byte
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	return &result.Invoke{State: "HALT", Stack: []stackitem.Item{stackitem.Make(t.token)}}, nil
}

func (t *testInv) Run(script []byte) (*result.Invoke, error) {
	t.script = script
	return t.res, t.err
}

func halt(vals ...int64) *result.Invoke {
	res := &result.Invoke{State: "HALT"}
	for i := range vals {
		res.Stack = append(res.Stack, stackitem.Make(vals[i]))
	}
	return res
}

func TestReadState(t *testing.T) {
	inv := &testInv{
		token: util.Uint160{1, 2, 3},
		res:   halt(1500*precision, 150*precision, 1500*precision),
	}

	st, err := ReadState(inv, util.Uint160{4, 5, 6})
	require.NoError(t, err)
	require.EqualValues(t, 1500*precision, st.TotalDeposits.Int64())
	require.EqualValues(t, 150*precision, st.YieldAccrued.Int64())
	require.EqualValues(t, 1500*precision, st.TotalSupply.Int64())

	for _, method := range []string{"totalDeposits", "yieldAccrued", "totalSupply"} {
		require.True(t, bytes.Contains(inv.script, []byte(method)), method)
	}

	rate, err := st.ExchangeRate()
	require.NoError(t, err)
	require.EqualValues(t, 11_000_000, rate.Int64())

	t.Run("fault", func(t *testing.T) {
		inv.res = &result.Invoke{
			State:          "FAULT",
			FaultException: `at instruction 61 (THROW): unhandled exception: "vault is paused"`,
		}
		_, err := ReadState(inv, util.Uint160{})
		require.ErrorIs(t, err, shares.ErrPaused)
	})

	t.Run("stack size", func(t *testing.T) {
		inv.res = halt(1, 2)
		_, err := ReadState(inv, util.Uint160{})
		require.Error(t, err)
	})

	t.Run("not an integer", func(t *testing.T) {
		inv.res = halt(1, 2, 3)
		inv.res.Stack[1] = stackitem.NewArray(nil)
		_, err := ReadState(inv, util.Uint160{})
		require.Error(t, err)
	})

	t.Run("rpc error", func(t *testing.T) {
		inv.res, inv.err = nil, errors.New("connection lost")
		_, err := ReadState(inv, util.Uint160{})
		require.Error(t, err)
	})
}

func TestMinOut(t *testing.T) {
	inv := &testInv{res: halt(1500*precision, 150*precision, 1500*precision)}

	minShares, err := MinSharesOut(inv, util.Uint160{}, big.NewInt(1100*precision), 50)
	require.NoError(t, err)
	require.EqualValues(t, 995*precision, minShares.Int64())

	minAmount, err := MinAmountOut(inv, util.Uint160{}, big.NewInt(1000*precision), 0)
	require.NoError(t, err)
	require.EqualValues(t, 1100*precision, minAmount.Int64())

	inv.res = halt(0, 0, precision)
	_, err = MinAmountOut(inv, util.Uint160{}, big.NewInt(precision), 0)
	require.ErrorIs(t, err, shares.ErrWithdrawalTooSmall)

	inv.res = halt(10*precision, 0, 1)
	_, err = MinSharesOut(inv, util.Uint160{}, shares.MinAmount, 0)
	require.ErrorIs(t, err, shares.ErrDepositTooSmall)
}

func TestDepositEvent(t *testing.T) {
	user := util.Uint160{7, 7, 7}

	item := stackitem.NewArray([]stackitem.Item{
		stackitem.Make(user),
		stackitem.Make(1100 * precision),
		stackitem.Make(1000 * precision),
		stackitem.Make(1500 * precision),
		stackitem.Make(2600 * precision),
	})

	var e DepositEvent
	require.NoError(t, e.FromStackItem(item))
	require.Equal(t, user, e.User)
	require.EqualValues(t, 1100*precision, e.Amount.Int64())
	require.EqualValues(t, 1000*precision, e.Shares.Int64())
	require.EqualValues(t, 1500*precision, e.PrevTotalDeposits.Int64())
	require.EqualValues(t, 2600*precision, e.TotalDeposits.Int64())

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{Name: "Transfer", Item: stackitem.NewArray(nil)},
				{Name: "Deposit", Item: item},
			},
		}},
	}

	events, err := DepositEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, e, *events[0])

	withdrawals, err := WithdrawEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Empty(t, withdrawals)

	_, err = DepositEventsFromApplicationLog(nil)
	require.Error(t, err)

	t.Run("invalid", func(t *testing.T) {
		require.Error(t, new(DepositEvent).FromStackItem(nil))
		require.Error(t, new(DepositEvent).FromStackItem(stackitem.NewArray(nil)))
		require.Error(t, new(DepositEvent).FromStackItem(stackitem.NewArray([]stackitem.Item{
			stackitem.Make(user),
			stackitem.Make(1),
			stackitem.Make(1),
			stackitem.Make(1),
		})))

		bad := stackitem.NewArray([]stackitem.Item{
			stackitem.Make([]byte{1, 2, 3}),
			stackitem.Make(1),
			stackitem.Make(1),
			stackitem.Make(1),
			stackitem.Make(1),
		})
		require.Error(t, new(DepositEvent).FromStackItem(bad))

		log.Executions[0].Events[1].Item = bad
		_, err := DepositEventsFromApplicationLog(log)
		require.Error(t, err)
	})
}

func TestAdminTransferredEvent(t *testing.T) {
	from, to := util.Uint160{1}, util.Uint160{2}

	var e AdminTransferredEvent
	require.NoError(t, e.FromStackItem(stackitem.NewArray([]stackitem.Item{
		stackitem.Make(from),
		stackitem.Make(to),
	})))
	require.Equal(t, from, e.OldAdmin)
	require.Equal(t, to, e.NewAdmin)
}
