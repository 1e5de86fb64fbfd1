package sharetoken

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	res *result.Invoke

	method string
	params []any
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	t.method, t.params = operation, params
	return t.res, nil
}

func TestReader(t *testing.T) {
	owner, spender := util.Uint160{1}, util.Uint160{2}

	inv := &testInv{res: &result.Invoke{State: "HALT", Stack: []stackitem.Item{stackitem.Make(42)}}}
	r := NewReader(inv, util.Uint160{9})

	v, err := r.Allowance(owner, spender)
	require.NoError(t, err)
	require.EqualValues(t, 42, v.Int64())
	require.Equal(t, "allowance", inv.method)
	require.Equal(t, []any{owner, spender}, inv.params)

	inv.res = &result.Invoke{State: "HALT", Stack: []stackitem.Item{stackitem.Make("VSHARE")}}
	s, err := r.Symbol()
	require.NoError(t, err)
	require.Equal(t, "VSHARE", s)

	inv.res = &result.Invoke{State: "FAULT", FaultException: "not initialized"}
	_, err = r.Minter()
	require.ErrorContains(t, err, "not initialized")
}

func TestEvents(t *testing.T) {
	from, to := util.Uint160{1, 1}, util.Uint160{2, 2}

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{Name: "Mint", Item: stackitem.NewArray([]stackitem.Item{
					stackitem.Make(to), stackitem.Make(10), stackitem.Make(30),
				})},
				{Name: "Transfer", Item: stackitem.NewArray([]stackitem.Item{
					stackitem.Make(from), stackitem.Make(to), stackitem.Make(5),
				})},
				{Name: "Approve", Item: stackitem.NewArray([]stackitem.Item{
					stackitem.Make(from), stackitem.Make(to), stackitem.Make(100), stackitem.Make(0),
				})},
			},
		}},
	}

	mints, err := MintEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, mints, 1)
	require.Equal(t, to, mints[0].To)
	require.EqualValues(t, 10, mints[0].Amount.Int64())
	require.EqualValues(t, 30, mints[0].Balance.Int64())

	transfers, err := TransferEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	require.Equal(t, from, transfers[0].From)
	require.Equal(t, to, transfers[0].To)

	approvals, err := ApproveEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	require.EqualValues(t, 100, approvals[0].Amount.Int64())
	require.Zero(t, approvals[0].Expiration.Sign())

	burns, err := BurnEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Empty(t, burns)

	require.Error(t, new(ApproveEvent).FromStackItem(stackitem.NewArray([]stackitem.Item{stackitem.Make(from)})))
}
