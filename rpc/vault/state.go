package vault

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/sharevault/vault-contract/shares"
)

// ScriptInvoker is an Invoker able to run arbitrary scripts.
type ScriptInvoker interface {
	Invoker

	Run(script []byte) (*result.Invoke, error)
}

// ReadState returns the Vault counters and the share token supply read
// within a single invocation, so the values are consistent with each other.
// FAULT exceptions are mapped to shares errors.
func ReadState(inv ScriptInvoker, hash util.Uint160) (shares.State, error) {
	var st shares.State

	token, err := NewReader(inv, hash).ShareToken()
	if err != nil {
		return st, fmt.Errorf("get share token: %w", err)
	}

	b := smartcontract.NewBuilder()
	b.InvokeMethod(hash, "totalDeposits")
	b.InvokeMethod(hash, "yieldAccrued")
	b.InvokeMethod(token, "totalSupply")

	script, err := b.Script()
	if err != nil {
		return st, fmt.Errorf("build script: %w", err)
	}

	res, err := inv.Run(script)
	if err != nil {
		return st, fmt.Errorf("run script: %w", err)
	}

	if res.State != vmstate.Halt.String() {
		return st, shares.FromFault(res.FaultException)
	}

	if len(res.Stack) != 3 {
		return st, fmt.Errorf("unexpected stack size %d", len(res.Stack))
	}

	vals := make([]*big.Int, len(res.Stack))
	for i := range res.Stack {
		vals[i], err = res.Stack[i].TryInteger()
		if err != nil {
			return st, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	st.TotalDeposits, st.YieldAccrued, st.TotalSupply = vals[0], vals[1], vals[2]

	return st, nil
}

// MinSharesOut returns the share count to pass to DepositWithMinOut so that
// the deposit fails if it mints fewer shares than toleranceBps basis points
// below the current preview.
func MinSharesOut(inv ScriptInvoker, hash util.Uint160, amount *big.Int, toleranceBps uint) (*big.Int, error) {
	st, err := ReadState(inv, hash)
	if err != nil {
		return nil, err
	}

	preview, err := st.PreviewDeposit(amount)
	if err != nil {
		return nil, err
	}

	if preview.Sign() == 0 {
		return nil, shares.ErrDepositTooSmall
	}

	return shares.MinOut(preview, toleranceBps), nil
}

// MinAmountOut is like MinSharesOut but for WithdrawWithMinOut.
func MinAmountOut(inv ScriptInvoker, hash util.Uint160, sharesIn *big.Int, toleranceBps uint) (*big.Int, error) {
	st, err := ReadState(inv, hash)
	if err != nil {
		return nil, err
	}

	preview, err := st.PreviewWithdraw(sharesIn)
	if err != nil {
		return nil, err
	}

	if preview.Sign() == 0 {
		return nil, shares.ErrWithdrawalTooSmall
	}

	return shares.MinOut(preview, toleranceBps), nil
}
