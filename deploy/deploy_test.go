package deploy

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/sharevault/vault-contract/contracts"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const contractsDir = "../contracts"

func TestRuntimeTransactionModifier(t *testing.T) {
	t.Run("invalid invocation result state", func(t *testing.T) {
		var res result.Invoke
		res.State = "FAULT" // any non-HALT

		err := runtimeTransactionModifier(func() uint32 { return 0 })(&res, new(transaction.Transaction))
		require.Error(t, err)
	})

	var validRes result.Invoke
	validRes.State = "HALT"

	for _, tc := range []struct {
		curHeight     uint32
		expectedNonce uint32
		expectedVUB   uint32
	}{
		{curHeight: 0, expectedNonce: 0, expectedVUB: 100},
		{curHeight: 1, expectedNonce: 0, expectedVUB: 100},
		{curHeight: 99, expectedNonce: 0, expectedVUB: 100},
		{curHeight: 100, expectedNonce: 100, expectedVUB: 200},
		{curHeight: 199, expectedNonce: 100, expectedVUB: 200},
		{curHeight: 200, expectedNonce: 200, expectedVUB: 300},
		{curHeight: math.MaxUint32 - 50, expectedNonce: 100 * (math.MaxUint32 / 100), expectedVUB: math.MaxUint32},
	} {
		m := runtimeTransactionModifier(func() uint32 { return tc.curHeight })

		var tx transaction.Transaction

		err := m(&validRes, &tx)
		require.NoError(t, err, tc)
		require.EqualValues(t, tc.expectedNonce, tx.Nonce, tc)
		require.EqualValues(t, tc.expectedVUB, tx.ValidUntilBlock, tc)
	}
}

func compiledContracts(t *testing.T) (CommonDeployPrm, CommonDeployPrm) {
	c, err := contracts.CompileAll(contractsDir)
	require.NoError(t, err)
	require.Len(t, c, 2)

	return CommonDeployPrm{NEF: c[0].NEF, Manifest: c[0].Manifest},
		CommonDeployPrm{NEF: c[1].NEF, Manifest: c[1].Manifest}
}

func TestPredictHashes(t *testing.T) {
	token, vault := compiledContracts(t)

	bc, acc := chain.NewSingle(t)
	e := neotest.NewExecutor(t, bc, acc, acc)
	sender := e.Validator.ScriptHash()

	res := PredictHashes(sender, token, vault)
	require.NotEqual(t, res.ShareToken, res.Vault)

	for _, tc := range []struct {
		name     string
		prm      CommonDeployPrm
		expected util.Uint160
	}{
		{name: "sharetoken", prm: token, expected: res.ShareToken},
		{name: "vault", prm: vault, expected: res.Vault},
	} {
		nefFile, manif := tc.prm.NEF, tc.prm.Manifest

		// Deployment checks the Deploy notification against the hash.
		e.DeployContract(t, &neotest.Contract{
			Hash:     tc.expected,
			NEF:      &nefFile,
			Manifest: &manif,
		}, nil)

		require.NotNil(t, bc.GetContractState(tc.expected), tc.name)
	}

	other := PredictHashes(util.Uint160{3, 2, 1}, token, vault)
	require.NotEqual(t, res, other)
}

type deployBlockchain struct {
	actor.RPCActor

	states map[util.Uint160]*state.Contract
	err    error
}

func (d *deployBlockchain) GetVersion() (*result.Version, error) {
	return &result.Version{
		Protocol: result.Protocol{
			Network:              netmode.UnitTestNet,
			MillisecondsPerBlock: 1000,
		},
	}, nil
}

func (d *deployBlockchain) GetBlockCount() (uint32, error) {
	return 1, nil
}

// GetContractStateByHash implements [Blockchain] interface.
func (d *deployBlockchain) GetContractStateByHash(h util.Uint160) (*state.Contract, error) {
	if d.err != nil {
		return nil, d.err
	}
	st, ok := d.states[h]
	if !ok {
		return nil, errors.New("Unknown contract")
	}
	return st, nil
}

// GetApplicationLog implements [Blockchain] interface.
func (d *deployBlockchain) GetApplicationLog(util.Uint256, *trigger.Type) (*result.ApplicationLog, error) {
	return nil, errors.New("not found")
}

func TestDeploy(t *testing.T) {
	token, vault := compiledContracts(t)

	acc, err := wallet.NewAccount()
	require.NoError(t, err)

	expected := PredictHashes(acc.ScriptHash(), token, vault)

	newPrm := func(b Blockchain) Prm {
		return Prm{
			Logger:       zaptest.NewLogger(t),
			Blockchain:   b,
			LocalAccount: acc,
			Asset:        util.Uint160{0xAA},
			ShareToken:   token,
			Vault:        vault,
		}
	}

	t.Run("already deployed", func(t *testing.T) {
		b := &deployBlockchain{states: map[util.Uint160]*state.Contract{
			expected.ShareToken: {},
			expected.Vault:      {},
		}}

		res, err := Deploy(context.Background(), newPrm(b))
		require.NoError(t, err)
		require.Equal(t, expected, res)
	})

	t.Run("missing asset", func(t *testing.T) {
		prm := newPrm(&deployBlockchain{})
		prm.Asset = util.Uint160{}

		_, err := Deploy(context.Background(), prm)
		require.Error(t, err)
	})

	t.Run("state error", func(t *testing.T) {
		b := &deployBlockchain{err: errors.New("connection refused")}

		_, err := Deploy(context.Background(), newPrm(b))
		require.ErrorContains(t, err, "connection refused")
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Deploy(ctx, newPrm(&deployBlockchain{}))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCheckContract(t *testing.T) {
	b := &deployBlockchain{states: map[util.Uint160]*state.Contract{
		{1}: {},
		{2}: nil,
	}}

	require.NoError(t, checkContract(b, util.Uint160{1}))
	require.ErrorIs(t, checkContract(b, util.Uint160{2}), errMissingContract)
	require.ErrorIs(t, checkContract(b, util.Uint160{3}), errMissingContract)

	b.err = errors.New("timeout")
	require.EqualError(t, checkContract(b, util.Uint160{1}), "timeout")
}
