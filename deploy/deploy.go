package deploy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the Vault deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by
	// its address. It returns error with 'Unknown contract' substring if
	// requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)

	// GetApplicationLog returns execution result of the transaction. It is
	// used to await deployment transactions.
	GetApplicationLog(hash util.Uint256, trig *trigger.Type) (*result.ApplicationLog, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// Prm groups all parameters of the Vault deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy contracts to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It is the sender of deployment transactions, so contract addresses
	// depend on it.
	LocalAccount *wallet.Account

	// Administrator of both contracts. Local account is used if zero.
	Admin util.Uint160

	// NEP-17 principal asset the Vault accepts.
	Asset util.Uint160

	ShareToken CommonDeployPrm
	Vault      CommonDeployPrm
}

// Result contains addresses of the deployed contracts.
type Result struct {
	ShareToken util.Uint160
	Vault      util.Uint160
}

var errMissingContract = errors.New("contract is missing")

// Deploy deploys the share token and the Vault bound to each other.
//
// Both addresses are derived from the local account and the contract
// artifacts before anything is sent, so the share token is deployed first
// with the future Vault as its minter and the Vault is deployed with the
// share token as its ledger. Contracts already present at the derived
// addresses are left untouched, which makes Deploy safe to repeat after a
// partial failure.
func Deploy(ctx context.Context, prm Prm) (Result, error) {
	var res Result

	if prm.Asset.Equals(util.Uint160{}) {
		return res, errors.New("principal asset is not set")
	}

	admin := prm.Admin
	if admin.Equals(util.Uint160{}) {
		admin = prm.LocalAccount.ScriptHash()
	}

	res = PredictHashes(prm.LocalAccount.ScriptHash(), prm.ShareToken, prm.Vault)

	localActor, err := actor.NewTuned(prm.Blockchain, []actor.SignerAccount{{
		Signer: transaction.Signer{
			Account: prm.LocalAccount.ScriptHash(),
			Scopes:  transaction.CalledByEntry,
		},
		Account: prm.LocalAccount,
	}}, actor.Options{
		CheckerModifier: runtimeTransactionModifier(func() uint32 {
			h, err := prm.Blockchain.GetBlockCount()
			if err != nil || h == 0 {
				return 0
			}
			return h - 1
		}),
	})
	if err != nil {
		return res, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	deployer := management.New(localActor)

	for _, c := range []struct {
		name    string
		address util.Uint160
		prm     CommonDeployPrm
		data    []any
	}{
		{
			name:    "share token",
			address: res.ShareToken,
			prm:     prm.ShareToken,
			data:    []any{admin, res.Vault},
		},
		{
			name:    "vault",
			address: res.Vault,
			prm:     prm.Vault,
			data:    []any{admin, prm.Asset, res.ShareToken},
		},
	} {
		if err = ctx.Err(); err != nil {
			return res, err
		}

		l := prm.Logger.With(zap.String("contract", c.name), zap.Stringer("address", c.address))

		err = checkContract(prm.Blockchain, c.address)
		if err == nil {
			l.Info("contract is already deployed, skip")
			continue
		}
		if !errors.Is(err, errMissingContract) {
			return res, fmt.Errorf("check %s contract presence: %w", c.name, err)
		}

		l.Info("deploying contract...")

		aer, err := localActor.Wait(deployer.Deploy(&c.prm.NEF, &c.prm.Manifest, c.data))
		if err != nil {
			return res, fmt.Errorf("deploy %s contract: %w", c.name, err)
		}

		if aer.VMState != vmstate.Halt {
			return res, fmt.Errorf("deploy %s contract: %s state: %s", c.name, aer.VMState, aer.FaultException)
		}

		l.Info("contract successfully deployed", zap.Stringer("tx", aer.Container))
	}

	return res, nil
}

// PredictHashes returns addresses the contracts get when deployed by sender.
func PredictHashes(sender util.Uint160, shareToken, vault CommonDeployPrm) Result {
	return Result{
		ShareToken: state.CreateContractHash(sender, shareToken.NEF.Checksum, shareToken.Manifest.Name),
		Vault:      state.CreateContractHash(sender, vault.NEF.Checksum, vault.Manifest.Name),
	}
}

func checkContract(b Blockchain, address util.Uint160) error {
	st, err := b.GetContractStateByHash(address)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unknown contract") {
			return errMissingContract
		}
		return err
	}

	if st == nil {
		return errMissingContract
	}

	return nil
}

// returns actor.TransactionCheckerModifier which checks that invocation
// finished with 'HALT' state and, if so, sets transaction's nonce and
// ValidUntilBlock to 100*N and 100*(N+1) correspondingly, where
// 100*N <= current height < 100*(N+1).
func runtimeTransactionModifier(getBlockchainHeight func() uint32) actor.TransactionCheckerModifier {
	return func(r *result.Invoke, tx *transaction.Transaction) error {
		err := actor.DefaultCheckerModifier(r, tx)
		if err != nil {
			return err
		}

		curHeight := getBlockchainHeight()
		const span = 100
		n := curHeight / span

		tx.Nonce = n * span

		if math.MaxUint32-span > tx.Nonce {
			tx.ValidUntilBlock = tx.Nonce + span
		} else {
			tx.ValidUntilBlock = math.MaxUint32
		}

		return nil
	}
}
