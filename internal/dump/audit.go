package dump

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/sharevault/vault-contract/shares"
)

// Storage layout of the contracts, must match the contract code.
const (
	tokenAdminKey  = "admin"
	tokenMinterKey = "minter"
	tokenSupplyKey = "supply"
	tokenBalance   = 'b'
	tokenAllowance = 'l'

	vaultAdminKey    = "admin"
	vaultAssetKey    = "asset"
	vaultTokenKey    = "shareToken"
	vaultDepositsKey = "totalDeposits"
	vaultYieldKey    = "yieldAccrued"
	vaultPausedKey   = "paused"
	vaultMaxDeposit  = "maxDeposit"
	vaultTotalCapKey = "totalCap"
	vaultLockKey     = "lock"
	vaultUserDeposit = 'u'

	accountKeyLen   = 1 + util.Uint160Size
	allowanceKeyLen = 1 + 2*util.Uint160Size
)

// Audit failures. Report is still returned along with them.
var (
	ErrSupplyMismatch = errors.New("share balances do not sum up to total supply")
	ErrLockHeld       = errors.New("reentrancy lock is held")
	ErrLedgerMismatch = errors.New("vault is bound to another share token")
	ErrMinterMismatch = errors.New("share token minter is not the vault")
)

// Report is the decoded state of the contract pair.
type Report struct {
	State shares.State

	Admin      util.Uint160
	Asset      util.Uint160
	ShareToken util.Uint160
	Minter     util.Uint160

	Paused bool
	Locked bool
	Limits shares.Limits

	Holders        int
	Allowances     int
	BalanceSum     *big.Int
	UserDepositSum *big.Int
}

// Audit decodes storage of both contracts from the dump and checks that
// share balances sum up to the total supply, the lock is released and the
// contracts point to each other. The first violated condition is returned
// as an error along with the report.
func Audit(r *Reader) (*Report, error) {
	var (
		rep = &Report{
			State:          shares.NewState(),
			Limits:         shares.DefaultLimits(),
			BalanceSum:     new(big.Int),
			UserDepositSum: new(big.Int),
		}
		hashes = make(map[string]util.Uint160)
		err    error
	)

	r.IterateContractStates(func(name string, st state.Contract) {
		hashes[name] = st.Hash
	})

	r.IterateContractStorage(ShareTokenName, func(k, v []byte) {
		if err != nil {
			return
		}

		switch {
		case string(k) == tokenSupplyKey:
			rep.State.TotalSupply = bigint.FromBytes(v)
		case string(k) == tokenMinterKey:
			rep.Minter, err = decodeHash(k, v)
		case string(k) == tokenAdminKey:
		case len(k) == accountKeyLen && k[0] == tokenBalance:
			rep.Holders++
			rep.BalanceSum.Add(rep.BalanceSum, bigint.FromBytes(v))
		case len(k) == allowanceKeyLen && k[0] == tokenAllowance:
			rep.Allowances++
		default:
			err = fmt.Errorf("unexpected share token storage key %x", k)
		}
	})
	if err != nil {
		return nil, err
	}

	r.IterateContractStorage(VaultName, func(k, v []byte) {
		if err != nil {
			return
		}

		switch string(k) {
		case vaultAdminKey:
			rep.Admin, err = decodeHash(k, v)
		case vaultAssetKey:
			rep.Asset, err = decodeHash(k, v)
		case vaultTokenKey:
			rep.ShareToken, err = decodeHash(k, v)
		case vaultDepositsKey:
			rep.State.TotalDeposits = bigint.FromBytes(v)
		case vaultYieldKey:
			rep.State.YieldAccrued = bigint.FromBytes(v)
		case vaultPausedKey:
			rep.Paused = true
		case vaultLockKey:
			rep.Locked = true
		case vaultMaxDeposit:
			rep.Limits.MaxDeposit = bigint.FromBytes(v)
		case vaultTotalCapKey:
			rep.Limits.TotalCap = bigint.FromBytes(v)
		default:
			if len(k) == accountKeyLen && k[0] == vaultUserDeposit {
				rep.UserDepositSum.Add(rep.UserDepositSum, bigint.FromBytes(v))
				return
			}
			err = fmt.Errorf("unexpected vault storage key %x", k)
		}
	})
	if err != nil {
		return nil, err
	}

	tokenRef, tokenOK := hashes[ShareTokenName]
	vaultRef, vaultOK := hashes[VaultName]

	switch {
	case rep.BalanceSum.Cmp(rep.State.TotalSupply) != 0:
		return rep, fmt.Errorf("%w: %s != %s", ErrSupplyMismatch, rep.BalanceSum, rep.State.TotalSupply)
	case rep.Locked:
		return rep, ErrLockHeld
	case tokenOK && !rep.ShareToken.Equals(tokenRef):
		return rep, ErrLedgerMismatch
	case vaultOK && !rep.Minter.Equals(vaultRef):
		return rep, ErrMinterMismatch
	}

	return rep, nil
}

func decodeHash(k, v []byte) (util.Uint160, error) {
	u, err := util.Uint160DecodeBytesBE(v)
	if err != nil {
		return u, fmt.Errorf("decode %q: %w", k, err)
	}
	return u, nil
}
