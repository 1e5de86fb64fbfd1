package dump

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/sharevault/vault-contract/shares"
	"github.com/stretchr/testify/require"
)

const precision = 10_000_000

var (
	tokenHash = util.Uint160{1}
	vaultHash = util.Uint160{2}
	admin     = util.Uint160{3}
	asset     = util.Uint160{4}
	alice     = util.Uint160{5}
	bob       = util.Uint160{6}
)

func contractState(t *testing.T, id int32, h util.Uint160, name string) state.Contract {
	f, err := nef.NewFile([]byte{0x40})
	require.NoError(t, err)

	return state.Contract{
		ContractBase: state.ContractBase{
			ID:       id,
			Hash:     h,
			NEF:      *f,
			Manifest: *manifest.NewManifest(name),
		},
	}
}

func intBytes(v int64) []byte {
	return bigint.ToBytes(big.NewInt(v))
}

func accountKey(prefix byte, h util.Uint160) []byte {
	return append([]byte{prefix}, h.BytesBE()...)
}

type item struct{ k, v []byte }

func tokenStorage(supply int64) []item {
	return []item{
		{[]byte("admin"), admin.BytesBE()},
		{[]byte("minter"), vaultHash.BytesBE()},
		{[]byte("supply"), intBytes(supply)},
		{accountKey('b', alice), intBytes(1000 * precision)},
		{accountKey('b', bob), intBytes(500 * precision)},
		{append(accountKey('l', alice), bob.BytesBE()...), intBytes(precision)},
	}
}

func vaultStorage() []item {
	return []item{
		{[]byte("admin"), admin.BytesBE()},
		{[]byte("asset"), asset.BytesBE()},
		{[]byte("shareToken"), tokenHash.BytesBE()},
		{[]byte("totalDeposits"), intBytes(1500 * precision)},
		{[]byte("yieldAccrued"), intBytes(150 * precision)},
		{[]byte("maxDeposit"), intBytes(1_000_000 * precision)},
		{accountKey('u', alice), intBytes(1000 * precision)},
		{accountKey('u', bob), intBytes(500 * precision)},
	}
}

func iterateItems(items map[util.Uint160][]item) StorageIterator {
	return func(h util.Uint160, f func(k, v []byte) error) error {
		for _, it := range items[h] {
			if err := f(it.k, it.v); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeDump(t *testing.T, dir string, id ID, token, vault []item) {
	require.NoError(t, Write(dir, id,
		contractState(t, 1, tokenHash, "VaultShareToken"),
		contractState(t, 2, vaultHash, "ShareVault"),
		iterateItems(map[util.Uint160][]item{tokenHash: token, vaultHash: vault}),
	))
}

func TestCreator(t *testing.T) {
	token := contractState(t, 1, tokenHash, "VaultShareToken")
	vault := contractState(t, 2, vaultHash, "ShareVault")

	t.Run("unknown contract", func(t *testing.T) {
		c, err := NewCreator(t.TempDir(), ID{Label: "test", Block: 1})
		require.NoError(t, err)
		defer c.Close()

		_, err = c.AddContract("nns", token)
		require.ErrorIs(t, err, ErrUnknownContract)
	})

	t.Run("duplicate", func(t *testing.T) {
		c, err := NewCreator(t.TempDir(), ID{Label: "test", Block: 1})
		require.NoError(t, err)
		defer c.Close()

		_, err = c.AddContract(VaultName, vault)
		require.NoError(t, err)
		_, err = c.AddContract(VaultName, vault)
		require.ErrorIs(t, err, ErrDuplicateContract)
	})

	t.Run("incomplete", func(t *testing.T) {
		c, err := NewCreator(t.TempDir(), ID{Label: "test", Block: 1})
		require.NoError(t, err)
		defer c.Close()

		_, err = c.AddContract(VaultName, vault)
		require.NoError(t, err)
		require.ErrorIs(t, c.Flush(), ErrIncompleteDump)
	})

	t.Run("flushed", func(t *testing.T) {
		c, err := NewCreator(t.TempDir(), ID{Label: "test", Block: 1})
		require.NoError(t, err)
		defer c.Close()

		w, err := c.AddContract(ShareTokenName, token)
		require.NoError(t, err)
		require.NoError(t, w.Write([]byte("supply"), intBytes(1)))
		require.Equal(t, 1, w.Items())

		_, err = c.AddContract(VaultName, vault)
		require.NoError(t, err)
		require.NoError(t, c.Flush())

		require.ErrorIs(t, c.Flush(), ErrFlushed)
		require.ErrorIs(t, w.Write([]byte("supply"), intBytes(2)), ErrFlushed)
		_, err = c.AddContract(VaultName, vault)
		require.ErrorIs(t, err, ErrFlushed)
	})

	t.Run("iteration error", func(t *testing.T) {
		dir := t.TempDir()
		id := ID{Label: "test", Block: 1}
		failure := errors.New("state service is down")

		err := Write(dir, id, token, vault, func(h util.Uint160, _ func(k, v []byte) error) error {
			if h.Equals(vaultHash) {
				return failure
			}
			return nil
		})
		require.ErrorIs(t, err, failure)
	})
}

func TestCreateAndRead(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "testnet", Block: 1234}

	writeDump(t, dir, id, tokenStorage(1500*precision), vaultStorage())

	_, err := NewCreator(dir, id)
	require.Error(t, err, "dump must not be overwritten")

	r, err := Open(dir, id)
	require.NoError(t, err)

	var names []string
	r.IterateContractStates(func(name string, st state.Contract) {
		names = append(names, name)
	})
	require.Equal(t, []string{ShareTokenName, VaultName}, names)

	var n int
	r.IterateContractStorage(VaultName, func(key, value []byte) { n++ })
	require.Equal(t, len(vaultStorage()), n)

	var ids []ID
	require.NoError(t, IterateDumps(dir, func(id ID, _ *Reader) {
		ids = append(ids, id)
	}))
	require.Equal(t, []ID{id}, ids)
}

func TestAudit(t *testing.T) {
	read := func(t *testing.T, token, vault []item) *Reader {
		dir := t.TempDir()
		id := ID{Label: "test", Block: 1}
		writeDump(t, dir, id, token, vault)

		r, err := Open(dir, id)
		require.NoError(t, err)
		return r
	}

	rep, err := Audit(read(t, tokenStorage(1500*precision), vaultStorage()))
	require.NoError(t, err)

	require.Equal(t, admin, rep.Admin)
	require.Equal(t, asset, rep.Asset)
	require.Equal(t, tokenHash, rep.ShareToken)
	require.Equal(t, vaultHash, rep.Minter)
	require.Equal(t, 2, rep.Holders)
	require.Equal(t, 1, rep.Allowances)
	require.False(t, rep.Paused)
	require.False(t, rep.Locked)
	require.EqualValues(t, 1500*precision, rep.UserDepositSum.Int64())
	require.Zero(t, rep.Limits.TotalCap.Cmp(shares.MaxAmount))
	require.EqualValues(t, 1_000_000*precision, rep.Limits.MaxDeposit.Int64())

	rate, err := rep.State.ExchangeRate()
	require.NoError(t, err)
	require.EqualValues(t, 11_000_000, rate.Int64())

	t.Run("supply mismatch", func(t *testing.T) {
		rep, err := Audit(read(t, tokenStorage(1500*precision+1), vaultStorage()))
		require.ErrorIs(t, err, ErrSupplyMismatch)
		require.NotNil(t, rep)
	})

	t.Run("lock held", func(t *testing.T) {
		vault := append(vaultStorage(), item{[]byte("lock"), []byte{1}})
		_, err := Audit(read(t, tokenStorage(1500*precision), vault))
		require.ErrorIs(t, err, ErrLockHeld)
	})

	t.Run("foreign ledger", func(t *testing.T) {
		vault := vaultStorage()
		vault[2].v = util.Uint160{9}.BytesBE()
		_, err := Audit(read(t, tokenStorage(1500*precision), vault))
		require.ErrorIs(t, err, ErrLedgerMismatch)
	})

	t.Run("foreign minter", func(t *testing.T) {
		token := tokenStorage(1500 * precision)
		token[1].v = util.Uint160{9}.BytesBE()
		_, err := Audit(read(t, token, vaultStorage()))
		require.ErrorIs(t, err, ErrMinterMismatch)
	})

	t.Run("unknown key", func(t *testing.T) {
		vault := append(vaultStorage(), item{[]byte("garbage"), []byte{1}})
		_, err := Audit(read(t, tokenStorage(1500*precision), vault))
		require.Error(t, err)
	})
}
