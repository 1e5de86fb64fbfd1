// Package fakeledger stands in for the share token in Vault tests. It mints
// and burns for anyone and lets tests set balances and supply directly, which
// makes exchange rates reachable that real deposits never produce.
package fakeledger

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	supplyKey     = "supply"
	balancePrefix = 'b'
)

func TotalSupply() int {
	return getInt(storage.GetReadOnlyContext(), supplyKey)
}

func BalanceOf(holder interop.Hash160) int {
	return getInt(storage.GetReadOnlyContext(), append([]byte{balancePrefix}, holder...))
}

func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()
	key := append([]byte{balancePrefix}, to...)
	storage.Put(ctx, key, getInt(ctx, key)+amount)
	storage.Put(ctx, supplyKey, getInt(ctx, supplyKey)+amount)
}

func Burn(from interop.Hash160, amount int) {
	ctx := storage.GetContext()
	key := append([]byte{balancePrefix}, from...)
	storage.Put(ctx, key, getInt(ctx, key)-amount)
	storage.Put(ctx, supplyKey, getInt(ctx, supplyKey)-amount)
}

// SetBalance overwrites the holder balance without touching the supply.
func SetBalance(holder interop.Hash160, amount int) {
	storage.Put(storage.GetContext(), append([]byte{balancePrefix}, holder...), amount)
}

// SetTotalSupply overwrites the supply without touching balances.
func SetTotalSupply(amount int) {
	storage.Put(storage.GetContext(), supplyKey, amount)
}

func getInt(ctx storage.Context, key any) int {
	val := storage.Get(ctx, key)
	if val == nil {
		return 0
	}
	return val.(int)
}
