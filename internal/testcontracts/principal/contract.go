// Package principal is a NEP-17 token used as the Vault principal asset in
// tests. Anyone can mint it, and a transfer can be armed to call back into
// another contract before the balances move.
package principal

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Reentry is a call made with the transfer sender and amount as arguments.
type Reentry struct {
	Target interop.Hash160
	Method string
	User   interop.Hash160
	Amount int
}

// Query is a read-only call without arguments whose result is recorded.
type Query struct {
	Target interop.Hash160
	Method string
}

const (
	supplyKey  = "supply"
	reentryKey = "reentry"
	queryKey   = "query"
	resultKey  = "result"

	balancePrefix = 'b'
)

func Symbol() string {
	return "PRIN"
}

func Decimals() int {
	return 7
}

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

	var from interop.Hash160
	runtime.Notify("Transfer", from, to, amount)
}

func Transfer(from, to interop.Hash160, amount int, data any) bool {
	if amount < 0 {
		panic("negative amount")
	}
	if !runtime.CheckWitness(from) {
		return false
	}

	ctx := storage.GetContext()
	fireHooks(ctx)

	fromKey := append([]byte{balancePrefix}, from...)
	fromBalance := getInt(ctx, fromKey)
	if fromBalance < amount {
		return false
	}
	storage.Put(ctx, fromKey, fromBalance-amount)

	toKey := append([]byte{balancePrefix}, to...)
	storage.Put(ctx, toKey, getInt(ctx, toKey)+amount)

	runtime.Notify("Transfer", from, to, amount)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}

	return true
}

// ArmReentry makes the next transfer call target.method(user, amount).
func ArmReentry(target interop.Hash160, method string, user interop.Hash160, amount int) {
	storage.Put(storage.GetContext(), reentryKey, std.Serialize(Reentry{
		Target: target,
		Method: method,
		User:   user,
		Amount: amount,
	}))
}

// ArmQuery makes the next transfer call target.method() and record the result.
func ArmQuery(target interop.Hash160, method string) {
	storage.Put(storage.GetContext(), queryKey, std.Serialize(Query{
		Target: target,
		Method: method,
	}))
}

// Disarm removes both hooks.
func Disarm() {
	ctx := storage.GetContext()
	storage.Delete(ctx, reentryKey)
	storage.Delete(ctx, queryKey)
}

// LastQuery returns the result recorded by the query hook.
func LastQuery() any {
	val := storage.Get(storage.GetReadOnlyContext(), resultKey)
	if val == nil {
		return nil
	}
	return std.Deserialize(val.([]byte))
}

func fireHooks(ctx storage.Context) {
	if val := storage.Get(ctx, queryKey); val != nil {
		storage.Delete(ctx, queryKey)
		q := std.Deserialize(val.([]byte)).(Query)
		res := contract.Call(q.Target, q.Method, contract.ReadStates)
		storage.Put(ctx, resultKey, std.Serialize(res))
	}

	if val := storage.Get(ctx, reentryKey); val != nil {
		storage.Delete(ctx, reentryKey)
		r := std.Deserialize(val.([]byte)).(Reentry)
		contract.Call(r.Target, r.Method, contract.All, r.User, r.Amount)
	}
}

func getInt(ctx storage.Context, key any) int {
	val := storage.Get(ctx, key)
	if val == nil {
		return 0
	}
	return val.(int)
}
