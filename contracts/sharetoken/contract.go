package sharetoken

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/sharevault/vault-contract/common"
)

const (
	symbol   = "VSHARE"
	decimals = 7

	adminKey  = "admin"
	minterKey = "minter"
	supplyKey = "supply"

	balancePrefix   = 'b'
	allowancePrefix = 'l'
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		common.CheckVersion(common.UpdatedFrom(data))
		return
	}

	if data == nil {
		return
	}

	args := data.(struct {
		admin  interop.Hash160
		minter interop.Hash160
	})

	initialize(storage.GetContext(), args.admin, args.minter)
}

// Initialize sets the administrator and the minter of a contract deployed
// without deploy data. It must be witnessed by admin and fails if the contract
// is already initialized.
func Initialize(admin, minter interop.Hash160) {
	common.CheckAddress(admin)
	common.CheckWitness(admin)

	initialize(storage.GetContext(), admin, minter)
}

func initialize(ctx storage.Context, admin, minter interop.Hash160) {
	if storage.Get(ctx, adminKey) != nil {
		panic(common.ErrAlreadyInitialized)
	}

	common.CheckAddress(admin)
	common.CheckAddress(minter)

	storage.Put(ctx, adminKey, admin)
	storage.Put(ctx, minterKey, minter)

	runtime.Log("share token initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the administrator.
func Update(nefFile, manifest []byte, data any) {
	ctx := storage.GetReadOnlyContext()
	common.CheckWitness(common.GetHash(ctx, adminKey))

	common.Update(nefFile, manifest, data)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// Symbol returns the share token symbol.
func Symbol() string {
	return symbol
}

// Decimals returns the share token precision. It matches the exchange rate
// precision of the Vault.
func Decimals() int {
	return decimals
}

// Admin returns the administrator account.
func Admin() interop.Hash160 {
	return common.GetHash(storage.GetReadOnlyContext(), adminKey)
}

// Minter returns the only account allowed to mint and burn arbitrary
// balances, normally the Vault contract.
func Minter() interop.Hash160 {
	return common.GetHash(storage.GetReadOnlyContext(), minterKey)
}

// SetMinter replaces the minter. It can be invoked only by the administrator.
func SetMinter(minter interop.Hash160) {
	ctx := storage.GetContext()
	common.CheckWitness(common.GetHash(ctx, adminKey))
	common.CheckAddress(minter)

	storage.Put(ctx, minterKey, minter)
	runtime.Log("minter changed")
}

// TotalSupply returns the sum of all balances.
func TotalSupply() int {
	return common.GetInt(storage.GetReadOnlyContext(), supplyKey)
}

// BalanceOf returns the share balance of the account, zero for unknown ones.
func BalanceOf(account interop.Hash160) int {
	return common.GetInt(storage.GetReadOnlyContext(), common.AccountKey(balancePrefix, account))
}

// Allowance returns the amount spender may still move from the owner's
// balance.
func Allowance(from, spender interop.Hash160) int {
	return common.GetInt(storage.GetReadOnlyContext(), allowanceKey(from, spender))
}

// Mint credits amount to the account and increases the total supply. It can
// be invoked only by the minter.
//
// It produces Mint notification.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckWitness(common.GetHash(ctx, minterKey))
	common.CheckAddress(to)
	checkPositive(amount)

	supply := common.CheckedAdd(common.GetInt(ctx, supplyKey), amount)

	key := common.AccountKey(balancePrefix, to)
	balance := common.CheckedAdd(common.GetInt(ctx, key), amount)

	common.PutInt(ctx, key, balance)
	common.PutInt(ctx, supplyKey, supply)

	runtime.Notify("Mint", to, amount, balance)
}

// Burn debits amount from the account and decreases the total supply. It can
// be invoked only by the minter.
//
// It produces Burn notification.
func Burn(from interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckWitness(common.GetHash(ctx, minterKey))
	common.CheckAddress(from)
	checkPositive(amount)

	burn(ctx, from, amount)
}

// BurnSelf destroys amount of the caller's own shares.
//
// It produces Burn notification.
func BurnSelf(from interop.Hash160, amount int) {
	common.CheckAddress(from)
	common.CheckWitness(from)
	checkPositive(amount)

	burn(storage.GetContext(), from, amount)
}

// BurnFrom destroys amount of the owner's shares on behalf of the spender,
// consuming the spender's allowance.
//
// It produces Burn notification.
func BurnFrom(spender, from interop.Hash160, amount int) {
	common.CheckAddress(spender)
	common.CheckAddress(from)
	common.CheckWitness(spender)
	checkPositive(amount)

	ctx := storage.GetContext()
	spendAllowance(ctx, from, spender, amount)
	burn(ctx, from, amount)
}

// Transfer moves amount of shares between accounts. It must be witnessed by
// the sender. Sender and receiver may be the same account.
//
// It produces Transfer notification.
func Transfer(from, to interop.Hash160, amount int) {
	common.CheckAddress(from)
	common.CheckAddress(to)
	common.CheckWitness(from)
	checkPositive(amount)

	move(storage.GetContext(), from, to, amount)

	runtime.Notify("Transfer", from, to, amount)
}

// TransferFrom moves amount of the owner's shares on behalf of the spender,
// consuming the spender's allowance. Allowance is checked before the balance.
//
// It produces Transfer notification.
func TransferFrom(spender, from, to interop.Hash160, amount int) {
	common.CheckAddress(spender)
	common.CheckAddress(from)
	common.CheckAddress(to)
	common.CheckWitness(spender)
	checkPositive(amount)

	ctx := storage.GetContext()
	spendAllowance(ctx, from, spender, amount)
	move(ctx, from, to, amount)

	runtime.Notify("Transfer", from, to, amount)
}

// Approve sets the amount spender may move from the owner's balance,
// overwriting the previous allowance. Zero removes the allowance. Expiration
// is carried in the notification only and is not enforced.
//
// It produces Approve notification.
func Approve(from, spender interop.Hash160, amount int, expiration int) {
	common.CheckAddress(from)
	common.CheckAddress(spender)
	common.CheckWitness(from)
	if amount < 0 {
		panic(common.ErrInvalidAmount)
	}

	common.PutInt(storage.GetContext(), allowanceKey(from, spender), amount)

	runtime.Notify("Approve", from, spender, amount, expiration)
}

func burn(ctx storage.Context, from interop.Hash160, amount int) {
	key := common.AccountKey(balancePrefix, from)
	balance := common.GetInt(ctx, key)
	if balance < amount {
		panic(common.ErrInsufficientBalance)
	}

	balance -= amount
	common.PutInt(ctx, key, balance)
	common.PutInt(ctx, supplyKey, common.CheckedSub(common.GetInt(ctx, supplyKey), amount))

	runtime.Notify("Burn", from, amount, balance)
}

// move keeps the total supply intact; the receiver is read after the sender
// is written, so self-transfers net to zero.
func move(ctx storage.Context, from, to interop.Hash160, amount int) {
	fromKey := common.AccountKey(balancePrefix, from)
	fromBalance := common.GetInt(ctx, fromKey)
	if fromBalance < amount {
		panic(common.ErrInsufficientBalance)
	}
	common.PutInt(ctx, fromKey, fromBalance-amount)

	toKey := common.AccountKey(balancePrefix, to)
	common.PutInt(ctx, toKey, common.CheckedAdd(common.GetInt(ctx, toKey), amount))
}

func spendAllowance(ctx storage.Context, from, spender interop.Hash160, amount int) {
	key := allowanceKey(from, spender)
	allowance := common.GetInt(ctx, key)
	if allowance < amount {
		panic(common.ErrInsufficientAllowance)
	}

	common.PutInt(ctx, key, allowance-amount)
}

func allowanceKey(from, spender interop.Hash160) []byte {
	return append(common.AccountKey(allowancePrefix, from), spender...)
}

func checkPositive(amount int) {
	if amount <= 0 {
		panic(common.ErrInvalidAmount)
	}
}
