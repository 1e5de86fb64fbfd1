package vault

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/sharevault/vault-contract/common"
	"github.com/sharevault/vault-contract/contracts/vault/vaultconst"
)

const (
	adminKey         = "admin"
	assetKey         = "asset"
	shareTokenKey    = "shareToken"
	totalDepositsKey = "totalDeposits"
	yieldAccruedKey  = "yieldAccrued"
	pausedKey        = "paused"
	maxDepositKey    = "maxDeposit"
	totalCapKey      = "totalCap"
	lockKey          = "lock"

	userDepositPrefix = 'u'
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
		admin      interop.Hash160
		asset      interop.Hash160
		shareToken interop.Hash160
	})

	initialize(storage.GetContext(), args.admin, args.asset, args.shareToken)
}

// Initialize binds the administrator, the principal asset and the share token
// of a contract deployed without deploy data. It must be witnessed by admin
// and fails if the contract is already initialized.
func Initialize(admin, asset, shareToken interop.Hash160) {
	common.CheckAddress(admin)
	common.CheckWitness(admin)

	initialize(storage.GetContext(), admin, asset, shareToken)
}

func initialize(ctx storage.Context, admin, asset, shareToken interop.Hash160) {
	if storage.Get(ctx, adminKey) != nil {
		panic(common.ErrAlreadyInitialized)
	}

	common.CheckAddress(admin)
	common.CheckAddress(asset)
	common.CheckAddress(shareToken)

	storage.Put(ctx, adminKey, admin)
	storage.Put(ctx, assetKey, asset)
	storage.Put(ctx, shareTokenKey, shareToken)
	storage.Put(ctx, maxDepositKey, vaultconst.DefaultMaxDeposit)

	runtime.Log("vault initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the administrator.
func Update(nefFile, manifest []byte, data any) {
	checkAdmin(storage.GetReadOnlyContext())

	common.Update(nefFile, manifest, data)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// OnNEP17Payment accepts transfers of the principal asset only. Custody is
// accounted by Deposit and AddYield, plain transfers are not credited to
// anyone.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	asset := common.GetHash(storage.GetReadOnlyContext(), assetKey)

	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(asset) {
		panic("only the principal asset can be accepted")
	}
}

// Deposit takes amount of the principal asset from the user and mints shares
// at the current exchange rate. It returns the number of minted shares. Any
// failure, including a reentrant call made by the asset or the share token,
// faults the whole invocation.
//
// It produces Deposit notification.
func Deposit(user interop.Hash160, amount int) int {
	return deposit(user, amount, 0)
}

// DepositWithMinOut is like Deposit but fails with a slippage exception
// before moving any funds if fewer than minShares shares would be minted.
func DepositWithMinOut(user interop.Hash160, amount, minShares int) int {
	return deposit(user, amount, minShares)
}

func deposit(user interop.Hash160, amount, minShares int) int {
	ctx := storage.GetContext()
	acquireLock(ctx)
	defer func() {
		releaseLock()
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	common.CheckAddress(user)
	common.CheckWitness(user)

	if isPaused(ctx) {
		panic(common.ErrPaused)
	}
	if amount < vaultconst.MinAmount {
		panic(common.ErrBelowMinimum)
	}
	if amount > maxDeposit(ctx) {
		panic(common.ErrExceedsMaximum)
	}

	prevDeposits := common.GetInt(ctx, totalDepositsKey)
	totalDeposits := common.CheckedAdd(prevDeposits, amount)
	if totalDeposits > totalCap(ctx) {
		panic(common.ErrExceedsCap)
	}

	shareToken := common.GetHash(ctx, shareTokenKey)

	shares := toShares(amount, exchangeRate(ctx, shareToken))
	if shares == 0 {
		panic(common.ErrDepositTooSmall)
	}
	checkSlippage(minShares, shares)

	asset := common.GetHash(ctx, assetKey)
	transferAsset(asset, user, runtime.GetExecutingScriptHash(), amount)

	userKey := common.AccountKey(userDepositPrefix, user)
	userDeposit := common.CheckedAdd(common.GetInt(ctx, userKey), amount)

	common.PutInt(ctx, totalDepositsKey, totalDeposits)
	common.PutInt(ctx, userKey, userDeposit)

	contract.Call(shareToken, "mint", contract.All, user, shares)

	runtime.Notify("Deposit", user, amount, shares, prevDeposits, totalDeposits)

	return shares
}

// Withdraw burns shares of the user and returns the principal they are worth
// at the current exchange rate. It returns the transferred principal amount.
//
// It produces Withdraw notification.
func Withdraw(user interop.Hash160, shares int) int {
	return withdraw(user, shares, 0)
}

// WithdrawWithMinOut is like Withdraw but fails with a slippage exception
// before burning any shares if less than minAmount would be returned.
func WithdrawWithMinOut(user interop.Hash160, shares, minAmount int) int {
	return withdraw(user, shares, minAmount)
}

func withdraw(user interop.Hash160, shares, minAmount int) int {
	ctx := storage.GetContext()
	acquireLock(ctx)
	defer func() {
		releaseLock()
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	common.CheckAddress(user)
	common.CheckWitness(user)

	if isPaused(ctx) {
		panic(common.ErrPaused)
	}
	if shares < vaultconst.MinAmount {
		panic(common.ErrBelowMinimum)
	}

	shareToken := common.GetHash(ctx, shareTokenKey)

	held := contract.Call(shareToken, "balanceOf", contract.ReadStates, user).(int)
	if held < shares {
		panic(common.ErrInsufficientShares)
	}

	var (
		totalDeposits = common.GetInt(ctx, totalDepositsKey)
		yieldAccrued  = common.GetInt(ctx, yieldAccruedKey)
		assets        = common.CheckedAdd(totalDeposits, yieldAccrued)
	)

	amount := toAssets(shares, rateOf(assets, totalSupply(shareToken)))
	if amount == 0 {
		panic(common.ErrWithdrawalTooSmall)
	}
	checkSlippage(minAmount, amount)

	asset := common.GetHash(ctx, assetKey)
	self := runtime.GetExecutingScriptHash()

	liquidity := contract.Call(asset, "balanceOf", contract.ReadStates, self).(int)
	if liquidity < amount {
		panic(common.ErrInsufficientLiquidity)
	}

	contract.Call(shareToken, "burn", contract.All, user, shares)

	if assets > 0 {
		depositPortion := common.CheckedDiv(common.CheckedMul(amount, totalDeposits), assets)
		yieldPortion := amount - depositPortion

		totalDeposits = common.SaturatingSub(totalDeposits, depositPortion)
		yieldAccrued = common.SaturatingSub(yieldAccrued, yieldPortion)

		common.PutInt(ctx, totalDepositsKey, totalDeposits)
		common.PutInt(ctx, yieldAccruedKey, yieldAccrued)
	}

	userKey := common.AccountKey(userDepositPrefix, user)
	common.PutInt(ctx, userKey, common.SaturatingSub(common.GetInt(ctx, userKey), amount))

	transferAsset(asset, self, user, amount)

	runtime.Notify("Withdraw", user, shares, amount, assets, totalDeposits+yieldAccrued)

	return amount
}

// AddYield takes amount of the principal asset from the administrator and
// credits it to the accrued yield, raising the exchange rate for all holders.
//
// It produces YieldAdded notification.
func AddYield(amount int) {
	ctx := storage.GetContext()
	admin := checkAdmin(ctx)

	if amount <= 0 {
		panic(common.ErrInvalidAmount)
	}

	yieldAccrued := common.CheckedAdd(common.GetInt(ctx, yieldAccruedKey), amount)

	transferAsset(common.GetHash(ctx, assetKey), admin, runtime.GetExecutingScriptHash(), amount)

	common.PutInt(ctx, yieldAccruedKey, yieldAccrued)

	runtime.Notify("YieldAdded", amount, yieldAccrued)
}

// Pause stops deposits and withdrawals. It can be invoked only by the
// administrator.
//
// It produces Paused notification.
func Pause() {
	ctx := storage.GetContext()
	admin := checkAdmin(ctx)

	storage.Put(ctx, pausedKey, true)
	runtime.Notify("Paused", admin)
}

// Unpause resumes deposits and withdrawals. It can be invoked only by the
// administrator.
//
// It produces Unpaused notification.
func Unpause() {
	ctx := storage.GetContext()
	admin := checkAdmin(ctx)

	storage.Delete(ctx, pausedKey)
	runtime.Notify("Unpaused", admin)
}

// SetMaxDeposit sets the single-deposit limit. The limit can not be lower
// than the minimum deposit.
func SetMaxDeposit(amount int) {
	ctx := storage.GetContext()
	checkAdmin(ctx)

	if amount < vaultconst.MinAmount {
		panic(common.ErrBelowMinimum)
	}

	storage.Put(ctx, maxDepositKey, amount)
}

// SetTotalCap limits the sum of principal deposits. Deposits already made
// are not affected.
func SetTotalCap(amount int) {
	ctx := storage.GetContext()
	checkAdmin(ctx)

	if amount < 0 {
		panic(common.ErrInvalidAmount)
	}

	storage.Put(ctx, totalCapKey, amount)
}

// TransferAdmin hands the administrator role over to another account.
//
// It produces AdminTransferred notification.
func TransferAdmin(newAdmin interop.Hash160) {
	ctx := storage.GetContext()
	admin := checkAdmin(ctx)
	common.CheckAddress(newAdmin)

	storage.Put(ctx, adminKey, newAdmin)
	runtime.Notify("AdminTransferred", admin, newAdmin)
}

// ExchangeRate returns principal units per share scaled by
// vaultconst.Precision. It is vaultconst.Precision while no shares exist.
func ExchangeRate() int {
	ctx := storage.GetReadOnlyContext()
	return exchangeRate(ctx, common.GetHash(ctx, shareTokenKey))
}

// PreviewDeposit returns the number of shares Deposit would mint for amount
// in the current state. Zero means the deposit is dust.
func PreviewDeposit(amount int) int {
	if amount < 0 {
		panic(common.ErrInvalidAmount)
	}

	ctx := storage.GetReadOnlyContext()
	return toShares(amount, exchangeRate(ctx, common.GetHash(ctx, shareTokenKey)))
}

// PreviewWithdraw returns the principal Withdraw would return for shares in
// the current state.
func PreviewWithdraw(shares int) int {
	if shares < 0 {
		panic(common.ErrInvalidAmount)
	}

	ctx := storage.GetReadOnlyContext()
	return toAssets(shares, exchangeRate(ctx, common.GetHash(ctx, shareTokenKey)))
}

// TotalAssets returns principal deposits plus accrued yield.
func TotalAssets() int {
	return totalAssets(storage.GetReadOnlyContext())
}

// TotalDeposits returns the principal deposited and not yet withdrawn.
func TotalDeposits() int {
	return common.GetInt(storage.GetReadOnlyContext(), totalDepositsKey)
}

// YieldAccrued returns the yield credited and not yet withdrawn.
func YieldAccrued() int {
	return common.GetInt(storage.GetReadOnlyContext(), yieldAccruedKey)
}

// UserDeposit returns the principal tracked for the user. It is informational
// only, withdrawals are bounded by the share balance.
func UserDeposit(user interop.Hash160) int {
	return common.GetInt(storage.GetReadOnlyContext(), common.AccountKey(userDepositPrefix, user))
}

// Admin returns the administrator account.
func Admin() interop.Hash160 {
	return common.GetHash(storage.GetReadOnlyContext(), adminKey)
}

// Asset returns the principal asset contract.
func Asset() interop.Hash160 {
	return common.GetHash(storage.GetReadOnlyContext(), assetKey)
}

// ShareToken returns the share token contract.
func ShareToken() interop.Hash160 {
	return common.GetHash(storage.GetReadOnlyContext(), shareTokenKey)
}

// IsPaused returns true if deposits and withdrawals are stopped.
func IsPaused() bool {
	return isPaused(storage.GetReadOnlyContext())
}

// IsLocked returns true while a deposit or withdrawal is in progress.
func IsLocked() bool {
	return storage.Get(storage.GetReadOnlyContext(), lockKey) != nil
}

// MaxDeposit returns the single-deposit limit.
func MaxDeposit() int {
	return maxDeposit(storage.GetReadOnlyContext())
}

// TotalCap returns the limit of total principal deposits.
func TotalCap() int {
	return totalCap(storage.GetReadOnlyContext())
}

func acquireLock(ctx storage.Context) {
	if storage.Get(ctx, lockKey) != nil {
		panic(common.ErrReentrantCall)
	}
	storage.Put(ctx, lockKey, true)
}

func releaseLock() {
	storage.Delete(storage.GetContext(), lockKey)
}

func checkAdmin(ctx storage.Context) interop.Hash160 {
	admin := common.GetHash(ctx, adminKey)
	common.CheckWitness(admin)
	return admin
}

func checkSlippage(expected, actual int) {
	if actual < expected {
		panic(common.ErrSlippage + ": expected at least " + std.Itoa10(expected) + ", got " + std.Itoa10(actual))
	}
}

func isPaused(ctx storage.Context) bool {
	return storage.Get(ctx, pausedKey) != nil
}

func maxDeposit(ctx storage.Context) int {
	v := storage.Get(ctx, maxDepositKey)
	if v == nil {
		return vaultconst.DefaultMaxDeposit
	}
	return v.(int)
}

func totalCap(ctx storage.Context) int {
	v := storage.Get(ctx, totalCapKey)
	if v == nil {
		return common.MaxAmount()
	}
	return v.(int)
}

func totalAssets(ctx storage.Context) int {
	return common.CheckedAdd(common.GetInt(ctx, totalDepositsKey), common.GetInt(ctx, yieldAccruedKey))
}

func totalSupply(shareToken interop.Hash160) int {
	return contract.Call(shareToken, "totalSupply", contract.ReadStates).(int)
}

func exchangeRate(ctx storage.Context, shareToken interop.Hash160) int {
	return rateOf(totalAssets(ctx), totalSupply(shareToken))
}

func rateOf(assets, supply int) int {
	if supply == 0 {
		return vaultconst.Precision
	}
	return common.CheckedDiv(common.CheckedMul(assets, vaultconst.Precision), supply)
}

func toShares(amount, rate int) int {
	return common.CheckedDiv(common.CheckedMul(amount, vaultconst.Precision), rate)
}

func toAssets(shares, rate int) int {
	return common.CheckedMul(shares, rate) / vaultconst.Precision
}

func transferAsset(asset, from, to interop.Hash160, amount int) {
	ok := contract.Call(asset, "transfer", contract.All, from, to, amount, nil).(bool)
	if !ok {
		panic(common.ErrTransferFailed)
	}
}
