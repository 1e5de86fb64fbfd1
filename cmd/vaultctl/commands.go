package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/sharevault/vault-contract/contracts"
	"github.com/sharevault/vault-contract/contracts/vault/vaultconst"
	"github.com/sharevault/vault-contract/deploy"
	"github.com/sharevault/vault-contract/internal/dump"
	"github.com/sharevault/vault-contract/rpc/sharetoken"
	"github.com/sharevault/vault-contract/rpc/vault"
	"github.com/sharevault/vault-contract/shares"
	"go.uber.org/zap"
)

const passwordEnv = "VAULTCTL_WALLET_PASSWORD"

func deployCmd(ctx context.Context, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("deploy", flag.ContinueOnError)
	rpcEndpoint := fs.String("rpc", "", "Network address of the Neo RPC server")
	walletPath := fs.String("wallet", "", "Path to the NEP-6 wallet of the deployer")
	accAddr := fs.String("address", "", "Wallet account to deploy from (first account if empty)")
	assetStr := fs.String("asset", "", "NEP-17 principal asset (address or LE hash)")
	adminStr := fs.String("admin", "", "Administrator of both contracts (deployer if empty)")
	srcDir := fs.String("contracts", "contracts", "Root directory of contract sources")
	artifactsDir := fs.String("artifacts", "", "Directory with compiled contracts, sources are compiled if empty")
	timeout := fs.Duration("timeout", defaultTimeout, "Timeout of RPC requests")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	err = requireFlags(fs, "rpc", "wallet", "asset")
	if err != nil {
		return err
	}

	asset, err := parseHash(*assetStr)
	if err != nil {
		return fmt.Errorf("decode asset: %w", err)
	}

	var admin util.Uint160
	if *adminStr != "" {
		admin, err = parseHash(*adminStr)
		if err != nil {
			return fmt.Errorf("decode admin: %w", err)
		}
	}

	acc, err := openAccount(*walletPath, *accAddr, os.Getenv(passwordEnv))
	if err != nil {
		return err
	}

	var cs []contracts.Contract
	if *artifactsDir != "" {
		cs, err = contracts.Read(os.DirFS(*artifactsDir))
	} else {
		log.Info("compiling contracts...", zap.String("dir", *srcDir))
		cs, err = contracts.CompileAll(*srcDir)
	}
	if err != nil {
		return fmt.Errorf("load contracts: %w", err)
	}

	b, err := newRemoteBlockChain(ctx, *rpcEndpoint, *timeout)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	res, err := deploy.Deploy(ctx, deploy.Prm{
		Logger:       log,
		Blockchain:   b.rpc,
		LocalAccount: acc,
		Admin:        admin,
		Asset:        asset,
		ShareToken:   deploy.CommonDeployPrm{NEF: cs[0].NEF, Manifest: cs[0].Manifest},
		Vault:        deploy.CommonDeployPrm{NEF: cs[1].NEF, Manifest: cs[1].Manifest},
	})
	if err != nil {
		return err
	}

	fmt.Printf("share token: %s (%s)\n", address.Uint160ToString(res.ShareToken), res.ShareToken.StringLE())
	fmt.Printf("vault:       %s (%s)\n", address.Uint160ToString(res.Vault), res.Vault.StringLE())

	return nil
}

func openAccount(path, addr, password string) (*wallet.Account, error) {
	w, err := wallet.NewWalletFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var acc *wallet.Account
	if addr != "" {
		h, err := parseHash(addr)
		if err != nil {
			return nil, fmt.Errorf("decode account address: %w", err)
		}

		acc = w.GetAccount(h)
		if acc == nil {
			return nil, fmt.Errorf("account %s is missing in the wallet", addr)
		}
	} else {
		if len(w.Accounts) == 0 {
			return nil, errors.New("wallet has no accounts")
		}
		acc = w.Accounts[0]
	}

	err = acc.Decrypt(password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc, nil
}

func infoCmd(ctx context.Context, _ *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	rpcEndpoint := fs.String("rpc", "", "Network address of the Neo RPC server")
	vaultStr := fs.String("vault", "", "Vault contract (address or LE hash)")
	userStr := fs.String("user", "", "Also print position of this account")
	timeout := fs.Duration("timeout", defaultTimeout, "Timeout of RPC requests")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	err = requireFlags(fs, "rpc", "vault")
	if err != nil {
		return err
	}

	h, err := parseHash(*vaultStr)
	if err != nil {
		return fmt.Errorf("decode vault: %w", err)
	}

	var user util.Uint160
	if *userStr != "" {
		user, err = parseHash(*userStr)
		if err != nil {
			return fmt.Errorf("decode user: %w", err)
		}
	}

	b, err := newRemoteBlockChain(ctx, *rpcEndpoint, *timeout)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	st, err := vault.ReadState(b.invoker, h)
	if err != nil {
		return fmt.Errorf("read vault state: %w", err)
	}

	r := vault.NewReader(b.invoker, h)

	var (
		admin, asset, token util.Uint160
		paused, locked      bool
		maxDeposit, totCap  *big.Int
	)

	for _, f := range []func() error{
		func() (err error) { admin, err = r.Admin(); return },
		func() (err error) { asset, err = r.Asset(); return },
		func() (err error) { token, err = r.ShareToken(); return },
		func() (err error) { paused, err = r.IsPaused(); return },
		func() (err error) { locked, err = r.IsLocked(); return },
		func() (err error) { maxDeposit, err = r.MaxDeposit(); return },
		func() (err error) { totCap, err = r.TotalCap(); return },
	} {
		err = f()
		if err != nil {
			return fmt.Errorf("read vault parameters: %w", err)
		}
	}

	liquidity, err := nep17.NewReader(b.invoker, asset).BalanceOf(h)
	if err != nil {
		return fmt.Errorf("read vault liquidity: %w", err)
	}

	out := os.Stdout
	fmt.Fprintf(out, "block:          %d\n", b.currentBlock)
	fmt.Fprintf(out, "admin:          %s\n", address.Uint160ToString(admin))
	fmt.Fprintf(out, "asset:          %s\n", address.Uint160ToString(asset))
	fmt.Fprintf(out, "share token:    %s\n", address.Uint160ToString(token))
	fmt.Fprintf(out, "paused:         %t\n", paused)
	fmt.Fprintf(out, "locked:         %t\n", locked)
	fmt.Fprintf(out, "max deposit:    %s\n", maxDeposit)
	fmt.Fprintf(out, "total cap:      %s\n", totCap)
	fmt.Fprintf(out, "liquidity:      %s\n", liquidity)
	err = printState(out, st)
	if err != nil {
		return err
	}

	if user.Equals(util.Uint160{}) {
		return nil
	}

	deposited, err := r.UserDeposit(user)
	if err != nil {
		return fmt.Errorf("read user deposit: %w", err)
	}

	held, err := sharetoken.NewReader(b.invoker, token).BalanceOf(user)
	if err != nil {
		return fmt.Errorf("read user shares: %w", err)
	}

	value, err := st.PreviewWithdraw(held)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "user deposit:   %s\n", deposited)
	fmt.Fprintf(out, "user shares:    %s\n", fixedn.ToString(held, vaultconst.PrecisionDecimals))
	fmt.Fprintf(out, "user value:     %s\n", value)

	return nil
}

func printState(w io.Writer, st shares.State) error {
	rate, err := st.ExchangeRate()
	if err != nil {
		return err
	}

	assets, err := st.TotalAssets()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "total deposits: %s\n", st.TotalDeposits)
	fmt.Fprintf(w, "yield accrued:  %s\n", st.YieldAccrued)
	fmt.Fprintf(w, "total assets:   %s\n", assets)
	fmt.Fprintf(w, "total supply:   %s\n", st.TotalSupply)
	fmt.Fprintf(w, "exchange rate:  %s (%s)\n", rate, fixedn.ToString(rate, vaultconst.PrecisionDecimals))

	return nil
}

func dumpCmd(ctx context.Context, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	rpcEndpoint := fs.String("rpc", "", "Network address of the Neo RPC server")
	vaultStr := fs.String("vault", "", "Vault contract (address or LE hash)")
	label := fs.String("label", "", "Label of the blockchain environment (e.g. 'testnet')")
	dir := fs.String("dir", "testdata", "Directory to write the dump to")
	doAudit := fs.Bool("audit", true, "Audit the dump after writing")
	timeout := fs.Duration("timeout", defaultTimeout, "Timeout of RPC requests")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	err = requireFlags(fs, "rpc", "vault", "label")
	if err != nil {
		return err
	}

	if strings.Contains(*label, "-") {
		return errors.New("label must not contain '-'")
	}

	h, err := parseHash(*vaultStr)
	if err != nil {
		return fmt.Errorf("decode vault: %w", err)
	}

	err = os.MkdirAll(*dir, 0700)
	if err != nil {
		return fmt.Errorf("create root dir: %w", err)
	}

	b, err := newRemoteBlockChain(ctx, *rpcEndpoint, *timeout)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	id := dump.ID{Label: *label, Block: b.currentBlock}

	err = writeDump(ctx, log, b, h, *dir, id)
	if err != nil {
		return err
	}

	log.Info("contracts are successfully dumped", zap.String("dir", *dir), zap.Stringer("id", id))

	if !*doAudit {
		return nil
	}

	r, err := dump.Open(*dir, id)
	if err != nil {
		return fmt.Errorf("open written dump: %w", err)
	}

	return printAudit(os.Stdout, id, r)
}

func writeDump(ctx context.Context, log *zap.Logger, from *remoteBlockchain, vaultHash util.Uint160, dir string, id dump.ID) error {
	token, err := vault.NewReader(from.invoker, vaultHash).ShareToken()
	if err != nil {
		return fmt.Errorf("get share token of the vault: %w", err)
	}

	tokenState, err := from.contractState(token)
	if err != nil {
		return err
	}

	vaultState, err := from.contractState(vaultHash)
	if err != nil {
		return err
	}

	return dump.Write(dir, id, tokenState, vaultState, func(h util.Uint160, f func(k, v []byte) error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		log.Info("processing contract...", zap.Stringer("address", h))

		return from.iterateContractStorage(h, f)
	})
}

func auditCmd(_ context.Context, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	dir := fs.String("dir", "testdata", "Directory with dumps")
	label := fs.String("label", "", "Audit only dumps with this label")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	var failed int

	err = dump.IterateDumps(*dir, func(id dump.ID, r *dump.Reader) {
		if *label != "" && id.Label != *label {
			return
		}

		if err := printAudit(os.Stdout, id, r); err != nil {
			log.Error("audit failed", zap.Stringer("id", id), zap.Error(err))
			failed++
		}
	})
	if err != nil {
		return fmt.Errorf("iterate dumps: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d dump(s) failed audit", failed)
	}

	return nil
}

func printAudit(w io.Writer, id dump.ID, r *dump.Reader) error {
	rep, auditErr := dump.Audit(r)
	if rep == nil {
		return auditErr
	}

	fmt.Fprintf(w, "dump:           %s\n", id)
	fmt.Fprintf(w, "admin:          %s\n", address.Uint160ToString(rep.Admin))
	fmt.Fprintf(w, "asset:          %s\n", address.Uint160ToString(rep.Asset))
	fmt.Fprintf(w, "share token:    %s\n", address.Uint160ToString(rep.ShareToken))
	fmt.Fprintf(w, "paused:         %t\n", rep.Paused)
	fmt.Fprintf(w, "max deposit:    %s\n", rep.Limits.MaxDeposit)
	fmt.Fprintf(w, "total cap:      %s\n", rep.Limits.TotalCap)
	fmt.Fprintf(w, "holders:        %d\n", rep.Holders)
	fmt.Fprintf(w, "allowances:     %d\n", rep.Allowances)
	fmt.Fprintf(w, "user deposits:  %s\n", rep.UserDepositSum)

	err := printState(w, rep.State)
	if err != nil {
		return err
	}

	return auditErr
}
