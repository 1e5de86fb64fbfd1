// Command vaultctl deploys, inspects and dumps the share Vault contracts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `Usage: vaultctl <command> [flags]

Commands:
  deploy   deploy the share token and the Vault
  info     print the Vault state
  dump     dump storage of the Vault and its share token
  audit    check consistency of the dumped storage

Run 'vaultctl <command> -h' for command flags.
`

const defaultTimeout = 15 * time.Second

type command func(ctx context.Context, log *zap.Logger, args []string) error

var commands = map[string]command{
	"deploy": deployCmd,
	"info":   infoCmd,
	"dump":   dumpCmd,
	"audit":  auditCmd,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command '%s'\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	log, err := newLogger(os.Getenv("VAULTCTL_DEBUG") != "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err = cmd(ctx, log, os.Args[2:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.DisableStacktrace = true

	if debug {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return c.Build()
}

// parseHash accepts both Neo addresses and hex-encoded LE script hashes.
func parseHash(s string) (util.Uint160, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) == 2*util.Uint160Size {
		return util.Uint160DecodeStringLE(s)
	}
	return address.StringToUint160(s)
}

func requireFlags(fs *flag.FlagSet, names ...string) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	for _, n := range names {
		if !set[n] {
			return fmt.Errorf("missing required flag -%s", n)
		}
	}

	return nil
}
