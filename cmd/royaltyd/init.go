package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/bitfsorg/royaltyledger-go/config"
	"github.com/bitfsorg/royaltyledger-go/ledger"
	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/settle"
	"github.com/bitfsorg/royaltyledger-go/store"
	"github.com/bitfsorg/royaltyledger-go/wallet"
)

func newInitCommand() cli.Command {
	return cli.Command{
		Name:      "init",
		Usage:     "create the data directory, config file and ledger database",
		UsageText: "royaltyd init --admin <principal> [--network testnet] [--split-mode distribute] [--wallet --password <pass>]",
		Action:    initLedger,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "admin", Usage: "administrator principal"},
			cli.StringFlag{Name: "network, n", Usage: "mainnet, testnet or regtest", Value: "mainnet"},
			cli.StringFlag{Name: "split-mode", Usage: "informational or distribute", Value: "informational"},
			cli.StringFlag{Name: "rpc-url", Usage: "node JSON-RPC URL"},
			cli.StringFlag{Name: "rpc-user", Usage: "node JSON-RPC user"},
			cli.StringFlag{Name: "rpc-pass", Usage: "node JSON-RPC password"},
			cli.StringFlag{Name: "metrics", Usage: "metrics listen address for serve"},
			cli.BoolFlag{Name: "wallet", Usage: "generate a payout seed"},
			passwordFlag,
		},
	}
}

func initLedger(ctx *cli.Context) error {
	dataDir := ctx.GlobalString("datadir")
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	cfgPath := config.ConfigPath(dataDir)
	if _, err := os.Stat(cfgPath); err == nil {
		return cli.NewExitError(fmt.Sprintf("%s already exists", cfgPath), 1)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return cli.NewExitError(err, 1)
	}

	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.Admin = ctx.String("admin")
	cfg.Network = ctx.String("network")
	cfg.SplitMode = ctx.String("split-mode")
	cfg.RPCURL = ctx.String("rpc-url")
	cfg.RPCUser = ctx.String("rpc-user")
	cfg.RPCPassword = ctx.String("rpc-pass")
	cfg.MetricsAddr = ctx.String("metrics")
	if cfg.Admin == "" {
		return cli.NewExitError("--admin is required", 1)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return cli.NewExitError(err, 1)
	}

	var mnemonic string
	if ctx.Bool("wallet") {
		var err error
		mnemonic, err = createPayoutSeed(cfg, ctx.String("password"))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	s, err := store.OpenBoltStore(config.DatabasePath(dataDir))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	_, err = ledger.New(s, principal.Principal(cfg.Admin), settle.Offline{},
		ledger.WithValidator(principal.StandardValidator{Network: cfg.Network}))
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := config.SaveConfig(cfgPath, cfg); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(ctx.App.Writer, "initialized %s (administrator %s)\n", dataDir, cfg.Admin)
	if mnemonic != "" {
		fmt.Fprintf(ctx.App.Writer, "payout seed mnemonic, write it down:\n%s\n", mnemonic)
	}
	return nil
}

// createPayoutSeed generates a mnemonic and stores its sealed seed in the
// data directory.
func createPayoutSeed(cfg config.Config, password string) (string, error) {
	if password == "" {
		return "", errors.New("--password is required with --wallet")
	}
	net, err := wallet.GetNetwork(cfg.Network)
	if err != nil {
		return "", err
	}
	mnemonic, err := wallet.GenerateMnemonic(256)
	if err != nil {
		return "", err
	}
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return "", err
	}
	// Fail before writing anything if the seed cannot drive a wallet.
	if _, err := wallet.NewWallet(seed, net); err != nil {
		return "", err
	}
	if err := wallet.WriteSeedFile(filepath.Join(cfg.DataDir, wallet.SeedFileName), seed, password); err != nil {
		return "", err
	}
	return mnemonic, nil
}
