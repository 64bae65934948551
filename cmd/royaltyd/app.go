package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bitfsorg/royaltyledger-go/config"
	"github.com/bitfsorg/royaltyledger-go/ledger"
	"github.com/bitfsorg/royaltyledger-go/network"
	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/settle"
	"github.com/bitfsorg/royaltyledger-go/store"
	"github.com/bitfsorg/royaltyledger-go/wallet"
)

// Version is set at build time.
var Version = "dev"

// keyRingSize is the number of external payout keys loaded from the seed.
const keyRingSize = 20

var (
	dataDirFlag = cli.StringFlag{
		Name:   "datadir, d",
		Usage:  "ledger data directory",
		EnvVar: "ROYALTY_DATADIR",
	}
	debugFlag = cli.BoolFlag{
		Name:  "debug",
		Usage: "enable debug logging",
	}
	callerFlag = cli.StringFlag{
		Name:  "caller, c",
		Usage: "principal performing the operation",
	}
	assetFlag = cli.Uint64Flag{
		Name:  "asset, a",
		Usage: "asset id",
	}
	settleFlag = cli.StringFlag{
		Name:  "settle",
		Usage: "settlement backend: offline or chain",
		Value: "offline",
	}
	passwordFlag = cli.StringFlag{
		Name:   "password",
		Usage:  "payout seed password",
		EnvVar: "ROYALTY_WALLET_PASSWORD",
	}
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "royaltyd\nVersion: %s\nGoVersion: %s\n",
		Version,
		runtime.Version(),
	)
}

// newApp creates the royaltyd cli.App with all commands included.
func newApp() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "royaltyd"
	ctl.Version = Version
	ctl.Usage = "royalty ledger for digital asset resales"
	ctl.ErrWriter = os.Stderr
	ctl.Flags = []cli.Flag{dataDirFlag, debugFlag}

	ctl.Commands = append(ctl.Commands, newInitCommand())
	ctl.Commands = append(ctl.Commands, newPolicyCommands()...)
	ctl.Commands = append(ctl.Commands, newSaleCommands()...)
	ctl.Commands = append(ctl.Commands, newAdminCommands()...)
	ctl.Commands = append(ctl.Commands, newServeCommand())
	return ctl
}

// loadConfig reads the config file of the data directory (defaults when
// absent), overlays ROYALTY_* variables and validates the result.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	dataDir := ctx.GlobalString("datadir")
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	cfg, err := config.LoadConfig(config.ConfigPath(dataDir))
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.DataDir = dataDir
	if err := config.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// handleLogging builds the logger described by cfg.
func handleLogging(debug bool, cfg config.Config) (*zap.Logger, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogFile; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return nil, fmt.Errorf("could not create dir for logger: %w", err)
		}
		cc.OutputPaths = []string{logPath}
	}

	return cc.Build()
}

// engine is an opened ledger with the resources it holds.
type engine struct {
	cfg    config.Config
	log    *zap.Logger
	store  *store.BoltStore
	ledger *ledger.Ledger
}

func (e *engine) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Error("failed to close ledger database", zap.Error(err))
	}
	_ = e.log.Sync()
}

// openEngine opens the ledger database of the configured data directory.
// With chain settlement, payouts are paid from the payout seed through the
// configured node and sale timestamps are block heights; otherwise payouts
// are bookkept offline and timestamped with the wall clock.
func openEngine(ctx *cli.Context, reg prometheus.Registerer) (*engine, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	if cfg.Admin == "" {
		return nil, cli.NewExitError("no administrator configured, run 'royaltyd init' first", 1)
	}
	log, err := handleLogging(ctx.GlobalBool("debug"), cfg)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}

	mode, err := ledger.ParseSplitMode(cfg.SplitMode)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	opts := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithSplitMode(mode),
		ledger.WithValidator(principal.StandardValidator{Network: cfg.Network}),
	}
	if reg != nil {
		m, err := ledger.NewMetrics(reg)
		if err != nil {
			return nil, cli.NewExitError(err, 1)
		}
		opts = append(opts, ledger.WithMetrics(m))
	}

	var transfer settle.Transferer = settle.Offline{}
	switch backend := ctx.String("settle"); backend {
	case "", "offline":
		// Offline ledgers stamp entries with the store's persistent clock.
	case "chain":
		ct, chain, err := newChainTransferer(ctx, cfg, log)
		if err != nil {
			return nil, cli.NewExitError(err, 1)
		}
		transfer = ct
		opts = append(opts, ledger.WithSequencer(network.HeightSequencer{Chain: chain}))
	default:
		return nil, cli.NewExitError(fmt.Errorf("unknown settlement backend %q", backend), 1)
	}

	s, err := store.OpenBoltStore(config.DatabasePath(cfg.DataDir))
	if err != nil {
		return nil, cli.NewExitError(fmt.Errorf("could not open ledger database: %w", err), 1)
	}
	l, err := ledger.New(s, principal.Principal(cfg.Admin), transfer, opts...)
	if err != nil {
		_ = s.Close()
		return nil, cli.NewExitError(err, 1)
	}
	return &engine{cfg: cfg, log: log, store: s, ledger: l}, nil
}

// newChainTransferer wires the payout seed, the node RPC client and the
// on-chain transferer.
func newChainTransferer(ctx *cli.Context, cfg config.Config, log *zap.Logger) (*settle.ChainTransferer, network.BlockchainService, error) {
	net, err := wallet.GetNetwork(cfg.Network)
	if err != nil {
		return nil, nil, err
	}
	seed, err := wallet.ReadSeedFile(filepath.Join(cfg.DataDir, wallet.SeedFileName), ctx.String("password"))
	if err != nil {
		return nil, nil, err
	}
	w, err := wallet.NewWallet(seed, net)
	if err != nil {
		return nil, nil, err
	}
	keys, err := wallet.NewKeyRing(w, keyRingSize)
	if err != nil {
		return nil, nil, err
	}

	chain, err := newRPCClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	ct, err := settle.NewChainTransferer(settle.ChainConfig{
		Chain:         chain,
		Keys:          keys,
		Mainnet:       net.Mainnet,
		ChangeAddress: keys.ChangeAddress(),
		Logger:        log,
	})
	if err != nil {
		return nil, nil, err
	}
	return ct, chain, nil
}

// newRPCClient builds the node client from cfg, overlaid on the network
// preset and the environment.
func newRPCClient(cfg config.Config, log *zap.Logger) (*network.RPCClient, error) {
	rpcCfg, err := network.ResolveConfig(&network.RPCConfig{
		URL:      cfg.RPCURL,
		User:     cfg.RPCUser,
		Password: cfg.RPCPassword,
	}, environ(), cfg.Network)
	if err != nil {
		return nil, err
	}
	return network.NewRPCClient(*rpcCfg, log), nil
}

// environ returns the process environment as a map.
func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// exitError wraps an engine failure for the cli.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	return cli.NewExitError(err, 1)
}
