package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
)

var bpsFlag = cli.UintFlag{
	Name:  "bps",
	Usage: "royalty rate in basis points (1..1000)",
}

func newPolicyCommands() []cli.Command {
	return []cli.Command{{
		Name:  "policy",
		Usage: "register and manage asset royalty policies",
		Subcommands: []cli.Command{
			{
				Name:      "register",
				Usage:     "register the royalty policy of an asset",
				UsageText: "royaltyd policy register --asset <id> --creator <principal> --bps <n>",
				Action:    registerPolicy,
				Flags: []cli.Flag{
					assetFlag,
					cli.StringFlag{Name: "creator", Usage: "creator principal"},
					bpsFlag,
				},
			},
			{
				Name:      "update",
				Usage:     "change the royalty rate of an asset",
				UsageText: "royaltyd policy update --caller <creator> --asset <id> --bps <n>",
				Action:    updatePercentage,
				Flags:     []cli.Flag{callerFlag, assetFlag, bpsFlag},
			},
			{
				Name:      "deactivate",
				Usage:     "permanently stop royalty collection for an asset",
				UsageText: "royaltyd policy deactivate --caller <creator> --asset <id>",
				Action:    deactivatePolicy,
				Flags:     []cli.Flag{callerFlag, assetFlag},
			},
			{
				Name:      "splits",
				Usage:     "replace the split table of an asset",
				UsageText: "royaltyd policy splits --caller <creator> --asset <id> [recipient=bps ...]",
				Action:    configureSplits,
				Flags:     []cli.Flag{callerFlag, assetFlag},
			},
			{
				Name:      "show",
				Usage:     "print the policy and split table of an asset",
				UsageText: "royaltyd policy show --asset <id>",
				Action:    showPolicy,
				Flags:     []cli.Flag{assetFlag},
			},
		},
	}}
}

func registerPolicy(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.ledger.RegisterPolicy(context.Background(),
		royalty.AssetID(ctx.Uint64("asset")),
		principal.Principal(ctx.String("creator")),
		uint32(ctx.Uint("bps")))
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintf(ctx.App.Writer, "registered asset %d: %d bps to %s\n", p.AssetID, p.RoyaltyBps, p.Creator)
	return nil
}

func updatePercentage(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	id := royalty.AssetID(ctx.Uint64("asset"))
	bps := uint32(ctx.Uint("bps"))
	if err := e.ledger.UpdatePercentage(context.Background(), principal.Principal(ctx.String("caller")), id, bps); err != nil {
		return exitError(err)
	}
	fmt.Fprintf(ctx.App.Writer, "asset %d: royalty set to %d bps\n", id, bps)
	return nil
}

func deactivatePolicy(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	id := royalty.AssetID(ctx.Uint64("asset"))
	if err := e.ledger.Deactivate(context.Background(), principal.Principal(ctx.String("caller")), id); err != nil {
		return exitError(err)
	}
	fmt.Fprintf(ctx.App.Writer, "asset %d: policy deactivated\n", id)
	return nil
}

func configureSplits(ctx *cli.Context) error {
	entries, err := parseSplits(ctx.Args())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	id := royalty.AssetID(ctx.Uint64("asset"))
	if err := e.ledger.ConfigureSplits(context.Background(), principal.Principal(ctx.String("caller")), id, entries); err != nil {
		return exitError(err)
	}
	fmt.Fprintf(ctx.App.Writer, "asset %d: %d split recipients\n", id, len(entries))
	return nil
}

// parseSplits parses recipient=bps arguments.
func parseSplits(args []string) ([]royalty.SplitEntry, error) {
	entries := make([]royalty.SplitEntry, 0, len(args))
	for _, arg := range args {
		recipient, bps, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid split %q, want recipient=bps", arg)
		}
		n, err := strconv.ParseUint(bps, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid split %q: %w", arg, err)
		}
		entries = append(entries, royalty.SplitEntry{
			Recipient: principal.Principal(recipient),
			SplitBps:  uint32(n),
		})
	}
	return entries, nil
}

func showPolicy(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	id := royalty.AssetID(ctx.Uint64("asset"))
	p, ok, err := e.ledger.GetPolicy(id)
	if err != nil {
		return exitError(err)
	}
	if !ok {
		fmt.Fprintf(ctx.App.Writer, "asset %d: no policy\n", id)
		return nil
	}
	splits, err := e.ledger.GetSplits(id)
	if err != nil {
		return exitError(err)
	}
	last, err := e.ledger.LastSaleSequence(id)
	if err != nil {
		return exitError(err)
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "asset:      %d\n", p.AssetID)
	fmt.Fprintf(w, "creator:    %s\n", p.Creator)
	fmt.Fprintf(w, "royalty:    %d bps\n", p.RoyaltyBps)
	fmt.Fprintf(w, "active:     %t\n", p.IsActive)
	fmt.Fprintf(w, "created at: %d\n", p.CreatedAt)
	fmt.Fprintf(w, "sales:      %d\n", last)
	for _, s := range splits {
		fmt.Fprintf(w, "split:      %s %d bps\n", s.Recipient, s.SplitBps)
	}
	return nil
}
