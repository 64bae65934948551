package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli"

	"github.com/bitfsorg/royaltyledger-go/network"
	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
)

var (
	priceFlag = cli.Uint64Flag{
		Name:  "price",
		Usage: "sale price in satoshis",
	}
	seqFlag = cli.Uint64Flag{
		Name:  "seq",
		Usage: "sale sequence",
	}
)

func newSaleCommands() []cli.Command {
	return []cli.Command{{
		Name:  "sale",
		Usage: "record and inspect sales",
		Subcommands: []cli.Command{
			{
				Name:      "record",
				Usage:     "record a sale and pay its royalty",
				UsageText: "royaltyd sale record --asset <id> --seller <principal> --buyer <principal> --price <sat> [--settle chain --password <pass>]",
				Action:    recordSale,
				Flags: []cli.Flag{
					assetFlag,
					cli.StringFlag{Name: "seller", Usage: "seller principal, pays the royalty"},
					cli.StringFlag{Name: "buyer", Usage: "buyer principal"},
					priceFlag,
					settleFlag,
					passwordFlag,
				},
			},
			{
				Name:      "quote",
				Usage:     "show the royalty a sale would pay",
				UsageText: "royaltyd sale quote --asset <id> --price <sat>",
				Action:    quoteSale,
				Flags:     []cli.Flag{assetFlag, priceFlag},
			},
			{
				Name:      "show",
				Usage:     "print one sale record",
				UsageText: "royaltyd sale show --asset <id> --seq <n>",
				Action:    showSale,
				Flags:     []cli.Flag{assetFlag, seqFlag},
			},
			{
				Name:      "status",
				Usage:     "ask the node whether a sale's payout transaction confirmed",
				UsageText: "royaltyd sale status --asset <id> --seq <n>",
				Action:    saleStatus,
				Flags:     []cli.Flag{assetFlag, seqFlag},
			},
			{
				Name:      "list",
				Usage:     "print every sale of an asset",
				UsageText: "royaltyd sale list --asset <id>",
				Action:    listSales,
				Flags:     []cli.Flag{assetFlag},
			},
		},
	}}
}

func recordSale(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.ledger.RecordSale(context.Background(),
		royalty.AssetID(ctx.Uint64("asset")),
		principal.Principal(ctx.String("seller")),
		principal.Principal(ctx.String("buyer")),
		ctx.Uint64("price"))
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintf(ctx.App.Writer, "sale %d recorded, royalty paid %d\n", res.Sequence, res.RoyaltyPaid)
	printPayouts(ctx.App.Writer, res.Payouts)
	if res.SettlementRef != "" {
		fmt.Fprintf(ctx.App.Writer, "settlement: %s\n", res.SettlementRef)
	}
	return nil
}

func quoteSale(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	id := royalty.AssetID(ctx.Uint64("asset"))
	q, ok, err := e.ledger.RoyaltyInfo(context.Background(), id, ctx.Uint64("price"))
	if err != nil {
		return exitError(err)
	}
	if !ok {
		fmt.Fprintf(ctx.App.Writer, "asset %d: no policy\n", id)
		return nil
	}
	fmt.Fprintf(ctx.App.Writer, "royalty %d on %d (active: %t)\n", q.RoyaltyAmount, q.SalePrice, q.Active)
	printPayouts(ctx.App.Writer, q.Payouts)
	return nil
}

func showSale(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	id := royalty.AssetID(ctx.Uint64("asset"))
	seq := ctx.Uint64("seq")
	r, ok, err := e.ledger.GetSale(id, seq)
	if err != nil {
		return exitError(err)
	}
	if !ok {
		fmt.Fprintf(ctx.App.Writer, "asset %d: no sale %d\n", id, seq)
		return nil
	}
	printSale(ctx.App.Writer, r)
	return nil
}

func saleStatus(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	id := royalty.AssetID(ctx.Uint64("asset"))
	seq := ctx.Uint64("seq")
	r, ok, err := e.ledger.GetSale(id, seq)
	if err != nil {
		return exitError(err)
	}
	if !ok {
		fmt.Fprintf(ctx.App.Writer, "asset %d: no sale %d\n", id, seq)
		return nil
	}
	if r.SettlementRef == "" {
		fmt.Fprintf(ctx.App.Writer, "asset %d sale %d: no settlement reference\n", id, seq)
		return nil
	}

	chain, err := newRPCClient(e.cfg, e.log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return printSettlementStatus(context.Background(), ctx.App.Writer, chain, r.SettlementRef)
}

// printSettlementStatus reports the node's view of a payout transaction.
func printSettlementStatus(ctx context.Context, w io.Writer, chain network.BlockchainService, ref string) error {
	st, err := chain.GetTxStatus(ctx, ref)
	if errors.Is(err, network.ErrTxNotFound) {
		fmt.Fprintf(w, "settlement %s: unknown to the node\n", ref)
		return nil
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if !st.Confirmed {
		fmt.Fprintf(w, "settlement %s: unconfirmed\n", ref)
		return nil
	}
	fmt.Fprintf(w, "settlement %s: confirmed (%d confirmations, block %d %s)\n",
		ref, st.Confirmations, st.BlockHeight, st.BlockHash)
	return nil
}

func listSales(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	sales, err := e.ledger.ListSales(royalty.AssetID(ctx.Uint64("asset")))
	if err != nil {
		return exitError(err)
	}
	for _, r := range sales {
		printSale(ctx.App.Writer, r)
	}
	return nil
}

func printSale(w io.Writer, r *royalty.SaleRecord) {
	fmt.Fprintf(w, "#%d %s -> %s price %d royalty %d at %d",
		r.Sequence, r.Seller, r.Buyer, r.SalePrice, r.RoyaltyPaid, r.Timestamp)
	if r.SettlementRef != "" {
		fmt.Fprintf(w, " [%s]", r.SettlementRef)
	}
	fmt.Fprintln(w)
	printPayouts(w, r.Payouts)
}

func printPayouts(w io.Writer, payouts []royalty.Payout) {
	for _, p := range payouts {
		fmt.Fprintf(w, "  %s: %d\n", p.To, p.Amount)
	}
}
