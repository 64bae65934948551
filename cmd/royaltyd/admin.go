package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitfsorg/royaltyledger-go/principal"
)

func newAdminCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "admin",
			Usage: "administrator operations",
			Subcommands: []cli.Command{
				{
					Name:   "pause",
					Usage:  "stop every mutating operation",
					Action: pauseLedger,
					Flags:  []cli.Flag{callerFlag},
				},
				{
					Name:   "resume",
					Usage:  "re-enable mutating operations",
					Action: resumeLedger,
					Flags:  []cli.Flag{callerFlag},
				},
			},
		},
		{
			Name:   "totals",
			Usage:  "print the royalties distributed and the pause state",
			Action: showTotals,
		},
	}
}

func pauseLedger(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.ledger.Pause(context.Background(), principal.Principal(ctx.String("caller"))); err != nil {
		return exitError(err)
	}
	fmt.Fprintln(ctx.App.Writer, "ledger paused")
	return nil
}

func resumeLedger(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.ledger.Resume(context.Background(), principal.Principal(ctx.String("caller"))); err != nil {
		return exitError(err)
	}
	fmt.Fprintln(ctx.App.Writer, "ledger resumed")
	return nil
}

func showTotals(ctx *cli.Context) error {
	e, err := openEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	total, err := e.ledger.GetTotalDistributed()
	if err != nil {
		return exitError(err)
	}
	paused, err := e.ledger.IsPaused()
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintf(ctx.App.Writer, "administrator:      %s\n", e.ledger.Admin())
	fmt.Fprintf(ctx.App.Writer, "split mode:         %s\n", e.ledger.SplitMode())
	fmt.Fprintf(ctx.App.Writer, "total distributed:  %d\n", total)
	fmt.Fprintf(ctx.App.Writer, "paused:             %t\n", paused)
	return nil
}
