// Command royaltyd keeps a royalty ledger in a bbolt database: asset
// royalty policies, split tables and the append-only sale ledger.
package main

import (
	"fmt"
	"os"
)

func main() {
	ctl := newApp()

	if err := ctl.Run(os.Args); err != nil {
		fmt.Fprintln(ctl.ErrWriter, err)
		os.Exit(1)
	}
}
