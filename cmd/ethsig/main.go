// Command ethsig signs, verifies and recovers Ethereum messages and
// transactions from the command line.
//
// Every flag can also be set through an ETHSIG_ prefixed environment
// variable (ETHSIG_KEY, ETHSIG_CHAIN_ID, ...) or a config file, so private
// keys need not appear in shell history.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
