// Command tmfstock serves the inventory API and runs maintenance tasks
// against the in-memory store.
package main

import (
	"fmt"
	"os"
)

var exitFunc = os.Exit

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tmfstock:", err)
		exitFunc(1)
	}
}
