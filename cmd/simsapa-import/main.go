// Command simsapa-import is the bootstrap CLI that builds the shipped
// appdata/dictionaries/dpd store files and imports user books, per
// SPEC_FULL.md's module map. It is the one binary entry point named in
// this repository; the desktop/mobile UI and HTTP server that consume
// the resulting stores at runtime are host processes out of scope (§1).
package main

import (
	"os"

	"github.com/simsapa/tipitaka-engine/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
