// Package cli implements simsapa-import, the bootstrap-adjacent command
// line entry point named in SPEC_FULL.md's module map. It is in scope
// only for the binary formats its subcommands must preserve (§6/§9): the
// StarDict, EPUB, PDF, and VRI-CST XML importers of C8, plus the FTS5
// population step C2 runs once a bootstrap batch finishes. Everything
// else the UI/HTTP host layer does (window management, request routing,
// the asset downloader) stays out of scope per §1.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/simsapa/tipitaka-engine/internal/appctx"
)

// Command defines one simsapa-import subcommand with unified help
// generation, grounded on calvinalkan-agent-task's internal/cli.Command.
type Command struct {
	// Flags holds command-specific flags. The FlagSet's own name is
	// unused; command identity comes from Usage's first word.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown after "simsapa-import".
	Usage string

	// Short is the one-line description shown in the top-level help.
	Short string

	// Exec runs the command against an already-open AppContext after
	// flags are parsed.
	Exec func(ctx context.Context, ac *appctx.AppContext, out io.Writer, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-28s %s", c.Usage, c.Short)
}

func (c *Command) PrintHelp(errOut io.Writer) {
	fmt.Fprintln(errOut, "Usage: simsapa-import", c.Usage)
	if c.Flags != nil && c.Flags.HasFlags() {
		fmt.Fprintln(errOut)
		fmt.Fprintln(errOut, "Flags:")
		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		fmt.Fprint(errOut, buf.String())
	}
}

// Run parses flags and executes the command against ac, returning an exit
// code so the caller can set os.Exit without panicking mid-import.
func (c *Command) Run(ctx context.Context, ac *appctx.AppContext, out, errOut io.Writer, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag's own error text

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(errOut)
			return 0
		}
		fmt.Fprintln(errOut, "error:", err)
		c.PrintHelp(errOut)
		return 1
	}

	if err := c.Exec(ctx, ac, out, c.Flags.Args()); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}
