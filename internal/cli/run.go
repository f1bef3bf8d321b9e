package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/sirupsen/logrus"

	"github.com/simsapa/tipitaka-engine/internal/appctx"
	"github.com/simsapa/tipitaka-engine/internal/store"
)

// Run is simsapa-import's entry point, returning a process exit code. It
// opens the store.Manager once in Bootstrap mode (appdata/dictionaries/dpd
// read-write, per §4.1) and hands it to whichever subcommand the caller
// picked, then closes it on the way out regardless of outcome.
func Run(args []string, out, errOut io.Writer) int {
	global := flag.NewFlagSet("simsapa-import", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(&strings.Builder{})
	flagHelp := global.BoolP("help", "h", false, "Show help")
	flagDir := global.String("dir", "", "Storage directory (overrides SIMSAPA_DIR)")
	flagPoolSize := global.Int("pool-size", 4, "Connection pool size per store")
	flagVerbose := global.BoolP("verbose", "v", false, "Log at debug level")

	if err := global.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		printUsage(errOut)
		return 1
	}

	commands := allCommands()
	commandAndArgs := global.Args()

	if *flagHelp || len(commandAndArgs) == 0 {
		printUsage(out)
		if len(commandAndArgs) == 0 && !*flagHelp {
			return 1
		}
		return 0
	}

	cmdName := commandAndArgs[0]
	var cmd *Command
	for _, c := range commands {
		if c.Name() == cmdName {
			cmd = c
			break
		}
	}
	if cmd == nil {
		fmt.Fprintln(errOut, "error: unknown command:", cmdName)
		printUsage(errOut)
		return 1
	}

	dir := *flagDir
	if dir == "" {
		dir = os.Getenv(appctx.EnvStorageDir)
	}
	if dir == "" {
		fmt.Fprintln(errOut, "error: storage directory required (--dir or SIMSAPA_DIR)")
		return 1
	}

	log := logrus.New()
	if *flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	ac, err := appctx.New(store.Config{Dir: dir, PoolSize: *flagPoolSize, Bootstrap: true}, log)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer ac.Close()

	return cmd.Run(context.Background(), ac, out, errOut, commandAndArgs[1:])
}

func allCommands() []*Command {
	return []*Command{
		StardictCmd(),
		EpubCmd(),
		PDFCmd(),
		TipitakaCmd(),
		FTSCmd(),
	}
}

const globalOptionsHelp = `  -h, --help             Show help
  --dir <dir>            Storage directory (overrides SIMSAPA_DIR)
  --pool-size <n>        Connection pool size per store (default 4)
  -v, --verbose          Log at debug level`

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "simsapa-import - bootstrap importer for the Tipitaka study engine stores")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: simsapa-import [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, globalOptionsHelp)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range allCommands() {
		fmt.Fprintln(w, c.HelpLine())
	}
}
