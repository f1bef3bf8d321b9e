package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/simsapa/tipitaka-engine/internal/appctx"
	"github.com/simsapa/tipitaka-engine/internal/importer/tipitaka"
)

// TipitakaCmd imports one or more VRI-CST XML files into the appdata
// store's suttas table, using a single cst-vs-sc.tsv mapping shared
// across the whole run (§4.7/§9: files without TSV coverage are skipped
// with an error, never guessed).
func TipitakaCmd() *Command {
	fs := flag.NewFlagSet("tipitaka", flag.ContinueOnError)
	tsvPath := fs.String("tsv", "", "Path to cst-vs-sc.tsv")

	return &Command{
		Flags: fs,
		Usage: "tipitaka --tsv <cst-vs-sc.tsv> <xml-file>...",
		Short: "Import VRI-CST XML files into the suttas table",
		Exec: func(ctx context.Context, ac *appctx.AppContext, out io.Writer, args []string) error {
			if *tsvPath == "" {
				return fmt.Errorf("--tsv is required")
			}
			if len(args) == 0 {
				return fmt.Errorf("expected at least one XML file")
			}

			imp, err := tipitaka.NewImporter(*tsvPath)
			if err != nil {
				return err
			}

			var imported, failed int
			for _, xmlPath := range args {
				result, err := imp.ImportFile(xmlPath)
				if err != nil {
					ac.Log.WithError(err).WithField("file", xmlPath).Warn("tipitaka import skipped")
					failed++
					continue
				}
				for _, s := range result.Suttas {
					if err := ac.Store.InsertSutta(ctx, s); err != nil {
						return fmt.Errorf("%s: %w", xmlPath, err)
					}
				}
				imported += len(result.Suttas)
				fmt.Fprintf(out, "%s: imported %d suttas (%s)\n", xmlPath, len(result.Suttas), result.Nikaya)
			}

			fmt.Fprintf(out, "total: %d suttas imported, %d files skipped\n", imported, failed)
			return nil
		},
	}
}
