package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/simsapa/tipitaka-engine/internal/appctx"
)

// FTSCmd runs the static FTS5 population script (§4.1), the step a
// bootstrap run performs once after the importers above finish a batch.
func FTSCmd() *Command {
	fs := flag.NewFlagSet("fts", flag.ContinueOnError)
	return &Command{
		Flags: fs,
		Usage: "fts",
		Short: "Populate suttas_fts/dict_words_fts after a bootstrap batch",
		Exec: func(ctx context.Context, ac *appctx.AppContext, out io.Writer, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("fts takes no positional arguments")
			}
			if err := ac.Store.PopulateFTS(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "FTS5 indexes populated")
			return nil
		},
	}
}
