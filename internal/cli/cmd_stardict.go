package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/simsapa/tipitaka-engine/internal/appctx"
	"github.com/simsapa/tipitaka-engine/internal/importer/stardict"
)

// importChunkSize matches the ~5000-row chunked-transaction discipline
// §4.1/§5 require of bulk importers.
const importChunkSize = 5000

// StardictCmd imports one StarDict dictionary (.ifo/.idx/.dict triple)
// into the dictionaries store.
func StardictCmd() *Command {
	fs := flag.NewFlagSet("stardict", flag.ContinueOnError)
	language := fs.String("language", "en", "Language code for the imported words")
	limit := fs.Int("limit", 0, "Limit the number of entries imported (0 = no limit)")

	return &Command{
		Flags: fs,
		Usage: "stardict [flags] <dict-dir> <label>",
		Short: "Import a StarDict dictionary (.ifo/.idx/.dict)",
		Exec: func(ctx context.Context, ac *appctx.AppContext, out io.Writer, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <dict-dir> <label>, got %d args", len(args))
			}
			dictDir, label := args[0], args[1]

			result, err := stardict.Import(stardict.ImportOptions{
				DictDir:  dictDir,
				Label:    label,
				Language: *language,
				Limit:    *limit,
			})
			if err != nil {
				return err
			}

			if err := ac.Store.UpsertDictionary(ctx, result.Dictionary); err != nil {
				return err
			}
			for _, w := range result.Words {
				w.DictionaryID = result.Dictionary.ID
			}
			for chunk := range chunks(result.Words, importChunkSize) {
				if err := ac.Store.InsertDictWordsChunk(ctx, chunk); err != nil {
					return err
				}
			}

			fmt.Fprintf(out, "imported %d words into dictionary %q (id=%d)\n",
				len(result.Words), result.Dictionary.Label, result.Dictionary.ID)
			return nil
		},
	}
}

// chunks splits items into slices of at most size, yielded in order.
func chunks[T any](items []T, size int) func(func([]T) bool) {
	return func(yield func([]T) bool) {
		for i := 0; i < len(items); i += size {
			end := i + size
			if end > len(items) {
				end = len(items)
			}
			if !yield(items[i:end]) {
				return
			}
		}
	}
}
