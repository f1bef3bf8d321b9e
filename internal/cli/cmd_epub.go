package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/simsapa/tipitaka-engine/internal/appctx"
	"github.com/simsapa/tipitaka-engine/internal/importer/book"
)

// EpubCmd imports one EPUB into the userdata store's Book tables.
func EpubCmd() *Command {
	fs := flag.NewFlagSet("epub", flag.ContinueOnError)
	return &Command{
		Flags: fs,
		Usage: "epub <epub-path> <book-uid>",
		Short: "Import an EPUB book",
		Exec: func(ctx context.Context, ac *appctx.AppContext, out io.Writer, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <epub-path> <book-uid>, got %d args", len(args))
			}
			imported, err := book.ImportEPUB(args[0], args[1])
			if err != nil {
				return err
			}
			if err := ac.Store.InsertBook(ctx, imported.Book, imported.Spine, imported.Resources); err != nil {
				return err
			}
			fmt.Fprintf(out, "imported book %q: %d spine items, %d resources\n",
				imported.Book.UID, len(imported.Spine), len(imported.Resources))
			return nil
		},
	}
}
