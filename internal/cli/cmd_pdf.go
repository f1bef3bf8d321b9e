package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/simsapa/tipitaka-engine/internal/appctx"
	"github.com/simsapa/tipitaka-engine/internal/importer/book"
)

// PDFCmd imports one PDF into the userdata store's Book tables, with the
// Info/XMP metadata overrides ImportPDF accepts.
func PDFCmd() *Command {
	fs := flag.NewFlagSet("pdf", flag.ContinueOnError)
	title := fs.String("title", "", "Override the extracted title")
	author := fs.String("author", "", "Override the extracted author")
	language := fs.String("language", "", "Override the extracted language")

	return &Command{
		Flags: fs,
		Usage: "pdf [flags] <pdf-path> <book-uid>",
		Short: "Import a PDF book",
		Exec: func(ctx context.Context, ac *appctx.AppContext, out io.Writer, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <pdf-path> <book-uid>, got %d args", len(args))
			}
			imported, err := book.ImportPDF(args[0], args[1], *title, *author, *language)
			if err != nil {
				return err
			}
			if err := ac.Store.InsertBook(ctx, imported.Book, imported.Spine, imported.Resources); err != nil {
				return err
			}
			fmt.Fprintf(out, "imported book %q (author=%q, language=%q)\n",
				imported.Book.UID, imported.Book.Author, imported.Book.Language)
			return nil
		},
	}
}
