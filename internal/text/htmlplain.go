package text

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToPlainText strips tags and collapses whitespace, the shared
// extraction step the EPUB and StarDict importers both need for FTS5
// indexing.
func HTMLToPlainText(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
