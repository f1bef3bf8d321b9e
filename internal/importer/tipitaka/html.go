package tipitaka

import (
	"fmt"
	"html"
	"strings"
)

// transformToHTML renders a sutta's paragraphs to the same inline markup
// tipitaka.org's own XSL produces, matching html_transformer.rs's
// transform_to_html. html.EscapeString is the stdlib's own escaper; no
// pack example builds HTML output strings, so there is no ecosystem
// precedent to follow for the escaping step itself.
func transformToHTML(paragraphs []paragraph) string {
	var sb strings.Builder
	for _, p := range paragraphs {
		class := p.Rend
		if class == "centre" {
			class = "centered"
		}
		sb.WriteString(fmt.Sprintf(`<p class="%s">`, class))
		if p.HasN {
			sb.WriteString(fmt.Sprintf(`<span class="paranum">%s</span> `, p.N))
		}
		for _, node := range p.Content {
			sb.WriteString(transformContentNode(node))
		}
		sb.WriteString("</p>\n")
	}
	return sb.String()
}

func transformContentNode(n contentNode) string {
	switch n.Kind {
	case "hi":
		return fmt.Sprintf(`<span class="%s">%s</span>`, n.Rend, html.EscapeString(n.Text))
	case "note":
		return fmt.Sprintf(`<span class="note">[%s]</span>`, html.EscapeString(n.Text))
	case "pb":
		return fmt.Sprintf(`<span class="pagebreak" data-ed="%s" data-n="%s"></span>`, n.Ed, n.N)
	default:
		return html.EscapeString(n.Text)
	}
}

// extractPlainText strips all markup down to a single FTS5-ready text
// blob, matching html_transformer.rs's extract_plain_text: notes and
// page breaks are dropped, and every paragraph ends on its own line.
func extractPlainText(paragraphs []paragraph) string {
	var sb strings.Builder
	for _, p := range paragraphs {
		for _, node := range p.Content {
			switch node.Kind {
			case "text", "hi":
				sb.WriteString(node.Text)
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}
