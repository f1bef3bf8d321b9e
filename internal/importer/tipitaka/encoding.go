// Package tipitaka implements the VRI-CST XML importer (C8), grounded on
// original_source/cli/src/tipitaka_xml_parser/*.rs and
// tipitaka_xml_parser_tsv/*.rs. parseXML/html.go port the tree-based
// parse+transform pipeline (xml_parser.rs/html_transformer.rs) that turns
// a file into Sutta rows; fragment.go ports the byte-offset
// fragment/reconstruction pipeline (fragment_parser.rs/types.rs/
// fragment_reconstructor.rs) that backs the byte-exact archival copy
// alongside it. buildSuttas in import.go groups paragraphs by the
// cst-vs-sc.tsv paragraph-range boundaries the way
// tipitaka_xml_parser_tsv/integration.rs's process_file does, rather than
// by the tree's own subhead/chapter markers alone.
package tipitaka

import (
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
)

// readXMLFile reads path, detects its encoding from a BOM, decodes to
// UTF-8, and normalizes CRLF to LF, matching encoding.rs's
// read_xml_file/detect_encoding.
func readXMLFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", corerr.Wrap(corerr.Import, "tipitaka", err)
	}

	text, err := decodeXMLBytes(raw)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}

func decodeXMLBytes(raw []byte) (string, error) {
	switch {
	case len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE:
		return decodeUTF16(raw[2:], unicode.LittleEndian)
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		return decodeUTF16(raw[2:], unicode.BigEndian)
	case len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF:
		return string(raw[3:]), nil
	default:
		return string(raw), nil
	}
}

func decodeUTF16(raw []byte, endianness unicode.Endianness) (string, error) {
	dec := unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", corerr.Wrap(corerr.Decode, "tipitaka", err)
	}
	return string(out), nil
}
