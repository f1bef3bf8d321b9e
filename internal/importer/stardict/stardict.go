// Package stardict implements the StarDict dictionary importer (C8),
// grounded on original_source/backend/src/stardict_parse.rs. No Go
// library for the .ifo/.idx/.dict binary format appears anywhere in the
// example pack (the original used the Rust `stardict` crate), so the
// format is parsed directly against its public spec rather than through
// an unverified third-party call.
package stardict

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
	"github.com/simsapa/tipitaka-engine/internal/text"
)

// Ifo holds the fields of a .ifo file this importer cares about.
type Ifo struct {
	Version          string
	BookName         string
	WordCount        int
	IdxOffsetBits    int // 32 or 64
	SameTypeSequence string
}

func parseIfo(path string) (*Ifo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, corerr.Wrap(corerr.Import, "stardict", err)
	}
	ifo := &Ifo{IdxOffsetBits: 32}
	for i, line := range strings.Split(string(data), "\n") {
		if i == 0 {
			continue // magic header line, e.g. "StarDict's dict ifo file"
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "version":
			ifo.Version = value
		case "bookname":
			ifo.BookName = value
		case "wordcount":
			if n, err := strconv.Atoi(value); err == nil {
				ifo.WordCount = n
			}
		case "idxoffsetbits":
			if value == "64" {
				ifo.IdxOffsetBits = 64
			}
		case "sametypesequence":
			ifo.SameTypeSequence = value
		}
	}
	if ifo.BookName == "" {
		return nil, corerr.New(corerr.Import, "stardict", "ifo missing bookname: "+path)
	}
	return ifo, nil
}

type idxEntry struct {
	Word   string
	Offset uint64
	Size   uint32
}

// parseIdx reads the null-terminated-word + offset + size triples, per
// the StarDict .idx format; idxoffsetbits selects a 4- or 8-byte
// big-endian offset.
func parseIdx(raw []byte, ifo *Ifo) ([]idxEntry, error) {
	var entries []idxEntry
	br := bufio.NewReader(bytes.NewReader(raw))
	for {
		word, err := br.ReadString(0)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, corerr.Wrap(corerr.Import, "stardict", err)
		}
		word = strings.TrimSuffix(word, "\x00")

		var offset uint64
		if ifo.IdxOffsetBits == 64 {
			var buf [8]byte
			if _, err := io.ReadFull(br, buf[:]); err != nil {
				return nil, corerr.Wrap(corerr.Import, "stardict", err)
			}
			offset = binary.BigEndian.Uint64(buf[:])
		} else {
			var buf [4]byte
			if _, err := io.ReadFull(br, buf[:]); err != nil {
				return nil, corerr.Wrap(corerr.Import, "stardict", err)
			}
			offset = uint64(binary.BigEndian.Uint32(buf[:]))
		}

		var sizeBuf [4]byte
		if _, err := io.ReadFull(br, sizeBuf[:]); err != nil {
			return nil, corerr.Wrap(corerr.Import, "stardict", err)
		}
		entries = append(entries, idxEntry{Word: word, Offset: offset, Size: binary.BigEndian.Uint32(sizeBuf[:])})
	}
	return entries, nil
}

// readMaybeGzip transparently decompresses .idx.gz/.dict.dz (dictzip is
// gzip-compatible when read as a single stream).
func readMaybeGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, corerr.Wrap(corerr.Import, "stardict", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".dz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, corerr.Wrap(corerr.Import, "stardict", err)
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, corerr.Wrap(corerr.Import, "stardict", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, corerr.Wrap(corerr.Import, "stardict", err)
	}
	return data, nil
}

// firstExisting returns the first path that exists on disk.
func firstExisting(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, true
		}
	}
	return "", false
}

type segment struct {
	Type byte
	Text string
}

// parseSegments splits a .dict entry's raw bytes into its WordDefinition
// segments. When sameTypeSequence is set every entry is a single segment
// of that type with no per-segment type byte. Otherwise each segment is
// a type byte followed by either a null-terminated string (lowercase
// type) or a little-endian uint32 length prefix and that many raw bytes
// (uppercase type), per the StarDict format.
func parseSegments(blob []byte, sameTypeSequence string) []segment {
	if sameTypeSequence != "" {
		return []segment{{Type: sameTypeSequence[0], Text: string(bytes.TrimRight(blob, "\x00"))}}
	}

	var segs []segment
	i := 0
	for i < len(blob) {
		typ := blob[i]
		i++
		if typ >= 'A' && typ <= 'Z' {
			if i+4 > len(blob) {
				break
			}
			size := int(binary.LittleEndian.Uint32(blob[i : i+4]))
			i += 4
			if size < 0 || i+size > len(blob) {
				break
			}
			segs = append(segs, segment{Type: typ, Text: string(blob[i : i+size])})
			i += size
			continue
		}
		end := bytes.IndexByte(blob[i:], 0)
		if end < 0 {
			segs = append(segs, segment{Type: typ, Text: string(blob[i:])})
			break
		}
		segs = append(segs, segment{Type: typ, Text: string(blob[i : i+end])})
		i += end + 1
	}
	return segs
}

// Entry is the parsed result of one index/dict-data pair.
type Entry struct {
	Word            string
	DefinitionPlain string
	DefinitionHTML  string
}

// parseWord processes the *first* 'm' (plain) or 'h' (HTML) segment
// found for an entry, matching stardict_parse.rs's parse_word.
func parseWord(rawWord string, blob []byte, sameTypeSequence string) Entry {
	entry := Entry{Word: text.Niggahita(rawWord)}
	for _, seg := range parseSegments(blob, sameTypeSequence) {
		clean := text.Niggahita(seg.Text)
		switch seg.Type {
		case 'm':
			entry.DefinitionPlain = clean
			return entry
		case 'h':
			entry.DefinitionHTML = rewriteBwordLinks(clean)
			entry.DefinitionPlain = text.HTMLToPlainText(clean)
			return entry
		}
	}
	return entry
}

// rewriteBwordLinks replaces bword:// links with the internal ssp://
// words route, matching stardict_parse.rs's parse_bword_links_to_ssp.
func rewriteBwordLinks(html string) string {
	html = strings.ReplaceAll(html, "bword://localhost/", "ssp://words/")
	html = strings.ReplaceAll(html, "bword://", "ssp://words/")
	return html
}

// ImportOptions parameterizes Import.
type ImportOptions struct {
	DictDir  string // directory containing <Label>.ifo/.idx[.gz]/.dict[.dz]
	Label    string // dictionary label; unique, used to resolve file names and build uids
	Language string
	Limit    int // 0 = no limit
}

// ImportResult is the parsed dictionary plus its word rows, ready for
// store.Manager.UpsertDictionary + InsertDictWordsChunk. DictWord.
// DictionaryID is left zero; callers must set it from the Dictionary's
// assigned ID after UpsertDictionary, the same two-step pattern
// book.ImportedBook uses for its own foreign keys.
type ImportResult struct {
	Dictionary *model.Dictionary
	Words      []*model.DictWord
}

// Import reads opts.DictDir/opts.Label.{ifo,idx,dict} (optionally
// gzip-compressed .idx.gz/.dict.dz), extracts every index entry's first
// plain or HTML definition, and builds the DictWord rows per spec §4.7:
// a Latinized lowercase synonym is appended to each entry's synonym
// list, and bword:// links are rewritten to ssp://words/.
func Import(opts ImportOptions) (*ImportResult, error) {
	base := filepath.Join(opts.DictDir, opts.Label)

	ifo, err := parseIfo(base + ".ifo")
	if err != nil {
		return nil, err
	}

	idxPath, ok := firstExisting(base+".idx", base+".idx.gz")
	if !ok {
		return nil, corerr.New(corerr.Import, "stardict", "missing .idx for "+opts.Label)
	}
	idxRaw, err := readMaybeGzip(idxPath)
	if err != nil {
		return nil, err
	}
	idxEntries, err := parseIdx(idxRaw, ifo)
	if err != nil {
		return nil, err
	}

	dictPath, ok := firstExisting(base+".dict", base+".dict.dz")
	if !ok {
		return nil, corerr.New(corerr.Import, "stardict", "missing .dict for "+opts.Label)
	}
	dictData, err := readMaybeGzip(dictPath)
	if err != nil {
		return nil, err
	}

	words := make([]*model.DictWord, 0, len(idxEntries))
	for i, e := range idxEntries {
		if opts.Limit > 0 && i >= opts.Limit {
			break
		}
		end := e.Offset + uint64(e.Size)
		if end > uint64(len(dictData)) {
			continue
		}
		parsed := parseWord(e.Word, dictData[e.Offset:end], ifo.SameTypeSequence)
		if parsed.DefinitionPlain == "" && parsed.DefinitionHTML == "" {
			continue
		}
		words = append(words, buildDictWord(parsed, opts.Label, opts.Language))
	}

	return &ImportResult{
		Dictionary: &model.Dictionary{Label: opts.Label, Title: ifo.BookName},
		Words:      words,
	}, nil
}

func buildDictWord(e Entry, label, language string) *model.DictWord {
	latinSynonym := strings.ToLower(text.Latinize(e.Word))
	return &model.DictWord{
		UID:             model.DictWordUID(e.Word, label),
		Word:            e.Word,
		WordASCII:       text.PaliASCIIFold(e.Word),
		Language:        language,
		DefinitionPlain: e.DefinitionPlain,
		DefinitionHTML:  e.DefinitionHTML,
		Synonyms:        latinSynonym,
	}
}
