package stardict

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeIfo(t *testing.T, dir, label string, fields map[string]string) {
	t.Helper()
	var b bytes.Buffer
	b.WriteString("StarDict's dict ifo file\n")
	for k, v := range fields {
		b.WriteString(k + "=" + v + "\n")
	}
	if err := os.WriteFile(filepath.Join(dir, label+".ifo"), b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseIfo(t *testing.T) {
	dir := t.TempDir()
	writeIfo(t, dir, "testdict", map[string]string{
		"version":          "2.4.2",
		"bookname":         "Test Dictionary",
		"wordcount":        "2",
		"sametypesequence": "m",
	})
	ifo, err := parseIfo(filepath.Join(dir, "testdict.ifo"))
	if err != nil {
		t.Fatal(err)
	}
	if ifo.BookName != "Test Dictionary" || ifo.WordCount != 2 || ifo.SameTypeSequence != "m" || ifo.IdxOffsetBits != 32 {
		t.Errorf("unexpected ifo: %+v", ifo)
	}
}

func TestParseIfoMissingBookname(t *testing.T) {
	dir := t.TempDir()
	writeIfo(t, dir, "bad", map[string]string{"version": "1.0"})
	if _, err := parseIfo(filepath.Join(dir, "bad.ifo")); err == nil {
		t.Fatal("expected error for missing bookname")
	}
}

func TestParseSegmentsSameTypeSequence(t *testing.T) {
	blob := []byte("a plain definition\x00")
	segs := parseSegments(blob, "m")
	if len(segs) != 1 || segs[0].Type != 'm' || segs[0].Text != "a plain definition" {
		t.Errorf("unexpected segments: %+v", segs)
	}
}

func TestParseSegmentsMultiType(t *testing.T) {
	var blob []byte
	blob = append(blob, 'm')
	blob = append(blob, []byte("plain text\x00")...)
	blob = append(blob, 'h')
	blob = append(blob, []byte("<b>html</b>\x00")...)
	segs := parseSegments(blob, "")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Type != 'm' || segs[0].Text != "plain text" {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if segs[1].Type != 'h' || segs[1].Text != "<b>html</b>" {
		t.Errorf("segment 1 = %+v", segs[1])
	}
}

func TestParseSegmentsSizePrefixedType(t *testing.T) {
	var blob []byte
	blob = append(blob, 'W')
	sizeBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBuf, 3)
	blob = append(blob, sizeBuf...)
	blob = append(blob, []byte{1, 2, 3}...)
	blob = append(blob, 'm')
	blob = append(blob, []byte("fallback\x00")...)
	segs := parseSegments(blob, "")
	if len(segs) != 2 || segs[0].Type != 'W' || segs[1].Type != 'm' || segs[1].Text != "fallback" {
		t.Errorf("unexpected segments: %+v", segs)
	}
}

func TestParseWordPlain(t *testing.T) {
	blob := []byte("dhammo\x00")
	entry := parseWord("dhamma", blob, "m")
	if entry.DefinitionPlain != "dhammo" || entry.DefinitionHTML != "" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestParseWordHTMLRewritesBwordLinks(t *testing.T) {
	blob := []byte(`<a href="bword://dhamma">dhamma</a>` + "\x00")
	entry := parseWord("dhamma", blob, "h")
	if entry.DefinitionHTML != `<a href="ssp://words/dhamma">dhamma</a>` {
		t.Errorf("unexpected html: %q", entry.DefinitionHTML)
	}
	if entry.DefinitionPlain != "dhamma" {
		t.Errorf("unexpected derived plain text: %q", entry.DefinitionPlain)
	}
}

func TestParseWordFirstSegmentWins(t *testing.T) {
	var blob []byte
	blob = append(blob, 'm')
	blob = append(blob, []byte("first\x00")...)
	blob = append(blob, 'm')
	blob = append(blob, []byte("second\x00")...)
	entry := parseWord("w", blob, "")
	if entry.DefinitionPlain != "first" {
		t.Errorf("expected first segment to win, got %q", entry.DefinitionPlain)
	}
}

func TestRewriteBwordLinks(t *testing.T) {
	cases := map[string]string{
		"bword://localhost/foo": "ssp://words/foo",
		"bword://foo":           "ssp://words/foo",
		"no links here":         "no links here",
	}
	for in, want := range cases {
		if got := rewriteBwordLinks(in); got != want {
			t.Errorf("rewriteBwordLinks(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildDictWord(t *testing.T) {
	w := buildDictWord(Entry{Word: "dhammā", DefinitionPlain: "teachings"}, "testdict", "pli")
	if w.UID != "dhammā/testdict" {
		t.Errorf("uid = %q", w.UID)
	}
	if w.Synonyms != "dhamma" {
		t.Errorf("synonyms = %q, want latinized lowercase", w.Synonyms)
	}
	if w.WordASCII != "dhamma" {
		t.Errorf("word_ascii = %q", w.WordASCII)
	}
	if w.DictionaryID != 0 {
		t.Errorf("dictionary id should be left for the caller to assign, got %d", w.DictionaryID)
	}
}

func writeIdx(t *testing.T, path string, entries map[string][2]uint32) {
	t.Helper()
	var b bytes.Buffer
	for word, v := range entries {
		b.WriteString(word)
		b.WriteByte(0)
		var offsetBuf [4]byte
		binary.BigEndian.PutUint32(offsetBuf[:], v[0])
		b.Write(offsetBuf[:])
		var sizeBuf [4]byte
		binary.BigEndian.PutUint32(sizeBuf[:], v[1])
		b.Write(sizeBuf[:])
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImportEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeIfo(t, dir, "mini", map[string]string{
		"bookname":         "Mini Dictionary",
		"sametypesequence": "m",
	})

	dictData := []byte("dhammo\x00jhānaṃ\x00")
	if err := os.WriteFile(filepath.Join(dir, "mini.dict"), dictData, 0o644); err != nil {
		t.Fatal(err)
	}

	writeIdx(t, filepath.Join(dir, "mini.idx"), map[string][2]uint32{
		"dhamma": {0, 7},
		"jhana":  {7, 10},
	})

	result, err := Import(ImportOptions{DictDir: dir, Label: "mini", Language: "pli"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Dictionary.Label != "mini" || result.Dictionary.Title != "Mini Dictionary" {
		t.Errorf("unexpected dictionary: %+v", result.Dictionary)
	}
	if len(result.Words) != 2 {
		t.Fatalf("expected 2 words, got %d: %+v", len(result.Words), result.Words)
	}
}

func TestImportRespectsLimit(t *testing.T) {
	dir := t.TempDir()
	writeIfo(t, dir, "mini", map[string]string{
		"bookname":         "Mini Dictionary",
		"sametypesequence": "m",
	})
	dictData := []byte("dhammo\x00jhānaṃ\x00")
	if err := os.WriteFile(filepath.Join(dir, "mini.dict"), dictData, 0o644); err != nil {
		t.Fatal(err)
	}
	writeIdx(t, filepath.Join(dir, "mini.idx"), map[string][2]uint32{
		"dhamma": {0, 7},
		"jhana":  {7, 10},
	})

	result, err := Import(ImportOptions{DictDir: dir, Label: "mini", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Words) != 1 {
		t.Fatalf("expected limit to cap at 1 word, got %d", len(result.Words))
	}
}

func TestImportMissingIdx(t *testing.T) {
	dir := t.TempDir()
	writeIfo(t, dir, "mini", map[string]string{"bookname": "Mini"})
	if _, err := Import(ImportOptions{DictDir: dir, Label: "mini"}); err == nil {
		t.Fatal("expected error for missing .idx file")
	}
}
