package tipitaka

import (
	"os"
	"path/filepath"
	"testing"
)

func TestImportFileEndToEnd(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "s0201m.mul.xml")
	if err := os.WriteFile(xmlPath, []byte(mnSampleXML), 0o644); err != nil {
		t.Fatal(err)
	}
	tsvPath := writeTSV(t, dir, []string{
		tsvRow("mn1.1.1", "1", "romn/s0201m.mul.xml", "mn1"),
	})

	imp, err := NewImporter(tsvPath)
	if err != nil {
		t.Fatal(err)
	}
	result, err := imp.ImportFile(xmlPath)
	if err != nil {
		t.Fatal(err)
	}
	if result.Nikaya != "majjhima" {
		t.Errorf("nikaya = %q", result.Nikaya)
	}
	if len(result.Levels) != 4 || result.Levels[2] != "vagga" {
		t.Errorf("levels = %v", result.Levels)
	}
	if len(result.Suttas) != 1 {
		t.Fatalf("expected 1 sutta, got %d", len(result.Suttas))
	}
	s := result.Suttas[0]
	if s.UID != "mn1/pli/cst4" {
		t.Errorf("uid = %q", s.UID)
	}
	if s.SuttaRef != "MN1 1" {
		t.Errorf("sutta ref = %q", s.SuttaRef)
	}
	if s.SourceUID != "cst4" || s.Language != "pli" {
		t.Errorf("source/language = %q/%q", s.SourceUID, s.Language)
	}
	if s.Title != "1. Mūlapariyāyasuttaṃ" {
		t.Errorf("title = %q", s.Title)
	}
	if s.ContentPlain == "" || s.ContentHTML == "" {
		t.Errorf("expected non-empty content, got plain=%q html=%q", s.ContentPlain, s.ContentHTML)
	}
	if Reconstruct(result.Fragments) != mnSampleXML {
		t.Errorf("fragment reconstruction mismatch")
	}
}

func TestImportFileNoTSVCoverageIsSkippedWithError(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "s0201m.mul.xml")
	if err := os.WriteFile(xmlPath, []byte(mnSampleXML), 0o644); err != nil {
		t.Fatal(err)
	}
	// TSV exists but carries no paragraph-range boundary for this file.
	tsvPath := writeTSV(t, dir, nil)

	imp, err := NewImporter(tsvPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := imp.ImportFile(xmlPath); err == nil {
		t.Fatal("expected an error instead of a guessed UID when no TSV boundaries exist")
	}
}

func TestImportFileUnknownNikaya(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "bad.xml")
	if err := os.WriteFile(xmlPath, []byte(`<text><body><p rend="nikaya">Unknown Text</p></body></text>`), 0o644); err != nil {
		t.Fatal(err)
	}
	tsvPath := writeTSV(t, dir, nil)
	imp, err := NewImporter(tsvPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := imp.ImportFile(xmlPath); err == nil {
		t.Fatal("expected error for unknown nikaya")
	}
}

func TestImportFileDighaUsesChapterHeadBoundary(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "s0101m.mul.xml")
	if err := os.WriteFile(xmlPath, []byte(dnSampleXML), 0o644); err != nil {
		t.Fatal(err)
	}
	tsvPath := writeTSV(t, dir, []string{
		tsvRow("dn1.1.1", "1", "romn/s0101m.mul.xml", "dn1"),
		tsvRow("dn1.1.2", "50", "romn/s0101m.mul.xml", "dn2"),
	})

	imp, err := NewImporter(tsvPath)
	if err != nil {
		t.Fatal(err)
	}
	result, err := imp.ImportFile(xmlPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Suttas) != 2 {
		t.Fatalf("expected 2 suttas from <head rend=\"chapter\"> boundaries, got %d", len(result.Suttas))
	}
	if result.Suttas[0].UID != "dn1/pli/cst4" || result.Suttas[1].UID != "dn2/pli/cst4" {
		t.Errorf("uids = %q, %q", result.Suttas[0].UID, result.Suttas[1].UID)
	}
	if Reconstruct(result.Fragments) != dnSampleXML {
		t.Errorf("fragment reconstruction mismatch for digha sample")
	}
}

func TestImportFileCommentarySuffixAppended(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "s0101a.att.xml")
	if err := os.WriteFile(xmlPath, []byte(commentarySampleXML), 0o644); err != nil {
		t.Fatal(err)
	}
	// The TSV only carries the mūla filename; normalizeFilenameForMapping
	// must rewrite s0101a.att.xml to s0101m.mul.xml to find it.
	tsvPath := writeTSV(t, dir, []string{
		tsvRow("dn1.1.1", "1", "romn/s0101m.mul.xml", "dn1"),
		tsvRow("dn1.1.2", "50", "romn/s0101m.mul.xml", "dn2"),
	})

	imp, err := NewImporter(tsvPath)
	if err != nil {
		t.Fatal(err)
	}
	result, err := imp.ImportFile(xmlPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Suttas) != 2 {
		t.Fatalf("expected 2 suttas, got %d", len(result.Suttas))
	}
	if result.Suttas[0].UID != "dn1.att/pli/cst4" || result.Suttas[1].UID != "dn2.att/pli/cst4" {
		t.Errorf("uids = %q, %q, want .att suffix", result.Suttas[0].UID, result.Suttas[1].UID)
	}
	if Reconstruct(result.Fragments) != commentarySampleXML {
		t.Errorf("fragment reconstruction mismatch for commentary sample")
	}
}
