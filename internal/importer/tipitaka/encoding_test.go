package tipitaka

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeXMLBytesUTF8NoBOM(t *testing.T) {
	got, err := decodeXMLBytes([]byte("ABC"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "ABC" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeXMLBytesUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
	got, err := decodeXMLBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeXMLBytesUTF16LEBOM(t *testing.T) {
	raw := []byte{0xFF, 0xFE, 'A', 0x00, 'B', 0x00}
	got, err := decodeXMLBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "AB" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeXMLBytesUTF16BEBOM(t *testing.T) {
	raw := []byte{0xFE, 0xFF, 0x00, 'A', 0x00, 'B'}
	got, err := decodeXMLBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "AB" {
		t.Errorf("got %q", got)
	}
}

func TestReadXMLFileCRLFToLF(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sample.xml")
	if err := os.WriteFile(p, []byte("Line 1\r\nLine 2\r\nLine 3"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := readXMLFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Line 1\nLine 2\nLine 3" {
		t.Errorf("got %q", got)
	}
}
