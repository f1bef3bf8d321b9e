package cli

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestRunNoArgsPrintsUsageAndFails(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run(nil, &out, &errOut)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !bytes.Contains(out.Bytes(), []byte("simsapa-import")) {
		t.Errorf("usage not printed: %q", out.String())
	}
}

func TestRunHelpFlagPrintsUsageAndSucceeds(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"--help"}, &out, &errOut)
	if code != 0 {
		t.Errorf("exit code = %d, want 0, stderr=%q", code, errOut.String())
	}
	if !bytes.Contains(out.Bytes(), []byte("Commands:")) {
		t.Errorf("command list not printed: %q", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"--dir", t.TempDir(), "bogus"}, &out, &errOut)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !bytes.Contains(errOut.Bytes(), []byte("unknown command: bogus")) {
		t.Errorf("unexpected stderr: %q", errOut.String())
	}
}

func TestRunMissingDirFails(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"fts"}, &out, &errOut)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !bytes.Contains(errOut.Bytes(), []byte("storage directory required")) {
		t.Errorf("unexpected stderr: %q", errOut.String())
	}
}

func TestRunFTSCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"--dir", t.TempDir(), "fts"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%q", code, errOut.String())
	}
	if !bytes.Contains(out.Bytes(), []byte("FTS5 indexes populated")) {
		t.Errorf("unexpected stdout: %q", out.String())
	}
}

func writeStardictFixture(t *testing.T, dir, label string) {
	t.Helper()
	ifo := "StarDict's dict ifo file\nbookname=" + label + "\nsametypesequence=m\n"
	if err := os.WriteFile(filepath.Join(dir, label+".ifo"), []byte(ifo), 0o644); err != nil {
		t.Fatal(err)
	}
	dictData := []byte("dhammo\x00")
	if err := os.WriteFile(filepath.Join(dir, label+".dict"), dictData, 0o644); err != nil {
		t.Fatal(err)
	}

	var idx bytes.Buffer
	idx.WriteString("dhamma")
	idx.WriteByte(0)
	var offsetBuf, sizeBuf [4]byte
	binary.BigEndian.PutUint32(offsetBuf[:], 0)
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(dictData)-1))
	idx.Write(offsetBuf[:])
	idx.Write(sizeBuf[:])
	if err := os.WriteFile(filepath.Join(dir, label+".idx"), idx.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunStardictCommandEndToEnd(t *testing.T) {
	storeDir := t.TempDir()
	dictDir := t.TempDir()
	writeStardictFixture(t, dictDir, "mini")

	var out, errOut bytes.Buffer
	code := Run([]string{"--dir", storeDir, "stardict", "--language", "pli", dictDir, "mini"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%q", code, errOut.String())
	}
	if !bytes.Contains(out.Bytes(), []byte(`imported 1 words into dictionary "mini"`)) {
		t.Errorf("unexpected stdout: %q", out.String())
	}
}

func TestRunStardictCommandWrongArgCount(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"--dir", t.TempDir(), "stardict", "onlyonearg"}, &out, &errOut)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !bytes.Contains(errOut.Bytes(), []byte("expected <dict-dir> <label>")) {
		t.Errorf("unexpected stderr: %q", errOut.String())
	}
}
