package tipitaka

import (
	"bufio"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
)

// suttaBoundary is one paragraph-range boundary for a single XML file: the
// CST paragraph number a sutta starts at, and the SuttaCentral code it
// maps to. A sutta's content runs from StartParanum up to (but not
// including) the next boundary's StartParanum in the same file, matching
// uid_generator.rs's SuttaBoundary as consumed by
// tipitaka_xml_parser_tsv/integration.rs's process_file.
type suttaBoundary struct {
	CstCode      string
	ScCode       string
	StartParanum int
}

// cstMapping maps (cst_file, cst_code) pairs to SuttaCentral-style codes
// and each file's paragraph-number sutta boundaries, loaded from the
// project's cst-vs-sc.tsv asset, matching uid_generator.rs's CstMapping.
type cstMapping struct {
	fileCodeMap    map[[2]string]string
	fileBoundaries map[string][]suttaBoundary
}

// loadCstMapping reads a TSV with the same column layout as cst-vs-sc.tsv:
// column 0 = cst_code, column 6 = cst_paranum, column 11 = cst_file path
// (basename used as key), column 12 = the SuttaCentral code, matching
// uid_generator.rs's CstMapping::load_from_tsv. Rows whose paranum column
// doesn't parse as an integer still populate the code lookup but are
// excluded from the boundary table, matching the original's behavior of
// silently dropping malformed paranum rows from file_boundaries.
func loadCstMapping(tsvPath string) (*cstMapping, error) {
	f, err := os.Open(tsvPath)
	if err != nil {
		return nil, corerr.Wrap(corerr.Import, "tipitaka", err)
	}
	defer f.Close()

	m := &cstMapping{
		fileCodeMap:    map[[2]string]string{},
		fileBoundaries: map[string][]suttaBoundary{},
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue // header row
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 13 {
			continue
		}
		cstCode := fields[0]
		cstParanumStr := fields[6]
		cstFile := fields[11]
		code := fields[12]

		filename := cstFile
		if idx := strings.LastIndex(cstFile, "/"); idx >= 0 {
			filename = cstFile[idx+1:]
		}
		m.fileCodeMap[[2]string{filename, cstCode}] = code

		if paranum, err := strconv.Atoi(strings.TrimSpace(cstParanumStr)); err == nil {
			m.fileBoundaries[filename] = append(m.fileBoundaries[filename], suttaBoundary{
				CstCode:      cstCode,
				ScCode:       code,
				StartParanum: paranum,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, corerr.Wrap(corerr.Import, "tipitaka", err)
	}
	for filename, bounds := range m.fileBoundaries {
		sort.Slice(bounds, func(i, j int) bool { return bounds[i].StartParanum < bounds[j].StartParanum })
		m.fileBoundaries[filename] = bounds
	}
	return m, nil
}

// generateCode returns the bare SuttaCentral code for a known
// (xmlFilename, cstCode) pair, matching CstMapping::generate_code. Unlike
// generate_uid, it leaves off the "/pli/cst4" source suffix and any
// ".att"/".tik" commentary suffix so the caller can compose those itself,
// matching how process_file builds uid_code from boundary.sc_code.
func (m *cstMapping) generateCode(xmlFilename, cstCode string) (string, bool) {
	code, ok := m.fileCodeMap[[2]string{xmlFilename, cstCode}]
	return code, ok
}

// suttaBoundaries returns the paragraph-range boundaries known for a
// file, sorted by StartParanum, matching CstMapping::get_sutta_boundaries.
// ok is false when the file has no TSV coverage at all, meaning its
// import must be skipped rather than guessed at.
func (m *cstMapping) suttaBoundaries(xmlFilename string) ([]suttaBoundary, bool) {
	bounds, ok := m.fileBoundaries[xmlFilename]
	if !ok || len(bounds) == 0 {
		return nil, false
	}
	return bounds, true
}

// detectCommentarySuffix reports the commentary/sub-commentary UID
// suffix implied by a VRI-CST filename, matching integration.rs's
// detect_commentary_suffix.
func detectCommentarySuffix(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".att.xml"):
		return ".att"
	case strings.HasSuffix(filename, ".tik.xml"):
		return ".tik"
	default:
		return ""
	}
}

// normalizeFilenameForMapping rewrites a commentary/sub-commentary
// filename to its root text's filename so it can be looked up in
// cst-vs-sc.tsv, which only carries mūla rows, matching integration.rs's
// normalize_filename_for_mapping.
func normalizeFilenameForMapping(filename string) string {
	switch {
	case strings.HasSuffix(filename, "a.att.xml"):
		return strings.TrimSuffix(filename, "a.att.xml") + "m.mul.xml"
	case strings.HasSuffix(filename, "t.tik.xml"):
		return strings.TrimSuffix(filename, "t.tik.xml") + "m.mul.xml"
	default:
		return filename
	}
}
