package registry

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"
)

// Row is one registry line: a display name and its raw aliases.
type Row struct {
	Name    string
	Aliases []string
}

var (
	delimiters = []rune{',', ';', '\t', '|'}
	aliasSplit = regexp.MustCompile(`[,|/;]\s*`)
)

const sniffWindow = 4096

// sniffDelimiter picks the candidate whose per-line count is most consistent
// across the sample. Ties go to the earlier candidate; no hit means comma.
func sniffDelimiter(sample string) rune {
	lines := make([]string, 0, 16)
	for _, l := range strings.Split(sample, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
		if len(lines) == 16 {
			break
		}
	}
	best, bestScore := ',', 0
	for _, d := range delimiters {
		counts := map[int]int{}
		for _, l := range lines {
			if n := strings.Count(l, string(d)); n > 0 {
				counts[n]++
			}
		}
		score := 0
		for _, c := range counts {
			if c > score {
				score = c
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func decodeText(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(raw), "�")
}

// ParseRows reads a delimited registry source. A header is recognized when any
// cell of the first row is in nameHeaders; otherwise column 0 is the name and
// there are no aliases.
func ParseRows(r io.Reader, nameHeaders, aliasHeaders []string) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := decodeText(raw)
	sample := text
	if len(sample) > sniffWindow {
		sample = sample[:sniffWindow]
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffDelimiter(sample)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// keep going on garbled lines
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return nil, err
		}
		if blankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, nil
	}

	nameIdx, aliasIdx := 0, -1
	data := records
	if hdr, ok := detectHeader(records[0], nameHeaders, aliasHeaders); ok {
		nameIdx, aliasIdx = hdr[0], hdr[1]
		data = records[1:]
	}

	rows := make([]Row, 0, len(data))
	for _, rec := range data {
		if nameIdx >= len(rec) {
			continue
		}
		name := strings.TrimSpace(rec[nameIdx])
		if name == "" {
			continue
		}
		row := Row{Name: name}
		if aliasIdx >= 0 && aliasIdx < len(rec) {
			for _, a := range aliasSplit.Split(strings.TrimSpace(rec[aliasIdx]), -1) {
				if a = strings.TrimSpace(a); a != "" {
					row.Aliases = append(row.Aliases, a)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func detectHeader(first, nameHeaders, aliasHeaders []string) ([2]int, bool) {
	idx := [2]int{-1, -1}
	for i, c := range first {
		h := strings.ToLower(strings.TrimSpace(c))
		if contains(nameHeaders, h) {
			idx[0] = i
		}
		if contains(aliasHeaders, h) {
			idx[1] = i
		}
	}
	return idx, idx[0] >= 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ReadFile parses path. A missing file yields no rows and no error.
func ReadFile(path string, nameHeaders, aliasHeaders []string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseRows(f, nameHeaders, aliasHeaders)
}
