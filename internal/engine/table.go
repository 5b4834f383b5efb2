package engine

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Table is a rectangular view of a source file. Headers holds the first
// record; Rows holds everything after it. Rows are ragged: short rows are
// preserved as-is and padded logically at access time.
type Table struct {
	Headers []string
	Rows    [][]string
}

// LoadTable parses raw file bytes into a Table, dispatching on the file
// extension. ".xlsx", ".xlsm" and ".xltx" go through the workbook reader;
// everything else is treated as delimited text.
func LoadTable(name string, data []byte) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx":
		return LoadWorkbook(data)
	default:
		return LoadCSV(data)
	}
}

// LoadCSV parses delimited text. The delimiter is sniffed from the header
// line (comma, semicolon, tab or pipe), quoting is lenient, and records may
// vary in width. Input that is not valid UTF-8 is decoded as Windows-1252,
// the usual culprit for legacy retail exports.
func LoadCSV(data []byte) (*Table, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing delimited text: %w", err)
	}

	t := &Table{}
	for _, rec := range records {
		for i, cell := range rec {
			rec[i] = CleanCell(cell)
		}
		if isEmptyRow(rec) {
			continue
		}
		if t.Headers == nil {
			t.Headers = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	if t.Headers == nil {
		return nil, fmt.Errorf("no header row found")
	}
	return t, nil
}

// LoadWorkbook parses the first sheet of an Excel workbook.
func LoadWorkbook(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	t := &Table{}
	for _, row := range rows {
		for i, cell := range row {
			row[i] = CleanCell(cell)
		}
		if isEmptyRow(row) {
			continue
		}
		if t.Headers == nil {
			t.Headers = row
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if t.Headers == nil {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}
	return t, nil
}

// CleanCell strips the artifacts spreadsheet tools wrap around values:
// leading formula markers, symmetric quoting, and surrounding whitespace.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF")
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// sniffDelimiter counts candidate delimiters on the header line, ignoring
// anything inside double quotes, and picks the most frequent. Comma wins
// ties and empty input.
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		line = text[:i]
	}
	counts := map[rune]int{}
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == ',' || r == ';' || r == '\t' || r == '|':
			counts[r]++
		}
	}
	best := ','
	for _, cand := range []rune{',', ';', '\t', '|'} {
		if counts[cand] > counts[best] {
			best = cand
		}
	}
	return best
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cell returns the value at idx, or "" when idx is unset or past the end of
// a short row.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
