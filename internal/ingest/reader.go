package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// RawRow is an untyped mapping of header name to cell value, as produced by
// the CSV reader. Column names are not guaranteed; the Normalizer resolves
// them heuristically.
type RawRow map[string]string

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidate delimiters, checked against the header line. Comma wins ties.
var delimiters = []rune{',', '\t', ';', '|'}

// DetectDelimiter picks the delimiter with the most occurrences in the first
// line. Files with a single column fall back to comma.
func DetectDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}

	best := ','
	bestCount := 0
	for _, d := range delimiters {
		count := bytes.Count(line, []byte(string(d)))
		if count > bestCount {
			best = d
			bestCount = count
		}
	}
	return best
}

// ReadRows decodes CSV bytes into RawRows. The first line is treated as the
// header; the delimiter is auto-detected and a UTF-8 BOM is tolerated.
// Returns ErrParse when the file is structurally unreadable.
func ReadRows(data []byte) ([]RawRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrParse)
	}

	delim := DetectDelimiter(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrParse, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	log.Debug().
		Str("delimiter", string(delim)).
		Strs("header", header).
		Msg("parsed CSV header")

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("%w: reading record: %v", ErrParse, err)
		}

		row := make(RawRow, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
