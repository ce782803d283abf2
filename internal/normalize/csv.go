package normalize

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseSpecsCSV reads a header row followed by one equipment record per row.
// Column names go through the same alias folding as Normalize. Rows the CSV
// reader cannot decode are reported and skipped; field validation is left to
// Normalize so each record fails on its own.
func ParseSpecsCSV(r io.Reader) ([]Raw, []string) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, []string{"empty file"}
		}
		return nil, []string{"failed to read header"}
	}
	index := HeaderIndex(headers)

	var errs []string
	var out []Raw
	line := 1
	for {
		rec, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		if blankRecord(rec) {
			continue
		}
		raw := make(Raw, len(index))
		for name, pos := range index {
			if pos < len(rec) {
				raw[name] = strings.TrimSpace(rec[pos])
			}
		}
		out = append(out, raw)
	}
	return out, errs
}

// HeaderIndex maps each normalized column name to its first position.
func HeaderIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		k := NormalizeKey(h)
		if k == "" {
			continue
		}
		if _, dup := idx[k]; dup {
			continue
		}
		idx[k] = i
	}
	return idx
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
