package calibration

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/normalize"
)

// RowIssue describes a calibration row that was skipped.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Row is a decoded calibration row. Line is the CSV line number for file and
// reader sources and the 1-based row position for the others, so issues from
// decoding and from validation share one numbering.
type Row struct {
	Line  int
	Entry models.RateCalibrationEntry
}

// Source yields raw calibration rows. Rows that cannot be decoded at all are
// reported as issues; semantic checks happen in the loader.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Row, []RowIssue, error)
}

func positional(entries []models.RateCalibrationEntry) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{Line: i + 1, Entry: e}
	}
	return rows
}

var requiredColumns = []string{"region", "crane_type", "capacity_low", "capacity_high", "bare_monthly_rate", "operated_ratio"}

// CSVSource reads the calibration table from a file on disk.
type CSVSource struct {
	Path string
}

func (s CSVSource) Name() string { return "file:" + s.Path }

func (s CSVSource) Fetch(ctx context.Context) ([]Row, []RowIssue, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return parseCSV(f, filepath.Base(s.Path))
}

// ReaderSource holds an in-memory copy of a CSV document so it can be read
// more than once across retries.
type ReaderSource struct {
	Label string
	data  []byte
}

func NewReaderSource(label string, r io.Reader) (*ReaderSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read calibration upload: %w", err)
	}
	return &ReaderSource{Label: label, data: data}, nil
}

func (s *ReaderSource) Name() string { return "reader:" + s.Label }

func (s *ReaderSource) Fetch(ctx context.Context) ([]Row, []RowIssue, error) {
	return parseCSV(bytes.NewReader(s.data), s.Label)
}

// RateStore is the subset of the reference-data store used for calibration.
type RateStore interface {
	ListRateCalibration(ctx context.Context) ([]models.RateCalibrationEntry, error)
}

type StoreSource struct {
	Store RateStore
}

func (s StoreSource) Name() string { return "db:rate_calibration" }

func (s StoreSource) Fetch(ctx context.Context) ([]Row, []RowIssue, error) {
	if s.Store == nil {
		return nil, nil, errors.New("no database configured")
	}
	entries, err := s.Store.ListRateCalibration(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range entries {
		if entries[i].Source == "" {
			entries[i].Source = "rate_calibration"
		}
	}
	return positional(entries), nil, nil
}

type BuiltinSource struct{}

func (BuiltinSource) Name() string { return BuiltinName }

func (BuiltinSource) Fetch(ctx context.Context) ([]Row, []RowIssue, error) {
	return positional(builtinEntries()), nil, nil
}

func parseCSV(r io.Reader, defaultSource string) ([]Row, []RowIssue, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("calibration csv is empty")
		}
		return nil, nil, fmt.Errorf("read calibration header: %w", err)
	}
	idx := normalize.HeaderIndex(headers)
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("calibration csv missing columns: %s", strings.Join(missing, ", "))
	}

	var (
		out    []Row
		issues []RowIssue
	)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			line := 0
			if errors.As(err, &perr) {
				line = perr.StartLine
			}
			issues = append(issues, RowIssue{Row: line, Reason: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		get := func(name string) string {
			if i, ok := idx[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if get("region") == "" && get("crane_type") == "" && get("capacity_low") == "" {
			continue
		}

		var bad []string
		num := func(name string) float64 {
			v, err := strconv.ParseFloat(strings.ReplaceAll(get(name), ",", ""), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				bad = append(bad, name)
				return 0
			}
			return v
		}
		e := models.RateCalibrationEntry{
			Region:          models.Region(get("region")),
			CraneType:       models.CraneType(get("crane_type")),
			CapacityLow:     num("capacity_low"),
			CapacityHigh:    num("capacity_high"),
			BareMonthlyRate: num("bare_monthly_rate"),
			OperatedRatio:   num("operated_ratio"),
			Source:          get("source"),
		}
		if len(bad) > 0 {
			issues = append(issues, RowIssue{Row: line, Reason: "invalid number in " + strings.Join(bad, ", ")})
			continue
		}
		if e.Source == "" {
			e.Source = defaultSource
		}
		out = append(out, Row{Line: line, Entry: e})
	}
	return out, issues, nil
}
