package calibration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/normalize"
)

var ErrNoRows = errors.New("no valid calibration rows")

// DataLoadError is reported when a source could not produce a usable table.
type DataLoadError struct {
	Source   string
	Attempts int
	Err      error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load calibration from %s after %d attempt(s): %v", e.Source, e.Attempts, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

type LoadOptions struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxElapsed      time.Duration
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = 200 * time.Millisecond
	}
	if o.MaxElapsed <= 0 {
		o.MaxElapsed = 5 * time.Second
	}
	return o
}

type LoadReport struct {
	Source       string     `json:"source"`
	Attempts     int        `json:"attempts"`
	Loaded       int        `json:"loaded"`
	Skipped      int        `json:"skipped"`
	Issues       []RowIssue `json:"issues,omitempty"`
	FallbackUsed bool       `json:"fallback_used"`
	Error        string     `json:"error,omitempty"`
	LoadedAt     time.Time  `json:"loaded_at"`

	Err error `json:"-"`
}

type fetched struct {
	rows   []Row
	issues []RowIssue
}

// Load reads src with a bounded retry policy. It never fails: when the source
// stays unavailable or yields no valid rows the built-in table is returned and
// the report carries a *DataLoadError.
func Load(ctx context.Context, src Source, opts LoadOptions, logger zerolog.Logger) (*Table, LoadReport) {
	opts = opts.withDefaults()
	report := LoadReport{Source: src.Name(), LoadedAt: time.Now().UTC()}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialInterval

	res, err := backoff.Retry(ctx, func() (fetched, error) {
		report.Attempts++
		rows, issues, err := src.Fetch(ctx)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fetched{}, backoff.Permanent(err)
			}
			return fetched{}, err
		}
		return fetched{rows: rows, issues: issues}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(opts.MaxAttempts)),
		backoff.WithMaxElapsedTime(opts.MaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn().Err(err).Str("source", src.Name()).Dur("retry_in", next).Msg("calibration load failed, retrying")
		}),
	)

	var entries []models.RateCalibrationEntry
	if err == nil {
		var issues []RowIssue
		entries, issues = sanitize(res.rows)
		report.Issues = append(res.issues, issues...)
		sort.SliceStable(report.Issues, func(i, j int) bool { return report.Issues[i].Row < report.Issues[j].Row })
		report.Skipped = len(report.Issues)
		for _, is := range report.Issues {
			logger.Warn().Str("source", src.Name()).Int("row", is.Row).Str("reason", is.Reason).Msg("skipping calibration row")
		}
		if len(entries) == 0 {
			err = ErrNoRows
		}
	}

	if err != nil {
		loadErr := &DataLoadError{Source: src.Name(), Attempts: report.Attempts, Err: err}
		logger.Error().Err(loadErr).Msg("using built-in calibration table")
		table := Builtin()
		report.FallbackUsed = true
		report.Err = loadErr
		report.Error = loadErr.Error()
		report.Loaded = table.Len()
		return table, report
	}

	report.Loaded = len(entries)
	logger.Info().Str("source", src.Name()).Int("rows", report.Loaded).Int("skipped", report.Skipped).Int("attempts", report.Attempts).Msg("calibration table loaded")
	return NewTable(entries, src.Name()), report
}

type bracketKey struct {
	table     tableKey
	low, high float64
}

// sanitize canonicalizes region and crane type labels and drops rows that
// cannot be used for a quote.
func sanitize(in []Row) ([]models.RateCalibrationEntry, []RowIssue) {
	var (
		out    []models.RateCalibrationEntry
		issues []RowIssue
	)
	seen := map[bracketKey]bool{}
	for _, r := range in {
		e, row := r.Entry, r.Line
		skip := func(reason string) {
			issues = append(issues, RowIssue{Row: row, Reason: fmt.Sprintf("%s (%s/%s)", reason, e.Region, e.CraneType)})
		}

		e.Region = normalize.ParseRegion(string(e.Region))
		if e.Region == models.RegionUnknown {
			skip("missing region")
			continue
		}
		ct, err := normalize.ParseCraneType(string(e.CraneType))
		if err != nil {
			skip(err.Error())
			continue
		}
		if ct == models.CraneTypeUnknown {
			skip("missing crane_type")
			continue
		}
		e.CraneType = ct

		switch {
		case e.CapacityLow < 0 || e.CapacityLow > e.CapacityHigh:
			skip("capacity_low must be between 0 and capacity_high")
			continue
		case e.BareMonthlyRate <= 0:
			skip("bare_monthly_rate must be positive")
			continue
		case e.OperatedRatio <= 1:
			skip("operated_ratio must be greater than 1")
			continue
		}

		k := bracketKey{table: keyFor(e.Region, e.CraneType), low: e.CapacityLow, high: e.CapacityHigh}
		if seen[k] {
			skip("duplicate bracket")
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out, issues
}
