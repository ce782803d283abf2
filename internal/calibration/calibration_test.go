package calibration

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
)

const fixtureCSV = `region,crane_type,capacity_low,capacity_high,bare_monthly_rate,operated_ratio,source
Midwest,all-terrain,80,120,34200,1.40,fixture
Midwest,all-terrain,100,200,41000,1.41,fixture
Midwest,all-terrain,abc,200,41000,1.41,fixture
Midwest,crawler,200,100,50000,1.45,fixture
Midwest,crawler,100,200,0,1.45,fixture
Midwest,crawler,100,200,50000,0.9,fixture
,crawler,100,200,50000,1.45,fixture
Midwest,all-terrain,80,120,99999,1.50,fixture
Gulf Coast,Crawler,80,150,41200,1.50,
`

var fastRetry = LoadOptions{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxElapsed: time.Second}

func TestLoadFixtureTable(t *testing.T) {
	src, err := NewReaderSource("fixture.csv", strings.NewReader(fixtureCSV))
	if err != nil {
		t.Fatalf("reader source: %v", err)
	}
	table, report := Load(context.Background(), src, fastRetry, zerolog.Nop())
	if report.FallbackUsed {
		t.Fatalf("unexpected fallback: %s", report.Error)
	}
	if report.Loaded != 3 {
		t.Fatalf("expected 3 valid rows, got %d (issues %+v)", report.Loaded, report.Issues)
	}
	if report.Skipped != 6 {
		t.Fatalf("expected 6 skipped rows, got %d (%+v)", report.Skipped, report.Issues)
	}

	e, ok := table.Lookup(models.RegionMidwest, models.CraneTypeAllTerrain, 100)
	if !ok {
		t.Fatalf("expected a match for Midwest all-terrain 100t")
	}
	if e.BareMonthlyRate != 34200 || e.OperatedRatio != 1.40 {
		t.Fatalf("expected first bracket to win, got %+v", e)
	}

	e, ok = table.Lookup(models.RegionGulfCoast, models.CraneTypeCrawler, 150)
	if !ok || e.Source != "fixture.csv" {
		t.Fatalf("expected gulf coast row with default source, got %+v ok=%v", e, ok)
	}
}

func TestLookupMiss(t *testing.T) {
	table := NewTable([]models.RateCalibrationEntry{
		{Region: models.RegionMidwest, CraneType: models.CraneTypeAllTerrain, CapacityLow: 80, CapacityHigh: 120, BareMonthlyRate: 34200, OperatedRatio: 1.4},
	}, "test")
	cases := []struct {
		region    models.Region
		craneType models.CraneType
		capacity  float64
	}{
		{models.RegionMidwest, models.CraneTypeAllTerrain, 79.5},
		{models.RegionMidwest, models.CraneTypeAllTerrain, 121},
		{models.RegionMidwest, models.CraneTypeCrawler, 100},
		{models.RegionNorthAmerica, models.CraneTypeAllTerrain, 100},
		{models.RegionMidwest, models.CraneTypeUnknown, 100},
	}
	for _, c := range cases {
		if _, ok := table.Lookup(c.region, c.craneType, c.capacity); ok {
			t.Fatalf("expected miss for %+v", c)
		}
	}
	if _, ok := table.Lookup("midwest", models.CraneTypeAllTerrain, 80); !ok {
		t.Fatalf("expected case-insensitive region match")
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	src := CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}
	table, report := Load(context.Background(), src, fastRetry, zerolog.Nop())
	if !report.FallbackUsed {
		t.Fatalf("expected fallback")
	}
	if report.Attempts != 1 {
		t.Fatalf("missing file should not be retried, got %d attempts", report.Attempts)
	}
	var loadErr *DataLoadError
	if !errors.As(report.Err, &loadErr) {
		t.Fatalf("expected DataLoadError, got %v", report.Err)
	}
	if table.Source() != BuiltinName || table.Len() == 0 {
		t.Fatalf("expected builtin table, got %s with %d rows", table.Source(), table.Len())
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.csv")
	if err := os.WriteFile(path, []byte(fixtureCSV), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	table, report := Load(context.Background(), CSVSource{Path: path}, fastRetry, zerolog.Nop())
	if report.FallbackUsed || table.Len() != 3 {
		t.Fatalf("expected 3 rows from file, got %d (%+v)", table.Len(), report)
	}
}

func TestLoadNoValidRowsFallsBack(t *testing.T) {
	src, _ := NewReaderSource("bad.csv", strings.NewReader("region,crane_type,capacity_low,capacity_high,bare_monthly_rate,operated_ratio\nMidwest,crawler,1,2,-5,1.4\n"))
	_, report := Load(context.Background(), src, fastRetry, zerolog.Nop())
	if !report.FallbackUsed || !errors.Is(report.Err, ErrNoRows) {
		t.Fatalf("expected no-rows fallback, got %+v", report)
	}
}

func TestLoadMissingColumnsFallsBack(t *testing.T) {
	src, _ := NewReaderSource("cols.csv", strings.NewReader("region,rate\nMidwest,100\n"))
	_, report := Load(context.Background(), src, fastRetry, zerolog.Nop())
	if !report.FallbackUsed {
		t.Fatalf("expected fallback for missing columns")
	}
	if report.Attempts != fastRetry.MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", fastRetry.MaxAttempts, report.Attempts)
	}
}

type flakyStore struct {
	failures int
	calls    int
}

func (s *flakyStore) ListRateCalibration(ctx context.Context) ([]models.RateCalibrationEntry, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("connection refused")
	}
	return []models.RateCalibrationEntry{
		{Region: "midwest", CraneType: "All Terrain", CapacityLow: 80, CapacityHigh: 120, BareMonthlyRate: 34200, OperatedRatio: 1.4},
	}, nil
}

func TestLoadRetriesStoreSource(t *testing.T) {
	store := &flakyStore{failures: 2}
	table, report := Load(context.Background(), StoreSource{Store: store}, fastRetry, zerolog.Nop())
	if report.FallbackUsed {
		t.Fatalf("expected success after retries: %s", report.Error)
	}
	if report.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", report.Attempts)
	}
	e, ok := table.Lookup(models.RegionMidwest, models.CraneTypeAllTerrain, 100)
	if !ok || e.Source != "rate_calibration" {
		t.Fatalf("expected canonicalized store row, got %+v ok=%v", e, ok)
	}
}

func TestLoadStoreExhaustsAttempts(t *testing.T) {
	store := &flakyStore{failures: 10}
	_, report := Load(context.Background(), StoreSource{Store: store}, fastRetry, zerolog.Nop())
	if !report.FallbackUsed || report.Attempts != 3 {
		t.Fatalf("expected fallback after 3 attempts, got %+v", report)
	}
}

func TestBuiltinTableIsClean(t *testing.T) {
	entries := builtinEntries()
	kept, issues := sanitize(positional(entries))
	if len(issues) > 0 || len(kept) != len(entries) {
		t.Fatalf("builtin table has invalid rows: %+v", issues)
	}
	if _, ok := Builtin().Lookup(models.RegionNorthAmerica, models.CraneTypeCrawler, 110); ok {
		t.Fatalf("macro regions must quote from the formula")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	table := Builtin()
	rows := table.Entries()
	rows[0].BareMonthlyRate = 1
	if table.Entries()[0].BareMonthlyRate == 1 {
		t.Fatalf("table must not share its rows")
	}
}

func TestLoadIssuesUseCSVLineNumbers(t *testing.T) {
	src, err := NewReaderSource("fixture.csv", strings.NewReader(fixtureCSV))
	if err != nil {
		t.Fatalf("reader source: %v", err)
	}
	_, report := Load(context.Background(), src, fastRetry, zerolog.Nop())
	want := []int{4, 5, 6, 7, 8, 9}
	if len(report.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), report.Issues)
	}
	for i, line := range want {
		if report.Issues[i].Row != line {
			t.Fatalf("issue %d: expected line %d, got %+v", i, line, report.Issues)
		}
	}
}

func TestNeighborsBracketTheGap(t *testing.T) {
	table := NewTable([]models.RateCalibrationEntry{
		{Region: models.RegionMidwest, CraneType: models.CraneTypeCrawler, CapacityLow: 80, CapacityHigh: 150, BareMonthlyRate: 38500, OperatedRatio: 1.48},
		{Region: models.RegionMidwest, CraneType: models.CraneTypeCrawler, CapacityLow: 200, CapacityHigh: 300, BareMonthlyRate: 61000, OperatedRatio: 1.45},
	}, "test")
	floor, ceiling := table.Neighbors(models.RegionMidwest, models.CraneTypeCrawler, 175)
	if floor != 38500 || ceiling != 61000 {
		t.Fatalf("expected 38500..61000, got %v..%v", floor, ceiling)
	}
	floor, ceiling = table.Neighbors(models.RegionMidwest, models.CraneTypeCrawler, 50)
	if floor != 0 || ceiling != 38500 {
		t.Fatalf("expected 0..38500 below the table, got %v..%v", floor, ceiling)
	}
	floor, ceiling = table.Neighbors(models.RegionEurope, models.CraneTypeCrawler, 175)
	if floor != 0 || !math.IsInf(ceiling, 1) {
		t.Fatalf("expected open bounds without rows, got %v..%v", floor, ceiling)
	}
}
