package service

import (
	"errors"
	"math"
	"testing"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestAnalyzeROIBare(t *testing.T) {
	e := newTestEngine(nil)
	roi, err := e.AnalyzeROI(heavyLiftSpec(), 800000, 0.7, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if roi.Mode != models.ModeBare {
		t.Fatalf("expected bare mode by default, got %s", roi.Mode)
	}
	if roi.OperatingExpenses.Total != 48000 || roi.OperatingExpenses.OperatorCost != 0 {
		t.Fatalf("unexpected expenses %+v", roi.OperatingExpenses)
	}
	if !near(roi.AnnualRevenue, 99939.84, 0.01) {
		t.Fatalf("unexpected revenue %v", roi.AnnualRevenue)
	}
	if !near(roi.NetOperatingIncome, 51939.84, 0.01) || !near(roi.ROIPercent, 6.49, 0.001) {
		t.Fatalf("unexpected noi %v roi %v", roi.NetOperatingIncome, roi.ROIPercent)
	}
	if roi.PaybackYears == nil || !near(*roi.PaybackYears, 15.40, 0.001) {
		t.Fatalf("unexpected payback %v", roi.PaybackYears)
	}
	if roi.BreakEvenUtilization == nil || !near(*roi.BreakEvenUtilization, 0.3362, 0.00001) {
		t.Fatalf("unexpected break-even %v", roi.BreakEvenUtilization)
	}
}

func TestAnalyzeROINegativeIncome(t *testing.T) {
	e := newTestEngine(nil)
	roi, err := e.AnalyzeROI(heavyLiftSpec(), 5000000, 0.5, models.ModeBare)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if roi.NetOperatingIncome > 0 {
		t.Fatalf("expected non-positive NOI, got %v", roi.NetOperatingIncome)
	}
	if roi.PaybackYears != nil {
		t.Fatalf("payback must be nil when NOI <= 0, got %v", *roi.PaybackYears)
	}
	if roi.BreakEvenUtilization != nil {
		t.Fatalf("break-even above 100%% must be nil, got %v", *roi.BreakEvenUtilization)
	}
	if math.IsInf(roi.ROIPercent, 0) || math.IsNaN(roi.ROIPercent) {
		t.Fatalf("roi must be finite")
	}
}

func TestAnalyzeROIOperatedCalibrated(t *testing.T) {
	e := newTestEngine(midwestTable(t))
	spec := models.EquipmentSpec{Manufacturer: "Grove", Model: "GMK4100L", Year: 2020, Capacity: 100, CraneType: models.CraneTypeAllTerrain, Region: models.RegionMidwest}
	roi, err := e.AnalyzeROI(spec, 600000, 0.5, models.ModeOperated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !roi.Calibrated || roi.MonthlyRate != 47880 {
		t.Fatalf("expected calibrated operated quote, got %+v", roi)
	}
	if !near(roi.OperatingExpenses.OperatorCost, (47880-34200)*12*0.5, 0.01) {
		t.Fatalf("unexpected operator cost %v", roi.OperatingExpenses.OperatorCost)
	}
	// fixed 18000+9000+12000 against bare margin 34200*12
	if roi.BreakEvenUtilization == nil || !near(*roi.BreakEvenUtilization, 39000.0/410400.0, 0.0001) {
		t.Fatalf("unexpected break-even %v", roi.BreakEvenUtilization)
	}
}

func TestAnalyzeROIOperatedUsesDefaultOperatorCost(t *testing.T) {
	e := newTestEngine(nil)
	roi, err := e.AnalyzeROI(heavyLiftSpec(), 800000, 0.85, models.ModeOperated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if roi.OperatingExpenses.OperatorCost != 95000 {
		t.Fatalf("expected default operator cost, got %v", roi.OperatingExpenses.OperatorCost)
	}
}

func TestAnalyzeROIValidation(t *testing.T) {
	e := newTestEngine(nil)
	cases := []struct {
		price, util float64
		problems    int
	}{
		{0, 0.5, 1},
		{-10, 0.5, 1},
		{100000, 0, 1},
		{100000, 1.2, 1},
		{0, 1.5, 2},
		{math.NaN(), 0.5, 1},
		{math.Inf(1), 0.5, 1},
		{1e-310, 0.5, 1},
		{0.5, 0.5, 1},
		{1e12, 0.5, 1},
	}
	for _, c := range cases {
		_, err := e.AnalyzeROI(heavyLiftSpec(), c.price, c.util, models.ModeBare)
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("price %v util %v: expected validation error, got %v", c.price, c.util, err)
		}
		if len(verr.Problems) != c.problems {
			t.Fatalf("price %v util %v: expected %d problems, got %+v", c.price, c.util, c.problems, verr.Problems)
		}
	}
	if _, err := e.AnalyzeROI(heavyLiftSpec(), 100000, 1, models.ModeBare); err != nil {
		t.Fatalf("full utilization must be accepted: %v", err)
	}
}
