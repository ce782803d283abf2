package service

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/calibration"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/utils"
)

func newTestEngine(table *calibration.Table) *Engine {
	return NewEngine(table, Options{EvalYear: 2024}, zerolog.Nop())
}

func heavyLiftSpec() models.EquipmentSpec {
	return models.EquipmentSpec{
		Manufacturer:      "Manitowoc",
		Model:             "MLC300",
		Year:              2018,
		Capacity:          110,
		Hours:             8000,
		HoursProvided:     true,
		Condition:         models.ConditionGood,
		ConditionProvided: true,
		CraneType:         models.CraneTypeCrawler,
		BoomLength:        350,
		JibType:           models.JibLuffing,
		JibLength:         120,
		Region:            models.RegionNorthAmerica,
	}
}

func adjustmentAmount(t *testing.T, res models.ValuationResult, label string) float64 {
	t.Helper()
	for _, a := range res.Adjustments {
		if a.Label == label {
			return a.Amount
		}
	}
	t.Fatalf("adjustment %q not found in %+v", label, res.Adjustments)
	return 0
}

func TestValuateHeavyLiftCrawler(t *testing.T) {
	e := newTestEngine(nil)
	res, err := e.Valuate(heavyLiftSpec())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BaseValue != 550000 {
		t.Fatalf("expected base 550000, got %v", res.BaseValue)
	}
	if got := adjustmentAmount(t, res, "Age depreciation (6 yrs)"); got != -165000 {
		t.Fatalf("expected age depreciation -165000, got %v", got)
	}
	if got := adjustmentAmount(t, res, "Regional adjustment (NorthAmerica +4%)"); got != 15400 {
		t.Fatalf("expected regional +15400, got %v", got)
	}
	boomJib := adjustmentAmount(t, res, "Boom length premium") +
		adjustmentAmount(t, res, "Luffing jib") +
		adjustmentAmount(t, res, "Premium model luffing bonus")
	if boomJib != 421000 {
		t.Fatalf("expected boom/jib premium 421000, got %v", boomJib)
	}
	if res.EstimatedValue != 821400 {
		t.Fatalf("expected estimated 821400, got %v", res.EstimatedValue)
	}
	if res.Status != models.StatusSuccess || res.ConfidenceScore != 1 {
		t.Fatalf("expected success with full confidence, got %s %v", res.Status, res.ConfidenceScore)
	}
	if res.ValueRange.Low != utils.RoundCents(821400*0.95) || res.ValueRange.High != utils.RoundCents(821400*1.05) {
		t.Fatalf("unexpected range %+v", res.ValueRange)
	}
}

func TestValuateListsZeroSteps(t *testing.T) {
	e := newTestEngine(nil)
	spec := heavyLiftSpec()
	spec.BoomLength = 0
	spec.JibType = models.JibNone
	spec.JibLength = 0
	res, err := e.Valuate(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, label := range []string{"Usage adjustment", "Boom length premium", "Condition (good)", "Market adjustment", "Residual value floor"} {
		if got := adjustmentAmount(t, res, label); got != 0 {
			t.Fatalf("expected %s to be 0, got %v", label, got)
		}
	}
}

func TestValuateUnknownRegionFallsBack(t *testing.T) {
	e := newTestEngine(nil)
	spec := heavyLiftSpec()
	spec.Region = "Atlantis"
	res, err := e.Valuate(spec)
	if err != nil {
		t.Fatalf("unknown region must not be an error: %v", err)
	}
	if res.Status != models.StatusFallbackUsed {
		t.Fatalf("expected fallback-used, got %s", res.Status)
	}
	if got := adjustmentAmount(t, res, "Regional adjustment (unknown region)"); got != 0 {
		t.Fatalf("expected 0 regional adjustment, got %v", got)
	}
	if len(res.Notes) == 0 {
		t.Fatalf("expected a note about the region")
	}
	if res.ConfidenceScore != 0.85 {
		t.Fatalf("expected confidence 0.85, got %v", res.ConfidenceScore)
	}
}

func TestValuateUsagePenaltyIsOneSided(t *testing.T) {
	e := newTestEngine(nil)
	spec := heavyLiftSpec()
	spec.Hours = 9001
	res, _ := e.Valuate(spec)
	if got := adjustmentAmount(t, res, "Usage adjustment"); got != -16500 {
		t.Fatalf("expected -3%% of base, got %v", got)
	}
	spec.Hours = 100
	res, _ = e.Valuate(spec)
	if got := adjustmentAmount(t, res, "Usage adjustment"); got != 0 {
		t.Fatalf("low hours must not add value, got %v", got)
	}
}

func TestValuateResidualFloor(t *testing.T) {
	e := NewEngine(nil, Options{EvalYear: 2024, MarketAdjustment: -0.9}, zerolog.Nop())
	spec := heavyLiftSpec()
	spec.Year = 1980
	spec.JibType = models.JibNone
	spec.BoomLength = 0
	spec.Condition = models.ConditionPoor
	res, err := e.Valuate(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EstimatedValue != 55000 {
		t.Fatalf("expected floor at 10%% of base, got %v", res.EstimatedValue)
	}
	if adjustmentAmount(t, res, "Residual value floor") <= 0 {
		t.Fatalf("expected a positive floor adjustment")
	}
}

func TestValuateRejectsInvalidSpec(t *testing.T) {
	e := newTestEngine(nil)
	spec := heavyLiftSpec()
	spec.Capacity = 0
	spec.Manufacturer = ""
	_, err := e.Valuate(spec)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %+v", verr.Problems)
	}
}

func TestValuateRejectsOutOfRangeDimensions(t *testing.T) {
	e := newTestEngine(nil)
	cases := map[string]func(*models.EquipmentSpec){
		"huge capacity": func(s *models.EquipmentSpec) { s.Capacity = 1e306 },
		"inf capacity":  func(s *models.EquipmentSpec) { s.Capacity = math.Inf(1) },
		"nan capacity":  func(s *models.EquipmentSpec) { s.Capacity = math.NaN() },
		"huge boom":     func(s *models.EquipmentSpec) { s.BoomLength = 1e306 },
		"nan jib":       func(s *models.EquipmentSpec) { s.JibLength = math.NaN() },
		"inf hours":     func(s *models.EquipmentSpec) { s.Hours = math.Inf(1) },
	}
	for name, mutate := range cases {
		spec := heavyLiftSpec()
		mutate(&spec)
		_, err := e.Valuate(spec)
		if !models.IsValidationError(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestValuateConfidencePenalties(t *testing.T) {
	e := newTestEngine(nil)
	spec := models.EquipmentSpec{
		Manufacturer: "Acme Lift",
		Model:        "X1",
		Year:         1990,
		Capacity:     3,
		Region:       "Nowhere",
	}
	res, err := e.Valuate(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// age>25, no hours, tiny capacity, unknown region, no condition, unknown make, unknown type
	want := 1 - 0.15 - 0.10 - 0.20 - 0.15 - 0.05 - 0.05 - 0.05
	if math.Abs(res.ConfidenceScore-want) > 1e-9 {
		t.Fatalf("expected confidence %v, got %v", want, res.ConfidenceScore)
	}
	if res.ValueRange.High-res.ValueRange.Low <= 0.1*res.EstimatedValue {
		t.Fatalf("expected a wider range for low confidence, got %+v", res.ValueRange)
	}
}

func TestValuateFutureYear(t *testing.T) {
	e := newTestEngine(nil)
	spec := heavyLiftSpec()
	spec.Year = 2026
	spec.Hours = 0
	res, err := e.Valuate(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AgeYears != 0 || res.ConfidenceScore != 0.9 {
		t.Fatalf("expected age 0 and confidence 0.9, got %d %v", res.AgeYears, res.ConfidenceScore)
	}
}

func randomSpec(r *rand.Rand) models.EquipmentSpec {
	makes := []string{"Liebherr", "Manitowoc", "Grove", "Sany", "Unknown Co"}
	types := []models.CraneType{models.CraneTypeCrawler, models.CraneTypeAllTerrain, models.CraneTypeRoughTerrain, models.CraneTypeUnknown}
	conds := []models.Condition{models.ConditionExcellent, models.ConditionGood, models.ConditionFair, models.ConditionPoor}
	jibs := []models.JibType{models.JibNone, models.JibStandard, models.JibLuffing}
	regions := []models.Region{models.RegionNorthAmerica, models.RegionAfrica, models.RegionMidwest, "Atlantis", ""}
	return models.EquipmentSpec{
		Manufacturer:  makes[r.Intn(len(makes))],
		Model:         "M" + string(rune('A'+r.Intn(26))),
		Year:          1960 + r.Intn(70),
		Capacity:      0.5 + r.Float64()*3000,
		Hours:         r.Float64() * 200000,
		HoursProvided: r.Intn(2) == 0,
		Condition:     conds[r.Intn(len(conds))],
		CraneType:     types[r.Intn(len(types))],
		BoomLength:    r.Float64() * 700,
		JibType:       jibs[r.Intn(len(jibs))],
		JibLength:     r.Float64() * 300,
		Region:        regions[r.Intn(len(regions))],
	}
}

func TestValuateInvariantsHoldForRandomSpecs(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, market := range []float64{-0.5, 0, 0.1} {
		e := NewEngine(nil, Options{EvalYear: 2024, MarketAdjustment: market}, zerolog.Nop())
		for i := 0; i < 500; i++ {
			spec := randomSpec(r)
			res, err := e.Valuate(spec)
			if err != nil {
				t.Fatalf("spec %+v: unexpected error %v", spec, err)
			}
			if res.EstimatedValue <= 0 {
				t.Fatalf("spec %+v: estimated value %v must be positive", spec, res.EstimatedValue)
			}
			amounts := make([]float64, len(res.Adjustments))
			for j, a := range res.Adjustments {
				amounts[j] = a.Amount
			}
			if sum := utils.SumCents(res.BaseValue, amounts...); sum != res.EstimatedValue {
				t.Fatalf("spec %+v: estimated %v != base plus adjustments %v", spec, res.EstimatedValue, sum)
			}
			if res.ConfidenceScore < 0 || res.ConfidenceScore > 1 {
				t.Fatalf("confidence out of range: %v", res.ConfidenceScore)
			}
			again, _ := e.Valuate(spec)
			if again.EstimatedValue != res.EstimatedValue || len(again.Adjustments) != len(res.Adjustments) {
				t.Fatalf("valuation is not deterministic for %+v", spec)
			}
		}
	}
}

func TestValuationJSONRoundTrip(t *testing.T) {
	e := newTestEngine(nil)
	spec := heavyLiftSpec()
	spec.Capacity = 97.37
	res, err := e.Valuate(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back models.ValuationResult
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if utils.RoundCents(back.EstimatedValue) != res.EstimatedValue || back.BaseValue != res.BaseValue {
		t.Fatalf("round trip changed values: %v vs %v", back.EstimatedValue, res.EstimatedValue)
	}
	for i := range res.Adjustments {
		if back.Adjustments[i].Amount != res.Adjustments[i].Amount {
			t.Fatalf("adjustment %d changed in round trip", i)
		}
	}
}

func TestBaseValuePremiums(t *testing.T) {
	spec := models.EquipmentSpec{Manufacturer: "Liebherr", Model: "LR 1300", Capacity: 300}
	if got := BaseValue(spec); got != utils.RoundCents(300*5000*1.15*1.06) {
		t.Fatalf("unexpected base value %v", got)
	}
	spec = models.EquipmentSpec{Manufacturer: "Nobody", Model: "Nothing", Capacity: 10}
	if got := BaseValue(spec); got != 50000 {
		t.Fatalf("unknown premiums must price at par, got %v", got)
	}
}
