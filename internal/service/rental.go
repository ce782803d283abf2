package service

import (
	"math"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/utils"
)

const (
	minBareMonthly            = 4000.0
	maxBareMonthly            = 95000.0
	defaultOperatedMultiplier = 1.45
	weeksPerYear              = 52.0
	daysPerYear               = 365.0
)

var utilizationScenarios = []float64{0.50, 0.70, 0.85, 0.95}

type capacityBand struct {
	upper  float64
	factor float64
}

var capacityBands = []capacityBand{
	{upper: 80, factor: 1.10},
	{upper: 150, factor: 1.00},
	{upper: 300, factor: 0.90},
	{upper: math.Inf(1), factor: 0.80},
}

func ageFactor(age int) float64 {
	switch {
	case age <= 3:
		return 1.10
	case age <= 7:
		return 1.00
	case age <= 12:
		return 0.90
	default:
		return 0.80
	}
}

// capacityRate prices capacity against its band. Entering a cheaper band never
// drops below the top of the previous one, so the rate does not decrease as
// capacity grows.
func capacityRate(ratePerTon, capacity float64) (float64, float64) {
	for i, band := range capacityBands {
		if capacity > band.upper {
			continue
		}
		v := ratePerTon * capacity * band.factor
		if i > 0 {
			prev := capacityBands[i-1]
			v = math.Max(v, ratePerTon*prev.upper*prev.factor)
		}
		return v, band.factor
	}
	return 0, 0
}

func parseMode(mode models.RentalMode) (models.RentalMode, error) {
	switch mode {
	case "", models.ModeBare:
		return models.ModeBare, nil
	case models.ModeOperated:
		return models.ModeOperated, nil
	default:
		return "", models.NewValidationError("mode", "must be bare or operated")
	}
}

// QuoteRental prices monthly rent from the calibration table when a row
// covers the crane and from the per-ton formula otherwise.
func (e *Engine) QuoteRental(spec models.EquipmentSpec, mode models.RentalMode) (models.RentalQuote, error) {
	mode, err := parseMode(mode)
	if err != nil {
		return models.RentalQuote{}, err
	}
	if !(spec.Capacity > 0) || math.IsInf(spec.Capacity, 0) {
		return models.RentalQuote{}, models.NewValidationError("capacity", "must be greater than 0")
	}

	q := models.RentalQuote{Mode: mode}
	if entry, ok := e.table.Lookup(spec.Region, spec.CraneType, spec.Capacity); ok {
		q.Status = models.StatusSuccess
		q.Calibrated = true
		q.Source = entry.Source
		q.BareMonthlyRate = utils.RoundCents(entry.BareMonthlyRate)
		q.RateFactors = models.RateFactors{
			BaseRatePerTon:     utils.RoundCents(entry.BareMonthlyRate / spec.Capacity),
			AgeFactor:          1,
			CapacityFactor:     1,
			RegionalMultiplier: 1,
			OperatedMultiplier: entry.OperatedRatio,
		}
	} else {
		age := ageYears(spec.Year, e.opts.EvalYear)
		pct, _, _ := regionalAdjustment(spec.Region)
		raw, cf := capacityRate(e.opts.BaseRatePerTon, spec.Capacity)
		af := ageFactor(age)
		regional := 1 + pct

		q.Status = models.StatusFallbackUsed
		q.Source = "formula"
		rate := utils.Clamp(raw*af*regional, minBareMonthly, maxBareMonthly)
		// Keep formula quotes between the calibrated brackets around them so
		// leaving the table never makes a bigger crane cheaper.
		floor, ceiling := e.table.Neighbors(spec.Region, spec.CraneType, spec.Capacity)
		rate = math.Max(math.Min(rate, ceiling), floor)
		q.BareMonthlyRate = utils.RoundCents(rate)
		q.RateFactors = models.RateFactors{
			BaseRatePerTon:     e.opts.BaseRatePerTon,
			AgeFactor:          af,
			CapacityFactor:     cf,
			RegionalMultiplier: regional,
			OperatedMultiplier: defaultOperatedMultiplier,
		}
	}

	monthly := q.BareMonthlyRate
	if mode == models.ModeOperated {
		monthly = utils.RoundCents(q.BareMonthlyRate * q.RateFactors.OperatedMultiplier)
	}
	annual := monthly * 12
	q.MonthlyRate = monthly
	q.AnnualRate = utils.RoundCents(annual)
	q.WeeklyRate = utils.RoundCents(annual / weeksPerYear)
	q.DailyRate = utils.RoundCents(annual / daysPerYear)

	q.Scenarios = make([]models.UtilizationScenario, 0, len(utilizationScenarios))
	for _, u := range utilizationScenarios {
		effective := monthly / u
		q.Scenarios = append(q.Scenarios, models.UtilizationScenario{
			Utilization:      u,
			EffectiveMonthly: utils.RoundCents(effective),
			Annualized:       utils.RoundCents(effective * 12),
		})
	}
	return q, nil
}
