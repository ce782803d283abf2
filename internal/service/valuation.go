package service

import (
	"math"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/utils"
)

const (
	minPlausibleCapacity = 5.0
	maxPlausibleCapacity = 2500.0
	maxPlausibleHours    = 150000.0

	maxCapacity     = 10000.0
	maxBoomOrJib    = 5000.0
	maxHoursAllowed = 500000.0
)

// Valuate prices a normalized spec. The result is deterministic for a given
// spec and engine.
func (e *Engine) Valuate(spec models.EquipmentSpec) (models.ValuationResult, error) {
	if spec.Condition == "" {
		spec.Condition = models.ConditionGood
	}
	if spec.JibType == "" {
		spec.JibType = models.JibNone
	}

	if err := checkSpec(spec); err != nil {
		return models.ValuationResult{}, err
	}

	base := BaseValue(spec)
	if !(base > 0) || math.IsInf(base, 0) {
		return models.ValuationResult{}, models.NewValidationError("capacity", "too small to value")
	}
	age := ageYears(spec.Year, e.opts.EvalYear)
	ac := &adjustmentContext{
		spec:          spec,
		base:          base,
		running:       base,
		age:           age,
		evalYear:      e.opts.EvalYear,
		expectedHours: float64(age) * expectedHoursPerYear,
		market:        e.opts.MarketAdjustment,
	}
	adjustments := runAdjustments(ac)

	amounts := make([]float64, len(adjustments))
	for i, a := range adjustments {
		amounts[i] = a.Amount
	}
	estimated := utils.SumCents(base, amounts...)

	if spec.Year > e.opts.EvalYear {
		ac.notes = append(ac.notes, "year is after the evaluation year; age treated as 0")
	}
	confidence := confidenceScore(spec, ac)
	spread := 0.05 + (1-confidence)*0.15

	status := models.StatusSuccess
	if ac.regionMissed {
		status = models.StatusFallbackUsed
	}

	return models.ValuationResult{
		Status:          status,
		BaseValue:       base,
		Adjustments:     adjustments,
		EstimatedValue:  estimated,
		ConfidenceScore: confidence,
		ValueRange: models.ValueRange{
			Low:  utils.RoundCents(estimated * (1 - spread)),
			High: utils.RoundCents(estimated * (1 + spread)),
		},
		AgeYears:         age,
		EvalYear:         e.opts.EvalYear,
		ExpectedHours:    ac.expectedHours,
		MarketAdjustment: e.opts.MarketAdjustment,
		Notes:            ac.notes,
		Spec:             spec,
	}, nil
}

// checkSpec guards callers that build specs directly instead of going
// through the normalizer.
func checkSpec(spec models.EquipmentSpec) error {
	verr := &models.ValidationError{}
	if spec.Manufacturer == "" {
		verr.Add("manufacturer", "is required")
	}
	if spec.Model == "" {
		verr.Add("model", "is required")
	}
	if spec.Year <= 0 {
		verr.Add("year", "is required")
	}
	if !(spec.Capacity > 0) || spec.Capacity > maxCapacity {
		verr.Add("capacity", "must be greater than 0 and at most 10000")
	}
	if !(spec.Hours >= 0) || spec.Hours > maxHoursAllowed {
		verr.Add("hours", "must be between 0 and 500000")
	}
	if !(spec.BoomLength >= 0) || spec.BoomLength > maxBoomOrJib {
		verr.Add("boom_length", "must be between 0 and 5000")
	}
	if !(spec.JibLength >= 0) || spec.JibLength > maxBoomOrJib {
		verr.Add("jib_length", "must be between 0 and 5000")
	}
	if _, ok := conditionAdjustments[spec.Condition]; !ok {
		verr.Add("condition", "unrecognized condition")
	}
	return verr.OrNil()
}

func ageYears(year, evalYear int) int {
	if year >= evalYear {
		return 0
	}
	return evalYear - year
}

func confidenceScore(spec models.EquipmentSpec, ac *adjustmentContext) float64 {
	score := 1.0
	if ac.age > 25 {
		score -= 0.15
	}
	if spec.Year > ac.evalYear {
		score -= 0.10
	}
	if !spec.HoursProvided {
		score -= 0.10
	} else if spec.Hours > 2*ac.expectedHours+5000 || spec.Hours > maxPlausibleHours {
		score -= 0.15
	}
	if spec.Capacity < minPlausibleCapacity || spec.Capacity > maxPlausibleCapacity {
		score -= 0.20
	}
	if ac.regionMissed {
		score -= 0.15
	}
	if !spec.ConditionProvided {
		score -= 0.05
	}
	if _, known := manufacturerPremium(spec.Manufacturer); !known {
		score -= 0.05
	}
	if spec.CraneType == models.CraneTypeUnknown {
		score -= 0.05
	}
	return utils.RoundTo(utils.Clamp(score, 0, 1), 2)
}
