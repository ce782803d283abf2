package service

import (
	"math"
	"sort"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/utils"
)

const (
	valuationWeight  = 0.75
	comparableWeight = 0.25
	maxRiskComponent = 25.0
)

var regionalRisk = map[models.Region]float64{
	models.RegionNorthAmerica: 5,
	models.RegionEurope:       5,
	models.RegionMiddleEast:   10,
	models.RegionAsiaPacific:  10,
	models.RegionSouthAmerica: 15,
	models.RegionAfrica:       20,
}

const unknownRegionRisk = 15.0

var gradeCutoffs = []struct {
	min   int
	grade models.Grade
}{
	{90, models.GradeAPlus},
	{85, models.GradeA},
	{80, models.GradeAMinus},
	{75, models.GradeBPlus},
	{70, models.GradeB},
	{65, models.GradeBMinus},
}

func gradeFor(score int) models.Grade {
	for _, c := range gradeCutoffs {
		if score >= c.min {
			return c.grade
		}
	}
	return models.GradeC
}

// ScoreDeal weighs the asking price against the valuation, blended with
// recent comparable sales when there are any.
func (e *Engine) ScoreDeal(result models.ValuationResult, askingPrice float64) (models.DealScore, error) {
	verr := &models.ValidationError{}
	if !(askingPrice > 0) {
		verr.Add("asking_price", "must be greater than 0")
	} else if askingPrice < minPrice || askingPrice > maxPrice {
		verr.Add("asking_price", "must be between 1 and 1e10")
	}
	if !(result.EstimatedValue > 0) {
		verr.Add("estimated_value", "must be greater than 0")
	}
	if err := verr.OrNil(); err != nil {
		return models.DealScore{}, err
	}

	spec := result.Spec
	comps := e.Comparables(spec.CraneType, spec.Capacity)
	reference := result.EstimatedValue
	if len(comps) > 0 {
		perTon := make([]float64, 0, len(comps))
		for _, c := range comps {
			perTon = append(perTon, c.Price/c.Capacity)
		}
		reference = valuationWeight*result.EstimatedValue + comparableWeight*median(perTon)*spec.Capacity
	}
	reference = utils.RoundCents(reference)

	discount := (reference - askingPrice) / reference * 100
	priceScore := utils.Clamp(50+discount*2.5, 0, 100)

	risk := riskBreakdown(result)
	riskScore := risk.Age + risk.Usage + risk.Regional + risk.Market

	raw := 0.5*priceScore + 0.3*result.ConfidenceScore*100 + 0.2*(100-riskScore)
	score := int(math.Round(utils.Clamp(raw, 0, 100)))

	return models.DealScore{
		Status:          result.Status,
		Score:           score,
		Grade:           gradeFor(score),
		RiskScore:       utils.RoundTo(riskScore, 2),
		Risk:            risk,
		PriceScore:      utils.RoundTo(priceScore, 2),
		ReferenceValue:  reference,
		AskingPrice:     utils.RoundCents(askingPrice),
		DiscountPercent: utils.RoundTo(discount, 2),
		Comparables:     comps,
	}, nil
}

func riskBreakdown(result models.ValuationResult) models.RiskBreakdown {
	clampRisk := func(v float64) float64 {
		return utils.RoundTo(utils.Clamp(v, 0, maxRiskComponent), 2)
	}

	usage := 0.0
	switch {
	case result.ExpectedHours > 0:
		usage = (result.Spec.Hours/result.ExpectedHours - 0.5) * 20
	case result.Spec.Hours > 0:
		usage = 10
	}

	regional := unknownRegionRisk
	if macro, ok := result.Spec.Region.Macro(); ok {
		regional = regionalRisk[macro]
	}

	return models.RiskBreakdown{
		Age:      clampRisk(float64(result.AgeYears) * 1.25),
		Usage:    clampRisk(usage),
		Regional: clampRisk(regional),
		Market:   clampRisk(10 - result.MarketAdjustment*100),
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
