package service

import (
	"fmt"
	"math"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/utils"
)

const (
	depreciationPerYear  = 0.05
	maxDepreciation      = 0.85
	expectedHoursPerYear = 1500.0
	excessUsagePenalty   = 0.03

	boomAllowance       = 300.0
	boomPerFoot         = 500.0
	standardJibBase     = 50000.0
	standardJibPerFoot  = 400.0
	luffingJibBase      = 150000.0
	luffingJibPerFoot   = 800.0
	premiumLuffingBonus = 150000.0

	residualFloorShare = 0.10
)

var regionalAdjustments = map[models.Region]float64{
	models.RegionNorthAmerica: 0.04,
	models.RegionEurope:       0.02,
	models.RegionAsiaPacific:  -0.02,
	models.RegionMiddleEast:   0.01,
	models.RegionAfrica:       -0.05,
	models.RegionSouthAmerica: -0.03,
}

var conditionAdjustments = map[models.Condition]float64{
	models.ConditionExcellent: 0.05,
	models.ConditionGood:      0,
	models.ConditionFair:      -0.10,
	models.ConditionPoor:      -0.20,
}

// regionalAdjustment returns the macro-region percentage. ok is false when the
// region has no adjustment data.
func regionalAdjustment(r models.Region) (float64, models.Region, bool) {
	macro, ok := r.Macro()
	if !ok {
		return 0, models.RegionUnknown, false
	}
	return regionalAdjustments[macro], macro, true
}

type adjustmentContext struct {
	spec          models.EquipmentSpec
	base          float64
	running       float64
	age           int
	evalYear      int
	expectedHours float64
	market        float64

	notes        []string
	regionMissed bool
}

type lineItem struct {
	label string
	delta float64
}

type adjustmentStep struct {
	name  string
	apply func(ac *adjustmentContext) []lineItem
}

var adjustmentPipeline = []adjustmentStep{
	{name: "age", apply: ageStep},
	{name: "usage", apply: usageStep},
	{name: "region", apply: regionStep},
	{name: "boom_jib", apply: boomJibStep},
	{name: "condition", apply: conditionStep},
	{name: "market", apply: marketStep},
	{name: "residual_floor", apply: residualFloorStep},
}

// runAdjustments applies every step in order. Each item is rounded to cents
// before it moves the running value so the itemized list sums exactly.
func runAdjustments(ac *adjustmentContext) []models.Adjustment {
	var out []models.Adjustment
	for _, step := range adjustmentPipeline {
		for _, item := range step.apply(ac) {
			amount := utils.RoundCents(item.delta)
			ac.running = utils.SumCents(ac.running, amount)
			pct := 0.0
			if ac.base > 0 {
				pct = utils.RoundTo(amount/ac.base*100, 2)
			}
			out = append(out, models.Adjustment{Label: item.label, Amount: amount, Percent: pct})
		}
	}
	return out
}

func ageStep(ac *adjustmentContext) []lineItem {
	rate := math.Min(float64(ac.age)*depreciationPerYear, maxDepreciation)
	return []lineItem{{
		label: fmt.Sprintf("Age depreciation (%d yrs)", ac.age),
		delta: -ac.base * rate,
	}}
}

func usageStep(ac *adjustmentContext) []lineItem {
	delta := 0.0
	if ac.spec.Hours > ac.expectedHours {
		delta = -ac.base * excessUsagePenalty
	}
	return []lineItem{{label: "Usage adjustment", delta: delta}}
}

func regionStep(ac *adjustmentContext) []lineItem {
	pct, macro, ok := regionalAdjustment(ac.spec.Region)
	if !ok {
		ac.regionMissed = true
		label := string(ac.spec.Region)
		if label == "" {
			label = "not provided"
		}
		ac.notes = append(ac.notes, fmt.Sprintf("no regional data for %q; regional adjustment set to 0%%", label))
		return []lineItem{{label: "Regional adjustment (unknown region)", delta: 0}}
	}
	return []lineItem{{
		label: fmt.Sprintf("Regional adjustment (%s %+.0f%%)", macro, pct*100),
		delta: ac.running * pct,
	}}
}

func boomJibStep(ac *adjustmentContext) []lineItem {
	s := ac.spec
	items := []lineItem{{
		label: "Boom length premium",
		delta: math.Max(0, s.BoomLength-boomAllowance) * boomPerFoot,
	}}
	switch s.JibType {
	case models.JibStandard:
		items = append(items, lineItem{label: "Standard jib", delta: standardJibBase + s.JibLength*standardJibPerFoot})
	case models.JibLuffing:
		items = append(items, lineItem{label: "Luffing jib", delta: luffingJibBase + s.JibLength*luffingJibPerFoot})
		if isPremiumModel(s.Manufacturer, s.Model) {
			items = append(items, lineItem{label: "Premium model luffing bonus", delta: premiumLuffingBonus})
		}
	}
	return items
}

func conditionStep(ac *adjustmentContext) []lineItem {
	pct := conditionAdjustments[ac.spec.Condition]
	return []lineItem{{
		label: fmt.Sprintf("Condition (%s)", ac.spec.Condition),
		delta: ac.running * pct,
	}}
}

func marketStep(ac *adjustmentContext) []lineItem {
	return []lineItem{{label: "Market adjustment", delta: ac.running * ac.market}}
}

func residualFloorStep(ac *adjustmentContext) []lineItem {
	floor := utils.RoundCents(ac.base * residualFloorShare)
	delta := 0.0
	if ac.running < floor {
		delta = floor - ac.running
		ac.notes = append(ac.notes, "value lifted to residual floor")
	}
	return []lineItem{{label: "Residual value floor", delta: delta}}
}
