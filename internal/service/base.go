package service

import (
	"strings"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/utils"
)

const baseValuePerTon = 5000.0

var manufacturerPremiums = map[string]float64{
	"liebherr":      1.15,
	"manitowoc":     1.00,
	"grove":         1.00,
	"tadano":        1.05,
	"demag":         1.08,
	"terex":         0.95,
	"kobelco":       1.02,
	"linkbelt":      0.98,
	"hitachi":       0.97,
	"sennebogen":    1.01,
	"konecranes":    0.96,
	"potain":        1.04,
	"sany":          0.85,
	"xcmg":          0.82,
	"zoomlion":      0.84,
	"broderson":     0.90,
	"manitex":       0.90,
	"national":      0.88,
	"elliott":       0.88,
	"americancrane": 0.92,
}

var modelPremiums = map[string]float64{
	"mlc300":     1.00,
	"mlc650":     1.05,
	"lr1300":     1.06,
	"lr11000":    1.12,
	"ltm11005.2": 1.03,
	"ltm1500":    1.08,
	"gmk5250l":   1.04,
	"gmk6300l":   1.06,
	"gr1000xl":   1.02,
	"ac500":      1.05,
	"ck2750g":    1.04,
	"tcc2500":    1.01,
}

type premiumKey struct {
	manufacturer string
	model        string
}

// Heavy-lift models that carry a flat bonus when rigged with a luffing jib.
var premiumModels = map[premiumKey]bool{
	{"manitowoc", "mlc300"}: true,
	{"manitowoc", "mlc650"}: true,
	{"liebherr", "lr1300"}:  true,
	{"liebherr", "lr11000"}: true,
	{"liebherr", "ltm1500"}: true,
	{"demag", "ac500"}:      true,
	{"kobelco", "ck2750g"}:  true,
	{"linkbelt", "tcc2500"}: true,
}

func premiumTableKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

// manufacturerPremium reports 1.0 and false for makes missing from the table.
func manufacturerPremium(name string) (float64, bool) {
	p, ok := manufacturerPremiums[premiumTableKey(name)]
	if !ok {
		return 1.0, false
	}
	return p, true
}

func modelPremium(model string) float64 {
	if p, ok := modelPremiums[premiumTableKey(model)]; ok {
		return p
	}
	return 1.0
}

func isPremiumModel(manufacturer, model string) bool {
	return premiumModels[premiumKey{premiumTableKey(manufacturer), premiumTableKey(model)}]
}

// BaseValue is capacity priced per ton and scaled by manufacturer and model
// premiums. Unknown names price at par.
func BaseValue(spec models.EquipmentSpec) float64 {
	mp, _ := manufacturerPremium(spec.Manufacturer)
	return utils.RoundCents(spec.Capacity * baseValuePerTon * mp * modelPremium(spec.Model))
}
