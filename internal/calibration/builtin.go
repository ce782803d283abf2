package calibration

import "github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"

const BuiltinName = "builtin"

type bracket struct {
	low, high, rate, ratio float64
}

// Sub-regional reference rates used when no external table can be loaded.
// Macro regions are absent so they quote from the formula. Adjacent brackets
// share their edge; the lower bracket is listed first and wins it.
var builtinRates = map[models.Region]map[models.CraneType][]bracket{
	models.RegionMidwest: {
		models.CraneTypeAllTerrain: {
			{40, 79, 21500, 1.42},
			{79, 120, 34200, 1.40},
			{120, 250, 52800, 1.38},
		},
		models.CraneTypeCrawler: {
			{80, 150, 38500, 1.48},
			{150, 300, 61000, 1.45},
			{300, 660, 88000, 1.42},
		},
		models.CraneTypeRoughTerrain: {
			{25, 60, 11800, 1.52},
			{60, 130, 17600, 1.50},
		},
	},
	models.RegionGulfCoast: {
		models.CraneTypeCrawler: {
			{80, 150, 41200, 1.50},
			{150, 300, 64500, 1.47},
			{300, 660, 92500, 1.44},
		},
		models.CraneTypeRoughTerrain: {
			{25, 60, 12600, 1.56},
			{60, 130, 18900, 1.53},
		},
	},
	models.RegionNortheast: {
		models.CraneTypeAllTerrain: {
			{40, 79, 23800, 1.46},
			{79, 120, 36900, 1.44},
			{120, 250, 56100, 1.41},
		},
		models.CraneTypeTruckMounted: {
			{20, 60, 14200, 1.50},
		},
	},
	models.RegionCanada: {
		models.CraneTypeAllTerrain: {
			{80, 120, 35400, 1.43},
			{120, 250, 54000, 1.40},
		},
	},
	models.RegionUK: {
		models.CraneTypeAllTerrain: {
			{40, 79, 22400, 1.39},
			{79, 120, 33800, 1.38},
		},
		models.CraneTypeTower: {
			{5, 25, 16500, 1.40},
		},
	},
	models.RegionGCC: {
		models.CraneTypeCrawler: {
			{80, 150, 36800, 1.40},
			{150, 300, 58200, 1.38},
		},
	},
	models.RegionAustralia: {
		models.CraneTypeAllTerrain: {
			{80, 120, 37500, 1.45},
			{120, 250, 57400, 1.42},
		},
	},
}

var builtinOrder = []models.Region{
	models.RegionMidwest, models.RegionGulfCoast, models.RegionNortheast,
	models.RegionCanada, models.RegionUK, models.RegionGCC, models.RegionAustralia,
}

var craneTypeOrder = []models.CraneType{
	models.CraneTypeCrawler, models.CraneTypeAllTerrain, models.CraneTypeRoughTerrain,
	models.CraneTypeTruckMounted, models.CraneTypeTower,
}

func builtinEntries() []models.RateCalibrationEntry {
	var out []models.RateCalibrationEntry
	for _, region := range builtinOrder {
		for _, ct := range craneTypeOrder {
			for _, b := range builtinRates[region][ct] {
				out = append(out, models.RateCalibrationEntry{
					Region:          region,
					CraneType:       ct,
					CapacityLow:     b.low,
					CapacityHigh:    b.high,
					BareMonthlyRate: b.rate,
					OperatedRatio:   b.ratio,
					Source:          BuiltinName,
				})
			}
		}
	}
	return out
}

// Builtin returns the static fallback table.
func Builtin() *Table {
	return NewTable(builtinEntries(), BuiltinName)
}
