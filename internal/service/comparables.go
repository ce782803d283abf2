package service

import (
	"math"
	"sort"
	"time"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
)

const comparableCapacityTolerance = 0.30

func sale(id, manufacturer, model string, year int, ct models.CraneType, capacity, price float64, region models.Region, soldAt string) models.Comparable {
	t, _ := time.Parse("2006-01-02", soldAt)
	return models.Comparable{
		ID:           id,
		Manufacturer: manufacturer,
		Model:        model,
		Year:         year,
		CraneType:    ct,
		Capacity:     capacity,
		Price:        price,
		Region:       region,
		SoldAt:       t,
		Source:       "builtin",
	}
}

// DefaultComparables is the reference sales set used when no database is
// configured.
func DefaultComparables() []models.Comparable {
	return []models.Comparable{
		sale("cs-1001", "Manitowoc", "MLC300", 2017, models.CraneTypeCrawler, 110, 720000, models.RegionNorthAmerica, "2024-03-14"),
		sale("cs-1002", "Liebherr", "LR 1130", 2016, models.CraneTypeCrawler, 130, 845000, models.RegionEurope, "2024-01-22"),
		sale("cs-1003", "Kobelco", "CK1100G", 2019, models.CraneTypeCrawler, 100, 690000, models.RegionAsiaPacific, "2023-11-05"),
		sale("cs-1004", "Link-Belt", "218 HSL", 2015, models.CraneTypeCrawler, 100, 540000, models.RegionMidwest, "2023-09-18"),
		sale("cs-1005", "Manitowoc", "MLC165", 2014, models.CraneTypeCrawler, 165, 610000, models.RegionGulfCoast, "2023-06-30"),
		sale("cs-1006", "Liebherr", "LR 1300", 2018, models.CraneTypeCrawler, 300, 1650000, models.RegionEurope, "2024-02-09"),
		sale("cs-1007", "Sany", "SCC8000A", 2020, models.CraneTypeCrawler, 800, 2900000, models.RegionMiddleEast, "2023-12-01"),
		sale("cs-2001", "Grove", "GMK4100L", 2019, models.CraneTypeAllTerrain, 100, 610000, models.RegionMidwest, "2024-04-02"),
		sale("cs-2002", "Liebherr", "LTM 1100-5.2", 2017, models.CraneTypeAllTerrain, 100, 655000, models.RegionEurope, "2024-02-27"),
		sale("cs-2003", "Tadano", "AC 4.080-1", 2020, models.CraneTypeAllTerrain, 80, 540000, models.RegionNortheast, "2023-10-11"),
		sale("cs-2004", "Grove", "GMK5250L", 2018, models.CraneTypeAllTerrain, 250, 1180000, models.RegionCanada, "2023-08-21"),
		sale("cs-2005", "Demag", "AC 100-4L", 2016, models.CraneTypeAllTerrain, 110, 575000, models.RegionUK, "2023-05-16"),
		sale("cs-3001", "Grove", "RT765E-2", 2018, models.CraneTypeRoughTerrain, 65, 330000, models.RegionGulfCoast, "2024-01-08"),
		sale("cs-3002", "Tadano", "GR-1000XL", 2019, models.CraneTypeRoughTerrain, 100, 520000, models.RegionSouthwest, "2023-07-25"),
		sale("cs-3003", "Link-Belt", "75RT", 2017, models.CraneTypeRoughTerrain, 75, 345000, models.RegionMidwest, "2023-03-03"),
		sale("cs-4001", "Manitex", "50128S", 2019, models.CraneTypeTruckMounted, 50, 240000, models.RegionNortheast, "2023-09-29"),
		sale("cs-5001", "Potain", "MDT 389", 2018, models.CraneTypeTower, 16, 410000, models.RegionEurope, "2023-11-20"),
	}
}

// Comparables returns reference sales of the same crane type within 30% of
// the target capacity, newest first.
func (e *Engine) Comparables(craneType models.CraneType, capacity float64) []models.Comparable {
	out := []models.Comparable{}
	if craneType == models.CraneTypeUnknown || !(capacity > 0) || math.IsInf(capacity, 0) {
		return out
	}
	tolerance := comparableCapacityTolerance * capacity
	for _, c := range e.comparables {
		if c.CraneType != craneType {
			continue
		}
		if math.Abs(c.Capacity-capacity) > tolerance {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SoldAt.Equal(out[j].SoldAt) {
			return out[i].SoldAt.After(out[j].SoldAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > e.opts.ComparablesLimit {
		out = out[:e.opts.ComparablesLimit]
	}
	return out
}
