package models

type CraneType string

const (
	CraneTypeUnknown      CraneType = ""
	CraneTypeCrawler      CraneType = "crawler"
	CraneTypeAllTerrain   CraneType = "all-terrain"
	CraneTypeRoughTerrain CraneType = "rough-terrain"
	CraneTypeTruckMounted CraneType = "truck-mounted"
	CraneTypeTower        CraneType = "tower"
)

type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

type JibType string

const (
	JibNone     JibType = "none"
	JibStandard JibType = "standard"
	JibLuffing  JibType = "luffing"
)

// Region is a canonical region label. Macro regions carry value adjustments;
// sub-regions resolve to their macro region; anything else is kept verbatim so
// calibration rows can still key on it.
type Region string

const (
	RegionUnknown      Region = ""
	RegionNorthAmerica Region = "NorthAmerica"
	RegionEurope       Region = "Europe"
	RegionAsiaPacific  Region = "AsiaPacific"
	RegionMiddleEast   Region = "MiddleEast"
	RegionAfrica       Region = "Africa"
	RegionSouthAmerica Region = "SouthAmerica"

	RegionMidwest   Region = "Midwest"
	RegionNortheast Region = "Northeast"
	RegionSoutheast Region = "Southeast"
	RegionSouthwest Region = "Southwest"
	RegionWest      Region = "West"
	RegionGulfCoast Region = "GulfCoast"
	RegionCanada    Region = "Canada"
	RegionUK        Region = "UK"
	RegionGCC       Region = "GCC"
	RegionAustralia Region = "Australia"
)

var subRegions = map[Region]Region{
	RegionMidwest:   RegionNorthAmerica,
	RegionNortheast: RegionNorthAmerica,
	RegionSoutheast: RegionNorthAmerica,
	RegionSouthwest: RegionNorthAmerica,
	RegionWest:      RegionNorthAmerica,
	RegionGulfCoast: RegionNorthAmerica,
	RegionCanada:    RegionNorthAmerica,
	RegionUK:        RegionEurope,
	RegionGCC:       RegionMiddleEast,
	RegionAustralia: RegionAsiaPacific,
}

// Macro resolves r to one of the six macro regions. ok is false when r has no
// known macro region.
func (r Region) Macro() (Region, bool) {
	switch r {
	case RegionNorthAmerica, RegionEurope, RegionAsiaPacific, RegionMiddleEast, RegionAfrica, RegionSouthAmerica:
		return r, true
	}
	if m, ok := subRegions[r]; ok {
		return m, true
	}
	return RegionUnknown, false
}

type RentalMode string

const (
	ModeBare     RentalMode = "bare"
	ModeOperated RentalMode = "operated"
)

type Status string

const (
	StatusSuccess      Status = "success"
	StatusFallbackUsed Status = "fallback-used"
	StatusFailed       Status = "failed"
)

type Grade string

const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeC      Grade = "C"
)
