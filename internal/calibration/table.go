package calibration

import (
	"math"
	"strings"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
)

type tableKey struct {
	region    string
	craneType models.CraneType
}

// Table is an immutable index of calibration rows keyed by region and crane
// type. Brackets keep their load order so the first match wins.
type Table struct {
	source  string
	entries []models.RateCalibrationEntry
	index   map[tableKey][]int
}

func NewTable(entries []models.RateCalibrationEntry, source string) *Table {
	t := &Table{
		source:  source,
		entries: make([]models.RateCalibrationEntry, len(entries)),
		index:   make(map[tableKey][]int),
	}
	copy(t.entries, entries)
	for i, e := range t.entries {
		k := keyFor(e.Region, e.CraneType)
		t.index[k] = append(t.index[k], i)
	}
	return t
}

func keyFor(region models.Region, craneType models.CraneType) tableKey {
	return tableKey{region: strings.ToLower(strings.TrimSpace(string(region))), craneType: craneType}
}

// Lookup returns the first bracket containing capacity. A false result means
// no row covers the request and callers should fall back to the formula.
func (t *Table) Lookup(region models.Region, craneType models.CraneType, capacity float64) (models.RateCalibrationEntry, bool) {
	if t == nil || craneType == models.CraneTypeUnknown {
		return models.RateCalibrationEntry{}, false
	}
	for _, i := range t.index[keyFor(region, craneType)] {
		e := t.entries[i]
		if e.CapacityLow <= capacity && capacity <= e.CapacityHigh {
			return e, true
		}
	}
	return models.RateCalibrationEntry{}, false
}

// Neighbors returns the highest bare rate among brackets wholly below
// capacity and the lowest among brackets wholly above it, for the same region
// and crane type. Missing sides are 0 and +Inf.
func (t *Table) Neighbors(region models.Region, craneType models.CraneType, capacity float64) (floor, ceiling float64) {
	ceiling = math.Inf(1)
	if t == nil || craneType == models.CraneTypeUnknown {
		return 0, ceiling
	}
	for _, i := range t.index[keyFor(region, craneType)] {
		e := t.entries[i]
		switch {
		case e.CapacityHigh < capacity:
			floor = math.Max(floor, e.BareMonthlyRate)
		case e.CapacityLow > capacity:
			ceiling = math.Min(ceiling, e.BareMonthlyRate)
		}
	}
	return floor, ceiling
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}

// Entries returns a copy of the rows in load order.
func (t *Table) Entries() []models.RateCalibrationEntry {
	if t == nil {
		return nil
	}
	out := make([]models.RateCalibrationEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
