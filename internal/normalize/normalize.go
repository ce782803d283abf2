package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
)

// Raw is an untyped equipment record as it arrives from JSON or CSV.
type Raw map[string]any

type specInput struct {
	Manufacturer string  `json:"manufacturer" validate:"required"`
	Model        string  `json:"model" validate:"required"`
	Year         int     `json:"year" validate:"required,gte=1950,lte=2100"`
	Capacity     float64 `json:"capacity" validate:"gt=0,lte=10000"`
	Hours        float64 `json:"hours" validate:"gte=0,lte=500000"`
	BoomLength   float64 `json:"boom_length" validate:"gte=0,lte=5000"`
	JibLength    float64 `json:"jib_length" validate:"gte=0,lte=5000"`
}

var fieldOrder = []string{
	"manufacturer", "model", "year", "capacity", "hours", "condition",
	"crane_type", "boom_length", "jib_type", "jib_length", "region",
}

var fieldAliases = map[string][]string{
	"manufacturer": {"manufacturer", "make", "mfr", "brand", "oem"},
	"model":        {"model", "model_name", "model_number"},
	"year":         {"year", "model_year", "yom", "year_of_manufacture", "year_built"},
	"capacity":     {"capacity", "capacity_tons", "tons", "capacity_t", "max_capacity", "tonnage"},
	"hours":        {"hours", "operating_hours", "hour_meter", "engine_hours", "usage_hours"},
	"condition":    {"condition", "condition_grade", "state"},
	"crane_type":   {"crane_type", "type", "category", "cranetype"},
	"boom_length":  {"boom_length", "boom", "boom_length_ft", "main_boom"},
	"jib_type":     {"jib_type", "jib", "jib_config"},
	"jib_length":   {"jib_length", "jib_length_ft"},
	"region":       {"region", "market", "location_region", "location"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize validates raw and turns it into a typed EquipmentSpec. Every
// problem found is reported in a single *models.ValidationError.
func Normalize(raw Raw) (models.EquipmentSpec, error) {
	fields := indexRaw(raw)
	problems := map[string]string{}

	var in specInput
	in.Manufacturer = collapseSpaces(toString(fields["manufacturer"]))
	in.Model = collapseSpaces(toString(fields["model"]))

	if v, ok, err := toFloat(fields["year"]); err != nil {
		problems["year"] = "must be a number"
	} else if ok {
		if v != math.Trunc(v) {
			problems["year"] = "must be a whole year"
		} else {
			in.Year = int(v)
		}
	}

	if v, ok, err := toFloat(fields["capacity"]); err != nil {
		problems["capacity"] = "must be a number"
	} else if !ok {
		problems["capacity"] = "is required"
	} else {
		in.Capacity = v
	}

	hoursProvided := false
	if v, ok, err := toFloat(fields["hours"]); err != nil {
		problems["hours"] = "must be a number"
	} else if ok {
		in.Hours = v
		hoursProvided = true
	}

	if v, ok, err := toFloat(fields["boom_length"]); err != nil {
		problems["boom_length"] = "must be a number"
	} else if ok {
		in.BoomLength = v
	}

	jibType, jibLenFromType, err := ParseJibType(toString(fields["jib_type"]))
	if err != nil {
		problems["jib_type"] = err.Error()
	}
	if v, ok, err := toFloat(fields["jib_length"]); err != nil {
		problems["jib_length"] = "must be a number"
	} else if ok {
		in.JibLength = v
	} else if jibLenFromType > 0 {
		in.JibLength = jibLenFromType
	}

	condition, conditionProvided, err := ParseCondition(toString(fields["condition"]))
	if err != nil {
		problems["condition"] = err.Error()
	}

	craneType, err := ParseCraneType(toString(fields["crane_type"]))
	if err != nil {
		problems["crane_type"] = err.Error()
	}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if _, exists := problems[fe.Field()]; exists {
					continue
				}
				problems[fe.Field()] = describe(fe)
			}
		} else {
			problems["spec"] = err.Error()
		}
	}

	if len(problems) > 0 {
		verr := &models.ValidationError{}
		for _, f := range fieldOrder {
			if reason, ok := problems[f]; ok {
				verr.Add(f, reason)
				delete(problems, f)
			}
		}
		for f, reason := range problems {
			verr.Add(f, reason)
		}
		return models.EquipmentSpec{}, verr
	}

	if jibType == models.JibNone {
		in.JibLength = 0
	}

	return models.EquipmentSpec{
		Manufacturer:      in.Manufacturer,
		Model:             in.Model,
		Year:              in.Year,
		Capacity:          in.Capacity,
		Hours:             in.Hours,
		Condition:         condition,
		CraneType:         craneType,
		BoomLength:        in.BoomLength,
		JibType:           jibType,
		JibLength:         in.JibLength,
		Region:            ParseRegion(toString(fields["region"])),
		HoursProvided:     hoursProvided,
		ConditionProvided: conditionProvided,
	}, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func indexRaw(raw Raw) map[string]any {
	byKey := make(map[string]any, len(raw))
	for k, v := range raw {
		byKey[NormalizeKey(k)] = v
	}
	out := make(map[string]any, len(fieldAliases))
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			v, ok := byKey[alias]
			if !ok || isBlank(v) {
				continue
			}
			out[field] = v
			break
		}
	}
	return out
}

// NormalizeKey folds a column or JSON key to snake_case without a BOM.
func NormalizeKey(k string) string {
	k = strings.ReplaceAll(k, "\ufeff", "")
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(k)
	return k
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

var numberCleaner = strings.NewReplacer(",", "", "_", "", "$", "", " ", "")

// toFloat reports ok=false for absent values and a non-nil error for values
// that are present but not numeric.
func toFloat(v any) (float64, bool, error) {
	f, ok, err := rawFloat(v)
	if err == nil && ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return 0, true, fmt.Errorf("not a finite number")
	}
	return f, ok, err
}

func rawFloat(v any) (float64, bool, error) {
	switch t := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return t, true, nil
	case float32:
		return float64(t), true, nil
	case int:
		return float64(t), true, nil
	case int64:
		return float64(t), true, nil
	case json.Number:
		f, err := t.Float64()
		return f, true, err
	case string:
		s := numberCleaner.Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, true, fmt.Errorf("not a number: %q", t)
		}
		return f, true, nil
	default:
		return 0, true, fmt.Errorf("unsupported type %T", v)
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func enumKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "", ".", "", "/", "").Replace(s)
}

var craneTypeAliases = map[string]models.CraneType{
	"crawler":            models.CraneTypeCrawler,
	"crawlercrane":       models.CraneTypeCrawler,
	"latticeboomcrawler": models.CraneTypeCrawler,
	"lattice":            models.CraneTypeCrawler,
	"allterrain":         models.CraneTypeAllTerrain,
	"allterraincrane":    models.CraneTypeAllTerrain,
	"at":                 models.CraneTypeAllTerrain,
	"roughterrain":       models.CraneTypeRoughTerrain,
	"roughterraincrane":  models.CraneTypeRoughTerrain,
	"rt":                 models.CraneTypeRoughTerrain,
	"truckmounted":       models.CraneTypeTruckMounted,
	"truck":              models.CraneTypeTruckMounted,
	"truckcrane":         models.CraneTypeTruckMounted,
	"boomtruck":          models.CraneTypeTruckMounted,
	"tower":              models.CraneTypeTower,
	"towercrane":         models.CraneTypeTower,
}

// ParseCraneType maps free text to a crane type. Empty input yields the
// unknown type; unrecognized non-empty input is an error.
func ParseCraneType(s string) (models.CraneType, error) {
	k := enumKey(s)
	if k == "" {
		return models.CraneTypeUnknown, nil
	}
	if t, ok := craneTypeAliases[k]; ok {
		return t, nil
	}
	return models.CraneTypeUnknown, fmt.Errorf("unrecognized crane type %q", s)
}

var conditionAliases = map[string]models.Condition{
	"excellent": models.ConditionExcellent,
	"likenew":   models.ConditionExcellent,
	"a":         models.ConditionExcellent,
	"good":      models.ConditionGood,
	"b":         models.ConditionGood,
	"average":   models.ConditionGood,
	"fair":      models.ConditionFair,
	"c":         models.ConditionFair,
	"worn":      models.ConditionFair,
	"poor":      models.ConditionPoor,
	"d":         models.ConditionPoor,
	"forparts":  models.ConditionPoor,
	"asis":      models.ConditionPoor,
}

// ParseCondition defaults to good when s is empty; provided reports whether
// the caller actually supplied a condition.
func ParseCondition(s string) (c models.Condition, provided bool, err error) {
	k := enumKey(s)
	if k == "" {
		return models.ConditionGood, false, nil
	}
	if c, ok := conditionAliases[k]; ok {
		return c, true, nil
	}
	return models.ConditionGood, false, fmt.Errorf("unrecognized condition %q", s)
}

var jibAliases = map[string]models.JibType{
	"none":        models.JibNone,
	"no":          models.JibNone,
	"nojib":       models.JibNone,
	"standard":    models.JibStandard,
	"fixed":       models.JibStandard,
	"fixedjib":    models.JibStandard,
	"standardjib": models.JibStandard,
	"luffing":     models.JibLuffing,
	"luffingjib":  models.JibLuffing,
	"luffer":      models.JibLuffing,
}

var jibWithLength = regexp.MustCompile(`^\s*([A-Za-z _-]+?)\s*\(?\s*(\d+(?:\.\d+)?)\s*\)?\s*$`)

// ParseJibType accepts forms like "luffing", "Luffing Jib" or "luffing(120)".
// A length embedded in the text is returned so the caller can use it when no
// explicit jib_length was given.
func ParseJibType(s string) (models.JibType, float64, error) {
	if strings.TrimSpace(s) == "" {
		return models.JibNone, 0, nil
	}
	name, length := s, 0.0
	if m := jibWithLength.FindStringSubmatch(s); m != nil {
		name = m[1]
		length, _ = strconv.ParseFloat(m[2], 64)
	}
	if t, ok := jibAliases[enumKey(name)]; ok {
		return t, length, nil
	}
	return models.JibNone, 0, fmt.Errorf("unrecognized jib type %q", s)
}

var regionAliases = map[string]models.Region{
	"northamerica":  models.RegionNorthAmerica,
	"na":            models.RegionNorthAmerica,
	"us":            models.RegionNorthAmerica,
	"usa":           models.RegionNorthAmerica,
	"unitedstates":  models.RegionNorthAmerica,
	"europe":        models.RegionEurope,
	"eu":            models.RegionEurope,
	"asiapacific":   models.RegionAsiaPacific,
	"apac":          models.RegionAsiaPacific,
	"asia":          models.RegionAsiaPacific,
	"middleeast":    models.RegionMiddleEast,
	"me":            models.RegionMiddleEast,
	"mena":          models.RegionMiddleEast,
	"africa":        models.RegionAfrica,
	"southamerica":  models.RegionSouthAmerica,
	"latam":         models.RegionSouthAmerica,
	"latinamerica":  models.RegionSouthAmerica,
	"midwest":       models.RegionMidwest,
	"northeast":     models.RegionNortheast,
	"southeast":     models.RegionSoutheast,
	"southwest":     models.RegionSouthwest,
	"west":          models.RegionWest,
	"westcoast":     models.RegionWest,
	"gulfcoast":     models.RegionGulfCoast,
	"gulf":          models.RegionGulfCoast,
	"canada":        models.RegionCanada,
	"uk":            models.RegionUK,
	"unitedkingdom": models.RegionUK,
	"gcc":           models.RegionGCC,
	"australia":     models.RegionAustralia,
	"anz":           models.RegionAustralia,
}

// ParseRegion canonicalizes known region spellings. Unrecognized labels are
// kept as given rather than rejected.
func ParseRegion(s string) models.Region {
	k := enumKey(s)
	if k == "" {
		return models.RegionUnknown
	}
	if r, ok := regionAliases[k]; ok {
		return r
	}
	return models.Region(collapseSpaces(s))
}
