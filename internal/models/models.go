package models

import "time"

type EquipmentSpec struct {
	Manufacturer      string    `json:"manufacturer"`
	Model             string    `json:"model"`
	Year              int       `json:"year"`
	Capacity          float64   `json:"capacity"`
	Hours             float64   `json:"hours"`
	Condition         Condition `json:"condition"`
	CraneType         CraneType `json:"crane_type"`
	BoomLength        float64   `json:"boom_length"`
	JibType           JibType   `json:"jib_type"`
	JibLength         float64   `json:"jib_length"`
	Region            Region    `json:"region"`
	HoursProvided     bool      `json:"hours_provided"`
	ConditionProvided bool      `json:"condition_provided"`
}

type Adjustment struct {
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

type ValueRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type ValuationResult struct {
	Status           Status        `json:"status"`
	BaseValue        float64       `json:"base_value"`
	Adjustments      []Adjustment  `json:"adjustments"`
	EstimatedValue   float64       `json:"estimated_value"`
	ConfidenceScore  float64       `json:"confidence_score"`
	ValueRange       ValueRange    `json:"value_range"`
	AgeYears         int           `json:"age_years"`
	EvalYear         int           `json:"eval_year"`
	ExpectedHours    float64       `json:"expected_hours"`
	MarketAdjustment float64       `json:"market_adjustment"`
	Notes            []string      `json:"notes,omitempty"`
	Spec             EquipmentSpec `json:"spec"`
}

type RateCalibrationEntry struct {
	Region          Region    `json:"region"`
	CraneType       CraneType `json:"crane_type"`
	CapacityLow     float64   `json:"capacity_low"`
	CapacityHigh    float64   `json:"capacity_high"`
	BareMonthlyRate float64   `json:"bare_monthly_rate"`
	OperatedRatio   float64   `json:"operated_ratio"`
	Source          string    `json:"source"`
}

type RateFactors struct {
	BaseRatePerTon     float64 `json:"base_rate_per_ton"`
	AgeFactor          float64 `json:"age_factor"`
	CapacityFactor     float64 `json:"capacity_factor"`
	RegionalMultiplier float64 `json:"regional_multiplier"`
	OperatedMultiplier float64 `json:"operated_multiplier"`
}

type UtilizationScenario struct {
	Utilization      float64 `json:"utilization"`
	EffectiveMonthly float64 `json:"effective_monthly"`
	Annualized       float64 `json:"annualized"`
}

type RentalQuote struct {
	Status          Status                `json:"status"`
	Mode            RentalMode            `json:"mode"`
	DailyRate       float64               `json:"daily_rate"`
	WeeklyRate      float64               `json:"weekly_rate"`
	MonthlyRate     float64               `json:"monthly_rate"`
	AnnualRate      float64               `json:"annual_rate"`
	BareMonthlyRate float64               `json:"bare_monthly_rate"`
	RateFactors     RateFactors           `json:"rate_factors"`
	Calibrated      bool                  `json:"calibrated"`
	Source          string                `json:"source"`
	Scenarios       []UtilizationScenario `json:"scenarios"`
}

type OperatingExpenses struct {
	Maintenance  float64 `json:"maintenance"`
	Insurance    float64 `json:"insurance"`
	Storage      float64 `json:"storage"`
	OperatorCost float64 `json:"operator_cost"`
	Total        float64 `json:"total"`
}

type ROIAnalysis struct {
	Status               Status            `json:"status"`
	Mode                 RentalMode        `json:"mode"`
	PurchasePrice        float64           `json:"purchase_price"`
	UtilizationRate      float64           `json:"utilization_rate"`
	MonthlyRate          float64           `json:"monthly_rate"`
	Calibrated           bool              `json:"calibrated"`
	OperatingExpenses    OperatingExpenses `json:"operating_expenses"`
	AnnualRevenue        float64           `json:"annual_revenue"`
	NetOperatingIncome   float64           `json:"net_operating_income"`
	ROIPercent           float64           `json:"roi_percent"`
	PaybackYears         *float64          `json:"payback_years"`
	BreakEvenUtilization *float64          `json:"break_even_utilization"`
}

type Comparable struct {
	ID           string    `json:"id"`
	Manufacturer string    `json:"manufacturer"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	CraneType    CraneType `json:"crane_type"`
	Capacity     float64   `json:"capacity"`
	Price        float64   `json:"price"`
	Region       Region    `json:"region"`
	SoldAt       time.Time `json:"sold_at"`
	Source       string    `json:"source"`
}

type RiskBreakdown struct {
	Age      float64 `json:"age"`
	Usage    float64 `json:"usage"`
	Regional float64 `json:"regional"`
	Market   float64 `json:"market"`
}

type DealScore struct {
	Status          Status        `json:"status"`
	Score           int           `json:"score"`
	Grade           Grade         `json:"grade"`
	RiskScore       float64       `json:"risk_score"`
	Risk            RiskBreakdown `json:"risk"`
	PriceScore      float64       `json:"price_score"`
	ReferenceValue  float64       `json:"reference_value"`
	AskingPrice     float64       `json:"asking_price"`
	DiscountPercent float64       `json:"discount_percent"`
	Comparables     []Comparable  `json:"comparables"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type BatchItem struct {
	Index  int              `json:"index"`
	Status Status           `json:"status"`
	Result *ValuationResult `json:"result,omitempty"`
	Error  *ErrorDetail     `json:"error,omitempty"`
}

type BatchSummary struct {
	RunID        string      `json:"run_id"`
	Total        int         `json:"total"`
	Succeeded    int         `json:"succeeded"`
	FallbackUsed int         `json:"fallback_used"`
	Failed       int         `json:"failed"`
	Items        []BatchItem `json:"items"`
}
