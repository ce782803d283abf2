package service

import (
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/utils"
)

const (
	maintenanceRate   = 0.03
	insuranceRate     = 0.015
	annualStorageCost = 12000.0

	// Prices outside this range cannot come from a real listing and would
	// push ratios past what float64 can hold.
	minPrice = 1.0
	maxPrice = 1e10
)

// AnalyzeROI projects one year of rental income against ownership costs.
// Payback and break-even are nil whenever they cannot be reached.
func (e *Engine) AnalyzeROI(spec models.EquipmentSpec, purchasePrice, utilization float64, mode models.RentalMode) (models.ROIAnalysis, error) {
	verr := &models.ValidationError{}
	if !(purchasePrice > 0) {
		verr.Add("purchase_price", "must be greater than 0")
	} else if purchasePrice < minPrice || purchasePrice > maxPrice {
		verr.Add("purchase_price", "must be between 1 and 1e10")
	}
	if !(utilization > 0 && utilization <= 1) {
		verr.Add("utilization_rate", "must be in (0, 1]")
	}
	if err := verr.OrNil(); err != nil {
		return models.ROIAnalysis{}, err
	}

	quote, err := e.QuoteRental(spec, mode)
	if err != nil {
		return models.ROIAnalysis{}, err
	}

	// Operator wages scale with hours worked on calibrated quotes; otherwise a
	// flat annual cost is assumed.
	var operatorFixed, operatorPerUtil float64
	if quote.Mode == models.ModeOperated {
		if quote.Calibrated {
			operatorPerUtil = (quote.MonthlyRate - quote.BareMonthlyRate) * 12
		} else {
			operatorFixed = e.opts.DefaultOperatorCost
		}
	}

	maintenance := purchasePrice * maintenanceRate
	insurance := purchasePrice * insuranceRate
	fixed := maintenance + insurance + annualStorageCost + operatorFixed
	operatorCost := operatorFixed + operatorPerUtil*utilization
	opex := maintenance + insurance + annualStorageCost + operatorCost

	revenuePerUtil := quote.MonthlyRate * 12
	revenue := revenuePerUtil * utilization
	noi := revenue - opex

	out := models.ROIAnalysis{
		Status:          quote.Status,
		Mode:            quote.Mode,
		PurchasePrice:   utils.RoundCents(purchasePrice),
		UtilizationRate: utilization,
		MonthlyRate:     quote.MonthlyRate,
		Calibrated:      quote.Calibrated,
		OperatingExpenses: models.OperatingExpenses{
			Maintenance:  utils.RoundCents(maintenance),
			Insurance:    utils.RoundCents(insurance),
			Storage:      annualStorageCost,
			OperatorCost: utils.RoundCents(operatorCost),
			Total:        utils.RoundCents(opex),
		},
		AnnualRevenue:      utils.RoundCents(revenue),
		NetOperatingIncome: utils.RoundCents(noi),
		ROIPercent:         utils.RoundTo(noi/purchasePrice*100, 2),
	}

	if noi > 0 {
		payback := utils.RoundTo(purchasePrice/noi, 2)
		out.PaybackYears = &payback
	}

	if margin := revenuePerUtil - operatorPerUtil; margin > 0 {
		if u := fixed / margin; u <= 1 {
			be := utils.RoundTo(u, 4)
			out.BreakEvenUtilization = &be
		}
	}
	return out, nil
}
