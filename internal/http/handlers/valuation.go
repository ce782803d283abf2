package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/normalize"
)

type RentalQuoteRequest struct {
	Spec normalize.Raw `json:"spec" validate:"required"`
	Mode string        `json:"mode" validate:"omitempty,oneof=bare operated"`
}

type ROIRequest struct {
	Spec            normalize.Raw `json:"spec" validate:"required"`
	PurchasePrice   float64       `json:"purchase_price"`
	UtilizationRate float64       `json:"utilization_rate"`
	Mode            string        `json:"mode" validate:"omitempty,oneof=bare operated"`
}

type DealScoreRequest struct {
	Spec        normalize.Raw `json:"spec" validate:"required"`
	AskingPrice float64       `json:"asking_price"`
}

type DealScoreResponse struct {
	Valuation models.ValuationResult `json:"valuation"`
	Deal      models.DealScore       `json:"deal"`
}

// @Summary Value a crane
// @Description Normalize raw attributes and return an itemized valuation
// @Tags valuation
// @Accept json
// @Produce json
// @Param spec body map[string]any true "equipment attributes"
// @Success 200 {object} models.ValuationResult
// @Failure 400 {object} map[string]any
// @Router /api/valuations [post]
func (h *Handler) Valuation(c *gin.Context) {
	var raw normalize.Raw
	if err := c.ShouldBindJSON(&raw); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	spec, err := normalize.Normalize(raw)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	res, err := h.Engine().Valuate(spec)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Rental quote
// @Tags rental
// @Accept json
// @Produce json
// @Param request body RentalQuoteRequest true "spec and mode"
// @Success 200 {object} models.RentalQuote
// @Failure 400 {object} map[string]any
// @Router /api/rental-quotes [post]
func (h *Handler) RentalQuote(c *gin.Context) {
	var req RentalQuoteRequest
	if !h.bind(c, &req) {
		return
	}
	spec, err := normalize.Normalize(req.Spec)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	q, err := h.Engine().QuoteRental(spec, models.RentalMode(req.Mode))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// @Summary ROI and break-even
// @Tags rental
// @Accept json
// @Produce json
// @Param request body ROIRequest true "spec, price and utilization"
// @Success 200 {object} models.ROIAnalysis
// @Failure 400 {object} map[string]any
// @Router /api/roi [post]
func (h *Handler) ROI(c *gin.Context) {
	var req ROIRequest
	if !h.bind(c, &req) {
		return
	}
	spec, err := normalize.Normalize(req.Spec)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	roi, err := h.Engine().AnalyzeROI(spec, req.PurchasePrice, req.UtilizationRate, models.RentalMode(req.Mode))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, roi)
}

// @Summary Score a deal
// @Tags valuation
// @Accept json
// @Produce json
// @Param request body DealScoreRequest true "spec and asking price"
// @Success 200 {object} DealScoreResponse
// @Failure 400 {object} map[string]any
// @Router /api/deal-scores [post]
func (h *Handler) DealScore(c *gin.Context) {
	var req DealScoreRequest
	if !h.bind(c, &req) {
		return
	}
	spec, err := normalize.Normalize(req.Spec)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	engine := h.Engine()
	res, err := engine.Valuate(spec)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	deal, err := engine.ScoreDeal(res, req.AskingPrice)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, DealScoreResponse{Valuation: res, Deal: deal})
}

// @Summary Comparable sales
// @Tags valuation
// @Produce json
// @Param crane_type query string true "crane type"
// @Param capacity query number true "capacity in tons"
// @Success 200 {array} models.Comparable
// @Failure 400 {object} map[string]any
// @Router /api/comparables [get]
func (h *Handler) Comparables(c *gin.Context) {
	verr := &models.ValidationError{}
	craneType, err := normalize.ParseCraneType(c.Query("crane_type"))
	if err != nil {
		verr.Add("crane_type", err.Error())
	} else if craneType == models.CraneTypeUnknown {
		verr.Add("crane_type", "is required")
	}
	capacity, err := strconv.ParseFloat(c.Query("capacity"), 64)
	if err != nil || !(capacity > 0) || math.IsInf(capacity, 0) {
		verr.Add("capacity", "must be a number greater than 0")
	}
	if err := verr.OrNil(); err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Engine().Comparables(craneType, capacity))
}
