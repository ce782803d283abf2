package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/calibration"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
)

type CalibrationResponse struct {
	Report  calibration.LoadReport        `json:"report"`
	Source  string                        `json:"source"`
	Entries []models.RateCalibrationEntry `json:"entries"`
}

// @Summary Active calibration table
// @Tags calibration
// @Produce json
// @Success 200 {object} CalibrationResponse
// @Router /api/calibration [get]
func (h *Handler) Calibration(c *gin.Context) {
	table := h.Engine().Table()
	c.JSON(http.StatusOK, CalibrationResponse{
		Report:  *h.report.Load(),
		Source:  table.Source(),
		Entries: table.Entries(),
	})
}

// @Summary Reload calibration
// @Description Rebuild the engine from the configured source. In-flight requests keep the previous engine.
// @Description A reload that could only produce the built-in fallback table leaves the live engine in place.
// @Tags calibration
// @Produce json
// @Param X-Admin-Key header string false "admin key"
// @Success 200 {object} calibration.LoadReport
// @Failure 401 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/calibration/reload [post]
func (h *Handler) ReloadCalibration(c *gin.Context) {
	if h.Loader == nil {
		writeError(c, http.StatusNotImplemented, "NOT_CONFIGURED", "Reload is not configured", nil)
		return
	}
	engine, report := h.Loader(c.Request.Context())
	if report.FallbackUsed || engine == nil {
		h.Logger.Warn().
			Str("source", report.Source).
			Str("error", report.Error).
			Msg("calibration reload failed, keeping current table")
		writeError(c, http.StatusServiceUnavailable, "CALIBRATION_UNAVAILABLE", "Calibration source could not be loaded; current table kept", report)
		return
	}
	h.swap(engine, report)
	h.Logger.Info().
		Str("source", report.Source).
		Int("rows", report.Loaded).
		Msg("calibration reloaded")
	c.JSON(http.StatusOK, report)
}
