package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/normalize"
)

type BatchRequest struct {
	Specs []normalize.Raw `json:"specs" validate:"required,min=1"`
}

type BatchResponse struct {
	models.BatchSummary
	ParseErrors []string `json:"parse_errors"`
}

// @Summary Batch valuation
// @Description Value many cranes from a CSV upload (field "specs") or a JSON body
// @Tags valuation
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param specs formData file false "specs.csv"
// @Success 200 {object} BatchResponse
// @Failure 400 {object} map[string]any
// @Router /api/batch/valuations [post]
func (h *Handler) BatchValuations(c *gin.Context) {
	var (
		raws      []normalize.Raw
		parseErrs []string
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("specs")
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "specs file required", nil)
			return
		}
		if !validateExt(file.Filename) {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "specs file must be .csv", nil)
			return
		}
		f, err := file.Open()
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not open upload", err.Error())
			return
		}
		defer f.Close()
		raws, parseErrs = normalize.ParseSpecsCSV(f)
	} else {
		var req BatchRequest
		if !h.bind(c, &req) {
			return
		}
		raws = req.Specs
	}
	if parseErrs == nil {
		parseErrs = []string{}
	}

	summary := h.Engine().ValuateBatch(c.Request.Context(), raws)
	h.Logger.Info().
		Str("run_id", summary.RunID).
		Int("records", summary.Total).
		Int("parse_errors", len(parseErrs)).
		Msg("batch request served")
	c.JSON(http.StatusOK, BatchResponse{BatchSummary: summary, ParseErrors: parseErrs})
}

func validateExt(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
