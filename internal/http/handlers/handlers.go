package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/calibration"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/service"
)

// EngineLoader builds a fresh engine from the configured reference data.
type EngineLoader func(ctx context.Context) (*service.Engine, calibration.LoadReport)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Validator *validator.Validate
	Logger    zerolog.Logger
	// DB is optional; health reports it only when set.
	DB     Pinger
	Loader EngineLoader

	engine atomic.Pointer[service.Engine]
	report atomic.Pointer[calibration.LoadReport]
}

func New(engine *service.Engine, report calibration.LoadReport, loader EngineLoader, db Pinger, logger zerolog.Logger) *Handler {
	h := &Handler{
		Validator: validator.New(),
		Logger:    logger,
		DB:        db,
		Loader:    loader,
	}
	h.swap(engine, report)
	return h
}

func (h *Handler) Engine() *service.Engine {
	return h.engine.Load()
}

func (h *Handler) swap(engine *service.Engine, report calibration.LoadReport) {
	h.engine.Store(engine)
	h.report.Store(&report)
}

func (h *Handler) Healthz(c *gin.Context) {
	resp := gin.H{"status": "ok", "calibration_rows": h.Engine().Table().Len()}
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
			return
		}
		resp["database"] = "ok"
	}
	c.JSON(http.StatusOK, resp)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeEngineError maps engine errors onto the error envelope.
func (h *Handler) writeEngineError(c *gin.Context, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeError(c, http.StatusBadRequest, service.CodeValidation, "Validation failed", verr.Problems)
		return
	}
	h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("engine error")
	writeError(c, http.StatusInternalServerError, service.CodeInternal, "Internal error", err.Error())
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return false
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, service.CodeValidation, "Validation failed", err.Error())
		return false
	}
	return true
}
