package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/normalize"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeCancelled  = "CANCELLED"
	CodeInternal   = "INTERNAL_ERROR"
)

// ValuateBatch normalizes and values every record on a bounded worker pool.
// Items stay aligned with the input. A bad record only fails its own slot,
// and records not started before ctx ends are marked cancelled.
func (e *Engine) ValuateBatch(ctx context.Context, raws []normalize.Raw) models.BatchSummary {
	summary := models.BatchSummary{
		RunID: uuid.NewString(),
		Total: len(raws),
		Items: make([]models.BatchItem, len(raws)),
	}

	var g errgroup.Group
	g.SetLimit(e.opts.BatchWorkers)
	for i, raw := range raws {
		if ctx.Err() != nil {
			summary.Items[i] = cancelledItem(i, ctx.Err())
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				summary.Items[i] = cancelledItem(i, err)
				return nil
			}
			summary.Items[i] = e.valuateRaw(i, raw)
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range summary.Items {
		switch item.Status {
		case models.StatusSuccess:
			summary.Succeeded++
		case models.StatusFallbackUsed:
			summary.FallbackUsed++
		default:
			summary.Failed++
		}
	}

	e.logger.Info().
		Str("run_id", summary.RunID).
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("fallback_used", summary.FallbackUsed).
		Int("failed", summary.Failed).
		Msg("batch valuation finished")
	return summary
}

func (e *Engine) valuateRaw(index int, raw normalize.Raw) (item models.BatchItem) {
	defer e.recoverItem(index, &item)
	spec, err := normalize.Normalize(raw)
	if err == nil {
		var res models.ValuationResult
		res, err = e.Valuate(spec)
		if err == nil {
			return models.BatchItem{Index: index, Status: res.Status, Result: &res}
		}
	}
	return models.BatchItem{Index: index, Status: models.StatusFailed, Error: ErrorDetailFor(err)}
}

// recoverItem turns a panic while valuing one record into a failed slot so
// the rest of the batch and the process keep running.
func (e *Engine) recoverItem(index int, item *models.BatchItem) {
	r := recover()
	if r == nil {
		return
	}
	e.logger.Error().Int("index", index).Interface("panic", r).Msg("batch record panicked")
	*item = models.BatchItem{
		Index:  index,
		Status: models.StatusFailed,
		Error:  &models.ErrorDetail{Code: CodeInternal, Message: fmt.Sprintf("internal error: %v", r)},
	}
}

func cancelledItem(index int, err error) models.BatchItem {
	return models.BatchItem{
		Index:  index,
		Status: models.StatusFailed,
		Error:  &models.ErrorDetail{Code: CodeCancelled, Message: err.Error()},
	}
}

// ErrorDetailFor maps an engine error to its wire representation.
func ErrorDetailFor(err error) *models.ErrorDetail {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return &models.ErrorDetail{Code: CodeValidation, Message: verr.Error(), Details: verr.Problems}
	}
	return &models.ErrorDetail{Code: CodeInternal, Message: err.Error()}
}
