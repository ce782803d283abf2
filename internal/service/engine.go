package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/calibration"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
)

const (
	defaultBaseRatePerTon   = 104.0
	defaultOperatorCost     = 95000.0
	defaultBatchWorkers     = 8
	defaultComparablesLimit = 4
)

type Options struct {
	// EvalYear is the year ages are measured against; zero means the current year.
	EvalYear            int
	MarketAdjustment    float64
	BaseRatePerTon      float64
	DefaultOperatorCost float64
	BatchWorkers        int
	ComparablesLimit    int
	// Comparables replaces the built-in reference sales when non-nil.
	Comparables []models.Comparable
}

// Engine bundles the calibration table and pricing options. It is never
// mutated after NewEngine, so one instance can serve concurrent callers; a
// reload builds a new Engine.
type Engine struct {
	table       *calibration.Table
	opts        Options
	comparables []models.Comparable
	logger      zerolog.Logger
}

func NewEngine(table *calibration.Table, opts Options, logger zerolog.Logger) *Engine {
	if table == nil {
		table = calibration.NewTable(nil, "none")
	}
	if opts.EvalYear <= 0 {
		opts.EvalYear = time.Now().Year()
	}
	if opts.BaseRatePerTon <= 0 {
		opts.BaseRatePerTon = defaultBaseRatePerTon
	}
	if opts.DefaultOperatorCost <= 0 {
		opts.DefaultOperatorCost = defaultOperatorCost
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = defaultBatchWorkers
	}
	if opts.ComparablesLimit <= 0 {
		opts.ComparablesLimit = defaultComparablesLimit
	}

	comps := opts.Comparables
	if comps == nil {
		comps = DefaultComparables()
	}
	opts.Comparables = nil

	return &Engine{
		table:       table,
		opts:        opts,
		comparables: append([]models.Comparable(nil), comps...),
		logger:      logger,
	}
}

func (e *Engine) Table() *calibration.Table { return e.table }

func (e *Engine) Options() Options { return e.opts }
