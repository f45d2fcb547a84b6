package importer

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/carbonref/factor-cli/internal/config"
	"github.com/carbonref/factor-cli/internal/model"
	"github.com/carbonref/factor-cli/internal/resilience"
)

// ErrBatchTooLarge marks a batch that exceeds the configured row limit.
// Oversized batches are rejected wholesale before any row is processed.
var ErrBatchTooLarge = eris.New("importer: batch exceeds maximum row count")

// Inserter is the storage write surface the coordinator needs. The full
// store satisfies it.
type Inserter interface {
	InsertFactor(ctx context.Context, rec *model.EmissionFactor) (string, error)
}

// Importer drives normalization, validation and storage writes over a
// batch of raw rows, reporting one outcome per input row.
type Importer struct {
	store     Inserter
	validator *Validator
	cfg       config.ImportConfig
	limiter   *rate.Limiter
}

// NewImporter builds an Importer on top of the given storage writer.
func NewImporter(cfg config.ImportConfig, store Inserter) *Importer {
	var limiter *rate.Limiter
	if cfg.WritesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.WritesPerSec), 1)
	}
	return &Importer{
		store:     store,
		validator: NewValidator(cfg),
		cfg:       cfg,
		limiter:   limiter,
	}
}

// ValidateRow normalizes and validates a single raw row without
// touching storage. It backs the dry-run path. rowNum is the 1-based
// data row number used in the returned violations.
func (im *Importer) ValidateRow(rowNum int, raw model.RawRow, createdBy string) (*model.EmissionFactor, []model.ValidationError) {
	candidate := Normalize(raw, createdBy)
	if errs := im.validator.Validate(rowNum, &candidate); len(errs) > 0 {
		return nil, errs
	}
	return im.validator.Record(&candidate), nil
}

// ImportBatch validates every row, then writes the accepted ones.
//
// Rows are validated concurrently but outcomes are reported in input
// order, one per row. Each accepted row is written in its own storage
// transaction: a write failure is reported on that row alone and never
// rolls back or blocks other rows. On cancellation, rows already
// written stay committed and the remaining rows are reported as
// cancelled rather than silently dropped.
func (im *Importer) ImportBatch(ctx context.Context, rows []model.RawRow, createdBy string) (*model.ImportResult, error) {
	if max := im.cfg.MaxBatchRows; max > 0 && len(rows) > max {
		return nil, eris.Wrapf(ErrBatchTooLarge, "%d rows, maximum is %d", len(rows), max)
	}

	outcomes := make([]model.ImportOutcome, len(rows))
	records := make([]*model.EmissionFactor, len(rows))

	// Validation has no cross-row dependency: fan out, keep order by
	// writing results at the row's own index.
	g, gctx := errgroup.WithContext(ctx)
	concurrency := im.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for i, raw := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = cancelledOutcome(i + 1)
				return nil
			}
			rec, errs := im.ValidateRow(i+1, raw, createdBy)
			if len(errs) > 0 {
				outcomes[i] = model.ImportOutcome{
					Row:    i + 1,
					Status: model.OutcomeRejectedInvalid,
					Errors: errs,
				}
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	// Writes happen sequentially in input order, one transaction per row.
	for i, rec := range records {
		if rec == nil {
			continue
		}
		outcomes[i] = im.writeRow(ctx, i+1, rec)
	}

	result := &model.ImportResult{Outcomes: outcomes}
	result.Tally()

	zap.L().Info("batch import complete",
		zap.Int("total", result.TotalRows),
		zap.Int("accepted", result.Accepted),
		zap.Int("rejected", result.Rejected),
	)
	return result, nil
}

// writeRow performs one isolated storage write with the configured
// timeout and rate limit. Transient storage errors are retried with
// backoff; permanent ones (duplicates included) reject the row.
func (im *Importer) writeRow(ctx context.Context, rowNum int, rec *model.EmissionFactor) model.ImportOutcome {
	if ctx.Err() != nil {
		return cancelledOutcome(rowNum)
	}

	if im.limiter != nil {
		if err := im.limiter.Wait(ctx); err != nil {
			return cancelledOutcome(rowNum)
		}
	}

	writeCtx := ctx
	if im.cfg.WriteTimeoutSecs > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, time.Duration(im.cfg.WriteTimeoutSecs)*time.Second)
		defer cancel()
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = func(attempt int, err error) {
		zap.L().Warn("retrying row write",
			zap.Int("row", rowNum),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	id, err := resilience.DoVal(writeCtx, retryCfg, func(ctx context.Context) (string, error) {
		return im.store.InsertFactor(ctx, rec)
	})
	if err != nil {
		if ctx.Err() != nil {
			return cancelledOutcome(rowNum)
		}
		zap.L().Warn("row write failed",
			zap.Int("row", rowNum),
			zap.Error(err),
		)
		return model.ImportOutcome{
			Row:          rowNum,
			Status:       model.OutcomeRejectedStorage,
			StorageError: err.Error(),
		}
	}

	return model.ImportOutcome{
		Row:         rowNum,
		Status:      model.OutcomeAccepted,
		PersistedID: id,
	}
}

func cancelledOutcome(rowNum int) model.ImportOutcome {
	return model.ImportOutcome{
		Row:          rowNum,
		Status:       model.OutcomeRejectedCancelled,
		StorageError: "import cancelled before row was written",
	}
}
