package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/product"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/value_objects/tirespec"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/classifier"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/composables"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/eventbus"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/metrics"
)

const (
	// ConfidenceThreshold routes a row to the AI fallback when regex
	// extraction scores below it.
	ConfidenceThreshold = 70
	// PublishThreshold: rows below it are still written but flagged with a
	// warning for operator review, never silently dropped.
	PublishThreshold = 50
	// MaxSampleRows bounds the before/after sample in the complete event.
	MaxSampleRows = 10
)

type ImportServiceConfig struct {
	Products   product.Repository
	Classifier classifier.Provider
	EventBus   eventbus.EventBus
}

// ImportService drives one job end to end: reads source rows sequentially,
// resolves each row's specification, applies it to the product store, and
// emits a typed event for every state change. Rows are processed one at a
// time on purpose: the classifier rate limit stays predictable and
// row-index progress stays exact.
type ImportService struct {
	products   product.Repository
	classifier classifier.Provider
	eventBus   eventbus.EventBus
}

func NewImportService(config ImportServiceConfig) *ImportService {
	return &ImportService{
		products:   config.Products,
		classifier: config.Classifier,
		eventBus:   config.EventBus,
	}
}

type RunParams struct {
	Kind  importjob.Kind
	Model string
	File  importjob.FileIdentity
}

// Run executes one import job. Cancellation is cooperative: the context is
// checked at the top of each row iteration and before each classifier call,
// so at most one row of extra work happens after a cancel. A cancelled run
// returns the context error and emits no complete event; the receiver
// distinguishes cancellation from completion by that absence.
func (s *ImportService) Run(
	ctx context.Context,
	params RunParams,
	source importjob.RowSource,
	emit importjob.Emitter,
) (*importjob.Result, error) {
	logger := composables.UseLogger(ctx)
	job := importjob.NewJob(params.Kind, params.File)
	job.State = importjob.StateRunning

	total := source.Total()

	// Whole-job preconditions run before any row: a failure here is the only
	// fatal error shape.
	if params.Kind == importjob.KindImport {
		if err := s.products.DeleteAll(ctx); err != nil {
			job.State = importjob.StateFailed
			metrics.JobsTotal.WithLabelValues(string(importjob.StateFailed)).Inc()
			emit(importjob.NewErrorEvent(importjob.ErrorPayload{
				Message: fmt.Sprintf("cannot clear catalog: %v", err),
				Fatal:   true,
			}))
			return nil, fmt.Errorf("failed to clear catalog: %w", err)
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(importjob.ImportStartedEvent{Job: job})
	}

	emit(importjob.NewStartEvent(importjob.StartPayload{
		JobID: job.ID.String(),
		Total: total,
		Model: params.Model,
	}))

	var processed []importjob.SampleRow

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			job.State = importjob.StateCancelled
			metrics.JobsTotal.WithLabelValues(string(importjob.StateCancelled)).Inc()
			logger.WithField("row", i).Info("import cancelled")
			return nil, err
		}

		row, err := source.Next(ctx)
		if errors.Is(err, importjob.ErrEndOfSource) {
			break
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			job.State = importjob.StateCancelled
			metrics.JobsTotal.WithLabelValues(string(importjob.StateCancelled)).Inc()
			return nil, err
		}
		if err != nil {
			// One malformed row never aborts the job.
			job.Stats.Errors++
			metrics.RowsProcessed.WithLabelValues("error").Inc()
			emit(importjob.NewErrorEvent(importjob.ErrorPayload{
				Row:     i,
				Message: err.Error(),
				Fatal:   false,
			}))
			s.emitProgress(emit, job, i+1, total, "", "", nil, "row skipped due to parse error")
			continue
		}

		s.processRow(ctx, job, i, row, params, total, emit, &processed)
	}

	job.State = importjob.StateCompleted
	result := &importjob.Result{
		Stats:      job.Stats,
		Cost:       job.Stats.EstimatedCost,
		Sample:     sampleRows(processed, MaxSampleRows),
		FinishedAt: job.LastActivity,
	}
	job.Result = result

	emit(importjob.NewCompleteEvent(importjob.CompletePayload{
		Stats:  result.Stats,
		Cost:   result.Cost,
		Sample: result.Sample,
	}))
	if s.eventBus != nil {
		s.eventBus.Publish(importjob.ImportCompletedEvent{Job: job, Result: result})
	}
	return result, nil
}

func (s *ImportService) processRow(
	ctx context.Context,
	job *importjob.Job,
	index int,
	row *importjob.SourceRow,
	params RunParams,
	total int,
	emit importjob.Emitter,
	processed *[]importjob.SampleRow,
) {
	if row.SKU == "" {
		job.Stats.Skipped++
		metrics.RowsProcessed.WithLabelValues("skipped").Inc()
		emit(importjob.NewWarningEvent(importjob.WarningPayload{
			Row:     index,
			Message: "row has no supplier code, skipped",
		}))
		s.emitProgress(emit, job, index+1, total, "", "", nil, "skipped row without code")
		return
	}

	spec := s.resolveSpec(ctx, job, index, row, params.Model, emit)

	switch params.Kind {
	case importjob.KindImport:
		p := product.New(row.SKU, row.Description, row.Price, row.Stock,
			product.WithStockByLocation(row.StockByLocation),
			product.WithSpec(spec),
		)
		if _, err := s.products.Create(ctx, p); err != nil {
			job.Stats.Errors++
			metrics.RowsProcessed.WithLabelValues("error").Inc()
			emit(importjob.NewErrorEvent(importjob.ErrorPayload{
				Row:     index,
				SKU:     row.SKU,
				Message: fmt.Sprintf("create failed: %v", err),
				Fatal:   false,
			}))
		} else {
			job.Stats.Created++
			metrics.RowsProcessed.WithLabelValues("created").Inc()
		}
	case importjob.KindUpdate:
		_, err := s.products.UpdatePriceStock(ctx, row.SKU, row.Price, row.Stock, row.StockByLocation)
		switch {
		case errors.Is(err, product.ErrProductNotFound):
			// Update jobs never auto-create missing products.
			job.Stats.NotFound++
			metrics.RowsProcessed.WithLabelValues("not_found").Inc()
			emit(importjob.NewErrorEvent(importjob.ErrorPayload{
				Row:     index,
				SKU:     row.SKU,
				Message: "product not found in catalog",
				Fatal:   false,
			}))
		case err != nil:
			job.Stats.Errors++
			metrics.RowsProcessed.WithLabelValues("error").Inc()
			emit(importjob.NewErrorEvent(importjob.ErrorPayload{
				Row:     index,
				SKU:     row.SKU,
				Message: fmt.Sprintf("update failed: %v", err),
				Fatal:   false,
			}))
		default:
			job.Stats.Updated++
			metrics.RowsProcessed.WithLabelValues("updated").Inc()
		}
	}

	if spec.Confidence < PublishThreshold {
		emit(importjob.NewWarningEvent(importjob.WarningPayload{
			Row:     index,
			SKU:     row.SKU,
			Message: fmt.Sprintf("specification confidence %d below review threshold, written anyway", spec.Confidence),
		}))
	}

	*processed = append(*processed, importjob.SampleRow{
		Index:       index,
		SKU:         row.SKU,
		Description: row.Description,
		Method:      string(spec.Method),
		Confidence:  spec.Confidence,
		Price:       row.Price.String(),
		Stock:       row.Stock,
	})

	confidence := spec.Confidence
	s.emitProgress(emit, job, index+1, total, row.SKU, string(spec.Method), &confidence,
		fmt.Sprintf("processed %s (%s)", row.SKU, spec.Method))
}

// resolveSpec runs the cascading parser: cheap deterministic extraction
// first, the paid classifier only when confidence falls short. A classifier
// failure degrades to the regex result with a warning instead of aborting.
func (s *ImportService) resolveSpec(
	ctx context.Context,
	job *importjob.Job,
	index int,
	row *importjob.SourceRow,
	model string,
	emit importjob.Emitter,
) tirespec.Specification {
	spec := tirespec.Extract(row.Description)
	if spec.Confidence >= ConfidenceThreshold || s.classifier == nil {
		return spec
	}
	if ctx.Err() != nil {
		return spec
	}

	aiSpec, err := s.classifier.Classify(ctx, row.Description, model)
	if err != nil {
		metrics.ClassifierCalls.WithLabelValues("error").Inc()
		emit(importjob.NewWarningEvent(importjob.WarningPayload{
			Row:     index,
			SKU:     row.SKU,
			Message: fmt.Sprintf("classifier unavailable, keeping regex result (confidence %d)", spec.Confidence),
		}))
		return spec
	}

	cost := s.classifier.CostPerCall(model)
	job.Stats.EstimatedCost += cost
	metrics.ClassifierCalls.WithLabelValues("ok").Inc()
	metrics.ClassifierCost.Add(cost)
	return aiSpec
}

func (s *ImportService) emitProgress(
	emit importjob.Emitter,
	job *importjob.Job,
	current, total int,
	sku, method string,
	confidence *int,
	message string,
) {
	job.SetProgress(current, total)
	payload := importjob.ProgressPayload{
		Row:        current - 1,
		Message:    message,
		SKU:        sku,
		Method:     method,
		Confidence: confidence,
		Progress:   job.Progress,
		Stats:      job.Stats,
	}
	emit(importjob.NewProgressEvent(payload))
}

// sampleRows picks evenly spaced rows for operator spot-checking: capped,
// always including the first and last processed row.
func sampleRows(rows []importjob.SampleRow, limit int) []importjob.SampleRow {
	if len(rows) <= limit {
		out := make([]importjob.SampleRow, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]importjob.SampleRow, 0, limit)
	step := float64(len(rows)-1) / float64(limit-1)
	last := -1
	for k := 0; k < limit; k++ {
		idx := int(float64(k)*step + 0.5)
		if idx >= len(rows) {
			idx = len(rows) - 1
		}
		if idx == last {
			continue
		}
		out = append(out, rows[idx])
		last = idx
	}
	return out
}
