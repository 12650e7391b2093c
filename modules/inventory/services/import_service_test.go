package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/product"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/value_objects/tirespec"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/services"
)

// fakeRepo is an in-memory product.Repository used across the service tests.
type fakeRepo struct {
	mu           sync.Mutex
	products     map[string]product.Product
	deleteAllErr error
	getErr       error
	deleted      bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[string]product.Product{}}
}

func (r *fakeRepo) GetBySKU(_ context.Context, sku string) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.products[sku]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeRepo) Create(_ context.Context, p product.Product) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.SKU()] = p
	return p, nil
}

func (r *fakeRepo) UpdatePriceStock(_ context.Context, sku string, price decimal.Decimal, stock int, byLocation map[string]int) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[sku]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	updated := product.New(sku, existing.Description(), price, stock,
		product.WithID(existing.ID()),
		product.WithStockByLocation(byLocation),
		product.WithSpec(existing.Spec()),
	)
	r.products[sku] = updated
	return updated, nil
}

func (r *fakeRepo) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteAllErr != nil {
		return r.deleteAllErr
	}
	r.deleted = true
	r.products = map[string]product.Product{}
	return nil
}

func (r *fakeRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products), nil
}

// fakeClassifier returns a canned specification and counts its calls.
type fakeClassifier struct {
	mu         sync.Mutex
	calls      int
	confidence int
	err        error
}

func (c *fakeClassifier) Classify(_ context.Context, _, model string) (tirespec.Specification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return tirespec.Specification{}, c.err
	}
	return tirespec.Specification{
		Width:       tirespec.IntPtr(205),
		AspectRatio: tirespec.IntPtr(55),
		RimDiameter: tirespec.IntPtr(16),
		Confidence:  c.confidence,
		Method:      tirespec.MethodAI,
		AIModel:     model,
	}, nil
}

func (c *fakeClassifier) CostPerCall(string) float64 { return 0.002 }

func (c *fakeClassifier) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// sliceSource yields canned rows; a nil row with a non-nil err simulates a
// malformed source row at that position.
type rowOrErr struct {
	row *importjob.SourceRow
	err error
}

type sliceSource struct {
	rows []rowOrErr
	pos  int
}

func (s *sliceSource) Next(ctx context.Context) (*importjob.SourceRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.rows) {
		return nil, importjob.ErrEndOfSource
	}
	item := s.rows[s.pos]
	s.pos++
	if item.err != nil {
		return nil, item.err
	}
	return item.row, nil
}

func (s *sliceSource) Total() int { return len(s.rows) }

func (s *sliceSource) Close() error { return nil }

func goodRow(i int) rowOrErr {
	return rowOrErr{row: &importjob.SourceRow{
		SKU:         fmt.Sprintf("SKU-%03d", i),
		Description: "NEUMATICO 205/55R16 91V",
		Price:       decimal.NewFromInt(100),
		Stock:       4,
	}}
}

type eventSink struct {
	mu     sync.Mutex
	events []importjob.Event
}

func (s *eventSink) emit(e importjob.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) byType(t importjob.EventType) []importjob.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []importjob.Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (s *eventSink) last() importjob.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

func newService(repo *fakeRepo, cl *fakeClassifier) *services.ImportService {
	return services.NewImportService(services.ImportServiceConfig{
		Products:   repo,
		Classifier: cl,
	})
}

func TestImportService_Run(t *testing.T) {
	ctx := context.Background()
	file := importjob.FileIdentity{Name: "catalog.xlsx"}

	t.Run("ImportCreatesAllRows", func(t *testing.T) {
		repo := newFakeRepo()
		sink := &eventSink{}
		source := &sliceSource{rows: []rowOrErr{goodRow(1), goodRow(2), goodRow(3)}}

		result, err := newService(repo, &fakeClassifier{confidence: 90}).Run(ctx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, sink.emit)

		require.NoError(t, err)
		assert.True(t, repo.deleted)
		assert.Equal(t, 3, result.Stats.Created)
		assert.Equal(t, 0, result.Stats.Errors)

		require.Len(t, sink.byType(importjob.EventStart), 1)
		completes := sink.byType(importjob.EventComplete)
		require.Len(t, completes, 1)
		assert.Equal(t, importjob.EventComplete, sink.last().Type)
	})

	t.Run("MalformedRowDoesNotAbort", func(t *testing.T) {
		repo := newFakeRepo()
		sink := &eventSink{}
		rows := make([]rowOrErr, 0, 100)
		for i := 0; i < 100; i++ {
			if i == 56 {
				rows = append(rows, rowOrErr{err: errors.New("cannot parse price")})
				continue
			}
			rows = append(rows, goodRow(i))
		}
		source := &sliceSource{rows: rows}

		result, err := newService(repo, &fakeClassifier{confidence: 90}).Run(ctx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, sink.emit)

		require.NoError(t, err)
		assert.Equal(t, 99, result.Stats.Created)
		assert.Equal(t, 1, result.Stats.Errors)
		require.Len(t, sink.byType(importjob.EventComplete), 1)

		errorEvents := sink.byType(importjob.EventError)
		require.Len(t, errorEvents, 1)
		payload, ok := errorEvents[0].Payload.(importjob.ErrorPayload)
		require.True(t, ok)
		assert.False(t, payload.Fatal)
		assert.Equal(t, 56, payload.Row)
	})

	t.Run("LowConfidenceRoutesToClassifier", func(t *testing.T) {
		repo := newFakeRepo()
		cl := &fakeClassifier{confidence: 90}
		// 650R16 extracts width and rim only, scoring below the routing
		// threshold; the full size scores at it or above.
		source := &sliceSource{rows: []rowOrErr{
			{row: &importjob.SourceRow{SKU: "A", Description: "650R16", Price: decimal.NewFromInt(50), Stock: 1}},
			{row: &importjob.SourceRow{SKU: "B", Description: "NEUMATICO 205/55R16 91V", Price: decimal.NewFromInt(60), Stock: 1}},
		}}
		sink := &eventSink{}

		result, err := newService(repo, cl).Run(ctx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, sink.emit)

		require.NoError(t, err)
		assert.Equal(t, 1, cl.callCount())
		assert.InDelta(t, 0.002, result.Cost, 1e-9)

		stored, err := repo.GetBySKU(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, tirespec.MethodAI, stored.Spec().Method)
	})

	t.Run("ClassifierFailureKeepsRegexResult", func(t *testing.T) {
		repo := newFakeRepo()
		cl := &fakeClassifier{err: errors.New("upstream timeout")}
		source := &sliceSource{rows: []rowOrErr{
			{row: &importjob.SourceRow{SKU: "A", Description: "650R16", Price: decimal.NewFromInt(50), Stock: 1}},
		}}
		sink := &eventSink{}

		result, err := newService(repo, cl).Run(ctx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, sink.emit)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Stats.Created)
		assert.Zero(t, result.Cost)
		assert.NotEmpty(t, sink.byType(importjob.EventWarning))

		stored, err := repo.GetBySKU(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, tirespec.MethodRegex, stored.Spec().Method)
	})

	t.Run("LowConfidenceWrittenWithWarning", func(t *testing.T) {
		repo := newFakeRepo()
		cl := &fakeClassifier{confidence: 30}
		source := &sliceSource{rows: []rowOrErr{
			{row: &importjob.SourceRow{SKU: "A", Description: "650R16", Price: decimal.NewFromInt(50), Stock: 1}},
		}}
		sink := &eventSink{}

		result, err := newService(repo, cl).Run(ctx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, sink.emit)

		require.NoError(t, err)
		// Written anyway: low confidence flags for review, never drops.
		assert.Equal(t, 1, result.Stats.Created)

		warnings := sink.byType(importjob.EventWarning)
		require.NotEmpty(t, warnings)
	})

	t.Run("EmptySKUSkipped", func(t *testing.T) {
		repo := newFakeRepo()
		source := &sliceSource{rows: []rowOrErr{
			{row: &importjob.SourceRow{Description: "NEUMATICO 205/55R16", Price: decimal.NewFromInt(50)}},
			goodRow(1),
		}}
		sink := &eventSink{}

		result, err := newService(repo, &fakeClassifier{confidence: 90}).Run(ctx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, sink.emit)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Stats.Skipped)
		assert.Equal(t, 1, result.Stats.Created)
	})

	t.Run("UpdateNeverCreatesMissingProducts", func(t *testing.T) {
		repo := newFakeRepo()
		_, err := repo.Create(ctx, product.New("KNOWN", "205/55R16", decimal.NewFromInt(10), 1))
		require.NoError(t, err)

		source := &sliceSource{rows: []rowOrErr{
			{row: &importjob.SourceRow{SKU: "KNOWN", Description: "205/55R16", Price: decimal.NewFromInt(20), Stock: 2}},
			{row: &importjob.SourceRow{SKU: "GHOST", Description: "205/55R16", Price: decimal.NewFromInt(30), Stock: 3}},
		}}
		sink := &eventSink{}

		result, err := newService(repo, &fakeClassifier{confidence: 90}).Run(ctx,
			services.RunParams{Kind: importjob.KindUpdate, File: file}, source, sink.emit)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Stats.Updated)
		assert.Equal(t, 1, result.Stats.NotFound)
		assert.False(t, repo.deleted)

		_, err = repo.GetBySKU(ctx, "GHOST")
		assert.ErrorIs(t, err, product.ErrProductNotFound)

		updated, err := repo.GetBySKU(ctx, "KNOWN")
		require.NoError(t, err)
		assert.Equal(t, "20", updated.Price().String())
	})

	t.Run("DeleteAllFailureIsFatal", func(t *testing.T) {
		repo := newFakeRepo()
		repo.deleteAllErr = errors.New("permission denied")
		source := &sliceSource{rows: []rowOrErr{goodRow(1)}}
		sink := &eventSink{}

		_, err := newService(repo, &fakeClassifier{confidence: 90}).Run(ctx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, sink.emit)

		require.Error(t, err)
		errorEvents := sink.byType(importjob.EventError)
		require.Len(t, errorEvents, 1)
		payload, ok := errorEvents[0].Payload.(importjob.ErrorPayload)
		require.True(t, ok)
		assert.True(t, payload.Fatal)
		assert.Empty(t, sink.byType(importjob.EventComplete))
		assert.Empty(t, sink.byType(importjob.EventStart))
	})

	t.Run("CancellationEmitsNoComplete", func(t *testing.T) {
		repo := newFakeRepo()
		runCtx, cancel := context.WithCancel(ctx)

		rows := make([]rowOrErr, 10)
		for i := range rows {
			rows[i] = goodRow(i)
		}
		source := &sliceSource{rows: rows}
		var count int
		sink := &eventSink{}
		emit := func(e importjob.Event) {
			sink.emit(e)
			if e.Type == importjob.EventProgress {
				count++
				if count == 3 {
					cancel()
				}
			}
		}

		_, err := newService(repo, &fakeClassifier{confidence: 90}).Run(runCtx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, emit)

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, sink.byType(importjob.EventComplete))
		// At most one extra row after the cancel.
		assert.LessOrEqual(t, count, 4)
	})

	t.Run("SampleBoundedWithEndpoints", func(t *testing.T) {
		repo := newFakeRepo()
		rows := make([]rowOrErr, 30)
		for i := range rows {
			rows[i] = goodRow(i)
		}
		source := &sliceSource{rows: rows}
		sink := &eventSink{}

		result, err := newService(repo, &fakeClassifier{confidence: 90}).Run(ctx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, sink.emit)

		require.NoError(t, err)
		require.Len(t, result.Sample, services.MaxSampleRows)
		assert.Equal(t, "SKU-000", result.Sample[0].SKU)
		assert.Equal(t, "SKU-029", result.Sample[len(result.Sample)-1].SKU)
	})

	t.Run("ProgressReachesHundredPercent", func(t *testing.T) {
		repo := newFakeRepo()
		source := &sliceSource{rows: []rowOrErr{goodRow(1), goodRow(2)}}
		sink := &eventSink{}

		_, err := newService(repo, &fakeClassifier{confidence: 90}).Run(ctx,
			services.RunParams{Kind: importjob.KindImport, File: file}, source, sink.emit)
		require.NoError(t, err)

		progress := sink.byType(importjob.EventProgress)
		require.NotEmpty(t, progress)
		lastPayload, ok := progress[len(progress)-1].Payload.(importjob.ProgressPayload)
		require.True(t, ok)
		assert.Equal(t, 100, lastPayload.Progress.Percent)
	})
}
