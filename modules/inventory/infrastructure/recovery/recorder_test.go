package recovery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/recovery"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/kv"
)

// failingKV returns an error on every operation.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("backend down") }
func (failingKV) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}
func (failingKV) Delete(context.Context, string) error { return errors.New("backend down") }

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	file := importjob.FileIdentity{Name: "catalog.xlsx"}

	t.Run("RecordsFullLifecycle", func(t *testing.T) {
		store := recovery.NewStore(kv.NewMemoryStore(), recovery.Options{})
		recorder := recovery.NewRecorder(store, "tab-1", testLogger())

		recorder.Start(ctx, importjob.KindImport, file)
		recorder.Progress(ctx, importjob.Progress{Current: 5, Total: 10, Percent: 50}, importjob.Stats{Created: 5})
		recorder.Log(ctx, "info", "processed row 5")
		recorder.Complete(ctx, &importjob.Result{Stats: importjob.Stats{Created: 10}})

		snapshot, err := store.GetRecoverable(ctx, "tab-1")
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, 50, snapshot.Progress.Percent)
		require.Len(t, snapshot.Logs, 1)
		assert.Equal(t, "processed row 5", snapshot.Logs[0].Message)
		require.NotNil(t, snapshot.Result)
	})

	t.Run("BackendFailuresAreSwallowed", func(t *testing.T) {
		store := recovery.NewStore(failingKV{}, recovery.Options{})
		recorder := recovery.NewRecorder(store, "tab-1", testLogger())

		assert.NotPanics(t, func() {
			recorder.Start(ctx, importjob.KindImport, file)
			recorder.Progress(ctx, importjob.Progress{}, importjob.Stats{})
			recorder.Log(ctx, "info", "row")
			recorder.SourceSample(ctx, nil)
			recorder.Complete(ctx, &importjob.Result{})
		})
	})
}

func TestCachingSource(t *testing.T) {
	ctx := context.Background()

	newSource := func(n int) importjob.RowSource {
		rows := make([]importjob.SourceRow, n)
		for i := range rows {
			rows[i] = importjob.SourceRow{SKU: string(rune('A' + i)), Price: decimal.NewFromInt(int64(i))}
		}
		return &staticSource{rows: rows}
	}

	t.Run("CachesYieldedRows", func(t *testing.T) {
		caching := recovery.NewCachingSource(newSource(3), 10)
		for {
			_, err := caching.Next(ctx)
			if errors.Is(err, importjob.ErrEndOfSource) {
				break
			}
			require.NoError(t, err)
		}

		rows := caching.Rows()
		require.Len(t, rows, 3)
		assert.Equal(t, "A", rows[0].SKU)
		assert.Equal(t, "C", rows[2].SKU)
	})

	t.Run("CacheIsBounded", func(t *testing.T) {
		caching := recovery.NewCachingSource(newSource(5), 2)
		for {
			_, err := caching.Next(ctx)
			if errors.Is(err, importjob.ErrEndOfSource) {
				break
			}
			require.NoError(t, err)
		}
		assert.Len(t, caching.Rows(), 2)
	})
}

type staticSource struct {
	rows []importjob.SourceRow
	pos  int
}

func (s *staticSource) Next(context.Context) (*importjob.SourceRow, error) {
	if s.pos >= len(s.rows) {
		return nil, importjob.ErrEndOfSource
	}
	row := s.rows[s.pos]
	s.pos++
	return &row, nil
}

func (s *staticSource) Total() int   { return len(s.rows) }
func (s *staticSource) Close() error { return nil }
