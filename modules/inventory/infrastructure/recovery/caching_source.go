package recovery

import (
	"context"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
)

// CachingSource decorates a single-pass row source and keeps a bounded copy
// of the rows it yields. The source itself is not restartable, so this copy
// is the only way verification can see the rows again later.
type CachingSource struct {
	inner importjob.RowSource
	max   int
	rows  []importjob.SourceRow
}

func NewCachingSource(inner importjob.RowSource, max int) *CachingSource {
	if max <= 0 {
		max = DefaultMaxSample
	}
	return &CachingSource{inner: inner, max: max}
}

func (c *CachingSource) Next(ctx context.Context) (*importjob.SourceRow, error) {
	row, err := c.inner.Next(ctx)
	if err != nil {
		return nil, err
	}
	if len(c.rows) < c.max {
		c.rows = append(c.rows, *row)
	}
	return row, nil
}

func (c *CachingSource) Total() int {
	return c.inner.Total()
}

func (c *CachingSource) Close() error {
	return c.inner.Close()
}

// Rows returns the cached copy, valid after iteration regardless of how the
// job ended.
func (c *CachingSource) Rows() []importjob.SourceRow {
	return c.rows
}
