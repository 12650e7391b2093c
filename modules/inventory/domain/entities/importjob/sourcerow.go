package importjob

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrEndOfSource signals a RowSource is exhausted.
var ErrEndOfSource = errors.New("end of source")

// SourceRow is one spreadsheet line, immutable once read.
type SourceRow struct {
	SKU             string          `json:"sku"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	StockByLocation map[string]int  `json:"stockByLocation,omitempty"`
}

// RowSource yields rows from an uploaded spreadsheet: finite, ordered,
// single-pass, not restartable. Callers that need the rows again later must
// cache them (the recovery store keeps a bounded sample for verification).
type RowSource interface {
	// Next returns the next row, or ErrEndOfSource when exhausted.
	Next(ctx context.Context) (*SourceRow, error)
	// Total is the number of rows the source will yield.
	Total() int
	Close() error
}
