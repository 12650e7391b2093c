// Package excel reads uploaded spreadsheets into source rows. The reader is
// a finite, ordered, single-pass sequence; malformed rows surface as RowError
// so one bad line never aborts the whole job.
package excel

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/serrors"
)

var (
	ErrNoSheet        = serrors.NewError("EXCEL_NO_SHEET", "workbook has no sheets", "")
	ErrMissingColumns = serrors.NewError("EXCEL_MISSING_COLUMNS", "required columns not found", "")
	ErrNotWorkbook    = serrors.NewError("EXCEL_NOT_XLSX", "file is not an xlsx workbook", "")
)

// SniffWorkbook checks the zip magic bytes without consuming the reader, so
// uploads that are obviously not xlsx are rejected before any parsing work.
// The reader is rewound to its start on success.
func SniffWorkbook(r io.ReadSeeker) error {
	var magic [2]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return ErrNotWorkbook
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "failed to rewind upload")
	}
	if magic != [2]byte{'P', 'K'} {
		return ErrNotWorkbook
	}
	return nil
}

// RowError marks a single unparseable row. Callers should record it and keep
// reading.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Column header aliases as they appear in supplier catalogs.
var (
	skuHeaders         = []string{"CODIGO", "CODE", "SKU"}
	descriptionHeaders = []string{"DESCRIPCION", "DESCRIPTION", "DETALLE"}
	priceHeaders       = []string{"PRECIO", "PRICE", "PRECIO VENTA"}
	stockHeaders       = []string{"STOCK", "STOCK TOTAL", "CANTIDAD"}
)

// Location columns: "STOCK <location>" or "SUC <location>".
var locationPrefixes = []string{"STOCK ", "SUC ", "SUC."}

type columnMap struct {
	sku         int
	description int
	price       int
	stock       int
	locations   map[string]int // location id -> column index
}

type rowSource struct {
	rows [][]string
	cols columnMap
	pos  int
}

// NewRowSource parses the first sheet of an xlsx workbook. The header row is
// resolved against known column aliases; failing that is a job-level
// precondition error, not a row error.
func NewRowSource(r io.Reader) (importjob.RowSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read sheet")
	}
	if len(rows) == 0 {
		return nil, ErrMissingColumns
	}

	cols, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}
	return &rowSource{rows: rows[1:], cols: cols}, nil
}

func resolveColumns(header []string) (columnMap, error) {
	cols := columnMap{sku: -1, description: -1, price: -1, stock: -1, locations: map[string]int{}}
	for i, h := range header {
		name := strings.ToUpper(strings.TrimSpace(h))
		switch {
		case cols.sku < 0 && contains(skuHeaders, name):
			cols.sku = i
		case cols.description < 0 && contains(descriptionHeaders, name):
			cols.description = i
		case cols.price < 0 && contains(priceHeaders, name):
			cols.price = i
		case cols.stock < 0 && contains(stockHeaders, name):
			cols.stock = i
		default:
			for _, prefix := range locationPrefixes {
				if strings.HasPrefix(name, prefix) {
					location := strings.TrimSpace(strings.TrimPrefix(name, prefix))
					if location != "" {
						cols.locations[location] = i
					}
					break
				}
			}
		}
	}
	if cols.sku < 0 || cols.description < 0 || cols.price < 0 || cols.stock < 0 {
		return cols, ErrMissingColumns
	}
	return cols, nil
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

func (s *rowSource) Total() int {
	return len(s.rows)
}

func (s *rowSource) Next(ctx context.Context) (*importjob.SourceRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.rows) {
		return nil, importjob.ErrEndOfSource
	}
	index := s.pos
	raw := s.rows[index]
	s.pos++

	row, err := s.parseRow(raw)
	if err != nil {
		return nil, &RowError{Index: index, Err: err}
	}
	return row, nil
}

func (s *rowSource) Close() error {
	s.rows = nil
	return nil
}

func (s *rowSource) parseRow(raw []string) (*importjob.SourceRow, error) {
	row := &importjob.SourceRow{
		SKU:         strings.TrimSpace(cell(raw, s.cols.sku)),
		Description: strings.TrimSpace(cell(raw, s.cols.description)),
	}

	price, err := parsePrice(cell(raw, s.cols.price))
	if err != nil {
		return nil, err
	}
	row.Price = price

	stock, err := parseCount(cell(raw, s.cols.stock))
	if err != nil {
		return nil, err
	}
	row.Stock = stock

	if len(s.cols.locations) > 0 {
		row.StockByLocation = make(map[string]int, len(s.cols.locations))
		for location, col := range s.cols.locations {
			count, err := parseCount(cell(raw, col))
			if err != nil {
				return nil, fmt.Errorf("location %s: %w", location, err)
			}
			row.StockByLocation[location] = count
		}
	}
	return row, nil
}

func cell(raw []string, i int) string {
	if i < 0 || i >= len(raw) {
		return ""
	}
	return raw[i]
}

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	return d, nil
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Some catalogs export counts as "12.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("invalid count %q", s)
		}
		n = int(f)
	}
	return n, nil
}
