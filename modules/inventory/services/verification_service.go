package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/product"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/verification"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/composables"
)

// verifyWorkers bounds concurrent store lookups so reconciliation cannot
// overwhelm the product store.
const verifyWorkers = 8

type VerificationService struct {
	products product.Repository
}

func NewVerificationService(products product.Repository) *VerificationService {
	return &VerificationService{products: products}
}

// Verify reconciles source rows against the current store state. Read-only
// and idempotent: two runs against an unchanged store yield identical
// results. Lookups fan out across a bounded pool; per-row order is restored
// before aggregation, so output order always matches source order.
func (s *VerificationService) Verify(
	ctx context.Context,
	sourceKind string,
	rows []importjob.SourceRow,
) (*verification.Result, error) {
	logger := composables.UseLogger(ctx)
	items := make([]verification.Item, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyWorkers)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			items[i] = s.verifyRow(gctx, row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := verification.NewResult(sourceKind, items)
	if total, err := s.products.Count(ctx); err != nil {
		logger.WithError(err).Warn("catalog count unavailable")
	} else {
		result.StoreTotal = total
	}
	logger.WithField("total", result.Total).
		WithField("matches", result.Matches).
		WithField("mismatches", result.Mismatches).
		WithField("not_found", result.NotFound).
		WithField("store_total", result.StoreTotal).
		Info("verification finished")
	return result, nil
}

func (s *VerificationService) verifyRow(ctx context.Context, row importjob.SourceRow) verification.Item {
	item := verification.Item{
		SKU:         row.SKU,
		Description: row.Description,
		Source: verification.Values{
			Price:           row.Price,
			Stock:           row.Stock,
			StockByLocation: row.StockByLocation,
		},
	}

	p, err := s.products.GetBySKU(ctx, row.SKU)
	if err != nil {
		// A transient lookup failure surfaces as not_found for this one row
		// rather than aborting the whole verification.
		item.Status = verification.StatusNotFound
		return item
	}

	store := verification.Values{
		Price:           p.Price(),
		Stock:           p.Stock(),
		StockByLocation: p.StockByLocation(),
	}
	item.Store = &store
	item.Differences = item.Source.Diff(store)
	if len(item.Differences) > 0 {
		item.Status = verification.StatusMismatch
	} else {
		item.Status = verification.StatusMatch
	}
	return item
}

// ExportXLSX renders a verification result as a workbook, one row per item.
func (s *VerificationService) ExportXLSX(result *verification.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := []any{"code", "description", "status", "source_price", "source_stock", "db_price", "db_stock", "differences"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, errors.Wrap(err, "failed to write header")
	}

	for i, item := range result.Items {
		dbPrice, dbStock := "", ""
		if item.Store != nil {
			dbPrice = item.Store.Price.String()
			dbStock = fmt.Sprintf("%d", item.Store.Stock)
		}
		row := []any{
			item.SKU,
			item.Description,
			string(item.Status),
			item.Source.Price.String(),
			item.Source.Stock,
			dbPrice,
			dbStock,
			strings.Join(item.Differences, "; "),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, errors.Wrap(err, "failed to write row")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize workbook")
	}
	return buf.Bytes(), nil
}
