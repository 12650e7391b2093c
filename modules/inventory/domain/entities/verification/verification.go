// Package verification models the reconciliation of source rows against the
// product store: per-row verdicts with field-level differences plus an
// aggregate report.
package verification

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusMatch    Status = "match"
	StatusMismatch Status = "mismatch"
	StatusNotFound Status = "not_found"
)

// Values are the comparable fields of one row, either as the spreadsheet
// stated them or as the store currently holds them.
type Values struct {
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	StockByLocation map[string]int  `json:"stockByLocation,omitempty"`
}

// Diff compares two value sets with exact numeric equality and returns one
// human-readable difference string per differing field. Location keys are
// walked as the sorted union of both sides, so the output is stable across
// runs and a location present only in the store is still reported.
func (v Values) Diff(store Values) []string {
	var diffs []string
	if !v.Price.Equal(store.Price) {
		diffs = append(diffs, fmt.Sprintf("price: excel=%s db=%s", v.Price.String(), store.Price.String()))
	}
	if v.Stock != store.Stock {
		diffs = append(diffs, fmt.Sprintf("stock: excel=%d db=%d", v.Stock, store.Stock))
	}
	for _, location := range unionLocations(v.StockByLocation, store.StockByLocation) {
		if v.StockByLocation[location] != store.StockByLocation[location] {
			diffs = append(diffs, fmt.Sprintf("stock[%s]: excel=%d db=%d",
				location, v.StockByLocation[location], store.StockByLocation[location]))
		}
	}
	return diffs
}

func unionLocations(a, b map[string]int) []string {
	set := make(map[string]bool, len(a)+len(b))
	for location := range a {
		set[location] = true
	}
	for location := range b {
		set[location] = true
	}
	locations := make([]string, 0, len(set))
	for location := range set {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}

// Item is one row's reconciliation outcome. Store is nil when the row was
// not found.
type Item struct {
	SKU         string   `json:"sku"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Source      Values   `json:"source"`
	Store       *Values  `json:"store,omitempty"`
	Differences []string `json:"differences,omitempty"`
}

// Result aggregates the per-row items. Counts always satisfy
// Matches + Mismatches + NotFound == Total == len(Items). StoreTotal is the
// full catalog size at verification time, so operators can tell how much of
// the store the verified sample covers.
type Result struct {
	SourceKind string    `json:"sourceKind"`
	Timestamp  time.Time `json:"timestamp"`
	Total      int       `json:"total"`
	Matches    int       `json:"matches"`
	Mismatches int       `json:"mismatches"`
	NotFound   int       `json:"notFound"`
	StoreTotal int       `json:"storeTotal"`
	Items      []Item    `json:"items"`
}

func NewResult(sourceKind string, items []Item) *Result {
	r := &Result{
		SourceKind: sourceKind,
		Timestamp:  time.Now(),
		Total:      len(items),
		Items:      items,
	}
	for _, item := range items {
		switch item.Status {
		case StatusMatch:
			r.Matches++
		case StatusMismatch:
			r.Mismatches++
		case StatusNotFound:
			r.NotFound++
		}
	}
	return r
}
