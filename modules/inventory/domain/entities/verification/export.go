package verification

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var csvHeader = []string{"code", "description", "status", "source_price", "source_stock", "db_price", "db_stock", "differences"}

// ToCSV renders the result as delimited text, one row per item.
func (r *Result) ToCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, "failed to write csv header")
	}
	for _, item := range r.Items {
		dbPrice, dbStock := "", ""
		if item.Store != nil {
			dbPrice = item.Store.Price.String()
			dbStock = fmt.Sprintf("%d", item.Store.Stock)
		}
		record := []string{
			item.SKU,
			item.Description,
			string(item.Status),
			item.Source.Price.String(),
			fmt.Sprintf("%d", item.Source.Stock),
			dbPrice,
			dbStock,
			strings.Join(item.Differences, "; "),
		}
		if err := w.Write(record); err != nil {
			return nil, errors.Wrap(err, "failed to write csv record")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush csv")
	}
	return buf.Bytes(), nil
}

// ToJSON renders the full result as a structured dump.
func (r *Result) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal verification result")
	}
	return data, nil
}

// SortedLocations returns the union of location keys across all items, in
// stable order. Used by tabular exports that need one column per location.
func (r *Result) SortedLocations() []string {
	set := map[string]bool{}
	for _, item := range r.Items {
		for location := range item.Source.StockByLocation {
			set[location] = true
		}
		if item.Store != nil {
			for location := range item.Store.StockByLocation {
				set[location] = true
			}
		}
	}
	locations := make([]string, 0, len(set))
	for location := range set {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}
