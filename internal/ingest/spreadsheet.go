// Package ingest is the spreadsheet-to-Order boundary the HTTP entry point
// calls before handing orders to the pipeline. It is intentionally thin:
// column mapping and type coercion only, no business rules.
package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"truckload/internal/domain"
)

// requiredColumns are the mandatory headers; a missing one is an input
// error surfaced as 400.
var requiredColumns = []string{
	"order_id", "destination_centre", "weight_kg", "volume_m3", "pallet_count",
}

// ErrMissingColumn is returned when a mandatory column is absent.
type ErrMissingColumn struct {
	Column string
}

func (e ErrMissingColumn) Error() string {
	return fmt.Sprintf("missing mandatory column %q", e.Column)
}

// ErrMissingSheet is returned when the requested sheet does not exist.
type ErrMissingSheet struct {
	Sheet string
}

func (e ErrMissingSheet) Error() string {
	return fmt.Sprintf("missing sheet %q", e.Sheet)
}

// ParseOrders reads the named sheet (or the first sheet, if sheet == "")
// from r and returns the validated Orders. Input errors surface here,
// before anything reaches the pipeline.
func ParseOrders(r io.Reader, sheet string) ([]domain.Order, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, ErrMissingSheet{Sheet: sheet}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	colIdx, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(rows)-1)
	for _, row := range rows[1:] {
		o, err := rowToOrder(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("ingest: row %v: %w", row, err)
		}
		validated, err := domain.NewOrder(o)
		if err != nil {
			return nil, err
		}
		orders = append(orders, validated)
	}
	return orders, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, ErrMissingColumn{Column: col}
		}
	}
	return idx, nil
}

func rowToOrder(row []string, idx map[string]int) (domain.Order, error) {
	cell := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	weight, err := parseFloat(cell("weight_kg"))
	if err != nil {
		return domain.Order{}, fmt.Errorf("weight_kg: %w", err)
	}
	volume, err := parseFloat(cell("volume_m3"))
	if err != nil {
		return domain.Order{}, fmt.Errorf("volume_m3: %w", err)
	}
	pallets, err := parseFloat(cell("pallet_count"))
	if err != nil {
		return domain.Order{}, fmt.Errorf("pallet_count: %w", err)
	}

	var flow *string
	if f := cell("flow"); f != "" {
		flow = &f
	}

	return domain.Order{
		ID:                    cell("order_id"),
		PurchaseOrderID:       cell("purchase_order_id"),
		OriginWarehouse:       cell("origin_warehouse"),
		DestinationCentre:     cell("destination_centre"),
		DestinationExpedition: cell("destination_expedition"),
		Flow:                  flow,
		WeightKg:              weight,
		VolumeM3:              volume,
		PalletCount:           pallets,
		Counts:                domain.StackCounts{Base: pallets},
	}, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
