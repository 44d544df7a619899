package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, headers []string, rows [][]string) *bytes.Buffer {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func TestParseOrders_HappyPath(t *testing.T) {
	buf := buildWorkbook(t,
		[]string{"order_id", "destination_centre", "weight_kg", "volume_m3", "pallet_count"},
		[][]string{{"A1", "CE1", "1000", "10000", "2"}},
	)

	orders, err := ParseOrders(buf, "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "A1", orders[0].ID)
	assert.Equal(t, 1000.0, orders[0].WeightKg)
	assert.Equal(t, 2.0, orders[0].PalletCount)
}

func TestParseOrders_MissingColumnErrors(t *testing.T) {
	buf := buildWorkbook(t,
		[]string{"order_id", "weight_kg", "volume_m3", "pallet_count"},
		[][]string{{"A1", "1000", "10000", "2"}},
	)

	_, err := ParseOrders(buf, "")
	require.Error(t, err)
	var missing ErrMissingColumn
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, "destination_centre", missing.Column)
}
