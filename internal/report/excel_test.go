package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"printcalc/internal/pricing"
)

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestPriceList(t *testing.T) {
	data, err := PriceList(pricing.DefaultCatalog())
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{PriceListSheet}, f.GetSheetList())

	rows, err := f.GetRows(PriceListSheet)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "Материал", rows[0][1])
	assert.Equal(t, []string{"china", "Китай", "170", "1-2 дня", "Бюджетный вариант для временных баннеров"}, rows[1])
	assert.Equal(t, "translucent", rows[6][0])
	assert.Equal(t, "600", rows[6][2])
}

func TestEstimate(t *testing.T) {
	e, err := pricing.NewEngine(pricing.DefaultCatalog(), pricing.DefaultConfig())
	require.NoError(t, err)
	b := e.Compute(pricing.Params{MaterialID: "translucent", Width: 2, Height: 1.5, Quantity: 2, Grommets: true})

	data, err := Estimate(b, time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	f := open(t, data)
	value := func(cell string) string {
		v, err := f.GetCellValue(EstimateSheet, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "01.03.2025 12:30", value("B1"))
	assert.Equal(t, "Транслюцент", value("B2"))
	assert.Equal(t, "2×1.5 м", value("B4"))
	assert.Equal(t, "3", value("B5"))
	assert.Equal(t, "2", value("B6"))
	assert.Equal(t, "да, 35 шт × 20 ₽", value("B7"))
	assert.Equal(t, "3600", value("B8"))
	assert.Equal(t, "1400", value("B9"))
	assert.Equal(t, "5000", value("B10"))
}

func TestSetRowReportsErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, setRow(f, "Sheet1", 3, []any{"a", 1.5}))
	v, err := f.GetCellValue("Sheet1", "B3")
	require.NoError(t, err)
	assert.Equal(t, "1.5", v)

	assert.Error(t, setRow(f, "Sheet1", 0, []any{"a"}))
	assert.ErrorIs(t, setRow(f, "Sheet1", excelize.TotalRows+1, []any{"a"}), excelize.ErrMaxRows)
	assert.Error(t, setRow(f, "Missing", 1, []any{"a"}))
}

func TestSetWidthsReportsErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, setWidths(f, "Sheet1", []colWidth{{"A", 18}}))
	assert.ErrorIs(t, setWidths(f, "Sheet1", []colWidth{{"A", excelize.MaxColumnWidth + 1}}), excelize.ErrColumnWidth)
	assert.Error(t, setWidths(f, "Missing", []colWidth{{"A", 10}}))
}
