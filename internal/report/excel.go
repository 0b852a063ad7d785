package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"printcalc/internal/order"
	"printcalc/internal/pricing"
)

const (
	PriceListSheet = "Материалы"
	EstimateSheet  = "Расчёт"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PriceList renders the catalog as a one-sheet workbook.
func PriceList(catalog *pricing.Catalog) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PriceListSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []any{"ID", "Материал", "Цена, ₽/м²", "Срок", "Описание"}
	if err := setRow(f, PriceListSheet, 1, headers); err != nil {
		return nil, err
	}

	for row, m := range catalog.Materials() {
		data := []any{m.ID, m.Name, m.UnitPrice, m.LeadTime, m.Description}
		if err := setRow(f, PriceListSheet, row+2, data); err != nil {
			return nil, err
		}
	}

	if err := boldRow(f, PriceListSheet, "A1", "E1"); err != nil {
		return nil, err
	}
	if err := setWidths(f, PriceListSheet, []colWidth{{"B", 16}, {"D", 22}, {"E", 50}}); err != nil {
		return nil, err
	}

	return write(f)
}

// Estimate renders one quote as a two-column workbook.
func Estimate(b pricing.Breakdown, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", EstimateSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	grommets := "нет"
	if b.Params.Grommets {
		grommets = fmt.Sprintf("да, %d шт × %s ₽", b.GrommetCount, order.FormatRub(b.GrommetUnitPrice))
	}

	rows := [][2]any{
		{"Дата", now.Format("02.01.2006 15:04")},
		{"Материал", b.MaterialName()},
		{"Срок", b.LeadTime()},
		{"Размер", order.FormatSize(b.Params.Width, b.Params.Height)},
		{"Площадь, м²", order.RoundMoney(b.Area)},
		{"Количество, шт", b.Params.Quantity},
		{"Люверсы", grommets},
		{"Материал, ₽", order.RoundMoney(b.MaterialSubtotal)},
		{"Люверсы, ₽", order.RoundMoney(b.GrommetSubtotal)},
		{"Итого, ₽", order.RoundMoney(b.Total)},
	}

	for i, r := range rows {
		if err := setRow(f, EstimateSheet, i+1, r[:]); err != nil {
			return nil, err
		}
	}

	last := fmt.Sprintf("A%d", len(rows))
	if err := boldRow(f, EstimateSheet, "A1", last); err != nil {
		return nil, err
	}
	if err := setWidths(f, EstimateSheet, []colWidth{{"A", 18}, {"B", 28}}); err != nil {
		return nil, err
	}

	return write(f)
}

// setRow fills row (1-based) from column A onwards.
func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

type colWidth struct {
	col   string
	width float64
}

func setWidths(f *excelize.File, sheet string, widths []colWidth) error {
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.col, w.col, w.width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", w.col, err)
		}
	}
	return nil
}

func boldRow(f *excelize.File, sheet, from, to string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func write(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
