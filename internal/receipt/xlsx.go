// Package receipt exports a cart as a spreadsheet.
package receipt

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"LittleLemon/internal/order"
)

const (
	Sheet       = "Order"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{"Item", "Category", "Unit price", "Qty", "Line total"}

// WriteXLSX writes one row per cart entry followed by a totals row.
func WriteXLSX(w io.Writer, cart []order.CartEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(Sheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(1, 1, 28); err != nil {
		return err
	}
	if err := sw.SetColWidth(2, 5, 14); err != nil {
		return err
	}

	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, e := range cart {
		unit := order.ParsePrice(e.Price)
		line := unit.Mul(decimal.NewFromInt(int64(e.Quantity)))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.Name, e.Category, unit.InexactFloat64(), e.Quantity, line.InexactFloat64()}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	t := order.ComputeTotals(cart)
	cell, err := excelize.CoordinatesToCellName(1, len(cart)+2)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, []any{"Total", nil, nil, t.Items, t.Price.InexactFloat64()}); err != nil {
		return err
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
