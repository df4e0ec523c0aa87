// Package report renders tour settlements as spreadsheets.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/tourledger/internal/calculator"
)

const (
	settlementSheet = "Settlements"
	ratesSheet      = "Rates"
)

// SettlementXLSX renders a tour summary as a workbook with one row per
// agency, one per host and a house total, plus a sheet of the buy rates.
func SettlementXLSX(tourName string, summary calculator.TourSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(settlementSheet); err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	index, err := f.GetSheetIndex(settlementSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	header := []string{"Party", "Name", "Status", "Seats", "No-shows", "Collection", "Expenses", "Cost", "Net"}
	if err := writeRow(f, settlementSheet, 1, toAny(header)); err != nil {
		return nil, err
	}

	row := 2
	for _, a := range summary.Agencies {
		s := a.Settlement
		if err := writeRow(f, settlementSheet, row, []any{
			"Agency", a.Name, string(a.Status), s.TotalSeats, s.NoShowSeats,
			s.TotalCollection, s.AgencyExpenses, s.TotalCost, s.NetAmount,
		}); err != nil {
			return nil, err
		}
		row++
	}
	for _, p := range summary.Personal {
		s := p.Settlement
		if err := writeRow(f, settlementSheet, row, []any{
			"Host", p.UserID, "", s.TotalSeats, "",
			s.TotalPersonalIncome, s.PersonalExpenses, s.TotalPersonalCost, s.NetResult,
		}); err != nil {
			return nil, err
		}
		row++
	}
	house := []any{"House", tourName, "", summary.Seats.TotalReceived, "", "", "", "", summary.HouseNet}
	if err := writeRow(f, settlementSheet, row+1, house); err != nil {
		return nil, err
	}

	for _, w := range []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 10},
		{"B", "B", 28},
		{"C", "E", 10},
		{"F", "I", 14},
	} {
		if err := f.SetColWidth(settlementSheet, w.from, w.to, w.width); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(settlementSheet, "A1", "I1", style); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(ratesSheet); err != nil {
		return nil, err
	}
	r := summary.Rates
	rates := [][]any{
		{"Rate", "Amount"},
		{"Regular", r.Regular},
		{"Discount 1", r.D1},
		{"Discount 2", r.D2},
		{"Couple package", r.CouplePackageRate},
		{"Regular bus fare", r.RegularBusFare},
		{"Common variable per head", r.CommonVariablePerHead},
		{"Hotel per head", r.RegHotelPerHead},
		{"Couple hotel per unit", r.CoupleHotelPerUnit},
		{"Received seats", r.TotalReceived},
	}
	for i, values := range rates {
		if err := writeRow(f, ratesSheet, i+1, values); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(ratesSheet, "A", "A", 26); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ratesSheet, "A1", "B1", style); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeRow fills row (1-based) of sheet from column A onwards.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for c, v := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
