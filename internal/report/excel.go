// Package report builds the monthly xlsx report: one row per booking touching
// the month plus a total sum line.
package report

import (
	"errors"
	"fmt"
	"time"

	"cabanas/internal/dates"
	"cabanas/internal/models"
	"cabanas/internal/stats"

	"github.com/xuri/excelize/v2"
)

// ErrNoBookings marks an empty month: nothing to export, not a failure.
var ErrNoBookings = errors.New("no bookings in the selected month")

const sheetName = "Reporte"

var columns = []string{"Cabaña", "Huésped", "Entrada", "Salida", "Noches", "Total", "Estado"}

// Monthly builds the report workbook for the given month. Month selection is
// the inclusive stats predicate: any booking touching the month is included.
func Monthly(year int, month time.Month, bookings []models.Booking) (*excelize.File, error) {
	first, last := dates.MonthBounds(year, month)
	selected := stats.Overlapping(dates.FormatDay(first), dates.FormatDay(last), bookings)
	if len(selected) == 0 {
		return nil, ErrNoBookings
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", "Reporte Mensual")
	_ = f.SetCellValue(sheetName, "A2", fmt.Sprintf("Período: %s %d", monthName(month), year))

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerRow := 4
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, column := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(sheetName, cell, column)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var total float64
	row := headerRow + 1
	for _, b := range selected {
		nights, err := dates.Nights(b.CheckIn, b.CheckOut)
		if err != nil {
			nights = 0
		}
		total += b.TotalPrice

		values := []interface{}{
			b.Cabin,
			b.GuestName,
			b.CheckIn,
			b.CheckOut,
			nights,
			b.TotalPrice,
			models.StatusLabel(b.Status),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	totalCell, _ := excelize.CoordinatesToCellName(1, row+1)
	_ = f.SetCellValue(sheetName, totalCell, fmt.Sprintf("Total: $%.2f", total))
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, totalCell, totalCell, totalStyle)

	_ = f.SetColWidth(sheetName, "A", "B", 22)
	_ = f.SetColWidth(sheetName, "C", "G", 14)

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

// Filename names the export artifact after the reported period.
func Filename(year int, month time.Month) string {
	return fmt.Sprintf("reporte_%04d-%02d.xlsx", year, int(month))
}

func monthName(month time.Month) string {
	names := []string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return names[int(month)-1]
}
