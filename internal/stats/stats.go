// Package stats computes the monthly revenue/occupancy panel.
package stats

import (
	"math"
	"time"

	"cabanas/internal/dates"
	"cabanas/internal/models"
)

// Monthly sums total prices and counts bookings whose stay touches the month.
// The overlap test here is inclusive on both ends (bStart <= monthEnd &&
// bEnd >= monthStart): a booking that merely touches the month still belongs
// in its stats. This is deliberately not the store's half-open conflict test.
func Monthly(year int, month time.Month, bookings []models.Booking) models.MonthStats {
	first, last := dates.MonthBounds(year, month)
	monthStart := dates.FormatDay(first)
	monthEnd := dates.FormatDay(last)

	var out models.MonthStats
	for _, b := range Overlapping(monthStart, monthEnd, bookings) {
		total := b.TotalPrice
		if math.IsNaN(total) || math.IsInf(total, 0) {
			total = 0
		}
		out.Revenue += total
		out.Count++
	}
	return out
}

// Overlapping filters bookings whose [checkIn, checkOut] interval touches the
// closed range [start, end]. Shared with the report exporter, which selects
// the same month slice.
func Overlapping(start, end string, bookings []models.Booking) []models.Booking {
	var out []models.Booking
	for _, b := range bookings {
		if b.CheckIn <= end && b.CheckOut >= start {
			out = append(out, b)
		}
	}
	return out
}
