// Package calendar derives the month-view rendering model from the booking
// collection. It is a pure projection: it only reads bookings and never
// mutates them.
package calendar

import (
	"time"

	"cabanas/internal/dates"
	"cabanas/internal/models"
)

// Bar classification of a full-bar slot within a booking's span.
const (
	BarSingle = "single" // check-in == check-out
	BarStart  = "start"
	BarEnd    = "end"
	BarMid    = "mid"
)

// Slot kinds.
const (
	SlotEmpty = "empty"
	SlotFull  = "full"
	SlotSplit = "split"
)

// Half is one side of a split turnover slot.
type Half struct {
	BookingID string `json:"booking_id"`
	Guest     string `json:"guest"`
	Status    string `json:"status"`
}

// Slot is the rendering model for one cabin on one day.
type Slot struct {
	Cabin string `json:"cabin"`
	Kind  string `json:"kind"`

	// Full-bar fields.
	BookingID string `json:"booking_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Bar       string `json:"bar,omitempty"`
	Label     string `json:"label,omitempty"`
	InIcon    bool   `json:"in_icon,omitempty"`
	OutIcon   bool   `json:"out_icon,omitempty"`

	// Split-bar halves: Out ends this day, In starts this day.
	Out *Half `json:"out,omitempty"`
	In  *Half `json:"in,omitempty"`
}

// Day is one calendar cell with a slot per displayed cabin.
type Day struct {
	Number  int    `json:"number"`
	Date    string `json:"date"`
	IsToday bool   `json:"is_today"`
	Slots   []Slot `json:"slots"`
}

// Month is the full projection for one displayed month.
type Month struct {
	Year         int      `json:"year"`
	Month        int      `json:"month"`
	LeadingEmpty int      `json:"leading_empty"`
	Days         []Day    `json:"days"`
	Cabins       []string `json:"cabins"`
}

// Project builds the month grid for the given cabins. Per (cabin, day) the
// booking set is searched for an ending, a starting and an ongoing booking
// independently; a day where one booking ends and another starts renders as
// a split turnover bar, which takes precedence over the full-bar case.
func Project(year int, month time.Month, cabins []string, bookings []models.Booking, today time.Time) Month {
	lastDay := dates.DaysInMonth(year, month)

	m := Month{
		Year:         year,
		Month:        int(month),
		LeadingEmpty: dates.FirstWeekdayIndex(year, month),
		Cabins:       cabins,
		Days:         make([]Day, 0, lastDay),
	}

	for dayNum := 1; dayNum <= lastDay; dayNum++ {
		date := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)
		dateStr := dates.FormatDay(date)
		day := Day{
			Number:  dayNum,
			Date:    dateStr,
			IsToday: dates.SameDay(date, today),
			Slots:   make([]Slot, 0, len(cabins)),
		}

		for _, cabin := range cabins {
			day.Slots = append(day.Slots, projectSlot(cabin, dateStr, dayNum, bookings))
		}
		m.Days = append(m.Days, day)
	}
	return m
}

func projectSlot(cabin, dateStr string, dayNum int, bookings []models.Booking) Slot {
	ending := find(bookings, func(b models.Booking) bool {
		return b.Cabin == cabin && b.CheckOut == dateStr
	})
	starting := find(bookings, func(b models.Booking) bool {
		return b.Cabin == cabin && b.CheckIn == dateStr
	})
	ongoing := find(bookings, func(b models.Booking) bool {
		return b.Cabin == cabin && b.CheckIn < dateStr && b.CheckOut > dateStr
	})

	// Turnover day: one guest leaves, another arrives. A single-day booking
	// matches both predicates with itself and is not a turnover.
	if ending != nil && starting != nil && ending.ID != starting.ID {
		return Slot{
			Cabin: cabin,
			Kind:  SlotSplit,
			Out:   &Half{BookingID: ending.ID, Guest: ending.FirstName(), Status: ending.Status},
			In:    &Half{BookingID: starting.ID, Guest: starting.FirstName(), Status: starting.Status},
		}
	}

	booking := ending
	if booking == nil {
		booking = starting
	}
	if booking == nil {
		booking = ongoing
	}
	if booking == nil {
		return Slot{Cabin: cabin, Kind: SlotEmpty}
	}

	slot := Slot{
		Cabin:     cabin,
		Kind:      SlotFull,
		BookingID: booking.ID,
		Status:    booking.Status,
		Bar:       classify(booking, dateStr),
	}

	switch {
	case dateStr == booking.CheckIn:
		slot.Label = booking.FirstName()
		slot.InIcon = true
	case dateStr == booking.CheckOut:
		slot.OutIcon = true
	case dayNum == 1:
		// Visibility aid for stays spanning the month start.
		slot.Label = booking.FirstName()
	}
	return slot
}

func classify(b *models.Booking, dateStr string) string {
	switch {
	case b.CheckIn == b.CheckOut:
		return BarSingle
	case dateStr == b.CheckIn:
		return BarStart
	case dateStr == b.CheckOut:
		return BarEnd
	default:
		return BarMid
	}
}

// find returns the first match in insertion order, mirroring the store's
// tie-break rule.
func find(bookings []models.Booking, match func(models.Booking) bool) *models.Booking {
	for i := range bookings {
		if match(bookings[i]) {
			return &bookings[i]
		}
	}
	return nil
}
