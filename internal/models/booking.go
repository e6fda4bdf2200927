package models

// Booking is the single persisted entity: one stay of one guest in one cabin.
// CheckIn and CheckOut are date-only ISO strings ("2006-01-02"); the interval
// [CheckIn, CheckOut) is half-open, so a checkout day may coincide with the
// next guest's check-in day without conflict.
type Booking struct {
	ID            string  `json:"id"`
	GuestName     string  `json:"guest_name"`
	GuestPhone    string  `json:"guest_phone,omitempty"`
	Cabin         string  `json:"cabin"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	PricePerNight float64 `json:"price_per_night"`
	Status        string  `json:"status"` // pending, deposit, paid
	// TotalPrice is snapshotted as nights*price at save time, not recomputed live.
	TotalPrice float64 `json:"total_price"`
}

// BookingDraft carries the user-supplied fields of a booking before
// validation. Everything except the id is replaceable on edit.
type BookingDraft struct {
	GuestName     string  `json:"guest_name"`
	GuestPhone    string  `json:"guest_phone"`
	Cabin         string  `json:"cabin"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	PricePerNight float64 `json:"price_per_night"`
	Status        string  `json:"status"`
}

// FirstName returns the leading word of the guest name, used as the short
// calendar bar label.
func (b *Booking) FirstName() string {
	for i := 0; i < len(b.GuestName); i++ {
		if b.GuestName[i] == ' ' {
			return b.GuestName[:i]
		}
	}
	return b.GuestName
}

// Cabin is a rentable unit identified by name.
type Cabin struct {
	Name string `yaml:"name" json:"name"`
}

// MonthStats is the aggregation panel for one displayed month.
type MonthStats struct {
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}
