package store

import (
	"sort"
	"strings"
	"time"

	"cabanas/internal/models"
)

// DistinctGuestNames returns the guest names in first-seen order, for the
// autocomplete datalist. Dedup is case-sensitive on purpose: "ana" and "Ana"
// are different entries the way the user typed them.
func (s *Store) DistinctGuestNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.bookings))
	var names []string
	for _, b := range s.bookings {
		if _, ok := seen[b.GuestName]; ok {
			continue
		}
		seen[b.GuestName] = struct{}{}
		names = append(names, b.GuestName)
	}
	return names
}

// SearchByGuest matches a case-insensitive substring over guest names only.
func (s *Store) SearchByGuest(query string) []models.Booking {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if strings.Contains(strings.ToLower(b.GuestName), q) {
			out = append(out, b)
		}
	}
	return out
}

// UpcomingInMonth lists bookings whose check-in falls inside the displayed
// month, sorted by check-in, for the side panel.
func (s *Store) UpcomingInMonth(year int, month time.Month) []models.Booking {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if strings.HasPrefix(b.CheckIn, prefix) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckIn < out[j].CheckIn
	})
	return out
}
