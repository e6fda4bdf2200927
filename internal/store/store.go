// Package store owns the in-memory booking collection and enforces the
// non-double-booking invariant at write time. Reads are projections over a
// snapshot; writes persist the whole collection through the injected
// Persister before the operation is considered complete.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cabanas/internal/dates"
	"cabanas/internal/domain"
	"cabanas/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Store struct {
	mu        sync.RWMutex
	bookings  []models.Booking
	notes     string
	persister domain.Persister
	logger    *zerolog.Logger
}

func New(persister domain.Persister, logger *zerolog.Logger) *Store {
	return &Store{
		persister: persister,
		logger:    logger,
	}
}

// Load replaces the in-memory state with whatever durable storage holds.
// Stored data is taken as-is; only new writes are validated.
func (s *Store) Load(ctx context.Context) error {
	bookings, notes, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}

	s.mu.Lock()
	s.bookings = bookings
	s.notes = notes
	s.mu.Unlock()

	s.logger.Info().Int("bookings", len(bookings)).Msg("store loaded")
	return nil
}

// Add validates the draft, checks the cabin for conflicts against every
// stored booking and appends on success. The returned booking carries the
// freshly assigned id and the snapshotted total price.
func (s *Store) Add(ctx context.Context, draft models.BookingDraft) (models.Booking, error) {
	booking, err := buildBooking(draft)
	if err != nil {
		return models.Booking{}, err
	}
	booking.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if conflict, ok := s.findOverlapping(draft.Cabin, draft.CheckIn, draft.CheckOut, ""); ok {
		return models.Booking{}, &OverlapError{Conflict: conflict}
	}

	next := append(append([]models.Booking(nil), s.bookings...), booking)
	if err := s.persister.Save(ctx, next, s.notes); err != nil {
		return models.Booking{}, fmt.Errorf("persist after add: %w", err)
	}
	s.bookings = next

	s.logger.Info().Str("id", booking.ID).Str("cabin", booking.Cabin).
		Str("check_in", booking.CheckIn).Str("check_out", booking.CheckOut).
		Msg("booking created")
	return booking, nil
}

// Update revalidates the draft and replaces every field of the booking except
// its id. The overlap check excludes the booking being edited, so saving a
// booking with its own unchanged dates never conflicts with itself.
func (s *Store) Update(ctx context.Context, id string, draft models.BookingDraft) (models.Booking, error) {
	booking, err := buildBooking(draft)
	if err != nil {
		return models.Booking{}, err
	}
	booking.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Booking{}, &NotFoundError{ID: id}
	}

	if conflict, ok := s.findOverlapping(draft.Cabin, draft.CheckIn, draft.CheckOut, id); ok {
		return models.Booking{}, &OverlapError{Conflict: conflict}
	}

	next := append([]models.Booking(nil), s.bookings...)
	next[idx] = booking
	if err := s.persister.Save(ctx, next, s.notes); err != nil {
		return models.Booking{}, fmt.Errorf("persist after update: %w", err)
	}
	s.bookings = next

	s.logger.Info().Str("id", id).Msg("booking updated")
	return booking, nil
}

// Remove deletes a booking by id.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return &NotFoundError{ID: id}
	}

	next := append([]models.Booking(nil), s.bookings[:idx]...)
	next = append(next, s.bookings[idx+1:]...)
	if err := s.persister.Save(ctx, next, s.notes); err != nil {
		return fmt.Errorf("persist after remove: %w", err)
	}
	s.bookings = next

	s.logger.Info().Str("id", id).Msg("booking removed")
	return nil
}

// ReplaceAll swaps in a whole new collection and notes, persisting first so a
// failed import leaves current state untouched.
func (s *Store) ReplaceAll(ctx context.Context, bookings []models.Booking, notes string) error {
	next := append([]models.Booking(nil), bookings...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.Save(ctx, next, notes); err != nil {
		return fmt.Errorf("persist replacement: %w", err)
	}
	s.bookings = next
	s.notes = notes

	s.logger.Info().Int("bookings", len(next)).Msg("collection replaced")
	return nil
}

func (s *Store) FindByID(id string) (models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Booking{}, false
	}
	return s.bookings[idx], true
}

// FindOverlapping returns the first stored booking on the cabin whose
// half-open interval [checkIn, checkOut) intersects the given one, in
// insertion order. excludeID skips the booking being edited.
func (s *Store) FindOverlapping(cabin, checkIn, checkOut, excludeID string) (models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findOverlapping(cabin, checkIn, checkOut, excludeID)
}

// All returns the collection in insertion order.
func (s *Store) All() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Booking(nil), s.bookings...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

// Notes returns the free-text notes stored alongside the collection.
func (s *Store) Notes() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notes
}

// SetNotes persists the notes together with the current collection.
func (s *Store) SetNotes(ctx context.Context, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.Save(ctx, s.bookings, notes); err != nil {
		return fmt.Errorf("persist notes: %w", err)
	}
	s.notes = notes
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			return i
		}
	}
	return -1
}

// ISO day strings compare lexicographically in calendar order, so the
// half-open test s1 < e2 && s2 < e1 works directly on the stored strings.
func (s *Store) findOverlapping(cabin, checkIn, checkOut, excludeID string) (models.Booking, bool) {
	for _, b := range s.bookings {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if b.Cabin != cabin {
			continue
		}
		if checkIn < b.CheckOut && b.CheckIn < checkOut {
			return b, true
		}
	}
	return models.Booking{}, false
}

func buildBooking(draft models.BookingDraft) (models.Booking, error) {
	guest := strings.TrimSpace(draft.GuestName)
	if guest == "" {
		return models.Booking{}, &ValidationError{Field: "guest_name", Reason: "is required"}
	}
	if draft.CheckIn == "" {
		return models.Booking{}, &ValidationError{Field: "check_in", Reason: "is required"}
	}
	if draft.CheckOut == "" {
		return models.Booking{}, &ValidationError{Field: "check_out", Reason: "is required"}
	}
	if _, err := dates.ParseDay(draft.CheckIn); err != nil {
		return models.Booking{}, &ValidationError{Field: "check_in", Reason: "must be YYYY-MM-DD"}
	}
	if _, err := dates.ParseDay(draft.CheckOut); err != nil {
		return models.Booking{}, &ValidationError{Field: "check_out", Reason: "must be YYYY-MM-DD"}
	}
	if draft.CheckIn > draft.CheckOut {
		return models.Booking{}, &ValidationError{Field: "check_out", Reason: "is before check-in"}
	}
	if draft.Cabin == "" {
		return models.Booking{}, &ValidationError{Field: "cabin", Reason: "is required"}
	}
	if draft.PricePerNight < 0 {
		return models.Booking{}, &ValidationError{Field: "price_per_night", Reason: "must not be negative"}
	}
	status := draft.Status
	if status == "" {
		status = models.StatusPending
	}
	if !models.ValidStatus(status) {
		return models.Booking{}, &ValidationError{Field: "status", Reason: "is unknown"}
	}

	nights, err := dates.Nights(draft.CheckIn, draft.CheckOut)
	if err != nil {
		return models.Booking{}, &ValidationError{Field: "check_in", Reason: "must be YYYY-MM-DD"}
	}

	return models.Booking{
		GuestName:     guest,
		GuestPhone:    strings.TrimSpace(draft.GuestPhone),
		Cabin:         draft.Cabin,
		CheckIn:       draft.CheckIn,
		CheckOut:      draft.CheckOut,
		PricePerNight: draft.PricePerNight,
		Status:        status,
		TotalPrice:    float64(nights) * draft.PricePerNight,
	}, nil
}
