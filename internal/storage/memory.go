package storage

import (
	"context"
	"sync"

	"cabanas/internal/models"
)

// Memory keeps the snapshot in process memory. Used in tests and as the
// failover fallback so the app stays usable when the primary backend is down.
type Memory struct {
	mu       sync.Mutex
	bookings []models.Booking
	notes    string
	saves    int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]models.Booking, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Booking(nil), m.bookings...), m.notes, nil
}

func (m *Memory) Save(ctx context.Context, bookings []models.Booking, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append([]models.Booking(nil), bookings...)
	m.notes = notes
	m.saves++
	return nil
}

// Saves reports how many snapshots were written, for tests asserting that
// every mutation persisted.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
