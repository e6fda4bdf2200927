package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cabanas/internal/models"
)

// FileSeed reads the initial dataset from a JSON file. The seed's own ids are
// discarded by the caller; only the booking fields matter.
type FileSeed struct {
	path string
}

func NewFileSeed(path string) *FileSeed {
	return &FileSeed{path: path}
}

func (f *FileSeed) Load(ctx context.Context) ([]models.Booking, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var bookings []models.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return bookings, nil
}
