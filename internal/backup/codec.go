// Package backup serializes the whole booking collection plus the free-text
// notes into a single portable JSON document, and restores it wholesale.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"cabanas/internal/dates"
	"cabanas/internal/models"
)

// Document is the backup file format.
type Document struct {
	Bookings []models.Booking `json:"bookings"`
	Notes    string           `json:"notes"`
}

// ParseError reports a malformed backup document. Callers must not replace
// any state when they receive one.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid backup document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Serialize renders the collection and notes as an indented JSON document.
func Serialize(bookings []models.Booking, notes string) ([]byte, error) {
	doc := Document{Bookings: bookings, Notes: notes}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize backup: %w", err)
	}
	return data, nil
}

// Deserialize parses a backup document. Unknown fields are rejected so a file
// that is valid JSON but not a backup does not silently restore to an empty
// collection.
func Deserialize(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return Document{}, &ParseError{Err: err}
	}
	return doc, nil
}

// Filename returns the dated artifact name for a downloaded backup.
func Filename(today time.Time) string {
	return fmt.Sprintf("backup_%s.json", dates.FormatDay(today))
}
