// Package storage provides the durable Persister implementations behind the
// booking store: sqlite for on-disk durability, redis for a snapshot backend,
// an in-memory variant for tests, and a failover wrapper combining two.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"cabanas/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type SQLite struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewSQLite(path string, logger *zerolog.Logger) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &SQLite{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            guest_name TEXT NOT NULL,
            guest_phone TEXT,
            cabin TEXT NOT NULL,
            check_in TEXT NOT NULL,
            check_out TEXT NOT NULL,
            price_per_night REAL NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'pending',
            total_price REAL NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS notes (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            body TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_cabin ON bookings(cabin)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_check_in ON bookings(check_in)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Load reads the whole collection in insertion order plus the notes row.
func (s *SQLite) Load(ctx context.Context) ([]models.Booking, string, error) {
	query := `SELECT id, guest_name, guest_phone, cabin, check_in, check_out,
	                 price_per_night, status, total_price
	          FROM bookings ORDER BY position ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		var phone sql.NullString
		err := rows.Scan(
			&b.ID, &b.GuestName, &phone, &b.Cabin, &b.CheckIn, &b.CheckOut,
			&b.PricePerNight, &b.Status, &b.TotalPrice,
		)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan booking: %w", err)
		}
		b.GuestPhone = phone.String
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to read bookings: %w", err)
	}

	var notes string
	err = s.db.QueryRowContext(ctx, `SELECT body FROM notes WHERE id = 1`).Scan(&notes)
	if err != nil && err != sql.ErrNoRows {
		return nil, "", fmt.Errorf("failed to load notes: %w", err)
	}

	return bookings, notes, nil
}

// Save replaces the stored collection wholesale inside one transaction. The
// position column preserves insertion order across restarts.
func (s *SQLite) Save(ctx context.Context, bookings []models.Booking, notes string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("failed to clear bookings: %w", err)
	}

	insert := `INSERT INTO bookings (
	               id, position, guest_name, guest_phone, cabin, check_in,
	               check_out, price_per_night, status, total_price
	           ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, b := range bookings {
		_, err := tx.ExecContext(ctx, insert,
			b.ID, i, b.GuestName, b.GuestPhone, b.Cabin, b.CheckIn,
			b.CheckOut, b.PricePerNight, b.Status, b.TotalPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to insert booking %s: %w", b.ID, err)
		}
	}

	notesUpsert := `INSERT INTO notes (id, body) VALUES (1, ?)
	                ON CONFLICT(id) DO UPDATE SET body = excluded.body`
	if _, err := tx.ExecContext(ctx, notesUpsert, notes); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}

	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
