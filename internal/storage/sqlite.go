package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"turfbook/internal/models"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// SQLiteSnapshot is an alternative snapshot backend holding the same record
// set in a bookings table. The JSON file stays the default; this exists for
// deployments that already run everything else on sqlite.
type SQLiteSnapshot struct {
	db *sql.DB
}

func NewSQLiteSnapshot(path string) (*SQLiteSnapshot, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteSnapshot{db: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            date TEXT NOT NULL,
            start INTEGER NOT NULL,
            duration INTEGER NOT NULL,
            turf TEXT NOT NULL,
            players INTEGER NOT NULL,
            total INTEGER NOT NULL,
            coupon TEXT
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date_turf ON bookings(date, turf)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (s *SQLiteSnapshot) Load(ctx context.Context) ([]models.BookingRecord, error) {
	// IDs are assigned monotonically, so id order is insertion order.
	query := `SELECT id, name, date, start, duration, turf, players, total, coupon
              FROM bookings ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	records := []models.BookingRecord{}
	for rows.Next() {
		var rec models.BookingRecord
		var coupon sql.NullString
		err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Date, &rec.Start, &rec.Duration,
			&rec.Turf, &rec.Players, &rec.Total, &coupon,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if coupon.Valid {
			rec.Coupon = &coupon.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return records, nil
}

// Save replaces the table contents with the given record set in one
// transaction, mirroring the rewrite-the-whole-snapshot lifecycle of the
// JSON backend.
func (s *SQLiteSnapshot) Save(ctx context.Context, records []models.BookingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("clear bookings: %w", err)
	}

	query := `INSERT INTO bookings (id, name, date, start, duration, turf, players, total, coupon)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, rec := range records {
		var coupon interface{}
		if rec.Coupon != nil {
			coupon = *rec.Coupon
		}
		_, err := tx.ExecContext(ctx, query,
			rec.ID, rec.Name, rec.Date, rec.Start, rec.Duration,
			rec.Turf, rec.Players, rec.Total, coupon,
		)
		if err != nil {
			return fmt.Errorf("insert booking %d: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteSnapshot) Close() error {
	return s.db.Close()
}
