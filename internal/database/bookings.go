package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"prenota/internal/model"

	"github.com/mattn/go-sqlite3"
)

const bookingColumns = `id, name, contact, date, time, adults, children, status, assigned_table_ids, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var (
		b      model.Booking
		status string
		tables string
	)
	err := row.Scan(&b.ID, &b.Name, &b.Contact, &b.Date, &b.Time, &b.Adults, &b.Children,
		&status, &tables, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	b.Status = model.BookingStatus(status)
	if tables != "" {
		if err := json.Unmarshal([]byte(tables), &b.AssignedTableIDs); err != nil {
			return model.Booking{}, fmt.Errorf("decode tables of booking %s: %w", b.ID, err)
		}
	}
	if len(b.AssignedTableIDs) == 0 {
		b.AssignedTableIDs = nil
	}
	return b, nil
}

func encodeTables(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CreateBooking inserts b. CreatedAt and UpdatedAt are set when zero.
func (db *DB) CreateBooking(ctx context.Context, b *model.Booking) error {
	tables, err := encodeTables(b.AssignedTableIDs)
	if err != nil {
		return fmt.Errorf("encode tables: %w", err)
	}

	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Contact, b.Date, b.Time, b.Adults, b.Children,
		string(b.Status), tables, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %s", ErrDuplicate, b.ID)
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	db.logger.Debug().Str("booking_id", b.ID).Str("date", b.Date).Str("time", b.Time).Msg("Booking stored")
	return nil
}

// GetBooking returns the booking with id or ErrNotFound.
func (db *DB) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// ListBookingsByDate returns every booking on date, earliest time first.
func (db *DB) ListBookingsByDate(ctx context.Context, date string) ([]model.Booking, error) {
	return db.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE date = ?
		ORDER BY time ASC, created_at ASC`, date)
}

// ListBookings returns all bookings, newest date and time first.
func (db *DB) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return db.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		ORDER BY date DESC, time DESC`)
}

// ListBookingsBetween returns bookings with from <= date <= to in calendar
// order.
func (db *DB) ListBookingsBetween(ctx context.Context, from, to string) ([]model.Booking, error) {
	return db.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, time ASC`, from, to)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateBookingStatus moves booking id from status from to status to. A
// non-nil tableIDs replaces the assignment in the same statement. When
// the stored status is no longer from, ErrConcurrentModification is
// returned.
func (db *DB) UpdateBookingStatus(ctx context.Context, id string, from, to model.BookingStatus, tableIDs []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load status: %w", err)
	}
	if !strings.EqualFold(current, string(from)) {
		return fmt.Errorf("booking %s is %s: %w", id, current, ErrConcurrentModification)
	}

	now := time.Now().UTC()
	if tableIDs != nil {
		tables, err := encodeTables(tableIDs)
		if err != nil {
			return fmt.Errorf("encode tables: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE bookings SET status = ?, assigned_table_ids = ?, updated_at = ?
			WHERE id = ?`, string(to), tables, now, id)
		if err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE bookings SET status = ?, updated_at = ?
			WHERE id = ?`, string(to), now, id)
		if err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	db.logger.Debug().Str("booking_id", id).Str("from", string(from)).Str("to", string(to)).Msg("Booking status updated")
	return nil
}
