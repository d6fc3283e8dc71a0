package repository

import (
	"context"
	"database/sql"

	"github.com/lucavalca/tour-booking/internal/model"
)

// TourDateRepo provides CRUD operations for scheduled tour dates plus
// the derived-availability listing.  Booked seats are never stored:
// they are aggregated from non-cancelled bookings at read time, and
// re-aggregated under a row lock inside the booking transaction.
type TourDateRepo struct {
	db *sql.DB
}

// NewTourDateRepo returns a new TourDateRepo bound to the given database.
func NewTourDateRepo(db *sql.DB) *TourDateRepo { return &TourDateRepo{db: db} }

// DB exposes the underlying handle for transactions spanning repos.
func (r *TourDateRepo) DB() *sql.DB { return r.db }

const dateCols = `id, tour_id, starts_at, ends_at, timezone, capacity_min, capacity_max,
				  price_override_cents, status, created_at, updated_at`

// Create inserts a tour date and populates the generated ID.  The
// referenced tour must exist; an unknown tour returns ErrTourNotFound.
func (r *TourDateRepo) Create(ctx context.Context, d *model.TourDate) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tours WHERE id = ?`, d.TourID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrTourNotFound
	}
	const q = `INSERT INTO tour_dates (tour_id, starts_at, ends_at, timezone, capacity_min,
									   capacity_max, price_override_cents, status)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, d.TourID, d.StartsAt.UTC(), d.EndsAt, d.Timezone,
		d.CapacityMin, d.CapacityMax, d.PriceOverrideCents, d.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID loads a tour date by primary key.  Returns
// ErrTourDateNotFound when absent.
func (r *TourDateRepo) GetByID(ctx context.Context, id uint64) (*model.TourDate, error) {
	const q = `SELECT ` + dateCols + ` FROM tour_dates WHERE id = ?`
	var d model.TourDate
	var ends sql.NullTime
	var override sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.TourID, &d.StartsAt, &ends, &d.Timezone,
		&d.CapacityMin, &d.CapacityMax, &override, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTourDateNotFound
		}
		return nil, err
	}
	if ends.Valid {
		t := ends.Time
		d.EndsAt = &t
	}
	if override.Valid {
		v := uint32(override.Int64)
		d.PriceOverrideCents = &v
	}
	return &d, nil
}

// DateWithAvailability annotates a tour date with its derived seat
// counts.  AvailableSeats is clamped at zero for overbooked legacy data.
type DateWithAvailability struct {
	model.TourDate
	BookedSeats    uint32
	AvailableSeats uint32
}

// ListByTour returns the dates of a tour ordered by start ascending,
// each annotated with bookedSeats and availableSeats.  When tourID is
// zero, dates of all tours are returned.  The aggregation excludes
// CANCELLED bookings, which is the entire seat-release mechanism.
func (r *TourDateRepo) ListByTour(ctx context.Context, tourID uint64) ([]DateWithAvailability, error) {
	q := `SELECT d.id, d.tour_id, d.starts_at, d.ends_at, d.timezone, d.capacity_min, d.capacity_max,
				 d.price_override_cents, d.status, d.created_at, d.updated_at,
				 COALESCE(SUM(CASE WHEN b.payment_status <> ? THEN b.adults + b.children ELSE 0 END), 0)
		  FROM tour_dates d
		  LEFT JOIN bookings b ON b.tour_date_id = d.id`
	args := []interface{}{model.PaymentCancelled}
	if tourID != 0 {
		q += ` WHERE d.tour_id = ?`
		args = append(args, tourID)
	}
	q += ` GROUP BY d.id ORDER BY d.starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]DateWithAvailability, 0)
	for rows.Next() {
		var d DateWithAvailability
		var ends sql.NullTime
		var override sql.NullInt64
		if err := rows.Scan(&d.ID, &d.TourID, &d.StartsAt, &ends, &d.Timezone,
			&d.CapacityMin, &d.CapacityMax, &override, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&d.BookedSeats); err != nil {
			return nil, err
		}
		if ends.Valid {
			t := ends.Time
			d.EndsAt = &t
		}
		if override.Valid {
			v := uint32(override.Int64)
			d.PriceOverrideCents = &v
		}
		d.AvailableSeats = model.AvailableSeats(d.CapacityMax, d.BookedSeats)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of a date.  Returns
// ErrTourDateNotFound when the ID is unknown.
func (r *TourDateRepo) Update(ctx context.Context, d *model.TourDate) error {
	const q = `UPDATE tour_dates SET starts_at = ?, ends_at = ?, timezone = ?, capacity_min = ?,
									 capacity_max = ?, price_override_cents = ?, status = ?
			   WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, d.StartsAt.UTC(), d.EndsAt, d.Timezone,
		d.CapacityMin, d.CapacityMax, d.PriceOverrideCents, d.Status, d.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var n int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tour_dates WHERE id = ?`, d.ID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return ErrTourDateNotFound
		}
	}
	return nil
}

// Delete removes a date unless non-cancelled bookings still reference
// it, in which case ErrConflict is returned.
func (r *TourDateRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var n int
	const check = `SELECT COUNT(*) FROM bookings WHERE tour_date_id = ? AND payment_status <> ?`
	if err := tx.QueryRowContext(ctx, check, id, model.PaymentCancelled).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	// cancelled bookings do not block deletion but still hold FKs
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE tour_date_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tour_dates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTourDateNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
