package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lucavalca/tour-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings plus the
// transactional primitives of the seat-reservation flow.  The
// capacity check and the insert must run in one transaction: the
// handler locks the tour date row with LockDateTx, re-aggregates the
// booked seats with BookedSeatsTx and only then inserts.  Two
// concurrent bookings against the same date therefore serialize on
// the row lock and cannot oversell it.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// LockedDate carries everything the booking transaction needs about a
// tour date and its tour, read under a row lock.
type LockedDate struct {
	DateID              uint64
	TourID              uint64
	TourTitle           string
	TourSlug            string
	StartsAt            time.Time
	Status              string
	CapacityMax         uint32
	EffectiveAdultCents uint32
	ChildCents          uint32
}

// LockDateTx reads a tour date FOR UPDATE, blocking concurrent booking
// transactions on the same date until commit.  The tour row is read
// afterwards without a lock; only the date row serializes bookings.
// Returns ErrTourDateNotFound when the date does not exist.
func (r *BookingRepo) LockDateTx(ctx context.Context, tx *sql.Tx, dateID uint64) (*LockedDate, error) {
	const q = `SELECT id, tour_id, starts_at, status, capacity_max, price_override_cents
			   FROM tour_dates WHERE id = ? FOR UPDATE`
	var ld LockedDate
	var override sql.NullInt64
	err := tx.QueryRowContext(ctx, q, dateID).Scan(&ld.DateID, &ld.TourID, &ld.StartsAt, &ld.Status,
		&ld.CapacityMax, &override)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTourDateNotFound
		}
		return nil, err
	}
	const tq = `SELECT title, slug, price_adult_cents, price_child_cents FROM tours WHERE id = ?`
	var adultCents uint32
	if err := tx.QueryRowContext(ctx, tq, ld.TourID).Scan(&ld.TourTitle, &ld.TourSlug, &adultCents, &ld.ChildCents); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	ld.EffectiveAdultCents = adultCents
	if override.Valid {
		ld.EffectiveAdultCents = uint32(override.Int64)
	}
	return &ld, nil
}

// BookedSeatsTx sums adults+children over the date's non-cancelled
// bookings inside the transaction.  excludeBookingID skips one booking
// from the sum (used when re-checking capacity for a participant edit);
// pass zero to include everything.
func (r *BookingRepo) BookedSeatsTx(ctx context.Context, tx *sql.Tx, dateID, excludeBookingID uint64) (uint32, error) {
	const q = `SELECT COALESCE(SUM(adults + children), 0)
			   FROM bookings
			   WHERE tour_date_id = ? AND payment_status <> ? AND id <> ?`
	var n uint32
	err := tx.QueryRowContext(ctx, q, dateID, model.PaymentCancelled, excludeBookingID).Scan(&n)
	return n, err
}

// CreateTx inserts a booking within the scope of an existing
// transaction and populates the generated ID and timestamps.  The
// caller must commit or rollback the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, tour_date_id, adults, children, total_cents,
									 payment_method, payment_status, notes, qr_code)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.TourDateID, b.Adults, b.Children, b.TotalCents,
		b.PaymentMethod, b.PaymentStatus, b.Notes, b.QRCode)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to populate timestamps and defaults
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// UpdateTx rewrites the mutable columns of a booking inside the
// transaction.  The caller is responsible for having re-checked
// capacity and repriced when participants changed.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `UPDATE bookings SET adults = ?, children = ?, total_cents = ?,
								   payment_status = ?, notes = ?
			   WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, b.Adults, b.Children, b.TotalCents, b.PaymentStatus, b.Notes, b.ID)
	return err
}

// GetByIDTx loads a booking FOR UPDATE so a concurrent edit of the
// same booking serializes with this transaction.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	const q = `SELECT id, user_id, tour_date_id, adults, children, total_cents, payment_method,
					  payment_status, notes, qr_code, checked_in, checked_in_at, created_at, updated_at
			   FROM bookings WHERE id = ? FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, q, id))
}

// BookingDetail bundles a booking with the user and tour context
// needed by listings and the QR check-in screen.
type BookingDetail struct {
	ID            uint64     `json:"id"`
	UserID        uint64     `json:"user_id"`
	UserName      string     `json:"user_name"`
	UserEmail     string     `json:"user_email"`
	TourID        uint64     `json:"tour_id"`
	TourTitle     string     `json:"tour_title"`
	TourSlug      string     `json:"tour_slug"`
	TourDateID    uint64     `json:"tour_date_id"`
	StartsAt      time.Time  `json:"starts_at"`
	Timezone      string     `json:"timezone"`
	Adults        uint32     `json:"adults"`
	Children      uint32     `json:"children"`
	TotalCents    uint64     `json:"total_cents"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	Notes         string     `json:"notes,omitempty"`
	QRCode        string     `json:"qr_code"`
	CheckedIn     bool       `json:"checked_in"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

const detailQuery = `SELECT b.id, b.user_id, u.display_name, u.email,
							t.id, t.title, t.slug, d.id, d.starts_at, d.timezone,
							b.adults, b.children, b.total_cents, b.payment_method, b.payment_status,
							b.notes, b.qr_code, b.checked_in, b.checked_in_at, b.created_at
					 FROM bookings b
					 JOIN users u ON u.id = b.user_id
					 JOIN tour_dates d ON d.id = b.tour_date_id
					 JOIN tours t ON t.id = d.tour_id`

// GetDetail loads a booking with its user/tour context.  Returns
// sql.ErrNoRows when absent.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (*BookingDetail, error) {
	return r.oneDetail(ctx, detailQuery+` WHERE b.id = ?`, id)
}

// GetDetailByQR looks a booking up by its opaque check-in token.
// Returns sql.ErrNoRows for an unknown token.
func (r *BookingRepo) GetDetailByQR(ctx context.Context, token string) (*BookingDetail, error) {
	return r.oneDetail(ctx, detailQuery+` WHERE b.qr_code = ?`, token)
}

func (r *BookingRepo) oneDetail(ctx context.Context, q string, arg interface{}) (*BookingDetail, error) {
	var det BookingDetail
	var notes sql.NullString
	var checkedInAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&det.ID, &det.UserID, &det.UserName, &det.UserEmail,
		&det.TourID, &det.TourTitle, &det.TourSlug, &det.TourDateID, &det.StartsAt, &det.Timezone,
		&det.Adults, &det.Children, &det.TotalCents, &det.PaymentMethod, &det.PaymentStatus,
		&notes, &det.QRCode, &det.CheckedIn, &checkedInAt, &det.CreatedAt)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		det.Notes = notes.String
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		det.CheckedInAt = &t
	}
	return &det, nil
}

// ListFilter narrows List results.  Zero values mean "no filter".
type ListFilter struct {
	UserID uint64
	Status string
}

// List returns booking details newest first, optionally filtered by
// user and payment status.
func (r *BookingRepo) List(ctx context.Context, f ListFilter) ([]BookingDetail, error) {
	q := detailQuery
	var conds []string
	var args []interface{}
	if f.UserID != 0 {
		conds = append(conds, `b.user_id = ?`)
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, `b.payment_status = ?`)
		args = append(args, f.Status)
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var det BookingDetail
		var notes sql.NullString
		var checkedInAt sql.NullTime
		if err := rows.Scan(
			&det.ID, &det.UserID, &det.UserName, &det.UserEmail,
			&det.TourID, &det.TourTitle, &det.TourSlug, &det.TourDateID, &det.StartsAt, &det.Timezone,
			&det.Adults, &det.Children, &det.TotalCents, &det.PaymentMethod, &det.PaymentStatus,
			&notes, &det.QRCode, &det.CheckedIn, &checkedInAt, &det.CreatedAt); err != nil {
			return nil, err
		}
		if notes.Valid {
			det.Notes = notes.String
		}
		if checkedInAt.Valid {
			t := checkedInAt.Time
			det.CheckedInAt = &t
		}
		out = append(out, det)
	}
	return out, rows.Err()
}

// MarkCheckedIn flips the check-in flag for the booking holding the
// token.  Returns the number of rows changed: zero means the booking
// was already checked in (or the token vanished between lookup and
// update), which the handler reports as alreadyCheckedIn.
func (r *BookingRepo) MarkCheckedIn(ctx context.Context, token string) (int64, error) {
	const q = `UPDATE bookings SET checked_in = 1, checked_in_at = NOW()
			   WHERE qr_code = ? AND checked_in = 0`
	res, err := r.db.ExecContext(ctx, q, token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanBooking(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	var notes sql.NullString
	var checkedInAt sql.NullTime
	err := row.Scan(&b.ID, &b.UserID, &b.TourDateID, &b.Adults, &b.Children, &b.TotalCents,
		&b.PaymentMethod, &b.PaymentStatus, &notes, &b.QRCode, &b.CheckedIn, &checkedInAt,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		b.Notes = notes.String
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		b.CheckedInAt = &t
	}
	return &b, nil
}
