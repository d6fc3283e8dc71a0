package repository

import (
	"context"
	"database/sql"

	"github.com/lucavalca/tour-booking/internal/model"
)

// NotificationRepo stores the admin-facing event records emitted as a
// side effect of booking activity.  Ordering is insertion order; there
// is no delivery guarantee beyond the row existing.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// CreateTx inserts a notification inside an existing transaction, so
// the record commits atomically with the booking that caused it.
func (r *NotificationRepo) CreateTx(ctx context.Context, tx *sql.Tx, typ, payload string) error {
	const q = `INSERT INTO notifications (type, payload, seen) VALUES (?, ?, 0)`
	_, err := tx.ExecContext(ctx, q, typ, payload)
	return err
}

// List returns up to limit notifications, newest first.  A limit of
// zero or less falls back to 50.
func (r *NotificationRepo) List(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, type, payload, seen, created_at FROM notifications
			   ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Payload, &n.Seen, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount returns how many notifications have not been seen yet.
func (r *NotificationRepo) UnreadCount(ctx context.Context) (uint32, error) {
	var n uint32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE seen = 0`).Scan(&n)
	return n, err
}

// MarkSeen flags one notification as seen.  Returns sql.ErrNoRows when
// the ID is unknown.
func (r *NotificationRepo) MarkSeen(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET seen = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var n int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE id = ?`, id).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
	}
	return nil
}

// MarkAllSeen flags every unseen notification and returns the count.
func (r *NotificationRepo) MarkAllSeen(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET seen = 1 WHERE seen = 0`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
