package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/lucavalca/tour-booking/internal/model"
	"github.com/lucavalca/tour-booking/internal/utils"
)

// UserRepo provides access to the users table.  Emails are stored
// lower-cased; uniqueness is enforced by a unique index and surfaced
// as ErrEmailExists.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *UserRepo) DB() *sql.DB { return r.db }

// Create inserts a user with a bcrypt-hashed password and returns the
// new ID.  Role must be ADMIN or CUSTOMER.  Duplicate emails return
// ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, firstName, lastName, email, password, role string, bcryptCost int) (uint64, error) {
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return 0, err
	}
	display := strings.TrimSpace(firstName + " " + lastName)
	const q = `INSERT INTO users (first_name, last_name, display_name, email, password_hash, role)
			   VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, firstName, lastName, display, strings.ToLower(email), hash, role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpsertFromIdentity syncs a user record from identity-provider claims.
// When a user with the email already exists, the provider UID, display
// name and photo are refreshed and the stored role is kept — the local
// role is authoritative, never the client's claims.  Otherwise a new
// CUSTOMER is created with an empty password hash.
func (r *UserRepo) UpsertFromIdentity(ctx context.Context, email, uid, displayName, photoURL string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := r.GetByEmail(ctx, email)
	if err == nil {
		const upd = `UPDATE users SET firebase_uid = ?, display_name = ?, photo_url = ? WHERE id = ?`
		if _, err := r.db.ExecContext(ctx, upd, uid, displayName, nullStr(photoURL), u.ID); err != nil {
			return nil, err
		}
		return r.GetByID(ctx, u.ID)
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	const ins = `INSERT INTO users (first_name, last_name, display_name, email, password_hash, role, firebase_uid, photo_url)
				 VALUES ('', '', ?, ?, '', ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, ins, displayName, email, model.RoleCustomer, uid, nullStr(photoURL))
	if err != nil {
		if isDuplicate(err) {
			// lost a race with a concurrent exchange; load the winner
			return r.GetByEmail(ctx, email)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

const userCols = `id, first_name, last_name, display_name, email, password_hash, role, firebase_uid, photo_url, created_at, updated_at`

// GetByEmail loads a user by lower-cased email.  Returns sql.ErrNoRows
// when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, strings.ToLower(email)))
}

// GetByID loads a user by primary key.  Returns sql.ErrNoRows when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// UserWithBookings pairs a user with the number of bookings that
// reference them.  The count drives the delete guard in the admin UI.
type UserWithBookings struct {
	model.User
	BookingsCount uint32
}

// List returns all users with their booking counts, newest first.
func (r *UserRepo) List(ctx context.Context) ([]UserWithBookings, error) {
	const q = `SELECT u.id, u.first_name, u.last_name, u.display_name, u.email, u.password_hash,
					  u.role, u.firebase_uid, u.photo_url, u.created_at, u.updated_at,
					  COUNT(b.id)
			   FROM users u
			   LEFT JOIN bookings b ON b.user_id = u.id
			   GROUP BY u.id
			   ORDER BY u.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]UserWithBookings, 0)
	for rows.Next() {
		var u UserWithBookings
		var fbUID, photo sql.NullString
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.DisplayName, &u.Email, &u.PasswordHash,
			&u.Role, &fbUID, &photo, &u.CreatedAt, &u.UpdatedAt, &u.BookingsCount); err != nil {
			return nil, err
		}
		if fbUID.Valid {
			v := fbUID.String
			u.FirebaseUID = &v
		}
		if photo.Valid {
			v := photo.String
			u.PhotoURL = &v
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Delete removes a user only when no bookings reference them.  The
// count check and the delete run in one transaction so a booking
// created in between cannot orphan itself.  Returns ErrHasBookings
// when bookings exist and sql.ErrNoRows when the user is unknown.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
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
	var n uint32
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrHasBookings
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	var fbUID, photo sql.NullString
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.DisplayName, &u.Email, &u.PasswordHash,
		&u.Role, &fbUID, &photo, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if fbUID.Valid {
		v := fbUID.String
		u.FirebaseUID = &v
	}
	if photo.Valid {
		v := photo.String
		u.PhotoURL = &v
	}
	return &u, nil
}

// isDuplicate reports whether err is a MySQL duplicate-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}

func nullStr(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
