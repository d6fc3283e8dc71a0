package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lucavalca/tour-booking/internal/model"
)

// TourRepo provides CRUD operations for tour listings.  List-valued
// columns (images, includes, excludes) are stored as JSON text and
// decoded through model.ParseStringList, which also tolerates the
// legacy comma-separated encoding.
type TourRepo struct {
	db *sql.DB
}

// NewTourRepo returns a new TourRepo bound to the given database.
func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{db: db} }

// DB exposes the underlying handle for transactions spanning repos.
func (r *TourRepo) DB() *sql.DB { return r.db }

const tourCols = `id, title, slug, description, price_adult_cents, price_child_cents, language,
				  itinerary, duration_value, duration_unit, cover_image, images, includes, excludes,
				  terms, max_seats, difficulty, gpx_url, lat, lng, created_at, updated_at`

// Create inserts a tour and populates the generated ID.  A colliding
// slug returns ErrSlugExists.
func (r *TourRepo) Create(ctx context.Context, t *model.Tour) error {
	const q = `INSERT INTO tours (title, slug, description, price_adult_cents, price_child_cents,
								  language, itinerary, duration_value, duration_unit, cover_image,
								  images, includes, excludes, terms, max_seats, difficulty, gpx_url, lat, lng)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		t.Title, t.Slug, t.Description, t.PriceAdultCents, t.PriceChildCents,
		t.Language, t.Itinerary, t.DurationValue, t.DurationUnit, t.CoverImage,
		model.EncodeStringList(t.Images), model.EncodeStringList(t.Includes), model.EncodeStringList(t.Excludes),
		t.Terms, t.MaxSeats, t.Difficulty, t.GPXURL, t.Lat, t.Lng)
	if err != nil {
		if isDuplicate(err) {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// SlugExists reports whether any tour other than excludeID carries the slug.
func (r *TourRepo) SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tours WHERE slug = ? AND id <> ?`, slug, excludeID).Scan(&n)
	return n > 0, err
}

// GetByID loads a tour by primary key.  Returns ErrTourNotFound when absent.
func (r *TourRepo) GetByID(ctx context.Context, id uint64) (*model.Tour, error) {
	const q = `SELECT ` + tourCols + ` FROM tours WHERE id = ?`
	return scanTour(r.db.QueryRowContext(ctx, q, id))
}

// GetBySlug loads a tour by its unique slug.  Returns ErrTourNotFound
// when absent.
func (r *TourRepo) GetBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	const q = `SELECT ` + tourCols + ` FROM tours WHERE slug = ?`
	return scanTour(r.db.QueryRowContext(ctx, q, slug))
}

// List returns tours newest first, optionally filtered by a free-text
// query (matched against title and description) and a language code.
func (r *TourRepo) List(ctx context.Context, query, language string) ([]model.Tour, error) {
	q := `SELECT ` + tourCols + ` FROM tours`
	var conds []string
	var args []interface{}
	if s := strings.TrimSpace(query); s != "" {
		conds = append(conds, `(title LIKE ? OR description LIKE ?)`)
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if l := strings.TrimSpace(language); l != "" {
		conds = append(conds, `language = ?`)
		args = append(args, l)
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tours := make([]model.Tour, 0)
	for rows.Next() {
		t, err := scanTourRows(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, *t)
	}
	return tours, rows.Err()
}

// Update rewrites every mutable column of a tour.  Returns
// ErrTourNotFound when the ID is unknown and ErrSlugExists when the
// new slug collides.
func (r *TourRepo) Update(ctx context.Context, t *model.Tour) error {
	const q = `UPDATE tours SET title = ?, slug = ?, description = ?, price_adult_cents = ?,
								price_child_cents = ?, language = ?, itinerary = ?, duration_value = ?,
								duration_unit = ?, cover_image = ?, images = ?, includes = ?, excludes = ?,
								terms = ?, max_seats = ?, difficulty = ?, gpx_url = ?, lat = ?, lng = ?
			   WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		t.Title, t.Slug, t.Description, t.PriceAdultCents, t.PriceChildCents,
		t.Language, t.Itinerary, t.DurationValue, t.DurationUnit, t.CoverImage,
		model.EncodeStringList(t.Images), model.EncodeStringList(t.Includes), model.EncodeStringList(t.Excludes),
		t.Terms, t.MaxSeats, t.Difficulty, t.GPXURL, t.Lat, t.Lng, t.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrSlugExists
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// distinguish "no change" from "no row"
		var n int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tours WHERE id = ?`, t.ID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return ErrTourNotFound
		}
	}
	return nil
}

// Delete removes a tour, its dates and any cancelled bookings left on
// them.  The delete is refused with ErrConflict while a non-cancelled
// booking references one of the tour's dates.
func (r *TourRepo) Delete(ctx context.Context, id uint64) error {
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
	const check = `SELECT COUNT(*)
				   FROM bookings b
				   JOIN tour_dates d ON d.id = b.tour_date_id
				   WHERE d.tour_id = ? AND b.payment_status <> ?`
	var n int
	if err := tx.QueryRowContext(ctx, check, id, model.PaymentCancelled).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	// cancelled bookings do not block deletion but still hold FKs
	const purge = `DELETE b FROM bookings b
				   JOIN tour_dates d ON d.id = b.tour_date_id
				   WHERE d.tour_id = ?`
	if _, err := tx.ExecContext(ctx, purge, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTourNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func scanTour(row *sql.Row) (*model.Tour, error) {
	var t model.Tour
	var images, includes, excludes string
	var gpx sql.NullString
	var lat, lng sql.NullFloat64
	err := row.Scan(&t.ID, &t.Title, &t.Slug, &t.Description, &t.PriceAdultCents, &t.PriceChildCents,
		&t.Language, &t.Itinerary, &t.DurationValue, &t.DurationUnit, &t.CoverImage,
		&images, &includes, &excludes, &t.Terms, &t.MaxSeats, &t.Difficulty, &gpx, &lat, &lng,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	fillTourLists(&t, images, includes, excludes, gpx, lat, lng)
	return &t, nil
}

func scanTourRows(rows *sql.Rows) (*model.Tour, error) {
	var t model.Tour
	var images, includes, excludes string
	var gpx sql.NullString
	var lat, lng sql.NullFloat64
	err := rows.Scan(&t.ID, &t.Title, &t.Slug, &t.Description, &t.PriceAdultCents, &t.PriceChildCents,
		&t.Language, &t.Itinerary, &t.DurationValue, &t.DurationUnit, &t.CoverImage,
		&images, &includes, &excludes, &t.Terms, &t.MaxSeats, &t.Difficulty, &gpx, &lat, &lng,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	fillTourLists(&t, images, includes, excludes, gpx, lat, lng)
	return &t, nil
}

func fillTourLists(t *model.Tour, images, includes, excludes string, gpx sql.NullString, lat, lng sql.NullFloat64) {
	t.Images = model.ParseStringList(images)
	t.Includes = model.ParseStringList(includes)
	t.Excludes = model.ParseStringList(excludes)
	if gpx.Valid {
		v := gpx.String
		t.GPXURL = &v
	}
	if lat.Valid {
		v := lat.Float64
		t.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		t.Lng = &v
	}
}
