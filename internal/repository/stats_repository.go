package repository

import (
	"context"
	"database/sql"

	"github.com/lucavalca/tour-booking/internal/model"
)

// StatsRepo computes the dashboard counters.  Everything is recomputed
// from the base tables on every call; nothing is cached.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a new StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// DashboardStats mirrors the counters shown on the admin dashboard.
// RevenueCents sums the totals of PAID bookings only: pending money is
// not revenue and cancelled/refunded bookings are excluded.
type DashboardStats struct {
	TotalTours    uint32 `json:"total_tours"`
	TotalBookings uint32 `json:"total_bookings"`
	TodayBookings uint32 `json:"today_bookings"`
	RevenueCents  uint64 `json:"revenue_cents"`
}

// Load runs the four aggregate queries and assembles the result.
func (r *StatsRepo) Load(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tours`).Scan(&s.TotalTours); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&s.TotalBookings); err != nil {
		return nil, err
	}
	const today = `SELECT COUNT(*) FROM bookings WHERE DATE(created_at) = UTC_DATE()`
	if err := r.db.QueryRowContext(ctx, today).Scan(&s.TodayBookings); err != nil {
		return nil, err
	}
	const revenue = `SELECT COALESCE(SUM(total_cents), 0) FROM bookings WHERE payment_status = ?`
	if err := r.db.QueryRowContext(ctx, revenue, model.PaymentPaid).Scan(&s.RevenueCents); err != nil {
		return nil, err
	}
	return &s, nil
}
