// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a booking is successfully created.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID     uint64 `json:"booking_id"`
	UserID        uint64 `json:"user_id"`
	UserEmail     string `json:"user_email"`
	TourID        uint64 `json:"tour_id"`
	TourTitle     string `json:"tour_title"`
	TourDateID    uint64 `json:"tour_date_id"`
	StartsAt      string `json:"starts_at"`
	Adults        uint32 `json:"adults"`
	Children      uint32 `json:"children"`
	TotalCents    uint64 `json:"total_cents"`
	PaymentMethod string `json:"payment_method"`
	CreatedAt     string `json:"created_at"`
}
