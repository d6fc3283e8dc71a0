package model

import "time"

// Payment methods accepted at booking time.  CARD_STUB is a placeholder
// until real card processing is wired; FREE marks complimentary
// bookings (the total is still computed from the price list).
const (
	PayOnsite   = "ONSITE"
	PayCardStub = "CARD_STUB"
	PayFree     = "FREE"
)

// Payment statuses a booking moves through.  Admins may set any status
// via the update endpoint; customers may only cancel their own booking.
// CANCELLED bookings are excluded from seat aggregation, which is the
// entire seat-release mechanism.
const (
	PaymentPending   = "PENDING"
	PaymentPaid      = "PAID"
	PaymentCancelled = "CANCELLED"
	PaymentRefunded  = "REFUNDED"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PayOnsite, PayCardStub, PayFree:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

// Booking records a reservation of seats on a tour date as stored in
// the `bookings` table.  The total is computed once at booking time and
// never recomputed when tour prices change afterwards.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user who made the booking.
//  TourDateID    – the tour date being booked.
//  Adults        – number of adult participants (>= 1).
//  Children      – number of child participants (>= 0).
//  TotalCents    – total price in euro cents, fixed at creation.
//  PaymentMethod – ONSITE, CARD_STUB or FREE.
//  PaymentStatus – PENDING, PAID, CANCELLED or REFUNDED.
//  Notes         – free-text customer notes.
//  QRCode        – opaque check-in token, unique per booking.
//  CheckedIn     – whether the QR token has been used at check-in.
//  CheckedInAt   – when check-in happened (null until then).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
	ID            uint64     // bookings.id
	UserID        uint64     // bookings.user_id
	TourDateID    uint64     // bookings.tour_date_id
	Adults        uint32     // bookings.adults
	Children      uint32     // bookings.children
	TotalCents    uint64     // bookings.total_cents
	PaymentMethod string     // bookings.payment_method
	PaymentStatus string     // bookings.payment_status
	Notes         string     // bookings.notes
	QRCode        string     // bookings.qr_code
	CheckedIn     bool       // bookings.checked_in
	CheckedInAt   *time.Time // bookings.checked_in_at (nullable)
	CreatedAt     time.Time  // bookings.created_at
	UpdatedAt     time.Time  // bookings.updated_at
}

// TotalCents computes the booking total: adults at the effective adult
// price (the date's override when set, else the tour's base price) plus
// children at the child price.  The arithmetic is 64-bit so client
// counts near the uint32 limit cannot wrap into a small total.
func TotalCents(adults, children, effectiveAdultCents, childCents uint32) uint64 {
	return uint64(adults)*uint64(effectiveAdultCents) + uint64(children)*uint64(childCents)
}

// SeatCount sums adults and children in 64 bits.  Capacity checks must
// compare this, never the uint32 sum: adults=MaxUint32, children=1
// wraps uint32 to zero and would sail past any availability test.
func SeatCount(adults, children uint32) uint64 {
	return uint64(adults) + uint64(children)
}

// Seats returns the number of seats a booking occupies.
func (b *Booking) Seats() uint64 { return SeatCount(b.Adults, b.Children) }
