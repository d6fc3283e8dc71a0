package model

import "time"

// Statuses a tour date can carry.  Only ACTIVE dates are offered for
// booking; a date can be retired without touching its bookings.
const (
	TourDateActive   = "ACTIVE"
	TourDateInactive = "INACTIVE"
)

// TourDate is a scheduled occurrence of a Tour as stored in the
// `tour_dates` table.  Availability is a derived quantity and never
// stored: capacity_max minus the participants of all non-cancelled
// bookings for the date.
//
// Fields:
//  ID                 – primary key identifier.
//  TourID             – the tour this date belongs to.
//  StartsAt           – start of the excursion (UTC).
//  EndsAt             – optional end timestamp (UTC).
//  Timezone           – IANA timezone used for display.
//  CapacityMin        – minimum participants for the date to run.
//  CapacityMax        – maximum participants.
//  PriceOverrideCents – optional per-date adult price overriding the
//                       tour's base adult price.
//  Status             – ACTIVE or INACTIVE.
//  CreatedAt          – timestamp of creation.
//  UpdatedAt          – timestamp of last update.
type TourDate struct {
	ID                 uint64     // tour_dates.id
	TourID             uint64     // tour_dates.tour_id
	StartsAt           time.Time  // tour_dates.starts_at
	EndsAt             *time.Time // tour_dates.ends_at (nullable)
	Timezone           string     // tour_dates.timezone
	CapacityMin        uint32     // tour_dates.capacity_min
	CapacityMax        uint32     // tour_dates.capacity_max
	PriceOverrideCents *uint32    // tour_dates.price_override_cents (nullable)
	Status             string     // tour_dates.status
	CreatedAt          time.Time  // tour_dates.created_at
	UpdatedAt          time.Time  // tour_dates.updated_at
}

// AvailableSeats returns capacityMax minus bookedSeats, clamped at
// zero.  Data seeded before the transactional capacity check existed
// can be overbooked; the API must never report a negative count.
func AvailableSeats(capacityMax, bookedSeats uint32) uint32 {
	if bookedSeats >= capacityMax {
		return 0
	}
	return capacityMax - bookedSeats
}

// EffectiveAdultCents returns the adult price to charge for this date:
// the per-date override when present, otherwise the tour's base price.
func (d *TourDate) EffectiveAdultCents(tourPriceAdultCents uint32) uint32 {
	if d.PriceOverrideCents != nil {
		return *d.PriceOverrideCents
	}
	return tourPriceAdultCents
}
