package model

import "time"

// Notification types recorded for the back office.
const (
	NotifyBookingCreated   = "BOOKING_CREATED"
	NotifyBookingCancelled = "BOOKING_CANCELLED"
)

// Notification is an admin-facing event record as stored in the
// `notifications` table.  The payload is an opaque JSON document whose
// shape depends on Type.
//
// Fields:
//  ID        – primary key identifier.
//  Type      – event type tag (e.g. BOOKING_CREATED).
//  Payload   – JSON-encoded event details.
//  Seen      – whether an admin has marked the notification as seen.
//  CreatedAt – timestamp of creation.
type Notification struct {
	ID        uint64    // notifications.id
	Type      string    // notifications.type
	Payload   string    // notifications.payload (JSON column)
	Seen      bool      // notifications.seen
	CreatedAt time.Time // notifications.created_at
}
