package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewQRToken returns the opaque check-in token issued per booking.  The
// token is a UUID joined with 8 random hex characters; the suffix keeps
// tokens unguessable even if the UUID generator were predictable.  The
// token carries no signature or expiry — check-in is a plain equality
// lookup against the bookings table.
func NewQRToken() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", uuid.NewString(), hex.EncodeToString(buf)), nil
}
