package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalCents(t *testing.T) {
	tests := []struct {
		name       string
		adults     uint32
		children   uint32
		adultCents uint32
		childCents uint32
		want       uint64
	}{
		{name: "single adult", adults: 1, adultCents: 8900, childCents: 4500, want: 8900},
		{name: "family of four", adults: 3, children: 1, adultCents: 8900, childCents: 4500, want: 31200},
		{name: "children priced separately", adults: 2, children: 2, adultCents: 6500, childCents: 3000, want: 19000},
		{name: "free tour", adults: 5, children: 3, adultCents: 0, childCents: 0, want: 0},
		// a million adults at 100 euro exceeds uint32; the total must
		// not wrap back into a plausible-looking small amount
		{name: "beyond 32 bits", adults: 1_000_000, adultCents: 10_000, childCents: 4500, want: 10_000_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalCents(tt.adults, tt.children, tt.adultCents, tt.childCents))
		})
	}
}

func TestBookingSeats(t *testing.T) {
	b := Booking{Adults: 3, Children: 1}
	assert.Equal(t, uint64(4), b.Seats())
}

func TestSeatCountDoesNotWrap(t *testing.T) {
	// adults+children in uint32 would wrap to 0 here and pass any
	// availability comparison
	got := SeatCount(math.MaxUint32, 1)
	assert.Equal(t, uint64(math.MaxUint32)+1, got)
	assert.Greater(t, got, uint64(AvailableSeats(20, 4)))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PayOnsite))
	assert.True(t, ValidPaymentMethod(PayCardStub))
	assert.True(t, ValidPaymentMethod(PayFree))
	assert.False(t, ValidPaymentMethod("PAYPAL"))
	assert.False(t, ValidPaymentMethod(""))
}

func TestValidPaymentStatus(t *testing.T) {
	for _, s := range []string{PaymentPending, PaymentPaid, PaymentCancelled, PaymentRefunded} {
		assert.True(t, ValidPaymentStatus(s), s)
	}
	assert.False(t, ValidPaymentStatus("EXPIRED"))
}
