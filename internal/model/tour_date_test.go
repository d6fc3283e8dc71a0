package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableSeats(t *testing.T) {
	tests := []struct {
		name     string
		capacity uint32
		booked   uint32
		want     uint32
	}{
		{name: "empty date", capacity: 20, booked: 0, want: 20},
		{name: "partially booked", capacity: 20, booked: 4, want: 16},
		{name: "full", capacity: 20, booked: 20, want: 0},
		{name: "overbooked clamps to zero", capacity: 20, booked: 25, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AvailableSeats(tt.capacity, tt.booked))
		})
	}
}

func TestEffectiveAdultCents(t *testing.T) {
	t.Run("falls back to tour price", func(t *testing.T) {
		d := TourDate{}
		assert.Equal(t, uint32(8900), d.EffectiveAdultCents(8900))
	})
	t.Run("override wins", func(t *testing.T) {
		override := uint32(7500)
		d := TourDate{PriceOverrideCents: &override}
		assert.Equal(t, uint32(7500), d.EffectiveAdultCents(8900))
	})
	t.Run("zero override is still an override", func(t *testing.T) {
		override := uint32(0)
		d := TourDate{PriceOverrideCents: &override}
		assert.Equal(t, uint32(0), d.EffectiveAdultCents(8900))
	})
}
