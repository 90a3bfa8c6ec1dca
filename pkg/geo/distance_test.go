package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_SymmetricAndZeroOnSamePoint(t *testing.T) {
	points := [][2]float64{
		{21.0278, 105.8342},  // Hanoi centre
		{21.0368, 105.8342},  // ~1 km north
		{10.7769, 106.7009},  // Ho Chi Minh City
		{-33.8688, 151.2093}, // Sydney
		{0, 0},
	}

	for _, a := range points {
		assert.Equal(t, 0.0, Distance(a[0], a[1], a[0], a[1]))
		for _, b := range points {
			assert.InDelta(t, Distance(a[0], a[1], b[0], b[1]), Distance(b[0], b[1], a[0], a[1]), 1e-9)
		}
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// One degree of latitude on a 6371 km sphere.
	assert.InDelta(t, 111.195, Distance(0, 0, 1, 0), 0.001)

	// Hanoi to Ho Chi Minh City is roughly 1,140 km as the crow flies.
	assert.InDelta(t, 1140, Distance(21.0278, 105.8342, 10.7769, 106.7009), 15)
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		km   float64
		want string
	}{
		{km: 0, want: "0 m"},
		{km: 0.8504, want: "850 m"},
		{km: 0.9996, want: "1000 m"},
		{km: 1, want: "1.0 km"},
		{km: 2.46, want: "2.5 km"},
		{km: 12.04, want: "12.0 km"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDistance(tt.km))
		})
	}
}
