package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/pricing-cli/internal/model"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, -1.23, Round2(-1.2349))
	assert.Equal(t, 0.0, Round2(0))
}

func TestMiles_ZeroForSamePoint(t *testing.T) {
	p := model.Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	assert.Equal(t, 0.0, Miles(p, p))
}

func TestMiles_Symmetric(t *testing.T) {
	ny := model.Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	bos := model.Coordinates{Latitude: 42.3601, Longitude: -71.0589}

	d1 := Miles(ny, bos)
	d2 := Miles(bos, ny)
	assert.Equal(t, d1, d2)
	// NY to Boston is roughly 190 miles.
	assert.InDelta(t, 190, d1, 10)
}

func TestMiles_TwoDecimalPrecision(t *testing.T) {
	a := model.Coordinates{Latitude: 40.0, Longitude: -74.0}
	b := model.Coordinates{Latitude: 40.1, Longitude: -74.1}
	d := Miles(a, b)
	assert.Equal(t, Round2(d), d)
	assert.Greater(t, d, 0.0)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{20.0, "20.0"},
		{20.5, "20.5"},
		{20.05, "20.05"},
		{20.1, "20.1"},
		{1.0, "1.0"},
		{0.0, "0.0"},
		{2.35, "2.35"},
		{-3.5, "-3.5"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.in))
		})
	}
}

func TestFormatMiles(t *testing.T) {
	assert.Equal(t, "1.0 mi", FormatMiles(1.0))
	assert.Equal(t, "2.35 mi", FormatMiles(2.35))
}
