package fare

import (
	"errors"
	"math"
)

// ErrInvalidDistance is returned when a quote is requested for a
// negative or non-finite distance.
var ErrInvalidDistance = errors.New("invalid distance")

// Schedule is the fixed policy mapping trip distance to fee components.
// All fees are in the smallest currency unit (won).
type Schedule struct {
	BaseFee        int64   // flat fee covering the first BaseDistanceKm
	BaseDistanceKm float64 // distance included in the base fee
	PerKmFee       int64   // rate applied beyond BaseDistanceKm
	PlatformRate   float64 // platform's fraction of the total, in [0, 1]
}

// DefaultSchedule returns the standard fee schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		BaseFee:        3000,
		BaseDistanceKm: 1.0,
		PerKmFee:       1000,
		PlatformRate:   0.15,
	}
}

// Quote is a fare breakdown for one delivery. TotalFee always equals
// BaseFee + DistanceFee and DriverFee + PlatformFee.
type Quote struct {
	BaseFee     int64
	DistanceFee int64
	TotalFee    int64
	DriverFee   int64
	PlatformFee int64
}

// Quote computes the fare breakdown for the given distance.
// A zero distance is valid and yields the base fee floor. Each derived
// field is rounded once; the total is the sum of already-rounded parts
// so the components always add up exactly.
func (s Schedule) Quote(distanceKm float64) (Quote, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		return Quote{}, ErrInvalidDistance
	}

	extraKm := distanceKm - s.BaseDistanceKm
	if extraKm < 0 {
		extraKm = 0
	}

	distanceFee := int64(math.Round(float64(s.PerKmFee) * extraKm))
	totalFee := s.BaseFee + distanceFee
	platformFee := int64(math.Round(float64(totalFee) * s.PlatformRate))
	driverFee := totalFee - platformFee

	return Quote{
		BaseFee:     s.BaseFee,
		DistanceFee: distanceFee,
		TotalFee:    totalFee,
		DriverFee:   driverFee,
		PlatformFee: platformFee,
	}, nil
}
