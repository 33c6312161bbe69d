package geo

import (
	"errors"
	"math"
)

// ErrInvalidCoordinate is returned when a latitude or longitude is out of range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// earthRadiusKm is the mean radius of the Earth.
const earthRadiusKm = 6371.0

// ValidLatitude reports whether lat is a valid decimal-degree latitude.
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lng is a valid decimal-degree longitude.
func ValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && lng >= -180 && lng <= 180
}

// ValidatePoint validates a (lat, lng) pair.
func ValidatePoint(lat, lng float64) error {
	if !ValidLatitude(lat) || !ValidLongitude(lng) {
		return ErrInvalidCoordinate
	}
	return nil
}

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees, using the haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) (float64, error) {
	if err := ValidatePoint(lat1, lng1); err != nil {
		return 0, err
	}
	if err := ValidatePoint(lat2, lng2); err != nil {
		return 0, err
	}

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}
