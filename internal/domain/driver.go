package domain

import "time"

// DriverPresence is the per-driver record owned by the driver: current
// location, availability, and running aggregates. LocatedAt is the zero
// time until the driver reports a position for the first time.
type DriverPresence struct {
	ID        string
	Name      string
	Phone     string
	Available bool

	CurrentLat float64
	CurrentLng float64
	LocatedAt  time.Time

	Rating         float64
	RatingCount    int
	CompletedTrips int
	TotalEarnings  int64
}

// HasLocation reports whether the driver has ever reported a position.
func (d *DriverPresence) HasLocation() bool {
	return !d.LocatedAt.IsZero()
}
