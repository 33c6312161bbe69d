package domain

import "time"

// TrackingSample is one timestamped position report tied to an active
// delivery. Samples are append-only and ordered by creation time.
type TrackingSample struct {
	ID         string
	DeliveryID string
	DriverID   string
	Lat        float64
	Lng        float64
	CreatedAt  time.Time
}
