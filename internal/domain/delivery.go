package domain

import "time"

// DeliveryStatus represents the current lifecycle state of a delivery.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusAccepted  DeliveryStatus = "accepted"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

// transitions is the closed set of allowed status moves. The in_transit
// leg is optional: a delivery may go straight from picked_up to delivered.
var transitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:   {DeliveryStatusAccepted, DeliveryStatusCancelled},
	DeliveryStatusAccepted:  {DeliveryStatusPickedUp, DeliveryStatusCancelled},
	DeliveryStatusPickedUp:  {DeliveryStatusInTransit, DeliveryStatusDelivered},
	DeliveryStatusInTransit: {DeliveryStatusDelivered},
}

// Valid reports whether s is one of the known statuses.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusAccepted, DeliveryStatusPickedUp,
		DeliveryStatusInTransit, DeliveryStatusDelivered, DeliveryStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusCancelled
}

// CanTransitionTo reports whether the move s -> next is allowed.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether a delivery in status s is being worked by its
// driver, i.e. tracking samples may be appended.
func (s DeliveryStatus) Active() bool {
	switch s {
	case DeliveryStatusAccepted, DeliveryStatusPickedUp, DeliveryStatusInTransit:
		return true
	}
	return false
}

// Delivery represents one customer-requested transport job.
// The fare fields are computed once at creation and never change.
// DriverID is empty until exactly one driver claims the job.
type Delivery struct {
	ID         string
	CustomerID string
	DriverID   string

	PickupAddress      string
	PickupLat          float64
	PickupLng          float64
	PickupContactName  string
	PickupContactPhone string
	PickupNotes        string

	DeliveryAddress      string
	DeliveryLat          float64
	DeliveryLng          float64
	DeliveryContactName  string
	DeliveryContactPhone string
	DeliveryNotes        string

	ItemDescription string
	ItemWeightKg    float64
	PackageSize     string

	DistanceKm  float64
	BaseFee     int64
	DistanceFee int64
	TotalFee    int64
	DriverFee   int64
	PlatformFee int64

	Status DeliveryStatus

	CustomerRating int
	CustomerReview string

	CreatedAt   time.Time
	AcceptedAt  time.Time
	PickedUpAt  time.Time
	DeliveredAt time.Time
	CancelledAt time.Time
}
