package service

import "errors"

var (
	// ErrInvalidCustomerID is returned when the customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidDeliveryID is returned when the delivery ID is empty.
	ErrInvalidDeliveryID = errors.New("invalid delivery id")

	// ErrMissingAddress is returned when a pickup or delivery address is empty.
	ErrMissingAddress = errors.New("pickup and delivery addresses are required")

	// ErrMissingContact is returned when a contact name or phone is empty.
	ErrMissingContact = errors.New("pickup and delivery contacts are required")

	// ErrSameAddress is returned when pickup and delivery addresses are identical.
	ErrSameAddress = errors.New("pickup and delivery addresses must differ")

	// ErrInvalidWeight is returned when the item weight is negative.
	ErrInvalidWeight = errors.New("invalid item weight")

	// ErrAlreadyClaimed is returned when a claim loses the race: the
	// delivery already has a driver or is no longer pending.
	ErrAlreadyClaimed = errors.New("delivery already claimed")

	// ErrInvalidTransition is returned when a status change is not
	// allowed from the delivery's current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDriverNotAssigned is returned when a driver operates on a
	// delivery that is assigned to someone else.
	ErrDriverNotAssigned = errors.New("driver not assigned to this delivery")

	// ErrTrackingNotAllowed is returned when a tracking sample comes
	// from the wrong driver or the delivery is not in an active state.
	ErrTrackingNotAllowed = errors.New("tracking not allowed for this delivery")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrNotDelivered is returned when rating a delivery that has not
	// been delivered yet.
	ErrNotDelivered = errors.New("delivery not completed yet")

	// ErrAlreadyRated is returned when a delivery was already rated.
	ErrAlreadyRated = errors.New("delivery already rated")

	// ErrDriverAlreadyRegistered is returned when the phone number is taken.
	ErrDriverAlreadyRegistered = errors.New("driver already registered")
)
