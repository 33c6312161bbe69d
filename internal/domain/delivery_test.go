package domain

import "testing"

func TestDeliveryStatus_Valid(t *testing.T) {
	valid := []DeliveryStatus{
		DeliveryStatusPending, DeliveryStatusAccepted, DeliveryStatusPickedUp,
		DeliveryStatusInTransit, DeliveryStatusDelivered, DeliveryStatusCancelled,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if DeliveryStatus("unknown").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestDeliveryStatus_Transitions(t *testing.T) {
	allowed := []struct {
		from, to DeliveryStatus
	}{
		{DeliveryStatusPending, DeliveryStatusAccepted},
		{DeliveryStatusPending, DeliveryStatusCancelled},
		{DeliveryStatusAccepted, DeliveryStatusPickedUp},
		{DeliveryStatusAccepted, DeliveryStatusCancelled},
		{DeliveryStatusPickedUp, DeliveryStatusInTransit},
		{DeliveryStatusPickedUp, DeliveryStatusDelivered},
		{DeliveryStatusInTransit, DeliveryStatusDelivered},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to DeliveryStatus
	}{
		{DeliveryStatusPending, DeliveryStatusPickedUp},
		{DeliveryStatusPending, DeliveryStatusDelivered},
		{DeliveryStatusAccepted, DeliveryStatusDelivered},
		{DeliveryStatusPickedUp, DeliveryStatusCancelled},
		{DeliveryStatusInTransit, DeliveryStatusCancelled},
		{DeliveryStatusDelivered, DeliveryStatusPending},
		{DeliveryStatusCancelled, DeliveryStatusAccepted},
		{DeliveryStatusAccepted, DeliveryStatusAccepted},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestDeliveryStatus_TerminalStatesHaveNoExits(t *testing.T) {
	all := []DeliveryStatus{
		DeliveryStatusPending, DeliveryStatusAccepted, DeliveryStatusPickedUp,
		DeliveryStatusInTransit, DeliveryStatusDelivered, DeliveryStatusCancelled,
	}
	for _, from := range []DeliveryStatus{DeliveryStatusDelivered, DeliveryStatusCancelled} {
		if !from.Terminal() {
			t.Errorf("expected %s to be terminal", from)
		}
		for _, to := range all {
			if from.CanTransitionTo(to) {
				t.Errorf("terminal %s must not transition to %s", from, to)
			}
		}
	}
}

func TestDeliveryStatus_Active(t *testing.T) {
	active := []DeliveryStatus{DeliveryStatusAccepted, DeliveryStatusPickedUp, DeliveryStatusInTransit}
	for _, s := range active {
		if !s.Active() {
			t.Errorf("expected %s to be active", s)
		}
	}
	inactive := []DeliveryStatus{DeliveryStatusPending, DeliveryStatusDelivered, DeliveryStatusCancelled}
	for _, s := range inactive {
		if s.Active() {
			t.Errorf("expected %s to be inactive", s)
		}
	}
}
