package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"courier/internal/config"
	"courier/internal/domain"
)

// EventType represents the type of a dispatch event.
type EventType string

const (
	EventDeliveryRequested EventType = "DELIVERY_REQUESTED"
	EventDeliveryClaimed   EventType = "DELIVERY_CLAIMED"
	EventStatusChanged     EventType = "STATUS_CHANGED"
	EventDeliveryCancelled EventType = "DELIVERY_CANCELLED"
)

// Event is one fire-and-forget message to the notification collaborator.
type Event struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	RecipientID string         `json:"recipient_id"`
	DeliveryID  string         `json:"delivery_id"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NotificationService emits dispatch events. When Kafka is configured
// events go to the broker; they are always logged. Emission is best
// effort and never blocks or fails the calling operation's outcome.
type NotificationService struct {
	writer *kafka.Writer
}

// NewNotificationService creates a new NotificationService. With Kafka
// disabled the service only logs.
func NewNotificationService(cfg config.KafkaConfig) *NotificationService {
	if !cfg.Enabled {
		return &NotificationService{}
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &NotificationService{writer: writer}
}

// Close releases the Kafka writer, if any.
func (s *NotificationService) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}

// NotifyDeliveryRequested tells nearby drivers about a new delivery.
func (s *NotificationService) NotifyDeliveryRequested(ctx context.Context, delivery *domain.Delivery, nearbyDriverIDs []string) error {
	for _, driverID := range nearbyDriverIDs {
		s.emit(ctx, Event{
			ID:          uuid.New().String(),
			Type:        EventDeliveryRequested,
			RecipientID: driverID,
			DeliveryID:  delivery.ID,
			Message:     fmt.Sprintf("New delivery near you. Pickup at (%.4f, %.4f)", delivery.PickupLat, delivery.PickupLng),
			Data: map[string]any{
				"pickup_lat": delivery.PickupLat,
				"pickup_lng": delivery.PickupLng,
				"driver_fee": delivery.DriverFee,
			},
			CreatedAt: time.Now().UTC(),
		})
	}
	return nil
}

// NotifyDeliveryClaimed tells the customer a driver took the job.
func (s *NotificationService) NotifyDeliveryClaimed(ctx context.Context, delivery *domain.Delivery) error {
	s.emit(ctx, Event{
		ID:          uuid.New().String(),
		Type:        EventDeliveryClaimed,
		RecipientID: delivery.CustomerID,
		DeliveryID:  delivery.ID,
		Message:     "A driver accepted your delivery",
		Data:        map[string]any{"driver_id": delivery.DriverID},
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

// NotifyStatusChanged tells the customer the delivery moved forward.
func (s *NotificationService) NotifyStatusChanged(ctx context.Context, delivery *domain.Delivery) error {
	s.emit(ctx, Event{
		ID:          uuid.New().String(),
		Type:        EventStatusChanged,
		RecipientID: delivery.CustomerID,
		DeliveryID:  delivery.ID,
		Message:     fmt.Sprintf("Delivery is now %s", delivery.Status),
		Data:        map[string]any{"status": string(delivery.Status)},
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

// NotifyDeliveryCancelled tells the other party about a cancellation.
func (s *NotificationService) NotifyDeliveryCancelled(ctx context.Context, delivery *domain.Delivery, cancelledBy string) error {
	recipientID := delivery.CustomerID
	if cancelledBy == delivery.CustomerID {
		recipientID = delivery.DriverID
	}
	if recipientID == "" {
		return nil
	}

	s.emit(ctx, Event{
		ID:          uuid.New().String(),
		Type:        EventDeliveryCancelled,
		RecipientID: recipientID,
		DeliveryID:  delivery.ID,
		Message:     "The delivery was cancelled",
		Data:        map[string]any{"cancelled_by": cancelledBy},
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

// emit logs the event and, when a broker is configured, publishes it
// keyed by delivery so per-delivery ordering survives partitioning.
func (s *NotificationService) emit(ctx context.Context, event Event) {
	log.Printf("[EVENT] type=%s recipient=%s delivery=%s msg=%s",
		event.Type, event.RecipientID, event.DeliveryID, event.Message)

	if s.writer == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("event marshal failed: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.DeliveryID),
		Value: payload,
	}); err != nil {
		log.Printf("event publish failed: %v", err)
	}
}
