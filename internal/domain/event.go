package domain

import (
	"context"
	"time"
)

type RideEventType string

const (
	EventRideCreated   RideEventType = "ride_created"
	EventRideCompleted RideEventType = "ride_completed"
	EventRideCanceled  RideEventType = "ride_canceled"
	EventRidesSwept    RideEventType = "rides_swept"
	EventStoreReset    RideEventType = "store_reset"
)

type RideEvent struct {
	Type        RideEventType `json:"type"`
	RideID      int64         `json:"ride_id,omitempty"`
	RequesterID string        `json:"requester_id,omitempty"`
	SlotTime    string        `json:"slot_time,omitempty"`
	Purpose     Purpose       `json:"purpose,omitempty"`
	Count       int64         `json:"count,omitempty"`
	At          time.Time     `json:"at"`
}

// EventPublisher delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event RideEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RideEvent) error { return nil }

// Notifier delivers a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}
