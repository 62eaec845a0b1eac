// Package messaging defines the event contract between the POS service and
// its background consumers.
package messaging

import (
	"context"
)

// Subjects for the events published by the POS service.
const (
	SalesCreatedSubject = "pos.sales.created"
	StockLowSubject     = "pos.stock.low"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events. Used when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, _ Event) error { return nil }
