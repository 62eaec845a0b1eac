package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mvelarde/puntoventa/pkg/messaging"
)

// LowStockEvent is published when a committed sale leaves a product at or
// below its alert threshold.
type LowStockEvent struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int32     `json:"quantity"`
	Threshold   int32     `json:"threshold"`
	Critical    bool      `json:"critical"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e LowStockEvent) Subject() string {
	return messaging.StockLowSubject
}

func (e LowStockEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
