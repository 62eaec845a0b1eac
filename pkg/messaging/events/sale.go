package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mvelarde/puntoventa/pkg/messaging"
)

type SaleCreatedEvent struct {
	SaleID        uuid.UUID `json:"sale_id"`
	Total         int64     `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s SaleCreatedEvent) Subject() string {
	return messaging.SalesCreatedSubject
}

func (s SaleCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(s)
}
