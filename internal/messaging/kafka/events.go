package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// TopicCatalogEvents — топик по умолчанию для изменений каталога.
const TopicCatalogEvents = "shop.catalog.events"

// Kafka headers, дублирующие поля конверта для маршрутизации без разбора JSON.
const (
	HeaderEventType = "x-event-type"
	HeaderEntity    = "x-entity"
)

// Envelope задаёт формат сообщения в топике каталога.
type Envelope struct {
	ID         string           `json:"id"`
	EventType  domain.EventType `json:"event_type"`
	Entity     string           `json:"entity"`
	EntityID   int64            `json:"entity_id"`
	Payload    any              `json:"payload"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewEnvelope оборачивает доменное событие и присваивает ему уникальный ID.
func NewEnvelope(event domain.CatalogEvent) Envelope {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return Envelope{
		ID:         uuid.NewString(),
		EventType:  event.Type,
		Entity:     event.Entity,
		EntityID:   event.EntityID,
		Payload:    event.Payload,
		OccurredAt: occurredAt.UTC(),
	}
}
