package domain

import (
	"context"
	"time"
)

// EventType описывает тип изменения каталога.
type EventType string

const (
	EventProductCreated  EventType = "product.created"
	EventProductUpdated  EventType = "product.updated"
	EventProductDeleted  EventType = "product.deleted"
	EventCategoryCreated EventType = "category.created"
	EventCategoryUpdated EventType = "category.updated"
	EventCategoryDeleted EventType = "category.deleted"
)

// CatalogEvent — факт изменения сущности каталога, публикуемый наружу.
type CatalogEvent struct {
	Type       EventType
	Entity     string
	EntityID   int64
	Payload    any
	OccurredAt time.Time
}

// EventPublisher передаёт события каталога во внешнюю шину.
type EventPublisher interface {
	Publish(ctx context.Context, event CatalogEvent) error
}
