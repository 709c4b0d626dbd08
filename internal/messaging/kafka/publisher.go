package kafka

import (
	"context"
	"errors"
	"strconv"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// CatalogPublisher публикует события каталога в один топик; ключ сообщения —
// идентификатор сущности, чтобы изменения одной записи шли в одну партицию.
type CatalogPublisher struct {
	producer *Producer
	topic    string
	metrics  *metrics.CatalogMetrics
}

// NewCatalogPublisher создаёт паблишер; пустой topic заменяется на TopicCatalogEvents.
func NewCatalogPublisher(producer *Producer, topic string, m *metrics.CatalogMetrics) *CatalogPublisher {
	if topic == "" {
		topic = TopicCatalogEvents
	}
	return &CatalogPublisher{producer: producer, topic: topic, metrics: m}
}

func (p *CatalogPublisher) Publish(ctx context.Context, event domain.CatalogEvent) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka catalog publisher is not initialized")
	}

	envelope := NewEnvelope(event)
	err := p.producer.Send(ctx, p.topic, event.Entity+":"+strconv.FormatInt(event.EntityID, 10), envelope, map[string]string{
		HeaderEventType: string(event.Type),
		HeaderEntity:    event.Entity,
	})
	if err != nil {
		p.metrics.RecordEvent(metrics.ResultError)
		return err
	}
	p.metrics.RecordEvent(metrics.ResultOK)
	return nil
}

var _ domain.EventPublisher = (*CatalogPublisher)(nil)
