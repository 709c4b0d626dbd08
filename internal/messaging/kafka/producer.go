package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// DefaultSendTimeout ограничивает ожидание подтверждения от брокера.
const DefaultSendTimeout = 5 * time.Second

// Producer публикует JSON-сообщения в Kafka через синхронный sarama producer.
type Producer struct {
	producer    sarama.SyncProducer
	logger      *log.Entry
	sendTimeout time.Duration
}

type sendResult struct {
	partition int32
	offset    int64
	err       error
}

// NewProducer создает producer с подтверждением от всех in-sync реплик.
func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Net.DialTimeout = 3 * time.Second
	config.Producer.Timeout = DefaultSendTimeout

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newProducer(producer), nil
}

func newProducer(producer sarama.SyncProducer) *Producer {
	return &Producer{
		producer:    producer,
		logger:      log.WithField("component", "kafka-producer"),
		sendTimeout: DefaultSendTimeout,
	}
}

// Send сериализует value и отправляет его с ключом key. Ожидание ответа
// брокера ограничено контекстом и sendTimeout; после отмены сообщение может
// всё ещё уйти в фоне, но вызывающий больше не ждёт.
func (p *Producer) Send(ctx context.Context, topic, key string, value any, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send to %s: %w", topic, err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}
	for name, val := range headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(name), Value: []byte(val)})
	}

	ctx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()

	done := make(chan sendResult, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		done <- sendResult{partition: partition, offset: offset, err: err}
	}()

	var res sendResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err != nil {
		p.logger.WithError(res.err).WithFields(log.Fields{
			"topic": topic,
			"key":   key,
		}).Error("failed to send message to kafka")
		return fmt.Errorf("failed to send message: %w", res.err)
	}

	p.logger.WithFields(log.Fields{
		"topic":     topic,
		"key":       key,
		"partition": res.partition,
		"offset":    res.offset,
	}).Debug("message sent to kafka")
	return nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
