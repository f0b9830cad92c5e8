// Package events publishes order lifecycle envelopes to Kafka. Publishing is
// best-effort: failures are logged and never surfaced to the request that
// triggered them.
package events

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/aibeh/order-management/pkg/models"
)

const (
	OrderCreatedTopic = "order.created"
	OrderUpdatedTopic = "order.updated"
	OrderDeletedTopic = "order.deleted"
)

// OrderEvent is the envelope written to every order topic. Order is nil for
// deletions.
type OrderEvent struct {
	OrderID   string        `json:"order_id"`
	Order     *models.Order `json:"order,omitempty"`
	EventTime time.Time     `json:"event_time"`
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

func NewKafkaProducer(brokers []string, logger *logrus.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &KafkaProducer{
		producer: producer,
		logger:   logger,
	}, nil
}

func (p *KafkaProducer) OrderCreated(o *models.Order) {
	p.publish(OrderCreatedTopic, OrderEvent{OrderID: o.ID, Order: o})
}

func (p *KafkaProducer) OrderUpdated(o *models.Order) {
	p.publish(OrderUpdatedTopic, OrderEvent{OrderID: o.ID, Order: o})
}

func (p *KafkaProducer) OrderDeleted(id string) {
	p.publish(OrderDeletedTopic, OrderEvent{OrderID: id})
}

func (p *KafkaProducer) publish(topic string, event OrderEvent) {
	event.EventTime = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("topic", topic).Error("Failed to marshal event")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("topic", topic).Error("Failed to send message to Kafka")
		return
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"order_id":  event.OrderID,
	}).Info("Event published to Kafka")
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
