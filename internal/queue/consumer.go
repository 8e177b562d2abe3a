package queue

import (
	"context"
	"encoding/json"
	"log"

	"uniform_shop/internal/model"

	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

// Consumer reads order-placed events and advances the matching order from
// pending to processing. Kafka delivers at least once, so the update is
// guarded to stay idempotent on redelivery.
type Consumer struct {
	r  *kafka.Reader
	db *gorm.DB
}

func NewConsumer(brokers []string, topic, groupID string, db *gorm.DB) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		db: db,
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			return // ctx cancelled or connection lost
		}

		var ev OrderPlacedEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			log.Printf("consumer unmarshal: %v", err)
			continue
		}
		if err := c.handle(ctx, ev); err != nil {
			log.Printf("consumer handle request_id=%s: %v", ev.RequestID, err)
		}
	}
}

// handle applies one event. Orders already past pending (redelivered event,
// or fulfillment moved first) are left untouched.
func (c *Consumer) handle(ctx context.Context, ev OrderPlacedEvent) error {
	if err := ev.Validate(); err != nil {
		// Dirty message: log and drop, never block the partition.
		log.Printf("consumer dropping invalid event: %v", err)
		return nil
	}
	return c.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("request_id = ? AND status = ?", ev.RequestID, model.OrderStatusPending).
		Update("status", model.OrderStatusProcessing).Error
}
