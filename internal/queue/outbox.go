package queue

import (
	"context"
	"strconv"

	rd "github.com/redis/go-redis/v9"
)

// StreamOutbox appends order-placed events to a Redis Stream. The API
// writes here after commit; the Relay forwards entries to Kafka so a broker
// outage never blocks or unwinds a checkout.
type StreamOutbox struct {
	rdb    *rd.Client
	stream string
}

func NewStreamOutbox(rdb *rd.Client, stream string) *StreamOutbox {
	return &StreamOutbox{rdb: rdb, stream: stream}
}

func (o *StreamOutbox) Publish(ctx context.Context, ev OrderPlacedEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	return o.rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: o.stream,
		Values: map[string]interface{}{
			"request_id":  ev.RequestID,
			"order_no":    ev.OrderNo,
			"user_id":     strconv.FormatInt(ev.UserID, 10),
			"category":    ev.Category,
			"product_id":  strconv.FormatUint(uint64(ev.ProductID), 10),
			"quantity":    strconv.Itoa(ev.Quantity),
			"total_price": strconv.FormatInt(ev.TotalPrice, 10),
		},
	}).Err()
}
