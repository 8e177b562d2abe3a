package queue

import (
	"context"
	"path/filepath"
	"testing"

	"uniform_shop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "queue_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Order{}))
	return db
}

func validEvent() OrderPlacedEvent {
	return OrderPlacedEvent{
		RequestID:  "req-1",
		OrderNo:    "UO123456789ABC",
		UserID:     7,
		Category:   "shirts",
		ProductID:  1,
		Quantity:   2,
		TotalPrice: 3000,
	}
}

func TestOrderPlacedEventValidate(t *testing.T) {
	assert.NoError(t, validEvent().Validate())

	tests := []struct {
		name   string
		mutate func(*OrderPlacedEvent)
	}{
		{"missing request_id", func(e *OrderPlacedEvent) { e.RequestID = "" }},
		{"missing order_no", func(e *OrderPlacedEvent) { e.OrderNo = "" }},
		{"zero user", func(e *OrderPlacedEvent) { e.UserID = 0 }},
		{"missing category", func(e *OrderPlacedEvent) { e.Category = "" }},
		{"zero product", func(e *OrderPlacedEvent) { e.ProductID = 0 }},
		{"zero quantity", func(e *OrderPlacedEvent) { e.Quantity = 0 }},
		{"zero total", func(e *OrderPlacedEvent) { e.TotalPrice = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := validEvent()
			tc.mutate(&ev)
			assert.Error(t, ev.Validate())
		})
	}
}

func TestParseOrderEvent(t *testing.T) {
	values := map[string]interface{}{
		"request_id":  "req-1",
		"order_no":    "UO123456789ABC",
		"user_id":     "7",
		"category":    "shirts",
		"product_id":  "1",
		"quantity":    "2",
		"total_price": "3000",
	}

	ev, err := parseOrderEvent(values)
	require.NoError(t, err)
	assert.Equal(t, validEvent(), ev)
}

func TestParseOrderEventRejectsBadFields(t *testing.T) {
	values := map[string]interface{}{
		"request_id":  "req-1",
		"order_no":    "UO123456789ABC",
		"user_id":     "not-a-number",
		"category":    "shirts",
		"product_id":  "1",
		"quantity":    "2",
		"total_price": "3000",
	}
	_, err := parseOrderEvent(values)
	assert.Error(t, err)

	delete(values, "order_no")
	_, err = parseOrderEvent(values)
	assert.Error(t, err)
}

func TestConsumerHandleAdvancesPending(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.Order{
		OrderNo:        "UO123456789ABC",
		RequestID:      "req-1",
		UserID:         7,
		Category:       model.CategoryShirts,
		ProductID:      1,
		Quantity:       2,
		BasePrice:      1500,
		TotalPrice:     3000,
		DeliveryOption: "Standard",
		SchoolName:     "Northfield Primary",
		Status:         model.OrderStatusPending,
	}).Error)

	c := &Consumer{db: db}
	require.NoError(t, c.handle(context.Background(), validEvent()))

	var after model.Order
	require.NoError(t, db.Where("request_id = ?", "req-1").First(&after).Error)
	assert.Equal(t, model.OrderStatusProcessing, after.Status)

	// Redelivery is a no-op: the guard only matches pending orders.
	require.NoError(t, c.handle(context.Background(), validEvent()))
	require.NoError(t, db.Where("request_id = ?", "req-1").First(&after).Error)
	assert.Equal(t, model.OrderStatusProcessing, after.Status)
}

func TestConsumerHandleDropsInvalidEvent(t *testing.T) {
	db := newTestDB(t)
	c := &Consumer{db: db}

	ev := validEvent()
	ev.RequestID = ""
	assert.NoError(t, c.handle(context.Background(), ev))
}
