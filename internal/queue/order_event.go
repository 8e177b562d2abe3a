package queue

import "fmt"

// OrderPlacedEvent is emitted after an order commits; downstream consumers
// drive receipts, notifications and the pending -> processing transition.
type OrderPlacedEvent struct {
	RequestID  string `json:"request_id"`
	OrderNo    string `json:"order_no"`
	UserID     int64  `json:"user_id"`
	Category   string `json:"category"`
	ProductID  uint   `json:"product_id"`
	Quantity   int    `json:"quantity"`
	TotalPrice int64  `json:"total_price"` // minor units
}

// Validate does minimal field checks so consumers never process dirty
// messages.
func (e OrderPlacedEvent) Validate() error {
	if e.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if e.OrderNo == "" {
		return fmt.Errorf("order_no is required")
	}
	if e.UserID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	if e.Category == "" {
		return fmt.Errorf("category is required")
	}
	if e.ProductID == 0 {
		return fmt.Errorf("product_id is required")
	}
	if e.Quantity <= 0 {
		return fmt.Errorf("quantity must be > 0")
	}
	if e.TotalPrice <= 0 {
		return fmt.Errorf("total_price must be > 0")
	}
	return nil
}
