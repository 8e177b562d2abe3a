// Package order converts a confirmed cart line into a persisted order and
// the compensating stock decrement, executed as one atomic unit.
package order

import (
	"context"
	"errors"
	"log"
	"strings"

	"uniform_shop/internal/apperr"
	"uniform_shop/internal/inventory"
	"uniform_shop/internal/model"
	"uniform_shop/internal/pricing"
	"uniform_shop/internal/queue"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outbox receives the post-commit event. Publishing is best effort: a
// failure is logged, never unwound into the committed order.
type Outbox interface {
	Publish(ctx context.Context, ev queue.OrderPlacedEvent) error
}

// PlaceRequest is a checkout for one confirmed line.
type PlaceRequest struct {
	UserID         int64
	Category       model.Category
	ProductID      uint
	Quantity       int
	DeliveryOption string
	SchoolID       uint
}

func (r PlaceRequest) validate() error {
	if r.UserID <= 0 {
		return apperr.Validationf("user id is required")
	}
	if !r.Category.Valid() {
		return apperr.Validationf("unknown product category %q", string(r.Category))
	}
	if r.ProductID == 0 {
		return apperr.Validationf("product id is required")
	}
	if r.Quantity < 1 {
		return apperr.Validationf("quantity must be at least 1")
	}
	if !pricing.ValidOption(r.DeliveryOption) {
		return apperr.Validationf("unknown delivery option %q", r.DeliveryOption)
	}
	if r.SchoolID == 0 {
		return apperr.Validationf("school id is required")
	}
	return nil
}

// errConflict marks a decrement that lost the race against a concurrent
// placement on the same stock row.
var errConflict = errors.New("stock decrement conflict")

// Engine is the single writer of stock rows; every decrement goes through
// Place's transaction.
type Engine struct {
	db     *gorm.DB
	stock  *inventory.Store
	outbox Outbox // optional
}

func NewEngine(db *gorm.DB, stock *inventory.Store, outbox Outbox) *Engine {
	return &Engine{db: db, stock: stock, outbox: outbox}
}

// Place runs the full placement:
//  1. field validation, before any I/O
//  2. resolve the destination school
//  3. re-fetch live stock and pre-check quantity
//  4. one transaction: conditional decrement + order insert
//  5. post-commit: emit the order-placed event
//
// The decrement only succeeds while quantity-on-hand covers the request at
// commit time; on conflict the whole placement retries once, then fails
// with the live available count.
func (e *Engine) Place(ctx context.Context, req PlaceRequest) (*model.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var school model.School
	err := e.db.WithContext(ctx).First(&school, req.SchoolID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("school %d not found", req.SchoolID)
	}
	if err != nil {
		return nil, apperr.Persistence(err, "school lookup failed")
	}

	ord, err := e.placeOnce(ctx, req, school.Name)
	if errors.Is(err, errConflict) {
		ord, err = e.placeOnce(ctx, req, school.Name)
	}
	if errors.Is(err, errConflict) {
		// Retried once already; report the freshest availability.
		item, ferr := e.stock.FindByID(ctx, req.Category, req.ProductID)
		if ferr != nil {
			return nil, ferr
		}
		return nil, apperr.InsufficientStock(item.Quantity)
	}
	if err != nil {
		return nil, err
	}

	if e.outbox != nil {
		ev := queue.OrderPlacedEvent{
			RequestID:  ord.RequestID,
			OrderNo:    ord.OrderNo,
			UserID:     ord.UserID,
			Category:   string(ord.Category),
			ProductID:  ord.ProductID,
			Quantity:   ord.Quantity,
			TotalPrice: ord.TotalPrice,
		}
		if perr := e.outbox.Publish(ctx, ev); perr != nil {
			log.Printf("order %s: outbox publish: %v", ord.OrderNo, perr)
		}
	}
	return ord, nil
}

func (e *Engine) placeOnce(ctx context.Context, req PlaceRequest, schoolName string) (*model.Order, error) {
	item, err := e.stock.FindByID(ctx, req.Category, req.ProductID)
	if err != nil {
		return nil, err
	}
	if int64(req.Quantity) > item.Quantity {
		return nil, apperr.InsufficientStock(item.Quantity)
	}

	fee := pricing.DeliveryFee(req.DeliveryOption)
	requestID := uuid.New().String()
	ord := &model.Order{
		OrderNo:        "UO" + strings.ToUpper(strings.ReplaceAll(requestID, "-", "")[:12]),
		RequestID:      requestID,
		UserID:         req.UserID,
		Category:       item.Category,
		ProductID:      item.ID,
		Size:           item.Size,
		Color:          item.Color,
		Quantity:       req.Quantity,
		BasePrice:      item.UnitPrice,
		DeliveryFee:    fee,
		TotalPrice:     pricing.Total(item.UnitPrice, req.Quantity, fee),
		DeliveryOption: req.DeliveryOption,
		SchoolName:     schoolName,
		Status:         model.OrderStatusPending,
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Optimistic conflict check: the guarded UPDATE only fires while
		// quantity still covers the request, so two concurrent placements
		// can never jointly oversell.
		res := tx.Model(&model.StockItem{}).
			Where("id = ? AND category = ? AND quantity >= ?", item.ID, item.Category, req.Quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errConflict
		}
		return tx.Create(ord).Error
	})
	if errors.Is(err, errConflict) {
		return nil, errConflict
	}
	if err != nil {
		return nil, apperr.Persistence(err, "order placement failed")
	}
	return ord, nil
}
