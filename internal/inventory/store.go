// Package inventory reads live stock rows and validates requested
// quantities against them. Strictly read-only: the only stock writer is
// the order placement engine.
package inventory

import (
	"context"
	"errors"

	"uniform_shop/internal/apperr"
	"uniform_shop/internal/model"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindByID fetches a stock row by partition and id.
func (s *Store) FindByID(ctx context.Context, category model.Category, productID uint) (*model.StockItem, error) {
	var item model.StockItem
	err := s.db.WithContext(ctx).
		Where("category = ? AND id = ?", category, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("no stock row for %s product %d", category, productID)
	}
	if err != nil {
		return nil, apperr.Persistence(err, "stock lookup failed")
	}
	return &item, nil
}

// Find fetches a stock row and requires the size to match; a size mismatch
// is indistinguishable from a missing row.
func (s *Store) Find(ctx context.Context, category model.Category, productID uint, size string) (*model.StockItem, error) {
	item, err := s.FindByID(ctx, category, productID)
	if err != nil {
		return nil, err
	}
	if item.Size != size {
		return nil, apperr.NotFoundf("no stock row for %s product %d size %s", category, productID, size)
	}
	return item, nil
}

// CheckAvailability verifies that requested + alreadyInCart fits within the
// live quantity-on-hand. The cart exposure is additive: a session holding 3
// units and requesting 2 more is checked against 5, so repeated small adds
// cannot creep past stock. Advisory only; the placement engine re-checks
// authoritatively at commit time.
func (s *Store) CheckAvailability(ctx context.Context, category model.Category, productID uint, size string, requested, alreadyInCart int) (*model.StockItem, error) {
	item, err := s.Find(ctx, category, productID, size)
	if err != nil {
		return nil, err
	}
	if int64(requested)+int64(alreadyInCart) > item.Quantity {
		return nil, apperr.InsufficientStock(item.Quantity)
	}
	return item, nil
}
