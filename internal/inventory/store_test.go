package inventory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"uniform_shop/internal/apperr"
	"uniform_shop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "inventory_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.StockItem{}))
	return db
}

func seedShirt(t *testing.T, db *gorm.DB, qty int64) *model.StockItem {
	t.Helper()
	item := &model.StockItem{
		Category:  model.CategoryShirts,
		Name:      "White Shirt",
		Size:      "M",
		Color:     "white",
		Quality:   "standard",
		Quantity:  qty,
		UnitPrice: 1500,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestFind(t *testing.T) {
	db := newTestDB(t)
	seeded := seedShirt(t, db, 5)
	s := NewStore(db)

	item, err := s.Find(context.Background(), model.CategoryShirts, seeded.ID, "M")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, item.ID)
	assert.Equal(t, int64(5), item.Quantity)
}

func TestFindMissingRow(t *testing.T) {
	db := newTestDB(t)
	s := NewStore(db)

	_, err := s.Find(context.Background(), model.CategoryShirts, 42, "M")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFindWrongPartition(t *testing.T) {
	db := newTestDB(t)
	seeded := seedShirt(t, db, 5)
	s := NewStore(db)

	// Same id, wrong partition: the row must not be visible.
	_, err := s.Find(context.Background(), model.CategoryShoes, seeded.ID, "M")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFindSizeMismatch(t *testing.T) {
	db := newTestDB(t)
	seeded := seedShirt(t, db, 5)
	s := NewStore(db)

	_, err := s.Find(context.Background(), model.CategoryShirts, seeded.ID, "XL")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCheckAvailability(t *testing.T) {
	db := newTestDB(t)
	seeded := seedShirt(t, db, 5)
	s := NewStore(db)
	ctx := context.Background()

	item, err := s.CheckAvailability(ctx, model.CategoryShirts, seeded.ID, "M", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Quantity)

	// Exact fit passes.
	_, err = s.CheckAvailability(ctx, model.CategoryShirts, seeded.ID, "M", 2, 3)
	assert.NoError(t, err)
}

func TestCheckAvailabilityAdditiveExposure(t *testing.T) {
	db := newTestDB(t)
	seeded := seedShirt(t, db, 5)
	s := NewStore(db)

	// 3 already in cart + 3 requested exceeds stock of 5, even though the
	// request alone would fit.
	_, err := s.CheckAvailability(context.Background(), model.CategoryShirts, seeded.ID, "M", 3, 3)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	var e *apperr.Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, int64(5), e.Available)
}

func TestCheckAvailabilityNeverMutates(t *testing.T) {
	db := newTestDB(t)
	seeded := seedShirt(t, db, 5)
	s := NewStore(db)

	_, _ = s.CheckAvailability(context.Background(), model.CategoryShirts, seeded.ID, "M", 2, 0)

	var after model.StockItem
	require.NoError(t, db.First(&after, seeded.ID).Error)
	assert.Equal(t, int64(5), after.Quantity)
}
