package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validationf("quantity is required")))
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("school %d not found", 7)))
	assert.Equal(t, KindInsufficientStock, KindOf(InsufficientStock(3)))
	assert.Equal(t, KindPersistence, KindOf(Persistence(errors.New("disk full"), "order placement failed")))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("placing order: %w", InsufficientStock(5))
	assert.Equal(t, KindInsufficientStock, KindOf(wrapped))

	var e *Error
	assert.True(t, errors.As(wrapped, &e))
	assert.Equal(t, int64(5), e.Available)
}

func TestPersistenceUnwrap(t *testing.T) {
	cause := errors.New("database is locked")
	err := Persistence(cause, "order placement failed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "order placement failed: database is locked", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "insufficient_stock", KindInsufficientStock.String())
	assert.Equal(t, "persistence", KindPersistence.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
