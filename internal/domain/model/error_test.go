package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NewInsufficientStockError(Product{ID: 7, Name: "Espresso", Stock: 3}, 5)

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrCartLocked))
	assert.Equal(t, int64(7), err.ProductID)
	assert.Contains(t, err.Error(), "Espresso")
	assert.Contains(t, err.Error(), "requested 5, available 3")
}

func TestError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", ErrCartAlreadyLocked)

	assert.True(t, errors.Is(wrapped, ErrCartAlreadyLocked))

	var de *Error
	require.True(t, errors.As(wrapped, &de))
	assert.Equal(t, KindConflict, de.Kind)
}

func TestInvalidInput_MatchesSentinel(t *testing.T) {
	err := InvalidInput("name must be between 3 and 100 characters")

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "name must be between 3 and 100 characters", err.Error())
}

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		expected string
	}{
		{KindNotFound, "not_found"},
		{KindForbidden, "forbidden"},
		{KindConflict, "conflict"},
		{KindInvalidInput, "invalid_input"},
		{KindInsufficientStock, "insufficient_stock"},
		{KindUnauthenticated, "unauthenticated"},
		{KindInternal, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestCartItem_LineTotal(t *testing.T) {
	item := CartItem{Quantity: 3, UnitPrice: 500}
	assert.Equal(t, int64(1500), item.LineTotal())
}
