package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderUsecase_ListMyOrders(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := usecase.NewOrderUsecase(orders)

	orders.On("ListByUserID", mock.Anything, int64(1), 2, 5).Return([]model.Order{{ID: 9, UserID: 1}}, int64(6), nil)

	out, err := uc.ListMyOrders(context.Background(), 1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), out.Total)
	assert.Len(t, out.Items, 1)
	orders.AssertExpectations(t)

	_, err = uc.ListMyOrders(context.Background(), 1, 1, 500)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestOrderUsecase_GetMyOrder(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := usecase.NewOrderUsecase(orders)

	orders.On("FindByID", mock.Anything, int64(9)).Return(model.Order{ID: 9, UserID: 1}, nil)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{}, repo.ErrNotFound)

	o, err := uc.GetMyOrder(context.Background(), 1, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), o.ID)

	_, err = uc.GetMyOrder(context.Background(), 2, 9)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)

	_, err = uc.GetMyOrder(context.Background(), 1, 10)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}
