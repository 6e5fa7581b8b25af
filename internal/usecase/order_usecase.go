package usecase

import (
	"context"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// OrderUsecase is the read side of placed orders.
type OrderUsecase struct {
	orders repo.OrderRepository
}

func NewOrderUsecase(orders repo.OrderRepository) *OrderUsecase {
	return &OrderUsecase{orders: orders}
}

type OrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, model.ErrUnauthenticated
	}
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return OrderListOutput{}, err
	}

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, fmt.Errorf("list orders: %w", err)
	}

	return OrderListOutput{
		Items: orders,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, orderID int64) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, model.ErrUnauthenticated
	}
	if orderID <= 0 {
		return model.Order{}, model.InvalidInput("invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return model.Order{}, notFoundAs(err, model.ErrOrderNotFound, "find order")
	}
	// someone else's order does not exist as far as this user is concerned
	if o.UserID != userID {
		return model.Order{}, model.ErrOrderNotFound
	}
	return o, nil
}
