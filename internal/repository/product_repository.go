package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// Catalog query. Page and Limit are validated by the caller.
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// Locks the rows FOR UPDATE in id order. Missing ids are simply absent from the result.
	FindByIDsForUpdate(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) (model.Product, error)
	SoftDelete(ctx context.Context, id int64) error
}
