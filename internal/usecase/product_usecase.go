package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
)

// ProductCache is a read-through cache for product detail. Implementations
// report a miss with ok=false and a nil error.
type ProductCache interface {
	Get(ctx context.Context, id int64) (p model.Product, ok bool, err error)
	Set(ctx context.Context, p model.Product) error
	Invalidate(ctx context.Context, ids ...int64) error
}

// NoopProductCache always misses.
type NoopProductCache struct{}

func (NoopProductCache) Get(context.Context, int64) (model.Product, bool, error) {
	return model.Product{}, false, nil
}
func (NoopProductCache) Set(context.Context, model.Product) error   { return nil }
func (NoopProductCache) Invalidate(context.Context, ...int64) error { return nil }

type ProductUsecase struct {
	products repo.ProductRepository
	tx       repo.TransactionManager
	cache    ProductCache
	log      zerolog.Logger
}

// DI
func NewProductUsecase(
	products repo.ProductRepository,
	tx repo.TransactionManager,
	cache ProductCache,
	logger zerolog.Logger,
) *ProductUsecase {
	if cache == nil {
		cache = NoopProductCache{}
	}
	return &ProductUsecase{
		products: products,
		tx:       tx,
		cache:    cache,
		log:      logger.With().Str("usecase", "product").Logger(),
	}
}

// Query for GET /products
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	page, limit, err := normalizePage(in.Page, in.Limit)
	if err != nil {
		return ProductListOutput{}, err
	}
	if utf8.RuneCountInString(in.Q) > 100 {
		return ProductListOutput{}, model.InvalidInput("q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, model.InvalidInput("min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, model.InvalidInput("max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, model.InvalidInput("min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc", "name":
	default:
		return ProductListOutput{}, model.InvalidInput("invalid sort")
	}

	items, total, err := u.products.List(ctx, repo.ProductListQuery{
		Page:     page,
		Limit:    limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, fmt.Errorf("list products: %w", err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// GetProduct serves from the cache when it can. Cache failures fall back to
// the database and are only logged.
func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, model.InvalidInput("invalid product id")
	}

	p, ok, err := u.cache.Get(ctx, productID)
	if err != nil {
		u.log.Warn().Err(err).Int64("product_id", productID).Msg("product cache read failed")
	}
	if ok {
		return p, nil
	}

	p, err = u.products.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, notFoundAs(err, model.ErrProductNotFound, "find product")
	}

	if err := u.cache.Set(ctx, p); err != nil {
		u.log.Warn().Err(err).Int64("product_id", productID).Msg("product cache write failed")
	}
	return p, nil
}

// MaxProductPrice bounds a price in minor units, which keeps every
// price x quantity line well inside int64.
const MaxProductPrice int64 = 1_000_000_000_000

// ProductDetails are the catalog fields an admin may edit. Stock is not one of
// them: after creation it moves only through AdjustStock and checkout.
type ProductDetails struct {
	Name        string
	Description string
	Price       int64
	Category    string
	ImageURL    string
}

func (d ProductDetails) validate() error {
	name := strings.TrimSpace(d.Name)
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		return model.InvalidInput("name must be between 3 and 100 characters")
	}
	if utf8.RuneCountInString(d.Description) > 1000 {
		return model.InvalidInput("description must be at most 1000 characters")
	}
	if d.Price < 0 || d.Price > MaxProductPrice {
		return model.InvalidInput(fmt.Sprintf("price must be between 0 and %d", MaxProductPrice))
	}
	if utf8.RuneCountInString(d.Category) > 100 {
		return model.InvalidInput("category must be at most 100 characters")
	}
	if len(d.ImageURL) > 1000 {
		return model.InvalidInput("image_url must be at most 1000 characters")
	}
	return nil
}

func (d ProductDetails) toModel(id int64) model.Product {
	return model.Product{
		ID:          id,
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		Price:       d.Price,
		Category:    strings.TrimSpace(d.Category),
		ImageURL:    strings.TrimSpace(d.ImageURL),
	}
}

// ProductInput creates a product with its opening stock.
type ProductInput struct {
	Name        string
	Description string
	Price       int64
	Stock       int64
	Category    string
	ImageURL    string
}

func (in ProductInput) details() ProductDetails {
	return ProductDetails{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
	}
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, adminUserID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, model.ErrUnauthenticated
	}
	if err := in.details().validate(); err != nil {
		return model.Product{}, err
	}
	if in.Stock < 0 {
		return model.Product{}, model.InvalidInput("stock must be >= 0")
	}

	p := in.details().toModel(0)
	p.Stock = in.Stock
	p, err := u.products.Create(ctx, p)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	u.log.Info().Int64("admin_user_id", adminUserID).Int64("product_id", p.ID).Msg("product created")
	return p, nil
}

// UpdateProduct rewrites the catalog fields. Stock is left untouched so an
// edit can never undo a sale that committed while the form was open.
func (u *ProductUsecase) UpdateProduct(ctx context.Context, adminUserID int64, productID int64, in ProductDetails) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, model.ErrUnauthenticated
	}
	if productID <= 0 {
		return model.Product{}, model.InvalidInput("invalid product id")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	p, err := u.products.Update(ctx, in.toModel(productID))
	if err != nil {
		return model.Product{}, notFoundAs(err, model.ErrProductNotFound, "update product")
	}
	u.invalidate(ctx, productID)

	u.log.Info().Int64("admin_user_id", adminUserID).Int64("product_id", productID).Msg("product updated")
	return p, nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return model.ErrUnauthenticated
	}
	if productID <= 0 {
		return model.InvalidInput("invalid product id")
	}

	if err := u.products.SoftDelete(ctx, productID); err != nil {
		return notFoundAs(err, model.ErrProductNotFound, "delete product")
	}
	u.invalidate(ctx, productID)

	u.log.Info().Int64("admin_user_id", adminUserID).Int64("product_id", productID).Msg("product deleted")
	return nil
}

// AdjustStock sets the stock to newStock and records the delta, in one transaction.
func (u *ProductUsecase) AdjustStock(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) (model.InventoryAdjustment, error) {
	if adminUserID <= 0 {
		return model.InventoryAdjustment{}, model.ErrUnauthenticated
	}
	if productID <= 0 {
		return model.InventoryAdjustment{}, model.InvalidInput("invalid product id")
	}
	if newStock < 0 {
		return model.InventoryAdjustment{}, model.InvalidInput("stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.InventoryAdjustment{}, model.InvalidInput("reason required")
	}
	if utf8.RuneCountInString(reason) > 255 {
		return model.InventoryAdjustment{}, model.InvalidInput("reason must be at most 255 characters")
	}

	var adj model.InventoryAdjustment
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// stock before, read under the same row lock checkout uses
		locked, err := r.Products().FindByIDsForUpdate(ctx, []int64{productID})
		if err != nil {
			return fmt.Errorf("lock product: %w", err)
		}
		if len(locked) == 0 {
			return model.ErrProductNotFound
		}
		before := locked[0].Stock

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			return notFoundAs(err, model.ErrProductNotFound, "set stock")
		}

		adj = model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       newStock - before,
			Reason:      reason,
		}
		if err := r.Inventory().CreateAdjustment(ctx, adj); err != nil {
			return fmt.Errorf("create adjustment: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.InventoryAdjustment{}, err
	}
	u.invalidate(ctx, productID)

	u.log.Info().
		Int64("admin_user_id", adminUserID).
		Int64("product_id", productID).
		Int64("delta", adj.Delta).
		Int64("stock", newStock).
		Msg("stock adjusted")
	return adj, nil
}

func (u *ProductUsecase) invalidate(ctx context.Context, ids ...int64) {
	if err := u.cache.Invalidate(ctx, ids...); err != nil {
		u.log.Warn().Err(err).Ints64("product_ids", ids).Msg("product cache invalidation failed")
	}
}
