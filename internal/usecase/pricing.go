package usecase

import (
	"math"

	"storefront/internal/domain/model"
)

// ShippingPolicy is the flat threshold rule: free strictly above
// FreeThreshold, FlatFee otherwise. Amounts are minor units.
type ShippingPolicy struct {
	FlatFee       int64
	FreeThreshold int64
}

// Quote returns the shipping charge for a subtotal. An empty cart ships nothing.
func (p ShippingPolicy) Quote(subtotal int64) int64 {
	if subtotal <= 0 || subtotal > p.FreeThreshold {
		return 0
	}
	return p.FlatFee
}

// Remaining is how much more the customer must add for free shipping.
func (p ShippingPolicy) Remaining(subtotal int64) int64 {
	if subtotal > p.FreeThreshold {
		return 0
	}
	return p.FreeThreshold - subtotal + 1
}

type CartView struct {
	ID                    int64            `json:"id"`
	Items                 []model.CartItem `json:"items"`
	ItemCount             int64            `json:"item_count"`
	Subtotal              int64            `json:"subtotal"`
	Shipping              int64            `json:"shipping"`
	Total                 int64            `json:"total"`
	FreeShippingRemaining int64            `json:"free_shipping_remaining"`
	Locked                bool             `json:"locked"`
}

// Subtotal sums unitPrice x quantity over the lines.
func Subtotal(items []model.CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.LineTotal()
	}
	return sum
}

// orderTotal is Subtotal for amounts that get persisted: it refuses to wrap.
func orderTotal(items []model.CartItem) (int64, error) {
	var sum int64
	for _, it := range items {
		if it.Quantity < 0 || it.UnitPrice < 0 {
			return 0, model.InvalidInput("negative cart line")
		}
		if it.Quantity > 0 && it.UnitPrice > math.MaxInt64/it.Quantity {
			return 0, model.InvalidInput("order total is too large")
		}
		line := it.LineTotal()
		if sum > math.MaxInt64-line {
			return 0, model.InvalidInput("order total is too large")
		}
		sum += line
	}
	return sum, nil
}

func buildCartView(cart model.Cart, items []model.CartItem, policy ShippingPolicy) CartView {
	if items == nil {
		items = []model.CartItem{}
	}
	var count int64
	for _, it := range items {
		count += it.Quantity
	}
	subtotal := Subtotal(items)
	shipping := policy.Quote(subtotal)

	return CartView{
		ID:                    cart.ID,
		Items:                 items,
		ItemCount:             count,
		Subtotal:              subtotal,
		Shipping:              shipping,
		Total:                 subtotal + shipping,
		FreeShippingRemaining: policy.Remaining(subtotal),
		Locked:                cart.IsLocked(),
	}
}
