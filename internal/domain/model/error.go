package model

import "fmt"

// ErrorKind classifies domain errors so transports can map them to a status.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidInput
	KindInsufficientStock
	KindUnauthenticated
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error codes returned to API clients.
const (
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeCartNotFound       = "CART_NOT_FOUND"
	ErrCodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeCartLocked         = "CART_LOCKED"
	ErrCodeCartAlreadyLocked  = "CART_ALREADY_LOCKED"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// Error is a typed domain error. Two errors match under errors.Is when
// their codes are equal, so callers can compare against the sentinels below
// even when the message or product differs.
type Error struct {
	Kind      ErrorKind
	Code      string
	Message   string
	ProductID int64
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// InvalidInput builds an InvalidInput error with a specific message.
func InvalidInput(message string) *Error {
	return NewError(KindInvalidInput, ErrCodeInvalidInput, message)
}

// NewInsufficientStockError names the product whose stock cannot cover the request.
func NewInsufficientStockError(p Product, requested int64) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Code:      ErrCodeInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for %s: requested %d, available %d", p.Name, requested, p.Stock),
		ProductID: p.ID,
	}
}

var (
	ErrProductNotFound    = NewError(KindNotFound, ErrCodeProductNotFound, "product not found")
	ErrCartNotFound       = NewError(KindNotFound, ErrCodeCartNotFound, "cart not found")
	ErrCartItemNotFound   = NewError(KindNotFound, ErrCodeCartItemNotFound, "cart item not found")
	ErrOrderNotFound      = NewError(KindNotFound, ErrCodeOrderNotFound, "order not found")
	ErrForbidden          = NewError(KindForbidden, ErrCodeForbidden, "forbidden")
	ErrCartLocked         = NewError(KindConflict, ErrCodeCartLocked, "cart is locked for checkout")
	ErrCartAlreadyLocked  = NewError(KindConflict, ErrCodeCartAlreadyLocked, "checkout already in progress for this cart")
	ErrEmptyCart          = NewError(KindInvalidInput, ErrCodeEmptyCart, "cart is empty")
	ErrInvalidQuantity    = NewError(KindInvalidInput, ErrCodeInvalidQuantity, "quantity must be a positive integer")
	ErrInvalidInput       = NewError(KindInvalidInput, ErrCodeInvalidInput, "invalid input")
	ErrInsufficientStock  = NewError(KindInsufficientStock, ErrCodeInsufficientStock, "insufficient stock")
	ErrUnauthenticated    = NewError(KindUnauthenticated, ErrCodeUnauthenticated, "unauthenticated")
	ErrEmailTaken         = NewError(KindConflict, ErrCodeEmailTaken, "email already registered")
	ErrInvalidCredentials = NewError(KindUnauthenticated, ErrCodeInvalidCredentials, "invalid email or password")
)
