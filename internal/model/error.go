package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeLoginRequired     = "LOGIN_REQUIRED"
	ErrCodeInvalidCoupon     = "INVALID_COUPON"
	ErrCodeCouponExpired     = "COUPON_EXPIRED"
	ErrCodeCouponLimit       = "COUPON_LIMIT_REACHED"
	ErrCodeMinOrderValue     = "MIN_ORDER_VALUE"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeLineNotFound      = "CART_LINE_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeInsufficientFunds = "INSUFFICIENT_WALLET"
	ErrCodeOrderFailed       = "ORDER_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrLoginRequired     = NewDomainError(ErrCodeLoginRequired, "Please login to continue")
	ErrInvalidCoupon     = NewDomainError(ErrCodeInvalidCoupon, "Invalid or expired coupon code")
	ErrCouponExpired     = NewDomainError(ErrCodeCouponExpired, "This coupon has expired")
	ErrCouponLimit       = NewDomainError(ErrCodeCouponLimit, "Coupon usage limit reached")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrLineNotFound      = NewDomainError(ErrCodeLineNotFound, "Cart line not found")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Sorry, one or more items are out of stock")
	ErrInsufficientFunds = NewDomainError(ErrCodeInsufficientFunds, "Insufficient wallet balance")
)
