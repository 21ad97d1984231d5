package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the lifecycle states an order moves through.
// Transitions after placement are server-driven; the store only requests them.
type OrderStatus string

const (
	StatusProcessing      OrderStatus = "Processing"
	StatusShipped         OrderStatus = "Shipped"
	StatusDelivered       OrderStatus = "Delivered"
	StatusCancelled       OrderStatus = "Cancelled"
	StatusReturnRequested OrderStatus = "Return Requested"
	StatusRefunded        OrderStatus = "Refunded"
)

// OrderItem is a snapshot of a cart line at checkout time. Price and name are
// copied rather than referencing the live product.
type OrderItem struct {
	ProductID     string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image,omitempty"`
	SelectedSize  string          `json:"selectedSize"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	Quantity      int             `json:"quantity"`
}

// TimelineEvent is one entry in an order's status history.
type TimelineEvent struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

// Order represents a placed order. Orders are created at checkout and never
// deleted by the client; PurgeOrder only drops the local copy.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id,omitempty"`
	UserEmail       string          `json:"useremail,omitempty"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Timeline        []TimelineEvent `json:"timeline,omitempty"`
	ReturnsInfo     *ReturnRequest  `json:"returns_info,omitempty"`
	Rating          int             `json:"rating,omitempty"`
	ReviewText      string          `json:"review_text,omitempty"`
	IsArchived      bool            `json:"isArchived"`
	CreatedAt       time.Time       `json:"createdat"`
	UpdatedAt       time.Time       `json:"updatedat,omitempty"`
}

// ReturnMethod enumerates how a customer wants a return settled.
type ReturnMethod string

const (
	ReturnRefund   ReturnMethod = "refund"
	ReturnExchange ReturnMethod = "exchange"
	ReturnCredit   ReturnMethod = "credit"
)

// ReturnRequest captures a customer-initiated return for an order.
type ReturnRequest struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"orderId"`
	ItemIDs      []string        `json:"items"`
	Reason       string          `json:"reason"`
	Method       ReturnMethod    `json:"method"`
	Status       string          `json:"status"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
	RequestedAt  time.Time       `json:"requestedAt"`
}

// Address is the structured shipping address collected at checkout. It is
// flattened to a single string before the order placement call.
type Address struct {
	FullName string `json:"fullName"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
}

// Flatten serialises the address into the single-line form the backend stores.
func (a Address) Flatten() string {
	return a.FullName + ", " + a.Street + ", " + a.City + ", " + a.State + " " + a.ZipCode
}
