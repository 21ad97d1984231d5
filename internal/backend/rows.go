package backend

import (
	"encoding/json"
	"time"

	"solemate/internal/model"

	"github.com/shopspring/decimal"
)

// CartRow is the persisted shape of a cart line. The backend keys cart rows
// by (user, product, size, color); the composite line id exists only locally.
type CartRow struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Review is a product review tied to a delivered order.
type Review struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthUser is the backend auth service's view of the signed-in user.
type AuthUser struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

// UserMetadata is the profile metadata blob; reward coupons live here.
type UserMetadata struct {
	Name        string               `json:"name,omitempty"`
	SpinCoupons []model.RewardCoupon `json:"spin_coupons,omitempty"`
}

// stringList tolerates both a JSON array and a JSON-encoded array embedded in
// a string; old catalogue rows carry the latter.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var direct []string
	if err := json.Unmarshal(data, &direct); err == nil {
		*l = direct
		return nil
	}

	var embedded string
	if err := json.Unmarshal(data, &embedded); err != nil {
		*l = nil
		return nil
	}

	var parsed []string
	if err := json.Unmarshal([]byte(embedded), &parsed); err != nil {
		*l = nil
		return nil
	}
	*l = parsed
	return nil
}

// itemList applies the same tolerance to order item snapshots.
type itemList []model.OrderItem

func (l *itemList) UnmarshalJSON(data []byte) error {
	var direct []model.OrderItem
	if err := json.Unmarshal(data, &direct); err == nil {
		*l = direct
		return nil
	}

	var embedded string
	if err := json.Unmarshal(data, &embedded); err != nil {
		*l = nil
		return nil
	}

	var parsed []model.OrderItem
	if err := json.Unmarshal([]byte(embedded), &parsed); err != nil {
		*l = nil
		return nil
	}
	*l = parsed
	return nil
}

// productRow is the raw catalogue row; column names are lowercase in the
// backend schema.
type productRow struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Tagline       string           `json:"tagline"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalprice"`
	Image         string           `json:"image"`
	Gallery       stringList       `json:"gallery"`
	Category      string           `json:"category"`
	Gender        string           `json:"gender"`
	Sizes         stringList       `json:"sizes"`
	Colors        stringList       `json:"colors"`
	Features      stringList       `json:"features"`
	Rating        float64          `json:"rating"`
	ReviewsCount  int              `json:"reviewscount"`
	InStock       bool             `json:"instock"`
	StockQuantity int              `json:"stockquantity"`
	IsDeleted     bool             `json:"isdeleted"`
	UpdatedAt     time.Time        `json:"updatedat"`
}

func (r productRow) toProduct() model.Product {
	return model.Product{
		ID:            r.ID,
		Name:          r.Name,
		Tagline:       r.Tagline,
		Description:   r.Description,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Image:         model.SanitizeImageURL(r.Image),
		Gallery:       r.Gallery,
		Category:      r.Category,
		Gender:        r.Gender,
		Sizes:         r.Sizes,
		Colors:        r.Colors,
		Features:      r.Features,
		Rating:        r.Rating,
		ReviewsCount:  r.ReviewsCount,
		InStock:       r.InStock,
		StockQuantity: r.StockQuantity,
		IsDeleted:     r.IsDeleted,
		UpdatedAt:     r.UpdatedAt,
	}
}

func productToRow(p model.Product) map[string]any {
	row := map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"tagline":       p.Tagline,
		"category":      p.Category,
		"price":         p.Price,
		"image":         p.Image,
		"description":   p.Description,
		"features":      p.Features,
		"colors":        p.Colors,
		"sizes":         p.Sizes,
		"instock":       p.InStock,
		"rating":        p.Rating,
		"stockquantity": p.StockQuantity,
		"gender":        p.Gender,
		"isdeleted":     p.IsDeleted,
	}
	if p.OriginalPrice != nil {
		row["originalprice"] = *p.OriginalPrice
	}
	return row
}

// orderRow is the raw order row.
type orderRow struct {
	ID              string                `json:"id"`
	UserID          string                `json:"user_id"`
	UserEmail       string                `json:"useremail"`
	Items           itemList              `json:"items"`
	Total           decimal.Decimal       `json:"total"`
	Status          string                `json:"status"`
	ShippingAddress string                `json:"shippingaddress"`
	PaymentMethod   string                `json:"paymentmethod"`
	Timeline        []model.TimelineEvent `json:"timeline"`
	ReturnsInfo     *model.ReturnRequest  `json:"returns_info"`
	Rating          int                   `json:"rating"`
	ReviewText      string                `json:"review_text"`
	IsArchived      bool                  `json:"isarchived"`
	CreatedAt       time.Time             `json:"createdat"`
	UpdatedAt       time.Time             `json:"updatedat"`
}

func (r orderRow) toOrder() model.Order {
	status := model.OrderStatus(r.Status)
	if status == "" {
		status = model.StatusProcessing
	}
	return model.Order{
		ID:              r.ID,
		UserID:          r.UserID,
		UserEmail:       r.UserEmail,
		Items:           r.Items,
		Total:           r.Total,
		Status:          status,
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   r.PaymentMethod,
		Timeline:        r.Timeline,
		ReturnsInfo:     r.ReturnsInfo,
		Rating:          r.Rating,
		ReviewText:      r.ReviewText,
		IsArchived:      r.IsArchived,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// DecodeProductEvent maps a raw product row from the change feed.
func DecodeProductEvent(data []byte) (model.Product, error) {
	var row productRow
	if err := json.Unmarshal(data, &row); err != nil {
		return model.Product{}, err
	}
	return row.toProduct(), nil
}

// DecodeCartEvent maps a raw cart row from the change feed.
func DecodeCartEvent(data []byte) (CartRow, error) {
	var row CartRow
	err := json.Unmarshal(data, &row)
	return row, err
}

// DecodeOrderEvent maps a raw order row from the change feed.
func DecodeOrderEvent(data []byte) (model.Order, error) {
	var row orderRow
	if err := json.Unmarshal(data, &row); err != nil {
		return model.Order{}, err
	}
	return row.toOrder(), nil
}

// DecodeSavedItemEvent maps a raw saved_items row from the change feed.
// The second return is false when the row has no usable product snapshot.
func DecodeSavedItemEvent(data []byte) (model.Product, bool) {
	var row savedItemRow
	if err := json.Unmarshal(data, &row); err != nil {
		return model.Product{}, false
	}
	return row.toProduct()
}

// savedItemRow is the raw saved_items (wishlist) row. The product snapshot is
// stored denormalised in productdata.
type savedItemRow struct {
	ProductID   string          `json:"productid"`
	ProductData json.RawMessage `json:"productdata"`
}

func (r savedItemRow) toProduct() (model.Product, bool) {
	var p model.Product
	if len(r.ProductData) > 0 {
		if err := json.Unmarshal(r.ProductData, &p); err != nil {
			return model.Product{}, false
		}
	}
	p.ID = r.ProductID
	return p, p.ID != ""
}
