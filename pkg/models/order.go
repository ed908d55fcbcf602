package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusFailed PaymentStatus = "failed"
)

// Order is a buyer purchase as reported by the commerce API.
type Order struct {
	ID            string          `json:"id"`
	BuyerID       string          `json:"buyerId"`
	Items         []CartItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	PurchasedAt   time.Time       `json:"purchasedAt"`
}

type CartItemType string

const (
	CartItemProduct CartItemType = "product"
	CartItemService CartItemType = "service"
)

var (
	ErrUnknownCartItemType = errors.New("unknown cart item type")
	ErrCartItemLineMissing = errors.New("cart item line missing for type")
)

// CartItem is an order line: either a product purchase or a fabrication
// service request. Exactly one of Product or Service is set, matching Type.
type CartItem struct {
	Type     CartItemType    `json:"type"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Product  *ProductLine    `json:"product,omitempty"`
	Service  *ServiceLine    `json:"service,omitempty"`
}

// ProductLine is the product half of a CartItem.
type ProductLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Reference string          `json:"reference,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ServiceLine is the fabrication-service half of a CartItem.
type ServiceLine struct {
	Kind         ServiceKind        `json:"kind"`
	TemplateCode string             `json:"templateCode"`
	Material     string             `json:"material,omitempty"`
	Dimensions   map[string]float64 `json:"dimensions,omitempty"`
	Price        decimal.Decimal    `json:"price"`
}

// Label returns the display name of the line regardless of its type.
func (ci CartItem) Label() string {
	switch {
	case ci.Type == CartItemProduct && ci.Product != nil:
		return ci.Product.Name
	case ci.Type == CartItemService && ci.Service != nil:
		return fmt.Sprintf("%s %s", ci.Service.Kind, ci.Service.TemplateCode)
	}
	return ""
}

// UnmarshalJSON resolves the union once at ingestion. Older orders wrap the
// line under "cartId"; both shapes decode to the same value.
func (ci *CartItem) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		CartID json.RawMessage `json:"cartId"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if len(wrapped.CartID) > 0 && bytes.HasPrefix(bytes.TrimSpace(wrapped.CartID), []byte("{")) {
		data = wrapped.CartID
	}

	type plain CartItem
	var item plain
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}

	switch item.Type {
	case CartItemProduct:
		if item.Product == nil {
			return fmt.Errorf("%w %q", ErrCartItemLineMissing, item.Type)
		}
		item.Service = nil
	case CartItemService:
		if item.Service == nil {
			return fmt.Errorf("%w %q", ErrCartItemLineMissing, item.Type)
		}
		item.Product = nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCartItemType, item.Type)
	}

	*ci = CartItem(item)
	return nil
}

// Payment is a charge attempt against an order.
type Payment struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    PaymentStatus   `json:"status"`
	Method    string          `json:"method"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ShippingPolicy is identified by its method name.
type ShippingPolicy struct {
	Method        string           `json:"method" validate:"required"`
	Label         string           `json:"label" validate:"required"`
	Price         decimal.Decimal  `json:"price"`
	FreeAbove     *decimal.Decimal `json:"freeAbove,omitempty"`
	EstimatedDays int              `json:"estimatedDays" validate:"gte=0"`
}
