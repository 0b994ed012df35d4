package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContactInfo struct {
	Name  string
	Phone string
	Email string
}

type ShippingInfo struct {
	ReceiverName  string
	ReceiverPhone string
	Address1      string
	Address2      string
}

// OrderInput is an order payload as it arrives from a caller, before validation.
// UnitPrice, Quantity and TotalPrice keep whatever JSON type the caller sent,
// numbers arrive as json.Number.
type OrderInput struct {
	ProductID   string
	ProductName string
	UnitPrice   any
	Quantity    any
	TotalPrice  any
	Contact     *ContactInfo
	Shipping    *ShippingInfo
}

// OrderRequest is an order payload that passed ValidateOrder.
type OrderRequest struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	TotalPrice  decimal.Decimal
	Contact     ContactInfo
	Shipping    ShippingInfo
}

type OrderRecord struct {
	OrderRequest

	ID          string
	Status      OrderStatus
	CreatedAt   time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time
}

// NewOrderRecord stamps a validated request as a freshly created pending order.
func NewOrderRecord(req OrderRequest, id string, now time.Time) OrderRecord {
	return OrderRecord{
		OrderRequest: req,
		ID:           id,
		Status:       OrderStatusPending,
		CreatedAt:    now,
	}
}

type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	SalePrice *decimal.Decimal
}

// UnitPrice is the sale price when the product has one.
func (p Product) UnitPrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}
