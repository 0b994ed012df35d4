package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikolayk812/orderpipe/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type ContactInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type ShippingInfo struct {
	ReceiverName  string `json:"receiverName"`
	ReceiverPhone string `json:"receiverPhone"`
	Address1      string `json:"address1"`
	Address2      string `json:"address2"`
}

// OrderInput mirrors the create order body. Numeric fields stay untyped so
// validation can tell a number from a string; decode with UseNumber.
type OrderInput struct {
	ProductID   string        `json:"productId"`
	ProductName string        `json:"productName"`
	UnitPrice   any           `json:"unitPrice"`
	Quantity    any           `json:"quantity"`
	TotalPrice  any           `json:"totalPrice"`
	Contact     *ContactInfo  `json:"contact"`
	Shipping    *ShippingInfo `json:"shipping"`
}

type OrderRequest struct {
	ProductID   string       `json:"productId"`
	ProductName string       `json:"productName"`
	UnitPrice   json.Number  `json:"unitPrice"`
	Quantity    int          `json:"quantity"`
	TotalPrice  json.Number  `json:"totalPrice"`
	Contact     ContactInfo  `json:"contact"`
	Shipping    ShippingInfo `json:"shipping"`
}

type OrderRecord struct {
	OrderRequest

	ID          string     `json:"id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	PaidAt      *time.Time `json:"paidAt"`
	CancelledAt *time.Time `json:"cancelledAt"`
}

func MapOrderInputToDomain(in OrderInput) domain.OrderInput {
	out := domain.OrderInput{
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		UnitPrice:   in.UnitPrice,
		Quantity:    in.Quantity,
		TotalPrice:  in.TotalPrice,
	}

	if in.Contact != nil {
		out.Contact = lo.ToPtr(domain.ContactInfo(*in.Contact))
	}

	if in.Shipping != nil {
		out.Shipping = lo.ToPtr(domain.ShippingInfo(*in.Shipping))
	}

	return out
}

func MapOrderRequestFromDomain(req domain.OrderRequest) OrderRequest {
	return OrderRequest{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		UnitPrice:   json.Number(req.UnitPrice.String()),
		Quantity:    req.Quantity,
		TotalPrice:  json.Number(req.TotalPrice.String()),
		Contact:     ContactInfo(req.Contact),
		Shipping:    ShippingInfo(req.Shipping),
	}
}

func MapOrderRecordFromDomain(o domain.OrderRecord) OrderRecord {
	return OrderRecord{
		OrderRequest: MapOrderRequestFromDomain(o.OrderRequest),
		ID:           o.ID,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		PaidAt:       o.PaidAt,
		CancelledAt:  o.CancelledAt,
	}
}

func MapOrderRecordToDomain(o OrderRecord) (domain.OrderRecord, error) {
	var r domain.OrderRecord

	unitPrice, err := decimal.NewFromString(o.UnitPrice.String())
	if err != nil {
		return r, fmt.Errorf("unitPrice[%s] is not valid: %w", o.UnitPrice, err)
	}

	totalPrice, err := decimal.NewFromString(o.TotalPrice.String())
	if err != nil {
		return r, fmt.Errorf("totalPrice[%s] is not valid: %w", o.TotalPrice, err)
	}

	status, err := domain.ToOrderStatus(o.Status)
	if err != nil {
		return r, fmt.Errorf("domain.ToOrderStatus[%s]: %w", o.Status, err)
	}

	return domain.OrderRecord{
		OrderRequest: domain.OrderRequest{
			ProductID:   o.ProductID,
			ProductName: o.ProductName,
			UnitPrice:   unitPrice,
			Quantity:    o.Quantity,
			TotalPrice:  totalPrice,
			Contact:     domain.ContactInfo(o.Contact),
			Shipping:    domain.ShippingInfo(o.Shipping),
		},
		ID:          o.ID,
		Status:      status,
		CreatedAt:   o.CreatedAt,
		PaidAt:      o.PaidAt,
		CancelledAt: o.CancelledAt,
	}, nil
}
