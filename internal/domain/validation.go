package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 9999

	// maxExponent bounds the decimal exponent of numeric input; decimal
	// arithmetic rescales both operands to the larger exponent.
	maxExponent = 32
)

var (
	emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[0-9+\-\s]{7,20}$`)

	totalPriceTolerance = decimal.New(1, -4)
)

// ValidationError points at the single request field that broke a rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateOrder checks in against the order rules and stops at the first
// violation, returned as *ValidationError. Rules run in a fixed order:
// product, prices and quantity, contact, shipping.
func ValidateOrder(in OrderInput) (OrderRequest, error) {
	var v orderValidator
	v.run(in)

	if len(v.errs) > 0 {
		return OrderRequest{}, &v.errs[0]
	}

	return OrderRequest{
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		UnitPrice:   v.unitPrice,
		Quantity:    int(v.quantity.IntPart()),
		TotalPrice:  v.totalPrice,
		Contact:     *in.Contact,
		Shipping:    *in.Shipping,
	}, nil
}

// ValidateOrderAll reports every violated field in the order ValidateOrder
// checks them, at most one error per field. Its first element is always the
// error ValidateOrder returns.
func ValidateOrderAll(in OrderInput) []ValidationError {
	var v orderValidator
	v.run(in)
	return v.errs
}

func IsValidPhone(s string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(s))
}

func IsValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

type orderValidator struct {
	errs []ValidationError

	unitPrice  decimal.Decimal
	quantity   decimal.Decimal
	totalPrice decimal.Decimal
}

func (v *orderValidator) fail(field, message string) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: message})
}

func (v *orderValidator) run(in OrderInput) {
	if isBlank(in.ProductID) {
		v.fail("productId", "product id is required")
	}

	if isBlank(in.ProductName) {
		v.fail("productName", "product name is required")
	}

	unitPrice, unitOK := toDecimal(in.UnitPrice)
	if !unitOK || !unitPrice.IsPositive() {
		v.fail("unitPrice", "unit price must be a number greater than 0")
		unitOK = false
	}

	quantity, qtyOK := toDecimal(in.Quantity)
	switch {
	case !qtyOK || !quantity.IsInteger():
		v.fail("quantity", "quantity must be an integer")
		qtyOK = false
	case quantity.LessThan(decimal.NewFromInt(MinQuantity)) || quantity.GreaterThan(decimal.NewFromInt(MaxQuantity)):
		v.fail("quantity", fmt.Sprintf("quantity must be between %d and %d", MinQuantity, MaxQuantity))
		qtyOK = false
	}

	totalPrice, totalOK := toDecimal(in.TotalPrice)
	switch {
	case !totalOK || !totalPrice.IsPositive():
		v.fail("totalPrice", "total price must be a number greater than 0")
	case unitOK && qtyOK && totalPrice.Sub(unitPrice.Mul(quantity)).Abs().GreaterThan(totalPriceTolerance):
		v.fail("totalPrice", "total price does not match unit price and quantity")
	}

	v.unitPrice, v.quantity, v.totalPrice = unitPrice, quantity, totalPrice

	v.contact(in.Contact)
	v.shipping(in.Shipping)
}

func (v *orderValidator) contact(c *ContactInfo) {
	if c == nil {
		v.fail("contact", "contact information is required")
		return
	}

	if isBlank(c.Name) {
		v.fail("contact.name", "name is required")
	}

	switch {
	case isBlank(c.Phone):
		v.fail("contact.phone", "phone number is required")
	case !IsValidPhone(c.Phone):
		v.fail("contact.phone", "phone number format is invalid")
	}

	switch {
	case isBlank(c.Email):
		v.fail("contact.email", "email is required")
	case !IsValidEmail(c.Email):
		v.fail("contact.email", "email format is invalid")
	}
}

func (v *orderValidator) shipping(s *ShippingInfo) {
	if s == nil {
		v.fail("shipping", "shipping information is required")
		return
	}

	if isBlank(s.ReceiverName) {
		v.fail("shipping.receiverName", "receiver name is required")
	}

	switch {
	case isBlank(s.ReceiverPhone):
		v.fail("shipping.receiverPhone", "receiver phone number is required")
	case !IsValidPhone(s.ReceiverPhone):
		v.fail("shipping.receiverPhone", "receiver phone number format is invalid")
	}

	if isBlank(s.Address1) {
		v.fail("shipping.address1", "address is required")
	}

	if isBlank(s.Address2) {
		v.fail("shipping.address2", "detailed address is required")
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// toDecimal accepts only numeric values; numeric strings are rejected, and so
// are numbers whose exponent falls outside ±maxExponent.
func toDecimal(v any) (decimal.Decimal, bool) {
	var d decimal.Decimal

	switch n := v.(type) {
	case json.Number:
		parsed, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(n)
	case int:
		d = decimal.NewFromInt(int64(n))
	case int64:
		d = decimal.NewFromInt(n)
	case decimal.Decimal:
		d = n
	default:
		return decimal.Decimal{}, false
	}

	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Decimal{}, false
	}

	return d, true
}
