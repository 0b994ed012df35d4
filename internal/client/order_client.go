package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikolayk812/orderpipe/internal/domain"
	"github.com/nikolayk812/orderpipe/internal/dto"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const createOrderPath = "/api/orders/create"

var (
	// ErrNetwork is shown to the user as is; the order may be retried by hand.
	ErrNetwork = errors.New("a network error occurred while requesting the order")
	// ErrRejected matches any *RejectedError.
	ErrRejected = errors.New("order rejected")
)

// RejectedError carries the failure envelope returned by the order endpoint.
type RejectedError struct {
	StatusCode int
	Message    string
	ErrorCode  string
	Field      string
}

func (e *RejectedError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("order rejected [%d %s] %s: %s", e.StatusCode, e.ErrorCode, e.Field, e.Message)
	}
	return fmt.Sprintf("order rejected [%d %s]: %s", e.StatusCode, e.ErrorCode, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// OrderCache receives every order the endpoint accepted.
type OrderCache interface {
	Add(ctx context.Context, order domain.OrderRecord)
}

// Form is what the order form collects before submission.
type Form struct {
	Product  domain.Product
	Quantity int
	Contact  domain.ContactInfo
	Shipping domain.ShippingInfo
}

func (f Form) TotalPrice() decimal.Decimal {
	return f.Product.UnitPrice().Mul(decimal.NewFromInt(int64(f.Quantity)))
}

// Validate lists every field the form gets wrong, in the order the endpoint
// checks them. Empty means the form can be submitted.
func (f Form) Validate() []domain.ValidationError {
	return domain.ValidateOrderAll(buildInput(f))
}

type OrderClient struct {
	baseURL    string
	httpClient *http.Client
	cache      OrderCache
	currency   currency.Unit
	printer    *message.Printer
	log        *slog.Logger
}

type Option func(*OrderClient)

func WithHTTPClient(c *http.Client) Option {
	return func(oc *OrderClient) { oc.httpClient = c }
}

func WithCurrency(unit currency.Unit, lang language.Tag) Option {
	return func(oc *OrderClient) {
		oc.currency = unit
		oc.printer = message.NewPrinter(lang)
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(oc *OrderClient) { oc.log = log }
}

func NewOrderClient(baseURL string, cache OrderCache, opts ...Option) (*OrderClient, error) {
	if baseURL == "" {
		return nil, errors.New("baseURL is empty")
	}

	c := &OrderClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		cache:      cache,
		currency:   currency.KRW,
		printer:    message.NewPrinter(language.Korean),
		log:        slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Submit checks the form locally, sends it once and caches the accepted order.
// A failed local check returns *domain.ValidationError without any request.
func (c *OrderClient) Submit(ctx context.Context, form Form) (domain.OrderRecord, error) {
	var o domain.OrderRecord

	req, err := domain.ValidateOrder(buildInput(form))
	if err != nil {
		return o, fmt.Errorf("domain.ValidateOrder: %w", err)
	}

	body, err := json.Marshal(dto.MapOrderRequestFromDomain(req))
	if err != nil {
		return o, fmt.Errorf("json.Marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createOrderPath, bytes.NewReader(body))
	if err != nil {
		return o, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return o, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return o, fmt.Errorf("%w: io.ReadAll: %w", ErrNetwork, err)
	}

	order, err := decodeCreateOrderResponse(resp.StatusCode, raw)
	if err != nil {
		return o, err
	}

	if c.cache != nil {
		c.cache.Add(ctx, order)
	}

	c.log.Info("order placed", "id", order.ID, "total_price", order.TotalPrice.String())

	return order, nil
}

// Summary renders the line shown above the submit button.
func (c *OrderClient) Summary(form Form) string {
	total := form.TotalPrice().InexactFloat64()
	return c.printer.Sprintf("%s × %d: %v",
		form.Product.Name, form.Quantity, currency.ISO(c.currency.Amount(total)))
}

func buildInput(form Form) domain.OrderInput {
	return domain.OrderInput{
		ProductID:   form.Product.ID,
		ProductName: form.Product.Name,
		UnitPrice:   form.Product.UnitPrice(),
		Quantity:    form.Quantity,
		TotalPrice:  form.TotalPrice(),
		Contact:     &form.Contact,
		Shipping:    &form.Shipping,
	}
}

func decodeCreateOrderResponse(status int, raw []byte) (domain.OrderRecord, error) {
	var o domain.OrderRecord

	// success:false bodies carry statusCode, success:true bodies carry data
	var envelope struct {
		dto.ErrorResponse
		Data *dto.OrderRecord `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return o, fmt.Errorf("%w: json.Unmarshal: %w", ErrNetwork, err)
	}

	if status < 200 || status > 299 || !envelope.Success || envelope.Data == nil {
		message := envelope.Message
		if message == "" {
			message = "an error occurred while processing the order"
		}
		return o, &RejectedError{
			StatusCode: status,
			Message:    message,
			ErrorCode:  envelope.ErrorCode,
			Field:      envelope.Details["field"],
		}
	}

	order, err := dto.MapOrderRecordToDomain(*envelope.Data)
	if err != nil {
		return o, fmt.Errorf("dto.MapOrderRecordToDomain: %w", err)
	}

	return order, nil
}
