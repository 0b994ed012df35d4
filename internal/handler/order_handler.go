package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/orderpipe/internal/domain"
	"github.com/nikolayk812/orderpipe/internal/dto"
)

const (
	serverErrorMessage = "an unexpected error occurred while processing the order"

	maxBodyBytes = 64 << 10
)

type IDGenerator interface {
	Next() string
}

type OrderHandler struct {
	ids IDGenerator
	now func() time.Time
	log *slog.Logger
}

func NewOrderHandler(ids IDGenerator, log *slog.Logger) (*OrderHandler, error) {
	if ids == nil {
		return nil, errors.New("ids is nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &OrderHandler{
		ids: ids,
		now: time.Now,
		log: log,
	}, nil
}

// CreateOrder validates the body, builds a pending order record and returns it.
// Rule violations answer 400 with the offending field, anything else 500.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	in, err := decodeOrderInput(c)
	if err != nil {
		h.serverError(c, fmt.Errorf("decodeOrderInput: %w", err))
		return
	}

	req, err := domain.ValidateOrder(dto.MapOrderInputToDomain(in))
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			h.validationError(c, vErr)
			return
		}
		h.serverError(c, fmt.Errorf("domain.ValidateOrder: %w", err))
		return
	}

	order := domain.NewOrderRecord(req, h.ids.Next(), h.now().UTC())

	h.log.Info("order created",
		"request_id", c.GetString(requestIDKey),
		"id", order.ID,
		"status", order.Status,
		"product_id", order.ProductID,
		"quantity", order.Quantity,
		"total_price", order.TotalPrice.String())

	c.JSON(http.StatusOK, dto.CreateOrderResponse{
		Success: true,
		Data:    dto.MapOrderRecordFromDomain(order),
	})
}

func (h *OrderHandler) validationError(c *gin.Context, vErr *domain.ValidationError) {
	h.log.Warn("order validation failed",
		"request_id", c.GetString(requestIDKey),
		"field", vErr.Field,
		"message", vErr.Message)

	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Success:    false,
		StatusCode: http.StatusBadRequest,
		Message:    vErr.Message,
		ErrorCode:  dto.ErrorCodeValidation,
		Details:    map[string]string{"field": vErr.Field},
	})
}

func (h *OrderHandler) serverError(c *gin.Context, err error) {
	h.log.Error("order create failed",
		"request_id", c.GetString(requestIDKey),
		"status_code", http.StatusInternalServerError,
		"message", serverErrorMessage,
		"err", err)

	writeServerError(c)
}

func writeServerError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
		Success:    false,
		StatusCode: http.StatusInternalServerError,
		Message:    serverErrorMessage,
		ErrorCode:  dto.ErrorCodeServer,
	})
}

func decodeOrderInput(c *gin.Context) (dto.OrderInput, error) {
	var in dto.OrderInput

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	body, err := c.GetRawData()
	if err != nil {
		return in, fmt.Errorf("c.GetRawData: %w", err)
	}

	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return in, errors.New("body is not a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("dec.Decode: %w", err)
	}

	return in, nil
}
