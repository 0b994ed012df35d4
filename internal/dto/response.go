package dto

const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeServer     = "SERVER_ERROR"
)

type CreateOrderResponse struct {
	Success bool        `json:"success"`
	Data    OrderRecord `json:"data"`
}

// ErrorResponse is the failure envelope. Details carries the offending
// field for validation errors and is null otherwise.
type ErrorResponse struct {
	Success    bool              `json:"success"`
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	ErrorCode  string            `json:"errorCode,omitempty"`
	Details    map[string]string `json:"details"`
}
