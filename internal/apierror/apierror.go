// Package apierror is the JSON error envelope for every 4xx/5xx response.
// Firestore errors and WooCommerce payloads never reach clients verbatim.
package apierror

// Machine-readable codes. The frontend switches on these; Detail is for humans.
const (
	CodeNotFound          = "not_found"
	CodeInvalidInput      = "invalid_input"
	CodeValidation        = "validation_failed"
	CodeConflict          = "conflict"
	CodeInsufficientStock = "insufficient_stock"
	CodeInvalidTransition = "invalid_transition"
	CodeWooNotLinked      = "woo_not_linked"
	CodeSyncInProgress    = "sync_in_progress"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeRateLimited       = "rate_limited"
	CodeUnavailable       = "unavailable"
	CodeUpstream          = "upstream_error"
	CodeInternal          = "internal"
)

type APIError struct {
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail"`
}

func WithCode(code, msg string) *APIError {
	return &APIError{Code: code, Detail: msg}
}

// ValidationError carries one entry per failing field, keyed by JSON name.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Detail: "Validation failed", Fields: fields}
}
