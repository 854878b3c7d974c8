package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeMessagingError     ErrorCode = "COMMON_012"
)

// Catalog module error codes.
const (
	ErrCodeCatalogLoadFailed    ErrorCode = "CATALOG_001"
	ErrCodeCatalogColumnMissing ErrorCode = "CATALOG_002"
	ErrCodeCatalogRowInvalid    ErrorCode = "CATALOG_003"
	ErrCodeCatalogEmpty         ErrorCode = "CATALOG_004"
)

// Intake (extraction pipeline) error codes.
const (
	ErrCodeIntakeEmptyBody     ErrorCode = "INTAKE_001"
	ErrCodeIntakeBodyTooLarge  ErrorCode = "INTAKE_002"
	ErrCodeIntakeUploadInvalid ErrorCode = "INTAKE_003"
)

// Order module error codes.
const (
	ErrCodeOrderNotFound      ErrorCode = "ORDER_001"
	ErrCodeOrderAlreadyExists ErrorCode = "ORDER_002"
	ErrCodeOrderStateInvalid  ErrorCode = "ORDER_003"
)

// Aliases used by generic layers (router, repositories).
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,

	ErrCodeCatalogLoadFailed:    http.StatusInternalServerError,
	ErrCodeCatalogColumnMissing: http.StatusInternalServerError,
	ErrCodeCatalogRowInvalid:    http.StatusInternalServerError,
	ErrCodeCatalogEmpty:         http.StatusInternalServerError,

	ErrCodeIntakeEmptyBody:     http.StatusBadRequest,
	ErrCodeIntakeBodyTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeIntakeUploadInvalid: http.StatusBadRequest,

	ErrCodeOrderNotFound:      http.StatusNotFound,
	ErrCodeOrderAlreadyExists: http.StatusConflict,
	ErrCodeOrderStateInvalid:  http.StatusConflict,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessagingError:     "message broker error",

	ErrCodeCatalogLoadFailed:    "failed to load product catalog",
	ErrCodeCatalogColumnMissing: "catalog source is missing a required column",
	ErrCodeCatalogRowInvalid:    "catalog row could not be parsed",
	ErrCodeCatalogEmpty:         "catalog contains no products",

	ErrCodeIntakeEmptyBody:     "email body is empty",
	ErrCodeIntakeBodyTooLarge:  "email body exceeds maximum size",
	ErrCodeIntakeUploadInvalid: "uploaded file could not be read",

	ErrCodeOrderNotFound:      "order not found",
	ErrCodeOrderAlreadyExists: "order already exists",
	ErrCodeOrderStateInvalid:  "order is not in a state that allows this operation",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
