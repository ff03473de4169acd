package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes follow the "<MODULE>_<NNN>" convention.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Gifting Intelligence Error Codes
const (
	ErrCodeConnectionNotFound   ErrorCode = "GIFT_001"
	ErrCodeMalformedDate        ErrorCode = "GIFT_002"
	ErrCodeUpstreamFetchFailure ErrorCode = "GIFT_003"
	ErrCodeScanCancelled        ErrorCode = "GIFT_004"
	ErrCodeProfileNotFound      ErrorCode = "GIFT_005"
	ErrCodeInvalidOccasion      ErrorCode = "GIFT_006"
)

// Messaging Error Codes
const (
	ErrCodeMessagePublishFailed ErrorCode = "MSG_001"
	ErrCodeMessageDecodeFailed  ErrorCode = "MSG_002"
)

// Short aliases used at call sites.
const (
	CodeInternal           = ErrCodeInternal
	CodeInvalidParam       = ErrCodeBadRequest
	CodeNotFound           = ErrCodeNotFound
	CodeConflict           = ErrCodeConflict
	CodeServiceUnavailable = ErrCodeServiceUnavailable
	CodeTimeout            = ErrCodeTimeout
	CodeValidation         = ErrCodeValidation
	CodeSerialization      = ErrCodeSerialization
	CodeDatabaseError      = ErrCodeDatabaseError
	CodeCacheError         = ErrCodeCacheError
	CodeNotImplemented     = ErrCodeNotImplemented
	CodeOK                 = ErrorCode("OK")
	CodeUnknown            = ErrorCode("UNKNOWN")

	CodeConnectionNotFound   = ErrCodeConnectionNotFound
	CodeMalformedDate        = ErrCodeMalformedDate
	CodeUpstreamFetchFailure = ErrCodeUpstreamFetchFailure
	CodeScanCancelled        = ErrCodeScanCancelled
	CodeProfileNotFound      = ErrCodeProfileNotFound
	CodeInvalidOccasion      = ErrCodeInvalidOccasion

	CodeMessagePublishFailed = ErrCodeMessagePublishFailed
	CodeMessageDecodeFailed  = ErrCodeMessageDecodeFailed
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusForbidden,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeConnectionNotFound:   http.StatusNotFound,
	ErrCodeMalformedDate:        http.StatusUnprocessableEntity,
	ErrCodeUpstreamFetchFailure: http.StatusBadGateway,
	ErrCodeScanCancelled:        http.StatusServiceUnavailable,
	ErrCodeProfileNotFound:      http.StatusNotFound,
	ErrCodeInvalidOccasion:      http.StatusBadRequest,

	ErrCodeMessagePublishFailed: http.StatusBadGateway,
	ErrCodeMessageDecodeFailed:  http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeConnectionNotFound:   "connection not found",
	ErrCodeMalformedDate:        "malformed special date",
	ErrCodeUpstreamFetchFailure: "upstream data fetch failed",
	ErrCodeScanCancelled:        "opportunity scan cancelled",
	ErrCodeProfileNotFound:      "profile not found",
	ErrCodeInvalidOccasion:      "invalid occasion",

	ErrCodeMessagePublishFailed: "failed to publish message",
	ErrCodeMessageDecodeFailed:  "failed to decode message",
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

//Personal.AI order the ending
