package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes are prefixed by the module that owns them (COMMON, PROFILE, EVAL,
// SCORE, SEARCH, GRAPH) so that logs and metrics can be grouped per module.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Sentinel codes used by the inspection helpers.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Common error codes shared by every module.
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
	ErrCodeMessagingError     ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_015"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Profile module error codes.
const (
	ErrCodeProfileNotFound      ErrorCode = "PROFILE_001"
	ErrCodeProfileAlreadyExists ErrorCode = "PROFILE_002"
	ErrCodeProfileInvalid       ErrorCode = "PROFILE_003"
)

// Evaluation module error codes.
const (
	ErrCodeEvaluationNotFound     ErrorCode = "EVAL_001"
	ErrCodeEvaluationPersistError ErrorCode = "EVAL_002"
	ErrCodeEvaluationExportError  ErrorCode = "EVAL_003"
	ErrCodeEvaluationCompareError ErrorCode = "EVAL_004"
)

// Score engine module error codes.  The engine itself degrades gracefully and
// never returns errors for malformed-but-typed input; these codes cover
// configuration and request-level failures around it.
const (
	ErrCodeScoreInputInvalid   ErrorCode = "SCORE_001"
	ErrCodeScoreConfigInvalid  ErrorCode = "SCORE_002"
	ErrCodeScoreEngineInternal ErrorCode = "SCORE_003"
)

// Search module error codes.
const (
	ErrCodeSearchIndexError ErrorCode = "SEARCH_001"
	ErrCodeSearchQueryError ErrorCode = "SEARCH_002"
)

// Graph module error codes.
const (
	ErrCodeGraphQueryError ErrorCode = "GRAPH_001"
	ErrCodeGraphWriteError ErrorCode = "GRAPH_002"
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
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeProfileNotFound:      http.StatusNotFound,
	ErrCodeProfileAlreadyExists: http.StatusConflict,
	ErrCodeProfileInvalid:       http.StatusBadRequest,

	ErrCodeEvaluationNotFound:     http.StatusNotFound,
	ErrCodeEvaluationPersistError: http.StatusInternalServerError,
	ErrCodeEvaluationExportError:  http.StatusInternalServerError,
	ErrCodeEvaluationCompareError: http.StatusInternalServerError,

	ErrCodeScoreInputInvalid:   http.StatusBadRequest,
	ErrCodeScoreConfigInvalid:  http.StatusInternalServerError,
	ErrCodeScoreEngineInternal: http.StatusInternalServerError,

	ErrCodeSearchIndexError: http.StatusInternalServerError,
	ErrCodeSearchQueryError: http.StatusInternalServerError,

	ErrCodeGraphQueryError: http.StatusInternalServerError,
	ErrCodeGraphWriteError: http.StatusInternalServerError,
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
	ErrCodeMessagingError:     "message broker error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeProfileNotFound:      "profile not found",
	ErrCodeProfileAlreadyExists: "profile already exists",
	ErrCodeProfileInvalid:       "invalid profile",

	ErrCodeEvaluationNotFound:     "evaluation not found",
	ErrCodeEvaluationPersistError: "failed to persist evaluation",
	ErrCodeEvaluationExportError:  "failed to export evaluation",
	ErrCodeEvaluationCompareError: "failed to compare evaluations",

	ErrCodeScoreInputInvalid:   "invalid score input",
	ErrCodeScoreConfigInvalid:  "invalid score engine configuration",
	ErrCodeScoreEngineInternal: "score engine internal error",

	ErrCodeSearchIndexError: "search indexing failed",
	ErrCodeSearchQueryError: "search query failed",

	ErrCodeGraphQueryError: "lineage graph query failed",
	ErrCodeGraphWriteError: "lineage graph write failed",
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
