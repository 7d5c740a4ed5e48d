package constant

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the error type returned across service boundaries.
type Error interface {
	error
	Code() int
	Message() string
	WithMessage(msg string) Error
}

// CustomError carries a numeric code and a caller-facing message.
type CustomError struct {
	code    int
	message string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("code: %d, message: %s", e.code, e.message)
}

func (e *CustomError) Code() int {
	return e.code
}

func (e *CustomError) Message() string {
	return e.message
}

// WithMessage returns a copy with a more specific message; the code is kept.
func (e *CustomError) WithMessage(msg string) Error {
	return &CustomError{code: e.code, message: msg}
}

// Is matches on code so errors.Is works against the package-level sentinels.
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// NewError builds an error with the registered message for code.
func NewError(code int) Error {
	if info, exists := ErrorMessages[code]; exists {
		return &CustomError{code: code, message: info.EN}
	}
	return &CustomError{code: code, message: "unknown error"}
}

// Newf builds an error for code with a formatted message.
func Newf(code int, format string, args ...any) Error {
	return &CustomError{code: code, message: fmt.Sprintf(format, args...)}
}

// GetErrorInfo returns the registered message for code.
func GetErrorInfo(code int) (ErrorInfo, bool) {
	info, exists := ErrorMessages[code]
	return info, exists
}

// CodeOf extracts the code of err, CodeSystemError when err is not an Error.
func CodeOf(err error) int {
	var ce Error
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return CodeSystemError
}

// HTTPStatus maps an error code to the HTTP status returned to callers.
func HTTPStatus(code int) int {
	switch {
	case code == CodeSuccess:
		return http.StatusOK
	case code == CodeSignatureError || code == CodeUnauthorized:
		return http.StatusUnauthorized
	case code == CodeAccessDenied:
		return http.StatusForbidden
	case code == CodeDuplicateRequest:
		return http.StatusConflict
	case code == CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case code == CodeProposalNotFound || code == CodeOrganizationNotFound || code == CodeDistributionNotFound:
		return http.StatusNotFound
	case code >= 3000 && code < 4000:
		return http.StatusBadGateway
	case code >= 1100 && code < 1200, code >= 2000 && code < 3000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is checks.
var (
	ErrValidation      = NewError(CodeInvalidParams)
	ErrAccessDenied    = NewError(CodeAccessDenied)
	ErrProposalMissing = NewError(CodeProposalNotFound)
	ErrSignature       = NewError(CodeSignatureError)
	ErrProcessor       = NewError(CodeProcessorError)
	ErrFeatureDisabled = NewError(CodeServiceUnavailable)
)
