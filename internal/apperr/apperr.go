package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindAccessDenied
	KindConflict
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unexpected"
	}
}

// Error codes shared by services and handlers.
const (
	CodeInvalidInput          = "InvalidInput"
	CodeProductNotFound       = "ProductNotFound"
	CodeProductUnavailable    = "ProductUnavailable"
	CodeInvalidProductData    = "InvalidProductData"
	CodeInsufficientStock     = "InsufficientStock"
	CodeAlreadyCancelled      = "AlreadyCancelled"
	CodeCannotCancelDelivered = "CannotCancelDelivered"
	CodeInvalidStatus         = "InvalidStatus"
	CodeAccessDenied          = "AccessDenied"
	CodeOrderNotFound         = "OrderNotFound"
	CodePaymentNotFound       = "PaymentNotFound"
	CodeUserNotFound          = "UserNotFound"
	CodeCartNotFound          = "CartNotFound"
	CodeCartItemNotFound      = "CartItemNotFound"
	CodeWishlistItemNotFound  = "WishlistItemNotFound"
	CodeInvalidCredentials    = "InvalidCredentials"
	CodePendingApproval       = "PendingApproval"
	CodeDuplicate             = "Duplicate"
	CodeStockContention       = "StockContention"
	CodeUnauthenticated       = "Unauthenticated"
	CodeInternal              = "Internal"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by kind and code, so callers can compare
// against the package-level sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, CodeInvalidInput, message)
}

func Validationf(format string, args ...any) *Error {
	return New(KindValidation, CodeInvalidInput, fmt.Sprintf(format, args...))
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func AccessDenied(message string) *Error {
	return New(KindAccessDenied, CodeAccessDenied, message)
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, CodeUnauthenticated, message)
}

func Unexpected(message string, err error) *Error {
	return Wrap(KindUnexpected, CodeInternal, message, err)
}

// Sentinels for errors.Is checks.
var (
	ErrProductNotFound       = New(KindValidation, CodeProductNotFound, "product not found")
	ErrProductUnavailable    = New(KindValidation, CodeProductUnavailable, "product is not available")
	ErrInvalidProductData    = New(KindValidation, CodeInvalidProductData, "product has invalid price data")
	ErrInsufficientStock     = New(KindValidation, CodeInsufficientStock, "insufficient stock")
	ErrAlreadyCancelled      = New(KindConflict, CodeAlreadyCancelled, "order is already cancelled")
	ErrCannotCancelDelivered = New(KindConflict, CodeCannotCancelDelivered, "cannot cancel a delivered order")
	ErrInvalidStatus         = New(KindValidation, CodeInvalidStatus, "invalid status")
	ErrAccessDenied          = New(KindAccessDenied, CodeAccessDenied, "access denied")
	ErrOrderNotFound         = New(KindNotFound, CodeOrderNotFound, "order not found")
	ErrPaymentNotFound       = New(KindNotFound, CodePaymentNotFound, "payment not found")
	ErrUserNotFound          = New(KindNotFound, CodeUserNotFound, "user not found")
)

// With returns a copy of a sentinel carrying a more specific message.
func (e *Error) With(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to return to API clients. Unexpected
// errors never leak the wrapped diagnostic.
func PublicMessage(err error, fallback string) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindUnexpected {
		return ae.Message
	}
	return fallback
}

func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
