package services

import (
	"errors"
	"fmt"
)

// ErrorKind -> kategori error yang bisa dibedakan oleh client
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation_error"
	KindNotFound            ErrorKind = "not_found"
	KindSignatureInvalid    ErrorKind = "signature_invalid"
	KindOutOfServiceArea    ErrorKind = "out_of_service_area"
	KindBelowMinimumOrder   ErrorKind = "below_minimum_order"
	KindIllegalTransition   ErrorKind = "illegal_transition"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindAnomalyDetected     ErrorKind = "anomaly_detected"
)

// Error adalah error terstruktur dari layer service.
// Code membedakan varian dalam satu Kind, misalnya order_not_found vs coupon_not_found.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		if e.Code != "" {
			return e.Code
		}
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is mencocokkan dengan sentinel: Code jika sentinel punya Code, selain itu cukup Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return t.Kind == e.Kind && t.Code == e.Code
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrOrderNotFound       = &Error{Kind: KindNotFound, Code: "order_not_found"}
	ErrCouponNotFound      = &Error{Kind: KindNotFound, Code: "coupon_not_found"}
	ErrSignatureInvalid    = &Error{Kind: KindSignatureInvalid}
	ErrOutOfServiceArea    = &Error{Kind: KindOutOfServiceArea}
	ErrBelowMinimumOrder   = &Error{Kind: KindBelowMinimumOrder}
	ErrIllegalTransition   = &Error{Kind: KindIllegalTransition}
	ErrAlreadyAccepted     = &Error{Kind: KindIllegalTransition, Code: "already_accepted"}
	ErrPaymentFailed       = &Error{Kind: KindValidation, Code: "payment_failed"}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrAnomalyDetected     = &Error{Kind: KindAnomalyDetected}
)

func validationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func orderNotFound(orderID string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    "order_not_found",
		Message: "order not found",
		Details: map[string]interface{}{"order_id": orderID},
	}
}

func illegalTransition(from, to string) *Error {
	return &Error{
		Kind:    KindIllegalTransition,
		Message: fmt.Sprintf("cannot move order from %s to %s", from, to),
		Details: map[string]interface{}{"from": from, "to": to},
	}
}

func upstreamError(message string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: message, Err: err}
}

// AsError mengambil *Error dari rantai error, nil jika bukan error service
func AsError(err error) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}
