// Package errs holds the error codes services report to callers.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT"
	KindUnavailable Kind = "UNAVAILABLE"
	KindValidation  Kind = "VALIDATION"
	KindExternal    Kind = "EXTERNAL_SERVICE"
	KindAuth        Kind = "UNAUTHENTICATED"
)

type ErrCode string

const (
	CodeCarNotFound        ErrCode = "CAR_NOT_FOUND"
	CodeRentalNotFound     ErrCode = "RENTAL_NOT_FOUND"
	CodeUserNotFound       ErrCode = "USER_NOT_FOUND"
	CodeNoActiveRental     ErrCode = "NO_ACTIVE_RENTAL"
	CodeNoPendingRental    ErrCode = "NO_PENDING_RENTAL"
	CodeNoPendingPayment   ErrCode = "NO_PENDING_PAYMENT"
	CodeConflictingRental  ErrCode = "CONFLICTING_RENTAL"
	CodeUnpaidFine         ErrCode = "UNPAID_FINE"
	CodeAlreadyPending     ErrCode = "ALREADY_PENDING"
	CodeCannotCancelActive ErrCode = "CANNOT_CANCEL_ACTIVE"
	CodeFineNotCancelable  ErrCode = "FINE_NOT_CANCELABLE"
	CodeCarUnavailable     ErrCode = "CAR_UNAVAILABLE"
	CodeInvalidInput       ErrCode = "INVALID_INPUT"
	CodeInvalidSearch      ErrCode = "INVALID_SEARCH"
	CodeGatewayFailed      ErrCode = "GATEWAY_FAILED"
	CodeEmailTaken         ErrCode = "EMAIL_TAKEN"
	CodeInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
)

var kinds = map[ErrCode]Kind{
	CodeCarNotFound:        KindNotFound,
	CodeRentalNotFound:     KindNotFound,
	CodeUserNotFound:       KindNotFound,
	CodeNoActiveRental:     KindNotFound,
	CodeNoPendingRental:    KindNotFound,
	CodeNoPendingPayment:   KindNotFound,
	CodeConflictingRental:  KindConflict,
	CodeUnpaidFine:         KindConflict,
	CodeAlreadyPending:     KindConflict,
	CodeCannotCancelActive: KindConflict,
	CodeFineNotCancelable:  KindConflict,
	CodeCarUnavailable:     KindUnavailable,
	CodeInvalidInput:       KindValidation,
	CodeInvalidSearch:      KindValidation,
	CodeGatewayFailed:      KindExternal,
	CodeEmailTaken:         KindConflict,
	CodeInvalidCredentials: KindAuth,
}

var (
	ErrCarNotFound        = New(CodeCarNotFound, "car not found")
	ErrRentalNotFound     = New(CodeRentalNotFound, "rental not found")
	ErrUserNotFound       = New(CodeUserNotFound, "user not found")
	ErrNoActiveRental     = New(CodeNoActiveRental, "you don't have an active rental")
	ErrNoPendingRental    = New(CodeNoPendingRental, "create a rental first, then pay for it")
	ErrNoPendingPayment   = New(CodeNoPendingPayment, "you don't have a pending payment")
	ErrConflictingRental  = New(CodeConflictingRental, "you already have a pending or lasting rental")
	ErrUnpaidFine         = New(CodeUnpaidFine, "you can't rent a new car until you pay the fine")
	ErrAlreadyPending     = New(CodeAlreadyPending, "you already have a pending payment of this type")
	ErrCannotCancelActive = New(CodeCannotCancelActive, "a lasting rental can't be canceled, only returned")
	ErrFineNotCancelable  = New(CodeFineNotCancelable, "a fine can't be canceled")
	ErrCarUnavailable     = New(CodeCarUnavailable, "this car is not available now")
	ErrEmailTaken         = New(CodeEmailTaken, "email already registered")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "invalid email or password")
)

type codedError struct {
	code ErrCode
	msg  string
	err  error
}

func New(c ErrCode, msg string) error { return &codedError{code: c, msg: msg} }

// Wrap attaches a code to a cause.
func Wrap(c ErrCode, err error, format string, args ...any) error {
	return &codedError{code: c, msg: fmt.Sprintf(format, args...), err: err}
}

func Invalid(format string, args ...any) error {
	return &codedError{code: CodeInvalidInput, msg: fmt.Sprintf(format, args...)}
}

func (e *codedError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *codedError) Unwrap() error   { return e.err }
func (e *codedError) Code() ErrCode   { return e.code }
func (e *codedError) Message() string { return e.msg }

func (e *codedError) Is(target error) bool {
	var t *codedError
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

func KindOf(err error) Kind { return kinds[Code(err)] }

// Message is the user-facing text of a coded error.
func Message(err error) string {
	var ce interface{ Message() string }
	if errors.As(err, &ce) {
		return ce.Message()
	}
	return "internal error"
}
