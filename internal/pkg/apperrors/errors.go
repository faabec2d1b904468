package apperrors

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failures a store can report
type Kind int

const (
	// KindStore covers connectivity and every other unclassified store failure
	KindStore Kind = iota
	// KindValidation is a required-field or format failure from the schema layer
	KindValidation
	// KindDuplicateKey is a uniqueness constraint violation
	KindDuplicateKey
	// KindNotFound means the addressed record does not exist
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindNotFound:
		return "not_found"
	default:
		return "store"
	}
}

// Sentinels matched with errors.Is against a StoreError of the same kind
var (
	ErrStore        = errors.New("store failure")
	ErrValidation   = errors.New("validation failed")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrNotFound     = errors.New("resource not found")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrRegistrationInUse  = errors.New("registration number already used by another student")
	ErrSelfDelete         = errors.New("an account cannot delete itself")
	ErrInvalidTransition  = errors.New("invalid enrollment status transition")
)

// StoreError is returned by every repository driver. Field names the
// offending domain field for duplicate-key errors; Details carries one
// human-readable message per invalid field for validation errors.
type StoreError struct {
	Kind    Kind
	Op      string
	Field   string
	Details []string
	Err     error
}

// Error implements error interface
func (e *StoreError) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements errors.Unwrap interface
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a StoreError against the sentinel of its kind
func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrStore:
		return e.Kind == KindStore
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrDuplicateKey:
		return e.Kind == KindDuplicateKey
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// WithField records the domain field involved in the failure
func (e *StoreError) WithField(field string) *StoreError {
	e.Field = field
	return e
}

// WithDetails attaches per-field validation messages
func (e *StoreError) WithDetails(details []string) *StoreError {
	e.Details = details
	return e
}

// NewStoreError wraps err as an unclassified store failure
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Kind: KindStore, Op: op, Err: err}
}

// NewNotFoundError reports a missing record
func NewNotFoundError(op string) *StoreError {
	return &StoreError{Kind: KindNotFound, Op: op}
}

// NewDuplicateKeyError reports a uniqueness violation on field
func NewDuplicateKeyError(op, field string, err error) *StoreError {
	return &StoreError{Kind: KindDuplicateKey, Op: op, Field: field, Err: err}
}

// NewValidationError reports schema-level failures, one message per field
func NewValidationError(op string, details []string) *StoreError {
	return &StoreError{Kind: KindValidation, Op: op, Details: details}
}

// KindOf classifies err. Errors that do not carry a StoreError are KindStore.
func KindOf(err error) Kind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStore
}

// AsStoreError extracts the StoreError from err's chain
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	ok := errors.As(err, &se)
	return se, ok
}

// IsDuplicateOn reports whether err is a duplicate-key error on field
func IsDuplicateOn(err error, field string) bool {
	se, ok := AsStoreError(err)
	return ok && se.Kind == KindDuplicateKey && se.Field == field
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Wrap annotates err with the operation name, keeping the chain intact
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
