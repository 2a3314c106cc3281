package quote

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by ledger operations. None of them leave the
// ledger modified.
var (
	ErrUnknownProduct  = errors.New("unknown product")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrIndexOutOfRange = errors.New("line index out of range")
	ErrReadOnlyField   = errors.New("field is not editable")
)

// UnknownProductError names a product reference that could not be priced.
type UnknownProductError struct {
	ProductRef string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %q", e.ProductRef)
}

func (e *UnknownProductError) Unwrap() error { return ErrUnknownProduct }

// IndexError reports an index outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("line index %d out of range [0,%d)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// ReadOnlyFieldError reports an attempt to edit a resolved field.
type ReadOnlyFieldError struct {
	Field string
}

func (e *ReadOnlyFieldError) Error() string {
	return fmt.Sprintf("field %q is not editable", e.Field)
}

func (e *ReadOnlyFieldError) Unwrap() error { return ErrReadOnlyField }

// RowError locates a validation failure inside a bulk replacement.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
