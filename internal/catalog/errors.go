package catalog

import (
	"errors"
	"fmt"
)

// ErrCatalogLoad matches every failure returned by Load.
var ErrCatalogLoad = errors.New("catalog load failed")

// LoadError reports an unreadable or malformed catalog source.
// Callers are expected to continue with Empty() and warn the user.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog: load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCatalogLoad) hold for any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrCatalogLoad }

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")
