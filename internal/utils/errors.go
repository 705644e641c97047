package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors shared by the validation, repository and service layers.
var (
	ErrNotFound            = errors.New("NOT_FOUND")
	ErrDuplicateVersion    = errors.New("DUPLICATE_VERSION")
	ErrInvalidDefinition   = errors.New("INVALID_DEFINITION")
	ErrZoneMismatch        = errors.New("ZONE_MISMATCH")
	ErrLastDefaultRemoval  = errors.New("LAST_DEFAULT_REMOVAL")
	ErrLastTemplateRemoval = errors.New("LAST_TEMPLATE_REMOVAL")
	ErrProductInUse        = errors.New("PRODUCT_IN_USE")
	ErrInvalidQuantity     = errors.New("INVALID_QUANTITY")
	ErrInvalidPrice        = errors.New("INVALID_PRICE")
	ErrInvalidRequest      = errors.New("INVALID_REQUEST")

	ErrMissingAPIKey = errors.New("MISSING_API_KEY")
	ErrInvalidAPIKey = errors.New("INVALID_API_KEY")
)

// NotFoundError names the entity that could not be found.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError for entity.
func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// DefinitionError describes why a template definition was rejected.
// Zone is empty when the problem is not tied to a single zone.
type DefinitionError struct {
	Zone   string
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Zone == "" {
		return e.Reason
	}
	return fmt.Sprintf("zone '%s': %s", e.Zone, e.Reason)
}

func (e *DefinitionError) Unwrap() error { return ErrInvalidDefinition }

// ZoneMismatchError lists zone keys present on only one side of the
// definition/zone-record comparison. Both slices are sorted.
type ZoneMismatchError struct {
	Missing []string
	Extra   []string
}

func (e *ZoneMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "Missing customization zones for defined zones: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "Extra customization zones not in definition: "+strings.Join(e.Extra, ", "))
	}
	return strings.Join(parts, "; ")
}

func (e *ZoneMismatchError) Unwrap() error { return ErrZoneMismatch }

// ProductInUseError carries the number of cart items blocking a deletion.
type ProductInUseError struct {
	Count int
}

func (e *ProductInUseError) Error() string {
	return fmt.Sprintf("Cannot delete product with %d cart items. Please remove the product from all carts first.", e.Count)
}

func (e *ProductInUseError) Unwrap() error { return ErrProductInUse }

// InvalidRequest wraps ErrInvalidRequest with a human readable message.
func InvalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
