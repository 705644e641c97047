package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"

	"github.com/chicommerce/catalog-api/internal/utils"
)

// maxPrice is the largest value a NUMERIC(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

// ValidateQuantity requires a strictly positive quantity.
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than 0", utils.ErrInvalidQuantity)
	}
	return nil
}

// ValidateUnitPrice requires a strictly positive price with at most two decimals.
func ValidateUnitPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: unit price must be greater than 0", utils.ErrInvalidPrice)
	}
	return checkPriceRange(price)
}

// ValidateBasePrice accepts zero but nothing negative.
func ValidateBasePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: base price must be >= 0", utils.ErrInvalidPrice)
	}
	return checkPriceRange(price)
}

func checkPriceRange(price decimal.Decimal) error {
	if price.GreaterThan(maxPrice) {
		return fmt.Errorf("%w: price exceeds %s", utils.ErrInvalidPrice, maxPrice)
	}
	if !price.Round(2).Equal(price) {
		return fmt.Errorf("%w: price must have at most 2 decimal places", utils.ErrInvalidPrice)
	}
	return nil
}

// ValidateCartLine runs the quantity and price checks for a cart item.
func ValidateCartLine(quantity int, unitPrice decimal.Decimal) error {
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	return ValidateUnitPrice(unitPrice)
}

// ValidateName trims name and requires 1..max characters.
func ValidateName(field, name string, max int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > max {
		return "", utils.InvalidRequest("%s must be 1 to %d characters", field, max)
	}
	return name, nil
}

// ValidateVersion requires a positive template version.
func ValidateVersion(version int) error {
	if version <= 0 {
		return utils.InvalidRequest("version must be greater than 0")
	}
	return nil
}

// ObjectJSON normalizes an optional JSON payload: absent or null becomes {}
// and anything other than a JSON object is rejected.
func ObjectJSON(field string, raw types.JSONText) (types.JSONText, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return types.JSONText("{}"), nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, utils.InvalidRequest("%s must be a JSON object", field)
	}
	return types.JSONText(trimmed), nil
}
