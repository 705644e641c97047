package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicommerce/catalog-api/internal/utils"
)

func TestValidateCartLine(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		price    string
		want     error
	}{
		{name: "ok", quantity: 2, price: "9.99"},
		{name: "zero quantity", quantity: 0, price: "9.99", want: utils.ErrInvalidQuantity},
		{name: "negative quantity", quantity: -3, price: "9.99", want: utils.ErrInvalidQuantity},
		{name: "zero price", quantity: 1, price: "0", want: utils.ErrInvalidPrice},
		{name: "negative price", quantity: 1, price: "-1.00", want: utils.ErrInvalidPrice},
		{name: "three decimals", quantity: 1, price: "1.005", want: utils.ErrInvalidPrice},
		{name: "too large", quantity: 1, price: "100000000.00", want: utils.ErrInvalidPrice},
		{name: "quantity checked first", quantity: 0, price: "0", want: utils.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCartLine(tt.quantity, decimal.RequireFromString(tt.price))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestValidateBasePrice(t *testing.T) {
	assert.NoError(t, ValidateBasePrice(decimal.Zero))
	assert.NoError(t, ValidateBasePrice(decimal.RequireFromString("99999999.99")))
	assert.ErrorIs(t, ValidateBasePrice(decimal.RequireFromString("-0.01")), utils.ErrInvalidPrice)
}

func TestValidateName(t *testing.T) {
	name, err := ValidateName("name", "  Mug  ", 10)
	require.NoError(t, err)
	assert.Equal(t, "Mug", name)

	_, err = ValidateName("name", "   ", 10)
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)

	_, err = ValidateName("name", strings.Repeat("x", 11), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must be 1 to 10 characters")
}

func TestValidateVersion(t *testing.T) {
	assert.NoError(t, ValidateVersion(1))
	assert.ErrorIs(t, ValidateVersion(0), utils.ErrInvalidRequest)
}

func TestObjectJSON(t *testing.T) {
	out, err := ObjectJSON("media", nil)
	require.NoError(t, err)
	assert.Equal(t, types.JSONText("{}"), out)

	out, err = ObjectJSON("media", types.JSONText(" null "))
	require.NoError(t, err)
	assert.Equal(t, types.JSONText("{}"), out)

	out, err = ObjectJSON("media", types.JSONText(` {"a": 1} `))
	require.NoError(t, err)
	assert.Equal(t, types.JSONText(`{"a": 1}`), out)

	_, err = ObjectJSON("media", types.JSONText(`[1]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "media must be a JSON object")
}
