package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkoutShape mirrors the fields checkout payloads validate on.
type checkoutShape struct {
	ProductID     string `json:"productId" validate:"required"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	Quantity      int64  `json:"quantity" validate:"required,gt=0"`
}

func TestProperty_RequiredFieldValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("payloads pass only when every required field is present", prop.ForAll(
		func(includeProduct bool, includeEmail bool, includeQuantity bool) bool {
			reqMap := make(map[string]interface{})
			if includeProduct {
				reqMap["productId"] = "chain-1"
			}
			if includeEmail {
				reqMap["customerEmail"] = "buyer@example.com"
			}
			if includeQuantity {
				reqMap["quantity"] = 2
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/checkout/buy-now", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var shape checkoutShape
			err := DecodeAndValidate(req, &shape)

			allPresent := includeProduct && includeEmail && includeQuantity
			if allPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/checkout/buy-now", bytes.NewReader([]byte(`{"productId":`)))
	req.Header.Set("Content-Type", "application/json")

	var shape checkoutShape
	err := DecodeAndValidate(req, &shape)
	require.Error(t, err)
	// Decode errors are not field errors and format to nothing.
	assert.Empty(t, FormatValidationErrors(err))
}

func TestFormatValidationErrors_FieldMessages(t *testing.T) {
	reqBody := []byte(`{"productId": "chain-1", "customerEmail": "not-an-email", "quantity": -1}`)
	req := httptest.NewRequest("POST", "/api/checkout/buy-now", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var shape checkoutShape
	err := DecodeAndValidate(req, &shape)
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	require.Len(t, formatted, 2)

	byField := map[string]string{}
	for _, ve := range formatted {
		byField[ve.Field] = ve.Message
	}
	assert.Equal(t, "Invalid email format", byField["CustomerEmail"])
	assert.Equal(t, "Value must be greater than 0", byField["Quantity"])
}
