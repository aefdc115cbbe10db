package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/ledgerpath/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid transaction payload", func(t *testing.T) {
		valid := models.TransactionPayload{
			AccountID: 1,
			Type:      "credit",
			Amount:    decimal.RequireFromString("50.00"),
			Category:  "salary",
		}

		assert.NoError(t, vh.ValidateStruct(&valid))
	})

	t.Run("missing required fields", func(t *testing.T) {
		invalid := models.TransactionPayload{
			Category: "salary",
		}

		err := vh.ValidateStruct(&invalid)
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		assert.Len(t, validationErrors, 3) // AccountID, Type, Amount
	})

	t.Run("field over its length limit", func(t *testing.T) {
		invalid := models.AccountPayload{
			Name: strings.Repeat("x", 101),
		}

		err := vh.ValidateStruct(&invalid)
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		assert.Equal(t, "Name", validationErrors[0].Field())
		assert.Equal(t, "max", validationErrors[0].Tag())
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("rejects unknown fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/transactions", strings.NewReader(`{"account_id": 1, "bogus": true}`))

		var payload models.TransactionPayload
		assert.Error(t, DecodeJSON(w, r, &payload))
	})

	t.Run("decodes a valid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/transactions", strings.NewReader(`{"account_id": 1, "type": "debit", "amount": "9.99"}`))

		var payload models.TransactionPayload
		require.NoError(t, DecodeJSON(w, r, &payload))
		assert.Equal(t, int64(1), payload.AccountID)
		assert.True(t, payload.Amount.Equal(decimal.RequireFromString("9.99")))
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("error response with validation details", func(t *testing.T) {
		vh := NewValidationHelper()
		err := vh.ValidateStruct(&models.AccountPayload{})
		require.Error(t, err)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response.Details, "Name")
	})
}
