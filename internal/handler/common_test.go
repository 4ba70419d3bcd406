package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractor-payments/internal/errors"
)

func TestParseAmount(t *testing.T) {
	valid := map[string]string{
		`100`:    "100",
		`100.5`:  "100.5",
		` 0.01 `: "0.01",
		`1e2`:    "100",
	}
	for raw, want := range valid {
		amount, appErr := parseAmount(json.RawMessage(raw))
		require.Nil(t, appErr, raw)
		assert.Equal(t, want, amount.String(), raw)
	}

	for _, raw := range []string{``, `null`, `"100"`, `true`, `{}`, `[1]`} {
		_, appErr := parseAmount(json.RawMessage(raw))
		require.NotNil(t, appErr, raw)
		assert.Equal(t, errors.InvalidAmount, appErr.Code, raw)
	}
}

func TestCallerID(t *testing.T) {
	cases := map[string]bool{
		"7":   true,
		"":    false,
		"abc": false,
		"0":   false,
		"-1":  false,
	}
	for header, ok := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set(ProfileHeader, header)
		}
		id, appErr := callerID(r)
		if ok {
			require.Nil(t, appErr, header)
			assert.Equal(t, int64(7), id)
		} else {
			assert.Equal(t, errors.ErrUnauthorized, appErr, header)
		}
	}
}

func TestHandleErrorHidesUnexpectedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Error)
	assert.Equal(t, string(errors.InternalError), body.Error.Code)
	assert.NotContains(t, body.Error.Message, assert.AnError.Error())
}

func TestWriteErrorUsesStatusFromCode(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.ErrLimitExceeded.Detailed("maximum deposit is 100.00"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "limit_exceeded", body.Error.Code)
	assert.Equal(t, "maximum deposit is 100.00", body.Error.Details)
}
