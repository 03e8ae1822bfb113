package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/vendorcart-backend/pkg/errors"
	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "world", body.Data.(map[string]any)["hello"])
}

func TestWriteSuccessStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"id": "abc"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeValidation), body.Error.Code)
	assert.Equal(t, "bad input", body.Error.Message)
	assert.NotNil(t, body.Error.Details)
}

func TestWriteErrorCheckoutCodes(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
		details bool
	}{
		{
			name:    "submission rejected keeps upstream message",
			err:     pkgerrors.New(pkgerrors.CodeSubmissionRejected, "Product 12 is out of stock"),
			status:  http.StatusUnprocessableEntity,
			message: "Product 12 is out of stock",
		},
		{
			name: "insufficient wallet carries shortfall",
			err: pkgerrors.New(pkgerrors.CodeInsufficientWallet, "wallet balance is insufficient").
				WithDetails(map[string]any{"shortfall": "300000"}),
			status:  http.StatusPaymentRequired,
			message: "wallet balance is insufficient",
			details: true,
		},
		{
			name:    "stale selection",
			err:     pkgerrors.New(pkgerrors.CodeStaleSelection, "selected vouchers no longer apply"),
			status:  http.StatusConflict,
			message: "selected vouchers no longer apply",
		},
		{
			name:    "missing address",
			err:     pkgerrors.New(pkgerrors.CodeMissingAddress, "delivery address required"),
			status:  http.StatusBadRequest,
			message: "delivery address required",
		},
		{
			name:    "voucher ineligible",
			err:     pkgerrors.New(pkgerrors.CodeVoucherIneligible, "voucher cannot be applied to this order"),
			status:  http.StatusUnprocessableEntity,
			message: "voucher cannot be applied to this order",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), nil, w, tc.err)

			require.Equal(t, tc.status, w.Code)
			var body ErrorEnvelope
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tc.message, body.Error.Message)
			assert.Equal(t, tc.details, body.Error.Details != nil)
		})
	}
}

func TestWriteErrorHidesDependencyMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp"), "fetch checkout preview"))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "dependency unavailable", body.Error.Message)
	assert.True(t, body.Error.Retryable)
}

func TestWriteErrorLogsClientErrorsAsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	WriteError(context.Background(), logg, httptest.NewRecorder(), pkgerrors.New(pkgerrors.CodeVoucherIneligible, "voucher cannot be applied to this order").
		WithDetails(map[string]any{"reason": "below_min_order_amount"}))

	line := buf.String()
	assert.Contains(t, line, `"level":"warn"`)
	assert.Contains(t, line, `"reason":"below_min_order_amount"`)
	assert.Contains(t, line, `"error_code":"VOUCHER_INELIGIBLE"`)
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
	assert.Nil(t, body.Error.Details)
}
