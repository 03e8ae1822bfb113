package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/vendorcart-backend/api/middleware"
)

func TestWhoamiEchoesBuyer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(middleware.WithBuyerID(req.Context(), "buyer-9"))

	resp := httptest.NewRecorder()
	Whoami().ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"data":{"buyer_id":"buyer-9"}}`, resp.Body.String())
}
