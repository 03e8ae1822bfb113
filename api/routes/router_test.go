package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/vendorcart-backend/api/controllers"
	checkoutsvc "github.com/angelmondragon/vendorcart-backend/internal/checkout"
	"github.com/angelmondragon/vendorcart-backend/internal/pricing"
	"github.com/angelmondragon/vendorcart-backend/internal/topup"
	"github.com/angelmondragon/vendorcart-backend/pkg/config"
	"github.com/angelmondragon/vendorcart-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/vendorcart-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCheckoutService struct {
	submits int
}

func (s *stubCheckoutService) Start(context.Context, string) (*checkoutsvc.SessionView, error) {
	return &checkoutsvc.SessionView{ID: "sess-1"}, nil
}

func (s *stubCheckoutService) Get(_ context.Context, _, sessionID string) (*checkoutsvc.SessionView, error) {
	return &checkoutsvc.SessionView{ID: sessionID}, nil
}

func (s *stubCheckoutService) Refresh(_ context.Context, _, sessionID string) (*checkoutsvc.SessionView, error) {
	return &checkoutsvc.SessionView{ID: sessionID}, nil
}

func (s *stubCheckoutService) VoucherOptions(context.Context, string, string, string) ([]pricing.VoucherOption, error) {
	return []pricing.VoucherOption{}, nil
}

func (s *stubCheckoutService) SelectVoucher(_ context.Context, _, sessionID, _, _ string) (*checkoutsvc.SessionView, error) {
	return &checkoutsvc.SessionView{ID: sessionID}, nil
}

func (s *stubCheckoutService) ClearVoucher(_ context.Context, _, sessionID, _ string) (*checkoutsvc.SessionView, error) {
	return &checkoutsvc.SessionView{ID: sessionID}, nil
}

func (s *stubCheckoutService) SetNote(_ context.Context, _, sessionID, _, _ string) (*checkoutsvc.SessionView, error) {
	return &checkoutsvc.SessionView{ID: sessionID}, nil
}

func (s *stubCheckoutService) Submit(context.Context, string, string, checkoutsvc.SubmitInput) (*checkoutsvc.SubmitResult, error) {
	s.submits++
	return &checkoutsvc.SubmitResult{OrderIDs: []string{"o1"}}, nil
}

func (s *stubCheckoutService) Abandon(context.Context, string, string) error {
	return nil
}

type stubTopUpService struct{}

func (stubTopUpService) Create(context.Context, topup.CreateInput) (*topup.TopUp, error) {
	return &topup.TopUp{}, nil
}

func (stubTopUpService) Get(_ context.Context, _ string, id uuid.UUID) (*topup.TopUp, error) {
	return &topup.TopUp{ID: id}, nil
}

func (stubTopUpService) Complete(_ context.Context, _ string, id uuid.UUID) (*topup.TopUp, error) {
	return &topup.TopUp{ID: id}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubCheckoutService) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	reg := prometheus.NewRegistry()
	recorder := metrics.NewCheckoutMetrics(reg)
	recorder.IncPreview(metrics.PreviewFetched)

	cfg := &config.Config{
		App:     config.AppConfig{Env: "dev"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	checkout := &stubCheckoutService{}
	router := NewRouter(
		cfg,
		nil,
		map[string]controllers.Pinger{"redis": stubPinger{}},
		pkgredis.NewFromClient(raw),
		reg,
		checkout,
		stubTopUpService{},
	)
	return router, checkout
}

func request(handler http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "/health/ready", "", nil).Code)
}

func TestMetricsRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := request(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "checkout_previews_total")
}

func TestCheckoutRoutesRequireBuyer(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := request(router, http.MethodGet, "/api/v1/checkout/sessions/sess-1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = request(router, http.MethodGet, "/api/v1/checkout/sessions/sess-1", "", map[string]string{"X-Buyer-Id": "buyer-1"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"sess-1"`)
}

func TestCheckoutSessionRoutes(t *testing.T) {
	router, _ := newTestRouter(t)
	buyer := map[string]string{"X-Buyer-Id": "buyer-1"}

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodPost, "/api/v1/checkout/sessions", "", http.StatusCreated},
		{http.MethodPost, "/api/v1/checkout/sessions/sess-1/refresh", "", http.StatusOK},
		{http.MethodGet, "/api/v1/checkout/sessions/sess-1/stores/s1/vouchers", "", http.StatusOK},
		{http.MethodPut, "/api/v1/checkout/sessions/sess-1/stores/s1/voucher", `{"voucher_id":"v1"}`, http.StatusOK},
		{http.MethodDelete, "/api/v1/checkout/sessions/sess-1/stores/s1/voucher", "", http.StatusOK},
		{http.MethodPut, "/api/v1/checkout/sessions/sess-1/stores/s1/note", `{"note":"hi"}`, http.StatusOK},
		{http.MethodDelete, "/api/v1/checkout/sessions/sess-1", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/wallet/topups/" + uuid.NewString(), "", http.StatusOK},
	}
	for _, tc := range cases {
		resp := request(router, tc.method, tc.path, tc.body, buyer)
		assert.Equal(t, tc.status, resp.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSubmitRequiresIdempotencyKeyAndReplays(t *testing.T) {
	router, checkout := newTestRouter(t)
	body := `{"address_id":"a1","shipping_method":"standard","payment_method":"COD"}`

	resp := request(router, http.MethodPost, "/api/v1/checkout/sessions/sess-1/submit", body, map[string]string{"X-Buyer-Id": "buyer-1"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, 0, checkout.submits)

	headers := map[string]string{"X-Buyer-Id": "buyer-1", "Idempotency-Key": "key-1"}
	first := request(router, http.MethodPost, "/api/v1/checkout/sessions/sess-1/submit", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)

	second := request(router, http.MethodPost, "/api/v1/checkout/sessions/sess-1/submit", body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, checkout.submits)
}

func TestTopUpCompleteRequiresIdempotencyKey(t *testing.T) {
	router, _ := newTestRouter(t)
	path := "/api/v1/wallet/topups/" + uuid.NewString() + "/complete"

	resp := request(router, http.MethodPost, path, "", map[string]string{"X-Buyer-Id": "buyer-1"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = request(router, http.MethodPost, path, "", map[string]string{"X-Buyer-Id": "buyer-1", "Idempotency-Key": "k"})
	assert.Equal(t, http.StatusOK, resp.Code)
}
