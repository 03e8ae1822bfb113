package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/vendorcart-backend/api/controllers"
	checkoutcontrollers "github.com/angelmondragon/vendorcart-backend/api/controllers/checkout"
	topupcontrollers "github.com/angelmondragon/vendorcart-backend/api/controllers/topups"
	"github.com/angelmondragon/vendorcart-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/vendorcart-backend/internal/checkout"
	"github.com/angelmondragon/vendorcart-backend/internal/topup"
	"github.com/angelmondragon/vendorcart-backend/pkg/config"
	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/vendorcart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	checkoutService checkoutsvc.Service,
	topupService topup.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if cfg.Metrics.Enabled && gatherer != nil {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BuyerContext(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/me", controllers.Whoami())

		r.Route("/checkout/sessions", func(r chi.Router) {
			r.Post("/", checkoutcontrollers.SessionStart(checkoutService, logg))
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", checkoutcontrollers.SessionGet(checkoutService, logg))
				r.Delete("/", checkoutcontrollers.SessionAbandon(checkoutService, logg))
				r.Post("/refresh", checkoutcontrollers.SessionRefresh(checkoutService, logg))
				r.Post("/submit", checkoutcontrollers.Submit(checkoutService, logg))

				r.Route("/stores/{storeId}", func(r chi.Router) {
					r.Get("/vouchers", checkoutcontrollers.VoucherOptions(checkoutService, logg))
					r.Put("/voucher", checkoutcontrollers.VoucherSelect(checkoutService, logg))
					r.Delete("/voucher", checkoutcontrollers.VoucherClear(checkoutService, logg))
					r.Put("/note", checkoutcontrollers.NoteSet(checkoutService, logg))
				})
			})
		})

		r.Route("/wallet/topups/{topUpId}", func(r chi.Router) {
			r.Get("/", topupcontrollers.TopUpGet(topupService, logg))
			r.Post("/complete", topupcontrollers.TopUpComplete(topupService, logg))
		})
	})

	return r
}
