// Package httptransport composes the service's HTTP surface: shared
// middleware, party-facing fund protection routes behind bearer auth, and
// operator routes behind the admin token.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	fphandler "propex/internal/fundprotection/handler"
	"propex/internal/platform/metrics"
	wallethandler "propex/internal/wallet/handler"
	"propex/pkg/platform/httputil"
	adminmw "propex/pkg/platform/middleware/admin"
	authmw "propex/pkg/platform/middleware/auth"
	request "propex/pkg/platform/middleware/request"
	"propex/pkg/platform/middleware/requesttime"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	FundProtection *fphandler.Handler
	Wallets        *wallethandler.Handler
	Validator      authmw.JWTValidator
	AdminToken     string
	Registry       *prometheus.Registry
	Health         map[string]HealthCheck
	Logger         *slog.Logger
}

const healthTimeout = 2 * time.Second

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)

	r.Get("/health", healthHandler(d.Health))
	if d.Registry != nil {
		r.Handle("/metrics", metrics.Handler(d.Registry))
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(d.Validator, d.Logger))
		d.FundProtection.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(d.AdminToken, d.Logger))
		d.FundProtection.RegisterAdmin(r)
		if d.Wallets != nil {
			d.Wallets.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
