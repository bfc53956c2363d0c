package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/universalautobrokers/dealerdesk-backend/api/controllers"
	"github.com/universalautobrokers/dealerdesk-backend/api/middleware"
	"github.com/universalautobrokers/dealerdesk-backend/internal/auth"
	"github.com/universalautobrokers/dealerdesk-backend/internal/clients"
	"github.com/universalautobrokers/dealerdesk-backend/internal/deals"
	"github.com/universalautobrokers/dealerdesk-backend/internal/documents"
	"github.com/universalautobrokers/dealerdesk-backend/internal/licenses"
	"github.com/universalautobrokers/dealerdesk-backend/internal/vehicles"
	"github.com/universalautobrokers/dealerdesk-backend/internal/wizard"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/auth/session"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/config"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/logger"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/metrics"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        controllers.Pinger
	RedisClient     *redis.Client
	SessionManager  sessionManager
	HTTPMetrics     *metrics.HTTPMetrics
	MetricsGatherer prometheus.Gatherer

	AuthService     auth.Service
	ClientService   clients.Service
	VehicleService  vehicles.Service
	DealService     deals.Service
	DocumentService documents.Service
	WizardService   wizard.Service
	LicenseService  licenses.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DBPinger,
			"redis": deps.RedisClient,
		}))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RedisClient, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.Idempotency(deps.RedisClient, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionManager, logg)).Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	// Desktop builds call these before a user session exists.
	r.Route("/api/v1/licenses", func(r chi.Router) {
		r.With(middleware.Idempotency(deps.RedisClient, logg)).Post("/activate", controllers.LicenseActivate(deps.LicenseService, logg))
		r.Post("/validate", controllers.LicenseValidate(deps.LicenseService, logg))
		r.Post("/deactivate", controllers.LicenseDeactivate(deps.LicenseService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionManager, logg)).Get("/", controllers.LicenseList(deps.LicenseService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.Idempotency(deps.RedisClient, logg))

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ClientList(deps.ClientService, logg))
			r.Post("/", controllers.ClientCreate(deps.ClientService, logg))
			r.Get("/{clientId}", controllers.ClientDetail(deps.ClientService, logg))
			r.Patch("/{clientId}", controllers.ClientUpdate(deps.ClientService, logg))
			r.Delete("/{clientId}", controllers.ClientDelete(deps.ClientService, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(deps.VehicleService, logg))
			r.Post("/", controllers.VehicleCreate(deps.VehicleService, logg))
			r.Get("/vin/{vin}", controllers.VehicleByVIN(deps.VehicleService, logg))
			r.Get("/{vehicleId}", controllers.VehicleDetail(deps.VehicleService, logg))
			r.Patch("/{vehicleId}", controllers.VehicleUpdate(deps.VehicleService, logg))
			r.Delete("/{vehicleId}", controllers.VehicleDelete(deps.VehicleService, logg))
		})

		r.Route("/deals", func(r chi.Router) {
			r.Get("/", controllers.DealList(deps.DealService, logg))
			r.Post("/", controllers.DealCreate(deps.DealService, logg))
			r.Get("/stats", controllers.DealStats(deps.DealService, logg))
			r.Get("/{dealId}", controllers.DealDetail(deps.DealService, logg))
			r.Patch("/{dealId}", controllers.DealUpdate(deps.DealService, logg))
			r.Delete("/{dealId}", controllers.DealDelete(deps.DealService, logg))
			r.Route("/{dealId}/documents", func(r chi.Router) {
				r.Get("/", controllers.DocumentList(deps.DocumentService, logg))
				r.Post("/", controllers.DocumentCreate(deps.DocumentService, logg))
				r.Delete("/{documentId}", controllers.DocumentDelete(deps.DocumentService, logg))
			})
		})

		r.Route("/wizard", func(r chi.Router) {
			r.Post("/start", controllers.WizardStart(deps.WizardService, logg))
			r.Get("/", controllers.WizardGet(deps.WizardService, logg))
			r.Post("/client", controllers.WizardSelectClient(deps.WizardService, logg))
			r.Post("/vehicle", controllers.WizardSelectVehicle(deps.WizardService, logg))
			r.Patch("/", controllers.WizardUpdate(deps.WizardService, logg))
			r.Post("/advance", controllers.WizardAdvance(deps.WizardService, logg))
			r.Post("/back", controllers.WizardBack(deps.WizardService, logg))
			r.Post("/submit", controllers.WizardSubmit(deps.WizardService, logg))
			r.Delete("/", controllers.WizardDiscard(deps.WizardService, logg))
		})
	})

	return r
}
