package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pickspot/vendor-portal/api/controllers"
	"github.com/pickspot/vendor-portal/api/middleware"
	"github.com/pickspot/vendor-portal/api/pages"
	sessionpkg "github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/internal/upstream"
	"github.com/pickspot/vendor-portal/pkg/config"
	"github.com/pickspot/vendor-portal/pkg/enums"
	"github.com/pickspot/vendor-portal/pkg/logger"
	"github.com/pickspot/vendor-portal/pkg/redis"
)

const (
	entryPath     = "/"
	landingPath   = "/dashboard"
	adminPath     = "/admin"
	agentPath     = "/agent"
	suspendedPath = "/suspended"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	upstreamClient *upstream.Client,
	coordinator *sessionpkg.Coordinator,
	renderer *pages.Renderer,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.WithSession(cfg.Cookie, coordinator),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginPhoneLimit,
	)
	resetPolicy := middleware.NewAuthRateLimitPolicy(
		"reset",
		cfg.AuthRateLimit.ResetWindow,
		cfg.AuthRateLimit.ResetIPLimit,
		cfg.AuthRateLimit.ResetPhoneLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"redis": redisClient,
		}, logg))
	})

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(upstreamClient, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/signup", controllers.Signup(upstreamClient, logg))
			r.With(middleware.AuthRateLimit(resetPolicy, redisClient, logg)).Post("/forgot-password", controllers.ForgotPassword(upstreamClient, logg))
			r.With(middleware.AuthRateLimit(resetPolicy, redisClient, logg)).Post("/verify-reset-code", controllers.VerifyResetCode(upstreamClient, logg))
			r.With(middleware.AuthRateLimit(resetPolicy, redisClient, logg)).Post("/reset-password", controllers.ResetPassword(upstreamClient, logg))
			r.Post("/logout", controllers.Logout(upstreamClient, coordinator, cfg.Cookie, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity(logg))

			r.Get("/me", controllers.Me(logg))
			r.Get("/redemptions", controllers.ListRedemptions(upstreamClient, logg))
			r.Patch("/redemptions/{handle}", controllers.Redeem(upstreamClient, logg))

			r.With(middleware.RequireRoles(logg, enums.RoleAgent, enums.RoleAdmin)).
				Post("/vendors", controllers.CreateVendor(upstreamClient, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.RoleAdmin))
				r.Get("/vendors", controllers.ListVendors(upstreamClient, logg))
				r.Get("/vendors/{vendorID}/redemptions", controllers.VendorRedemptions(upstreamClient, logg))
				r.Patch("/vendors/{vendorID}/suspend", controllers.SuspendVendor(upstreamClient, logg))
				r.Post("/payouts", controllers.PayUsers(upstreamClient, logg))
			})
		})
	})

	// Public pages bounce signed-in visitors to the landing page.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RedirectAuthenticated(landingPath))
		r.Get(entryPath, renderer.Page("login.html", "Sign in"))
		r.Get("/forgot-password", renderer.Page("forgot_password.html", "Reset password"))
	})

	// Protected pages go through the guard and identity routing.
	r.Group(func(r chi.Router) {
		r.Use(
			middleware.Guard(entryPath, logg),
			middleware.PageIdentity(entryPath, landingPath, adminPath, agentPath, suspendedPath, logg),
		)
		r.Get(landingPath, renderer.Page("dashboard.html", "Dashboard"))
		r.Get("/settings", renderer.Page("settings.html", "Settings"))
		r.Get(adminPath, renderer.Page("admin.html", "Vendors"))
		r.Get(agentPath, renderer.Page("agent.html", "Agent workspace"))
		r.Get(suspendedPath, renderer.Page("suspended.html", "Account suspended"))
	})

	return r
}
