package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/AgentChief/accredis/handlers"
	"github.com/AgentChief/accredis/metrics"
	"github.com/AgentChief/accredis/middleware"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly  = []string{"GET", "OPTIONS"}
	MethodsPostOnly = []string{"POST", "OPTIONS"}
	MethodsPutOnly  = []string{"PUT", "OPTIONS"}
	MethodsGetPost  = []string{"GET", "POST", "OPTIONS"}
)

// Route grouping constants
const (
	PathAPI     = "/api"
	PathAuth    = "/api/auth"
	PathHealth  = "/health"
	PathMetrics = "/metrics"
	PathWS      = "/ws"
)

// Options carries the cross-cutting pieces the router wires around the handlers.
type Options struct {
	Logger      zerolog.Logger
	CORSOrigins []string
	AuthLimiter *middleware.RateLimiter
	Auth        middleware.Authenticator
}

// NewRouter builds the full HTTP surface.
func NewRouter(h *handlers.Handler, opts Options) *mux.Router {
	r := mux.NewRouter()

	// Global middlewares (order matters!)
	r.Use(middleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(opts.Logger))
	r.Use(middleware.LoggingMiddleware(opts.Logger))
	r.Use(metrics.Instrument)
	r.Use(middleware.CorsMiddleware(opts.CORSOrigins))

	RegisterRoutes(r, h, opts)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})
	return r
}

func RegisterRoutes(r *mux.Router, h *handlers.Handler, opts Options) {
	// ====================
	// PUBLIC
	// ====================
	r.HandleFunc(PathHealth, h.HealthCheck).Methods(MethodsGetOnly...)
	r.Handle(PathMetrics, metrics.Handler()).Methods(MethodsGetOnly...)
	r.HandleFunc(PathWS, h.LiveUpdates).Methods("GET")

	limited := func(fn http.HandlerFunc) http.Handler {
		if opts.AuthLimiter == nil {
			return fn
		}
		return opts.AuthLimiter.Middleware(fn)
	}
	r.Handle(PathAuth+"/register", limited(h.Register)).Methods(MethodsPostOnly...)
	r.Handle(PathAuth+"/login", limited(h.Login)).Methods(MethodsPostOnly...)

	// ====================
	// PROTECTED API ROUTES (Require authentication)
	// ====================
	api := r.PathPrefix(PathAPI).Subrouter()
	api.Use(skipPreflight(middleware.AuthMiddleware(opts.Auth, opts.Logger)))

	api.HandleFunc("/auth/me", h.Me).Methods(MethodsGetOnly...)

	// CLINICS
	api.HandleFunc("/clinics", h.CreateClinic).Methods(MethodsPostOnly...)
	api.HandleFunc("/clinics", h.ListClinics).Methods(MethodsGetOnly...)
	api.HandleFunc("/clinics/{id}", h.GetClinic).Methods(MethodsGetOnly...)

	// DOCUMENTS
	api.HandleFunc("/documents/generate", h.GenerateDocument).Methods(MethodsPostOnly...)
	api.HandleFunc("/documents/upload", h.UploadDocument).Methods(MethodsPostOnly...)
	api.HandleFunc("/documents", h.ListDocuments).Methods(MethodsGetOnly...)
	api.HandleFunc("/documents/{id}", h.GetDocument).Methods(MethodsGetOnly...)
	api.HandleFunc("/documents/{id}/status", h.UpdateDocumentStatus).Methods(MethodsPutOnly...)
	api.HandleFunc("/documents/{id}/audit", h.AuditDocument).Methods(MethodsPostOnly...)
	api.HandleFunc("/documents/{id}/audits", h.ListDocumentAudits).Methods(MethodsGetOnly...)

	// RISKS
	api.HandleFunc("/risks", h.CreateRisk).Methods(MethodsPostOnly...)
	api.HandleFunc("/risks", h.ListRisks).Methods(MethodsGetOnly...)
	api.HandleFunc("/risks/{id}", h.GetRisk).Methods(MethodsGetOnly...)

	// SETTINGS
	api.HandleFunc("/settings", h.GetSettings).Methods(MethodsGetOnly...)
	api.HandleFunc("/settings", h.SaveSettings).Methods(MethodsPostOnly...)
}

// skipPreflight lets CORS preflight requests through without credentials.
func skipPreflight(mw func(http.Handler) http.Handler) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		protected := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}
