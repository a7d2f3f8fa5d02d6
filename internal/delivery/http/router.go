package http

import (
	"net/http"

	"vetclinic-portal/internal/delivery/http/handler"
	"vetclinic-portal/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router              *mux.Router
	calendarViewHandler *handler.CalendarViewHandler
	appointmentHandler  *handler.AppointmentHandler
	authHandler         *handler.AuthHandler
	healthHandler       *handler.HealthHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
	loggingMiddleware   *middleware.LoggingMiddleware
	metricsGatherer     prometheus.Gatherer
}

type RouterDeps struct {
	CalendarViewHandler *handler.CalendarViewHandler
	AppointmentHandler  *handler.AppointmentHandler
	AuthHandler         *handler.AuthHandler
	HealthHandler       *handler.HealthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	CORSMiddleware      *middleware.CORSMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	LoggingMiddleware   *middleware.LoggingMiddleware
	// MetricsGatherer defaults to the global prometheus registry.
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps RouterDeps) *Router {
	gatherer := deps.MetricsGatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		router:              mux.NewRouter(),
		calendarViewHandler: deps.CalendarViewHandler,
		appointmentHandler:  deps.AppointmentHandler,
		authHandler:         deps.AuthHandler,
		healthHandler:       deps.HealthHandler,
		authMiddleware:      deps.AuthMiddleware,
		corsMiddleware:      deps.CORSMiddleware,
		rateLimitMiddleware: deps.RateLimitMiddleware,
		loggingMiddleware:   deps.LoggingMiddleware,
		metricsGatherer:     gatherer,
	}
}

// Setup registers all routes. CORS and request logging wrap the whole router
// so preflight requests and unmatched paths pass through them too.
func (r *Router) Setup() http.Handler {
	r.router.Handle("/metrics", promhttp.HandlerFor(r.metricsGatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()
	api.Use(r.rateLimitMiddleware.Handle)
	api.Use(r.authMiddleware.Identify)

	// Health check
	api.HandleFunc("/health", r.healthHandler.Health).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/recover", r.authHandler.RecoverPassword).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)

	// Calendar views (public; choosing a doctor needs a session)
	api.HandleFunc("/calendar-views", r.calendarViewHandler.Open).Methods(http.MethodPost)
	views := api.PathPrefix("/calendar-views").Subrouter()
	views.HandleFunc("/{id}", r.calendarViewHandler.Get).Methods(http.MethodGet)
	views.HandleFunc("/{id}", r.calendarViewHandler.Close).Methods(http.MethodDelete)
	views.HandleFunc("/{id}/range", r.calendarViewHandler.SetDateRange).Methods(http.MethodPut)
	views.HandleFunc("/{id}/search", r.calendarViewHandler.Search).Methods(http.MethodPost)
	views.HandleFunc("/{id}/slot", r.calendarViewHandler.SelectSlot).Methods(http.MethodPost)
	views.HandleFunc("/{id}/slot", r.calendarViewHandler.CloseSlot).Methods(http.MethodDelete)
	views.HandleFunc("/{id}/doctor", r.calendarViewHandler.ChooseDoctor).Methods(http.MethodPost)
	views.HandleFunc("/{id}/booking", r.calendarViewHandler.UpdateBookingForm).Methods(http.MethodPatch)
	views.HandleFunc("/{id}/booking", r.calendarViewHandler.CancelBooking).Methods(http.MethodDelete)
	views.HandleFunc("/{id}/booking/submit", r.calendarViewHandler.SubmitBooking).Methods(http.MethodPost)

	// Appointments (protected)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("/upcoming", r.appointmentHandler.ListUpcoming).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPatch)

	return r.corsMiddleware.Handle(r.loggingMiddleware.Handle(r.router))
}
