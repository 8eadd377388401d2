package api

import (
	"net/http"
	"time"

	"github.com/0xcafe-io/iz"
	"github.com/fatali-fataliyev/expense_tracker/internal/contextutil"
	"github.com/fatali-fataliyev/expense_tracker/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const traceHeader = "X-Trace-ID"

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

func NewRouter(api *Api) http.Handler {
	mux := chi.NewRouter()
	mux.Use(traceRequest)
	mux.Use(logRequest)
	mux.Use(middleware.Recoverer)

	// USER ENDPOINTS.
	mux.Post("/signup", iz.Bind(api.SaveUserHandler))   // Create User with personal account
	mux.Post("/login", iz.Bind(api.LoginUserHandler))   // Login User
	mux.Get("/check-token", iz.Bind(api.CheckToken))    // Check User Token
	mux.Get("/users/{id}", iz.Bind(api.GetUserHandler)) // User name by ID

	// ACCOUNT ENDPOINTS.
	mux.Get("/accounts/current/{userId}", iz.Bind(api.GetAdminAccountsHandler)) // Accounts the user administers
	mux.Get("/accounts/{accountId}/expenses", iz.Bind(api.GetExpensesHandler))  // Expenses of an account

	// EXPENSE ENDPOINTS.
	mux.Post("/add-expense", iz.Bind(api.SaveExpenseHandler)) // Create Expense

	mux.Get("/", iz.Bind(api.Health))
	mux.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return corsConf.Handler(mux)
}

func traceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := contextutil.WithTraceID(r.Context(), clientTraceID(r))
		w.Header().Set(traceHeader, contextutil.TraceIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientTraceID returns the X-Trace-ID header when it parses as a UUID and ""
// otherwise.
func clientTraceID(r *http.Request) string {
	raw := r.Header.Get(traceHeader)
	if _, err := uuid.Parse(raw); err != nil {
		return ""
	}
	return raw
}

func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		observeResponse(route, status, elapsed)

		logging.Logger.WithFields(logrus.Fields{
			"trace_id": contextutil.TraceIDFromContext(r.Context()),
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   status,
			"duration": elapsed.String(),
		}).Info("request handled")
	})
}
