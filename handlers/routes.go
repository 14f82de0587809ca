// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods, handlers, and rate limit tier

package handlers

import (
	"net/http"

	"github.com/markalston/hived-validator/middleware"
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL pattern (e.g., "/api/v1/virtualclusters/{vc}/cells")
	Handler http.HandlerFunc // Handler function
	Write   bool             // counts against the write rate limit tier
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Validation
		{Method: http.MethodPost, Path: "/api/v1/jobs/validate", Handler: h.Validate, Write: true},
		{Method: http.MethodPost, Path: "/api/v1/jobs/validate/batch", Handler: h.ValidateBatch, Write: true},

		// Topology
		{Method: http.MethodGet, Path: "/api/v1/virtualclusters/{vc}/cells", Handler: h.VirtualClusterCells},
	}
}

// NewServeMux registers every route with recovery, logging, CORS, and the
// route's rate limit tier, outermost first. Preflight requests are routed
// to the same chain so CORS can answer them.
func NewServeMux(h *Handler, allowedOrigins []string, limits middleware.Limits) *http.ServeMux {
	mux := http.NewServeMux()
	cors := middleware.CORS(allowedOrigins)

	preflight := make(map[string]bool)
	for _, route := range h.Routes() {
		limiter := limits.Default
		if route.Write {
			limiter = limits.Write
		}
		handler := middleware.Chain(route.Handler,
			middleware.Recover,
			middleware.LogRequest,
			cors,
			middleware.RateLimit(limiter, middleware.ClientIP),
		)
		mux.HandleFunc(route.Method+" "+route.Path, handler)

		if !preflight[route.Path] {
			preflight[route.Path] = true
			mux.HandleFunc(http.MethodOptions+" "+route.Path, middleware.Chain(route.Handler, middleware.LogRequest, cors))
		}
	}
	return mux
}
