package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/unkani/unkani/pkg/server"
	"github.com/unkani/unkani/pkg/server/middleware"
)

// APIPrefix is the path prefix of all versioned routes
const APIPrefix = "/api/v1"

// RegisterAll registers all API endpoints on the server
func RegisterAll(s *server.Server) {
	RegisterStatusEndpoints(s)
	RegisterWhoamiEndpoint(s)
	RegisterTokensEndpoints(s)
	RegisterUsersEndpoints(s)
	RegisterAuthEndpoints(s)
	RegisterFHIREndpoints(s)
}

func apiRouter(s *server.Server) *mux.Router {
	return s.Router.PathPrefix(APIPrefix).Subrouter()
}

func tokenAuth(s *server.Server) mux.MiddlewareFunc {
	return middleware.NewTokenAuthenticator(s.Accounts, s.TrustedProxy).Middleware
}

func basicAuth(s *server.Server) mux.MiddlewareFunc {
	return middleware.NewBasicAuthenticator(s.Accounts, s.TrustedProxy).Middleware
}

// rateLimit limits routes in scope with the configured requests per window.
// Without a limiter the routes are not limited.
func rateLimit(s *server.Server, scope string) mux.MiddlewareFunc {
	if s.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.NewRateLimiter(
		s.Limiter,
		scope,
		s.Config.RateLimitRequests,
		s.Config.RateLimitWindow(),
		s.TrustedProxy,
	).Middleware
}
