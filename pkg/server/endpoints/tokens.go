package endpoints

import (
	"net/http"
	"time"

	"github.com/unkani/unkani/pkg/account"
	"github.com/unkani/unkani/pkg/audit"
	"github.com/unkani/unkani/pkg/server"
	"github.com/unkani/unkani/pkg/server/middleware"
)

// TokenResponse represents a newly issued API token
type TokenResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

// RegisterTokensEndpoints registers API token issue and revoke.
// Issuing requires basic credentials, revoking the token itself.
func RegisterTokensEndpoints(s *server.Server) {
	api := apiRouter(s)

	issueRouter := api.Path("/tokens").Methods("POST").Subrouter()
	issueRouter.Use(basicAuth(s))
	issueRouter.HandleFunc("", handleIssueToken(s.Accounts, s.TrustedProxy))

	revokeRouter := api.Path("/tokens").Methods("DELETE").Subrouter()
	revokeRouter.Use(tokenAuth(s))
	revokeRouter.HandleFunc("", handleRevokeToken(s.Accounts, s.TrustedProxy))
}

func handleIssueToken(accounts *account.Service, trusted middleware.TrustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := currentIdentity(w, r)
		if !ok {
			return
		}

		token, expiration, err := accounts.IssueToken(r.Context(), id.User)
		audit.Log(audit.TokenEvent{
			User:      id.Username,
			ClientIP:  clientIP(r, trusted),
			Operation: "issue",
			Success:   err == nil,
		})
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
			return
		}

		respondWithJSON(w, http.StatusOK, TokenResponse{Token: token, Expiration: expiration})
	}
}

func handleRevokeToken(accounts *account.Service, trusted middleware.TrustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := currentIdentity(w, r)
		if !ok {
			return
		}

		err := accounts.RevokeToken(r.Context(), id.User)
		audit.Log(audit.TokenEvent{
			User:      id.Username,
			ClientIP:  clientIP(r, trusted),
			Operation: "revoke",
			Success:   err == nil,
		})
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to revoke token")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
