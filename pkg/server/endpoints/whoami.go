package endpoints

import (
	"net/http"
	"time"

	"github.com/unkani/unkani/pkg/server"
)

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	UserID          uint       `json:"user_id"`
	Username        string     `json:"username"`
	Role            string     `json:"role"`
	AppGroups       []string   `json:"app_groups"`
	Confirmed       bool       `json:"confirmed"`
	Administrator   bool       `json:"administrator"`
	ClientIP        string     `json:"client_ip"`
	TokenExpiration *time.Time `json:"token_expiration,omitempty"`
	LastSeen        *time.Time `json:"last_seen,omitempty"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	whoamiRouter := apiRouter(s).PathPrefix("/whoami").Subrouter()
	whoamiRouter.Use(tokenAuth(s))

	whoamiRouter.HandleFunc("", handleWhoami()).Methods("GET")
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := currentIdentity(w, r)
		if !ok {
			return
		}

		response := WhoamiResponse{
			UserID:        id.UserID,
			Username:      id.Username,
			Role:          id.Role,
			AppGroups:     id.User.AppGroupNames(),
			Confirmed:     id.User.Confirmed,
			Administrator: id.IsAdministrator(),
			LastSeen:      id.User.LastSeen,
		}
		if id.RemoteIP != nil {
			response.ClientIP = id.RemoteIP.String()
		}
		if !id.ExpiresAt.IsZero() {
			exp := id.ExpiresAt
			response.TokenExpiration = &exp
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}
