package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unkani/unkani/pkg/server"
	"github.com/unkani/unkani/pkg/server/store"
)

// StatusResponse represents the response from the / endpoint
type StatusResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
}

// HealthResponse represents the response from the /health endpoint
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

// RegisterStatusEndpoints registers the status and health endpoints
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/", handleStatus()).Methods("GET")
	s.Router.HandleFunc("/health", handleHealth(s.Stores.Health, s.Redis)).Methods("GET")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, StatusResponse{
			Status:     "ok",
			Service:    "unkani",
			Version:    server.Version,
			APIVersion: "v1",
		})
	}
}

func handleHealth(healthStore store.HealthStore, rdb redis.Cmdable) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		response := HealthResponse{Status: "ok", Database: "ok"}
		code := http.StatusOK

		if err := healthStore.CheckConnectivity(ctx); err != nil {
			response.Status = "error"
			response.Database = "database connectivity check failed"
			code = http.StatusServiceUnavailable
		}

		if rdb != nil {
			response.Redis = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				response.Status = "error"
				response.Redis = "redis connectivity check failed"
				code = http.StatusServiceUnavailable
			}
		}

		respondWithJSON(w, code, response)
	}
}
