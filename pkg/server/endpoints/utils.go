package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/unkani/unkani/pkg/identity"
	"github.com/unkani/unkani/pkg/server/middleware"
)

const contentTypeFHIR = "application/fhir+json"

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithFHIR(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", contentTypeFHIR)
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// clientIP returns the client address recorded by the authenticator, or the peer address
func clientIP(r *http.Request, trusted middleware.TrustFunc) string {
	if id, ok := identity.Get(r.Context()); ok && id.RemoteIP != nil {
		return id.RemoteIP.String()
	}
	if ip := middleware.ClientIP(r, trusted); ip != nil {
		return ip.String()
	}
	return ""
}

func currentIdentity(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	id, ok := identity.Get(r.Context())
	if !ok || id.User == nil {
		respondWithError(w, http.StatusUnauthorized, "Unable to determine identity")
		return nil, false
	}
	return id, true
}
