package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/unkani/unkani/pkg/audit"
	"github.com/unkani/unkani/pkg/identity"
	"github.com/unkani/unkani/pkg/model"
)

// TokenVerifier resolves a bearer API token to its user
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*model.User, error)
}

// PasswordAuthenticator resolves a login and password to a user
type PasswordAuthenticator interface {
	Authenticate(ctx context.Context, login, password string) (*model.User, error)
}

// TokenAuthenticator is middleware that requires a valid bearer API token
type TokenAuthenticator struct {
	Verifier TokenVerifier
	Trusted  TrustFunc
}

// NewTokenAuthenticator creates a new bearer token middleware
func NewTokenAuthenticator(verifier TokenVerifier, trusted TrustFunc) *TokenAuthenticator {
	return &TokenAuthenticator{Verifier: verifier, Trusted: trusted}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, challenge, message string) {
	w.Header().Set("WWW-Authenticate", challenge)
	respondWithError(w, http.StatusUnauthorized, message)
}

// Middleware returns an HTTP middleware that sets the request identity
func (a *TokenAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := ClientIP(r, a.Trusted)

		if r.Header.Get("Authorization") == "" {
			unauthorized(w, "Bearer", "Authorization missing")
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "Bearer", "Malformed authorization header")
			return
		}

		user, err := a.Verifier.VerifyToken(r.Context(), token)
		if err != nil {
			audit.Log(audit.AuthenticateEvent{
				User:         "unknown",
				ClientIP:     clientIP.String(),
				Method:       identity.MethodToken,
				ErrorMessage: err.Error(),
			})
			unauthorized(w, `Bearer error="invalid_token"`, "Invalid or expired token")
			return
		}

		id := identity.FromUser(user, identity.MethodToken).
			WithRemoteIP(clientIP).
			WithRequestID(RequestID(r.Context()))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// BasicAuthenticator is middleware that requires HTTP basic credentials.
// The username may be a username or an email address.
type BasicAuthenticator struct {
	Authenticator PasswordAuthenticator
	Trusted       TrustFunc
	Realm         string
}

// NewBasicAuthenticator creates a new basic auth middleware
func NewBasicAuthenticator(authenticator PasswordAuthenticator, trusted TrustFunc) *BasicAuthenticator {
	return &BasicAuthenticator{Authenticator: authenticator, Trusted: trusted, Realm: "unkani"}
}

// Middleware returns an HTTP middleware that sets the request identity
func (a *BasicAuthenticator) Middleware(next http.Handler) http.Handler {
	challenge := `Basic realm="` + a.Realm + `"`

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := ClientIP(r, a.Trusted)

		login, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w, challenge, "Authorization missing")
			return
		}

		user, err := a.Authenticator.Authenticate(r.Context(), login, password)
		if err != nil {
			audit.Log(audit.AuthenticateEvent{
				User:         login,
				ClientIP:     clientIP.String(),
				Method:       identity.MethodPassword,
				ErrorMessage: err.Error(),
			})
			unauthorized(w, challenge, "Invalid credentials")
			return
		}

		audit.Log(audit.AuthenticateEvent{
			User:     user.Username,
			ClientIP: clientIP.String(),
			Method:   identity.MethodPassword,
			Success:  true,
		})

		id := identity.FromUser(user, identity.MethodPassword).
			WithRemoteIP(clientIP).
			WithRequestID(RequestID(r.Context()))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}
