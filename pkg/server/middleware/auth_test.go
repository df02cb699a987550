package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/unkani/unkani/pkg/identity"
	"github.com/unkani/unkani/pkg/model"
)

type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) VerifyToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type MockPasswordAuthenticator struct {
	mock.Mock
}

func (m *MockPasswordAuthenticator) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	args := m.Called(ctx, login, password)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func identityHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(id.Username))
	})
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestTokenAuthenticator(t *testing.T) {
	user := &model.User{ID: 7, Username: "alice", Role: &model.Role{Name: model.RoleUser, Permissions: model.PermissionViewFHIR}}

	verifier := &MockTokenVerifier{}
	verifier.On("VerifyToken", mock.Anything, "good").Return(user, nil)
	verifier.On("VerifyToken", mock.Anything, "bad").Return(nil, errors.New("invalid or expired token"))

	handler := NewTokenAuthenticator(verifier, nil).Middleware(identityHandler(t))

	tests := []struct {
		name      string
		header    string
		code      int
		body      string
		challenge string
	}{
		{name: "missing header", code: http.StatusUnauthorized, body: "Authorization missing", challenge: "Bearer"},
		{name: "wrong scheme", header: "Token token=abc", code: http.StatusUnauthorized, body: "Malformed authorization header", challenge: "Bearer"},
		{name: "empty token", header: "Bearer ", code: http.StatusUnauthorized, body: "Malformed authorization header", challenge: "Bearer"},
		{name: "invalid token", header: "Bearer bad", code: http.StatusUnauthorized, body: "Invalid or expired token", challenge: `Bearer error="invalid_token"`},
		{name: "valid token", header: "Bearer good", code: http.StatusOK},
		{name: "scheme is case insensitive", header: "bearer good", code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "alice", w.Body.String())
				return
			}
			assert.Equal(t, tt.body, errorMessage(t, w))
			assert.Equal(t, tt.challenge, w.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestTokenAuthenticator_SetsIdentity(t *testing.T) {
	user := &model.User{ID: 7, Username: "alice", Role: &model.Role{Name: model.RoleAdmin, Permissions: model.PermissionEditFHIR}}
	verifier := &MockTokenVerifier{}
	verifier.On("VerifyToken", mock.Anything, "good").Return(user, nil)

	var got *identity.Identity
	handler := NewTokenAuthenticator(verifier, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = identity.Get(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("Authorization", "Bearer good")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, uint(7), got.UserID)
	assert.Equal(t, identity.MethodToken, got.Method)
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.Equal(t, "10.1.2.3", got.RemoteIP.String())
	assert.Same(t, user, got.User)
}

func TestBasicAuthenticator(t *testing.T) {
	user := &model.User{ID: 7, Username: "alice"}
	authn := &MockPasswordAuthenticator{}
	authn.On("Authenticate", mock.Anything, "alice", "cat").Return(user, nil)
	authn.On("Authenticate", mock.Anything, "alice@example.com", "cat").Return(user, nil)
	authn.On("Authenticate", mock.Anything, "alice", "dog").Return(nil, errors.New("invalid credentials"))

	handler := NewBasicAuthenticator(authn, nil).Middleware(identityHandler(t))

	t.Run("missing credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, `Basic realm="unkani"`, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		req.SetBasicAuth("alice", "dog")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", errorMessage(t, w))
	})

	for _, login := range []string{"alice", "alice@example.com"} {
		t.Run("login with "+login, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", nil)
			req.SetBasicAuth(login, "cat")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "alice", w.Body.String())
		})
	}
}

func TestClientIP(t *testing.T) {
	trusted := func(ip string) bool { return ip == "10.0.0.1" || ip == "10.0.0.2" }

	tests := []struct {
		name    string
		remote  string
		xff     string
		trusted TrustFunc
		want    string
	}{
		{name: "peer address", remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "untrusted peer ignores header", remote: "192.0.2.1:1234", xff: "198.51.100.7", trusted: trusted, want: "192.0.2.1"},
		{name: "trusted peer uses header", remote: "10.0.0.1:1234", xff: "198.51.100.7", trusted: trusted, want: "198.51.100.7"},
		{name: "skips trusted hops", remote: "10.0.0.1:1234", xff: "203.0.113.9, 198.51.100.7, 10.0.0.2", trusted: trusted, want: "198.51.100.7"},
		{name: "all hops trusted", remote: "10.0.0.1:1234", xff: "10.0.0.2", trusted: trusted, want: "10.0.0.2"},
		{name: "garbage header", remote: "10.0.0.1:1234", xff: "nope", trusted: trusted, want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, ClientIP(req, tt.trusted).String())
		})
	}
}
