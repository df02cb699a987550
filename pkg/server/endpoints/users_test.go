package endpoints

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server/store"
)

func registerRequest(body string) *http.Request {
	req := httptest.NewRequest("POST", "/api/v1/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister(t *testing.T) {
	t.Run("creates unconfirmed user with defaults", func(t *testing.T) {
		ts := newMockTestServer(t)
		ts.Users.On("EmailInUse", mock.Anything, "jane@example.com").Return(false, nil)
		ts.Roles.On("Default", mock.Anything).Return(userRole, nil)
		ts.AppGroups.On("Default", mock.Anything).Return(unkani, nil)
		ts.Users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		ts.Mailer.On("SendConfirmation", mock.Anything, mock.AnythingOfType("*model.User"), mock.AnythingOfType("string")).Return(nil)

		w := ts.do(registerRequest(`{
			"username": "jane",
			"password": "correct horse",
			"email": "jane@example.com",
			"first_name": "Jane",
			"last_name": "Doe",
			"phone": "555-0100",
			"dob": "1990-04-01"
		}`), "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "http://localhost:5000/api/v1/users/100", w.Header().Get("Location"))

		var resp UserResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, uint(100), resp.ID)
		assert.Equal(t, "jane", resp.Username)
		assert.Equal(t, "jane@example.com", resp.Email)
		assert.Equal(t, "1990-04-01", resp.DOB)
		assert.False(t, resp.Confirmed)
		assert.True(t, resp.Active)
		assert.Equal(t, model.RoleUser, resp.Role)
		assert.Equal(t, []string{"Unkani"}, resp.AppGroups)
		require.NotNil(t, resp.Phone)
		assert.Equal(t, "555-0100", resp.Phone.Number)
		assert.Equal(t, model.PhoneTypeMobile, resp.Phone.Type)

		ts.Mailer.AssertExpectations(t)
	})

	t.Run("mail failure still registers", func(t *testing.T) {
		ts := newMockTestServer(t)
		ts.Users.On("EmailInUse", mock.Anything, "jane@example.com").Return(false, nil)
		ts.Roles.On("Default", mock.Anything).Return(userRole, nil)
		ts.AppGroups.On("Default", mock.Anything).Return(unkani, nil)
		ts.Users.On("Create", mock.Anything, mock.Anything).Return(nil)
		ts.Mailer.On("SendConfirmation", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		w := ts.do(registerRequest(`{"username":"jane","password":"correct horse","email":"jane@example.com"}`), "")
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("email in use", func(t *testing.T) {
		ts := newMockTestServer(t)
		ts.Users.On("EmailInUse", mock.Anything, "jane@example.com").Return(true, nil)

		w := ts.do(registerRequest(`{"username":"jane","password":"correct horse","email":"jane@example.com"}`), "")
		assert.Equal(t, http.StatusConflict, w.Code)
		ts.Users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("username taken", func(t *testing.T) {
		ts := newMockTestServer(t)
		ts.Users.On("EmailInUse", mock.Anything, "jane@example.com").Return(false, nil)
		ts.Roles.On("Default", mock.Anything).Return(userRole, nil)
		ts.AppGroups.On("Default", mock.Anything).Return(unkani, nil)
		ts.Users.On("Create", mock.Anything, mock.Anything).Return(store.ErrConflict)

		w := ts.do(registerRequest(`{"username":"jane","password":"correct horse","email":"jane@example.com"}`), "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"username":`},
		{"unknown field", `{"username":"jane","password":"correct horse","email":"jane@example.com","role":"Admin"}`},
		{"missing email", `{"username":"jane","password":"correct horse"}`},
		{"invalid email", `{"username":"jane","password":"correct horse","email":"jane"}`},
		{"short password", `{"username":"jane","password":"short","email":"jane@example.com"}`},
		{"invalid dob", `{"username":"jane","password":"correct horse","email":"jane@example.com","dob":"01/04/1990"}`},
		{"first name too long", `{"username":"jane","password":"correct horse","email":"jane@example.com","first_name":"` + strings.Repeat("a", 65) + `"}`},
		{"last name too long", `{"username":"jane","password":"correct horse","email":"jane@example.com","last_name":"` + strings.Repeat("a", 65) + `"}`},
		{"email too long", `{"username":"jane","password":"correct horse","email":"jane@` + strings.Repeat("abcdefghij.", 12) + `com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newMockTestServer(t)

			w := ts.do(registerRequest(tt.body), "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, errorOf(t, w))
			ts.Users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestGetUser(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		ts := newMockTestServer(t)
		u := newUser(t, 11, userRole)
		token := ts.login(u)
		ts.Users.On("FindByID", mock.Anything, uint(11)).Return(u, nil)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/users/11", nil), token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "http://localhost:5000/api/v1/users/11", w.Header().Get("Location"))
		assert.NotEmpty(t, w.Header().Get("ETag"))

		var resp UserResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, "user11", resp.Username)
		assert.Equal(t, "user11@example.com", resp.Email)
	})

	t.Run("other user without permission", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 11, userRole))

		w := ts.do(httptest.NewRequest("GET", "/api/v1/users/12", nil), token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		ts.Users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("other user as admin", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 1, adminRole))
		ts.Users.On("FindByID", mock.Anything, uint(12)).Return(newUser(t, 12, userRole), nil)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/users/12", nil), token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 1, adminRole))
		ts.Users.On("FindByID", mock.Anything, uint(99)).Return(nil, store.ErrNotFound)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/users/99", nil), token)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", errorOf(t, w))
	})

	t.Run("not modified", func(t *testing.T) {
		ts := newMockTestServer(t)
		u := newUser(t, 11, userRole)
		token := ts.login(u)
		ts.Users.On("FindByID", mock.Anything, uint(11)).Return(u, nil)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/users/11", nil), token)
		require.Equal(t, http.StatusOK, w.Code)
		etag := w.Header().Get("ETag")

		firstSeen := *u.LastSeen

		// Every authenticated request moves last_seen; the representation must not
		time.Sleep(2 * time.Millisecond)
		req := httptest.NewRequest("GET", "/api/v1/users/11", nil)
		req.Header.Set("If-None-Match", etag)
		w = ts.do(req, token)
		assert.Equal(t, http.StatusNotModified, w.Code)
		assert.Empty(t, w.Body.String())
		assert.True(t, u.LastSeen.After(firstSeen))
	})
}
