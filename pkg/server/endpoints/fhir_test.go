package endpoints

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server/store"
)

func administrativeGender() *model.ValueSet {
	return &model.ValueSet{
		ID:         1,
		ResourceID: "administrative-gender",
		URL:        "http://hl7.org/fhir/ValueSet/administrative-gender",
		Version:    "4.0.1",
		Name:       "AdministrativeGender",
		Status:     "active",
		Concepts: []model.ValueSetConcept{
			{System: "http://hl7.org/fhir/administrative-gender", Code: "male", Display: "Male", Position: 0},
			{System: "http://hl7.org/fhir/administrative-gender", Code: "female", Display: "Female", Position: 1},
		},
	}
}

func TestGetValueSet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 60, userRole))
		ts.ValueSets.On("FindByResourceID", mock.Anything, "administrative-gender").Return(administrativeGender(), nil)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil), token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/fhir+json", w.Header().Get("Content-Type"))
		assert.Equal(t, "http://localhost:5000/api/v1/fhir/ValueSet/administrative-gender", w.Header().Get("Location"))
		assert.NotEmpty(t, w.Header().Get("ETag"))
		assert.Equal(t, "private, max-age=86400", w.Header().Get("Cache-Control"))
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))

		var vs model.FHIRValueSet
		decodeBody(t, w, &vs)
		assert.Equal(t, "ValueSet", vs.ResourceType)
		assert.Equal(t, "administrative-gender", vs.ID)
		require.NotNil(t, vs.Compose)
		require.Len(t, vs.Compose.Include, 1)
		assert.Len(t, vs.Compose.Include[0].Concept, 2)
		assert.Equal(t, "male", vs.Compose.Include[0].Concept[0].Code)
	})

	t.Run("not found", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 60, userRole))
		ts.ValueSets.On("FindByResourceID", mock.Anything, "missing").Return(nil, store.ErrNotFound)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/missing", nil), token)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ValueSet missing not found", errorOf(t, w))
		assert.Empty(t, w.Header().Get("ETag"))
	})

	t.Run("store failure", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 60, userRole))
		ts.ValueSets.On("FindByResourceID", mock.Anything, "administrative-gender").Return(nil, errors.New("connection reset"))

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil), token)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("escaped resource id", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 60, userRole))
		vs := administrativeGender()
		vs.ResourceID = "v3 ActCode"
		ts.ValueSets.On("FindByResourceID", mock.Anything, "v3 ActCode").Return(vs, nil)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/v3%20ActCode", nil), token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:5000/api/v1/fhir/ValueSet/v3%20ActCode", w.Header().Get("Location"))
	})

	t.Run("requires token", func(t *testing.T) {
		ts := newMockTestServer(t)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		ts.ValueSets.AssertNotCalled(t, "FindByResourceID", mock.Anything, mock.Anything)
	})

	t.Run("invalid token", func(t *testing.T) {
		ts := newMockTestServer(t)
		ts.Users.On("FindByTokenHash", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil), "bogus")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, `Bearer error="invalid_token"`, w.Header().Get("WWW-Authenticate"))
	})
}

func TestGetValueSetConditional(t *testing.T) {
	ts := newMockTestServer(t)
	token := ts.login(newUser(t, 61, userRole))
	ts.ValueSets.On("FindByResourceID", mock.Anything, "administrative-gender").Return(administrativeGender(), nil)

	w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")

	req := httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil)
	req.Header.Set("If-None-Match", etag)
	w = ts.do(req, token)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Equal(t, etag, w.Header().Get("ETag"))
	assert.Empty(t, w.Body.String())

	req = httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil)
	req.Header.Set("If-Match", `"stale"`)
	w = ts.do(req, token)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestValueSetRateLimit(t *testing.T) {
	ts := newMockTestServer(t)
	token := ts.login(newUser(t, 62, userRole))
	ts.ValueSets.On("FindByResourceID", mock.Anything, "administrative-gender").Return(administrativeGender(), nil)

	for i := 0; i < 5; i++ {
		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil), token)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil), token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Rate limit exceeded", errorOf(t, w))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	ts.ValueSets.AssertNumberOfCalls(t, "FindByResourceID", 5)

	// Limits are per user
	other := ts.login(newUser(t, 63, userRole))
	w = ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet/administrative-gender", nil), other)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchValueSets(t *testing.T) {
	t.Run("first page", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 70, userRole))
		ts.ValueSets.On("Count", mock.Anything).Return(int64(3), nil)
		ts.ValueSets.On("List", mock.Anything, 2, 0).Return([]model.ValueSet{
			*administrativeGender(),
			{ResourceID: "marital-status", Status: "active"},
		}, nil)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet?_count=2", nil), token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/fhir+json", w.Header().Get("Content-Type"))

		var bundle model.FHIRBundle
		decodeBody(t, w, &bundle)
		assert.Equal(t, "Bundle", bundle.ResourceType)
		assert.Equal(t, "searchset", bundle.Type)
		assert.Equal(t, int64(3), bundle.Total)
		require.Len(t, bundle.Entry, 2)
		assert.Equal(t, "http://localhost:5000/api/v1/fhir/ValueSet/administrative-gender", bundle.Entry[0].FullURL)

		resource, ok := bundle.Entry[0].Resource.(map[string]interface{})
		require.True(t, ok)
		assert.NotContains(t, resource, "compose")

		require.Len(t, bundle.Link, 2)
		assert.Equal(t, "self", bundle.Link[0].Relation)
		assert.Equal(t, "next", bundle.Link[1].Relation)
		assert.Equal(t, "http://localhost:5000/api/v1/fhir/ValueSet?_count=2&_offset=2", bundle.Link[1].URL)
	})

	t.Run("last page", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 70, userRole))
		ts.ValueSets.On("Count", mock.Anything).Return(int64(3), nil)
		ts.ValueSets.On("List", mock.Anything, 2, 2).Return([]model.ValueSet{{ResourceID: "marital-status"}}, nil)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet?_count=2&_offset=2", nil), token)
		require.Equal(t, http.StatusOK, w.Code)

		var bundle model.FHIRBundle
		decodeBody(t, w, &bundle)
		assert.Len(t, bundle.Entry, 1)
		assert.Len(t, bundle.Link, 1)
	})

	t.Run("count only", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 70, userRole))
		ts.ValueSets.On("Count", mock.Anything).Return(int64(42), nil)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet?_count=0", nil), token)
		require.Equal(t, http.StatusOK, w.Code)

		var bundle model.FHIRBundle
		decodeBody(t, w, &bundle)
		assert.Equal(t, int64(42), bundle.Total)
		assert.Empty(t, bundle.Entry)
		ts.ValueSets.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("page size is capped", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 70, userRole))
		ts.ValueSets.On("Count", mock.Anything).Return(int64(0), nil)
		ts.ValueSets.On("List", mock.Anything, maxPageSize, 0).Return([]model.ValueSet{}, nil)

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet?_count=5000", nil), token)
		assert.Equal(t, http.StatusOK, w.Code)
		ts.ValueSets.AssertExpectations(t)
	})

	t.Run("invalid count", func(t *testing.T) {
		ts := newMockTestServer(t)
		token := ts.login(newUser(t, 70, userRole))

		w := ts.do(httptest.NewRequest("GET", "/api/v1/fhir/ValueSet?_count=-1", nil), token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid _count parameter", errorOf(t, w))
	})
}
