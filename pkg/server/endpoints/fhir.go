package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/unkani/unkani/pkg/audit"
	"github.com/unkani/unkani/pkg/identity"
	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server"
	"github.com/unkani/unkani/pkg/server/middleware"
	"github.com/unkani/unkani/pkg/server/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RegisterFHIREndpoints registers the FHIR ValueSet read and search routes.
// Both require a token, are rate limited per user and carry ETags.
func RegisterFHIREndpoints(s *server.Server) {
	valueSets := s.Stores.ValueSets
	baseURL := strings.TrimRight(s.Config.BaseURL, "/") + APIPrefix + "/fhir"

	fhirRouter := apiRouter(s).PathPrefix("/fhir").Subrouter()
	fhirRouter.Use(tokenAuth(s), rateLimit(s, "fhir"), middleware.ETag)

	fhirRouter.HandleFunc("/ValueSet", handleSearchValueSets(valueSets, baseURL)).Methods("GET", "HEAD")
	fhirRouter.HandleFunc("/ValueSet/{resource_id}", handleGetValueSet(valueSets, baseURL, s.TrustedProxy)).Methods("GET", "HEAD")
}

func handleGetValueSet(valueSets store.ValueSetsStore, baseURL string, trusted middleware.TrustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resourceID, err := url.PathUnescape(mux.Vars(r)["resource_id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid resource id")
			return
		}

		event := audit.FetchEvent{
			ClientIP:     clientIP(r, trusted),
			ResourceType: model.ResourceTypeValueSet,
			ResourceID:   resourceID,
		}
		if id, ok := identity.Get(r.Context()); ok {
			event.User = id.Username
		}

		vs, err := valueSets.FindByResourceID(r.Context(), resourceID)
		if err != nil {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, fmt.Sprintf("ValueSet %s not found", resourceID))
				return
			}
			zerolog.Ctx(r.Context()).Error().Err(err).Str("resource_id", resourceID).Msg("Failed to load ValueSet")
			respondWithError(w, http.StatusInternalServerError, "Failed to load ValueSet")
			return
		}

		event.Success = true
		audit.Log(event)

		w.Header().Set("Location", baseURL+"/ValueSet/"+url.PathEscape(vs.ResourceID))
		respondWithFHIR(w, http.StatusOK, vs.FHIR())
	}
}

func pageParam(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

func handleSearchValueSets(valueSets store.ValueSetsStore, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := pageParam(r, "_count", defaultPageSize, maxPageSize)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		offset, err := pageParam(r, "_offset", 0, 0)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		total, err := valueSets.Count(r.Context())
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to search ValueSets")
			return
		}

		page := func(offset int) string {
			return fmt.Sprintf("%s/ValueSet?_count=%d&_offset=%d", baseURL, count, offset)
		}

		bundle := model.NewSearchBundle(page(offset), total)
		if count > 0 {
			sets, err := valueSets.List(r.Context(), count, offset)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, "Failed to search ValueSets")
				return
			}
			for i := range sets {
				bundle.Entry = append(bundle.Entry, model.FHIRBundleEntry{
					FullURL:  baseURL + "/ValueSet/" + url.PathEscape(sets[i].ResourceID),
					Resource: sets[i].Summary(),
				})
			}
			if int64(offset+count) < total {
				bundle.Link = append(bundle.Link, model.FHIRBundleLink{Relation: "next", URL: page(offset + count)})
			}
		}

		w.Header().Set("Location", baseURL+"/ValueSet")
		respondWithFHIR(w, http.StatusOK, bundle)
	}
}
