// Package store provides storage abstractions for the unkani server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints and the account service to be decoupled from the
// specific database implementation.
//
// # Available Stores
//
//   - UsersStore: users with role, app groups and contact details
//   - RolesStore, AppGroupsStore: lookup, defaults and seeding
//   - ValueSetsStore: FHIR ValueSet resources
//   - HealthStore: database connectivity
//
// # Errors
//
// Implementations return ErrNotFound and ErrConflict, possibly wrapped:
//
//	user, err := users.FindByID(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	    // Handle not found
//	}
package store
