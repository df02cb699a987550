package store

import (
	"context"

	"github.com/unkani/unkani/pkg/model"
)

// ValueSetsStore abstracts FHIR ValueSet storage operations
type ValueSetsStore interface {
	// FindByResourceID returns the value set with its concepts in position order.
	// Returns ErrNotFound if it doesn't exist.
	FindByResourceID(ctx context.Context, resourceID string) (*model.ValueSet, error)

	// List returns value sets without concepts, ordered by resource id
	List(ctx context.Context, limit, offset int) ([]model.ValueSet, error)

	// Count returns the number of stored value sets
	Count(ctx context.Context) (int64, error)

	// Upsert creates or replaces a value set and its concepts by resource id
	Upsert(ctx context.Context, vs *model.ValueSet) error
}
