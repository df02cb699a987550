package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server/store"
)

// Ensure ValueSetsStore implements store.ValueSetsStore
var _ store.ValueSetsStore = (*ValueSetsStore)(nil)

const conceptBatchSize = 500

// ValueSetsStore implements store.ValueSetsStore using GORM
type ValueSetsStore struct {
	db *gorm.DB
}

// NewValueSetsStore creates a new ValueSetsStore
func NewValueSetsStore(db *gorm.DB) *ValueSetsStore {
	return &ValueSetsStore{db: db}
}

// FindByResourceID returns the value set with its concepts in position order
func (s *ValueSetsStore) FindByResourceID(ctx context.Context, resourceID string) (*model.ValueSet, error) {
	var vs model.ValueSet
	err := s.db.WithContext(ctx).
		Preload("Concepts", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("resource_id = ?", resourceID).
		First(&vs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &vs, nil
}

// List returns value sets without concepts, ordered by resource id
func (s *ValueSetsStore) List(ctx context.Context, limit, offset int) ([]model.ValueSet, error) {
	var sets []model.ValueSet
	err := s.db.WithContext(ctx).Order("resource_id").Limit(limit).Offset(offset).Find(&sets).Error
	return sets, err
}

// Count returns the number of stored value sets
func (s *ValueSetsStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ValueSet{}).Count(&count).Error
	return count, err
}

// Upsert creates or replaces a value set and its concepts by resource id
func (s *ValueSetsStore) Upsert(ctx context.Context, vs *model.ValueSet) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.ValueSet
		err := tx.Select("id", "created_at").Where("resource_id = ?", vs.ResourceID).First(&existing).Error
		switch {
		case err == nil:
			vs.ID = existing.ID
			vs.CreatedAt = existing.CreatedAt
			if err := tx.Where("value_set_id = ?", vs.ID).Delete(&model.ValueSetConcept{}).Error; err != nil {
				return err
			}
			if err := tx.Omit("Concepts").Save(vs).Error; err != nil {
				return translateError(err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Omit("Concepts").Create(vs).Error; err != nil {
				return translateError(err)
			}
		default:
			return err
		}

		if len(vs.Concepts) == 0 {
			return nil
		}
		for i := range vs.Concepts {
			vs.Concepts[i].ID = 0
			vs.Concepts[i].ValueSetID = vs.ID
		}
		return tx.CreateInBatches(vs.Concepts, conceptBatchSize).Error
	})
}
