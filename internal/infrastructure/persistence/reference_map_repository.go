package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/persistence/models"
)

// GormReferenceMapRepository implements migration.ReferenceMapRepository using GORM
type GormReferenceMapRepository struct {
	db *gorm.DB
}

// NewGormReferenceMapRepository creates a reference mapping repository
func NewGormReferenceMapRepository(db *gorm.DB) *GormReferenceMapRepository {
	return &GormReferenceMapRepository{db: db}
}

var _ migration.ReferenceMapRepository = (*GormReferenceMapRepository)(nil)

// Find returns the mapping for a source reference ID
func (r *GormReferenceMapRepository) Find(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, refType migration.RefType, sourceRefID string) (*migration.ReferenceMapping, error) {
	var model models.ReferenceMappingModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND source_account_id = ? AND destination_account_id = ? AND ref_type = ? AND source_ref_id = ?",
			ownerID, sourceAccountID, destinationAccountID, refType, sourceRefID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName matches a mapping by recorded name or slug
func (r *GormReferenceMapRepository) FindByName(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, refType migration.RefType, name string) (*migration.ReferenceMapping, error) {
	var model models.ReferenceMappingModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND source_account_id = ? AND destination_account_id = ? AND ref_type = ? AND (name = ? OR slug = ?)",
			ownerID, sourceAccountID, destinationAccountID, refType, name, name).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a mapping. A concurrent save of the same source
// reference resolves to the latest destination ID.
func (r *GormReferenceMapRepository) Save(ctx context.Context, mapping *migration.ReferenceMapping) error {
	var model models.ReferenceMappingModel
	model.FromDomain(mapping)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "owner_id"},
				{Name: "source_account_id"},
				{Name: "destination_account_id"},
				{Name: "ref_type"},
				{Name: "source_ref_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"destination_ref_id", "name", "slug", "updated_at"}),
		}).
		Create(&model).Error
}
