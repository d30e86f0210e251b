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

// GormMigrationRecordRepository implements migration.RecordRepository using GORM
type GormMigrationRecordRepository struct {
	db *gorm.DB
	// claimRetries bounds lock-contention retries inside Claim
	claimRetries int
	// skipLocked disables FOR UPDATE SKIP LOCKED on databases without row
	// locking (the in-memory test database)
	skipLocked bool
}

// NewGormMigrationRecordRepository creates a record repository backed by Postgres
func NewGormMigrationRecordRepository(db *gorm.DB, claimRetries int) *GormMigrationRecordRepository {
	if claimRetries < 1 {
		claimRetries = 3
	}
	return &GormMigrationRecordRepository{db: db, claimRetries: claimRetries, skipLocked: true}
}

// NewGormMigrationRecordRepositoryForSQLite creates a repository that skips
// row-locking clauses SQLite does not support. Test use only.
func NewGormMigrationRecordRepositoryForSQLite(db *gorm.DB, claimRetries int) *GormMigrationRecordRepository {
	r := NewGormMigrationRecordRepository(db, claimRetries)
	r.skipLocked = false
	return r
}

var _ migration.RecordRepository = (*GormMigrationRecordRepository)(nil)

// Stage idempotently creates a pending row for the record's key tuple.
// A conflicting insert is resolved by re-reading the winning row, so
// concurrent staging of the same source entity converges on one record.
func (r *GormMigrationRecordRepository) Stage(ctx context.Context, record *migration.MigrationRecord) (*migration.MigrationRecord, error) {
	var model models.MigrationRecordModel
	model.FromDomain(record)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "owner_id"},
				{Name: "source_account_id"},
				{Name: "destination_account_id"},
				{Name: "entity_type"},
				{Name: "source_entity_id"},
			},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Another staging call won the insert; the existing row is the record
		return r.FindByKey(ctx, record.OwnerID, record.SourceAccountID, record.DestinationAccountID, record.EntityType, record.SourceEntityID)
	}
	return model.ToDomain(), nil
}

// Claim atomically locks and returns the oldest unclaimed pending row
// matching the query.
func (r *GormMigrationRecordRepository) Claim(ctx context.Context, q migration.ClaimQuery) (*migration.MigrationRecord, error) {
	var claimed *migration.MigrationRecord

	for attempt := 0; attempt < r.claimRetries; attempt++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			query := tx.Model(&models.MigrationRecordModel{}).
				Where("owner_id = ? AND source_account_id = ? AND destination_account_id = ? AND entity_type = ? AND status = ? AND claimed_at IS NULL",
					q.OwnerID, q.SourceAccountID, q.DestinationAccountID, q.EntityType, migration.StatusPending)
			if r.skipLocked {
				query = query.Clauses(clause.Locking{
					Strength: "UPDATE",
					Options:  "SKIP LOCKED",
				})
			}

			var model models.MigrationRecordModel
			// An exact source entity binds the claim to that row alone.
			// Falling back to an unrelated pending row would hand this
			// entity's work to a run that claimed a different row, so a
			// held or settled exact row means there is nothing to claim.
			if q.SourceEntityID != "" {
				exact := query.Session(&gorm.Session{}).
					Where("source_entity_id = ?", q.SourceEntityID).
					First(&model)
				if exact.Error == nil {
					return r.markClaimed(tx, &model, &claimed)
				}
				if errors.Is(exact.Error, gorm.ErrRecordNotFound) {
					return migration.ErrNoPendingRecords
				}
				return exact.Error
			}

			if err := query.Order("created_at ASC").First(&model).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return migration.ErrNoPendingRecords
				}
				return err
			}
			return r.markClaimed(tx, &model, &claimed)
		})

		if err == nil {
			return claimed, nil
		}
		if errors.Is(err, migration.ErrNoPendingRecords) {
			return nil, migration.ErrNoPendingRecords
		}
		// Serialization failures under contention get another try
		if attempt == r.claimRetries-1 {
			return nil, migration.ErrClaimContention
		}
	}
	return nil, migration.ErrClaimContention
}

func (r *GormMigrationRecordRepository) markClaimed(tx *gorm.DB, model *models.MigrationRecordModel, out **migration.MigrationRecord) error {
	record := model.ToDomain()
	record.Claimed()

	if err := tx.Model(&models.MigrationRecordModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"claimed_at": record.ClaimedAt,
			"updated_at": record.UpdatedAt,
		}).Error; err != nil {
		return err
	}
	*out = record
	return nil
}

// ResolveOrMerge reconciles a claimed row with the exact source entity ID
// learned during processing. When a distinct row for the exact tuple already
// exists, the claimed row is retired as skipped; the existing row wins only
// when no other run holds it, otherwise the retired placeholder is returned
// so the caller stops without touching the contested entity.
func (r *GormMigrationRecordRepository) ResolveOrMerge(ctx context.Context, claimed *migration.MigrationRecord, sourceEntityID string) (*migration.MigrationRecord, error) {
	if claimed.SourceEntityID == sourceEntityID {
		return claimed, nil
	}

	var winner *migration.MigrationRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.
			Where("owner_id = ? AND source_account_id = ? AND destination_account_id = ? AND entity_type = ? AND source_entity_id = ?",
				claimed.OwnerID, claimed.SourceAccountID, claimed.DestinationAccountID, claimed.EntityType, sourceEntityID)
		if r.skipLocked {
			// Wait for any in-flight claim on the exact row to settle
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var existing models.MigrationRecordModel
		err := query.First(&existing).Error

		if err == nil {
			rec := existing.ToDomain()
			if rec.Status == migration.StatusPending && rec.ClaimedAt != nil {
				// Another run holds the exact row; retire this placeholder
				// and let the holder finish the entity.
				if markErr := claimed.MarkSkipped("lost claim race to record " + existing.ID.String()); markErr != nil {
					return markErr
				}
				if saveErr := r.finalizeTx(tx, claimed); saveErr != nil {
					return saveErr
				}
				winner = claimed
				return nil
			}

			// The exact row already exists and nobody holds it: retire the
			// claimed placeholder and take the row over.
			if rec.Status == migration.StatusPending {
				if claimErr := r.markClaimed(tx, &existing, &rec); claimErr != nil {
					return claimErr
				}
			}
			if markErr := claimed.MarkSkipped("merged into existing record " + existing.ID.String()); markErr != nil {
				return markErr
			}
			if saveErr := r.finalizeTx(tx, claimed); saveErr != nil {
				return saveErr
			}
			winner = rec
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// No competing row: the claimed row adopts the exact identity
		claimed.SourceEntityID = sourceEntityID
		if updErr := tx.Model(&models.MigrationRecordModel{}).
			Where("id = ?", claimed.ID).
			Update("source_entity_id", sourceEntityID).Error; updErr != nil {
			return updErr
		}
		winner = claimed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return winner, nil
}

// Finalize persists a terminal status previously set on the record
func (r *GormMigrationRecordRepository) Finalize(ctx context.Context, record *migration.MigrationRecord) error {
	if !record.IsTerminal() {
		return shared.ErrInvalidState
	}
	return r.finalizeTx(r.db.WithContext(ctx), record)
}

func (r *GormMigrationRecordRepository) finalizeTx(tx *gorm.DB, record *migration.MigrationRecord) error {
	result := tx.Model(&models.MigrationRecordModel{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"status":                record.Status,
			"destination_entity_id": record.DestinationEntityID,
			"error_message":         record.ErrorMessage,
			"updated_at":            record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByKey returns the record for the exact key tuple
func (r *GormMigrationRecordRepository) FindByKey(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, entityType migration.EntityType, sourceEntityID string) (*migration.MigrationRecord, error) {
	var model models.MigrationRecordModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND source_account_id = ? AND destination_account_id = ? AND entity_type = ? AND source_entity_id = ?",
			ownerID, sourceAccountID, destinationAccountID, entityType, sourceEntityID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindSucceeded returns the successful record for a source entity, if any
func (r *GormMigrationRecordRepository) FindSucceeded(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, entityType migration.EntityType, sourceEntityID string) (*migration.MigrationRecord, error) {
	var model models.MigrationRecordModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND source_account_id = ? AND destination_account_id = ? AND entity_type = ? AND source_entity_id = ? AND status = ?",
			ownerID, sourceAccountID, destinationAccountID, entityType, sourceEntityID, migration.StatusSuccess).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNaturalKey matches previously migrated rows by slug, code or name,
// in that order of preference.
func (r *GormMigrationRecordRepository) FindByNaturalKey(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, entityType migration.EntityType, keys migration.NaturalKeys) (*migration.MigrationRecord, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Where("owner_id = ? AND source_account_id = ? AND destination_account_id = ? AND entity_type = ?",
				ownerID, sourceAccountID, destinationAccountID, entityType)
	}

	lookups := []struct {
		column string
		value  string
	}{
		{"source_slug", keys.Slug},
		{"source_code", keys.Code},
		{"source_name", keys.Name},
	}

	for _, lookup := range lookups {
		if lookup.value == "" {
			continue
		}
		var model models.MigrationRecordModel
		err := base().Where(lookup.column+" = ?", lookup.value).First(&model).Error
		if err == nil {
			return model.ToDomain(), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, shared.ErrNotFound
}

// List returns records for an owner with optional filtering
func (r *GormMigrationRecordRepository) List(ctx context.Context, ownerID uuid.UUID, filter migration.RecordFilter) ([]*migration.MigrationRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MigrationRecordModel{}).Where("owner_id = ?", ownerID)

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.SourceAccountID != "" {
		query = query.Where("source_account_id = ?", filter.SourceAccountID)
	}
	if filter.DestinationAccountID != "" {
		query = query.Where("destination_account_id = ?", filter.DestinationAccountID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var recordModels []models.MigrationRecordModel
	if err := query.Order("created_at ASC").Find(&recordModels).Error; err != nil {
		return nil, 0, err
	}

	records := make([]*migration.MigrationRecord, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}
	return records, total, nil
}
